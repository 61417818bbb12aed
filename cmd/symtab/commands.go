package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/RowanDark/symtab/config"
	"github.com/RowanDark/symtab/filters"
	"github.com/RowanDark/symtab/output"
	"github.com/RowanDark/symtab/stats"
	"github.com/RowanDark/symtab/symbol"
)

const metricsNamespace = "symtab"

var internCmd = &cobra.Command{
	Use:   "intern [text...]",
	Short: "Intern texts and print their IDs",
	Long: `Intern each argument, or each line of stdin when no arguments are given, and
print the resulting ID with the canonical (possibly truncated) text.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := s.preload(); err != nil {
			return err
		}

		texts := args
		if len(texts) == 0 {
			if texts, err = readLines(cmd.InOrStdin()); err != nil {
				return err
			}
		}

		writer, err := openWriter(cmd)
		if err != nil {
			return err
		}
		defer writer.Close()

		if err := internTexts(s.table, texts, writer, cfg.Strict, s.logger.Warnf); err != nil {
			return err
		}
		s.logSummary()
		return nil
	},
}

// internTexts interns texts in order and writes one record per accepted
// text. Rejected texts abort the run when strict is set and are reported
// through warn otherwise.
func internTexts(table *symbol.Table, texts []string, writer *output.Writer, strict bool, warn func(string, ...interface{})) error {
	for _, text := range texts {
		id, err := table.Intern(text)
		if err != nil {
			if strict {
				return err
			}
			warn("Skipping %v", err)
			continue
		}
		if err := writer.WriteRecord(output.Record{ID: uint32(id), Text: table.Text(id)}); err != nil {
			return err
		}
	}
	return nil
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Write the preloaded table",
	Long: `Preload the configured vocabularies and write every entry, in ID order or
alphabetically, restricted to --scope when given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := s.preload(); err != nil {
			return err
		}

		entries, err := orderedEntries(s.table, cfg.Order)
		if err != nil {
			return err
		}
		entries = filters.FilterEntries(entries, cfg.Scope)

		writer, err := openWriter(cmd)
		if err != nil {
			return err
		}
		defer writer.Close()

		if err := writer.WriteEntries(entries); err != nil {
			return err
		}
		s.logger.Infof("Wrote %d of %d entries", writer.Count(), s.table.Len()-1)
		s.logSummary()
		return nil
	},
}

func orderedEntries(table *symbol.Table, order config.Order) ([]symbol.Entry, error) {
	if order != config.OrderAlphabetical {
		return table.Entries(), nil
	}
	entries := make([]symbol.Entry, 0, table.Len())
	err := table.Alphabetical(func(e symbol.Entry) bool {
		entries = append(entries, e)
		return true
	})
	return entries, err
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check table consistency and look for likely typos",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := s.preload(); err != nil {
			return err
		}

		auditErr := writeAudit(cmd.OutOrStdout(), s.table, cfg.NearMissDistance)
		s.logSummary()
		return auditErr
	},
}

// writeAudit writes a consistency and near-miss report for table to w and
// returns the audit failure, if any.
func writeAudit(w io.Writer, table *symbol.Table, nearMiss int) error {
	auditErr := table.Audit()
	if auditErr != nil {
		fmt.Fprintf(w, "audit: FAILED (%d entries)\n%v\n", table.Len(), auditErr)
	} else {
		fmt.Fprintf(w, "audit: ok (%d entries)\n", table.Len())
	}

	buckets := table.BucketStats()
	fmt.Fprintf(w, "buckets: %d total, %d used, longest chain %d, mean chain %.2f\n", buckets.Buckets, buckets.Used, buckets.Longest, buckets.Mean)
	storage := table.StorageStats()
	fmt.Fprintf(w, "storage: %d chunk(s) of %d entries, %d text block(s), %d bytes of text\n", storage.Chunks, storage.ChunkSize, storage.Blocks, storage.TextBytes)

	if nearMiss > 0 {
		entries := table.Entries()
		texts := make([]string, 0, len(entries))
		for _, e := range entries {
			texts = append(texts, e.Text)
		}
		misses := filters.NearMisses(texts, nearMiss)
		fmt.Fprintf(w, "near misses (distance <= %d): %d\n", nearMiss, len(misses))
		for _, m := range misses {
			fmt.Fprintf(w, "  %q ~ %q (%d)\n", m.A, m.B, m.Distance)
		}
	}
	return auditErr
}

var namesCmd = &cobra.Command{
	Use:   "names",
	Short: "Print generated names A, B, ... Z, AA, AB, ...",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		writer, err := openWriter(cmd)
		if err != nil {
			return err
		}
		defer writer.Close()

		if err := writeNames(s.table, cfg.NameCount, writer); err != nil {
			return err
		}
		s.logger.Debugf("Generated %d name(s)", cfg.NameCount)
		return nil
	},
}

// writeNames interns count generated names in table and writes them with
// their IDs there, so the output agrees with dump and audit of the same
// table.
func writeNames(table *symbol.Table, count int, writer *output.Writer) error {
	var maker symbol.NameMaker
	for i := 0; i < count; i++ {
		id := maker.NextIn(table)
		if err := writer.WriteRecord(output.Record{ID: uint32(id), Text: table.Text(id)}); err != nil {
			return err
		}
	}
	return nil
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Intern concurrently and verify the table size",
	Long: `Run two phases of concurrent interning: every worker interning its own texts,
then every worker interning the same texts. Each phase checks that the table
grew by exactly the number of distinct texts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := s.preload(); err != nil {
			return err
		}

		s.logger.Infof("Benchmarking %d worker(s) x %d text(s)", cfg.Workers, cfg.Texts)
		results, err := runBench(s.ctx, s.table, cfg.Workers, cfg.Texts)
		for _, r := range results {
			s.logger.Infof("%s: %d intern call(s), %d new entries in %s (%.0f calls/s)", r.Phase, r.Calls, r.Added, r.Elapsed.Truncate(time.Microsecond), r.Rate())
		}
		if err != nil {
			return err
		}
		s.logger.Infof("Statistics: %s", stats.Render(s.tracker.Snapshot()))

		if cfg.Metrics {
			if err := writeMetrics(cmd.OutOrStdout(), s.tracker); err != nil {
				return err
			}
		}
		s.logSummary()
		return nil
	},
}

// benchResult describes one interning phase.
type benchResult struct {
	Phase   string
	Calls   int
	Added   int
	Elapsed time.Duration
}

// Rate returns intern calls per second.
func (r benchResult) Rate() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Calls) / r.Elapsed.Seconds()
}

// runBench interns workers*texts disjoint texts, then texts shared texts
// from every worker, and fails if the table did not grow by exactly the
// number of distinct texts in each phase.
func runBench(ctx context.Context, table *symbol.Table, workers, texts int) ([]benchResult, error) {
	phases := []struct {
		name     string
		text     func(worker, i int) string
		distinct int
	}{
		{name: "disjoint", text: func(w, i int) string { return fmt.Sprintf("bench_w%d_t%d", w, i) }, distinct: workers * texts},
		{name: "duplicate", text: func(_, i int) string { return fmt.Sprintf("bench_shared%d", i) }, distinct: texts},
	}

	results := make([]benchResult, 0, len(phases))
	for _, phase := range phases {
		before := table.Len()
		start := time.Now()

		g, gctx := errgroup.WithContext(ctx)
		for w := 0; w < workers; w++ {
			g.Go(func() error {
				for i := 0; i < texts; i++ {
					if i%64 == 0 {
						if err := gctx.Err(); err != nil {
							return err
						}
					}
					if _, err := table.Intern(phase.text(w, i)); err != nil {
						return err
					}
				}
				return nil
			})
		}
		err := g.Wait()

		result := benchResult{Phase: phase.name, Calls: workers * texts, Added: table.Len() - before, Elapsed: time.Since(start)}
		results = append(results, result)
		if err != nil {
			return results, fmt.Errorf("%s phase: %w", phase.name, err)
		}
		if result.Added != phase.distinct {
			return results, fmt.Errorf("%s phase: table grew by %d, expected %d", phase.name, result.Added, phase.distinct)
		}
	}
	return results, nil
}

// writeMetrics gathers the tracker through a Prometheus registry and writes
// the text exposition format to w.
func writeMetrics(w io.Writer, tracker *stats.Tracker) error {
	registry := prometheus.NewRegistry()
	if err := registry.Register(stats.NewCollector(metricsNamespace, tracker)); err != nil {
		return err
	}
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return err
		}
	}
	return nil
}
