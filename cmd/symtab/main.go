package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RowanDark/symtab/config"
	"github.com/RowanDark/symtab/logging"
	"github.com/RowanDark/symtab/output"
	"github.com/RowanDark/symtab/stats"
	"github.com/RowanDark/symtab/symbol"
	"github.com/RowanDark/symtab/vocab"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "symtab",
	Short: "symtab inspects and exercises symbol tables.",
	Long: `symtab is the administration tool for the symbol table library. It interns
texts, dumps and audits tables preloaded from vocabulary files, generates
spreadsheet-style names and benchmarks concurrent interning.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		showVersion, err := cmd.Flags().GetBool("version")
		if err != nil {
			return err
		}
		if showVersion {
			fmt.Fprintf(cmd.OutOrStdout(), "symtab version: %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", commit)
			fmt.Fprintf(cmd.OutOrStdout(), "built: %s\n", date)
			return nil
		}
		return cmd.Help()
	},
}

func init() {
	cfg = config.BindFlags(rootCmd)
	rootCmd.PersistentFlags().BoolP("version", "V", false, "Show symtab version information and exit")

	internCmd.Flags().BoolVar(&cfg.Strict, "strict", false, "Fail on the first text the table rejects")
	dumpCmd.Flags().StringVar((*string)(&cfg.Order), "order", string(config.OrderID), "Entry order (id or alpha)")
	auditCmd.Flags().IntVar(&cfg.NearMissDistance, "near-miss", 1, "Report text pairs within this edit distance (0 disables)")
	namesCmd.Flags().IntVar(&cfg.NameCount, "count", 26, "Number of names to generate")
	benchCmd.Flags().IntVar(&cfg.Workers, "workers", 16, "Number of concurrent interning workers")
	benchCmd.Flags().IntVar(&cfg.Texts, "texts", 100, "Texts interned by each worker")
	benchCmd.Flags().BoolVar(&cfg.Metrics, "metrics", false, "Print table metrics in Prometheus text format")
	benchCmd.Flags().DurationVar(&cfg.StatsInterval, "stats-interval", 10*time.Second, "Interval between periodic statistics log lines")

	rootCmd.AddCommand(internCmd, dumpCmd, auditCmd, namesCmd, benchCmd)
}

// session is the state shared by every subcommand run.
type session struct {
	ctx     context.Context
	logger  *logging.Logger
	tracker *stats.Tracker
	table   *symbol.Table
}

// openSession applies the profile, validates the configuration and builds
// the logger, statistics tracker and table. The returned cleanup stops the
// tracker and closes the log file.
func openSession(cmd *cobra.Command) (*session, func(), error) {
	if err := config.ApplyProfile(cfg, cmd); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	console := cmd.ErrOrStderr()
	if cfg.Silent {
		console = io.Discard
	}
	logger, err := logging.New(logging.Options{Level: cfg.Level(), Console: console, FilePath: cfg.LogFile})
	if err != nil {
		return nil, nil, err
	}
	if cfg.LogFile != "" {
		logger.Infof("File logging enabled: %s", cfg.LogFile)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	tracker := stats.NewTracker(stats.Options{Logger: logger.Named("stats"), Interval: cfg.StatsInterval})
	tracker.Start(ctx.Done())

	s := &session{
		ctx:     ctx,
		logger:  logger,
		tracker: tracker,
		table:   newSessionTable(cfg.TableOptions(logger, tracker), logger),
	}
	cleanup := func() {
		tracker.Stop()
		stop()
		_ = logger.Close()
	}
	return s, cleanup, nil
}

// newSessionTable configures the process-wide table so Symbol values share
// it. A second session in the same process gets a private table instead.
func newSessionTable(opts symbol.Options, logger *logging.Logger) *symbol.Table {
	if err := symbol.Configure(opts); err != nil {
		if errors.Is(err, symbol.ErrAlreadyInitialized) {
			logger.Debugf("Process-wide table already in use; using a private table")
			return symbol.NewTable(opts)
		}
	}
	return symbol.Default()
}

// preload interns the configured vocabularies into the session table.
func (s *session) preload() error {
	if cfg.DefaultVocabulary {
		report, err := vocab.LoadDefault(s.table)
		if err != nil {
			return fmt.Errorf("loading default vocabulary: %w", err)
		}
		s.logReport("built-in vocabulary", report)
	}
	if cfg.VocabularyPath != "" {
		report, err := vocab.LoadFile(s.table, cfg.VocabularyPath)
		if err != nil {
			return fmt.Errorf("loading vocabulary %s: %w", cfg.VocabularyPath, err)
		}
		s.logReport(cfg.VocabularyPath, report)
		if cfg.Strict && report.Rejected > 0 {
			return fmt.Errorf("vocabulary %s: %d text(s) rejected, first %q", cfg.VocabularyPath, report.Rejected, report.Rejects[0])
		}
	}
	return nil
}

func (s *session) logReport(source string, report vocab.Report) {
	s.logger.Infof("Loaded %s: %d text(s), %d new, %d rejected", source, report.Lines, report.Added, report.Rejected)
	for _, text := range report.Rejects {
		s.logger.Warnf("Rejected %q from %s", text, source)
	}
}

// logSummary reports the table and diagnostic state at the end of a run.
func (s *session) logSummary() {
	buckets := s.table.BucketStats()
	s.logger.Infof("Table holds %d entries across %d buckets (%d used, longest chain %d)", s.table.Len(), buckets.Buckets, buckets.Used, buckets.Longest)

	if suppressed := s.table.SuppressedDiagnostics(); suppressed > 0 {
		status := s.table.DiagnosticStatus()
		s.logger.Warnf("Suppressed %d table warning(s) above %.2f/s (refill in %s)", suppressed, status.Rate, formatRefillDuration(status.RefillIn))
	}

	if cfg.LiveOutput() {
		s.logger.Debugf("Results streamed to stdout using %s format", cfg.Format)
	} else {
		s.logger.Infof("Results saved to %s", cfg.OutputPath)
	}
}

// openWriter returns an output writer honouring --output, writing to the
// command's stdout when no path is set.
func openWriter(cmd *cobra.Command) (*output.Writer, error) {
	if cfg.LiveOutput() {
		return output.NewWriterTo(cmd.OutOrStdout(), cfg), nil
	}
	return output.NewWriter(cfg)
}

// readLines reads non-empty trimmed lines from r. Interactive terminals
// yield nothing.
func readLines(r io.Reader) ([]string, error) {
	if file, ok := r.(*os.File); ok {
		if stat, err := file.Stat(); err == nil && stat.Mode()&os.ModeCharDevice != 0 {
			return nil, nil
		}
	}

	scanner := bufio.NewScanner(r)
	lines := make([]string, 0)
	for scanner.Scan() {
		value := strings.TrimSpace(scanner.Text())
		if value == "" {
			continue
		}
		lines = append(lines, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func formatRefillDuration(d time.Duration) string {
	if d <= 0 {
		return "ready"
	}
	if d < time.Millisecond {
		return "<1ms"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !strings.HasSuffix(err.Error(), "help requested") {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
