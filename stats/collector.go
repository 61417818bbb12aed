package stats

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes a Tracker to a Prometheus registry.
type Collector struct {
	tracker *Tracker

	hits        *prometheus.Desc
	inserts     *prometheus.Desc
	truncations *prometheus.Desc
	invalid     *prometheus.Desc
	growths     *prometheus.Desc
	resets      *prometheus.Desc
	entries     *prometheus.Desc
}

func NewCollector(namespace string, tracker *Tracker) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "symbols", name), help, nil, nil)
	}
	return &Collector{
		tracker:     tracker,
		hits:        desc("hits_total", "Intern calls answered by an existing entry."),
		inserts:     desc("inserts_total", "Canonical entries created."),
		truncations: desc("truncations_total", "Texts truncated to the maximum length."),
		invalid:     desc("invalid_total", "Texts rejected for starting with a digit."),
		growths:     desc("chunk_growths_total", "Entry chunks allocated by the canonical store."),
		resets:      desc("resets_total", "Times the table was cleared."),
		entries:     desc("entries", "Entries currently held, including the null symbol."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.inserts
	ch <- c.truncations
	ch <- c.invalid
	ch <- c.growths
	ch <- c.resets
	ch <- c.entries
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.tracker.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.inserts, prometheus.CounterValue, float64(s.Inserts))
	ch <- prometheus.MustNewConstMetric(c.truncations, prometheus.CounterValue, float64(s.Truncations))
	ch <- prometheus.MustNewConstMetric(c.invalid, prometheus.CounterValue, float64(s.Invalid))
	ch <- prometheus.MustNewConstMetric(c.growths, prometheus.CounterValue, float64(s.Growths))
	ch <- prometheus.MustNewConstMetric(c.resets, prometheus.CounterValue, float64(s.Resets))
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Entries))
}
