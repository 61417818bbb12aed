package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/RowanDark/symtab/logging"
	"github.com/RowanDark/symtab/stats"
	"github.com/RowanDark/symtab/symbol"
)

// Format represents an output format option.
type Format string

// Supported output format options.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatTXT  Format = "txt"
)

// Order selects how dumped entries are sorted.
type Order string

const (
	OrderID           Order = "id"
	OrderAlphabetical Order = "alpha"
)

const (
	defaultWorkers       = 16
	defaultTexts         = 100
	defaultStatsInterval = 10 * time.Second
)

// Config captures all runtime configuration for the CLI.
type Config struct {
	ConfigPath string
	Profile    string

	LogLevel string
	LogFile  string
	Verbose  bool
	Silent   bool

	MaxTextLength  int
	Buckets        int
	ChunkSize      int
	BlockSize      int
	Alphabetical   bool
	DiagnosticRate float64

	VocabularyPath    string
	DefaultVocabulary bool

	Format     Format
	OutputPath string
	JSONPretty bool
	Scope      []string
	Order      Order

	Strict           bool
	NearMissDistance int
	NameCount        int
	Workers          int
	Texts            int
	Metrics          bool
	StatsInterval    time.Duration
}

// BindFlags registers the shared command-line flags and returns a Config
// instance whose fields are populated when Cobra parses flag values.
func BindFlags(cmd *cobra.Command) *Config {
	cfg := &Config{}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.ConfigPath, "config", "", "Path to a .symtab.yaml or .symtab.toml profile file")
	flags.StringVar(&cfg.Profile, "profile", "", "Named profile to load from the config file")
	flags.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&cfg.LogFile, "log-file", "", "Append log output to the given file")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose logging output")
	flags.BoolVar(&cfg.Silent, "silent", false, "Only log errors")
	flags.IntVar(&cfg.MaxTextLength, "max-length", symbol.DefaultMaxTextLength, "Maximum stored text length in bytes")
	flags.IntVar(&cfg.Buckets, "buckets", symbol.DefaultBuckets, "Number of hash buckets (rounded up to a power of two)")
	flags.IntVar(&cfg.ChunkSize, "chunk-size", 0, "Entries per canonical storage chunk")
	flags.IntVar(&cfg.BlockSize, "block-size", 0, "Bytes per canonical text block")
	flags.BoolVar(&cfg.Alphabetical, "alphabetical", false, "Maintain an alphabetical index")
	flags.Float64Var(&cfg.DiagnosticRate, "diagnostic-rate", symbol.DefaultDiagnosticRate, "Maximum table warnings per second")
	flags.StringVar(&cfg.VocabularyPath, "vocab", "", "Vocabulary file to preload (one text per line, or a JSON dump)")
	flags.BoolVar(&cfg.DefaultVocabulary, "default-vocab", false, "Preload the built-in parameter vocabulary")
	flags.StringVar((*string)(&cfg.Format), "format", string(FormatTXT), "Output format (json, csv, txt)")
	flags.StringVarP(&cfg.OutputPath, "output", "o", "", "Optional file path to write results")
	flags.BoolVar(&cfg.JSONPretty, "json-pretty", false, "Pretty-print JSON output")
	flags.StringSliceVar(&cfg.Scope, "scope", nil, "Restrict output to texts matching the provided glob patterns")

	return cfg
}

// Validate ensures the provided configuration values meet the expected
// constraints and normalises their representation where required.
func (c *Config) Validate() error {
	format := strings.ToLower(strings.TrimSpace(string(c.Format)))
	switch Format(format) {
	case FormatJSON, FormatCSV, FormatTXT:
		c.Format = Format(format)
	case "":
		c.Format = FormatTXT
	default:
		return fmt.Errorf("invalid output format %q: expected json, csv, or txt", c.Format)
	}

	order := strings.ToLower(strings.TrimSpace(string(c.Order)))
	switch Order(order) {
	case OrderID, OrderAlphabetical:
		c.Order = Order(order)
	case "":
		c.Order = OrderID
	default:
		return fmt.Errorf("invalid order %q: expected %q or %q", c.Order, OrderID, OrderAlphabetical)
	}
	if c.Order == OrderAlphabetical {
		c.Alphabetical = true
	}

	c.LogLevel = strings.TrimSpace(c.LogLevel)
	if c.LogLevel != "" {
		if _, err := logging.ParseLevel(c.LogLevel); err != nil {
			return err
		}
	}
	if c.Verbose && c.Silent {
		return fmt.Errorf("--verbose and --silent are mutually exclusive")
	}

	if len(c.Scope) > 0 {
		filtered := make([]string, 0, len(c.Scope))
		for _, pattern := range c.Scope {
			pattern = strings.TrimSpace(pattern)
			if pattern == "" {
				continue
			}
			filtered = append(filtered, pattern)
		}
		c.Scope = filtered
	}

	if c.MaxTextLength <= 0 {
		c.MaxTextLength = symbol.DefaultMaxTextLength
	}
	if c.Buckets <= 0 {
		c.Buckets = symbol.DefaultBuckets
	}
	if c.ChunkSize < 0 || c.BlockSize < 0 {
		return fmt.Errorf("chunk and block sizes must not be negative")
	}
	if c.DiagnosticRate < 0 {
		return fmt.Errorf("diagnostic rate must not be negative")
	}
	if c.NearMissDistance < 0 {
		c.NearMissDistance = 0
	}
	if c.NameCount < 0 {
		c.NameCount = 0
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.Texts <= 0 {
		c.Texts = defaultTexts
	}
	if c.StatsInterval <= 0 {
		c.StatsInterval = defaultStatsInterval
	}

	c.VocabularyPath = strings.TrimSpace(c.VocabularyPath)
	c.LogFile = strings.TrimSpace(c.LogFile)

	return nil
}

// LiveOutput returns true when results should be sent to stdout instead of a file.
func (c *Config) LiveOutput() bool {
	return strings.TrimSpace(c.OutputPath) == ""
}

// Level resolves the effective log level. An explicit --log-level wins over
// --verbose and --silent.
func (c *Config) Level() logging.Level {
	if c.LogLevel != "" {
		if level, err := logging.ParseLevel(c.LogLevel); err == nil {
			return level
		}
	}
	switch {
	case c.Verbose:
		return logging.LevelDebug
	case c.Silent:
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// TableOptions derives the symbol table options for this configuration.
func (c *Config) TableOptions(logger *logging.Logger, tracker *stats.Tracker) symbol.Options {
	return symbol.Options{
		MaxTextLength:  c.MaxTextLength,
		Buckets:        c.Buckets,
		ChunkSize:      c.ChunkSize,
		BlockSize:      c.BlockSize,
		Alphabetical:   c.Alphabetical,
		Logger:         logger,
		Stats:          tracker,
		DiagnosticRate: c.DiagnosticRate,
	}
}
