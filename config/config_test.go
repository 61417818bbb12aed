package config

import (
	"testing"
	"time"

	"github.com/RowanDark/symtab/logging"
	"github.com/RowanDark/symtab/stats"
	"github.com/RowanDark/symtab/symbol"
)

func TestValidateDefaults(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Format != FormatTXT {
		t.Fatalf("expected default format txt, got %s", cfg.Format)
	}
	if cfg.Order != OrderID {
		t.Fatalf("expected default order id, got %s", cfg.Order)
	}
	if cfg.MaxTextLength != symbol.DefaultMaxTextLength {
		t.Fatalf("expected default max length %d, got %d", symbol.DefaultMaxTextLength, cfg.MaxTextLength)
	}
	if cfg.Buckets != symbol.DefaultBuckets {
		t.Fatalf("expected default buckets %d, got %d", symbol.DefaultBuckets, cfg.Buckets)
	}
	if cfg.Workers != 16 || cfg.Texts != 100 {
		t.Fatalf("expected bench defaults 16x100, got %dx%d", cfg.Workers, cfg.Texts)
	}
	if cfg.StatsInterval != 10*time.Second {
		t.Fatalf("expected default stats interval 10s, got %s", cfg.StatsInterval)
	}
}

func TestValidateInvalidFormat(t *testing.T) {
	cfg := &Config{Format: "xml"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for invalid format")
	}
}

func TestValidateNormalisesFormatAndScope(t *testing.T) {
	cfg := &Config{Format: " JSON ", Scope: []string{" voice* ", "", "gain"}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Format != FormatJSON {
		t.Fatalf("expected json, got %s", cfg.Format)
	}
	if len(cfg.Scope) != 2 || cfg.Scope[0] != "voice*" || cfg.Scope[1] != "gain" {
		t.Fatalf("unexpected scope: %#v", cfg.Scope)
	}
}

func TestValidateAlphabeticalOrderEnablesIndex(t *testing.T) {
	cfg := &Config{Order: "ALPHA"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Alphabetical {
		t.Fatalf("expected alphabetical order to enable the index")
	}
	if err := (&Config{Order: "random"}).Validate(); err == nil {
		t.Fatalf("expected error for unknown order")
	}
}

func TestValidateSilentVerboseConflict(t *testing.T) {
	cfg := &Config{Silent: true, Verbose: true}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error when silent and verbose set")
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := &Config{LogLevel: "loud"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown log level")
	}
}

func TestValidateRejectsNegativeSizes(t *testing.T) {
	if err := (&Config{ChunkSize: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative chunk size")
	}
	if err := (&Config{DiagnosticRate: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative diagnostic rate")
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		cfg  Config
		want logging.Level
	}{
		{cfg: Config{}, want: logging.LevelInfo},
		{cfg: Config{Verbose: true}, want: logging.LevelDebug},
		{cfg: Config{Silent: true}, want: logging.LevelError},
		{cfg: Config{Silent: true, LogLevel: "warn"}, want: logging.LevelWarn},
	}
	for _, tt := range tests {
		if got := tt.cfg.Level(); got != tt.want {
			t.Fatalf("%+v: expected %s, got %s", tt.cfg, tt.want, got)
		}
	}
}

func TestLiveOutput(t *testing.T) {
	cfg := &Config{}
	if !cfg.LiveOutput() {
		t.Fatalf("expected live output when path empty")
	}
	cfg.OutputPath = "symbols.json"
	if cfg.LiveOutput() {
		t.Fatalf("expected file output when path set")
	}
}

func TestTableOptions(t *testing.T) {
	cfg := &Config{MaxTextLength: 32, Buckets: 64, ChunkSize: 8, Alphabetical: true, DiagnosticRate: 5}
	logger := logging.Discard()
	tracker := stats.NewTracker(stats.Options{})

	opts := cfg.TableOptions(logger, tracker)
	if opts.MaxTextLength != 32 || opts.Buckets != 64 || opts.ChunkSize != 8 || !opts.Alphabetical || opts.DiagnosticRate != 5 {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.Logger != logger || opts.Stats != tracker {
		t.Fatalf("expected logger and tracker to be passed through")
	}

	tbl := symbol.NewTable(opts)
	if _, err := tbl.Intern("gain"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tracker.Snapshot().Inserts != 1 {
		t.Fatalf("expected table to report into the tracker")
	}
}
