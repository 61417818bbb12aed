package vocab

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RowanDark/symtab/config"
	"github.com/RowanDark/symtab/logging"
	"github.com/RowanDark/symtab/output"
	"github.com/RowanDark/symtab/symbol"
)

func newTable() *symbol.Table {
	return symbol.NewTable(symbol.Options{Logger: logging.Discard()})
}

func TestDefaultTexts(t *testing.T) {
	texts := DefaultTexts()
	if len(texts) != 69 {
		t.Fatalf("expected 69 default texts, got %d", len(texts))
	}
	if texts[0] != "gain" {
		t.Fatalf("expected file order, got %q first", texts[0])
	}
	for _, text := range texts {
		if strings.HasPrefix(text, "#") || text == "" {
			t.Fatalf("comment or blank leaked into vocabulary: %q", text)
		}
	}
}

func TestLoadDefault(t *testing.T) {
	tbl := newTable()
	report, err := LoadDefault(tbl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Lines != 69 || report.Added != 69 || report.Rejected != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if id, ok := tbl.Lookup("gain"); !ok || id != 1 {
		t.Fatalf("expected gain to be the first entry, got %d %v", id, ok)
	}
	if err := tbl.Audit(); err != nil {
		t.Fatalf("audit failed: %v", err)
	}
}

func TestLoadSkipsCommentsAndCountsRejects(t *testing.T) {
	tbl := newTable()
	input := "# header\n\n  attack  \ndecay\n2nd\nattack\n\t# indented comment\n"
	report, err := Load(tbl, strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Lines != 4 {
		t.Fatalf("expected 4 lines, got %d", report.Lines)
	}
	if report.Added != 2 {
		t.Fatalf("expected 2 new entries, got %d", report.Added)
	}
	if report.Rejected != 1 || len(report.Rejects) != 1 || report.Rejects[0] != "2nd" {
		t.Fatalf("unexpected rejects: %+v", report)
	}
	if _, ok := tbl.Lookup("attack"); !ok {
		t.Fatalf("expected trimmed text to be interned")
	}
}

func TestLoadFileText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.txt")
	if err := os.WriteFile(path, []byte("cutoff\nresonance\n"), 0o600); err != nil {
		t.Fatalf("write vocabulary: %v", err)
	}

	tbl := newTable()
	report, err := LoadFile(tbl, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Added != 2 || tbl.Text(2) != "resonance" {
		t.Fatalf("unexpected load result: %+v", report)
	}
}

func TestLoadFileDumpRestoresIDOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.json")
	writer, err := output.NewWriter(&config.Config{Format: config.FormatJSON, OutputPath: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, record := range []output.Record{{ID: 2, Text: "pan"}, {ID: 0, Text: ""}, {ID: 1, Text: "width"}} {
		if err := writer.WriteRecord(record); err != nil {
			t.Fatalf("write record: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close dump: %v", err)
	}

	tbl := newTable()
	report, err := LoadFile(tbl, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Lines != 2 || report.Added != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if tbl.Text(1) != "width" || tbl.Text(2) != "pan" {
		t.Fatalf("expected dump IDs to be reproduced, got %q %q", tbl.Text(1), tbl.Text(2))
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(newTable(), filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadRejectsOverlongLine(t *testing.T) {
	line := strings.Repeat("x", maxLineSize+1)
	if _, err := Load(newTable(), strings.NewReader(line)); err == nil {
		t.Fatalf("expected error for overlong line")
	}
}
