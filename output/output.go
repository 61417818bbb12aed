package output

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/RowanDark/symtab/config"
	"github.com/RowanDark/symtab/symbol"
)

// Record is the serialised form of a symbol table entry.
type Record struct {
	ID   uint32 `json:"id"`
	Text string `json:"text"`
}

// FromEntry converts a table entry to a Record.
func FromEntry(e symbol.Entry) Record {
	return Record{ID: uint32(e.ID), Text: e.Text}
}

// Writer serialises records to stdout or a file in a configured format.
type Writer struct {
	format        config.Format
	closer        io.Closer
	csvWriter     *csv.Writer
	csvHeaderSent bool
	encoder       *json.Encoder
	buffered      *bufio.Writer
	count         int
}

// NewWriter creates a writer configured according to the provided options.
func NewWriter(cfg *config.Config) (*Writer, error) {
	if cfg.LiveOutput() {
		return NewWriterTo(os.Stdout, cfg), nil
	}

	if dir := filepath.Dir(cfg.OutputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil && !os.IsExist(err) {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	file, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("opening output file: %w", err)
	}

	writer := NewWriterTo(file, cfg)
	writer.closer = file
	return writer, nil
}

// NewWriterTo creates a writer that serialises to dest. The caller keeps
// ownership of dest.
func NewWriterTo(dest io.Writer, cfg *config.Config) *Writer {
	writer := &Writer{format: cfg.Format}
	writer.buffered = bufio.NewWriter(dest)

	switch cfg.Format {
	case config.FormatJSON:
		writer.encoder = json.NewEncoder(writer.buffered)
		writer.encoder.SetEscapeHTML(false)
		if cfg.JSONPretty {
			writer.encoder.SetIndent("", "  ")
		}
	case config.FormatCSV:
		writer.csvWriter = csv.NewWriter(writer.buffered)
	}
	return writer
}

// WriteRecord persists a single record using the configured format.
func (w *Writer) WriteRecord(record Record) error {
	var err error
	switch w.format {
	case config.FormatJSON:
		err = w.encoder.Encode(record)
	case config.FormatCSV:
		err = w.writeCSVRecord(record)
	case config.FormatTXT, "":
		err = w.writeTXTRecord(record)
	default:
		return fmt.Errorf("unsupported output format: %s", w.format)
	}
	if err != nil {
		return err
	}
	w.count++
	return nil
}

// WriteEntries writes every entry in order.
func (w *Writer) WriteEntries(entries []symbol.Entry) error {
	for _, e := range entries {
		if err := w.WriteRecord(FromEntry(e)); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	return w.count
}

func (w *Writer) writeCSVRecord(record Record) error {
	if w.csvWriter == nil {
		return fmt.Errorf("csv writer not initialised")
	}

	if !w.csvHeaderSent {
		if err := w.csvWriter.Write([]string{"id", "text"}); err != nil {
			return err
		}
		w.csvHeaderSent = true
	}

	if err := w.csvWriter.Write([]string{strconv.FormatUint(uint64(record.ID), 10), record.Text}); err != nil {
		return err
	}
	return w.csvWriter.Error()
}

func (w *Writer) writeTXTRecord(record Record) error {
	if w.buffered == nil {
		return fmt.Errorf("txt writer not initialised")
	}
	_, err := fmt.Fprintf(w.buffered, "%d\t%s\n", record.ID, record.Text)
	return err
}

// Close flushes any buffered data and closes owned file handles.
func (w *Writer) Close() error {
	if w.csvWriter != nil {
		w.csvWriter.Flush()
		if err := w.csvWriter.Error(); err != nil {
			return err
		}
	}

	if w.buffered != nil {
		if err := w.buffered.Flush(); err != nil {
			return err
		}
	}

	if w.closer != nil {
		return w.closer.Close()
	}

	return nil
}
