// Package vocab preloads symbol tables from vocabulary files: plain text
// with one text per line, or JSON dumps written by symtab dump.
package vocab

import (
	"bufio"
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/RowanDark/symtab/output"
	"github.com/RowanDark/symtab/symbol"
)

//go:embed vocabularies/default.txt
var defaultVocabularyFS embed.FS

const defaultVocabularyPath = "vocabularies/default.txt"

const (
	scannerBufferSize        = 64 * 1024
	maxLineSize              = 4 * 1024 * 1024
	largeVocabularyThreshold = 10 * 1024 * 1024
	maxReportedRejects       = 16
)

// Report summarises a preload.
type Report struct {
	// Lines counts texts read, excluding blanks and comments.
	Lines int
	// Added counts texts that created a new entry.
	Added int
	// Rejected counts texts the table refused.
	Rejected int
	// Rejects holds the first few refused texts.
	Rejects []string
}

func (r *Report) reject(text []byte) {
	r.Rejected++
	if len(r.Rejects) < maxReportedRejects {
		r.Rejects = append(r.Rejects, string(text))
	}
}

// DefaultTexts returns the built-in vocabulary in file order, wildcards
// included.
func DefaultTexts() []string {
	data, err := defaultVocabularyFS.ReadFile(defaultVocabularyPath)
	if err != nil {
		return nil
	}
	var texts []string
	_ = scanLines(bytes.NewReader(data), func(line []byte) {
		texts = append(texts, string(line))
	})
	return texts
}

// LoadDefault interns the built-in vocabulary into tbl.
func LoadDefault(tbl *symbol.Table) (Report, error) {
	file, err := defaultVocabularyFS.Open(defaultVocabularyPath)
	if err != nil {
		return Report{}, err
	}
	defer file.Close()
	return Load(tbl, file)
}

// Load interns every line of r into tbl in order.
func Load(tbl *symbol.Table, r io.Reader) (Report, error) {
	var report Report
	before := tbl.Len()
	err := scanLines(r, func(line []byte) {
		report.Lines++
		if _, err := tbl.InternBytes(line); err != nil {
			report.reject(line)
		}
	})
	report.Added = tbl.Len() - before
	return report, err
}

// LoadFile interns the vocabulary at path into tbl. Files ending in .json
// are read as dumps and interned in ID order; anything else is read as
// lines. Large files are memory-mapped.
func LoadFile(tbl *symbol.Table, path string) (Report, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return loadDump(tbl, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return Report{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Report{}, err
	}

	size := info.Size()
	if size > largeVocabularyThreshold && info.Mode().IsRegular() && size <= int64(^uint(0)>>1) {
		data, err := unix.Mmap(int(file.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
		if err == nil {
			report, loadErr := Load(tbl, bytes.NewReader(data))
			_ = unix.Munmap(data)
			return report, loadErr
		}
		// fall back to streaming reader if mmap fails
	}

	return Load(tbl, file)
}

func loadDump(tbl *symbol.Table, path string) (Report, error) {
	records, err := output.LoadRecords(path)
	if err != nil {
		return Report{}, fmt.Errorf("reading dump %s: %w", path, err)
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	var report Report
	before := tbl.Len()
	for _, record := range records {
		if record.Text == "" {
			continue
		}
		report.Lines++
		if _, err := tbl.Intern(record.Text); err != nil {
			report.reject([]byte(record.Text))
		}
	}
	report.Added = tbl.Len() - before
	return report, nil
}

// scanLines calls fn with every trimmed line of r that is neither blank nor
// a comment. The slice passed to fn is only valid during the call.
func scanLines(r io.Reader, fn func([]byte)) error {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)
	scanner.Buffer(make([]byte, scannerBufferSize), maxLineSize)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		fn(line)
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("vocabulary line exceeds %d bytes: %w", maxLineSize, err)
		}
		return err
	}
	return nil
}
