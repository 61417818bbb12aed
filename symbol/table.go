package symbol

import (
	"fmt"
	"sync"
	"unicode/utf8"
	"unsafe"

	"github.com/tidwall/btree"

	"github.com/RowanDark/symtab/internal/intern"
	"github.com/RowanDark/symtab/logging"
	"github.com/RowanDark/symtab/ratelimit"
	"github.com/RowanDark/symtab/stats"
)

// ID identifies an interned text. IDs are dense and issued in creation order.
type ID uint32

// NullID is the ID of the empty text.
const NullID ID = 0

const (
	DefaultMaxTextLength  = 56
	DefaultDiagnosticRate = 1
	diagnosticBurst       = 10
)

// Options configures a Table. The zero value is usable.
type Options struct {
	// MaxTextLength caps stored texts in bytes. Longer input is truncated
	// with a warning.
	MaxTextLength int
	// Buckets is the size of the hash index, rounded up to a power of two.
	Buckets int
	// ChunkSize and BlockSize shape the canonical text arena.
	ChunkSize int
	BlockSize int
	// Alphabetical maintains an ordered index so entries can be walked in
	// lexicographic order. It makes every insert O(log n) more expensive.
	Alphabetical bool

	Logger *logging.Logger
	Stats  *stats.Tracker
	// DiagnosticRate bounds warnings per second emitted from intern calls.
	DiagnosticRate float64
}

// Entry pairs an ID with its canonical text.
type Entry struct {
	ID   ID
	Text string
}

// Table is a symbol table. All methods are safe for concurrent use except
// Clear.
type Table struct {
	mu     sync.Mutex
	store  *intern.Store
	index  hashIndex
	sorted *btree.Map[string, ID]

	maxLen int
	log    *logging.Logger
	diag   *logging.Throttled
	stats  *stats.Tracker
}

func NewTable(opts Options) *Table {
	maxLen := opts.MaxTextLength
	if maxLen <= 0 {
		maxLen = DefaultMaxTextLength
	}
	logger := opts.Logger
	if logger == nil {
		var err error
		if logger, err = logging.New(logging.Options{Level: logging.LevelWarn}); err != nil {
			logger = logging.Discard()
		}
	}
	logger = logger.Named("symbol")
	rate := opts.DiagnosticRate
	if rate == 0 {
		rate = DefaultDiagnosticRate
	}

	t := &Table{
		store:  intern.New(intern.Options{ChunkSize: opts.ChunkSize, BlockSize: opts.BlockSize}),
		index:  newHashIndex(opts.Buckets),
		maxLen: maxLen,
		log:    logger,
		diag:   logging.NewThrottled(logger, rate, diagnosticBurst),
		stats:  opts.Stats,
	}
	if opts.Alphabetical {
		t.sorted = btree.NewMap[string, ID](32)
	}
	t.stats.SetEntries(t.store.Len())
	return t
}

// Intern returns the ID for text, creating a canonical entry on first sight.
// The empty text is always NullID. Text starting with a decimal digit is
// rejected with ErrLeadingDigit and NullID. Text longer than the configured
// maximum is truncated, not rejected.
//
// When text is already known Intern performs no allocation.
func (t *Table) Intern(text string) (ID, error) {
	if len(text) == 0 {
		return NullID, nil
	}
	if isDigit(text[0]) {
		t.stats.RecordInvalid()
		return NullID, fmt.Errorf("%w: %q", ErrLeadingDigit, text)
	}
	if len(text) > t.maxLen {
		if text = t.truncate(text); len(text) == 0 {
			return NullID, nil
		}
	}
	return t.intern(text), nil
}

// InternBytes is Intern for byte input. b is never retained.
func (t *Table) InternBytes(b []byte) (ID, error) {
	if len(b) == 0 {
		return NullID, nil
	}
	return t.Intern(unsafe.String(unsafe.SliceData(b), len(b)))
}

func (t *Table) intern(text string) ID {
	h := hashText(text)

	t.mu.Lock()
	if id, ok := t.findLocked(text, h); ok {
		t.mu.Unlock()
		t.stats.RecordHit()
		return id
	}

	pos, grew := t.store.Append(text)
	id := ID(pos)
	t.index.add(h, id)
	if t.sorted != nil {
		stored, _ := t.store.Get(pos)
		t.sorted.Set(stored, id)
	}
	t.mu.Unlock()

	t.stats.RecordInsert(grew)
	if grew && t.log.Enabled(logging.LevelDebug) {
		t.log.Debugf("canonical store grew to %d chunks at id %d", t.store.Chunks(), id)
	}
	return id
}

func (t *Table) findLocked(text string, h uint32) (ID, bool) {
	for _, id := range t.index.bucket(h) {
		if stored, _ := t.store.Get(uint32(id)); stored == text {
			return id, true
		}
	}
	return NullID, false
}

// truncate cuts text to the maximum length and reports the cut. The result
// is empty when no rune starts within the limit.
func (t *Table) truncate(text string) string {
	cut := cutText(text, t.maxLen)
	t.stats.RecordTruncation()
	t.diag.Warnf("text %q exceeds %d bytes; truncated to %q", text, t.maxLen, cut)
	return cut
}

// cutText shortens text to at most limit bytes, backing off to a rune
// boundary so canonical texts stay valid UTF-8 when the input was.
func cutText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// Lookup reports the ID of text without creating an entry. Input is
// normalised the same way Intern normalises it.
func (t *Table) Lookup(text string) (ID, bool) {
	if len(text) == 0 {
		return NullID, true
	}
	if isDigit(text[0]) {
		return NullID, false
	}
	if text = cutText(text, t.maxLen); len(text) == 0 {
		return NullID, true
	}
	h := hashText(text)
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.findLocked(text, h)
}

// Text resolves id to its canonical text without locking. The returned
// string stays valid for the life of the table. Resolving an ID the table
// never issued is a programming error and panics with ErrUnknownID.
func (t *Table) Text(id ID) string {
	text, ok := t.store.Get(uint32(id))
	if !ok {
		panic(fmt.Errorf("%w: %d (table holds %d entries)", ErrUnknownID, id, t.store.Len()))
	}
	return text
}

// TextOK is Text without the panic.
func (t *Table) TextOK(id ID) (string, bool) {
	return t.store.Get(uint32(id))
}

// Len returns the number of entries, including the null symbol.
func (t *Table) Len() int {
	return t.store.Len()
}

// Clear drops every entry and restarts numbering. Symbols created before
// Clear are meaningless afterwards. It must not run concurrently with any
// other use of the table.
func (t *Table) Clear() {
	t.mu.Lock()
	dropped := t.store.Len() - 1
	t.store.Reset()
	t.index.reset()
	if t.sorted != nil {
		t.sorted = btree.NewMap[string, ID](32)
	}
	t.mu.Unlock()

	t.stats.RecordReset(1)
	t.log.Infof("cleared %d entries", dropped)
}

// Entries returns every entry in ID order, starting with the null symbol.
func (t *Table) Entries() []Entry {
	n := t.store.Len()
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		text, _ := t.store.Get(uint32(i))
		entries = append(entries, Entry{ID: ID(i), Text: text})
	}
	return entries
}

// Alphabetical calls fn for every non-null entry in lexicographic order of
// text until fn returns false. The table must have been created with
// Options.Alphabetical. fn runs without the table lock held.
func (t *Table) Alphabetical(fn func(Entry) bool) error {
	t.mu.Lock()
	if t.sorted == nil {
		t.mu.Unlock()
		return ErrNoAlphabeticalIndex
	}
	entries := make([]Entry, 0, t.sorted.Len())
	t.sorted.Scan(func(text string, id ID) bool {
		entries = append(entries, Entry{ID: id, Text: text})
		return true
	})
	t.mu.Unlock()

	for _, e := range entries {
		if !fn(e) {
			break
		}
	}
	return nil
}

// BucketStats reports the occupancy of the hash index.
func (t *Table) BucketStats() BucketStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.index.stats()
}

// StorageStats describes the canonical text arena.
type StorageStats struct {
	Entries   int
	Chunks    int
	ChunkSize int
	Blocks    int
	TextBytes int
}

func (t *Table) StorageStats() StorageStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	blocks, textBytes := t.store.Footprint()
	return StorageStats{
		Entries:   t.store.Len(),
		Chunks:    t.store.Chunks(),
		ChunkSize: t.store.ChunkSize(),
		Blocks:    blocks,
		TextBytes: textBytes,
	}
}

// SuppressedDiagnostics returns the number of warnings dropped by the
// diagnostic throttle.
func (t *Table) SuppressedDiagnostics() uint64 {
	return t.diag.Suppressed()
}

// DiagnosticStatus reports the state of the diagnostic throttle.
func (t *Table) DiagnosticStatus() ratelimit.Status {
	return t.diag.Status()
}

// MaxTextLength returns the byte limit beyond which texts are truncated.
func (t *Table) MaxTextLength() int {
	return t.maxLen
}

func (t *Table) warnf(format string, args ...interface{}) {
	t.diag.Warnf(format, args...)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
