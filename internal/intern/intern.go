// Package intern holds the canonical text arena behind the symbol table.
//
// Texts are copied into large byte blocks and addressed through fixed-size
// chunks of string headers. Neither blocks nor chunks are ever moved or
// reused, so a text handed out by Get stays valid for the lifetime of the
// Store no matter how many entries are appended afterwards.
package intern

import (
	"errors"
	"math"
	"math/bits"
	"sync/atomic"
	"unsafe"
)

const (
	DefaultChunkSize = 1024
	DefaultBlockSize = 64 * 1024
)

// ErrFull is raised when the position space of a Store is exhausted.
var ErrFull = errors.New("intern: store is full")

// Options controls the shape of a Store.
type Options struct {
	// ChunkSize is the number of entries per chunk. It is rounded up to a
	// power of two.
	ChunkSize int
	// BlockSize is the size in bytes of each text block. Texts larger than a
	// block get a block of their own.
	BlockSize int
}

type chunk struct {
	texts []string
}

// Store is an append-only arena of canonical texts indexed by position.
//
// Append must be serialised by the caller. Get and Len may run concurrently
// with Append: the chunk directory is replaced rather than mutated in place,
// and the entry count is published only after the entry is written.
type Store struct {
	chunkShift uint
	chunkMask  uint32
	chunkSize  int
	blockSize  int

	dir  atomic.Pointer[[]*chunk]
	size atomic.Uint32

	block  []byte
	blocks int
	bytes  int
}

// New creates a Store seeded with the empty text at position 0.
func New(opts Options) *Store {
	chunkSize := ceilPow2(opts.ChunkSize, DefaultChunkSize)
	blockSize := opts.BlockSize
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	s := &Store{
		chunkShift: uint(bits.TrailingZeros(uint(chunkSize))),
		chunkMask:  uint32(chunkSize - 1),
		chunkSize:  chunkSize,
		blockSize:  blockSize,
	}
	s.Reset()
	return s
}

// Reset drops every entry and re-seeds position 0 with the empty text.
// It must not run concurrently with any other method.
func (s *Store) Reset() {
	empty := make([]*chunk, 0, 4)
	s.dir.Store(&empty)
	s.size.Store(0)
	s.block = nil
	s.blocks = 0
	s.bytes = 0
	s.Append("")
}

// Append copies text into the arena and returns its position, along with
// whether a new chunk had to be allocated to hold it.
func (s *Store) Append(text string) (uint32, bool) {
	n := s.size.Load()
	if n == math.MaxUint32 {
		panic(ErrFull)
	}

	dir := *s.dir.Load()
	ci := int(n >> s.chunkShift)
	grew := false
	if ci == len(dir) {
		// Readers holding the previous directory never index past its length,
		// so appending into shared capacity is invisible to them.
		next := append(dir, &chunk{texts: make([]string, s.chunkSize)})
		s.dir.Store(&next)
		dir = next
		grew = true
	}

	dir[ci].texts[n&s.chunkMask] = s.copyText(text)
	s.size.Store(n + 1)
	return n, grew
}

func (s *Store) copyText(text string) string {
	if len(text) == 0 {
		return ""
	}
	if len(text) > cap(s.block)-len(s.block) {
		size := s.blockSize
		if len(text) > size {
			size = len(text)
		}
		s.block = make([]byte, 0, size)
		s.blocks++
	}
	start := len(s.block)
	s.block = append(s.block, text...)
	s.bytes += len(text)
	return unsafe.String(&s.block[start], len(text))
}

// Get returns the text stored at position i.
func (s *Store) Get(i uint32) (string, bool) {
	if i >= s.size.Load() {
		return "", false
	}
	dir := *s.dir.Load()
	return dir[i>>s.chunkShift].texts[i&s.chunkMask], true
}

// Len returns the number of stored entries, including position 0.
func (s *Store) Len() int {
	return int(s.size.Load())
}

// Chunks returns the number of allocated entry chunks.
func (s *Store) Chunks() int {
	return len(*s.dir.Load())
}

// Footprint reports the number of text blocks and the bytes of text stored
// in them. Like Append, it must be serialised with writers.
func (s *Store) Footprint() (blocks, bytes int) {
	return s.blocks, s.bytes
}

// ChunkSize returns the number of entries per chunk.
func (s *Store) ChunkSize() int {
	return s.chunkSize
}

func ceilPow2(n, fallback int) int {
	if n <= 0 {
		n = fallback
	}
	if n&(n-1) == 0 {
		return n
	}
	return 1 << bits.Len(uint(n))
}
