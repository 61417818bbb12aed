// Package bufpool recycles scratch byte buffers for building derived texts.
package bufpool

import "sync"

// Cap is the starting capacity of pooled buffers. It comfortably holds any
// text the symbol table will keep after truncation.
const Cap = 128

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, Cap)
		return &b
	},
}

// Acquire obtains an empty buffer from the pool.
//
//go:inline
func Acquire() *[]byte {
	b := bufPool.Get().(*[]byte)
	*b = (*b)[:0]
	return b
}

// Release returns a buffer to the pool. Buffers that grew far beyond Cap
// are dropped so one oversized text does not pin memory.
//
//go:inline
func Release(b *[]byte) {
	if b == nil || cap(*b) > 8*Cap {
		return
	}
	*b = (*b)[:0]
	bufPool.Put(b)
}
