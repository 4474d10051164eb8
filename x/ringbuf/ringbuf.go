// x/ringbuf/ringbuf.go
// Package ringbuf is a single-producer single-consumer byte ring. The
// producer is an interrupt handler (UART receive), the consumer is
// mainline code; neither side blocks or allocates.
package ringbuf

import "sync/atomic"

type Ring struct {
	buf  []byte
	mask uint32
	rd   atomic.Uint32 // consumer index, monotonic
	wr   atomic.Uint32 // producer index, monotonic

	drops atomic.Uint32 // bytes discarded because the ring was full
}

// New returns a ring of the given size, which must be a power of two >= 2.
func New(size int) *Ring {
	if size < 2 || (size&(size-1)) != 0 {
		panic("ringbuf: size must be power of two >= 2")
	}
	return &Ring{buf: make([]byte, size), mask: uint32(size - 1)}
}

// Put appends one byte from the producer side. A full ring drops the byte
// and reports false; the interrupt handler must never wait on the consumer.
func (r *Ring) Put(b byte) bool {
	rd := r.rd.Load()
	wr := r.wr.Load()
	if wr-rd >= uint32(len(r.buf)) {
		r.drops.Add(1)
		return false
	}
	r.buf[wr&r.mask] = b
	r.wr.Store(wr + 1) // release
	return true
}

// Get removes one byte from the consumer side.
func (r *Ring) Get() (byte, bool) {
	rd := r.rd.Load()
	wr := r.wr.Load() // acquire
	if wr == rd {
		return 0, false
	}
	b := r.buf[rd&r.mask]
	r.rd.Store(rd + 1) // release
	return b, true
}

// Len reports the bytes currently buffered.
func (r *Ring) Len() int {
	return int(r.wr.Load() - r.rd.Load())
}

// Drops reports how many producer bytes were discarded on a full ring.
func (r *Ring) Drops() uint32 { return r.drops.Load() }
