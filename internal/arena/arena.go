// Package arena provides a bump allocator for short-lived buffers that are
// released together, such as the strings handed to a single C callback.
//
// An Arena keeps two generations. Allocations come from the current one;
// Reset zeroes every byte handed out since the previous Reset and makes the
// other generation current, so chunks are reused without reallocation.
package arena

const (
	align            = 8
	defaultChunkSize = 4096
)

// Allocator supplies the chunks an Arena carves up.
type Allocator interface {
	Alloc(n int) []byte
	Free(b []byte)
}

// GoAllocator allocates chunks on the Go heap.
type GoAllocator struct{}

func (GoAllocator) Alloc(n int) []byte { return make([]byte, n) }
func (GoAllocator) Free([]byte)        {}

type chunk struct {
	buf  []byte
	used int
}

type generation struct {
	chunks []*chunk
	next   int
}

// Arena is not safe for concurrent use.
type Arena struct {
	alloc     Allocator
	chunkSize int
	gens      [2]generation
	cur       int
}

// New returns an arena drawing chunks of at least chunkSize bytes from a.
// A nil allocator means GoAllocator; a non-positive size means 4 KiB.
func New(a Allocator, chunkSize int) *Arena {
	if a == nil {
		a = GoAllocator{}
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Arena{alloc: a, chunkSize: chunkSize}
}

// Bytes returns n zeroed bytes, 8-byte aligned within their chunk.
func (a *Arena) Bytes(n int) []byte {
	if n <= 0 {
		n = 1
	}
	size := (n + align - 1) &^ (align - 1)
	g := &a.gens[a.cur]

	for g.next < len(g.chunks) {
		c := g.chunks[g.next]
		if len(c.buf)-c.used >= size {
			b := c.buf[c.used : c.used+n : c.used+size]
			c.used += size
			return b
		}
		g.next++
	}

	capacity := a.chunkSize
	if size > capacity {
		capacity = size
	}
	c := &chunk{buf: a.alloc.Alloc(capacity)}
	g.chunks = append(g.chunks, c)
	g.next = len(g.chunks) - 1
	c.used = size
	return c.buf[:n:size]
}

// String copies s into the arena followed by a NUL byte.
func (a *Arena) String(s string) []byte {
	b := a.Bytes(len(s) + 1)
	copy(b, s)
	b[len(s)] = 0
	return b
}

// Used returns the bytes handed out by the current generation.
func (a *Arena) Used() int {
	total := 0
	for _, c := range a.gens[a.cur].chunks {
		total += c.used
	}
	return total
}

// Generation returns the index of the current generation, 0 or 1.
func (a *Arena) Generation() int { return a.cur }

// Reset zeroes everything allocated from the current generation and flips
// to the other one.
func (a *Arena) Reset() {
	g := &a.gens[a.cur]
	for _, c := range g.chunks {
		clear(c.buf[:c.used])
		c.used = 0
	}
	g.next = 0
	a.cur ^= 1
}

// Release zeroes and frees every chunk. The arena is empty but usable
// afterwards.
func (a *Arena) Release() {
	for i := range a.gens {
		for _, c := range a.gens[i].chunks {
			clear(c.buf[:c.used])
			a.alloc.Free(c.buf)
		}
		a.gens[i] = generation{}
	}
	a.cur = 0
}
