package arena

import (
	"encoding/binary"
	"slices"

	"github.com/valyala/bytebufferpool"

	"github.com/strandlabs/binmsg/errors"
)

// Arena is an append-only byte buffer. Allocations carve half-open windows out
// of its tail; the arena never shrinks, so window begin offsets stay valid for
// its whole lifetime even as the backing slice is reallocated by growth.
//
// Backing storage comes from a shared bytebufferpool so batch translators
// reuse large buffers across writers.
type Arena struct {
	buf *bytebufferpool.ByteBuffer
}

func New() *Arena {
	return &Arena{buf: bytebufferpool.Get()}
}

// Release returns the backing buffer to the pool. The arena and every window
// carved from it are invalid afterwards.
func (a *Arena) Release() {
	if a.buf != nil {
		bytebufferpool.Put(a.buf)
		a.buf = nil
	}
}

func (a *Arena) Len() int {
	return len(a.buf.B)
}

// Bytes borrows the arena contents. The slice is invalidated by the next
// allocation or Release.
func (a *Arena) Bytes() []byte {
	return a.buf.B
}

// Reserve ensures capacity for at least n more bytes without changing length.
func (a *Arena) Reserve(n int) {
	a.buf.B = slices.Grow(a.buf.B, n)
}

// Allocate extends the arena by size zeroed bytes and returns a window over
// the new region. A zero size yields an empty window with no growth.
func (a *Arena) Allocate(size int) Window {
	begin := len(a.buf.B)
	if size != 0 {
		a.buf.B = slices.Grow(a.buf.B, size)[:begin+size]
		clear(a.buf.B[begin : begin+size])
	}
	return Window{
		arena: a,
		next:  begin,
		end:   begin + size,
	}
}

// Window is a write cursor over the half-open range [next, end) of an arena.
// It resolves the arena's memory on every write instead of holding a byte
// slice: allocations for sibling windows may move the backing array, and a
// retained slice would then point at dead memory.
type Window struct {
	arena *Arena
	next  int
	end   int
}

// Pos returns the current cursor position as an absolute arena offset.
func (w *Window) Pos() int {
	return w.next
}

func (w *Window) room() int {
	return w.end - w.next
}

// Write copies p at the cursor and advances it. Fails without writing if the
// window cannot hold all of p.
func (w *Window) Write(p []byte) error {
	if len(p) > w.room() {
		return errors.WindowOverflow(errors.PhaseWrite, nil, len(p), w.room())
	}
	copy(w.arena.buf.B[w.next:w.end], p)
	w.next += len(p)
	return nil
}

// WriteOffsetPair writes the 8-byte (count, offset) marker linking a record
// slot to a side allocation. Host byte order, count first.
func (w *Window) WriteOffsetPair(count, offset uint32) error {
	if w.room() < 8 {
		return errors.WindowOverflow(errors.PhaseWrite, nil, 8, w.room())
	}
	binary.NativeEndian.PutUint32(w.arena.buf.B[w.next:], count)
	binary.NativeEndian.PutUint32(w.arena.buf.B[w.next+4:], offset)
	w.next += 8
	return nil
}
