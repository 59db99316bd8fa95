package arena

import (
	"encoding/binary"

	"github.com/strandlabs/binmsg/errors"
)

// Reader is a positional cursor over an input message. Reads consume bytes in
// host order; an under-run fails without moving the cursor.
type Reader struct {
	data   []byte
	cursor int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) Remaining() int {
	return len(r.data) - r.cursor
}

// ReadLength reads the uint32 count prefix of a string or dynamic array.
func (r *Reader) ReadLength(v *uint32) error {
	if r.Remaining() < 4 {
		return errors.ShortInput(errors.PhaseWrite, nil, 4, r.Remaining())
	}
	*v = binary.NativeEndian.Uint32(r.data[r.cursor:])
	r.cursor += 4
	return nil
}

// Read copies size bytes from the cursor into dst. Neither the cursor nor the
// destination window advances on failure.
func (r *Reader) Read(size int, dst *Window) error {
	if size > r.Remaining() {
		return errors.ShortInput(errors.PhaseWrite, nil, size, r.Remaining())
	}
	if err := dst.Write(r.data[r.cursor : r.cursor+size]); err != nil {
		return err
	}
	r.cursor += size
	return nil
}
