package buf

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated indicates the input ended before a read could be satisfied.
	ErrTruncated = errors.New("buf: truncated input")
	// ErrOverrun indicates a read ran past the declared end of a bounded section.
	ErrOverrun = errors.New("buf: section overrun")
)

// CursorError records where a read failed. Offset is absolute within the
// buffer the root cursor was created over.
type CursorError struct {
	Op     string
	Offset int64
	Want   int
	Have   int
	Err    error
}

func (e *CursorError) Error() string {
	return fmt.Sprintf("%s at offset %d: need %d bytes, have %d: %v", e.Op, e.Offset, e.Want, e.Have, e.Err)
}

func (e *CursorError) Unwrap() error { return e.Err }

// Cursor is a sequential big-endian reader over an immutable byte slice.
// Slices returned by Bytes alias the underlying buffer.
//
// A cursor created by Section is bounded: running out of bytes inside it is
// reported as ErrOverrun instead of ErrTruncated, because the enclosing
// structure declared fewer bytes than its contents need.
type Cursor struct {
	data    []byte
	pos     int
	base    int64
	bounded bool
}

// NewCursor returns a cursor positioned at the start of b.
func NewCursor(b []byte) *Cursor {
	return &Cursor{data: b}
}

// Pos returns the absolute offset of the next byte to be read.
func (c *Cursor) Pos() int64 { return c.base + int64(c.pos) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.pos }

// Len returns the total number of bytes visible to this cursor.
func (c *Cursor) Len() int { return len(c.data) }

// Rest returns the unread bytes without advancing.
func (c *Cursor) Rest() []byte { return c.data[c.pos:] }

func (c *Cursor) fail(op string, want int) error {
	sentinel := ErrTruncated
	if c.bounded {
		sentinel = ErrOverrun
	}
	return &CursorError{Op: op, Offset: c.Pos(), Want: want, Have: c.Remaining(), Err: sentinel}
}

func (c *Cursor) take(op string, n int) ([]byte, error) {
	if n < 0 {
		return nil, &CursorError{Op: op, Offset: c.Pos(), Want: n, Have: c.Remaining(), Err: ErrOverrun}
	}
	b, ok := Slice(c.data, c.pos, n)
	if !ok {
		return nil, c.fail(op, n)
	}
	c.pos += n
	return b, nil
}

// U8 reads one byte.
func (c *Cursor) U8() (uint8, error) {
	b, err := c.take("read u8", 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a big-endian uint16.
func (c *Cursor) U16() (uint16, error) {
	b, err := c.take("read u16", 2)
	if err != nil {
		return 0, err
	}
	return U16BE(b), nil
}

// I16 reads a big-endian int16.
func (c *Cursor) I16() (int16, error) {
	b, err := c.take("read i16", 2)
	if err != nil {
		return 0, err
	}
	return I16BE(b), nil
}

// U32 reads a big-endian uint32.
func (c *Cursor) U32() (uint32, error) {
	b, err := c.take("read u32", 4)
	if err != nil {
		return 0, err
	}
	return U32BE(b), nil
}

// I32 reads a big-endian int32.
func (c *Cursor) I32() (int32, error) {
	b, err := c.take("read i32", 4)
	if err != nil {
		return 0, err
	}
	return I32BE(b), nil
}

// U64 reads a big-endian uint64.
func (c *Cursor) U64() (uint64, error) {
	b, err := c.take("read u64", 8)
	if err != nil {
		return 0, err
	}
	return U64BE(b), nil
}

// Bytes returns the next n bytes. The result aliases the buffer.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	return c.take("read bytes", n)
}

// Skip advances past n bytes.
func (c *Cursor) Skip(n int) error {
	_, err := c.take("skip", n)
	return err
}

// FourCC reads a four-character type tag such as "8BIM" or "lsct".
func (c *Cursor) FourCC() (string, error) {
	b, err := c.take("read fourcc", 4)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PascalString reads a length-prefixed string and skips the padding that
// rounds the total size (length byte included) up to a multiple of pad.
// Resource names pad to 2, layer names to 4. The raw bytes are returned
// undecoded.
func (c *Cursor) PascalString(pad int) ([]byte, error) {
	n, err := c.U8()
	if err != nil {
		return nil, err
	}
	s, err := c.take("read pascal string", int(n))
	if err != nil {
		return nil, err
	}
	if padding := PadTo(int(n)+1, pad) - (int(n) + 1); padding > 0 {
		if err := c.Skip(padding); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Section runs body over a child cursor limited to the next declared bytes,
// then advances c to the end of the section whether or not body consumed
// everything. Trailing bytes the body does not understand are tolerated.
//
// A declared length that exceeds what c has left fails before body runs:
// ErrTruncated at top level, ErrOverrun inside another section.
func (c *Cursor) Section(declared int, body func(*Cursor) error) error {
	if declared < 0 || declared > c.Remaining() {
		return c.fail("section", declared)
	}
	child := &Cursor{
		data:    c.data[c.pos : c.pos+declared],
		base:    c.Pos(),
		bounded: true,
	}
	if err := body(child); err != nil {
		return err
	}
	c.pos += declared
	return nil
}

// Sub returns a bounded cursor over the next n bytes and advances c past them.
func (c *Cursor) Sub(n int) (*Cursor, error) {
	start := c.Pos()
	b, err := c.take("sub", n)
	if err != nil {
		return nil, err
	}
	return &Cursor{data: b, base: start, bounded: true}, nil
}
