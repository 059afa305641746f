package psd

import (
	"encoding/binary"
	"fmt"
)

// Cursor is a bounds-checked big-endian reader over an in-memory document.
// Every section parser reads through it; none index the buffer directly.
type Cursor struct {
	buf []byte
	pos int
	end int
}

// NewCursor creates a cursor over the whole of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf, end: len(buf)}
}

// Pos returns the current read offset
func (c *Cursor) Pos() int {
	return c.pos
}

// Remaining returns the number of unread bytes
func (c *Cursor) Remaining() int {
	return c.end - c.pos
}

// need fails unless n more bytes are available. Comparing against the
// remaining count rather than pos+n keeps huge n from wrapping.
func (c *Cursor) need(n uint64) error {
	if n > uint64(c.end-c.pos) {
		return fmt.Errorf("%w: need %d bytes at offset %d, %d left", ErrTruncatedInput, n, c.pos, c.end-c.pos)
	}
	return nil
}

// ReadBigEndian reads an unsigned big-endian integer of n bytes, n being 1, 2 or 4.
func (c *Cursor) ReadBigEndian(n int) (uint32, error) {
	if err := c.need(uint64(n)); err != nil {
		return 0, err
	}
	b := c.buf[c.pos : c.pos+n]
	var v uint32
	switch n {
	case 1:
		v = uint32(b[0])
	case 2:
		v = uint32(binary.BigEndian.Uint16(b))
	case 4:
		v = binary.BigEndian.Uint32(b)
	default:
		return 0, fmt.Errorf("psd: invalid integer width %d", n)
	}
	c.pos += n
	return v, nil
}

// ReadUint8 reads a single byte
func (c *Cursor) ReadUint8() (uint8, error) {
	v, err := c.ReadBigEndian(1)
	return uint8(v), err
}

// ReadUint16 reads a 16-bit unsigned integer (big endian)
func (c *Cursor) ReadUint16() (uint16, error) {
	v, err := c.ReadBigEndian(2)
	return uint16(v), err
}

// ReadInt16 reads a 16-bit signed integer (big endian)
func (c *Cursor) ReadInt16() (int16, error) {
	v, err := c.ReadBigEndian(2)
	return int16(uint16(v)), err
}

// ReadUint32 reads a 32-bit unsigned integer (big endian)
func (c *Cursor) ReadUint32() (uint32, error) {
	return c.ReadBigEndian(4)
}

// ReadBytes returns the next n bytes. The slice aliases the backing buffer.
func (c *Cursor) ReadBytes(n uint64) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := c.buf[c.pos : c.pos+int(n)]
	c.pos += int(n)
	return b, nil
}

// ReadString reads a string of specified length
func (c *Cursor) ReadString(n int) (string, error) {
	b, err := c.ReadBytes(uint64(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Skip advances the cursor by n bytes without reading them.
func (c *Cursor) Skip(n uint64) error {
	if err := c.need(n); err != nil {
		return err
	}
	c.pos += int(n)
	return nil
}

// SkipBlock reads a 4-byte length and skips that many bytes.
func (c *Cursor) SkipBlock() (uint32, error) {
	length, err := c.ReadUint32()
	if err != nil {
		return 0, err
	}
	return length, c.Skip(uint64(length))
}
