package psd

import (
	"fmt"
)

// Compression methods
const (
	CompressionRaw     uint16 = 0
	CompressionRLE     uint16 = 1
	CompressionZip     uint16 = 2
	CompressionZipPred uint16 = 3
)

const (
	rleNoOp = 0x80

	// rleMaxExpansion bounds output per input byte: 2 bytes decode to at most 128.
	rleMaxExpansion = 64
)

// parseChannelData decodes every channel of the layer, in declaration order,
// into buffers of exactly Width()*Height() bytes.
func (l *rawLayer) parseChannelData(c *Cursor) error {
	width := uint64(l.Width())
	height := uint64(l.Height())
	size := width * height

	for i := range l.Channels {
		ch := &l.Channels[i]

		compression, err := c.ReadUint16()
		if err != nil {
			return fmt.Errorf("failed to read compression for channel %d: %w", ch.Kind, err)
		}

		switch compression {
		case CompressionRaw:
			data, err := c.ReadBytes(size)
			if err != nil {
				return fmt.Errorf("failed to read raw data for channel %d: %w", ch.Kind, err)
			}
			ch.Data = make([]byte, size)
			copy(ch.Data, data)

		case CompressionRLE:
			// Per-row byte counts; the packets are self-delimiting.
			if err := c.Skip(2 * height); err != nil {
				return fmt.Errorf("failed to skip RLE byte counts for channel %d: %w", ch.Kind, err)
			}
			if size > uint64(c.Remaining())*rleMaxExpansion {
				return fmt.Errorf("%w: channel %d of layer %q needs %d bytes, at most %d available",
					ErrTruncatedInput, ch.Kind, l.Name, size, uint64(c.Remaining())*rleMaxExpansion)
			}
			ch.Data = make([]byte, size)
			if err := decodeRLE(c, ch.Data); err != nil {
				return fmt.Errorf("failed to decompress RLE for channel %d: %w", ch.Kind, err)
			}

		default:
			return &UnsupportedCompressionError{Method: compression, Layer: l.Name, Channel: ch.Kind}
		}
	}

	return nil
}

// decodeRLE fills dst from PackBits packets read from c. A control byte n
// below 0x80 is followed by n+1 literal bytes; above 0x80 it is followed by
// one byte repeated 257-n times; 0x80 itself is skipped.
func decodeRLE(c *Cursor, dst []byte) error {
	pos := 0
	for pos < len(dst) {
		n, err := c.ReadUint8()
		if err != nil {
			return err
		}

		switch {
		case n < rleNoOp:
			length := int(n) + 1
			if pos+length > len(dst) {
				return formatError(ReasonChannelData, "literal run of %d overflows %d remaining bytes", length, len(dst)-pos)
			}
			literal, err := c.ReadBytes(uint64(length))
			if err != nil {
				return err
			}
			pos += copy(dst[pos:], literal)

		case n > rleNoOp:
			length := 257 - int(n)
			if pos+length > len(dst) {
				return formatError(ReasonChannelData, "repeat run of %d overflows %d remaining bytes", length, len(dst)-pos)
			}
			val, err := c.ReadUint8()
			if err != nil {
				return err
			}
			for end := pos + length; pos < end; pos++ {
				dst[pos] = val
			}
		}
	}
	return nil
}
