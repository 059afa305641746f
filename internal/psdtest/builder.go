// Package psdtest builds synthetic PSD documents for tests.
package psdtest

import (
	"bytes"
	"encoding/binary"
)

// Channel kinds and compression methods as written to the file
const (
	Red          int16 = 0
	Green        int16 = 1
	Blue         int16 = 2
	Transparency int16 = -1
	UserMask     int16 = -2

	Raw uint16 = 0
	RLE uint16 = 1
)

// GroupCloseName is the name of a folder's closing divider.
const GroupCloseName = "</Layer group>"

// Document describes a file to synthesize. Layers are listed in file order,
// bottom of the stack first.
type Document struct {
	Signature string
	Version   uint16
	Channels  uint16
	Width     uint32
	Height    uint32
	Depth     uint16
	Mode      uint16

	ColorData []byte
	Resources []byte

	// NegativeCount writes the layer count negated.
	NegativeCount bool
	Layers        []Layer
}

// Layer is one layer record plus its channel image data.
type Layer struct {
	Top, Left, Bottom, Right uint32

	Name      string
	BlendMode string
	Opacity   uint8
	Flags     uint8

	MaskData       []byte
	BlendingRanges []byte
	// Extra is appended after the name as additional layer information.
	Extra []byte

	Channels []Channel
}

// Channel holds decoded bytes; Bytes encodes them with Compression.
type Channel struct {
	Kind        int16
	Compression uint16
	Data        []byte

	// Payload, when set, is written verbatim after the compression method.
	Payload []byte
}

// New returns an 8-bit RGB version 1 document with no layers.
func New(width, height uint32) *Document {
	return &Document{
		Signature: "8BPS",
		Version:   1,
		Channels:  3,
		Width:     width,
		Height:    height,
		Depth:     8,
		Mode:      3,
	}
}

// Group returns the divider that opens a folder.
func Group(name string) Layer {
	return Layer{Name: name, Flags: 0x18, BlendMode: "pass", Opacity: 255}
}

// GroupEnd returns the divider that closes a folder.
func GroupEnd() Layer {
	return Layer{Name: GroupCloseName, Flags: 0x18, BlendMode: "norm", Opacity: 255}
}

// Pixel returns a layer covering the box with one raw channel per kind.
func Pixel(name string, top, left, bottom, right uint32, channels map[int16][]byte) Layer {
	l := Layer{Name: name, Top: top, Left: left, Bottom: bottom, Right: right, BlendMode: "norm", Opacity: 255}
	for _, kind := range []int16{Transparency, Red, Green, Blue, UserMask} {
		if data, ok := channels[kind]; ok {
			l.Channels = append(l.Channels, Channel{Kind: kind, Compression: Raw, Data: data})
		}
	}
	return l
}

// Bytes serializes the document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer

	buf.WriteString(d.Signature)
	write(&buf, d.Version)
	buf.Write(make([]byte, 6))
	write(&buf, d.Channels)
	write(&buf, d.Height)
	write(&buf, d.Width)
	write(&buf, d.Depth)
	write(&buf, d.Mode)

	writeBlock(&buf, d.ColorData)
	writeBlock(&buf, d.Resources)

	var info bytes.Buffer
	if len(d.Layers) > 0 {
		count := int16(len(d.Layers))
		if d.NegativeCount {
			count = -count
		}
		write(&info, count)

		payloads := make([][][]byte, len(d.Layers))
		for i, l := range d.Layers {
			payloads[i] = l.payloads()
			l.writeRecord(&info, payloads[i])
		}
		for _, layer := range payloads {
			for _, p := range layer {
				info.Write(p)
			}
		}
	}

	var section bytes.Buffer
	if info.Len() > 0 {
		writeBlock(&section, info.Bytes())
		// Global layer mask info
		write(&section, uint32(0))
	}
	writeBlock(&buf, section.Bytes())

	// Merged image data, raw
	write(&buf, Raw)
	buf.Write(make([]byte, int(d.Channels)*int(d.Width)*int(d.Height)))

	return buf.Bytes()
}

func (l Layer) writeRecord(buf *bytes.Buffer, payloads [][]byte) {
	write(buf, l.Top)
	write(buf, l.Left)
	write(buf, l.Bottom)
	write(buf, l.Right)

	write(buf, uint16(len(l.Channels)))
	for i, ch := range l.Channels {
		write(buf, ch.Kind)
		write(buf, uint32(len(payloads[i])))
	}

	blend := l.BlendMode
	if blend == "" {
		blend = "norm"
	}
	buf.WriteString("8BIM")
	buf.WriteString(blend)
	buf.WriteByte(l.Opacity)
	buf.WriteByte(0) // clipping
	buf.WriteByte(l.Flags)
	buf.WriteByte(0) // filler

	var extra bytes.Buffer
	writeBlock(&extra, l.MaskData)
	writeBlock(&extra, l.BlendingRanges)
	extra.Write(PascalName(l.Name))
	extra.Write(l.Extra)
	writeBlock(buf, extra.Bytes())
}

// payloads encodes each channel: compression method followed by its data.
func (l Layer) payloads() [][]byte {
	width := int(int32(l.Right) - int32(l.Left))
	height := int(int32(l.Bottom) - int32(l.Top))

	out := make([][]byte, len(l.Channels))
	for i, ch := range l.Channels {
		var buf bytes.Buffer
		write(&buf, ch.Compression)
		switch {
		case ch.Payload != nil:
			buf.Write(ch.Payload)
		case ch.Compression == RLE:
			buf.Write(EncodeRows(ch.Data, width, height))
		default:
			buf.Write(ch.Data)
		}
		out[i] = buf.Bytes()
	}
	return out
}

// PascalName encodes name as a length byte plus text, zero padded to a
// multiple of 4.
func PascalName(name string) []byte {
	b := append([]byte{byte(len(name))}, name...)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

// EncodeRows PackBits-encodes data row by row and prefixes the table of
// per-row byte counts.
func EncodeRows(data []byte, width, height int) []byte {
	var counts, rows bytes.Buffer
	for y := 0; y < height; y++ {
		row := PackBits(data[y*width : (y+1)*width])
		write(&counts, uint16(len(row)))
		rows.Write(row)
	}
	return append(counts.Bytes(), rows.Bytes()...)
}

// PackBits encodes src as literal and repeat packets of at most 128 bytes.
func PackBits(src []byte) []byte {
	var out []byte
	for i := 0; i < len(src); {
		j := i + 1
		for j < len(src) && j-i < 128 && src[j] == src[i] {
			j++
		}
		if j-i >= 2 {
			out = append(out, byte(257-(j-i)), src[i])
			i = j
			continue
		}

		j = i + 1
		for j < len(src) && j-i < 128 && !(j+1 < len(src) && src[j] == src[j+1]) {
			j++
		}
		out = append(out, byte(j-i-1))
		out = append(out, src[i:j]...)
		i = j
	}
	return out
}

func write(buf *bytes.Buffer, v interface{}) {
	// bytes.Buffer writes never fail
	_ = binary.Write(buf, binary.BigEndian, v)
}

func writeBlock(buf *bytes.Buffer, data []byte) {
	write(buf, uint32(len(data)))
	buf.Write(data)
}
