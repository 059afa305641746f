package psd

import (
	"fmt"
)

const (
	blendSignature = "8BIM"

	// groupFlags marks a record as a folder divider rather than a drawable layer.
	groupFlags = 0x18

	// groupCloseName is the name the editor gives the divider that closes a folder.
	groupCloseName = "</Layer group>"
)

// Channel kinds
const (
	ChannelRed          int16 = 0
	ChannelGreen        int16 = 1
	ChannelBlue         int16 = 2
	ChannelTransparency int16 = -1
	ChannelUserMask     int16 = -2
	ChannelVectorMask   int16 = -3
)

// rawLayer is one layer record as declared in the file. It only lives for
// the duration of a decode.
type rawLayer struct {
	Top    uint32
	Left   uint32
	Bottom uint32
	Right  uint32

	Name         string
	BlendModeKey string
	Opacity      uint8
	Clipping     uint8
	Flags        uint8

	Channels []rawChannel
}

// rawChannel holds one channel's declaration and, after the second pass,
// its decompressed bytes.
type rawChannel struct {
	Kind   int16
	Length uint32
	Data   []byte
}

// Width returns the width of the layer box. Coordinates are signed on disk;
// unsigned wrapping still gives the right extent for boxes that start above
// or left of the canvas.
func (l *rawLayer) Width() uint32 {
	return l.Right - l.Left
}

// Height returns the height of the layer box
func (l *rawLayer) Height() uint32 {
	return l.Bottom - l.Top
}

// IsGroupMarker reports whether the record opens or closes a folder.
func (l *rawLayer) IsGroupMarker() bool {
	return l.Flags&groupFlags == groupFlags
}

// IsGroupClose reports whether the record is the divider that closes a folder.
func (l *rawLayer) IsGroupClose() bool {
	return l.IsGroupMarker() && l.Name == groupCloseName
}

// parseRecord parses the layer record (not the channel image data)
func (l *rawLayer) parseRecord(c *Cursor) error {
	var err error
	if l.Top, err = c.ReadUint32(); err != nil {
		return err
	}
	if l.Left, err = c.ReadUint32(); err != nil {
		return err
	}
	if l.Bottom, err = c.ReadUint32(); err != nil {
		return err
	}
	if l.Right, err = c.ReadUint32(); err != nil {
		return err
	}

	channels, err := c.ReadUint16()
	if err != nil {
		return err
	}

	l.Channels = make([]rawChannel, channels)
	for i := range l.Channels {
		kind, err := c.ReadInt16()
		if err != nil {
			return err
		}
		length, err := c.ReadUint32()
		if err != nil {
			return err
		}
		l.Channels[i] = rawChannel{Kind: kind, Length: length}
	}

	sig, err := c.ReadString(4)
	if err != nil {
		return err
	}
	if sig != blendSignature {
		return formatError(ReasonLayerSignature, "got %q", sig)
	}

	if l.BlendModeKey, err = c.ReadString(4); err != nil {
		return err
	}
	if l.Opacity, err = c.ReadUint8(); err != nil {
		return err
	}
	if l.Clipping, err = c.ReadUint8(); err != nil {
		return err
	}
	if l.Flags, err = c.ReadUint8(); err != nil {
		return err
	}

	// Filler
	if err := c.Skip(1); err != nil {
		return err
	}

	extraLen, err := c.ReadUint32()
	if err != nil {
		return err
	}
	if err := c.need(uint64(extraLen)); err != nil {
		return err
	}
	extraEnd := c.Pos() + int(extraLen)

	// Layer mask data
	if _, err := c.SkipBlock(); err != nil {
		return err
	}
	// Layer blending ranges
	if _, err := c.SkipBlock(); err != nil {
		return err
	}
	if err := l.parseLayerName(c); err != nil {
		return err
	}

	if c.Pos() > extraEnd {
		return fmt.Errorf("%w: layer %q overruns its extra data by %d bytes", ErrTruncatedInput, l.Name, c.Pos()-extraEnd)
	}

	// Additional layer information ('luni', 'lsct', adjustment blocks, ...)
	if err := c.Skip(uint64(extraEnd - c.Pos())); err != nil {
		return err
	}

	return nil
}

// parseLayerName reads the Pascal string name, padded so that the length
// byte plus text is a multiple of 4.
func (l *rawLayer) parseLayerName(c *Cursor) error {
	nameLen, err := c.ReadUint8()
	if err != nil {
		return err
	}

	if l.Name, err = c.ReadString(int(nameLen)); err != nil {
		return err
	}

	padSize := (4 - (int(nameLen)+1)%4) % 4
	return c.Skip(uint64(padSize))
}
