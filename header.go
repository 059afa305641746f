package psd

import (
	"fmt"
)

// Header represents the PSD file header
type Header struct {
	Sig      string
	Version  uint16
	Channels uint16
	Rows     uint32
	Cols     uint32
	Depth    uint16
	Mode     uint16
}

// Color modes
const (
	ColorModeBitmap           = 0
	ColorModeGrayscale        = 1
	ColorModeIndexedColor     = 2
	ColorModeRGBColor         = 3
	ColorModeCMYKColor        = 4
	ColorModeHSLColor         = 5
	ColorModeHSBColor         = 6
	ColorModeMultichannel     = 7
	ColorModeDuotone          = 8
	ColorModeLabColor         = 9
	ColorModeGray16           = 10
	ColorModeRGB48            = 11
	ColorModeLab48            = 12
	ColorModeCMYK64           = 13
	ColorModeDeepMultichannel = 14
	ColorModeDuotone16        = 15
)

const (
	signature = "8BPS"

	supportedVersion = 1
	supportedDepth   = 8

	// maxDimension is the largest canvas side a version 1 document may declare.
	maxDimension = 30000
)

var colorModeNames = []string{
	"Bitmap",
	"GrayScale",
	"IndexedColor",
	"RGBColor",
	"CMYKColor",
	"HSLColor",
	"HSBColor",
	"Multichannel",
	"Duotone",
	"LabColor",
	"Gray16",
	"RGB48",
	"Lab48",
	"CMYK64",
	"DeepMultichannel",
	"Duotone16",
}

// Width returns the width of the document
func (h *Header) Width() uint32 {
	return h.Cols
}

// Height returns the height of the document
func (h *Header) Height() uint32 {
	return h.Rows
}

// ModeName returns the human-readable color mode name
func (h *Header) ModeName() string {
	return modeName(h.Mode)
}

func modeName(mode uint16) string {
	if int(mode) < len(colorModeNames) {
		return colorModeNames[mode]
	}
	return fmt.Sprintf("Unknown(%d)", mode)
}

// parseHeader reads the fixed 26-byte file header. Only 8-bit RGB version 1
// documents are accepted.
func parseHeader(c *Cursor) (*Header, error) {
	h := &Header{}

	sig, err := c.ReadString(4)
	if err != nil {
		return nil, fmt.Errorf("failed to read signature: %w", err)
	}
	if sig != signature {
		return nil, formatError(ReasonSignature, "got %q", sig)
	}
	h.Sig = sig

	version, err := c.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	if version != supportedVersion {
		return nil, formatError(ReasonVersion, "got %d", version)
	}
	h.Version = version

	if err := c.Skip(6); err != nil {
		return nil, fmt.Errorf("failed to skip reserved bytes: %w", err)
	}

	if h.Channels, err = c.ReadUint16(); err != nil {
		return nil, fmt.Errorf("failed to read channels: %w", err)
	}
	if h.Rows, err = c.ReadUint32(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if h.Cols, err = c.ReadUint32(); err != nil {
		return nil, fmt.Errorf("failed to read cols: %w", err)
	}

	if h.Depth, err = c.ReadUint16(); err != nil {
		return nil, fmt.Errorf("failed to read depth: %w", err)
	}
	if h.Depth != supportedDepth {
		return nil, formatError(ReasonDepth, "%d bits per channel, want 8", h.Depth)
	}

	if h.Mode, err = c.ReadUint16(); err != nil {
		return nil, fmt.Errorf("failed to read mode: %w", err)
	}
	if h.Mode != ColorModeRGBColor {
		return nil, formatError(ReasonColorMode, "%s, want RGBColor", modeName(h.Mode))
	}

	if h.Rows == 0 || h.Cols == 0 || h.Rows > maxDimension || h.Cols > maxDimension {
		return nil, formatError(ReasonDimensions, "%dx%d", h.Cols, h.Rows)
	}

	return h, nil
}
