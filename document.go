package psd

import (
	"image"
	"image/color"
	"strings"
)

// Document is a decoded PSD: the canvas size and every drawable layer,
// topmost first.
type Document struct {
	Header   *Header
	Width    int
	Height   int
	Channels int
	Layers   []Layer

	// Warnings holds non-fatal problems met while decoding, such as skipped
	// channel kinds.
	Warnings []error

	// outline records folder dividers and layers in stacking order so Tree
	// can rebuild folders exactly.
	outline []outlineEntry
}

// Layer returns the layer at the "/"-joined name path, or nil.
func (d *Document) Layer(path string) *Layer {
	path = strings.TrimPrefix(path, "/")
	for i := range d.Layers {
		if d.Layers[i].Path() == path {
			return &d.Layers[i]
		}
	}
	return nil
}

// Layer is a single drawable layer padded or cropped to the canvas.
type Layer struct {
	// NamePath holds the enclosing folder names, outermost first, followed by
	// the layer's own name.
	NamePath []string

	Width  int
	Height int

	// Pixels is row-major, Width*Height long. Each value packs red in the
	// low byte, then green, blue and transparency.
	Pixels []uint32

	// Layer record fields, in canvas space
	Top    uint32
	Left   uint32
	Bottom uint32
	Right  uint32

	BlendModeKey string
	Opacity      uint8
	Clipping     uint8
	Flags        uint8

	// HasTransparency is set when a transparency channel was packed into byte 3.
	HasTransparency bool
}

// Name returns the layer's own name
func (l *Layer) Name() string {
	if len(l.NamePath) == 0 {
		return ""
	}
	return l.NamePath[len(l.NamePath)-1]
}

// Path returns the "/"-joined name path
func (l *Layer) Path() string {
	return strings.Join(l.NamePath, "/")
}

// Visible returns whether the layer is visible
func (l *Layer) Visible() bool {
	return l.Flags&0x02 == 0
}

// At returns the packed pixel at (x, y), or 0 outside the canvas.
func (l *Layer) At(x, y int) uint32 {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return 0
	}
	return l.Pixels[x+y*l.Width]
}

// Bounds returns the layer box in canvas coordinates. The box may extend past
// any edge of the canvas.
func (l *Layer) Bounds() image.Rectangle {
	return image.Rect(int(int32(l.Left)), int(int32(l.Top)), int(int32(l.Right)), int(int32(l.Bottom)))
}

// BlendMode returns the blend mode
func (l *Layer) BlendMode() *BlendMode {
	return &BlendMode{
		Mode:              blendModeName(l.BlendModeKey),
		Opacity:           l.Opacity,
		OpacityPercentage: int(float64(l.Opacity) / 255.0 * 100),
		Visible:           l.Visible(),
	}
}

// BlendMode represents layer blend mode information
type BlendMode struct {
	Mode              string
	Opacity           uint8
	OpacityPercentage int
	Visible           bool
}

var blendModes = map[string]string{
	"pass": "pass_through",
	"norm": "normal",
	"dark": "darken",
	"lite": "lighten",
	"hue ": "hue",
	"sat ": "saturation",
	"colr": "color",
	"lum ": "luminosity",
	"mul ": "multiply",
	"scrn": "screen",
	"diss": "dissolve",
	"over": "overlay",
	"hLit": "hard_light",
	"sLit": "soft_light",
	"diff": "difference",
	"smud": "exclusion",
	"div ": "color_dodge",
	"idiv": "color_burn",
	"lbrn": "linear_burn",
	"lddg": "linear_dodge",
	"vLit": "vivid_light",
	"lLit": "linear_light",
	"pLit": "pin_light",
	"hMix": "hard_mix",
	"lgCl": "lighter_color",
	"dkCl": "darker_color",
	"fsub": "subtract",
	"fdiv": "divide",
}

func blendModeName(key string) string {
	if mode, exists := blendModes[key]; exists {
		return mode
	}
	return strings.TrimSpace(key)
}

// ToImage converts the layer to a canvas-sized image.NRGBA. Layers without a
// transparency channel are opaque inside their box and clear elsewhere.
func (l *Layer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, l.Width, l.Height))
	box := l.Bounds().Intersect(img.Rect)

	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			p := l.Pixels[x+y*l.Width]
			a := uint8(p >> 24)
			if !l.HasTransparency {
				a = 0
				if image.Pt(x, y).In(box) {
					a = 255
				}
			}
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(p),
				G: uint8(p >> 8),
				B: uint8(p >> 16),
				A: a,
			})
		}
	}

	return img
}
