package psd

import (
	"github.com/sirupsen/logrus"
)

// composer turns raw layer records into canvas-sized packed layers.
type composer struct {
	width    uint32
	height   uint32
	strict   bool
	log      logrus.FieldLogger
	warnings []error
	outline  []outlineEntry
}

type outlineKind uint8

const (
	outlineOpen outlineKind = iota
	outlineClose
	outlineLayer
)

// outlineEntry is one step of the stacking order: a folder opening, a folder
// closing, or the index of a composed layer.
type outlineEntry struct {
	kind  outlineKind
	layer int

	// Opening divider fields
	name         string
	blendModeKey string
	opacity      uint8
	flags        uint8
}

// compose walks the records top of the stack first. In that direction a
// folder's named divider comes before its contents and the close divider
// after them, so a stack of names is enough to rebuild every layer's path.
func (cp *composer) compose(raw []rawLayer) ([]Layer, error) {
	var path []string
	layers := make([]Layer, 0, len(raw))

	for i := len(raw) - 1; i >= 0; i-- {
		rl := &raw[i]

		if rl.IsGroupMarker() {
			if rl.IsGroupClose() {
				if len(path) == 0 {
					w := &GroupNestingWarning{Layer: rl.Name}
					if cp.strict {
						return nil, formatError(ReasonGroupNesting, "%s", w.Error())
					}
					cp.warn(w, logrus.Fields{"layer": rl.Name, "index": i})
					continue
				}
				path = path[:len(path)-1]
				cp.outline = append(cp.outline, outlineEntry{kind: outlineClose})
			} else {
				path = append(path, rl.Name)
				cp.outline = append(cp.outline, outlineEntry{
					kind:         outlineOpen,
					name:         rl.Name,
					blendModeKey: rl.BlendModeKey,
					opacity:      rl.Opacity,
					flags:        rl.Flags,
				})
			}
			continue
		}

		cp.outline = append(cp.outline, outlineEntry{kind: outlineLayer, layer: len(layers)})
		layers = append(layers, cp.composeLayer(rl, path))
	}

	if len(path) > 0 {
		w := &GroupNestingWarning{Open: append([]string(nil), path...)}
		if cp.strict {
			return nil, formatError(ReasonGroupNesting, "%s", w.Error())
		}
		cp.warn(w, logrus.Fields{"depth": len(path)})
	}

	return layers, nil
}

func (cp *composer) composeLayer(rl *rawLayer, path []string) Layer {
	namePath := make([]string, len(path)+1)
	copy(namePath, path)
	namePath[len(path)] = rl.Name

	layer := Layer{
		NamePath:     namePath,
		Width:        int(cp.width),
		Height:       int(cp.height),
		Pixels:       make([]uint32, int(cp.width)*int(cp.height)),
		Top:          rl.Top,
		Left:         rl.Left,
		Bottom:       rl.Bottom,
		Right:        rl.Right,
		BlendModeKey: rl.BlendModeKey,
		Opacity:      rl.Opacity,
		Clipping:     rl.Clipping,
		Flags:        rl.Flags,
	}

	for _, ch := range rl.Channels {
		slot, ok := channelSlot(ch.Kind)
		if !ok {
			cp.warn(&UnsupportedChannelKindError{Layer: rl.Name, Kind: ch.Kind},
				logrus.Fields{"layer": rl.Name, "kind": ch.Kind})
			continue
		}
		if ch.Kind == ChannelTransparency {
			layer.HasTransparency = true
		}
		cp.pack(layer.Pixels, rl, ch.Data, slot*8)
	}

	return layer
}

// pack ORs one channel into pixels. Bytes run left to right from the box's
// bottom row upward; anything landing outside the canvas is dropped. The
// arithmetic wraps, so negative coordinates come out as huge values and fail
// the canvas check.
func (cp *composer) pack(pixels []uint32, rl *rawLayer, data []byte, shift uint) {
	x := rl.Left
	y := rl.Bottom - 1
	for _, b := range data {
		if x < cp.width && y < cp.height {
			pixels[x+y*cp.width] |= uint32(b) << shift
		}
		x++
		if x == rl.Right {
			x = rl.Left
			y--
		}
	}
}

func (cp *composer) warn(err error, fields logrus.Fields) {
	cp.warnings = append(cp.warnings, err)
	cp.log.WithFields(fields).Warn(err.Error())
}

// channelSlot maps a channel kind to its byte in the packed pixel.
func channelSlot(kind int16) (uint, bool) {
	switch kind {
	case ChannelRed, ChannelGreen, ChannelBlue:
		return uint(kind), true
	case ChannelTransparency:
		return 3, true
	}
	return 0, false
}
