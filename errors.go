package psd

import (
	"errors"
	"fmt"
)

// ErrTruncatedInput is returned when a read or skip would cross the end of
// the document buffer.
var ErrTruncatedInput = errors.New("truncated PSD")

// Format error reasons
const (
	ReasonSignature      = "signature"
	ReasonVersion        = "version"
	ReasonDepth          = "depth"
	ReasonColorMode      = "color-mode"
	ReasonDimensions     = "dimensions"
	ReasonLayerSignature = "layer-signature"
	ReasonChannelData    = "channel-data"
	ReasonGroupNesting   = "group-nesting"
)

// FormatError reports a document that is well-formed bytes but not a
// supported document.
type FormatError struct {
	Reason string
	Detail string
}

func (e *FormatError) Error() string {
	if e.Detail == "" {
		return "unsupported PSD: " + e.Reason
	}
	return fmt.Sprintf("unsupported PSD: %s: %s", e.Reason, e.Detail)
}

func formatError(reason, format string, args ...interface{}) *FormatError {
	return &FormatError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// UnsupportedCompressionError is returned when a channel uses a compression
// method other than raw or RLE. The rest of the stream cannot be located
// without decoding the channel, so it is always fatal.
type UnsupportedCompressionError struct {
	Method  uint16
	Layer   string
	Channel int16
}

func (e *UnsupportedCompressionError) Error() string {
	return fmt.Sprintf("unsupported compression %d for channel %d of layer %q", e.Method, e.Channel, e.Layer)
}

// UnsupportedChannelKindError is a warning: the channel was consumed from the
// stream but left out of the recomposed pixels.
type UnsupportedChannelKindError struct {
	Layer string
	Kind  int16
}

func (e *UnsupportedChannelKindError) Error() string {
	return fmt.Sprintf("unsupported channel kind %d in layer %q, ignoring", e.Kind, e.Layer)
}

// GroupNestingWarning describes a group close without a matching open, or
// groups still open once every layer has been walked.
type GroupNestingWarning struct {
	Layer string
	Open  []string
}

func (e *GroupNestingWarning) Error() string {
	if len(e.Open) > 0 {
		return fmt.Sprintf("%d group(s) never closed: %q", len(e.Open), e.Open)
	}
	return fmt.Sprintf("group close marker %q without an open group", e.Layer)
}

// IsUnsupported reports whether err means the input is not a document this
// package can decode, as opposed to a damaged one.
func IsUnsupported(err error) bool {
	var fe *FormatError
	var ce *UnsupportedCompressionError
	return errors.As(err, &fe) || errors.As(err, &ce)
}
