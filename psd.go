// Package psd decodes 8-bit RGB Photoshop documents into a flat list of
// canvas-sized layers. Folder structure is kept as each layer's name path.
package psd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// DecodeOptions contains options for decoding
type DecodeOptions struct {
	// Logger receives warnings and debug progress. Nil discards everything.
	Logger logrus.FieldLogger

	// StrictGroups fails the decode on unbalanced folder dividers instead of
	// recording a warning.
	StrictGroups bool
}

var discardLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

// Decode decodes a whole document held in memory.
func Decode(data []byte) (*Document, error) {
	return DecodeWithOptions(data, DecodeOptions{})
}

// DecodeWithOptions decodes a whole document held in memory. No partial
// document is returned on error.
func DecodeWithOptions(data []byte, opts DecodeOptions) (*Document, error) {
	log := opts.Logger
	if log == nil {
		log = discardLogger
	}

	c := NewCursor(data)

	header, err := parseHeader(c)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	log.WithFields(logrus.Fields{
		"width":    header.Width(),
		"height":   header.Height(),
		"channels": header.Channels,
	}).Debug("parsed header")

	if _, err := c.SkipBlock(); err != nil {
		return nil, fmt.Errorf("failed to skip color mode data: %w", err)
	}
	if _, err := c.SkipBlock(); err != nil {
		return nil, fmt.Errorf("failed to skip image resources: %w", err)
	}

	raw, err := parseLayerMask(c, log)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layer mask: %w", err)
	}

	cp := &composer{
		width:  header.Width(),
		height: header.Height(),
		strict: opts.StrictGroups,
		log:    log,
	}
	layers, err := cp.compose(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to compose layers: %w", err)
	}

	return &Document{
		Header:   header,
		Width:    int(header.Width()),
		Height:   int(header.Height()),
		Channels: int(header.Channels),
		Layers:   layers,
		Warnings: cp.warnings,
		outline:  cp.outline,
	}, nil
}

// DecodeFile reads and decodes the document at filename.
func DecodeFile(filename string, opts DecodeOptions) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	doc, err := DecodeWithOptions(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return doc, nil
}

// Open decodes a PSD file and executes the provided function
func Open(filename string, fn func(*Document) error) error {
	doc, err := DecodeFile(filename, DecodeOptions{})
	if err != nil {
		return err
	}
	return fn(doc)
}
