package psd

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// parseLayerMask reads the layer and mask information section: every layer
// record first, then every layer's channel image data in the same order.
// The returned records are in file order, bottom of the stack first.
func parseLayerMask(c *Cursor, log logrus.FieldLogger) ([]rawLayer, error) {
	length, err := c.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("failed to read layer mask length: %w", err)
	}
	if length == 0 {
		return nil, nil
	}
	if err := c.need(uint64(length)); err != nil {
		return nil, fmt.Errorf("layer mask section: %w", err)
	}

	infoLength, err := c.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("failed to read layer info length: %w", err)
	}
	if infoLength == 0 {
		return nil, nil
	}

	count, err := c.ReadInt16()
	if err != nil {
		return nil, fmt.Errorf("failed to read layer count: %w", err)
	}

	// Negative count means the merged result carries an extra alpha channel.
	n := int(count)
	if n < 0 {
		n = -n
	}

	log.WithFields(logrus.Fields{
		"layers":       n,
		"merged_alpha": count < 0,
	}).Debug("parsing layer records")

	layers := make([]rawLayer, n)
	for i := range layers {
		if err := layers[i].parseRecord(c); err != nil {
			return nil, fmt.Errorf("failed to parse layer %d: %w", i, err)
		}
	}

	for i := range layers {
		if err := layers[i].parseChannelData(c); err != nil {
			return nil, fmt.Errorf("failed to parse channel data for layer %q: %w", layers[i].Name, err)
		}
	}

	return layers, nil
}
