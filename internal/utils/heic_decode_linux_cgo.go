//go:build linux && cgo

package utils

import (
	"bytes"
	"fmt"
	"image"

	"github.com/jdeng/goheif"
)

// decodeHEIC handles iPhone uploads that image.Decode cannot read.
func decodeHEIC(data []byte) (image.Image, error) {
	img, err := goheif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("heic decode: %w", err)
	}
	return img, nil
}
