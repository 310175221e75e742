//go:build !linux || !cgo

package utils

import (
	"errors"
	"image"
)

// decodeHEIC needs libheif via cgo; other builds reject HEIC uploads.
func decodeHEIC(_ []byte) (image.Image, error) {
	return nil, errors.New("heic decoding requires a linux cgo build")
}
