package resources

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// ImageSize probes an image's intrinsic pixel dimensions without decoding
// the full raster. Pixel dimensions are interpreted as points downstream.
func ImageSize(data []byte) (w, h float64, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return float64(cfg.Width), float64(cfg.Height), nil
}
