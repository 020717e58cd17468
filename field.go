package fontbake

import (
	"errors"
	"image"
	"math"
)

// ErrFieldClamp is returned when the signed distance field is requested
// with a non-positive clamp radius. The padding doubles as the clamp
// radius, so it is validated before any rasterization work begins.
var ErrFieldClamp = errors.New("the distance field clamp radius must be greater than zero")

// quantize converts the anti-aliased coverage bitmap into a quantized bitmap
// where each alpha sample is rounded to the nearest of levels+1 output values
// uniformly spread over the 0-255 range. The output dimensions are identical
// to the input dimensions.
func quantize(mask *image.Alpha, levels int) *image.Gray {
	bounds := mask.Bounds()
	dx, dy := bounds.Dx(), bounds.Dy()
	field := image.NewGray(image.Rect(0, 0, dx, dy))

	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			v := float64(mask.Pix[y*mask.Stride+x])
			level := math.Round(v * float64(levels) / 255.0)
			field.Pix[y*field.Stride+x] = uint8(math.Round(level * 255.0 / float64(levels)))
		}
	}

	return field
}
