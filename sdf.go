package fontbake

import (
	"image"
	"math"

	"github.com/esimov/fontbake/utils"
)

// maskThreshold is the coverage value above which a pixel counts as glyph interior.
const maskThreshold = 128

// distanceField converts the anti-aliased coverage bitmap into a signed distance
// field. The coverage is thresholded at 50% into a binary mask and each output
// pixel encodes the Euclidean distance to the nearest mask boundary pixel,
// positive inside the glyph and negative outside, clamped to the given radius
// and remapped linearly to the 0-255 range with 128 marking the boundary.
//
// The nearest boundary pixel is searched by brute force, which is perfectly
// fine for glyph sized bitmaps. The output dimensions are identical to the
// input dimensions.
func distanceField(mask *image.Alpha, radius int) *image.Gray {
	bounds := mask.Bounds()
	dx, dy := bounds.Dx(), bounds.Dy()
	field := image.NewGray(image.Rect(0, 0, dx, dy))

	inside := make([]bool, dx*dy)
	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			inside[y*dx+x] = mask.Pix[y*mask.Stride+x] >= maskThreshold
		}
	}

	// A boundary pixel has at least one 4-neighbor of the opposite state.
	// Pixels beyond the bitmap edges count as exterior.
	in := func(x, y int) bool {
		if x < 0 || x >= dx || y < 0 || y >= dy {
			return false
		}
		return inside[y*dx+x]
	}

	var boundary []image.Point
	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			p := inside[y*dx+x]
			if in(x-1, y) != p || in(x+1, y) != p || in(x, y-1) != p || in(x, y+1) != p {
				boundary = append(boundary, image.Point{X: x, Y: y})
			}
		}
	}

	r := float64(radius)
	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			var dist float64
			if len(boundary) == 0 {
				// A mask without boundaries is uniformly interior or exterior.
				dist = r
			} else {
				min := math.Inf(1)
				for _, b := range boundary {
					fx, fy := float64(b.X-x), float64(b.Y-y)
					if d := fx*fx + fy*fy; d < min {
						min = d
					}
				}
				dist = utils.Min(math.Sqrt(min), r)
			}
			if !inside[y*dx+x] {
				dist = -dist
			}
			field.Pix[y*field.Stride+x] = uint8(math.Round((dist + r) / (2 * r) * 255))
		}
	}

	return field
}
