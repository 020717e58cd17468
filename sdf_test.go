package fontbake

import (
	"image"
	"testing"
)

// newSquareMask builds a size x size alpha mask with a fully covered
// square of the given side length centered in it.
func newSquareMask(size, side int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, size, size))
	off := (size - side) / 2
	for y := off; y < off+side; y++ {
		for x := off; x < off+side; x++ {
			mask.Pix[y*mask.Stride+x] = 255
		}
	}
	return mask
}

func TestDistanceField_BoundaryValue(t *testing.T) {
	mask := newSquareMask(9, 5)
	field := distanceField(mask, 4)

	// The edge pixels of the covered square sit right on the mask boundary.
	boundary := []image.Point{{X: 2, Y: 4}, {X: 6, Y: 4}, {X: 4, Y: 2}, {X: 4, Y: 6}}
	for _, p := range boundary {
		v := field.Pix[p.Y*field.Stride+p.X]
		if v < 127 || v > 129 {
			t.Errorf("Boundary pixel at %v expected to map near 128. Got %v", p, v)
		}
	}
}

func TestDistanceField_SignedRange(t *testing.T) {
	mask := newSquareMask(9, 5)
	field := distanceField(mask, 4)

	// Center pixel, two pixels inside from the nearest boundary.
	if v := field.Pix[4*field.Stride+4]; v != 191 {
		t.Errorf("Interior center pixel expected to map to 191. Got %v", v)
	}
	// Far exterior corner.
	if v := field.Pix[0]; v >= 128 {
		t.Errorf("Exterior corner pixel expected to map below 128. Got %v", v)
	}
}

func TestDistanceField_UniformMasks(t *testing.T) {
	empty := image.NewAlpha(image.Rect(0, 0, 4, 4))
	field := distanceField(empty, 3)
	for i, v := range field.Pix {
		if v != 0 {
			t.Errorf("Empty mask pixel %v expected to clamp to 0. Got %v", i, v)
		}
	}

	full := image.NewAlpha(image.Rect(0, 0, 4, 4))
	for i := range full.Pix {
		full.Pix[i] = 255
	}
	// The bitmap edges count as exterior, so the edge pixels of a fully
	// covered mask are still boundary pixels and the inner ones sit one
	// pixel inside.
	field = distanceField(full, 3)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			v := field.Pix[y*field.Stride+x]
			if x == 0 || x == 3 || y == 0 || y == 3 {
				if v < 127 || v > 129 {
					t.Errorf("Edge pixel at (%v,%v) expected to map near 128. Got %v", x, y, v)
				}
			} else if v != 170 {
				t.Errorf("Inner pixel at (%v,%v) expected to map to 170. Got %v", x, y, v)
			}
		}
	}
}

func TestDistanceField_PreservesDimensions(t *testing.T) {
	mask := image.NewAlpha(image.Rect(0, 0, 6, 11))
	field := distanceField(mask, 2)

	if field.Bounds().Dx() != 6 || field.Bounds().Dy() != 11 {
		t.Errorf("Field expected to preserve the 6x11 mask dimensions. Got %v", field.Bounds())
	}
}
