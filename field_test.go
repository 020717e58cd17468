package fontbake

import (
	"image"
	"testing"
)

// newTestMask builds an alpha mask with the provided per-pixel coverage rows.
func newTestMask(rows [][]uint8) *image.Alpha {
	h := len(rows)
	w := len(rows[0])
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	for y, row := range rows {
		for x, v := range row {
			mask.Pix[y*mask.Stride+x] = v
		}
	}
	return mask
}

func TestQuantize_BinaryLevels(t *testing.T) {
	mask := newTestMask([][]uint8{
		{0, 64, 127},
		{128, 200, 255},
	})
	field := quantize(mask, 1)

	expected := []uint8{0, 0, 0, 255, 255, 255}
	for i, v := range expected {
		if field.Pix[i] != v {
			t.Errorf("Pixel %v expected to quantize to %v. Got %v", i, v, field.Pix[i])
		}
	}
}

func TestQuantize_ValueSet(t *testing.T) {
	const levels = 4
	allowed := map[uint8]bool{0: true, 64: true, 128: true, 191: true, 255: true}

	mask := image.NewAlpha(image.Rect(0, 0, 16, 16))
	for i := range mask.Pix {
		mask.Pix[i] = uint8(i)
	}
	field := quantize(mask, levels)

	for i, v := range field.Pix {
		if !allowed[v] {
			t.Errorf("Pixel %v expected to hold one of the %v quantized values. Got %v", i, levels+1, v)
		}
	}
}

func TestQuantize_PreservesDimensions(t *testing.T) {
	mask := image.NewAlpha(image.Rect(0, 0, 7, 3))
	field := quantize(mask, 8)

	if field.Bounds().Dx() != 7 || field.Bounds().Dy() != 3 {
		t.Errorf("Field expected to preserve the 7x3 mask dimensions. Got %v", field.Bounds())
	}
}
