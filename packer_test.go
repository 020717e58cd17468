package fontbake

import (
	"bytes"
	"errors"
	"image"
	"testing"
)

func TestPacker_NonOverlappingCells(t *testing.T) {
	pk := newPacker(64, 2)

	sizes := []image.Point{
		{X: 10, Y: 12}, {X: 8, Y: 8}, {X: 14, Y: 6}, {X: 5, Y: 16},
		{X: 12, Y: 12}, {X: 7, Y: 9}, {X: 16, Y: 4}, {X: 3, Y: 3},
	}

	var cells []Cell
	for _, s := range sizes {
		cell, err := pk.place(image.NewGray(image.Rect(0, 0, s.X, s.Y)))
		if err != nil {
			t.Fatalf("Should not return an error on placement. Got %v", err)
		}
		cells = append(cells, cell)
	}

	for i, c := range cells {
		rect := image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height)
		if !rect.In(image.Rect(0, 0, 64, 64)) {
			t.Errorf("Cell %v expected to stay within the atlas bounds. Got %v", i, rect)
		}
		for j := i + 1; j < len(cells); j++ {
			o := cells[j]
			if rect.Overlaps(image.Rect(o.X, o.Y, o.X+o.Width, o.Y+o.Height)) {
				t.Errorf("Cells %v and %v expected not to overlap. Got %v and %v", i, j, c, o)
			}
		}
	}
}

func TestPacker_DeterministicPlacement(t *testing.T) {
	sizes := []image.Point{{X: 9, Y: 11}, {X: 13, Y: 5}, {X: 6, Y: 14}, {X: 10, Y: 10}}

	run := func() (*packer, []Cell) {
		pk := newPacker(48, 1)
		var cells []Cell
		for _, s := range sizes {
			field := image.NewGray(image.Rect(0, 0, s.X, s.Y))
			for i := range field.Pix {
				field.Pix[i] = uint8(i)
			}
			cell, err := pk.place(field)
			if err != nil {
				t.Fatalf("Should not return an error on placement. Got %v", err)
			}
			cells = append(cells, cell)
		}
		return pk, cells
	}

	pk1, cells1 := run()
	pk2, cells2 := run()

	for i := range cells1 {
		if cells1[i] != cells2[i] {
			t.Errorf("Cell %v expected to be placed identically on repeated runs. Got %v and %v", i, cells1[i], cells2[i])
		}
	}
	if !bytes.Equal(pk1.atlas.Pix, pk2.atlas.Pix) {
		t.Errorf("Repeated runs expected to produce byte-identical atlas bitmaps")
	}
}

func TestPacker_Overflow(t *testing.T) {
	pk := newPacker(16, 2)
	if _, err := pk.place(image.NewGray(image.Rect(0, 0, 20, 20))); !errors.Is(err, ErrAtlasOverflow) {
		t.Errorf("Oversized glyph expected to fail with ErrAtlasOverflow. Got %v", err)
	}

	// Two padded 14x14 cells fit per row, two rows fit vertically.
	pk = newPacker(32, 2)
	field := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := 0; i < 4; i++ {
		if _, err := pk.place(field); err != nil {
			t.Fatalf("Placement %v should not return an error. Got %v", i, err)
		}
	}
	if _, err := pk.place(field); !errors.Is(err, ErrAtlasOverflow) {
		t.Errorf("Placement past the atlas capacity expected to fail with ErrAtlasOverflow. Got %v", err)
	}
}

func TestPacker_BlitOffset(t *testing.T) {
	pk := newPacker(32, 3)
	field := image.NewGray(image.Rect(0, 0, 2, 2))
	for i := range field.Pix {
		field.Pix[i] = 200
	}

	cell, err := pk.place(field)
	if err != nil {
		t.Fatalf("Should not return an error on placement. Got %v", err)
	}
	if cell.Width != 8 || cell.Height != 8 {
		t.Errorf("Cell expected to include the padding margin as 8x8. Got %vx%v", cell.Width, cell.Height)
	}

	// The glyph pixels land at the cell origin offset by the padding,
	// the padding margin itself stays zero filled.
	if v := pk.atlas.GrayAt(cell.X+3, cell.Y+3).Y; v != 200 {
		t.Errorf("Glyph pixel expected at the padded cell origin. Got %v", v)
	}
	if v := pk.atlas.GrayAt(cell.X, cell.Y).Y; v != 0 {
		t.Errorf("Padding margin expected to stay zero filled. Got %v", v)
	}
}
