package fontbake

import (
	"errors"
	"fmt"
	"image"

	"github.com/esimov/fontbake/utils"
)

// ErrAtlasOverflow is returned when a glyph does not fit into the remaining
// vertical space of the atlas. The error is fatal: a partially packed atlas
// is not a valid deliverable.
var ErrAtlasOverflow = errors.New("atlas overflow")

// Cell is the axis-aligned rectangle reserved for a single glyph in the
// atlas, the configured padding margin included.
type Cell struct {
	X      int
	Y      int
	Width  int
	Height int
}

// packer assigns non-overlapping padded cells in the shared output grid using
// a simple row based greedy layout: the cursor advances left to right and
// wraps to a new row below the tallest cell of the completed row. The policy
// is deterministic and order dependent, repeated runs over the same glyph
// sequence reproduce byte-identical placement.
type packer struct {
	atlas   *image.Gray
	size    int
	padding int
	x, y    int
	rowH    int
}

// newPacker returns a packer over a zero-filled size x size grid.
func newPacker(size, padding int) *packer {
	return &packer{
		atlas:   image.NewGray(image.Rect(0, 0, size, size)),
		size:    size,
		padding: padding,
	}
}

// place reserves a padded cell for the glyph field, blits its pixels at the
// cell origin offset by the padding and advances the cursor. Each cell is
// written exactly once.
func (pk *packer) place(field *image.Gray) (Cell, error) {
	w, h := field.Bounds().Dx(), field.Bounds().Dy()
	cw, ch := w+2*pk.padding, h+2*pk.padding

	if pk.x+cw > pk.size {
		pk.x = 0
		pk.y += pk.rowH
		pk.rowH = 0
	}
	if pk.x+cw > pk.size || pk.y+ch > pk.size {
		return Cell{}, fmt.Errorf("%w: glyph cell of %dx%d px does not fit, "+
			"reduce the scale, the padding or the charset, or increase the atlas size", ErrAtlasOverflow, cw, ch)
	}

	cell := Cell{X: pk.x, Y: pk.y, Width: cw, Height: ch}

	ox, oy := cell.X+pk.padding, cell.Y+pk.padding
	for y := 0; y < h; y++ {
		src := field.Pix[y*field.Stride : y*field.Stride+w]
		dst := pk.atlas.Pix[(oy+y)*pk.atlas.Stride+ox:]
		copy(dst[:w], src)
	}

	pk.x += cw
	pk.rowH = utils.Max(pk.rowH, ch)

	return cell, nil
}
