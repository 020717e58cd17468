package fontbake

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SourceRect holds the coordinates and size of a rendered glyph in the packed
// atlas bitmap, the padding margin included.
type SourceRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// BitmapGlyph aggregates the atlas rectangle and the horizontal metrics of a
// glyph required for text layout. All metrics are expressed in pixel units at
// the baked scale.
type BitmapGlyph struct {
	// BitmapSource is the bounding box of the rendered glyph in the atlas.
	// It is nil for glyphs without visible ink, like whitespace characters.
	BitmapSource *SourceRect `json:"bitmap_source,omitempty"`
	// AdvanceWidth is the horizontal offset between the origin
	// of this glyph and the origin of the next glyph.
	AdvanceWidth float64 `json:"advance_width"`
	// LeftSideBearing is the horizontal offset between the origin
	// of this glyph and its leftmost inked point.
	LeftSideBearing float64 `json:"left_side_bearing"`
	// Ascent is the vertical offset between the top
	// of the glyph bitmap and the baseline.
	Ascent float64 `json:"ascent"`
}

// KernPair is an ordered pair of codepoints keying the kerning table.
type KernPair struct {
	Left  rune
	Right rune
}

// MarshalText encodes the pair as "left,right" with decimal codepoints,
// making the pair usable as a serialized map key.
func (k KernPair) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d,%d", k.Left, k.Right)), nil
}

// UnmarshalText decodes the "left,right" pair form.
func (k *KernPair) UnmarshalText(text []byte) error {
	left, right, ok := strings.Cut(string(text), ",")
	if !ok {
		return fmt.Errorf("malformed kerning pair key: %q", text)
	}
	l, err := strconv.ParseInt(left, 10, 32)
	if err != nil {
		return fmt.Errorf("malformed kerning pair key: %q", text)
	}
	r, err := strconv.ParseInt(right, 10, 32)
	if err != nil {
		return fmt.Errorf("malformed kerning pair key: %q", text)
	}
	k.Left, k.Right = rune(l), rune(r)

	return nil
}

// BitmapFont is the serialization agnostic runtime representation of all the
// metadata of a single baked bitmap font. It does not own or reference the
// atlas bitmap itself.
type BitmapFont struct {
	// Scale is the font pixel scale the atlas was baked at.
	Scale float64 `json:"scale"`
	// Width and Height are the atlas image dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`
	// Padding is the distance between the true pixel bounding box of a glyph
	// and the bounding box given by its BitmapSource.
	Padding int `json:"padding"`
	// Ascent is the highest point any glyph extends above the baseline.
	Ascent float64 `json:"ascent"`
	// Descent is the lowest point any glyph extends below the baseline, typically negative.
	Descent float64 `json:"descent"`
	// LineGap is the suggested gap between the descent of one line and the ascent of the next.
	LineGap float64 `json:"line_gap"`
	// Glyphs maps the rasterized codepoints to their atlas entries.
	Glyphs map[rune]BitmapGlyph `json:"glyphs"`
	// Kerning holds the sparse pairwise kerning adjustments.
	// It is omitted entirely when the kerning export is disabled.
	Kerning map[KernPair]float64 `json:"kerning_table,omitempty"`
}

// WriteJSON encodes the metadata as indented JSON. The encoding is
// deterministic: repeated bakes over the same input produce byte-identical
// output, the map keys being emitted in sorted order.
func (f *BitmapFont) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(f)
}

// validate checks the internal consistency of the metadata: every codepoint
// referenced by the kerning table must exist in the glyph map. A violation is
// a logic error of the baking pipeline, not a user facing condition.
func (f *BitmapFont) validate() error {
	for pair := range f.Kerning {
		if _, ok := f.Glyphs[pair.Left]; !ok {
			return fmt.Errorf("kerning pair references unmapped codepoint %U", pair.Left)
		}
		if _, ok := f.Glyphs[pair.Right]; !ok {
			return fmt.Errorf("kerning pair references unmapped codepoint %U", pair.Right)
		}
	}

	return nil
}
