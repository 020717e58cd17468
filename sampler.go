package fontbake

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// ErrGlyphNotFound is returned when the font has no glyph mapped for a codepoint.
// The error is recoverable: the affected glyph is skipped and the run continues.
var ErrGlyphNotFound = errors.New("no glyph mapped for codepoint")

// coverage holds the anti-aliased alpha mask of a single glyph together with its
// horizontal metrics, all expressed in pixel units at the target scale.
type coverage struct {
	// mask is the scaled coverage bitmap. It is nil for glyphs
	// without visible ink, like the space character.
	mask    *image.Alpha
	advance float64
	bearing float64
	ascent  float64
}

// sampler obtains the scaled coverage bitmap and the horizontal metrics of the
// glyphs through the sfnt outline loader and the x/image vector rasterizer.
// The sfnt buffers are owned by the callers, this way the same sampler can be
// shared between multiple worker goroutines.
type sampler struct {
	font *sfnt.Font
	ppem fixed.Int26_6
}

// newSampler returns a new glyph sampler operating at the provided
// pixel scale (the font height expressed in pixels).
func newSampler(f *sfnt.Font, scale float64) *sampler {
	return &sampler{
		font: f,
		ppem: fixed.Int26_6(scale * 64),
	}
}

// sample rasterizes the outline of a single codepoint into an anti-aliased
// coverage bitmap. Glyphs with no visible ink yield a nil mask but still
// carry valid advance metrics.
func (s *sampler) sample(buf *sfnt.Buffer, r rune) (*coverage, error) {
	idx, err := s.font.GlyphIndex(buf, r)
	if err != nil {
		return nil, fmt.Errorf("could not look up the glyph index: %w", err)
	}
	if idx == 0 {
		return nil, fmt.Errorf("%w: %U", ErrGlyphNotFound, r)
	}

	segments, err := s.font.LoadGlyph(buf, idx, s.ppem, nil)
	if err != nil {
		return nil, fmt.Errorf("could not load the glyph outline: %w", err)
	}

	adv, err := s.font.GlyphAdvance(buf, idx, s.ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("could not obtain the glyph advance: %w", err)
	}

	cov := &coverage{advance: fixedToFloat(adv)}
	if len(segments) == 0 {
		return cov, nil
	}

	// The outline coordinates are y-down with the origin on the baseline.
	bounds := segments.Bounds()
	minX, minY := floorFixed(bounds.Min.X), floorFixed(bounds.Min.Y)
	maxX, maxY := ceilFixed(bounds.Max.X), ceilFixed(bounds.Max.Y)

	cov.bearing = fixedToFloat(bounds.Min.X)
	cov.ascent = -fixedToFloat(bounds.Min.Y)

	width, height := maxX-minX, maxY-minY
	if width <= 0 || height <= 0 {
		return cov, nil
	}

	// The vector rasterizer expects the coordinates in the positive quadrant,
	// so the outline points are normalized against the bounding box origin.
	z := vector.NewRasterizer(width, height)
	z.DrawOp = draw.Src

	dx, dy := float32(-minX), float32(-minY)
	pt := func(p fixed.Point26_6) (float32, float32) {
		return float32(p.X)/64 + dx, float32(p.Y)/64 + dy
	}

	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			x, y := pt(seg.Args[0])
			z.MoveTo(x, y)
		case sfnt.SegmentOpLineTo:
			x, y := pt(seg.Args[0])
			z.LineTo(x, y)
		case sfnt.SegmentOpQuadTo:
			cx, cy := pt(seg.Args[0])
			x, y := pt(seg.Args[1])
			z.QuadTo(cx, cy, x, y)
		case sfnt.SegmentOpCubeTo:
			cx0, cy0 := pt(seg.Args[0])
			cx1, cy1 := pt(seg.Args[1])
			x, y := pt(seg.Args[2])
			z.CubeTo(cx0, cy0, cx1, cy1, x, y)
		}
	}

	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	cov.mask = mask

	return cov, nil
}

// kern returns the horizontal kerning adjustment of an ordered codepoint pair
// at the target scale. Pairs the font defines no kerning for yield zero.
func (s *sampler) kern(buf *sfnt.Buffer, left, right rune) float64 {
	li, err := s.font.GlyphIndex(buf, left)
	if err != nil || li == 0 {
		return 0
	}
	ri, err := s.font.GlyphIndex(buf, right)
	if err != nil || ri == 0 {
		return 0
	}

	k, err := s.font.Kern(buf, li, ri, s.ppem, font.HintingNone)
	if err != nil {
		return 0
	}

	return fixedToFloat(k)
}

// metrics returns the font wide vertical metrics at the target scale.
// The descent is reported as a negative value, below the baseline.
func (s *sampler) metrics(buf *sfnt.Buffer) (ascent, descent, lineGap float64, err error) {
	m, err := s.font.Metrics(buf, s.ppem, font.HintingNone)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("could not obtain the font metrics: %w", err)
	}

	ascent = fixedToFloat(m.Ascent)
	descent = -fixedToFloat(m.Descent)
	lineGap = fixedToFloat(m.Height) - fixedToFloat(m.Ascent) - fixedToFloat(m.Descent)

	return ascent, descent, lineGap, nil
}

// fixedToFloat converts a 26.6 fixed point value to float64.
func fixedToFloat(x fixed.Int26_6) float64 {
	return float64(x) / 64.0
}

// floorFixed converts a 26.6 fixed point value to the nearest lower pixel.
func floorFixed(x fixed.Int26_6) int {
	return int(x >> 6)
}

// ceilFixed converts a 26.6 fixed point value to the nearest upper pixel.
func ceilFixed(x fixed.Int26_6) int {
	return int((x + 63) >> 6)
}
