package fontbake

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"runtime"
	"sync"

	"github.com/esimov/fontbake/utils"
	"golang.org/x/image/font/sfnt"
)

var (
	// atlasWorker transfers the partially packed atlas to the GUI.
	atlasWorker = make(chan worker)
	errs        = make(chan error)
)

// worker contains the information needed for transferring the packing progress to the Gio GUI.
type worker struct {
	img  *image.Gray
	done bool
}

// Processor options
type Processor struct {
	// Scale is the font height expressed in pixels.
	Scale float64
	// Padding is the margin reserved around each glyph inside its atlas cell.
	// In SDF mode it doubles as the distance clamp radius.
	Padding int
	// AtlasSize is the side length of the square output bitmap.
	AtlasSize int
	// Levels selects the coverage mode with the given number of quantization
	// levels. Zero selects the signed distance field mode.
	Levels int
	// Kerning enables the export of the pairwise kerning table.
	Kerning bool
	// Charset holds the hexadecimal codepoint range specifiers.
	// When empty the printable ASCII range is baked.
	Charset []string
	// Workers caps the concurrently rasterizing goroutines.
	Workers int
	// Preview shows the atlas packing progress in a GUI window.
	Preview bool
	Spinner *utils.Spinner
}

// glyphField is the transformed bitmap of a single glyph together with the
// horizontal metrics carried over from the sampler.
type glyphField struct {
	field   *image.Gray
	advance float64
	bearing float64
	ascent  float64
}

// NewProcessor returns a processor initialized with the default baking options.
func NewProcessor() *Processor {
	return &Processor{
		Scale:     24,
		Padding:   8,
		AtlasSize: 512,
		Kerning:   true,
	}
}

// Process reads a TrueType/OpenType font from the reader, bakes the atlas and
// encodes the results: the packed bitmap into imgW and the metadata as JSON
// into metaW. Nothing is written unless the whole pipeline succeeds.
func (p *Processor) Process(r io.Reader, imgW, metaW io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("could not read the font file: %w", err)
	}

	if p.Preview {
		gui := NewGUI(p.AtlasSize, p.AtlasSize, p)

		// Lunch the Gio GUI thread.
		go func() {
			errs <- gui.Run()
		}()
	}

	atlas, meta, err := p.Bake(data)
	if err != nil {
		return err
	}

	if err := encodeImg(imgW, atlas); err != nil {
		return err
	}
	if metaW != nil {
		if err := meta.WriteJSON(metaW); err != nil {
			return fmt.Errorf("could not encode the font metadata: %w", err)
		}
	}

	return nil
}

// Bake runs the whole pipeline over an in-memory font: it resolves the
// charset, rasterizes and transforms the glyphs concurrently, packs the
// results into the atlas in codepoint order and assembles the metadata.
// Repeated invocations over the same font and options produce byte-identical
// atlas bitmaps and metadata.
func (p *Processor) Bake(fontData []byte) (*image.Gray, *BitmapFont, error) {
	if err := p.validate(); err != nil {
		return nil, nil, err
	}

	charset, err := ParseCharset(p.Charset)
	if err != nil {
		return nil, nil, err
	}

	f, err := sfnt.Parse(fontData)
	if err != nil {
		return nil, nil, fmt.Errorf("could not parse the font file: %w", err)
	}
	s := newSampler(f, p.Scale)

	fields, err := p.bakeGlyphs(s, charset)
	if err != nil {
		return nil, nil, err
	}

	var buf sfnt.Buffer
	ascent, descent, lineGap, err := s.metrics(&buf)
	if err != nil {
		return nil, nil, err
	}

	meta := &BitmapFont{
		Scale:   p.Scale,
		Width:   p.AtlasSize,
		Height:  p.AtlasSize,
		Padding: p.Padding,
		Ascent:  ascent,
		Descent: descent,
		LineGap: lineGap,
		Glyphs:  make(map[rune]BitmapGlyph, len(charset)),
	}

	// The placement decision is order dependent, so the packing runs
	// serialized on the main path, in codepoint order.
	pk := newPacker(p.AtlasSize, p.Padding)
	baked := make([]rune, 0, len(charset))

	for i, r := range charset {
		gf := fields[i]
		if gf == nil {
			continue
		}

		glyph := BitmapGlyph{
			AdvanceWidth:    gf.advance,
			LeftSideBearing: gf.bearing,
			Ascent:          gf.ascent,
		}
		if gf.field != nil {
			cell, err := pk.place(gf.field)
			if err != nil {
				return nil, nil, err
			}
			glyph.BitmapSource = &SourceRect{
				X:      cell.X,
				Y:      cell.Y,
				Width:  cell.Width,
				Height: cell.Height,
			}
			if p.Preview {
				p.publish(pk.atlas, false)
			}
		}
		meta.Glyphs[r] = glyph
		baked = append(baked, r)
	}

	if p.Kerning {
		meta.Kerning = p.kerningTable(s, baked)
	}

	if err := meta.validate(); err != nil {
		return nil, nil, fmt.Errorf("inconsistent atlas metadata: %w", err)
	}

	if p.Preview {
		p.publish(pk.atlas, true)
	}

	return pk.atlas, meta, nil
}

// validate checks the baking options before any rasterization work begins.
func (p *Processor) validate() error {
	if p.Scale <= 0 {
		return fmt.Errorf("the font scale must be greater than zero")
	}
	if p.AtlasSize <= 0 {
		return fmt.Errorf("the atlas size must be greater than zero")
	}
	if p.Padding < 0 {
		return fmt.Errorf("the padding must not be negative")
	}
	if p.Levels < 0 || p.Levels > 255 {
		return fmt.Errorf("the coverage level count must not be negative or greater than 255")
	}
	if p.Levels == 0 && p.Padding == 0 {
		return ErrFieldClamp
	}

	return nil
}

// bakeGlyphs rasterizes and transforms the glyphs of the charset across a
// worker pool. The computations are independent per codepoint, only the
// result slot of each worker is distinct. Missing glyphs are skipped with a
// warning and leave a nil entry behind.
func (p *Processor) bakeGlyphs(s *sampler, charset []rune) ([]*glyphField, error) {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		bakeErr error
	)
	fields := make([]*glyphField, len(charset))
	jobs := make(chan int)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()

			// The sfnt buffers are not safe for concurrent use, one per worker.
			var buf sfnt.Buffer
			for idx := range jobs {
				gf, err := p.bakeGlyph(s, &buf, charset[idx])
				if err != nil {
					if errors.Is(err, ErrGlyphNotFound) {
						log.Printf(
							utils.DecorateText("skipping %U: %v", utils.StatusMessage),
							charset[idx], err,
						)
						continue
					}
					mu.Lock()
					if bakeErr == nil {
						bakeErr = err
					}
					mu.Unlock()
					continue
				}
				fields[idx] = gf
			}
		}()
	}

	for i := range charset {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return fields, bakeErr
}

// bakeGlyph samples the coverage bitmap of a single codepoint and converts it
// into the configured field representation.
func (p *Processor) bakeGlyph(s *sampler, buf *sfnt.Buffer, r rune) (*glyphField, error) {
	cov, err := s.sample(buf, r)
	if err != nil {
		return nil, err
	}

	gf := &glyphField{
		advance: cov.advance,
		bearing: cov.bearing,
		ascent:  cov.ascent,
	}
	if cov.mask == nil {
		return gf, nil
	}

	if p.Levels > 0 {
		gf.field = quantize(cov.mask, p.Levels)
	} else {
		gf.field = distanceField(cov.mask, p.Padding)
	}

	return gf, nil
}

// kerningTable computes the pairwise kerning adjustments for every ordered
// pair of the rasterized codepoints, keeping only the non-zero entries.
// The pairs are distributed across a worker pool by their left codepoint;
// the insertion order is irrelevant to the final sparse map.
func (p *Processor) kerningTable(s *sampler, baked []rune) map[KernPair]float64 {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	table := make(map[KernPair]float64)
	jobs := make(chan rune)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()

			var buf sfnt.Buffer
			for left := range jobs {
				for _, right := range baked {
					if k := s.kern(&buf, left, right); k != 0 {
						mu.Lock()
						table[KernPair{Left: left, Right: right}] = k
						mu.Unlock()
					}
				}
			}
		}()
	}

	for _, left := range baked {
		jobs <- left
	}
	close(jobs)
	wg.Wait()

	return table
}

// publish transfers a snapshot of the partially packed atlas to the GUI.
func (p *Processor) publish(atlas *image.Gray, done bool) {
	snapshot := image.NewGray(atlas.Rect)
	copy(snapshot.Pix, atlas.Pix)

	go func() {
		select {
		case atlasWorker <- worker{img: snapshot, done: done}:
		case <-errs:
			return
		}
	}()
}
