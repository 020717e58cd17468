package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/esimov/fontbake"
)

const helpBanner = `
┌─┐┌─┐┌┐┌┌┬┐┌┐ ┌─┐┬┌─┌─┐
├┤ │ ││││ │ ├┴┐├─┤├┴┐├┤
└  └─┘┘└┘ ┴ └─┘┴ ┴┴ ┴└─┘

Font atlas baking tool.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", pipeName, "Source font file, directory or URL")
	destination = flag.String("out", pipeName, "Destination atlas image")
	meta        = flag.String("meta", "", "Destination metadata file (default: atlas path with a .json extension)")
	scale       = flag.Float64("scale", 24, "Font height in pixels")
	padding     = flag.Int("padding", 8, "Padding around each glyph in pixels")
	size        = flag.Int("size", 512, "Atlas image side length")
	levels      = flag.Int("levels", 0, "Coverage quantization levels, 0 generates a signed distance field")
	kern        = flag.Bool("kern", true, "Export the kerning table")
	charset     = flag.String("charset", "", "Comma separated hexadecimal codepoint ranges (default: printable ASCII)")
	preview     = flag.Bool("preview", false, "Show the atlas packing progress in a GUI window")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of font files to process concurrently")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, helpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	proc := &fontbake.Processor{
		Scale:     *scale,
		Padding:   *padding,
		AtlasSize: *size,
		Levels:    *levels,
		Kerning:   *kern,
		Preview:   *preview,
		Workers:   *workers,
	}
	if *charset != "" {
		proc.Charset = strings.Split(*charset, ",")
	}

	proc.Execute(&fontbake.Ops{
		Src:      *source,
		Dst:      *destination,
		Meta:     *meta,
		PipeName: pipeName,
		Workers:  *workers,
	})
}
