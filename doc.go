/*
Package fontbake converts the vector glyph outlines of a TrueType/OpenType font
into a single packed grayscale atlas image together with the layout metadata
(glyph rectangles, advances, bearings and kerning pairs) needed for runtime text rendering.

Each selected glyph is rasterized at the requested pixel scale, converted either to a
quantized coverage bitmap or to a signed distance field, and packed into a fixed size
atlas with deterministic row based placement.

The package provides a command line interface, supporting various flags for the
different baking options. To check the supported commands type:

	$ fontbake --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"os"

		"github.com/esimov/fontbake"
	)

	func main() {
		p := fontbake.NewProcessor()

		font, err := os.Open("font.ttf")
		if err != nil {
			fmt.Printf("Error opening the font file: %s", err.Error())
		}
		atlas, _ := os.Create("atlas.png")
		meta, _ := os.Create("atlas.json")

		if err := p.Process(font, atlas, meta); err != nil {
			fmt.Printf("Error baking the font atlas: %s", err.Error())
		}
	}
*/
package fontbake
