package fontbake

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// encodeImg encodes the atlas bitmap to a destination of type io.Writer.
// The output format is derived from the destination file extension,
// piped destinations default to PNG.
func encodeImg(w io.Writer, img image.Image) error {
	switch w := w.(type) {
	case *os.File:
		ext := filepath.Ext(w.Name())
		if ext == "" {
			return imaging.Encode(w, img, imaging.PNG)
		}
		format, err := imaging.FormatFromExtension(ext)
		if err != nil {
			return fmt.Errorf("%v file type not supported", ext)
		}
		return imaging.Encode(w, img, format)
	default:
		return imaging.Encode(w, img, imaging.PNG)
	}
}
