package fontbake

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/esimov/fontbake/utils"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

var (
	// fontFile holds the file being accessed, be it normal file or pipe name.
	fontFile *os.File

	// Common file related variable
	fs os.FileInfo
)

// Ops holds the file related options of a baking run.
type Ops struct {
	Src, Dst, Meta, PipeName string
	Workers                  int
}

// result holds the relevant information about the baking process and the generated files.
type result struct {
	path string
	err  error
}

// Execute executes the font baking process.
// The source can be a single font file, a directory of font files, a URL or a pipe.
func (p *Processor) Execute(op *Ops) {
	var err error
	defaultMsg := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ FONTBAKE", utils.StatusMessage),
		utils.DecorateText("⇢ baking the font atlas (be patient, it may take a while)...", utils.DefaultMessage),
	)
	p.Spinner = utils.NewSpinner(defaultMsg, time.Millisecond*80)

	// Supported files
	validFontExts := []string{".ttf", ".otf"}
	validImgExts := []string{".png", ".bmp", ".tif", ".tiff", ".jpg", ".jpeg"}

	// Check if the source path is a local font file or URL.
	if utils.IsValidUrl(op.Src) {
		src, err := utils.DownloadFont(op.Src)
		if src != nil {
			defer os.Remove(src.Name())
		}

		if err != nil {
			log.Fatalf(
				utils.DecorateText("Failed to load the source font: %v", utils.ErrorMessage),
				utils.DecorateText(err.Error(), utils.DefaultMessage),
			)
		}
		fs, err = src.Stat()
		if err != nil {
			log.Fatalf(
				utils.DecorateText("Failed to load the source font: %v", utils.ErrorMessage),
				utils.DecorateText(err.Error(), utils.DefaultMessage),
			)
		}
		font, err := os.Open(src.Name())
		if err != nil {
			log.Fatalf(
				utils.DecorateText("Unable to open the temporary font file: %v", utils.ErrorMessage),
				utils.DecorateText(err.Error(), utils.DefaultMessage),
			)
		}

		fontFile = font
	} else {
		// Check if the source is a pipe name or a regular file.
		if op.Src == op.PipeName {
			fs, err = os.Stdin.Stat()
		} else {
			fs, err = os.Stat(op.Src)
		}
		if err != nil {
			log.Fatalf(
				utils.DecorateText("Failed to load the source font: %v", utils.ErrorMessage),
				utils.DecorateText(err.Error(), utils.DefaultMessage),
			)
		}
	}

	now := time.Now()

	switch mode := fs.Mode(); {
	case mode.IsDir():
		var wg sync.WaitGroup
		// Read destination file or directory.
		_, err := os.Stat(op.Dst)
		if err != nil {
			err = os.Mkdir(op.Dst, 0755)
			if err != nil {
				log.Fatalf(
					utils.DecorateText("Unable to get dir stats: %v\n", utils.ErrorMessage),
					utils.DecorateText(err.Error(), utils.DefaultMessage),
				)
			}
		}
		p.Preview = false

		// Limit the concurrently running workers to maxWorkers.
		if op.Workers <= 0 || op.Workers > maxWorkers {
			op.Workers = runtime.NumCPU()
		}

		// Bake the font files from the specified directory concurrently.
		ch := make(chan result)
		done := make(chan interface{})
		defer close(done)

		paths, errc := walkDir(done, op.Src, validFontExts)

		wg.Add(op.Workers)
		for i := 0; i < op.Workers; i++ {
			go func() {
				defer wg.Done()
				op.consumer(p, op.Dst, ch, done, paths)
			}()
		}

		// Close the channel after the values are consumed.
		go func() {
			defer close(ch)
			wg.Wait()
		}()

		// Consume the channel values.
		for res := range ch {
			if res.err != nil {
				err = res.err
			}
			op.printOpStatus(res.path, err)
		}

		if err = <-errc; err != nil {
			fmt.Fprintf(os.Stderr, utils.DecorateText(err.Error(), utils.ErrorMessage))
		}

	case mode.IsRegular() || mode&os.ModeNamedPipe != 0: // check for regular files or pipe names
		ext := filepath.Ext(op.Dst)
		if !isValidExtension(ext, validImgExts) && op.Dst != op.PipeName {
			log.Fatalf(utils.DecorateText(fmt.Sprintf("%v file type not supported", ext), utils.ErrorMessage))
		}
		if op.Meta == "" {
			op.Meta = metaPath(op.Dst, op.PipeName)
		}

		err = op.process(p, op.Src, op.Dst, op.Meta)
		op.printOpStatus(op.Dst, err)
	}
	if err == nil {
		fmt.Fprintf(os.Stderr, "\nExecution time: %s\n",
			utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	}
}

// consumer reads the path names from the paths channel and bakes each font file into
// an atlas and a metadata file placed next to each other in the destination directory.
func (op *Ops) consumer(
	p *Processor,
	dest string,
	res chan<- result,
	done <-chan interface{},
	paths <-chan string,
) {
	for src := range paths {
		base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		dst := filepath.Join(dest, base+".png")
		meta := filepath.Join(dest, base+".json")
		err := op.process(p, src, dst, meta)

		select {
		case <-done:
			return
		case res <- result{
			path: src,
			err:  err,
		}:
		}
	}
}

// process calls the baking processor over the source font and returns the error in case exists.
// The output files are committed only after the whole pipeline succeeds: the results are
// written into hidden temporary files first and renamed over the destination afterwards,
// this way a failed run never leaves a previously existing output file half overwritten.
func (op *Ops) process(p *Processor, in, out, meta string) error {
	var (
		successMsg string
		errorMsg   string
	)
	// Start the progress indicator.
	p.Spinner.Start()

	successMsg = fmt.Sprintf("%s %s %s",
		utils.DecorateText("⚡ FONTBAKE", utils.StatusMessage),
		utils.DecorateText("⇢", utils.DefaultMessage),
		utils.DecorateText("the font atlas has been baked successfully ✔", utils.SuccessMessage),
	)

	errorMsg = fmt.Sprintf("%s %s %s",
		utils.DecorateText("⚡ FONTBAKE", utils.StatusMessage),
		utils.DecorateText("baking the font atlas failed...", utils.DefaultMessage),
		utils.DecorateText("✘", utils.ErrorMessage),
	)

	src, err := op.srcReader(in)
	if err != nil {
		p.Spinner.StopMsg = errorMsg
		p.Spinner.Stop()
		return err
	}
	defer func() {
		if font, ok := src.(*os.File); ok && font != os.Stdin {
			if err := font.Close(); err != nil {
				log.Printf("could not close the opened file: %v", err)
			}
		}
	}()

	var imgW io.Writer = os.Stdout
	var tmpImg, tmpMeta *os.File

	if out != op.PipeName {
		tmpImg, err = os.CreateTemp(filepath.Dir(out), ".fontbake-*"+filepath.Ext(out))
		if err != nil {
			p.Spinner.StopMsg = errorMsg
			p.Spinner.Stop()
			return fmt.Errorf("unable to create the destination file: %v", err)
		}
		imgW = tmpImg
	} else if term.IsTerminal(int(os.Stdout.Fd())) {
		p.Spinner.StopMsg = errorMsg
		p.Spinner.Stop()
		return errors.New("`-` should be used with a pipe for stdout")
	}

	tmpMeta, err = os.CreateTemp(filepath.Dir(meta), ".fontbake-*.json")
	if err != nil {
		p.Spinner.StopMsg = errorMsg
		p.Spinner.Stop()
		return fmt.Errorf("unable to create the metadata file: %v", err)
	}

	cleanup := func() {
		if tmpImg != nil {
			os.Remove(tmpImg.Name())
		}
		if tmpMeta != nil {
			os.Remove(tmpMeta.Name())
		}
	}

	// Capture CTRL-C signal and restores back the cursor visibility.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalChan
		p.Spinner.RestoreCursor()
		cleanup()
		os.Exit(1)
	}()

	err = p.Process(src, imgW, tmpMeta)

	if tmpImg != nil {
		tmpImg.Close()
	}
	tmpMeta.Close()

	if err != nil {
		// remove the generated temporary files in case of an error
		cleanup()

		p.Spinner.StopMsg = errorMsg
		// Stop the progress indicator.
		p.Spinner.Stop()

		return err
	}

	if tmpImg != nil {
		if err := os.Rename(tmpImg.Name(), out); err != nil {
			cleanup()
			p.Spinner.StopMsg = errorMsg
			p.Spinner.Stop()
			return err
		}
	}
	if err := os.Rename(tmpMeta.Name(), meta); err != nil {
		cleanup()
		p.Spinner.StopMsg = errorMsg
		p.Spinner.Stop()
		return err
	}

	p.Spinner.StopMsg = successMsg
	// Stop the progress indicator.
	p.Spinner.Stop()

	return nil
}

// srcReader converts the source path to a readable file.
func (op *Ops) srcReader(in string) (io.Reader, error) {
	// Check if the source path is a local font file or URL.
	if utils.IsValidUrl(in) {
		return fontFile, nil
	}

	// Check if the source is a pipe name or a regular file.
	if in == op.PipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdin")
		}
		return os.Stdin, nil
	}

	src, err := os.Open(in)
	if err != nil {
		return nil, fmt.Errorf("unable to open the source file: %v", err)
	}
	return src, nil
}

// metaPath derives the metadata file path from the atlas destination path.
func metaPath(dst, pipeName string) string {
	if dst == pipeName {
		return "fontbake.json"
	}
	return strings.TrimSuffix(dst, filepath.Ext(dst)) + ".json"
}

// printOpStatus displays the relevant information about the font baking process.
func (op *Ops) printOpStatus(fname string, err error) {
	if err != nil {
		log.Fatalf(
			utils.DecorateText("\nError baking the font atlas: %s", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err.Error()), utils.DefaultMessage),
		)
	} else {
		if fname != op.PipeName {
			fmt.Fprintf(os.Stderr, "\nThe font atlas has been saved as: %s %s\n\n",
				utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
				utils.DefaultColor,
			)
		}
	}
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each regular file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan interface{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			isFileSupported := false
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() {
				return nil
			}

			// Get the file base name.
			fx := filepath.Ext(f.Name())
			for _, ext := range srcExts {
				if ext == fx {
					isFileSupported = true
					break
				}
			}

			if isFileSupported {
				select {
				case <-done:
					return errors.New("directory walk cancelled")
				case pathChan <- path:
				}
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	for _, ex := range extensions {
		if ex == ext {
			return true
		}
	}
	return false
}
