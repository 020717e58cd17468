package utils

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// DownloadFont downloads the font file from the internet and saves it into a temporary file.
func DownloadFont(uri string) (*os.File, error) {
	// Retrieve the url and decode the response body.
	res, err := http.Get(uri)
	if err != nil {
		return nil, fmt.Errorf("unable to download the font file from URI: %s", uri)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}

	tmpfile, err := os.CreateTemp("", "font")
	if err != nil {
		return nil, fmt.Errorf("unable to create temporary file: %w", err)
	}

	// Copy the font binary data into the temporary file.
	if _, err = io.Copy(tmpfile, bytes.NewBuffer(data)); err != nil {
		return nil, fmt.Errorf("unable to copy the source URI into the destination file")
	}

	ctype, err := DetectContentType(tmpfile.Name())
	if err != nil {
		return nil, err
	}

	// The sniffer reports TrueType/OpenType fonts under the font/ media type.
	if !strings.HasPrefix(ctype, "font/") && !strings.Contains(ctype, "ms-fontobject") {
		return nil, fmt.Errorf("the downloaded file is not a valid font type")
	}

	return tmpfile, nil
}

// IsValidUrl tests a string to determine if it is a well-structured url or not.
func IsValidUrl(uri string) bool {
	if _, err := url.ParseRequestURI(uri); err != nil {
		return false
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	return true
}
