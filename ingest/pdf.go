package ingest

import (
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
)

// readers extracts plain text from a local file, keyed by lower-case extension.
var readers = map[string]func(path string) (string, error){
	".txt":      readPlain,
	".md":       readPlain,
	".markdown": readPlain,
	".pdf":      ExtractPDF,
}

func readPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ExtractPDF returns the text of every page of the PDF at path, in page
// order. Scanned pages without a text layer contribute nothing.
func ExtractPDF(path string) (text string, err error) {
	// the parser panics on malformed input
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	rd, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	data, err := io.ReadAll(rd)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
