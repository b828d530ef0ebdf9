// Package extract turns an uploaded transcript PDF into linearized page text
// for the parser, and validates uploads before any decoding happens.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfMagic is the header signature every well-formed PDF starts with.
var pdfMagic = []byte("%PDF")

var (
	ErrEmptyFile = errors.New("uploaded file is empty")
	ErrNotPDF    = errors.New("file is not a PDF")
	ErrTooLarge  = errors.New("file size exceeds maximum limit")
	ErrNoText    = errors.New("no text could be extracted from the PDF")
)

// Text extracts plain text from a PDF document, concatenating pages in
// order. Pages that fail to decode are skipped so one bad page does not sink
// the document. Returns the text and the number of pages read.
func Text(data []byte) (string, int, error) {
	if len(data) == 0 {
		return "", 0, ErrEmptyFile
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return "", 0, ErrNotPDF
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("reading pdf: %w", err)
	}

	var sb strings.Builder
	pages := 0
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// Keep going; partial extraction is better than none.
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
		pages++
	}

	out := sb.String()
	if strings.TrimSpace(out) == "" {
		return "", pages, ErrNoText
	}
	return out, pages, nil
}
