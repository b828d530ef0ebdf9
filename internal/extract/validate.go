package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoFilename  = errors.New("no file provided")
	ErrBadFileType = errors.New("only PDF files are supported")
)

// Validator checks uploads before the PDF is decoded. The request layer runs
// it on filename and declared metadata first, then on the read content.
type Validator struct {
	MaxBytes int64
}

// CheckUpload validates the declared filename and content type of an upload.
// An empty content type is allowed; browsers do not always send one.
func (v Validator) CheckUpload(filename, contentType string) error {
	if filename == "" {
		return ErrNoFilename
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return fmt.Errorf("%w: %s", ErrBadFileType, filename)
	}
	if contentType != "" && !strings.HasPrefix(contentType, "application/pdf") {
		return fmt.Errorf("%w: content type %s", ErrBadFileType, contentType)
	}
	return nil
}

// CheckContent validates the read upload bytes: non-empty, within the size
// cap, and carrying the PDF header signature.
func (v Validator) CheckContent(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyFile
	}
	if v.MaxBytes > 0 && int64(len(data)) > v.MaxBytes {
		return fmt.Errorf("%w (%d bytes, max %d)", ErrTooLarge, len(data), v.MaxBytes)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return ErrNotPDF
	}
	return nil
}
