package extract

import (
	"errors"
	"testing"
)

// TestCheckUpload verifies filename and content-type validation.
func TestCheckUpload(t *testing.T) {
	v := Validator{MaxBytes: 1024}

	if err := v.CheckUpload("transcript.pdf", "application/pdf"); err != nil {
		t.Errorf("valid upload rejected: %v", err)
	}
	if err := v.CheckUpload("Transcript.PDF", ""); err != nil {
		t.Errorf("uppercase extension / empty content type rejected: %v", err)
	}

	if err := v.CheckUpload("", "application/pdf"); !errors.Is(err, ErrNoFilename) {
		t.Errorf("missing filename: err = %v, want ErrNoFilename", err)
	}
	if err := v.CheckUpload("notes.txt", ""); !errors.Is(err, ErrBadFileType) {
		t.Errorf("txt file: err = %v, want ErrBadFileType", err)
	}
	if err := v.CheckUpload("transcript.pdf", "image/png"); !errors.Is(err, ErrBadFileType) {
		t.Errorf("png content type: err = %v, want ErrBadFileType", err)
	}
}

// TestCheckContent verifies size cap, empty files, and the PDF signature.
func TestCheckContent(t *testing.T) {
	v := Validator{MaxBytes: 16}

	if err := v.CheckContent([]byte("%PDF-1.7 body")); err != nil {
		t.Errorf("valid content rejected: %v", err)
	}
	if err := v.CheckContent(nil); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("empty content: err = %v, want ErrEmptyFile", err)
	}
	if err := v.CheckContent([]byte("%PDF-1.7 this one is too large")); !errors.Is(err, ErrTooLarge) {
		t.Errorf("oversized content: err = %v, want ErrTooLarge", err)
	}
	if err := v.CheckContent([]byte("PK\x03\x04 zipfile")); !errors.Is(err, ErrNotPDF) {
		t.Errorf("non-pdf content: err = %v, want ErrNotPDF", err)
	}
}

// TestTextRejectsGarbage verifies Text fails cleanly on inputs that are not
// PDF documents instead of panicking inside the decoder.
func TestTextRejectsGarbage(t *testing.T) {
	if _, _, err := Text(nil); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("Text(nil): err = %v, want ErrEmptyFile", err)
	}
	if _, _, err := Text([]byte("plain text, no header")); !errors.Is(err, ErrNotPDF) {
		t.Errorf("Text(non-pdf): err = %v, want ErrNotPDF", err)
	}
	if _, _, err := Text([]byte("%PDF-1.7 but truncated garbage")); err == nil {
		t.Error("Text(truncated pdf): expected error")
	}
}
