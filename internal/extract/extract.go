// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract implements PDF text extraction with pluggable backends.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chriscod3/pdf-to-audio-converter/pkg/types"
)

// ErrNoText reports a document where no page yielded extractable text
// (scanned images, empty pages).
var ErrNoText = errors.New("no extractable text")

// ExtractionError wraps a failure to read text from a PDF.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extractor reads the text content of a PDF. Different backends (the
// in-process reader, poppler's pdftotext) implement this interface.
type Extractor interface {
	// Extract returns one whitespace-normalized string per page with
	// extractable text, in document order. Pages without text are
	// dropped. Returns an *ExtractionError wrapping ErrNoText when
	// every page is empty.
	Extract(path string) ([]string, error)
}

// New returns the extractor for the configured backend.
func New(backend types.ExtractionBackend) (Extractor, error) {
	switch backend {
	case types.BackendPDFText, "":
		return &PDFTextExtractor{}, nil
	case types.BackendPdftotext:
		return NewPdftotextExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown extraction backend %q", backend)
	}
}

// normalize collapses runs of whitespace to single spaces and trims the
// result, so synthesized speech does not stumble over layout artifacts.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// collectPages normalizes raw page strings and drops empty ones. The error
// return is an *ExtractionError wrapping ErrNoText when nothing survives.
func collectPages(path string, raw []string) ([]string, error) {
	pages := make([]string, 0, len(raw))
	for _, p := range raw {
		if n := normalize(p); n != "" {
			pages = append(pages, n)
		}
	}
	if len(pages) == 0 {
		return nil, &ExtractionError{Path: path, Err: ErrNoText}
	}
	return pages, nil
}
