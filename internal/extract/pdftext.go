// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFTextExtractor reads PDF text in-process. It is the default backend:
// no external binaries, works on any platform the tool builds for.
type PDFTextExtractor struct{}

// Extract opens the PDF at path and returns its per-page text.
func (x *PDFTextExtractor) Extract(path string) (pages []string, err error) {
	// The reader panics on some malformed cross-reference tables; fold
	// those into the same error path as regular parse failures.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = &ExtractionError{Path: path, Err: fmt.Errorf("malformed PDF: %v", r)}
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}
	defer f.Close()

	raw := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not sink the document.
			continue
		}
		raw = append(raw, text)
	}

	return collectPages(path, raw)
}
