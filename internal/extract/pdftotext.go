// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const binPdftotext = "pdftotext"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunPiped(name string, args []string, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunPiped(name string, args []string, stdout io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// PdftotextExtractor shells out to poppler's pdftotext binary. Poppler
// handles some documents the in-process reader cannot (odd encodings,
// damaged streams), at the cost of an external dependency.
type PdftotextExtractor struct {
	exec executor
}

// NewPdftotextExtractor creates the poppler-backed extractor.
func NewPdftotextExtractor() *PdftotextExtractor {
	return &PdftotextExtractor{exec: &osExecutor{}}
}

// Extract runs pdftotext and splits its output on the form-feed page
// separators poppler emits.
func (x *PdftotextExtractor) Extract(path string) ([]string, error) {
	if _, err := x.exec.LookPath(binPdftotext); err != nil {
		return nil, &ExtractionError{Path: path, Err: fmt.Errorf("%s not found in PATH: %w", binPdftotext, err)}
	}

	var out bytes.Buffer
	// -q suppresses warnings; "-" writes to stdout.
	if err := x.exec.RunPiped(binPdftotext, []string{"-q", path, "-"}, &out); err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	return collectPages(path, strings.Split(out.String(), "\f"))
}
