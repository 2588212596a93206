// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audio persists synthesized speech as playable audio files,
// transcoding via ffmpeg when the requested format differs from the
// synthesizer's native MP3.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/chriscod3/pdf-to-audio-converter/pkg/types"
)

const binFFmpeg = "ffmpeg"

// WriteError wraps a failure to persist an audio file (disk space,
// permissions).
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// TranscodeError wraps a failure of the external audio processor.
type TranscodeError struct {
	Path string
	Err  error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("transcoding %s: %v", e.Path, e.Err)
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Writer persists synthesized page audio as one file per document.
type Writer struct {
	format types.AudioFormat
	exec   executor
}

// NewWriter creates a writer for the given output format. MP3 is written
// directly; other formats go through ffmpeg.
func NewWriter(format types.AudioFormat) *Writer {
	if format == "" {
		format = types.FormatMP3
	}
	return &Writer{format: format, exec: &osExecutor{}}
}

// Extension returns the filename extension for the writer's format,
// including the leading dot.
func (w *Writer) Extension() string {
	return "." + string(w.format)
}

// Write concatenates per-page MP3 payloads and writes them to dest,
// creating parent directories as needed. For non-MP3 formats the combined
// stream is transcoded with ffmpeg.
func (w *Writer) Write(ctx context.Context, pages [][]byte, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return &WriteError{Path: dest, Err: err}
	}

	// MP3 frames are self-contained; appending streams back to back
	// yields a playable file, which is all the direct path needs.
	var combined bytes.Buffer
	for _, p := range pages {
		combined.Write(p)
	}

	if w.format == types.FormatMP3 {
		if err := os.WriteFile(dest, combined.Bytes(), 0o644); err != nil {
			return &WriteError{Path: dest, Err: err}
		}
		return nil
	}

	return w.transcode(ctx, &combined, dest)
}

// transcode writes the MP3 stream to a temp file next to dest and runs
// ffmpeg to produce the requested format.
func (w *Writer) transcode(ctx context.Context, mp3 io.Reader, dest string) error {
	if _, err := w.exec.LookPath(binFFmpeg); err != nil {
		return &TranscodeError{Path: dest, Err: fmt.Errorf("%s not found in PATH: %w", binFFmpeg, err)}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".pdf2audio-*.mp3")
	if err != nil {
		return &WriteError{Path: dest, Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, mp3); err != nil {
		tmp.Close()
		return &WriteError{Path: dest, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: dest, Err: err}
	}

	args := []string{"-i", tmpPath, "-y", dest}
	if err := w.exec.Run(ctx, binFFmpeg, args...); err != nil {
		return &TranscodeError{Path: dest, Err: err}
	}
	return nil
}
