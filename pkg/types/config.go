// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"log/slog"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pdf2audio/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ExtractionBackend identifies the PDF text-extraction tool.
type ExtractionBackend string

const (
	// BackendPDFText is the in-process pure-Go reader.
	BackendPDFText ExtractionBackend = "pdftext"
	// BackendPdftotext shells out to poppler's pdftotext binary.
	BackendPdftotext ExtractionBackend = "pdftotext"
)

// ExtractionConfig holds settings for the text-extraction stage.
type ExtractionConfig struct {
	// Backend selects the extraction tool: pdftext or pdftotext.
	Backend ExtractionBackend `json:"backend" yaml:"backend"`
}

// SynthesisConfig holds settings for the text-to-speech stage.
type SynthesisConfig struct {
	HTTPConfig `yaml:",inline"`

	// Provider selects the speech service: google or openai.
	Provider string `json:"provider" yaml:"provider"`

	// MaxRetries bounds retry attempts for transient API failures (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// AudioFormat selects the output audio encoding.
type AudioFormat string

const (
	FormatMP3 AudioFormat = "mp3"
	FormatWAV AudioFormat = "wav"
	FormatOGG AudioFormat = "ogg"
)

// RunConfig is the resolved configuration for one conversion run. It is
// built once from flags, config file, and environment, and read-only for
// the remainder of the run.
type RunConfig struct {
	// InputFile is the single PDF to convert. Exactly one of InputFile
	// and InputDir is set.
	InputFile string `json:"input_file" yaml:"input_file"`

	// InputDir is the directory to scan (non-recursively) for PDFs.
	InputDir string `json:"input_dir" yaml:"input_dir"`

	// OutputDir receives one audio file per source PDF (default "output").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Language is the synthesis language code (default "en").
	Language string `json:"language" yaml:"language"`

	// Format is the output audio format (default mp3).
	Format AudioFormat `json:"format" yaml:"format"`

	// Jobs is the worker-pool size (default: number of CPUs).
	Jobs int `json:"jobs" yaml:"jobs"`

	// Clean removes files from OutputDir before the run starts.
	Clean bool `json:"clean" yaml:"clean"`

	// HistoryDB is the path of the SQLite run ledger ("" disables it).
	HistoryDB string `json:"history_db,omitempty" yaml:"history_db,omitempty"`

	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Synthesis  SynthesisConfig  `json:"synthesis" yaml:"synthesis"`
}

// ParseLogLevel maps the CLI log-level names (debug, info, warning, error,
// critical) onto slog levels. Unknown names fall back to info. "critical"
// has no slog equivalent and maps to error.
func ParseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warning":
		return slog.LevelWarn
	case "error", "critical":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
