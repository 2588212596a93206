// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the pdf2audio pipeline.
package types

import (
	"fmt"
	"time"
)

// JobStatus tracks a conversion job through its lifecycle.
// Jobs only move forward: Pending → Running → Succeeded or Failed.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// ConversionJob is one source-PDF-to-audio-file unit of work. Jobs are
// immutable once built by discovery; OutputPath is derived from SourcePath
// (same base name, audio extension, under the output directory) so
// concurrent jobs never collide on a shared file.
type ConversionJob struct {
	// ID is a short identifier for log correlation.
	ID string `json:"id" yaml:"id"`

	// SourcePath is the PDF file to convert.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// OutputPath is the audio file to produce.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// Language is the synthesis language code (e.g. "en").
	Language string `json:"language" yaml:"language"`
}

// ConversionResult records the outcome of executing one job.
type ConversionResult struct {
	Job ConversionJob `json:"job" yaml:"job"`

	Status JobStatus `json:"status" yaml:"status"`

	// Pages is the number of pages that produced audio.
	Pages int `json:"pages" yaml:"pages"`

	Duration time.Duration `json:"duration" yaml:"duration"`

	// Err holds the causing error when Status is JobFailed, nil otherwise.
	Err error `json:"-" yaml:"-"`
}

// ErrorDetail returns the failure message, or "" for successful results.
func (r ConversionResult) ErrorDetail() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Summary aggregates the outcomes of a batch run.
type Summary struct {
	Succeeded int
	Failed    int
}

// Total returns the total number of jobs executed.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed
}

// HasFailures reports whether any job failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// String renders the batch summary line.
func (s Summary) String() string {
	return fmt.Sprintf("%d out of %d files converted successfully", s.Succeeded, s.Total())
}

// Summarize tallies results into a Summary.
func Summarize(results []ConversionResult) Summary {
	var s Summary
	for _, r := range results {
		if r.Status == JobSucceeded {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}
