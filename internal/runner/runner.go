// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runner discovers conversion jobs and executes them on a bounded
// worker pool.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/chriscod3/pdf-to-audio-converter/internal/audio"
	"github.com/chriscod3/pdf-to-audio-converter/internal/extract"
	"github.com/chriscod3/pdf-to-audio-converter/internal/tts"
	"github.com/chriscod3/pdf-to-audio-converter/pkg/types"
)

// ErrNoInput reports a directory scan that matched no PDF files.
var ErrNoInput = errors.New("no PDF files found")

// CleanupError wraps a failure to clear the output directory. It is fatal:
// the run aborts before any job starts, since partial cleanup would leave
// stale outputs mixed with fresh ones.
type CleanupError struct {
	Dir string
	Err error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("cleaning %s: %v", e.Dir, e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }

// Runner wires the pipeline stages together and executes jobs. All
// collaborators are passed in explicitly; the runner holds no global state.
type Runner struct {
	Extractor   extract.Extractor
	Synthesizer tts.Synthesizer
	Writer      *audio.Writer
	Progress    Progress
	Log         *slog.Logger
}

// Discover builds the ordered job list from the run configuration. Single-
// file mode validates the file and yields exactly one job; directory mode
// scans non-recursively for PDF files (case-insensitive extension match)
// and yields one job per match, sorted by filename. Output paths reuse the
// source base name under the output directory, so they are pairwise
// distinct whenever the source names are.
func (r *Runner) Discover(cfg types.RunConfig) ([]types.ConversionJob, error) {
	if cfg.InputFile != "" {
		info, err := os.Stat(cfg.InputFile)
		if err != nil || info.IsDir() {
			return nil, fmt.Errorf("input file %q does not exist", cfg.InputFile)
		}
		if !isPDF(cfg.InputFile) {
			return nil, fmt.Errorf("input file %q is not a PDF file", cfg.InputFile)
		}
		return []types.ConversionJob{r.newJob(cfg, cfg.InputFile)}, nil
	}

	entries, err := os.ReadDir(cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory %s: %w", cfg.InputDir, err)
	}

	var jobs []types.ConversionJob
	for _, entry := range entries {
		if entry.IsDir() || !isPDF(entry.Name()) {
			continue
		}
		jobs = append(jobs, r.newJob(cfg, filepath.Join(cfg.InputDir, entry.Name())))
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInput, cfg.InputDir)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].SourcePath < jobs[j].SourcePath })
	return jobs, nil
}

func (r *Runner) newJob(cfg types.RunConfig, source string) types.ConversionJob {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return types.ConversionJob{
		ID:         uuid.NewString()[:8],
		SourcePath: source,
		OutputPath: filepath.Join(cfg.OutputDir, base+r.Writer.Extension()),
		Language:   cfg.Language,
	}
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// Clean removes all regular files from dir, leaving subdirectories alone.
// A missing directory is not an error. Any removal failure aborts with a
// *CleanupError before jobs are dispatched.
func (r *Runner) Clean(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &CleanupError{Dir: dir, Err: err}
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			return &CleanupError{Dir: dir, Err: err}
		}
		r.Log.Debug("removed stale output", "path", path)
	}
	return nil
}

// Run executes jobs on a worker pool of the given size (default: number of
// CPUs). Each job runs extract → synthesize → write independently; a stage
// failure becomes a failed result without disturbing sibling jobs. Results
// are returned in job order regardless of completion order.
func (r *Runner) Run(ctx context.Context, jobs []types.ConversionJob, parallelism int) []types.ConversionResult {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > len(jobs) {
		parallelism = len(jobs)
	}

	results := make([]types.ConversionResult, len(jobs))

	type workItem struct {
		idx int
		job types.ConversionJob
	}
	work := make(chan workItem, len(jobs))

	var completed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < parallelism; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range work {
				res := r.execute(ctx, item.job)
				// Each worker writes a distinct index; no lock needed.
				results[item.idx] = res
				r.Progress.Step(int(completed.Add(1)), len(jobs), res)
			}
		}()
	}

	for i, job := range jobs {
		work <- workItem{idx: i, job: job}
	}
	close(work)
	wg.Wait()

	return results
}

// execute runs the full pipeline for one job.
func (r *Runner) execute(ctx context.Context, job types.ConversionJob) types.ConversionResult {
	start := time.Now()
	log := r.Log.With("job", job.ID, "source", job.SourcePath)
	log.Debug("job started")

	fail := func(err error) types.ConversionResult {
		log.Error("job failed", "error", err)
		return types.ConversionResult{
			Job:      job,
			Status:   types.JobFailed,
			Duration: time.Since(start),
			Err:      err,
		}
	}

	pages, err := r.Extractor.Extract(job.SourcePath)
	if err != nil {
		return fail(err)
	}

	payloads := make([][]byte, 0, len(pages))
	for _, page := range pages {
		if ctx.Err() != nil {
			return fail(ctx.Err())
		}
		speech, err := r.Synthesizer.Synthesize(ctx, page, job.Language)
		if err != nil {
			return fail(err)
		}
		payloads = append(payloads, speech)
	}

	if err := r.Writer.Write(ctx, payloads, job.OutputPath); err != nil {
		return fail(err)
	}

	log.Debug("job finished", "pages", len(pages), "output", job.OutputPath)
	return types.ConversionResult{
		Job:      job,
		Status:   types.JobSucceeded,
		Pages:    len(pages),
		Duration: time.Since(start),
	}
}
