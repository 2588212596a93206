// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriscod3/pdf-to-audio-converter/internal/audio"
	"github.com/chriscod3/pdf-to-audio-converter/internal/extract"
	"github.com/chriscod3/pdf-to-audio-converter/pkg/types"
)

// fakeExtractor returns canned pages, or an error for paths in failPaths.
type fakeExtractor struct {
	pages     []string
	failPaths map[string]bool
}

func (f *fakeExtractor) Extract(path string) ([]string, error) {
	if f.failPaths[filepath.Base(path)] {
		return nil, &extract.ExtractionError{Path: path, Err: errors.New("corrupted file")}
	}
	return f.pages, nil
}

// fakeSynthesizer returns deterministic bytes per text, counting calls.
type fakeSynthesizer struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text, language string) ([]byte, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(language + ":" + text), nil
}

// countingProgress records Step invocations.
type countingProgress struct {
	mu    sync.Mutex
	steps []int
}

func (p *countingProgress) Step(completed, total int, _ types.ConversionResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, completed)
}

func testRunner() (*Runner, *fakeExtractor, *fakeSynthesizer) {
	ext := &fakeExtractor{pages: []string{"Hello world"}, failPaths: map[string]bool{}}
	syn := &fakeSynthesizer{}
	return &Runner{
		Extractor:   ext,
		Synthesizer: syn,
		Writer:      audio.NewWriter(types.FormatMP3),
		Progress:    NopProgress{},
		Log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, ext, syn
}

func writePDFs(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("%PDF-1.4"), 0o644))
	}
}

func TestDiscover_SingleFile(t *testing.T) {
	dir := t.TempDir()
	writePDFs(t, dir, "report.pdf")
	r, _, _ := testRunner()

	cfg := types.RunConfig{
		InputFile: filepath.Join(dir, "report.pdf"),
		OutputDir: filepath.Join(dir, "out"),
		Language:  "en",
	}
	jobs, err := r.Discover(cfg)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	assert.Equal(t, cfg.InputFile, jobs[0].SourcePath)
	assert.Equal(t, filepath.Join(dir, "out", "report.mp3"), jobs[0].OutputPath)
	assert.Equal(t, "en", jobs[0].Language)
	assert.NotEmpty(t, jobs[0].ID)
}

func TestDiscover_SingleFileErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("text"), 0o644))
	r, _, _ := testRunner()

	tests := []struct {
		name string
		file string
	}{
		{name: "missing file", file: filepath.Join(dir, "absent.pdf")},
		{name: "not a pdf", file: filepath.Join(dir, "notes.txt")},
		{name: "directory given as file", file: dir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Discover(types.RunConfig{InputFile: tt.file, OutputDir: "out"})
			assert.Error(t, err)
		})
	}
}

func TestDiscover_Directory(t *testing.T) {
	dir := t.TempDir()
	writePDFs(t, dir, "b.pdf", "a.pdf", "C.PDF")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writePDFs(t, filepath.Join(dir, "nested"), "deep.pdf")

	r, _, _ := testRunner()
	cfg := types.RunConfig{InputDir: dir, OutputDir: "out", Language: "en"}

	jobs, err := r.Discover(cfg)
	require.NoError(t, err)

	// Non-recursive, PDF extension only (case-insensitive), filename order.
	var sources []string
	for _, j := range jobs {
		sources = append(sources, filepath.Base(j.SourcePath))
	}
	assert.Equal(t, []string{"C.PDF", "a.pdf", "b.pdf"}, sources)

	// Output paths are pairwise distinct.
	seen := map[string]bool{}
	for _, j := range jobs {
		assert.False(t, seen[j.OutputPath], "duplicate output %s", j.OutputPath)
		seen[j.OutputPath] = true
	}
}

func TestDiscover_DirectoryIdempotent(t *testing.T) {
	dir := t.TempDir()
	writePDFs(t, dir, "a.pdf", "b.pdf")
	r, _, _ := testRunner()
	cfg := types.RunConfig{InputDir: dir, OutputDir: "out"}

	first, err := r.Discover(cfg)
	require.NoError(t, err)
	second, err := r.Discover(cfg)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].SourcePath, second[i].SourcePath)
		assert.Equal(t, first[i].OutputPath, second[i].OutputPath)
	}
}

func TestDiscover_NoInput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0o644))
	r, _, _ := testRunner()

	_, err := r.Discover(types.RunConfig{InputDir: dir, OutputDir: "out"})
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestClean(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.mp3"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old2.mp3"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "keepdir"), 0o755))

	r, _, _ := testRunner()
	require.NoError(t, r.Clean(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keepdir", entries[0].Name())
}

func TestClean_MissingDirIsNoop(t *testing.T) {
	r, _, _ := testRunner()
	assert.NoError(t, r.Clean(filepath.Join(t.TempDir(), "absent")))
}

func TestRun_AllSucceed(t *testing.T) {
	dir := t.TempDir()
	writePDFs(t, dir, "a.pdf", "b.pdf", "c.pdf")
	outDir := filepath.Join(dir, "out")

	r, _, syn := testRunner()
	jobs, err := r.Discover(types.RunConfig{InputDir: dir, OutputDir: outDir, Language: "en"})
	require.NoError(t, err)

	results := r.Run(context.Background(), jobs, 2)
	require.Len(t, results, len(jobs))

	for i, res := range results {
		assert.Equal(t, types.JobSucceeded, res.Status)
		assert.Equal(t, jobs[i].SourcePath, res.Job.SourcePath, "results keep job order")
		assert.Equal(t, 1, res.Pages)

		data, err := os.ReadFile(res.Job.OutputPath)
		require.NoError(t, err)
		assert.Equal(t, "en:Hello world", string(data))
	}

	summary := types.Summarize(results)
	assert.Equal(t, 3, summary.Succeeded)
	assert.False(t, summary.HasFailures())
	assert.Equal(t, int32(3), syn.calls.Load())
}

func TestRun_FailureDoesNotAbortSiblings(t *testing.T) {
	dir := t.TempDir()
	writePDFs(t, dir, "a.pdf", "b.pdf")
	outDir := filepath.Join(dir, "out")

	r, ext, _ := testRunner()
	ext.failPaths["b.pdf"] = true

	jobs, err := r.Discover(types.RunConfig{InputDir: dir, OutputDir: outDir, Language: "en"})
	require.NoError(t, err)

	results := r.Run(context.Background(), jobs, 2)
	require.Len(t, results, 2)

	assert.Equal(t, types.JobSucceeded, results[0].Status)
	assert.Equal(t, types.JobFailed, results[1].Status)

	var xerr *extract.ExtractionError
	assert.ErrorAs(t, results[1].Err, &xerr)
	assert.Contains(t, results[1].ErrorDetail(), "corrupted file")

	summary := types.Summarize(results)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, summary.HasFailures())
	assert.Equal(t, "1 out of 2 files converted successfully", summary.String())
}

func TestRun_ParallelismEquivalence(t *testing.T) {
	dir := t.TempDir()
	names := make([]string, 8)
	for i := range names {
		names[i] = fmt.Sprintf("doc%d.pdf", i)
	}
	writePDFs(t, dir, names...)

	collect := func(parallelism int) []string {
		outDir := filepath.Join(t.TempDir(), "out")
		r, ext, _ := testRunner()
		ext.failPaths["doc3.pdf"] = true

		jobs, err := r.Discover(types.RunConfig{InputDir: dir, OutputDir: outDir, Language: "en"})
		require.NoError(t, err)

		var got []string
		for _, res := range r.Run(context.Background(), jobs, parallelism) {
			got = append(got, fmt.Sprintf("%s=%s", filepath.Base(res.Job.SourcePath), res.Status))
		}
		sort.Strings(got)
		return got
	}

	assert.Equal(t, collect(1), collect(4))
}

func TestRun_ProgressStepsOncePerJob(t *testing.T) {
	dir := t.TempDir()
	writePDFs(t, dir, "a.pdf", "b.pdf", "c.pdf", "d.pdf")

	r, ext, _ := testRunner()
	ext.failPaths["b.pdf"] = true
	prog := &countingProgress{}
	r.Progress = prog

	jobs, err := r.Discover(types.RunConfig{InputDir: dir, OutputDir: filepath.Join(dir, "out"), Language: "en"})
	require.NoError(t, err)

	r.Run(context.Background(), jobs, 3)

	// One step per job, counter values are a permutation of 1..n.
	require.Len(t, prog.steps, len(jobs))
	sort.Ints(prog.steps)
	for i, v := range prog.steps {
		assert.Equal(t, i+1, v)
	}
}

func TestRun_SynthesisFailure(t *testing.T) {
	dir := t.TempDir()
	writePDFs(t, dir, "a.pdf")

	r, _, syn := testRunner()
	syn.err = errors.New("service unreachable")

	jobs, err := r.Discover(types.RunConfig{InputDir: dir, OutputDir: filepath.Join(dir, "out"), Language: "en"})
	require.NoError(t, err)

	results := r.Run(context.Background(), jobs, 1)
	require.Len(t, results, 1)
	assert.Equal(t, types.JobFailed, results[0].Status)
	assert.Contains(t, results[0].ErrorDetail(), "service unreachable")

	// No output file left behind for the failed job.
	_, statErr := os.Stat(results[0].Job.OutputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestConsoleProgress(t *testing.T) {
	var buf strings.Builder
	p := NewConsoleProgress(&buf)

	ok := types.ConversionResult{
		Job:    types.ConversionJob{SourcePath: "in/a.pdf"},
		Status: types.JobSucceeded,
	}
	failed := types.ConversionResult{
		Job:    types.ConversionJob{SourcePath: "in/b.pdf"},
		Status: types.JobFailed,
		Err:    errors.New("boom"),
	}

	p.Step(1, 2, ok)
	p.Step(2, 2, failed)

	out := buf.String()
	assert.Contains(t, out, "converted:")
	assert.Contains(t, out, "a.pdf")
	assert.Contains(t, out, "failed:")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "[1/2]")
	assert.Contains(t, out, "[2/2]")
}
