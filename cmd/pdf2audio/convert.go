package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chriscod3/pdf-to-audio-converter/internal/audio"
	"github.com/chriscod3/pdf-to-audio-converter/internal/extract"
	"github.com/chriscod3/pdf-to-audio-converter/internal/history"
	"github.com/chriscod3/pdf-to-audio-converter/internal/runner"
	"github.com/chriscod3/pdf-to-audio-converter/internal/tts"
	"github.com/chriscod3/pdf-to-audio-converter/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "pdf2audio/0.1"
	defaultOutputDir = "output"
	defaultHistoryDB = "pdf2audio.db"
)

func init() {
	rootCmd.Flags().StringP("file", "f", "", "single PDF file to convert")
	rootCmd.Flags().StringP("input", "i", "", "input directory containing PDF files")
	rootCmd.Flags().StringP("output", "o", defaultOutputDir, "output directory for audio files")
	rootCmd.Flags().StringP("language", "l", "en", "language for text-to-speech")
	rootCmd.Flags().IntP("jobs", "j", runtime.NumCPU(), "number of parallel jobs")
	rootCmd.Flags().Bool("clean", false, "clean the output directory before processing")
	rootCmd.Flags().Bool("list-languages", false, "list all available languages and exit")
	rootCmd.Flags().String("format", "mp3", "output audio format: mp3, wav, or ogg")
	rootCmd.Flags().String("backend", "pdftext", "text-extraction backend: pdftext or pdftotext")
	rootCmd.Flags().String("provider", "google", "speech provider: google or openai")
	rootCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout for the speech service")
	rootCmd.Flags().String("history-db", defaultHistoryDB, "SQLite run-history database (\"\" disables recording)")

	rootCmd.MarkFlagsMutuallyExclusive("file", "input")
}

// buildConfig resolves flags, config file, and environment into the run
// configuration. Argument errors surface here, before any pipeline work
// starts. Precedence follows viper: flag > PDF2AUDIO_* env > config file >
// flag default.
func buildConfig(cmd *cobra.Command) (types.RunConfig, error) {
	var cfg types.RunConfig

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return cfg, err
	}

	cfg.InputFile = viper.GetString("file")
	cfg.InputDir = viper.GetString("input")
	if cfg.InputFile == "" && cfg.InputDir == "" {
		return cfg, fmt.Errorf("provide an input: -f/--file for a single PDF or -i/--input for a directory")
	}
	if cfg.InputFile != "" && cfg.InputDir != "" {
		return cfg, fmt.Errorf("--file and --input are mutually exclusive")
	}

	cfg.OutputDir = viper.GetString("output")
	cfg.Language = viper.GetString("language")
	cfg.Jobs = viper.GetInt("jobs")
	cfg.Clean = viper.GetBool("clean")
	cfg.HistoryDB = viper.GetString("history-db")

	switch f := types.AudioFormat(viper.GetString("format")); f {
	case types.FormatMP3, types.FormatWAV, types.FormatOGG:
		cfg.Format = f
	default:
		return cfg, fmt.Errorf("unknown output format %q (want mp3, wav, or ogg)", f)
	}

	if !tts.Supported(cfg.Language) {
		return cfg, fmt.Errorf("unsupported language %q; run with --list-languages to see the supported codes", cfg.Language)
	}

	cfg.Extraction = types.ExtractionConfig{
		Backend: types.ExtractionBackend(viper.GetString("backend")),
	}
	cfg.Synthesis = types.SynthesisConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("timeout"),
			UserAgent: defaultUserAgent,
		},
		Provider: viper.GetString("provider"),
	}

	return cfg, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	if list, _ := cmd.Flags().GetBool("list-languages"); list {
		printLanguages(os.Stdout)
		return nil
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	extractor, err := extract.New(cfg.Extraction.Backend)
	if err != nil {
		return err
	}
	synthesizer, err := tts.New(cfg.Synthesis, loadedSecrets)
	if err != nil {
		return err
	}
	writer := audio.NewWriter(cfg.Format)

	r := &runner.Runner{
		Extractor:   extractor,
		Synthesizer: synthesizer,
		Writer:      writer,
		Progress:    runner.NewConsoleProgress(os.Stdout),
		Log:         logger,
	}

	// Fatal before any job: partial cleanup would mix stale and fresh
	// outputs.
	if cfg.Clean {
		if err := r.Clean(cfg.OutputDir); err != nil {
			return err
		}
	}

	jobs, err := r.Discover(cfg)
	if err != nil {
		return err
	}

	logger.Info("starting conversion", "files", len(jobs), "jobs", cfg.Jobs, "language", cfg.Language)

	started := time.Now()
	results := r.Run(cmd.Context(), jobs, cfg.Jobs)
	finished := time.Now()

	summary := types.Summarize(results)
	fmt.Fprintf(os.Stdout, "\n%s\n", summary)

	recordHistory(cfg, started, finished, results)

	if summary.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", summary.Failed)
	}
	return nil
}

// recordHistory appends the run to the SQLite ledger. Failures are logged,
// never fatal: the conversions themselves already happened.
func recordHistory(cfg types.RunConfig, started, finished time.Time, results []types.ConversionResult) {
	if cfg.HistoryDB == "" {
		return
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		logger.Warn("run history unavailable", "error", err)
		return
	}
	defer store.Close()

	run := history.Run{
		ID:         uuid.NewString()[:8],
		StartedAt:  started,
		FinishedAt: finished,
		Language:   cfg.Language,
		Provider:   cfg.Synthesis.Provider,
		Format:     string(cfg.Format),
	}
	if err := store.RecordRun(run, results); err != nil {
		logger.Warn("recording run history failed", "error", err)
	}
}
