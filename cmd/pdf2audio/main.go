// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdf2audio CLI. It converts PDF
// documents into spoken-audio files: text extraction, cloud text-to-speech
// synthesis, and audio output run as one pipeline per file on a bounded
// worker pool.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chriscod3/pdf-to-audio-converter/internal/logging"
	"github.com/chriscod3/pdf-to-audio-converter/internal/secrets"
	"github.com/chriscod3/pdf-to-audio-converter/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is the run logger configured from --log/--log-file.
var (
	logger     *slog.Logger
	logCleanup func() error
)

// rootCmd is the base command; running it with input flags performs the
// conversion.
var rootCmd = &cobra.Command{
	Use:   "pdf2audio",
	Short: "Convert PDF files to spoken audio",
	Long: `pdf2audio extracts the text of PDF documents and synthesizes it into
audio files through a cloud text-to-speech service.

A single file (-f) or a whole directory (-i) can be converted; directory
mode scans non-recursively and processes files on a worker pool (-j).
Output files take the source base name with the audio extension.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s

		logLevel, _ := cmd.Flags().GetString("log")
		logFile, _ := cmd.Flags().GetString("log-file")
		logger, logCleanup = logging.Setup(logFile, types.ParseLogLevel(logLevel))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCleanup != nil {
			return logCleanup()
		}
		return nil
	},
	RunE: runConvert,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdf2audio.yaml or ~/.config/pdf2audio/config.yaml)")
	rootCmd.PersistentFlags().String("log", "info", "log verbosity: debug, info, warning, error, or critical")
	rootCmd.PersistentFlags().String("log-file", "", "also write JSON logs to this file")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdf2audio")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdf2audio"))
		}
	}

	viper.SetEnvPrefix("PDF2AUDIO")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
