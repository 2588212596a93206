package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chriscod3/pdf-to-audio-converter/internal/tts"
)

// printLanguages writes the supported-language table.
func printLanguages(w io.Writer) {
	const format = "%-10s %-30s\n"
	fmt.Fprintln(w, "\nAvailable languages:")
	fmt.Fprintf(w, format, "Code", "Language")
	fmt.Fprintln(w, strings.Repeat("-", 40))
	for _, lang := range tts.Languages() {
		fmt.Fprintf(w, format, lang.Code, lang.Name)
	}
}
