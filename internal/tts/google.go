// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chriscod3/pdf-to-audio-converter/internal/httputil"
	"github.com/chriscod3/pdf-to-audio-converter/pkg/types"
)

// googleTTSURL is the keyless Translate speech endpoint.
var googleTTSURL = "https://translate.google.com/translate_tts"

// maxChunkLen bounds the text sent per request; the endpoint rejects
// longer inputs.
const maxChunkLen = 200

// GoogleSynthesizer speaks text through the Google Translate TTS endpoint.
// The endpoint needs no API key but caps input length, so text is split
// into sentence-aligned chunks and the returned MP3 payloads concatenated.
type GoogleSynthesizer struct {
	client     *http.Client
	userAgent  string
	maxRetries int
}

// NewGoogleSynthesizer creates the Translate-backed synthesizer.
func NewGoogleSynthesizer(cfg types.SynthesisConfig) *GoogleSynthesizer {
	return &GoogleSynthesizer{
		client:     &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
	}
}

// Synthesize converts text to MP3 bytes in the given language.
func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if !Supported(language) {
		return nil, &SynthesisError{Provider: "google", Language: language, Err: fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &SynthesisError{Provider: "google", Language: language, Err: ErrEmptyText}
	}

	chunks := splitChunks(text, maxChunkLen)
	var buf bytes.Buffer
	for i, chunk := range chunks {
		audio, err := g.fetchChunk(ctx, chunk, language, i, len(chunks))
		if err != nil {
			return nil, &SynthesisError{Provider: "google", Language: language, Err: err}
		}
		buf.Write(audio)
	}

	return buf.Bytes(), nil
}

// fetchChunk requests the MP3 for one text chunk.
func (g *GoogleSynthesizer) fetchChunk(ctx context.Context, chunk, language string, idx, total int) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", language)
	q.Set("q", chunk)
	q.Set("idx", strconv.Itoa(idx))
	q.Set("total", strconv.Itoa(total))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleTTSURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, g.client, req, g.maxRetries)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech endpoint returned %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// splitChunks breaks text into pieces of at most max bytes, preferring
// sentence boundaries, then word boundaries. Words longer than max are cut
// at rune boundaries, so every chunk stays valid UTF-8 even for scripts
// without word spacing.
func splitChunks(text string, max int) []string {
	var chunks []string
	var cur strings.Builder

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			chunks = append(chunks, s)
		}
		cur.Reset()
	}

	for _, sentence := range splitSentences(text) {
		if cur.Len() > 0 && cur.Len()+len(sentence)+1 > max {
			flush()
		}
		if len(sentence) <= max {
			if cur.Len() > 0 {
				cur.WriteByte(' ')
			}
			cur.WriteString(sentence)
			continue
		}
		// Sentence alone exceeds the cap; fall back to word packing.
		for _, word := range strings.Fields(sentence) {
			for len(word) > max {
				flush()
				var head string
				head, word = cutRunes(word, max)
				chunks = append(chunks, head)
			}
			if cur.Len() > 0 && cur.Len()+len(word)+1 > max {
				flush()
			}
			if cur.Len() > 0 {
				cur.WriteByte(' ')
			}
			cur.WriteString(word)
		}
	}
	flush()

	return chunks
}

// cutRunes returns the longest prefix of s that fits in max bytes without
// splitting a rune, and the remainder. A single rune wider than max is kept
// whole.
func cutRunes(s string, max int) (string, string) {
	cut := 0
	for i, r := range s {
		next := i + utf8.RuneLen(r)
		if next > max && cut > 0 {
			break
		}
		cut = next
		if cut >= max {
			break
		}
	}
	return s[:cut], s[cut:]
}

// splitSentences splits on terminal punctuation, keeping the punctuation
// attached to its sentence.
func splitSentences(text string) []string {
	var out []string
	var cur strings.Builder
	for _, r := range text {
		cur.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '。' || r == '！' || r == '？' {
			if s := strings.TrimFunc(cur.String(), unicode.IsSpace); s != "" {
				out = append(out, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimFunc(cur.String(), unicode.IsSpace); s != "" {
		out = append(out, s)
	}
	return out
}
