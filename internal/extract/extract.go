// Package extract turns uploaded files or inline text into bounded
// plain-text content for the interpretation pipeline.
package extract

import (
	"log/slog"
	"os"
	"unicode/utf8"
)

const (
	// InlineTextCap bounds inline text submissions.
	InlineTextCap = 10000

	// Sentinel stands in for files that yielded no text at all. It is a
	// content classification, not a failure: scanned PDFs land here.
	Sentinel = "No extractable text found. The file may be a scanned document or contain only images."
)

// Strategy is one extraction method. Extract returns the extracted text and
// whether it produced anything usable; strategies never return errors.
type Strategy interface {
	Name() string
	Extract(data []byte) (string, bool)
}

// Extractor tries strategies in a fixed order, accepting the first that
// yields non-empty text.
type Extractor struct {
	strategies []Strategy
}

// New returns an Extractor with the default strategy chain: PDF, DOCX,
// plain text.
func New() *Extractor {
	return &Extractor{
		strategies: []Strategy{
			pdfStrategy{},
			docxStrategy{},
			textStrategy{},
		},
	}
}

// Content produces the job's plain-text content from inline text or a staged
// file. Inline text wins and is truncated to InlineTextCap. A file that no
// strategy can read yields Sentinel; the empty string only means neither
// text nor a readable file was supplied. The staged file is removed on every
// exit path.
func (e *Extractor) Content(filePath, text string) string {
	if text != "" {
		return truncate(text, InlineTextCap)
	}

	if filePath == "" {
		return ""
	}
	defer func() {
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove staged file", "path", filePath, "error", err)
		}
	}()

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read staged file", "path", filePath, "error", err)
		return ""
	}
	if len(data) == 0 {
		return ""
	}

	for _, s := range e.strategies {
		if content, ok := s.Extract(data); ok {
			slog.Debug("content extracted", "strategy", s.Name(), "bytes", len(content))
			return content
		}
	}

	return Sentinel
}

// truncate shortens s to maxBytes without splitting UTF-8 runes.
func truncate(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
