// Package document reads résumé files into plain text for assessment.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrUnsupportedInput is returned for file types the loader cannot read.
	ErrUnsupportedInput = errors.New("unsupported input")
	// ErrEmptyDocument is returned when a file holds no text.
	ErrEmptyDocument = errors.New("document is empty")
	// ErrInvalidEncoding is returned when too much of a file is not UTF-8.
	ErrInvalidEncoding = errors.New("document is not valid UTF-8 text")
)

// MaxInvalidRatio is the share of undecodable runes tolerated before a
// document is rejected.
const MaxInvalidRatio = 0.2

var supportedExtensions = map[string]struct{}{
	".txt":  {},
	".text": {},
	".md":   {},
}

var repeatedSpaces = regexp.MustCompile(` {2,}`)

// Load reads path and returns its normalised text.
func Load(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := supportedExtensions[ext]; !ok {
		if ext == "" {
			ext = "(none)"
		}
		return "", fmt.Errorf("%w: %s files are not supported, convert the résumé to plain text", ErrUnsupportedInput, ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", path, err)
	}

	text, err := Decode(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}

// Decode validates and normalises raw text bytes.
func Decode(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}

	if ratio := invalidRatio(data); ratio > MaxInvalidRatio {
		return "", fmt.Errorf("%w: %.0f%% of the content could not be decoded", ErrInvalidEncoding, ratio*100)
	}

	text := Normalize(strings.ToValidUTF8(string(data), ""))
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

// Normalize applies NFC, collapses runs of spaces and trims every line while
// keeping line breaks and tabs inside lines.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = repeatedSpaces.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func invalidRatio(data []byte) float64 {
	total, invalid := 0, 0
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size <= 1 {
			invalid++
		}
		total++
		data = data[size:]
	}
	if total == 0 {
		return 0
	}
	return float64(invalid) / float64(total)
}
