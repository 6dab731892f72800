package services

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultSeparators are tried in order; the empty separator splits into characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Chunk sizing for the two summarization paths.
const (
	VideoChunkSize    = 10000
	VideoChunkOverlap = 1000
	PDFChunkSize      = 1000
	PDFChunkOverlap   = 150
)

// Token budget applied to PDF chunks before summarization.
const (
	PDFMaxTokens     = 1024
	PDFCharsPerToken = 4
)

// Splitter cuts text into bounded, overlapping chunks by recursively trying
// coarser separators first. Lengths are counted in runes.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

func NewSplitter(chunkSize, overlap int, separators ...string) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap > chunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be between 0 and chunk size %d", overlap, chunkSize)
	}
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap, separators: separators}, nil
}

// MustSplitter is NewSplitter for package-level configurations known to be valid.
func MustSplitter(chunkSize, overlap int) *Splitter {
	s, err := NewSplitter(chunkSize, overlap)
	if err != nil {
		panic(err)
	}
	return s
}

// Split returns the chunks of text in order. No chunk is longer than the
// chunk size and neighbouring chunks share up to overlap runes.
func (s *Splitter) Split(text string) []string {
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, sep := range separators {
		if sep == "" {
			separator = ""
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var (
		final []string
		good  []string
	)
	for _, piece := range splitKeepingSeparator(text, separator) {
		if utf8.RuneCountInString(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			if chunk := strings.TrimSpace(piece); chunk != "" {
				final = append(final, chunk)
			}
			continue
		}
		final = append(final, s.split(piece, rest)...)
	}
	if len(good) > 0 {
		final = append(final, s.merge(good)...)
	}
	return final
}

// merge packs small pieces into chunks, carrying trailing pieces worth at
// most overlap runes into the next chunk.
func (s *Splitter) merge(pieces []string) []string {
	var (
		chunks  []string
		current []string
		total   int
	)
	for _, piece := range pieces {
		n := utf8.RuneCountInString(piece)
		if total+n > s.chunkSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > s.overlap || (total+n > s.chunkSize && total > 0) {
				total -= utf8.RuneCountInString(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}
	if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// splitKeepingSeparator splits text on sep and glues each separator onto the
// start of the piece that follows it, so joining the pieces restores text.
func splitKeepingSeparator(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, part := range parts {
		if i > 0 {
			part = sep + part
		}
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// BoundChunks keeps the prefix of chunks that fits the token budget, where a
// token is estimated as charsPerToken runes. Chunks beyond the budget are
// dropped, not truncated.
func BoundChunks(chunks []string, maxTokens, charsPerToken int) []string {
	if charsPerToken <= 0 {
		charsPerToken = PDFCharsPerToken
	}
	total := 0
	for _, c := range chunks {
		total += utf8.RuneCountInString(c) / charsPerToken
	}
	if total <= maxTokens {
		return chunks
	}

	maxChars := maxTokens * charsPerToken
	cum := 0
	kept := make([]string, 0, len(chunks))
	for _, c := range chunks {
		cum += utf8.RuneCountInString(c)
		if cum > maxChars {
			break
		}
		kept = append(kept, c)
	}
	return kept
}
