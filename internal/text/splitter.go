package text

import (
	"fmt"
	"strings"

	"portfolio/backend/internal/knowledge"
)

// Separators tried in order when looking for a cut point, from most to least
// preferred. The last resort is a hard character cut.
var separators = []string{"\n\n", ". ", "! ", "? ", "\n", " "}

// Splitter breaks documents into chunks of at most maxSize characters, each
// chunk after the first starting overlap characters before the previous
// chunk's end within the same document.
type Splitter struct {
	maxSize int
	overlap int
}

func NewSplitter(maxSize, overlap int) (*Splitter, error) {
	if overlap < 0 || maxSize <= overlap {
		return nil, fmt.Errorf("invalid splitter config: maxSize=%d overlap=%d", maxSize, overlap)
	}
	return &Splitter{maxSize: maxSize, overlap: overlap}, nil
}

// Split chunks every document, copying the parent metadata onto each chunk.
func (s *Splitter) Split(docs []knowledge.Document) []knowledge.Document {
	var chunks []knowledge.Document
	for _, doc := range docs {
		for _, piece := range s.SplitText(doc.Content) {
			chunks = append(chunks, knowledge.Document{Content: piece, Metadata: doc.Metadata})
		}
	}
	return chunks
}

// SplitText splits a single text. A text no longer than maxSize yields exactly
// one chunk equal to the whole text.
func (s *Splitter) SplitText(content string) []string {
	runes := []rune(content)
	if len(runes) <= s.maxSize {
		return []string{content}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + s.maxSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		cut := s.cutPoint(runes, start, end)
		chunks = append(chunks, string(runes[start:cut]))

		next := cut - s.overlap
		if next <= start {
			// Overlap would stall on a short chunk; give it up for this
			// boundary to guarantee forward progress.
			next = cut
		}
		start = next
	}

	return chunks
}

// cutPoint picks the best boundary in (start, end], preferring paragraph
// breaks, then sentence ends, then whitespace. The cut lands just after the
// separator so separators stay with the leading chunk.
func (s *Splitter) cutPoint(runes []rune, start, end int) int {
	window := string(runes[start:end])
	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx <= 0 {
			continue
		}
		cut := start + len([]rune(window[:idx])) + len([]rune(sep))
		if cut > start && cut <= end {
			return cut
		}
	}
	return end
}
