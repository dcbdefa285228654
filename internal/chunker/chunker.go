// Package chunker splits source documents into overlapping chunks for
// embedding. Splitting prefers paragraph, then sentence, then word
// boundaries, never mid-word, to preserve semantic locality.
package chunker

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lumenlearn/lumen/internal/domain"
)

// Config holds chunking parameters. Overlap must be strictly smaller than
// ChunkSize.
type Config struct {
	ChunkSize int
	Overlap   int
}

// Split chunks a document into ordered, overlapping chunks that inherit
// the document's tags. Pure function over the document text.
func Split(doc domain.Document, cfg Config) ([]domain.Chunk, error) {
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk_size must be positive, got %d", domain.ErrInvalidConfig, cfg.ChunkSize)
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, chunk_size)", domain.ErrInvalidConfig, cfg.Overlap)
	}

	text := strings.TrimSpace(doc.Text)
	if text == "" {
		return nil, nil
	}

	pieces := splitPieces(text, cfg.ChunkSize)

	var chunks []domain.Chunk
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			Text:       cur.String(),
			Position:   len(chunks),
			Tags:       cloneTags(doc.Tags),
		})
		cur.Reset()
	}

	for _, p := range pieces {
		sep := 0
		if cur.Len() > 0 {
			sep = 1
		}
		if cur.Len()+sep+len(p) > cfg.ChunkSize {
			carry := tailWords(cur.String(), cfg.Overlap)
			flush()
			if carry != "" {
				cur.WriteString(carry)
			}
			// Re-check: the carried overlap plus the piece may still overflow
			// for pieces close to the chunk size; the piece starts a fresh
			// chunk in that case.
			if cur.Len() > 0 && cur.Len()+1+len(p) > cfg.ChunkSize {
				flush()
			}
		}
		if cur.Len() > 0 {
			cur.WriteString(" ")
		}
		cur.WriteString(p)
	}
	flush()

	return chunks, nil
}

// splitPieces breaks text into units no larger than limit, preferring
// paragraph > sentence > word boundaries.
func splitPieces(text string, limit int) []string {
	var out []string
	for _, para := range splitParagraphs(text) {
		if len(para) <= limit {
			out = append(out, para)
			continue
		}
		for _, sent := range splitSentences(para) {
			if len(sent) <= limit {
				out = append(out, sent)
				continue
			}
			out = append(out, splitWords(sent, limit)...)
		}
	}
	return out
}

func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n\n")

	var result []string
	for _, p := range parts {
		// Collapse single newlines inside a paragraph (soft wrap)
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

var sentenceEnders = map[rune]bool{'.': true, '!': true, '?': true}

func splitSentences(para string) []string {
	var sentences []string
	var cur strings.Builder
	runes := []rune(para)

	for i, r := range runes {
		cur.WriteRune(r)
		if sentenceEnders[r] {
			if i+1 >= len(runes) || runes[i+1] == ' ' {
				if s := strings.TrimSpace(cur.String()); s != "" {
					sentences = append(sentences, s)
				}
				cur.Reset()
			}
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		sentences = append(sentences, s)
	}

	if len(sentences) == 0 && para != "" {
		return []string{para}
	}
	return sentences
}

// splitWords greedily packs whole words into pieces of at most limit bytes.
// A single word longer than limit becomes its own oversized piece rather
// than being cut mid-word.
func splitWords(s string, limit int) []string {
	words := strings.Fields(s)
	var out []string
	var cur strings.Builder

	for _, w := range words {
		sep := 0
		if cur.Len() > 0 {
			sep = 1
		}
		if cur.Len()+sep+len(w) > limit && cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteString(" ")
		}
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// tailWords returns the whole-word suffix of s of at most n bytes, used as
// the overlap carried into the next chunk.
func tailWords(s string, n int) string {
	if n <= 0 || s == "" {
		return ""
	}
	words := strings.Fields(s)
	var tail []string
	size := 0
	for i := len(words) - 1; i >= 0; i-- {
		add := len(words[i])
		if size > 0 {
			add++
		}
		if size+add > n {
			break
		}
		size += add
		tail = append([]string{words[i]}, tail...)
	}
	return strings.Join(tail, " ")
}

func cloneTags(tags map[string]string) map[string]string {
	if tags == nil {
		return nil
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}
