package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/domain"
)

const paraphraseTemperature float32 = 0.7

// MultiQuery expands the query into LLM paraphrases, retrieves for each
// variant and merges the results. A chunk hit by several variants keeps
// its best score. When paraphrasing fails the strategy degrades to the
// original query alone rather than returning nothing.
type MultiQuery struct {
	inner     Strategy
	completer domain.Completer
	variants  int
	logger    *zap.Logger
}

func NewMultiQuery(inner Strategy, completer domain.Completer, variants int, logger *zap.Logger) *MultiQuery {
	if variants < 1 {
		variants = 1
	}
	return &MultiQuery{inner: inner, completer: completer, variants: variants, logger: logger}
}

func (m *MultiQuery) Retrieve(
	ctx context.Context, query string, k int, filter domain.MetadataFilter,
) ([]domain.ScoredChunk, error) {
	queries := []string{query}
	paraphrases, err := m.paraphrase(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		m.logger.Warn("Query paraphrasing failed, using original query only", zap.Error(err))
	}
	queries = append(queries, paraphrases...)

	best := map[string]domain.ScoredChunk{}
	order := []string{}
	for _, q := range queries {
		chunks, err := m.inner.Retrieve(ctx, q, k, filter)
		if err != nil {
			return nil, err
		}
		for _, sc := range chunks {
			prev, seen := best[sc.Chunk.ID]
			if !seen {
				best[sc.Chunk.ID] = sc
				order = append(order, sc.Chunk.ID)
				continue
			}
			if sc.Score > prev.Score {
				best[sc.Chunk.ID] = sc
			}
		}
	}

	merged := make([]domain.ScoredChunk, 0, len(order))
	for _, id := range order {
		merged = append(merged, best[id])
	}
	// Stable sort keeps first-seen order among equal scores.
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })
	if len(merged) > k {
		merged = merged[:k]
	}
	return merged, nil
}

func (m *MultiQuery) paraphrase(ctx context.Context, query string) ([]string, error) {
	prompt := fmt.Sprintf(
		"Rewrite the following search query in %d different ways that preserve its meaning. "+
			"Return one rewrite per line with no numbering and no extra text.\n\nQuery: %s",
		m.variants, query)

	raw, err := m.completer.Complete(ctx, prompt, paraphraseTemperature)
	if err != nil {
		return nil, fmt.Errorf("paraphrase query: %w", err)
	}

	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, query) {
			continue
		}
		out = append(out, line)
		if len(out) == m.variants {
			break
		}
	}
	return out, nil
}
