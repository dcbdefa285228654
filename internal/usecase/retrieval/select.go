package retrieval

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/domain"
)

// Deps holds everything a strategy may need. Select composes the
// configured strategy on top of Direct.
type Deps struct {
	Embedder  domain.Embedder
	Index     index
	Completer domain.Completer
	Documents documents
	Variants  int // paraphrase count for multi_query
	Logger    *zap.Logger
}

// Select builds the named retrieval strategy.
func Select(name string, d Deps) (Strategy, error) {
	direct := NewDirect(d.Embedder, d.Index)
	switch name {
	case StrategyDirect:
		return direct, nil
	case StrategyMultiQuery:
		return NewMultiQuery(direct, d.Completer, d.Variants, d.Logger), nil
	case StrategyParent:
		return NewParentDocument(direct, d.Documents, d.Logger), nil
	case StrategyCompression:
		return NewCompression(direct, d.Completer, d.Logger), nil
	}
	return nil, fmt.Errorf("unknown retrieval strategy %q", name)
}
