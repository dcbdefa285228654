package domain

// Document is a source document ingested into the knowledge base.
// Immutable once ingested; replaced only by explicit re-ingestion.
type Document struct {
	ID        string            `json:"id"`
	SourceURI string            `json:"source_uri"`
	Text      string            `json:"text"`
	Tags      map[string]string `json:"tags,omitempty"`
}

// Chunk is a bounded contiguous slice of a document, independently
// embeddable. Tags are inherited from the parent document. Position is the
// zero-based order within the document.
type Chunk struct {
	ID         string            `json:"id"`
	DocumentID string            `json:"document_id"`
	Text       string            `json:"text"`
	Position   int               `json:"position"`
	Tags       map[string]string `json:"tags,omitempty"`
	Embedding  []float32         `json:"-"`
}

// ScoredChunk pairs a chunk with its relevance score for one retrieval
// call. Scores are similarities in [0,1], higher is better.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// MetadataFilter restricts retrieval to chunks whose tags match every
// listed key/value pair. A nil or empty filter matches everything.
type MetadataFilter map[string]string

// Matches reports whether the chunk tags satisfy the filter.
func (f MetadataFilter) Matches(tags map[string]string) bool {
	for k, v := range f {
		if tags[k] != v {
			return false
		}
	}
	return true
}
