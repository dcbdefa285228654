package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/lumenlearn/lumen/internal/domain"
)

func TestSplit_InvalidConfig(t *testing.T) {
	doc := domain.Document{ID: "d1", Text: "some text"}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero chunk size", Config{ChunkSize: 0, Overlap: 0}},
		{"negative chunk size", Config{ChunkSize: -10, Overlap: 0}},
		{"negative overlap", Config{ChunkSize: 100, Overlap: -1}},
		{"overlap equals chunk size", Config{ChunkSize: 100, Overlap: 100}},
		{"overlap exceeds chunk size", Config{ChunkSize: 100, Overlap: 150}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(doc, tt.cfg)
			if !errors.Is(err, domain.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSplit_EmptyDocument(t *testing.T) {
	chunks, err := Split(domain.Document{ID: "d1", Text: "   \n\n  "}, Config{ChunkSize: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty document, got %d", len(chunks))
	}
}

func TestSplit_SmallDocumentSingleChunk(t *testing.T) {
	doc := domain.Document{
		ID:   "d1",
		Text: "A credit card lets you borrow money up to a limit.",
		Tags: map[string]string{"topic": "credit"},
	}

	chunks, err := Split(doc, Config{ChunkSize: 500, Overlap: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != doc.Text {
		t.Fatalf("unexpected chunk text: %q", chunks[0].Text)
	}
	if chunks[0].DocumentID != "d1" || chunks[0].Position != 0 {
		t.Fatalf("unexpected chunk metadata: %+v", chunks[0])
	}
	if chunks[0].Tags["topic"] != "credit" {
		t.Fatal("expected chunk to inherit document tags")
	}
	if chunks[0].ID == "" {
		t.Fatal("expected generated chunk id")
	}
}

// Without overlap, concatenating chunk texts reconstructs the document
// word for word.
func TestSplit_ReconstructsDocument(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("Interest accrues on the unpaid balance every single day. ")
		if i%7 == 0 {
			b.WriteString("\n\n")
		}
	}
	doc := domain.Document{ID: "d1", Text: b.String()}

	cfg := Config{ChunkSize: 120, Overlap: 0}
	chunks, err := Split(doc, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	var parts []string
	for _, c := range chunks {
		if len(c.Text) > cfg.ChunkSize {
			t.Fatalf("chunk %d exceeds chunk size: %d bytes", c.Position, len(c.Text))
		}
		parts = append(parts, c.Text)
	}

	got := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	want := strings.Join(strings.Fields(doc.Text), " ")
	if got != want {
		t.Fatalf("reconstruction mismatch:\ngot  %q\nwant %q", got, want)
	}
}

// With overlap, each chunk after the first starts with the word suffix
// of its predecessor.
func TestSplit_OverlapCarriesTail(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("Budgeting means planning where money goes. ")
	}
	doc := domain.Document{ID: "d1", Text: b.String()}

	cfg := Config{ChunkSize: 150, Overlap: 30}
	chunks, err := Split(doc, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		carry := tailWords(chunks[i-1].Text, cfg.Overlap)
		if carry == "" {
			t.Fatalf("expected non-empty overlap carry from chunk %d", i-1)
		}
		if !strings.HasPrefix(chunks[i].Text, carry) {
			t.Fatalf("chunk %d does not start with overlap %q: %q", i, carry, chunks[i].Text)
		}
	}
}

func TestSplit_PositionsAreSequential(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("Savings accounts pay interest on deposits over time. ")
	}

	chunks, err := Split(domain.Document{ID: "d1", Text: b.String()}, Config{ChunkSize: 100, Overlap: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range chunks {
		if c.Position != i {
			t.Fatalf("expected position %d, got %d", i, c.Position)
		}
	}
}

// A single word longer than the chunk size stays whole.
func TestSplit_OversizedWordKeptWhole(t *testing.T) {
	long := strings.Repeat("x", 60)
	doc := domain.Document{ID: "d1", Text: "short words then " + long + " more words here."}

	chunks, err := Split(doc, Config{ChunkSize: 40, Overlap: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, c := range chunks {
		if strings.Contains(c.Text, long) {
			found = true
		}
	}
	if !found {
		t.Fatal("expected oversized word to survive chunking intact")
	}
}

func TestTailWords(t *testing.T) {
	tests := []struct {
		name string
		s    string
		n    int
		want string
	}{
		{"zero budget", "a b c", 0, ""},
		{"single word fits", "alpha beta", 4, "beta"},
		{"two words fit", "alpha beta gamma", 10, "beta gamma"},
		{"nothing fits", "alpha beta", 3, ""},
		{"whole string fits", "a b", 10, "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tailWords(tt.s, tt.n); got != tt.want {
				t.Fatalf("tailWords(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
			}
		})
	}
}
