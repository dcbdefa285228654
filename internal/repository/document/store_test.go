package document

import (
	"context"
	"errors"
	"testing"

	"github.com/lumenlearn/lumen/internal/db"
	"github.com/lumenlearn/lumen/internal/domain"
)

type mockKVStore struct {
	data  map[string][]byte
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte) error
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: map[string][]byte{}}
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	data, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

func (m *mockKVStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	m.data[key] = value
	return nil
}

func TestSaveGet_RoundTrip(t *testing.T) {
	ms := newMockKVStore()
	s := New(ms)
	ctx := context.Background()

	in := domain.Document{
		ID:        "d1",
		SourceURI: "s3://bucket/guide.md",
		Text:      "Full document text.",
		Tags:      map[string]string{"subject": "finance"},
	}
	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := s.Get(ctx, "d1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out.Text != in.Text || out.SourceURI != in.SourceURI {
		t.Errorf("document = %+v", out)
	}
	if out.Tags["subject"] != "finance" {
		t.Errorf("tags = %v", out.Tags)
	}

	if _, ok := ms.data[keyPrefix+"d1"]; !ok {
		t.Errorf("stored under wrong key: %v", ms.data)
	}
}

func TestSave_Overwrites(t *testing.T) {
	ms := newMockKVStore()
	s := New(ms)
	ctx := context.Background()

	if err := s.Save(ctx, domain.Document{ID: "d1", Text: "first"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, domain.Document{ID: "d1", Text: "second"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := s.Get(ctx, "d1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out.Text != "second" {
		t.Errorf("text = %q", out.Text)
	}
}

func TestGet_NotFoundPassthrough(t *testing.T) {
	s := New(newMockKVStore())

	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("err = %v, want ErrKeyNotFound", err)
	}
}

func TestGet_StoreErrorWrapped(t *testing.T) {
	boom := errors.New("store down")
	ms := newMockKVStore()
	ms.getFn = func(ctx context.Context, key string) ([]byte, error) {
		return nil, boom
	}
	s := New(ms)

	if _, err := s.Get(context.Background(), "d1"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestGet_CorruptPayload(t *testing.T) {
	ms := newMockKVStore()
	ms.data[keyPrefix+"d1"] = []byte("not json")
	s := New(ms)

	if _, err := s.Get(context.Background(), "d1"); err == nil {
		t.Fatal("expected an error for a corrupt record")
	}
}
