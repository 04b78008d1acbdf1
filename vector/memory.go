package vector

import (
	"context"
	"sort"
	"sync"
)

type memoryEntry struct {
	doc  Document
	norm float64
}

// MemoryStore is an in-memory vector store with brute-force cosine search.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]memoryEntry),
	}
}

// Upsert stores copies of docs, replacing existing ones by ID.
func (s *MemoryStore) Upsert(_ context.Context, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		doc.Embedding = append([]float64(nil), doc.Embedding...)
		s.docs[doc.ID] = memoryEntry{doc: doc, norm: Norm(doc.Embedding)}
	}
	return nil
}

// Search ranks every stored document against embedding. Ties are broken by
// ID so results are deterministic.
func (s *MemoryStore) Search(ctx context.Context, embedding []float64, topK int) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	qn := Norm(embedding)
	results := make([]SearchResult, 0, len(s.docs))
	for _, e := range s.docs {
		if len(e.doc.Embedding) == 0 {
			continue
		}
		results = append(results, SearchResult{
			Document: e.doc,
			Score:    cosineWithNorms(embedding, e.doc.Embedding, qn, e.norm),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.ID < results[j].Document.ID
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *MemoryStore) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.docs, id)
	}
	return nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
