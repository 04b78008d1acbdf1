package store

import (
	"context"
	"sort"
	"sync"

	"github.com/abhijit1892/ragdemo/core"
)

// MemoryStore keeps runs in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]RunRecord
	seq  map[string]int
	next int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]RunRecord),
		seq:  make(map[string]int),
	}
}

func (s *MemoryStore) Add(_ context.Context, r RunRecord) error {
	r.Passages = core.ClonePassages(r.Passages)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = r
	s.next++
	s.seq[r.ID] = s.next
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return RunRecord{}, ErrNotFound
	}
	r.Passages = core.ClonePassages(r.Passages)
	return r, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]RunRecord, error) {
	s.mu.RLock()
	out := make([]RunRecord, 0, len(s.runs))
	for _, r := range s.runs {
		r.Passages = core.ClonePassages(r.Passages)
		out = append(out, r)
	}
	seq := make(map[string]int, len(s.seq))
	for k, v := range s.seq {
		seq[k] = v
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return seq[out[i].ID] > seq[out[j].ID]
	})

	limit = normalizeLimit(limit)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
	delete(s.seq, id)
	return nil
}

func (s *MemoryStore) Summary(_ context.Context) (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return summarize(s.runs), nil
}

func (s *MemoryStore) Close() error { return nil }

func summarize(runs map[string]RunRecord) Summary {
	var sum Summary
	var total int64
	for _, r := range runs {
		sum.TotalRuns++
		if r.Status == StatusError {
			sum.FailedRuns++
		}
		total += r.ElapsedMs
	}
	if sum.TotalRuns > 0 {
		sum.AvgLatencyMs = float64(total) / float64(sum.TotalRuns)
	}
	return sum
}
