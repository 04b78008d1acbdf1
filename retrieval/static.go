package retrieval

import (
	"context"
	"sort"

	"github.com/abhijit1892/ragdemo/core"
)

// Static returns a fixed passage set, ranked by score, for every query.
type Static struct {
	passages []core.Passage
	topK     int
}

func NewStatic(passages []core.Passage, topK int) *Static {
	if topK <= 0 {
		topK = DefaultTopK
	}
	ranked := core.ClonePassages(passages)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return &Static{passages: ranked, topK: topK}
}

func (s *Static) Search(_ context.Context, query string) ([]core.Passage, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	n := min(len(s.passages), s.topK)
	return core.ClonePassages(s.passages[:n]), nil
}
