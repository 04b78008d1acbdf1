// Package retrieval answers a question with the most relevant indexed passages.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhijit1892/ragdemo/core"
)

// DefaultTopK is the number of passages returned when no bound is configured.
const DefaultTopK = 4

// Retriever returns at most top_k passages ordered most relevant first.
// An empty result is valid. Blank queries fail with core.ErrInvalidQuery
// and an unusable index with core.ErrIndexNotReady.
type Retriever interface {
	Search(ctx context.Context, query string) ([]core.Passage, error)
}

func validateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query is empty", core.ErrInvalidQuery)
	}
	return nil
}

// keep reports whether a hit clears the relevance threshold.
func keep(score, minScore float64) bool {
	return score > 0 && score >= minScore
}
