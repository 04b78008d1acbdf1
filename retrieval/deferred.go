package retrieval

import (
	"context"
	"sync/atomic"

	"github.com/abhijit1892/ragdemo/core"
)

// Deferred serves searches from an index that is installed later, so a
// server can accept requests while the corpus is still being embedded.
type Deferred struct {
	idx atomic.Pointer[Index]
}

func NewDeferred() *Deferred {
	return &Deferred{}
}

// Set installs idx. Later calls replace the previous index.
func (d *Deferred) Set(idx *Index) {
	d.idx.Store(idx)
}

func (d *Deferred) Ready() bool {
	return d.idx.Load().Ready()
}

// Index returns the installed index or nil.
func (d *Deferred) Index() *Index {
	return d.idx.Load()
}

func (d *Deferred) Search(ctx context.Context, query string) ([]core.Passage, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	idx := d.idx.Load()
	if !idx.Ready() {
		return nil, core.ErrIndexNotReady
	}
	return idx.Search(ctx, query)
}
