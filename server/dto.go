package server

import (
	"github.com/abhijit1892/ragdemo/core"
	"github.com/abhijit1892/ragdemo/server/store"
)

// ModelInfo describes a model the server can route to.
type ModelInfo struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Model   string  `json:"model"`
	APIBase *string `json:"api_base,omitempty"`
}

type (
	RunRecord = store.RunRecord
	Summary   = store.Summary
)

type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the run boundary: the question, the passages it was
// grounded on and the answer.
type AskResponse struct {
	ID                string         `json:"id"`
	Question          string         `json:"question"`
	RetrievedPassages []core.Passage `json:"retrieved_passages"`
	Answer            string         `json:"answer"`
	ElapsedMs         int64          `json:"elapsed_ms"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Node  string `json:"node,omitempty"`
	ID    string `json:"id,omitempty"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	IndexReady bool   `json:"index_ready"`
}

type HistoryListResponse struct {
	Runs []RunRecord `json:"runs"`
}
