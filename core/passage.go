package core

// Passage is one retrieved chunk. Its rank is its position in the result slice.
type Passage struct {
	Text        string  `json:"text"`
	SourceLabel string  `json:"source_label"`
	Score       float64 `json:"score"`
}

// Document is an already-chunked text record handed to index construction.
type Document struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

func ClonePassages(p []Passage) []Passage {
	if p == nil {
		return nil
	}
	out := make([]Passage, len(p))
	copy(out, p)
	return out
}
