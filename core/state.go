package core

// State is the value carried between pipeline stages. Stages never modify a
// State they receive; the With methods return fresh copies.
type State struct {
	Question          string    `json:"question"`
	RetrievedPassages []Passage `json:"retrieved_passages"`
	Answer            string    `json:"answer"`
}

func NewState(question string) State {
	return State{Question: question}
}

func (s State) WithPassages(p []Passage) State {
	return State{
		Question:          s.Question,
		RetrievedPassages: ClonePassages(p),
		Answer:            s.Answer,
	}
}

func (s State) WithAnswer(answer string) State {
	return State{
		Question:          s.Question,
		RetrievedPassages: ClonePassages(s.RetrievedPassages),
		Answer:            answer,
	}
}

func (s State) Clone() State {
	return s.WithPassages(s.RetrievedPassages)
}
