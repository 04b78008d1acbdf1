package engine

import (
	"fmt"
	"strings"

	"github.com/abhijit1892/ragdemo/core"
)

const (
	// MaxContextPassages caps how many retrieved passages reach the prompt.
	MaxContextPassages = 6

	EmptyContext = "No retrieved context available."
	Disclaimer   = "I don't know based on the provided documents."
	NoAnswer     = "No answer generated"

	GenerateMaxTokens   = 1500
	GenerateTemperature = 0.2
)

// DefaultSystemPrompt is the legal-assistant instruction sent with every question.
const DefaultSystemPrompt = "You are a helpful legal assistant for the Indian Constitution.\n" +
	"You will be given excerpts from the Constitution and amendments.\n" +
	"Answer the user's question in clear, natural language, as if explaining to a student or lawyer.\n" +
	"Do not just copy raw text. Explain its meaning, background, and implications.\n" +
	"When relevant, cite the Article or Amendment number, and indicate the supporting source numbers in square brackets.\n" +
	"If you cannot find the answer in the sources, say '" + Disclaimer + "'\n"

var flatten = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// BuildContext renders passages as numbered excerpts:
//
//	[1] constitution.txt: Article 15 ...
//
// separated by blank lines. Only the first MaxContextPassages are used.
func BuildContext(passages []core.Passage) string {
	n := min(len(passages), MaxContextPassages)
	if n == 0 {
		return EmptyContext
	}
	parts := make([]string, n)
	for i, p := range passages[:n] {
		label := p.SourceLabel
		if label == "" {
			label = fmt.Sprintf("doc_%d", i+1)
		}
		parts[i] = fmt.Sprintf("[%d] %s: %s", i+1, label, flatten.Replace(strings.TrimSpace(p.Text)))
	}
	return strings.Join(parts, "\n\n")
}

// BuildUserPrompt wraps the context and question in the answer request.
func BuildUserPrompt(question string, passages []core.Passage) string {
	return fmt.Sprintf("Context from retrieved documents:\n%s\n\nQuestion: %s\n\nAnswer in detail, with explanation and citations:",
		BuildContext(passages), question)
}

// BuildMessages returns the system and user messages for one question.
// An empty system falls back to DefaultSystemPrompt.
func BuildMessages(question string, passages []core.Passage, system string) []core.Message {
	if strings.TrimSpace(system) == "" {
		system = DefaultSystemPrompt
	}
	return []core.Message{
		core.NewSystemMessage(system),
		core.NewUserMessage(BuildUserPrompt(question, passages)),
	}
}
