// Package ingest turns raw sources into chunk records for index building.
package ingest

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/abhijit1892/ragdemo/core"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
)

// Chunker splits text into windows of at most Size characters that break
// on whitespace, each starting with up to Overlap characters of the
// previous window. A single word longer than Size becomes its own chunk.
type Chunker struct {
	Size    int
	Overlap int
}

func NewChunker(size, overlap int) Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return Chunker{Size: size, Overlap: overlap}
}

// Split returns the chunk texts of text.
func (c Chunker) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	lens := make([]int, len(words))
	for i, w := range words {
		lens[i] = utf8.RuneCountInString(w)
	}

	var chunks []string
	for i := 0; i < len(words); {
		j, length := i, 0
		for j < len(words) && (length == 0 || length+1+lens[j] <= c.Size) {
			if length > 0 {
				length++
			}
			length += lens[j]
			j++
		}
		chunks = append(chunks, strings.Join(words[i:j], " "))
		if j == len(words) {
			break
		}

		k, carried := j, 0
		for k-1 > i && carried+lens[k-1]+1 <= c.Overlap {
			k--
			carried += lens[k] + 1
		}
		i = k
	}
	return chunks
}

// Chunk splits text into documents labelled with source. IDs take the
// form "<source>#<n>".
func (c Chunker) Chunk(source, text string) []core.Document {
	parts := c.Split(text)
	docs := make([]core.Document, len(parts))
	for n, p := range parts {
		docs[n] = core.Document{
			ID:     source + "#" + strconv.Itoa(n),
			Text:   p,
			Source: source,
		}
	}
	return docs
}
