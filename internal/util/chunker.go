package util

import "strings"

// ChunkText splits text into overlapping chunks along sentence boundaries.
// Sentences accumulate into the current chunk until the next one would push
// its length past maxChunkSize; the following chunk is then seeded with the
// last overlap words of the closed chunk so context survives the boundary.
// A single sentence longer than maxChunkSize becomes its own chunk.
func ChunkText(text string, maxChunkSize, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 4000
	}
	if overlap < 0 {
		overlap = 0
	}
	sentences := SplitSentences(text)
	chunks := make([]string, 0, len(text)/maxChunkSize+1)
	current := ""
	for _, sentence := range sentences {
		if current == "" || len(current)+len(sentence) < maxChunkSize {
			current += sentence + " "
			continue
		}
		closed := strings.TrimSpace(current)
		chunks = append(chunks, closed)
		current = ""
		if overlap > 0 {
			if seed := LastWords(closed, overlap); seed != "" {
				current = seed + " "
			}
		}
		current += sentence + " "
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}

// LastWords returns the final n whitespace-separated words of s, or all of
// them when fewer than n exist.
func LastWords(s string, n int) string {
	words := strings.Fields(s)
	if n >= len(words) {
		return strings.Join(words, " ")
	}
	return strings.Join(words[len(words)-n:], " ")
}
