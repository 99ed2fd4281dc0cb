package agent

import (
	"fmt"
	"strings"

	"github.com/gillopy/economics-agent/internal/index"
	"github.com/gillopy/economics-agent/internal/memory"
)

// buildAnswerPrompt composes the retrieved passages, prior conversation
// turns, and the new query into a single prompt.
func buildAnswerPrompt(query string, results []index.Result, history []memory.Turn) string {
	var b strings.Builder

	b.WriteString("You are a research assistant. Answer the question using the retrieved passages below when they are relevant, and refer to passages by their source id.\n")
	if len(results) == 0 {
		b.WriteString("No passages were retrieved for this question; answer from the conversation so far.\n")
	}

	writePassages(&b, results)
	writeHistory(&b, history)

	b.WriteString("\nQuestion: ")
	b.WriteString(query)
	b.WriteString("\n")
	return b.String()
}

// buildResearchPrompt asks for a structured report on the query, grounded
// in the retrieved passages.
func buildResearchPrompt(query string, results []index.Result, history []memory.Turn) string {
	var b strings.Builder

	b.WriteString("You are a research assistant generating a research report. Ground the report in the retrieved passages below and cite their source ids.\n")

	writePassages(&b, results)
	writeHistory(&b, history)

	b.WriteString("\nResearch query: ")
	b.WriteString(query)
	b.WriteString("\n\nRespond in JSON format:\n")
	b.WriteString(`{"topic": "Short topic title", "summary": "The report body", "sources": ["source ids used"]}`)
	b.WriteString("\n")
	return b.String()
}

func writePassages(b *strings.Builder, results []index.Result) {
	if len(results) == 0 {
		return
	}
	b.WriteString("\nRetrieved passages:\n")
	for i, r := range results {
		fmt.Fprintf(b, "%d. [source: %s | score: %.3f]\n<<<\n%s\n>>>\n", i+1, r.Chunk.ID, r.Score, r.Chunk.Text)
	}
}

func writeHistory(b *strings.Builder, history []memory.Turn) {
	if len(history) == 0 {
		return
	}
	b.WriteString("\nConversation so far:\n")
	for _, turn := range history {
		fmt.Fprintf(b, "%s: %s\n", turn.Role, turn.Text)
	}
}
