package agent

import (
	"context"
	"encoding/json"
	"fmt"
)

// analyzeMaxChars bounds document content sent for analysis, using the
// rough estimate of 4 characters per token against a 16k token budget.
const analyzeMaxChars = 16000 * 4

// DocumentAnalysis contains LLM-generated analysis of a document.
type DocumentAnalysis struct {
	DocumentName string   `json:"document_name"`
	Summary      string   `json:"summary"`
	KeyPoints    []string `json:"key_points"`
	Entities     []string `json:"entities"`
	Sentiment    string   `json:"sentiment"`
}

// Analyze produces a structured analysis of document content: a summary,
// key points, named entities, and overall sentiment. Analysis does not
// touch the vector index or conversation memory.
func (a *ResearchAgent) Analyze(ctx context.Context, name, content string) (*DocumentAnalysis, error) {
	if len(content) > analyzeMaxChars {
		a.logger.Warn("Truncating document for analysis",
			"document", name, "from", len(content), "to", analyzeMaxChars)
		content = content[:analyzeMaxChars]
	}

	prompt := fmt.Sprintf(`Analyze this document and provide:
1. A concise summary (2-4 sentences) of its content
2. The key points as a short list
3. Named entities mentioned (people, organizations, places, indicators)
4. The overall sentiment (positive, negative, neutral, or mixed)

Document name: %s

Document content:
%s

Respond in JSON format:
{"document_name": "%s", "summary": "...", "key_points": ["..."], "entities": ["..."], "sentiment": "..."}`,
		name, content, name)

	out, err := a.completion.Generate(ctx, prompt, a.options(true))
	if err != nil {
		return nil, fmt.Errorf("generate analysis: %w", err)
	}

	var analysis DocumentAnalysis
	if err := json.Unmarshal([]byte(out), &analysis); err != nil {
		a.logger.Warn("Analysis output was not valid JSON, using raw text", "error", err)
		analysis = DocumentAnalysis{Summary: out}
	}
	if analysis.DocumentName == "" {
		analysis.DocumentName = name
	}
	return &analysis, nil
}
