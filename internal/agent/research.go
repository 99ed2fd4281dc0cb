package agent

import (
	"context"
	"encoding/json"
	"fmt"
)

// ResearchReport is the structured output of a research run.
type ResearchReport struct {
	Topic   string   `json:"topic"`
	Summary string   `json:"summary"`
	Sources []string `json:"sources"`
}

// Research runs a research query and returns a structured report. The
// completion is requested in JSON mode; if the model output still fails to
// parse, the raw text becomes the summary of a fallback report rather than
// an error.
func (a *ResearchAgent) Research(ctx context.Context, query string) (*ResearchReport, error) {
	results, err := a.retrieve(ctx, query, a.cfg.TopK)
	if err != nil {
		return nil, err
	}

	history := a.memory.Context(a.cfg.MemoryBudget)
	prompt := buildResearchPrompt(query, results, history)

	out, err := a.completion.Generate(ctx, prompt, a.options(true))
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}

	var report ResearchReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		a.logger.Warn("Report output was not valid JSON, using raw text", "error", err)
		report = ResearchReport{Topic: query, Summary: out}
	}
	if report.Topic == "" {
		report.Topic = query
	}
	if len(report.Sources) == 0 {
		for _, r := range results {
			report.Sources = append(report.Sources, r.Chunk.ID)
		}
	}

	a.remember(query, report.Summary)
	return &report, nil
}
