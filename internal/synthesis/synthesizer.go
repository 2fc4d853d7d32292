package synthesis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/agri-intel/farm-risk-analysis/internal/environment"
	"github.com/agri-intel/farm-risk-analysis/internal/precedent"
)

// Synthesizer turns the gathered snapshot and precedents into a structured
// report via one language-model completion. Unlike the fetcher and retriever,
// its failure is fatal: there is no meaningful report without synthesis.
type Synthesizer struct {
	llm     LLMClient
	timeout time.Duration
}

func NewSynthesizer(llm LLMClient, timeout time.Duration) *Synthesizer {
	return &Synthesizer{
		llm:     llm,
		timeout: timeout,
	}
}

// Synthesize builds the versioned prompt, invokes the model with a fixed
// per-call timeout and a single retry, and parses the completion. The
// returned error wraps the last provider failure when both attempts fail.
func (s *Synthesizer) Synthesize(ctx context.Context, snap environment.Snapshot, precedents []precedent.Precedent, cropType string) (Report, error) {
	prompt := buildPrompt(cropType, snap, precedents)

	var (
		content string
		err     error
	)
	for attempt := 0; attempt < 2; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		content, err = s.llm.Complete(callCtx, systemPrompt, prompt)
		cancel()
		if err == nil {
			break
		}
		log.Printf("synthesis attempt %d failed: %v", attempt+1, err)

		// The overall request deadline is gone; a retry cannot succeed.
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}
	}
	if err != nil {
		return Report{}, fmt.Errorf("language model completion failed after retry: %w", err)
	}

	summary, recommendations := parseCompletion(content)

	return Report{
		Summary:         summary,
		Recommendations: recommendations,
		DataSourcesUsed: contributingSources(snap, precedents),
		Degraded:        snap.Weather == nil || snap.Satellite == nil || len(precedents) == 0,
	}, nil
}

// contributingSources names the upstreams that actually supplied data.
func contributingSources(snap environment.Snapshot, precedents []precedent.Precedent) []DataSource {
	var sources []DataSource
	if snap.Weather != nil {
		sources = append(sources, DataSourceWeather)
	}
	if snap.Satellite != nil {
		sources = append(sources, DataSourceSatellite)
	}
	if len(precedents) > 0 {
		sources = append(sources, DataSourcePrecedents)
	}
	return sources
}
