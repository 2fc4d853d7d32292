package analysis

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/agri-intel/farm-risk-analysis/internal/environment"
	"github.com/agri-intel/farm-risk-analysis/internal/precedent"
	"github.com/agri-intel/farm-risk-analysis/internal/synthesis"
)

// EnvironmentFetcher is the contract the environmental data fetcher satisfies.
type EnvironmentFetcher interface {
	Fetch(ctx context.Context, location string) (environment.Snapshot, error)
}

// PrecedentRetriever is the contract the vector-search retriever satisfies.
// It never fails; degradation manifests as an empty sequence.
type PrecedentRetriever interface {
	Retrieve(ctx context.Context, cropType string, snap environment.Snapshot) []precedent.Precedent
}

// Synthesizer is the contract the language-model synthesis step satisfies.
type Synthesizer interface {
	Synthesize(ctx context.Context, snap environment.Snapshot, precedents []precedent.Precedent, cropType string) (synthesis.Report, error)
}

// Service coordinates one analysis request through the pipeline states. It is
// stateless between requests; every run gets its own state tracker.
type Service struct {
	fetcher     EnvironmentFetcher
	retriever   PrecedentRetriever
	synthesizer Synthesizer
	deadline    time.Duration
}

func NewService(fetcher EnvironmentFetcher, retriever PrecedentRetriever, synthesizer Synthesizer, deadline time.Duration) *Service {
	return &Service{
		fetcher:     fetcher,
		retriever:   retriever,
		synthesizer: synthesizer,
		deadline:    deadline,
	}
}

// run tracks the pipeline state for a single request.
type run struct {
	state State
}

func (r *run) to(next State) {
	log.Printf("analysis pipeline: %s -> %s", r.state, next)
	r.state = next
}

func (r *run) fail() {
	log.Printf("analysis pipeline failed in state %s", r.state)
	r.to(StateFailed)
}

// RunAnalysis validates the request, gathers environmental data and
// precedents under the overall deadline, and synthesizes the report.
// Fetcher and retriever failures degrade; only validation, an elapsed
// deadline before synthesis, and synthesis failure are fatal.
func (s *Service) RunAnalysis(ctx context.Context, req AnalysisRequest) (synthesis.Report, error) {
	r := &run{state: StateIdle}

	// Validation failures never leave Idle; the pipeline has not started and
	// no side effect has occurred.
	if err := req.Validate(); err != nil {
		return synthesis.Report{}, err
	}

	location := strings.TrimSpace(req.FarmLocation)
	cropType := strings.TrimSpace(req.CropType)

	ctx, cancel := context.WithTimeout(ctx, s.deadline)
	defer cancel()

	r.to(StateFetchingEnvironment)
	snap, err := s.fetcher.Fetch(ctx, location)
	if err != nil {
		// The fetcher only errors on a malformed location, which validation
		// has already excluded; treat a surprise here as validation anyway.
		r.fail()
		return synthesis.Report{}, NewError(KindValidation, "invalid farm location", err)
	}
	if snap.Empty() {
		log.Printf("no environmental data for %q; retrieval falls back to crop-type-only query", location)
	}

	r.to(StateRetrievingPrecedents)
	precedents := s.retriever.Retrieve(ctx, cropType, snap)

	// Deadline gone before synthesis started: abort rather than burn the
	// model call budget on a request the caller has already lost.
	if ctx.Err() != nil {
		r.fail()
		return synthesis.Report{}, NewError(KindUpstreamTimeout, "request deadline elapsed before synthesis", ctx.Err())
	}

	r.to(StateSynthesizing)
	report, err := s.synthesizer.Synthesize(ctx, snap, precedents, cropType)
	if err != nil {
		r.fail()
		return synthesis.Report{}, NewError(KindSynthesis, "analysis synthesis failed", err)
	}

	r.to(StateComplete)
	return report, nil
}
