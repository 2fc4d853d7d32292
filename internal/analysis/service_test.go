package analysis

import (
	"bytes"
	"context"
	"errors"
	"log"
	"math"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agri-intel/farm-risk-analysis/internal/environment"
	"github.com/agri-intel/farm-risk-analysis/internal/precedent"
	"github.com/agri-intel/farm-risk-analysis/internal/synthesis"
)

// fakeWeather and fakeSatellite stand in for the outbound providers so the
// orchestrator tests exercise the real fetcher, retriever, and synthesizer.
type fakeWeather struct {
	calls int32
	fail  bool
}

func (f *fakeWeather) Name() string { return "fake-weather" }

func (f *fakeWeather) Fetch(ctx context.Context, location string) (environment.WeatherObservation, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.fail {
		return environment.WeatherObservation{}, errors.New("weather upstream unavailable")
	}
	temp, precip, hum, wind := 24.5, 1.2, 78.0, 3.4
	return environment.WeatherObservation{
		TemperatureC: &temp,
		PrecipMM:     &precip,
		HumidityPct:  &hum,
		WindSpeedMS:  &wind,
		Condition:    environment.ConditionCloudy,
	}, nil
}

type fakeSatellite struct {
	calls int32
	fail  bool
}

func (f *fakeSatellite) Name() string { return "fake-satellite" }

func (f *fakeSatellite) Fetch(ctx context.Context, lat, lon float64) (environment.SatelliteObservation, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.fail {
		return environment.SatelliteObservation{}, errors.New("satellite upstream unavailable")
	}
	ndvi, moisture := 0.61, 0.27
	return environment.SatelliteObservation{NDVI: &ndvi, SoilMoisture: &moisture}, nil
}

type fakeGeocoder struct{ calls int32 }

func (f *fakeGeocoder) Locate(ctx context.Context, location string) (float64, float64, error) {
	atomic.AddInt32(&f.calls, 1)
	return -33.93, 18.86, nil
}

// fakeEmbedder returns a fixed unit vector so stored precedents can be placed
// at exact similarities.
type fakeEmbedder struct {
	calls int32
	fail  bool
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.fail {
		return nil, errors.New("embeddings unavailable")
	}
	return []float32{1, 0, 0}, nil
}

// embeddingWithSimilarity builds a unit vector whose cosine against {1,0,0}
// is sim.
func embeddingWithSimilarity(sim float64) []float32 {
	other := float32(0)
	if sim < 1 {
		other = float32(math.Sqrt(1 - sim*sim))
	}
	return []float32{float32(sim), other, 0}
}

type fakeLLM struct {
	calls    int32
	failures int32 // fail the first N calls
	output   string
}

func (f *fakeLLM) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	n := atomic.AddInt32(&f.calls, 1)
	if n <= atomic.LoadInt32(&f.failures) {
		return "", errors.New("model overloaded")
	}
	return f.output, nil
}

type pipeline struct {
	weather   *fakeWeather
	satellite *fakeSatellite
	geocoder  *fakeGeocoder
	embedder  *fakeEmbedder
	store     *precedent.MemoryStore
	llm       *fakeLLM
	service   *Service
}

func newPipeline(deadline time.Duration) *pipeline {
	p := &pipeline{
		weather:   &fakeWeather{},
		satellite: &fakeSatellite{},
		geocoder:  &fakeGeocoder{},
		embedder:  &fakeEmbedder{},
		store:     precedent.NewMemoryStore(),
		llm: &fakeLLM{output: "Risk Assessment:\n" +
			"Elevated downy mildew risk for Chenin Blanc Grapes under high humidity.\n\n" +
			"Recommended Actions:\n- Apply preventative fungicide within 48 hours.\n- Monitor canopy humidity daily."},
	}

	fetcher := environment.NewFetcher(p.weather, p.satellite, p.geocoder)
	retriever := precedent.NewRetriever(p.embedder, p.store, 5, 0.2)
	synthesizer := synthesis.NewSynthesizer(p.llm, time.Second)
	p.service = NewService(fetcher, retriever, synthesizer, deadline)
	return p
}

func (p *pipeline) addPrecedent(crop string, sim float64, narrative string) {
	p.store.Add(precedent.Precedent{
		CropType:         crop,
		Embedding:        embeddingWithSimilarity(sim),
		OutcomeNarrative: narrative,
	})
}

func TestRunAnalysisValidation(t *testing.T) {
	cases := []AnalysisRequest{
		{FarmLocation: "", CropType: "Chenin Blanc Grapes"},
		{FarmLocation: "Stellenbosch", CropType: ""},
		{FarmLocation: "   ", CropType: "Chenin Blanc Grapes"},
		{FarmLocation: "Stellenbosch", CropType: "\t\n"},
	}

	for _, req := range cases {
		p := newPipeline(5 * time.Second)

		_, err := p.service.RunAnalysis(context.Background(), req)
		if KindOf(err) != KindValidation {
			t.Fatalf("request %+v: expected validation error, got %v", req, err)
		}

		calls := atomic.LoadInt32(&p.weather.calls) + atomic.LoadInt32(&p.satellite.calls) +
			atomic.LoadInt32(&p.geocoder.calls) + atomic.LoadInt32(&p.embedder.calls) + atomic.LoadInt32(&p.llm.calls)
		if calls != 0 {
			t.Fatalf("request %+v: expected zero collaborator calls, got %d", req, calls)
		}
	}
}

func TestRunAnalysisHappyPath(t *testing.T) {
	p := newPipeline(5 * time.Second)
	p.addPrecedent("Chenin Blanc Grapes", 0.92, "A similar weather pattern in 2019 led to a downy mildew outbreak.")

	report, err := p.service.RunAnalysis(context.Background(), AnalysisRequest{
		FarmLocation: "Stellenbosch",
		CropType:     "Chenin Blanc Grapes",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Degraded {
		t.Fatal("expected non-degraded report when all upstreams are healthy")
	}
	if report.Summary == "" || !strings.Contains(report.Summary, "Chenin Blanc") {
		t.Fatalf("expected summary referencing the crop type, got %q", report.Summary)
	}
	for _, src := range []synthesis.DataSource{synthesis.DataSourceWeather, synthesis.DataSourceSatellite, synthesis.DataSourcePrecedents} {
		if !report.UsedSource(src) {
			t.Fatalf("expected data source %q to be used, got %v", src, report.DataSourcesUsed)
		}
	}
	if len(report.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %v", report.Recommendations)
	}
}

func TestRunAnalysisLogsStateTransitions(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	p := newPipeline(5 * time.Second)
	p.addPrecedent("Chenin Blanc Grapes", 0.92, "2019 downy mildew outbreak.")

	if _, err := p.service.RunAnalysis(context.Background(), AnalysisRequest{
		FarmLocation: "Stellenbosch",
		CropType:     "Chenin Blanc Grapes",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logged := buf.String()
	for _, want := range []string{
		"idle -> fetching_environment",
		"fetching_environment -> retrieving_precedents",
		"retrieving_precedents -> synthesizing",
		"synthesizing -> complete",
	} {
		if !strings.Contains(logged, want) {
			t.Fatalf("expected transition %q in log, got:\n%s", want, logged)
		}
	}
}

func TestRunAnalysisBothEnvironmentalFetchesFail(t *testing.T) {
	p := newPipeline(5 * time.Second)
	p.weather.fail = true
	p.satellite.fail = true
	p.addPrecedent("Chenin Blanc Grapes", 0.92, "2019 downy mildew outbreak after humid spell.")

	report, err := p.service.RunAnalysis(context.Background(), AnalysisRequest{
		FarmLocation: "Stellenbosch",
		CropType:     "Chenin Blanc Grapes",
	})
	if err != nil {
		t.Fatalf("expected degraded report, got error: %v", err)
	}

	if !report.Degraded {
		t.Fatal("expected degraded=true when weather and satellite both fail")
	}
	if report.UsedSource(synthesis.DataSourceWeather) || report.UsedSource(synthesis.DataSourceSatellite) {
		t.Fatalf("expected weather and satellite excluded from sources, got %v", report.DataSourcesUsed)
	}
	if !report.UsedSource(synthesis.DataSourcePrecedents) {
		t.Fatal("expected synthesis to proceed on precedents alone")
	}
}

func TestRunAnalysisNoPrecedents(t *testing.T) {
	p := newPipeline(5 * time.Second)

	report, err := p.service.RunAnalysis(context.Background(), AnalysisRequest{
		FarmLocation: "Stellenbosch",
		CropType:     "Chenin Blanc Grapes",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !report.Degraded {
		t.Fatal("expected degraded=true with an empty precedent store")
	}
	if report.UsedSource(synthesis.DataSourcePrecedents) {
		t.Fatalf("expected precedents excluded from sources, got %v", report.DataSourcesUsed)
	}
	if !report.UsedSource(synthesis.DataSourceWeather) || !report.UsedSource(synthesis.DataSourceSatellite) {
		t.Fatalf("expected environmental sources retained, got %v", report.DataSourcesUsed)
	}
}

func TestRunAnalysisSynthesisFailureIsFatal(t *testing.T) {
	p := newPipeline(5 * time.Second)
	p.llm.failures = 100
	p.addPrecedent("Chenin Blanc Grapes", 0.92, "2019 downy mildew outbreak.")

	_, err := p.service.RunAnalysis(context.Background(), AnalysisRequest{
		FarmLocation: "Stellenbosch",
		CropType:     "Chenin Blanc Grapes",
	})
	if KindOf(err) != KindSynthesis {
		t.Fatalf("expected synthesis error, got %v", err)
	}
	if got := atomic.LoadInt32(&p.llm.calls); got != 2 {
		t.Fatalf("expected exactly 2 completion attempts (initial + retry), got %d", got)
	}
}

// slowRetriever burns the request deadline before synthesis can start.
type slowRetriever struct{}

func (slowRetriever) Retrieve(ctx context.Context, cropType string, snap environment.Snapshot) []precedent.Precedent {
	<-ctx.Done()
	return nil
}

func TestRunAnalysisDeadlineBeforeSynthesis(t *testing.T) {
	p := newPipeline(50 * time.Millisecond)
	service := NewService(
		environment.NewFetcher(p.weather, p.satellite, p.geocoder),
		slowRetriever{},
		synthesis.NewSynthesizer(p.llm, time.Second),
		50*time.Millisecond,
	)

	start := time.Now()
	_, err := service.RunAnalysis(context.Background(), AnalysisRequest{
		FarmLocation: "Stellenbosch",
		CropType:     "Chenin Blanc Grapes",
	})
	if KindOf(err) != KindUpstreamTimeout {
		t.Fatalf("expected upstream timeout error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("run did not terminate promptly after deadline: %v", elapsed)
	}
	if got := atomic.LoadInt32(&p.llm.calls); got != 0 {
		t.Fatalf("expected no completion attempts after deadline, got %d", got)
	}
}
