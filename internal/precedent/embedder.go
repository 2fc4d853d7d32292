package precedent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/agri-intel/farm-risk-analysis/internal/environment"
)

// Embedder converts text into a fixed-dimension numeric vector. The same
// embedder must be used at indexing and query time so distances are comparable.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingText renders the crop type plus whatever environmental fields are
// present into the canonical text fed to the embedder. The rendering is
// deterministic: fixed field order, fixed precision, absent fields omitted.
// An empty snapshot degrades to a crop-type-only query.
func EmbeddingText(cropType string, snap environment.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "crop: %s", strings.ToLower(strings.TrimSpace(cropType)))

	if w := snap.Weather; w != nil {
		if w.TemperatureC != nil {
			fmt.Fprintf(&b, "; temperature_c: %.1f", *w.TemperatureC)
		}
		if w.PrecipMM != nil {
			fmt.Fprintf(&b, "; precip_mm: %.1f", *w.PrecipMM)
		}
		if w.HumidityPct != nil {
			fmt.Fprintf(&b, "; humidity_pct: %.0f", *w.HumidityPct)
		}
		if w.WindSpeedMS != nil {
			fmt.Fprintf(&b, "; wind_ms: %.1f", *w.WindSpeedMS)
		}
		if w.Condition != "" && w.Condition != environment.ConditionUnknown {
			fmt.Fprintf(&b, "; condition: %s", w.Condition)
		}
	}

	if s := snap.Satellite; s != nil {
		if s.NDVI != nil {
			fmt.Fprintf(&b, "; ndvi: %.2f", *s.NDVI)
		}
		if s.SoilMoisture != nil {
			fmt.Fprintf(&b, "; soil_moisture: %.2f", *s.SoilMoisture)
		}
	}

	return b.String()
}

// OpenAIEmbedder calls the OpenAI embeddings endpoint.
type OpenAIEmbedder struct {
	client   *http.Client
	apiKey   string
	endpoint string
	model    string
}

func NewOpenAIEmbedder(client *http.Client, apiKey, endpoint, model string) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client:   client,
		apiKey:   apiKey,
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(map[string]any{
		"model": e.model,
		"input": text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embeddings request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/v1/embeddings", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("build embeddings request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embeddings call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embeddings API error (status %d): %s", resp.StatusCode, string(data))
	}

	var payload struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode embeddings response: %w", err)
	}
	if len(payload.Data) == 0 || len(payload.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embeddings response contained no vector")
	}

	return payload.Data[0].Embedding, nil
}
