package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/agri-intel/farm-risk-analysis/internal/environment"
)

// SatelliteProvider implements environment.SatelliteProvider against a
// vegetation-analytics service that derives NDVI and a soil-moisture proxy
// from satellite imagery for a coordinate pair.
type SatelliteProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewSatelliteProvider(client *http.Client, baseURL, apiKey string) *SatelliteProvider {
	return &SatelliteProvider{
		name:    "satellite-analytics",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newBreaker("satellite"),
	}
}

func (p *SatelliteProvider) Name() string {
	return p.name
}

func (p *SatelliteProvider) Fetch(ctx context.Context, lat, lon float64) (environment.SatelliteObservation, error) {
	if p.baseURL == "" {
		return environment.SatelliteObservation{}, fmt.Errorf("satellite provider base url is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", lat))
		values.Set("lon", fmt.Sprintf("%f", lon))
		if p.apiKey != "" {
			values.Set("appid", p.apiKey)
		}

		u := fmt.Sprintf("%s/v1/vegetation?%s", p.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return environment.SatelliteObservation{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		NDVI         *float64 `json:"ndvi"`
		SoilMoisture *float64 `json:"soil_moisture"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return environment.SatelliteObservation{}, err
	}

	if payload.NDVI == nil && payload.SoilMoisture == nil {
		return environment.SatelliteObservation{}, fmt.Errorf("satellite payload contained no usable fields")
	}

	return environment.SatelliteObservation{
		NDVI:         payload.NDVI,
		SoilMoisture: payload.SoilMoisture,
	}, nil
}
