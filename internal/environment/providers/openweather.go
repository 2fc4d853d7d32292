package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/agri-intel/farm-risk-analysis/internal/environment"
)

// OpenWeatherProvider implements environment.WeatherProvider for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newBreaker("openweather"),
	}
}

// WithBaseURL overrides the API endpoint; used by tests.
func (p *OpenWeatherProvider) WithBaseURL(u string) *OpenWeatherProvider {
	p.baseURL = u
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, location string) (environment.WeatherObservation, error) {
	if p.apiKey == "" {
		return environment.WeatherObservation{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		values.Set("q", location)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return environment.WeatherObservation{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Main struct {
			Temp     *float64 `json:"temp"`
			Humidity *float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed *float64 `json:"speed"`
		} `json:"wind"`
		Rain struct {
			OneH   *float64 `json:"1h"`
			ThreeH *float64 `json:"3h"`
		} `json:"rain"`
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return environment.WeatherObservation{}, err
	}

	// OpenWeather omits the rain block entirely in dry conditions; treat that
	// as zero precipitation rather than an unknown field.
	precip := payload.Rain.OneH
	if precip == nil {
		precip = payload.Rain.ThreeH
	}
	if precip == nil {
		zero := 0.0
		precip = &zero
	}

	return environment.WeatherObservation{
		TemperatureC: payload.Main.Temp,
		PrecipMM:     precip,
		HumidityPct:  payload.Main.Humidity,
		WindSpeedMS:  payload.Wind.Speed,
		Condition:    mapOpenWeatherCondition(payload.Weather),
	}, nil
}

func mapOpenWeatherCondition(items []struct {
	Main string `json:"main"`
}) environment.Condition {
	if len(items) == 0 {
		return environment.ConditionUnknown
	}
	switch items[0].Main {
	case "Clear":
		return environment.ConditionClear
	case "Clouds":
		return environment.ConditionCloudy
	case "Rain", "Drizzle":
		return environment.ConditionRain
	case "Snow":
		return environment.ConditionSnow
	case "Thunderstorm":
		return environment.ConditionStorm
	default:
		return environment.ConditionUnknown
	}
}
