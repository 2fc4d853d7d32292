package environment

import (
	"context"
)

// WeatherProvider abstracts a current-conditions weather source (e.g. OpenWeatherMap).
type WeatherProvider interface {
	Name() string
	Fetch(ctx context.Context, location string) (WeatherObservation, error)
}

// SatelliteProvider abstracts a vegetation/soil analytics source keyed by coordinates.
type SatelliteProvider interface {
	Name() string
	Fetch(ctx context.Context, lat, lon float64) (SatelliteObservation, error)
}

// Geocoder resolves a free-text farm location to coordinates for providers
// that cannot query by place name.
type Geocoder interface {
	Locate(ctx context.Context, location string) (lat, lon float64, err error)
}
