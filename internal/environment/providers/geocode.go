package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/kelvins/geocoder"
)

// GoogleGeocoder resolves free-text farm locations to coordinates through the
// Google Maps geocoding API. Satellite lookups need lat/lon; weather lookups
// work by place name and never touch this path.
type GoogleGeocoder struct{}

// NewGoogleGeocoder configures the geocoder library with the given API key.
// The library holds the key as package state, so construct this once at startup.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{}
}

// Locate geocodes a "place" or "place, country" style location string.
// The underlying library does not accept a context and its HTTP client has no
// timeout, so the call runs in a goroutine and is abandoned once ctx expires;
// the satellite leg then degrades like any other provider failure.
func (g *GoogleGeocoder) Locate(ctx context.Context, location string) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	addr := geocoder.Address{City: location}
	if i := strings.LastIndex(location, ","); i > 0 {
		addr.City = strings.TrimSpace(location[:i])
		addr.Country = strings.TrimSpace(location[i+1:])
	}

	type result struct {
		lat, lon float64
		err      error
	}
	ch := make(chan result, 1)
	go func() {
		loc, err := geocoder.Geocoding(addr)
		if err != nil {
			ch <- result{err: fmt.Errorf("geocode %q: %w", location, err)}
			return
		}
		ch <- result{lat: loc.Latitude, lon: loc.Longitude}
	}()

	select {
	case r := <-ch:
		return r.lat, r.lon, r.err
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	}
}
