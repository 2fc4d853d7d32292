package environment

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"
)

// ErrEmptyLocation is returned before any network attempt when the location
// argument is blank.
var ErrEmptyLocation = errors.New("location must not be empty")

// Fetcher assembles one environmental snapshot per request from independent
// weather and satellite sources. Provider failure is never propagated; the
// affected snapshot fields are simply left absent.
type Fetcher struct {
	weather   WeatherProvider
	satellite SatelliteProvider
	geocoder  Geocoder
}

// NewFetcher creates a Fetcher. Any collaborator may be nil, in which case the
// corresponding snapshot fields are always absent.
func NewFetcher(weather WeatherProvider, satellite SatelliteProvider, geocoder Geocoder) *Fetcher {
	return &Fetcher{
		weather:   weather,
		satellite: satellite,
		geocoder:  geocoder,
	}
}

// Fetch runs the weather and satellite sub-fetches concurrently and merges the
// successful readings into a Snapshot. The only error it returns is
// ErrEmptyLocation for a blank location, raised before any network call.
func (f *Fetcher) Fetch(ctx context.Context, location string) (Snapshot, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return Snapshot{}, ErrEmptyLocation
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		weather *WeatherObservation
		sat     *SatelliteObservation
	)

	if f.weather != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()

			obs, err := f.weather.Fetch(ctx, location)
			if err != nil {
				// Log and continue; we want partial success when possible.
				log.Printf("weather provider %s failed for %q: %v", f.weather.Name(), location, err)
				return
			}

			mu.Lock()
			weather = &obs
			mu.Unlock()
		}()
	}

	if f.satellite != nil && f.geocoder != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()

			lat, lon, err := f.geocoder.Locate(ctx, location)
			if err != nil {
				log.Printf("geocoding failed for %q, skipping satellite fetch: %v", location, err)
				return
			}

			obs, err := f.satellite.Fetch(ctx, lat, lon)
			if err != nil {
				log.Printf("satellite provider %s failed for %q: %v", f.satellite.Name(), location, err)
				return
			}

			mu.Lock()
			sat = &obs
			mu.Unlock()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	// A sub-call still pending when the request deadline expires is abandoned
	// and its fields reported absent, same as a provider failure.
	select {
	case <-done:
	case <-ctx.Done():
		log.Printf("environment fetch for %q cut short: %v", location, ctx.Err())
	}

	mu.Lock()
	defer mu.Unlock()
	return Snapshot{
		Location:   location,
		ObservedAt: time.Now().UTC(),
		Weather:    weather,
		Satellite:  sat,
		Missing:    missingFields(weather, sat),
	}, nil
}
