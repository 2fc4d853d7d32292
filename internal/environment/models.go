package environment

import (
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
)

// Field names a single snapshot sub-field for completeness tracking.
type Field string

const (
	FieldTemperature     Field = "weather.temperature"
	FieldPrecipitation   Field = "weather.precipitation"
	FieldHumidity        Field = "weather.humidity"
	FieldWind            Field = "weather.wind"
	FieldVegetationIndex Field = "satellite.vegetation_index"
	FieldSoilMoisture    Field = "satellite.soil_moisture"
)

// WeatherObservation holds the normalized current-conditions reading for a
// location. Fields are pointers because individual providers may omit them.
type WeatherObservation struct {
	TemperatureC *float64  `json:"temperatureC,omitempty"`
	PrecipMM     *float64  `json:"precipMm,omitempty"`
	HumidityPct  *float64  `json:"humidityPercent,omitempty"`
	WindSpeedMS  *float64  `json:"windSpeedMs,omitempty"`
	Condition    Condition `json:"condition,omitempty"`
}

// SatelliteObservation holds the normalized vegetation reading for a location.
type SatelliteObservation struct {
	NDVI         *float64 `json:"ndvi,omitempty"`
	SoilMoisture *float64 `json:"soilMoisture,omitempty"`
}

// Snapshot is the per-request environmental view assembled by the Fetcher.
// Weather and Satellite are nil when the corresponding provider failed;
// Missing enumerates every absent sub-field so downstream consumers never
// have to guess at coverage.
type Snapshot struct {
	Location   string                `json:"location"`
	ObservedAt time.Time             `json:"observedAt"` // always UTC
	Weather    *WeatherObservation   `json:"weather,omitempty"`
	Satellite  *SatelliteObservation `json:"satellite,omitempty"`
	Missing    []Field               `json:"missing,omitempty"`
}

// Empty reports whether no provider contributed any data at all.
func (s Snapshot) Empty() bool {
	return s.Weather == nil && s.Satellite == nil
}

// missingFields computes the completeness set for a snapshot.
func missingFields(w *WeatherObservation, sat *SatelliteObservation) []Field {
	var missing []Field

	if w == nil {
		missing = append(missing, FieldTemperature, FieldPrecipitation, FieldHumidity, FieldWind)
	} else {
		if w.TemperatureC == nil {
			missing = append(missing, FieldTemperature)
		}
		if w.PrecipMM == nil {
			missing = append(missing, FieldPrecipitation)
		}
		if w.HumidityPct == nil {
			missing = append(missing, FieldHumidity)
		}
		if w.WindSpeedMS == nil {
			missing = append(missing, FieldWind)
		}
	}

	if sat == nil {
		missing = append(missing, FieldVegetationIndex, FieldSoilMoisture)
	} else {
		if sat.NDVI == nil {
			missing = append(missing, FieldVegetationIndex)
		}
		if sat.SoilMoisture == nil {
			missing = append(missing, FieldSoilMoisture)
		}
	}

	return missing
}
