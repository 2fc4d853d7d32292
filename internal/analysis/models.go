package analysis

import (
	"strings"
)

// AnalysisRequest is the immutable per-request input. Both fields must be
// non-empty after trimming.
type AnalysisRequest struct {
	FarmLocation string `json:"farm_location" validate:"required"`
	CropType     string `json:"crop_type" validate:"required"`
}

// Validate fast-fails on blank input before any network call is made.
func (r AnalysisRequest) Validate() error {
	if strings.TrimSpace(r.FarmLocation) == "" {
		return NewError(KindValidation, "farm_location must not be empty", nil)
	}
	if strings.TrimSpace(r.CropType) == "" {
		return NewError(KindValidation, "crop_type must not be empty", nil)
	}
	return nil
}

// State names a step of the per-request pipeline.
type State string

const (
	StateIdle                 State = "idle"
	StateFetchingEnvironment  State = "fetching_environment"
	StateRetrievingPrecedents State = "retrieving_precedents"
	StateSynthesizing         State = "synthesizing"
	StateComplete             State = "complete"
	StateFailed               State = "failed"
)
