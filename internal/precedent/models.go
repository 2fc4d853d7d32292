package precedent

// Precedent is a stored historical record of environmental conditions and crop
// outcome, scored against the current request by embedding similarity.
type Precedent struct {
	CropType         string    `json:"cropType"`
	Embedding        []float32 `json:"-"`
	OutcomeNarrative string    `json:"outcomeNarrative"`
	Similarity       float64   `json:"similarityScore"` // 0.0-1.0, higher = closer match
}
