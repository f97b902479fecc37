package model

import "time"

// HistoryEntry records one successful prediction made by a user
type HistoryEntry struct {
	ID         string
	Username   string
	Symptoms   []string // in selection order, all members of the vocabulary
	Disease    Disease
	Confidence float64 // percentage in [0, 100]
	CreatedAt  time.Time
}

// Prediction is the outcome of classifying a symptom selection
type Prediction struct {
	Symptoms   []string
	Disease    Disease
	Confidence float64
}

// Advice returns the advisory text for the predicted disease
func (p Prediction) Advice() string {
	return p.Disease.Advice()
}
