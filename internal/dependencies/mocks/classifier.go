package mocks

import (
	"slices"
	"sync"

	"github.com/mcoot/symptomcheck/internal/services/classifier"
)

// MockClassifier is a mock implementation of classifier.Classifier for testing.
// It records every vector it is asked to score.
type MockClassifier struct {
	mu sync.Mutex

	ClassLabels []string
	Features    int

	// Label is returned from Predict
	Label string
	// Proba is returned from PredictProba
	Proba []float64
	// Err, if set, is returned from both methods
	Err error

	calls [][]float64
}

// Ensure MockClassifier implements Classifier
var _ classifier.Classifier = (*MockClassifier)(nil)

// NewMockClassifier creates a mock over the given classes that predicts the
// first class with the given probabilities
func NewMockClassifier(features int, classes []string, proba []float64) *MockClassifier {
	return &MockClassifier{
		ClassLabels: classes,
		Features:    features,
		Label:       classes[0],
		Proba:       proba,
	}
}

func (c *MockClassifier) record(x []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, slices.Clone(x))
}

func (c *MockClassifier) Predict(x []float64) (string, error) {
	c.record(x)
	if c.Err != nil {
		return "", c.Err
	}
	return c.Label, nil
}

func (c *MockClassifier) PredictProba(x []float64) ([]float64, error) {
	c.record(x)
	if c.Err != nil {
		return nil, c.Err
	}
	return slices.Clone(c.Proba), nil
}

func (c *MockClassifier) Classes() []string { return slices.Clone(c.ClassLabels) }

func (c *MockClassifier) NumFeatures() int { return c.Features }

// Calls returns the vectors passed to Predict and PredictProba, in order
func (c *MockClassifier) Calls() [][]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.calls)
}

// Reset clears recorded calls
func (c *MockClassifier) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}
