// Package classifier loads pre-trained disease classifiers from JSON artifacts.
package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Artifact types
const (
	TypeBernoulliNB = "bernoulli_nb"
	TypeLogistic    = "logistic"
)

var (
	ErrFeatureCount    = errors.New("feature vector length does not match the model")
	ErrUnknownType     = errors.New("unknown classifier type")
	ErrInvalidArtifact = errors.New("invalid classifier artifact")
)

// Classifier predicts a disease label from a binary symptom vector
type Classifier interface {
	// Predict returns the most likely class label
	Predict(x []float64) (string, error)
	// PredictProba returns one probability per class, ordered as Classes()
	PredictProba(x []float64) ([]float64, error)
	Classes() []string
	NumFeatures() int
}

// Artifact is the on-disk representation of a trained model
type Artifact struct {
	Type    string   `json:"type"`
	Classes []string `json:"classes"`
	// Features optionally records the vocabulary the model was trained on
	Features []string `json:"features,omitempty"`

	// bernoulli_nb
	ClassLogPrior  []float64   `json:"class_log_prior,omitempty"`
	FeatureLogProb [][]float64 `json:"feature_log_prob,omitempty"`

	// logistic
	Coef      [][]float64 `json:"coef,omitempty"`
	Intercept []float64   `json:"intercept,omitempty"`
}

// Load reads an artifact from disk and builds the classifier it describes
func Load(path string) (Classifier, *Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, nil, fmt.Errorf("parse classifier %s: %w", path, err)
	}

	c, err := FromArtifact(&artifact)
	if err != nil {
		return nil, nil, fmt.Errorf("load classifier %s: %w", path, err)
	}
	return c, &artifact, nil
}

// FromArtifact builds a classifier from a decoded artifact
func FromArtifact(a *Artifact) (Classifier, error) {
	if len(a.Classes) < 2 {
		return nil, fmt.Errorf("%w: need at least two classes, got %d", ErrInvalidArtifact, len(a.Classes))
	}

	switch a.Type {
	case TypeBernoulliNB:
		return newBernoulliNB(a)
	case TypeLogistic:
		return newLogistic(a)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, a.Type)
	}
}

// argmax returns the index of the largest value; ties go to the first
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

func checkRows(name string, rows [][]float64, want int) (int, error) {
	if len(rows) != want {
		return 0, fmt.Errorf("%w: %s has %d rows, want %d", ErrInvalidArtifact, name, len(rows), want)
	}
	width := len(rows[0])
	if width == 0 {
		return 0, fmt.Errorf("%w: %s has no features", ErrInvalidArtifact, name)
	}
	for i, row := range rows {
		if len(row) != width {
			return 0, fmt.Errorf("%w: %s row %d has %d features, want %d", ErrInvalidArtifact, name, i, len(row), width)
		}
	}
	return width, nil
}
