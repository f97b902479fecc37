package classifier

import (
	"fmt"
	"math"
	"slices"
)

// Logistic is a (multinomial) logistic regression model.
// With two classes and a single coefficient row it behaves as a binary model
// where the row scores the second class.
type Logistic struct {
	classes   []string
	coef      [][]float64
	intercept []float64
	features  int
}

func newLogistic(a *Artifact) (*Logistic, error) {
	rows := len(a.Classes)
	if rows == 2 && len(a.Coef) == 1 {
		rows = 1
	}

	features, err := checkRows("coef", a.Coef, rows)
	if err != nil {
		return nil, err
	}
	if len(a.Intercept) != rows {
		return nil, fmt.Errorf("%w: intercept has %d entries, want %d", ErrInvalidArtifact, len(a.Intercept), rows)
	}

	return &Logistic{
		classes:   slices.Clone(a.Classes),
		coef:      a.Coef,
		intercept: slices.Clone(a.Intercept),
		features:  features,
	}, nil
}

func (m *Logistic) Classes() []string { return slices.Clone(m.classes) }

func (m *Logistic) NumFeatures() int { return m.features }

func (m *Logistic) decision(x []float64) ([]float64, error) {
	if len(x) != m.features {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(x), m.features)
	}

	scores := make([]float64, len(m.coef))
	for r, row := range m.coef {
		sum := m.intercept[r]
		for j, v := range x {
			sum += row[j] * v
		}
		scores[r] = sum
	}
	return scores, nil
}

func (m *Logistic) PredictProba(x []float64) ([]float64, error) {
	scores, err := m.decision(x)
	if err != nil {
		return nil, err
	}

	if len(scores) == 1 {
		p := 1 / (1 + math.Exp(-scores[0]))
		return []float64{1 - p, p}, nil
	}

	maxScore := scores[argmax(scores)]
	var total float64
	proba := make([]float64, len(scores))
	for i, s := range scores {
		proba[i] = math.Exp(s - maxScore)
		total += proba[i]
	}
	for i := range proba {
		proba[i] /= total
	}
	return proba, nil
}

func (m *Logistic) Predict(x []float64) (string, error) {
	proba, err := m.PredictProba(x)
	if err != nil {
		return "", err
	}
	return m.classes[argmax(proba)], nil
}
