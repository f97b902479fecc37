package classifier

import (
	"fmt"
	"math"
	"slices"
)

// BernoulliNB is a Bernoulli naive Bayes model over binary features
type BernoulliNB struct {
	classes        []string
	classLogPrior  []float64
	featureLogProb [][]float64
	// log(1 - p) per class and feature, precomputed
	negLogProb [][]float64
}

func newBernoulliNB(a *Artifact) (*BernoulliNB, error) {
	if len(a.ClassLogPrior) != len(a.Classes) {
		return nil, fmt.Errorf("%w: class_log_prior has %d entries, want %d",
			ErrInvalidArtifact, len(a.ClassLogPrior), len(a.Classes))
	}
	for c, lp := range a.ClassLogPrior {
		if !isLogProb(lp) {
			return nil, fmt.Errorf("%w: class_log_prior[%d] = %v is not a finite log probability",
				ErrInvalidArtifact, c, lp)
		}
	}
	if _, err := checkRows("feature_log_prob", a.FeatureLogProb, len(a.Classes)); err != nil {
		return nil, err
	}

	neg := make([][]float64, len(a.FeatureLogProb))
	for c, row := range a.FeatureLogProb {
		neg[c] = make([]float64, len(row))
		for j, lp := range row {
			// p = 1 would make log(1 - p) infinite for an absent feature
			if !isLogProb(lp) || lp == 0 {
				return nil, fmt.Errorf("%w: feature_log_prob[%d][%d] = %v is not a log probability below zero",
					ErrInvalidArtifact, c, j, lp)
			}
			neg[c][j] = math.Log1p(-math.Exp(lp))
		}
	}

	return &BernoulliNB{
		classes:        slices.Clone(a.Classes),
		classLogPrior:  slices.Clone(a.ClassLogPrior),
		featureLogProb: a.FeatureLogProb,
		negLogProb:     neg,
	}, nil
}

// isLogProb reports whether v is the finite log of a probability
func isLogProb(v float64) bool {
	return v <= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (m *BernoulliNB) Classes() []string { return slices.Clone(m.classes) }

func (m *BernoulliNB) NumFeatures() int { return len(m.featureLogProb[0]) }

// jointLogLikelihood computes log P(c) + log P(x|c) for each class
func (m *BernoulliNB) jointLogLikelihood(x []float64) ([]float64, error) {
	if len(x) != m.NumFeatures() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(x), m.NumFeatures())
	}

	jll := make([]float64, len(m.classes))
	for c := range m.classes {
		sum := m.classLogPrior[c]
		for j, v := range x {
			if v != 0 {
				sum += m.featureLogProb[c][j]
			} else {
				sum += m.negLogProb[c][j]
			}
		}
		jll[c] = sum
	}
	return jll, nil
}

func (m *BernoulliNB) Predict(x []float64) (string, error) {
	jll, err := m.jointLogLikelihood(x)
	if err != nil {
		return "", err
	}
	return m.classes[argmax(jll)], nil
}

func (m *BernoulliNB) PredictProba(x []float64) ([]float64, error) {
	jll, err := m.jointLogLikelihood(x)
	if err != nil {
		return nil, err
	}

	// Normalise with log-sum-exp
	maxLL := jll[argmax(jll)]
	if math.IsInf(maxLL, 0) || math.IsNaN(maxLL) {
		return nil, fmt.Errorf("%w: joint log likelihood is %v", ErrInvalidArtifact, maxLL)
	}
	var total float64
	for _, ll := range jll {
		total += math.Exp(ll - maxLL)
	}
	logNorm := maxLL + math.Log(total)

	proba := make([]float64, len(jll))
	for i, ll := range jll {
		proba[i] = math.Exp(ll - logNorm)
	}
	return proba, nil
}
