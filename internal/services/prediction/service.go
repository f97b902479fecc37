package prediction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mcoot/symptomcheck/internal/metrics"
	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/services/classifier"
	"github.com/mcoot/symptomcheck/internal/services/vocabulary"
)

// Errors
var (
	ErrEmptySelection = model.ErrEmptySelection
	ErrUnknownSymptom = model.ErrUnknownSymptom
	ErrModelMismatch  = errors.New("classifier does not match the symptom vocabulary")
)

// Service turns a symptom selection into a disease prediction
type Service struct {
	vocabulary vocabulary.ServiceInterface
	classifier classifier.Classifier
	metrics    *metrics.Collector
	logger     *slog.Logger
}

// New creates a prediction service. The vocabulary must already be loaded and
// its size must equal the classifier's feature count.
func New(vocab vocabulary.ServiceInterface, clf classifier.Classifier, collector *metrics.Collector, logger *slog.Logger) (*Service, error) {
	if !vocab.IsLoaded() {
		return nil, model.ErrVocabularyNotLoaded
	}
	if clf.NumFeatures() != vocab.Size() {
		return nil, fmt.Errorf("%w: classifier expects %d features, vocabulary has %d",
			ErrModelMismatch, clf.NumFeatures(), vocab.Size())
	}

	return &Service{
		vocabulary: vocab,
		classifier: clf,
		metrics:    collector,
		logger:     logger,
	}, nil
}

// VerifyFeatures checks the feature names a classifier was trained on against the vocabulary
func (s *Service) VerifyFeatures(features []string) error {
	if !slices.Equal(features, s.vocabulary.Symptoms()) {
		return fmt.Errorf("%w: feature names differ from the vocabulary", ErrModelMismatch)
	}
	return nil
}

// Symptoms returns the selectable symptoms in vocabulary order
func (s *Service) Symptoms() []string {
	return s.vocabulary.Symptoms()
}

// Predict classifies a symptom selection.
// Returns ErrEmptySelection without invoking the classifier when nothing is selected.
func (s *Service) Predict(ctx context.Context, symptoms []string) (*model.Prediction, error) {
	if len(symptoms) == 0 {
		s.metrics.ObservePredictionFailure("empty_selection")
		return nil, ErrEmptySelection
	}

	selected := dedupe(symptoms)

	vector, err := s.vocabulary.Vector(selected)
	if err != nil {
		s.metrics.ObservePredictionFailure("unknown_symptom")
		return nil, err
	}

	label, err := s.classifier.Predict(vector)
	if err != nil {
		s.metrics.ObservePredictionFailure("classifier")
		return nil, fmt.Errorf("predict: %w", err)
	}

	proba, err := s.classifier.PredictProba(vector)
	if err != nil {
		s.metrics.ObservePredictionFailure("classifier")
		return nil, fmt.Errorf("predict probability: %w", err)
	}
	if len(proba) == 0 {
		s.metrics.ObservePredictionFailure("classifier")
		return nil, fmt.Errorf("predict probability: classifier returned no probabilities")
	}

	prediction := &model.Prediction{
		Symptoms:   selected,
		Disease:    model.Disease(label),
		Confidence: 100 * slices.Max(proba),
	}

	s.metrics.ObservePrediction(label, prediction.Confidence)
	s.logger.DebugContext(ctx, "prediction made",
		slog.Any("symptoms", selected),
		slog.String("disease", label),
		slog.Float64("confidence", prediction.Confidence),
	)

	return prediction, nil
}

// dedupe drops repeated symptoms, keeping first-occurrence order
func dedupe(symptoms []string) []string {
	seen := make(map[string]struct{}, len(symptoms))
	out := make([]string, 0, len(symptoms))
	for _, symptom := range symptoms {
		if _, ok := seen[symptom]; ok {
			continue
		}
		seen[symptom] = struct{}{}
		out = append(out, symptom)
	}
	return out
}
