package vocabulary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/storage"
)

// Service holds the ordered symptom vocabulary and maps symptoms to feature positions
type Service struct {
	storage storage.Storage
	logger  *slog.Logger

	mu       sync.RWMutex
	symptoms []string
	index    map[string]int
	loaded   bool
}

// New creates a new vocabulary Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		index:   make(map[string]int),
	}
}

// LoadFromStorage loads the vocabulary saved by a previous LoadFromFile
func (s *Service) LoadFromStorage(ctx context.Context) error {
	symptoms, err := s.storage.GetVocabulary(ctx)
	if err != nil {
		return err
	}
	return s.load(symptoms)
}

// LoadFromFile loads the vocabulary from a JSON array of symptom labels
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var symptoms []string
	if err := json.Unmarshal(data, &symptoms); err != nil {
		return fmt.Errorf("parse vocabulary %s: %w", path, err)
	}

	if err := s.load(symptoms); err != nil {
		return fmt.Errorf("load vocabulary %s: %w", path, err)
	}

	// Save to storage so other instances can load without the file
	if err := s.storage.SaveVocabulary(ctx, symptoms); err != nil {
		return err
	}

	s.logger.Info("symptom vocabulary loaded", slog.String("path", path), slog.Int("size", len(symptoms)))
	return nil
}

// LoadSymptoms directly loads a list of symptoms (useful for testing)
func (s *Service) LoadSymptoms(symptoms []string) error {
	return s.load(symptoms)
}

func (s *Service) load(symptoms []string) error {
	if len(symptoms) == 0 {
		return fmt.Errorf("vocabulary is empty")
	}

	index := make(map[string]int, len(symptoms))
	for i, symptom := range symptoms {
		if strings.TrimSpace(symptom) == "" {
			return fmt.Errorf("vocabulary entry %d is blank", i)
		}
		if _, dup := index[symptom]; dup {
			return fmt.Errorf("vocabulary entry %q is duplicated", symptom)
		}
		index[symptom] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.symptoms = slices.Clone(symptoms)
	s.index = index
	s.loaded = true
	return nil
}

// IsLoaded returns whether the vocabulary has been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Size returns the number of symptoms, which is the feature vector length
func (s *Service) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.symptoms)
}

// Symptoms returns the vocabulary in feature order
func (s *Service) Symptoms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.symptoms)
}

// Contains reports whether a symptom is in the vocabulary
func (s *Service) Contains(symptom string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[symptom]
	return ok
}

// Vector builds the binary feature vector for a selection.
// Returns model.ErrUnknownSymptom for any symptom outside the vocabulary.
func (s *Service) Vector(selected []string) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, model.ErrVocabularyNotLoaded
	}

	vector := make([]float64, len(s.symptoms))
	for _, symptom := range selected {
		i, ok := s.index[symptom]
		if !ok {
			return nil, fmt.Errorf("%w: %q", model.ErrUnknownSymptom, symptom)
		}
		vector[i] = 1
	}
	return vector, nil
}

// Interface check
type ServiceInterface interface {
	IsLoaded() bool
	Size() int
	Symptoms() []string
	Contains(symptom string) bool
	Vector(selected []string) ([]float64, error)
	LoadFromStorage(ctx context.Context) error
	LoadFromFile(ctx context.Context, path string) error
	LoadSymptoms(symptoms []string) error
}

var _ ServiceInterface = (*Service)(nil)
