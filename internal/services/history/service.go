package history

import (
	"context"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/mcoot/symptomcheck/internal/dependencies/clock"
	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/storage"
)

// Service records and lists each user's predictions
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new history Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Append records a prediction for a user
func (s *Service) Append(ctx context.Context, username string, symptoms []string, disease model.Disease, confidence float64) (*model.HistoryEntry, error) {
	if username == "" {
		return nil, model.ErrNotAuthenticated
	}

	entry := &model.HistoryEntry{
		ID:         uuid.NewString(),
		Username:   username,
		Symptoms:   slices.Clone(symptoms),
		Disease:    disease,
		Confidence: confidence,
		CreatedAt:  s.clock.Now(),
	}

	if err := s.storage.AppendHistory(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "history entry recorded",
		slog.String("username", username),
		slog.String("entry_id", entry.ID),
		slog.String("disease", string(disease)),
	)

	return entry, nil
}

// Get returns a user's entries in insertion order
func (s *Service) Get(ctx context.Context, username string) ([]*model.HistoryEntry, error) {
	entries, err := s.storage.GetHistory(ctx, username)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*model.HistoryEntry{}
	}
	return entries, nil
}

// Recent returns a user's entries most recent first
func (s *Service) Recent(ctx context.Context, username string) ([]*model.HistoryEntry, error) {
	entries, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	slices.Reverse(entries)
	return entries, nil
}
