package storage

import (
	"context"

	"github.com/mcoot/symptomcheck/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Credential operations
	// CreateCredential inserts a credential, failing with model.ErrUsernameExists if the username is taken
	CreateCredential(ctx context.Context, cred *model.Credential) error
	GetCredential(ctx context.Context, username string) (*model.Credential, error)

	// History operations
	AppendHistory(ctx context.Context, entry *model.HistoryEntry) error
	// GetHistory returns a user's entries in insertion order
	GetHistory(ctx context.Context, username string) ([]*model.HistoryEntry, error)

	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
	// DeleteExpiredSessions removes sessions whose expiry is before the given unix time
	DeleteExpiredSessions(ctx context.Context, before int64) (int, error)

	// Vocabulary operations
	GetVocabulary(ctx context.Context) ([]string, error)
	SaveVocabulary(ctx context.Context, symptoms []string) error

	Close() error
}
