package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	credentials map[string]*model.Credential
	history     map[string][]*model.HistoryEntry
	sessions    map[string]*model.Session
	vocabulary  []string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		credentials: make(map[string]*model.Credential),
		history:     make(map[string][]*model.HistoryEntry),
		sessions:    make(map[string]*model.Session),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Credential operations

func (s *Storage) CreateCredential(ctx context.Context, cred *model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.credentials[cred.Username]; ok {
		return model.ErrUsernameExists
	}
	c := *cred
	s.credentials[cred.Username] = &c
	return nil
}

func (s *Storage) GetCredential(ctx context.Context, username string) (*model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.credentials[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	c := *cred
	return &c, nil
}

// History operations

func (s *Storage) AppendHistory(ctx context.Context, entry *model.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := *entry
	e.Symptoms = slices.Clone(entry.Symptoms)
	s.history[entry.Username] = append(s.history[entry.Username], &e)
	return nil
}

func (s *Storage) GetHistory(ctx context.Context, username string) ([]*model.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.history[username]
	result := make([]*model.HistoryEntry, len(entries))
	for i, entry := range entries {
		e := *entry
		e.Symptoms = slices.Clone(entry.Symptoms)
		result[i] = &e
	}
	return result, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := *session
	s.sessions[session.Token] = &sess
	return nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	sess := *session
	return &sess, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *Storage) DeleteExpiredSessions(ctx context.Context, before int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, session := range s.sessions {
		if session.ExpiresAt.Unix() < before {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}

// Vocabulary operations

func (s *Storage) GetVocabulary(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.vocabulary == nil {
		return nil, model.ErrVocabularyNotLoaded
	}
	return slices.Clone(s.vocabulary), nil
}

func (s *Storage) SaveVocabulary(ctx context.Context, symptoms []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vocabulary = make([]string, len(symptoms))
	copy(s.vocabulary, symptoms)
	return nil
}

// Close is a no-op for in-memory storage
func (s *Storage) Close() error {
	return nil
}
