package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Credential operations

func (s *Storage) CreateCredential(ctx context.Context, cred *model.Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return err
	}

	// SETNX makes registration atomic across server instances
	created, err := s.client.SetNX(ctx, credentialKey(cred.Username), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrUsernameExists
	}
	return nil
}

func (s *Storage) GetCredential(ctx context.Context, username string) (*model.Credential, error) {
	data, err := s.client.Get(ctx, credentialKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var cred model.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, err
	}
	return &cred, nil
}

// History operations

func (s *Storage) AppendHistory(ctx context.Context, entry *model.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	key := historyKey(entry.Username)
	if s.cfg.HistoryTTL <= 0 {
		return s.client.RPush(ctx, key, data).Err()
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.cfg.HistoryTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetHistory(ctx context.Context, username string) ([]*model.HistoryEntry, error) {
	values, err := s.client.LRange(ctx, historyKey(username), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*model.HistoryEntry, 0, len(values))
	for _, val := range values {
		var entry model.HistoryEntry
		if err := json.Unmarshal([]byte(val), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.Token), data, s.cfg.SessionTTL).Err()
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

func (s *Storage) DeleteExpiredSessions(ctx context.Context, before int64) (int, error) {
	removed := 0
	iter := s.client.Scan(ctx, 0, sessionScanPattern(), 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // Expired between scan and get
			}
			return removed, err
		}

		var session model.Session
		if err := json.Unmarshal(data, &session); err != nil {
			continue // Skip invalid data
		}
		if session.ExpiresAt.Unix() < before {
			if err := s.client.Del(ctx, key).Err(); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, iter.Err()
}

// Vocabulary operations

func (s *Storage) GetVocabulary(ctx context.Context) ([]string, error) {
	key := vocabularyKey()

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, model.ErrVocabularyNotLoaded
	}

	return s.client.LRange(ctx, key, 0, -1).Result()
}

func (s *Storage) SaveVocabulary(ctx context.Context, symptoms []string) error {
	key := vocabularyKey()

	// Replace the list atomically; a LIST keeps feature order
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)

	if len(symptoms) > 0 {
		members := make([]interface{}, len(symptoms))
		for i, symptom := range symptoms {
			members[i] = symptom
		}
		pipe.RPush(ctx, key, members...)
	}

	_, err := pipe.Exec(ctx)
	return err
}
