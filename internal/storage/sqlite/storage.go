// Package sqlite implements the storage interface on a local SQLite database
// using modernc.org/sqlite (pure Go, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/storage"
)

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db  *sql.DB
	cfg Config
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// New opens (creating if needed) the database at cfg.Path and runs migrations
func New(ctx context.Context, cfg Config) (*Storage, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection serializes writers, so SQLite never reports SQLITE_BUSY to callers
	db.SetMaxOpenConns(1)

	if cfg.BusyTimeoutMS > 0 {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeoutMS)); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set busy timeout: %w", err)
		}
	}

	s := &Storage{db: db, cfg: cfg}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Credential operations

func (s *Storage) CreateCredential(ctx context.Context, cred *model.Credential) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (username, password_hash, scheme, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(username) DO NOTHING
	`, cred.Username, cred.PasswordHash, string(cred.Scheme), cred.CreatedAt.UnixNano())
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrUsernameExists
	}
	return nil
}

func (s *Storage) GetCredential(ctx context.Context, username string) (*model.Credential, error) {
	var (
		cred      model.Credential
		scheme    string
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT username, password_hash, scheme, created_at FROM credentials WHERE username = ?
	`, username).Scan(&cred.Username, &cred.PasswordHash, &scheme, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	cred.Scheme = model.HashScheme(scheme)
	cred.CreatedAt = time.Unix(0, createdAt).UTC()
	return &cred, nil
}

// History operations

func (s *Storage) AppendHistory(ctx context.Context, entry *model.HistoryEntry) error {
	symptoms, err := json.Marshal(entry.Symptoms)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO history (id, username, symptoms, disease, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Username, string(symptoms), string(entry.Disease), entry.Confidence, entry.CreatedAt.UnixNano())
	return err
}

func (s *Storage) GetHistory(ctx context.Context, username string) ([]*model.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, symptoms, disease, confidence, created_at
		FROM history
		WHERE username = ?
		ORDER BY seq ASC
	`, username)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	entries := []*model.HistoryEntry{}
	for rows.Next() {
		var (
			entry     model.HistoryEntry
			symptoms  string
			disease   string
			createdAt int64
		)
		if err := rows.Scan(&entry.ID, &entry.Username, &symptoms, &disease, &entry.Confidence, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(symptoms), &entry.Symptoms); err != nil {
			return nil, fmt.Errorf("decode symptoms of entry %s: %w", entry.ID, err)
		}
		entry.Disease = model.Disease(disease)
		entry.CreatedAt = time.Unix(0, createdAt).UTC()
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, username, view, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			username = excluded.username,
			view = excluded.view,
			expires_at = excluded.expires_at
	`, session.Token, session.Username, string(session.View), session.CreatedAt.UnixNano(), session.ExpiresAt.UnixNano())
	return err
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var (
		session   model.Session
		view      string
		createdAt int64
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT token, username, view, created_at, expires_at FROM sessions WHERE token = ?
	`, token).Scan(&session.Token, &session.Username, &view, &createdAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	session.View = model.View(view)
	session.CreatedAt = time.Unix(0, createdAt).UTC()
	session.ExpiresAt = time.Unix(0, expiresAt).UTC()
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	return err
}

func (s *Storage) DeleteExpiredSessions(ctx context.Context, before int64) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", time.Unix(before, 0).UnixNano())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// Vocabulary operations

func (s *Storage) GetVocabulary(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT symptom FROM vocabulary ORDER BY position ASC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var symptoms []string
	for rows.Next() {
		var symptom string
		if err := rows.Scan(&symptom); err != nil {
			return nil, err
		}
		symptoms = append(symptoms, symptom)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(symptoms) == 0 {
		return nil, model.ErrVocabularyNotLoaded
	}
	return symptoms, nil
}

func (s *Storage) SaveVocabulary(ctx context.Context, symptoms []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM vocabulary"); err != nil {
		return err
	}
	for i, symptom := range symptoms {
		if _, err := tx.ExecContext(ctx, "INSERT INTO vocabulary (position, symptom) VALUES (?, ?)", i, symptom); err != nil {
			return err
		}
	}
	return tx.Commit()
}
