package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/symptomcheck/internal/dependencies/clock"
	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameExists     = model.ErrUsernameExists
)

// Service is the credential store: registration and password verification
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	// hasher hashes new passwords; verifiers check stored hashes by their recorded scheme
	hasher    Hasher
	verifiers map[model.HashScheme]Hasher
}

// Config holds configuration for the auth service
type Config struct {
	// HashScheme is used for newly registered passwords
	HashScheme model.HashScheme
	// BcryptCost applies when HashScheme is bcrypt-sha256
	BcryptCost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		HashScheme: model.HashSchemeBcryptSHA256,
		BcryptCost: bcrypt.DefaultCost,
	}
}

// New creates a new AuthService
func New(storage storage.Storage, clock clock.Clock, cfg Config, logger *slog.Logger) (*Service, error) {
	hasher, err := NewHasher(cfg.HashScheme, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	return &Service{
		storage:   storage,
		clock:     clock,
		logger:    logger,
		hasher:    hasher,
		verifiers: newVerifiers(cfg.BcryptCost),
	}, nil
}

// Register stores a new credential. Returns ErrUsernameExists if the username is taken.
// No strength or format rules are applied to either value.
func (s *Service) Register(ctx context.Context, username, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	cred := &model.Credential{
		Username:     username,
		PasswordHash: hash,
		Scheme:       s.hasher.Scheme(),
		CreatedAt:    s.clock.Now(),
	}

	if err := s.storage.CreateCredential(ctx, cred); err != nil {
		return err
	}

	s.logger.Info("user registered", slog.String("username", username), slog.String("scheme", string(cred.Scheme)))
	return nil
}

// Authenticate checks a username/password pair.
// Unknown usernames and wrong passwords both return ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) error {
	cred, err := s.storage.GetCredential(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	scheme := cred.Scheme
	if scheme == "" {
		scheme = model.HashSchemeBcrypt
	}
	verifier, ok := s.verifiers[scheme]
	if !ok {
		s.logger.Error("credential has unknown hash scheme", slog.String("username", username), slog.String("scheme", string(scheme)))
		return ErrInvalidCredentials
	}

	if !verifier.Verify(cred.PasswordHash, password) {
		return ErrInvalidCredentials
	}
	return nil
}

// Exists reports whether a username is registered
func (s *Service) Exists(ctx context.Context, username string) (bool, error) {
	_, err := s.storage.GetCredential(ctx, username)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, model.ErrUserNotFound) {
		return false, nil
	}
	return false, err
}
