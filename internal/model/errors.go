package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")

	// Session errors
	ErrSessionNotFound      = errors.New("session not found")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrAlreadyAuthenticated = errors.New("already authenticated")
	ErrInvalidView          = errors.New("invalid view")

	// Prediction errors
	ErrEmptySelection = errors.New("no symptoms selected")
	ErrUnknownSymptom = errors.New("unknown symptom")

	// Vocabulary errors
	ErrVocabularyNotLoaded = errors.New("symptom vocabulary not loaded")
)
