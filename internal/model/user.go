package model

import "time"

// HashScheme names the algorithm that produced a password hash
type HashScheme string

const (
	// HashSchemeBcryptSHA256 runs bcrypt over the base64 SHA-256 digest, so passwords of any length fit
	HashSchemeBcryptSHA256 HashScheme = "bcrypt-sha256"
	HashSchemeBcrypt       HashScheme = "bcrypt" // verify only; bcrypt rejects passwords over 72 bytes
	HashSchemeSHA256       HashScheme = "sha256" // unsalted, kept for compatibility with legacy stores
)

// Credential is a registered user's login data
type Credential struct {
	Username     string     // unique key, immutable
	PasswordHash string     // encoded per Scheme
	Scheme       HashScheme // empty means bcrypt
	CreatedAt    time.Time
}
