package redis

import "fmt"

// Key prefix for all application data
const keyPrefix = "symcheck"

// credentialKey returns the Redis key for a user's credential
func credentialKey(username string) string {
	return fmt.Sprintf("%s:credential:%s", keyPrefix, username)
}

// historyKey returns the Redis key for the LIST of a user's history entries
func historyKey(username string) string {
	return fmt.Sprintf("%s:history:%s", keyPrefix, username)
}

// sessionKey returns the Redis key for a session
func sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, token)
}

// sessionScanPattern matches every session key
func sessionScanPattern() string {
	return fmt.Sprintf("%s:session:*", keyPrefix)
}

// vocabularyKey returns the Redis key for the ordered symptom LIST
func vocabularyKey() string {
	return fmt.Sprintf("%s:vocabulary", keyPrefix)
}
