package service

import (
	"crypto/rand"
	"encoding/base64"
)

const (
	shareTokenBytes    = 16
	shareTokenAttempts = 5
)

// newShareToken — 128 бит из crypto/rand в base64url без паддинга (22 символа).
func newShareToken() (string, error) {
	b := make([]byte, shareTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
