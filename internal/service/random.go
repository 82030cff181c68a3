package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	sessionTokenBytes = 18
	resetTokenBytes   = 32
	apiKeyIDBytes     = 10
	apiKeySecretBytes = 32
	userIDBytes       = 15
	resetIDBytes      = 15
)

// randomString returns n random bytes as unpadded URL-safe base64.
func randomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func NewUserID() (string, error) {
	return randomString(userIDBytes)
}
