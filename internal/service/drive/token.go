package drive

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes gives 256-bit share tokens
const tokenBytes = 32

// newShareToken returns an unguessable URL-safe token
func newShareToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
