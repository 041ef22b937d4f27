package webhooksig

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	// SecretPrefix marks a signing secret.
	SecretPrefix = "whsec_"
	// SecretLength is the number of random key bytes in generated secrets.
	SecretLength = 32
)

// Secret is a decoded HMAC key.
type Secret struct {
	key []byte
}

// ParseSecret strips the whsec_ prefix and base64-decodes the key bytes.
// Secrets without the prefix are decoded as-is.
func ParseSecret(value string) (Secret, error) {
	encoded := strings.TrimPrefix(strings.TrimSpace(value), SecretPrefix)
	if encoded == "" {
		return Secret{}, fmt.Errorf("%w: empty key", ErrMalformedSecret)
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Secret{}, fmt.Errorf("%w: %v", ErrMalformedSecret, err)
	}
	if len(key) == 0 {
		return Secret{}, fmt.Errorf("%w: empty key", ErrMalformedSecret)
	}
	return Secret{key: key}, nil
}

// NewSecret wraps raw key bytes.
func NewSecret(key []byte) Secret {
	return Secret{key: append([]byte(nil), key...)}
}

// String renders the secret in whsec_ form.
func (s Secret) String() string {
	return SecretPrefix + base64.StdEncoding.EncodeToString(s.key)
}

// Len returns the key length in bytes.
func (s Secret) Len() int {
	return len(s.key)
}

// GenerateSecret creates a random whsec_ secret.
func GenerateSecret() (string, error) {
	raw := make([]byte, SecretLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate signing secret: %w", err)
	}
	return NewSecret(raw).String(), nil
}

func parseSecrets(values []string) ([]Secret, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no secrets configured", ErrMalformedSecret)
	}
	out := make([]Secret, 0, len(values))
	for _, value := range values {
		secret, err := ParseSecret(value)
		if err != nil {
			return nil, err
		}
		out = append(out, secret)
	}
	return out, nil
}
