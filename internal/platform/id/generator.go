package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// Slug derives a stable id from display text, for activities created without
// a backend-assigned id. Parts are lowercased, non-alphanumeric runs collapse
// to single dashes.
func Slug(parts ...string) string {
	var b strings.Builder
	lastDash := true

	for _, part := range parts {
		for _, r := range strings.ToLower(part) {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
				b.WriteRune(r)
				lastDash = false
			default:
				if !lastDash {
					b.WriteByte('-')
					lastDash = true
				}
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}
