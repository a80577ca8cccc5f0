package conversation

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// PublicIDLength is the length of generated conversation IDs
	// (22 chars of base62 ≈ 131 bits of entropy).
	PublicIDLength = 22

	// base62Charset contains the URL-safe characters used in public IDs.
	base62Charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// GeneratePublicID generates a cryptographically random 22-character base62
// conversation ID.
func GeneratePublicID() (string, error) {
	charsetLen := big.NewInt(int64(len(base62Charset)))
	result := make([]byte, PublicIDLength)

	for i := 0; i < PublicIDLength; i++ {
		randomIndex, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", fmt.Errorf("generate random index: %w", err)
		}
		result[i] = base62Charset[randomIndex.Int64()]
	}

	return string(result), nil
}

// IsPublicID reports whether a path segment is a conversation ID rather
// than a company slug: exactly 22 base62 characters. Company slugs are
// shorter or carry hyphens, so the two namespaces never collide.
func IsPublicID(slug string) bool {
	if len(slug) != PublicIDLength {
		return false
	}
	for _, c := range slug {
		if !isBase62Char(c) {
			return false
		}
	}
	return true
}

func isBase62Char(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
