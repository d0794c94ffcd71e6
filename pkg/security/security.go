package security

import (
	"crypto/rand"
	"html"
	"math/big"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/crypto/bcrypt"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var namePolicy = bluemonday.StrictPolicy()

// GenerateCode returns a random code of the given length drawn uniformly from A-Z0-9.
func GenerateCode(length int) (string, error) {
	max := big.NewInt(int64(len(codeCharset)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = codeCharset[n.Int64()]
	}
	return string(b), nil
}

// IsCode reports whether s looks like a code produced by GenerateCode.
func IsCode(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(codeCharset, rune(s[i])) {
			return false
		}
	}
	return true
}

// SanitizeName strips markup from a display name and trims surrounding whitespace.
func SanitizeName(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(namePolicy.Sanitize(input)))
}

func HashPassword(raw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
