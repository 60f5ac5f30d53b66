package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash of the supplied password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares the hashed password with the plaintext candidate.
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// GenerateToken returns a random URL-safe token of the requested byte length.
func GenerateToken(length int) (string, error) {
	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

// GenerateNumericCode returns a uniformly random numeric string of the given
// number of digits, preserving leading zeros.
func GenerateNumericCode(digits int) (string, error) {
	bound := big.NewInt(1)
	for i := 0; i < digits; i++ {
		bound.Mul(bound, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", err
	}

	out := make([]byte, digits)
	text := n.String()
	pad := digits - len(text)
	for i := 0; i < pad; i++ {
		out[i] = '0'
	}
	copy(out[pad:], text)
	return string(out), nil
}
