// Package passcode issues and checks the tournament credential that gates
// match start.
package passcode

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// Length is the number of characters in a passcode.
const Length = 6

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Generate returns a random 6 character uppercase base-36 passcode.
func Generate() (string, error) {
	var b strings.Builder
	b.Grow(Length)
	limit := big.NewInt(int64(len(alphabet)))
	for i := 0; i < Length; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate passcode: %w", err)
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}

// Hash returns the hex SHA-256 of the normalised code.
func Hash(code string) string {
	sum := sha256.Sum256([]byte(normalize(code)))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether code matches hash. Comparison is constant time.
func Verify(hash, code string) bool {
	if hash == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(hash), []byte(Hash(code))) == 1
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
