package test

import (
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

const credentialAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomCredential returns a printable credential with length in [minLen, maxLen].
func RandomCredential(minLen, maxLen int) string {
	minLen = max(minLen, 1)
	maxLen = max(maxLen, minLen)
	n := minLen + rand.Intn(maxLen-minLen+1)

	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(credentialAlphabet[rand.Intn(len(credentialAlphabet))])
	}
	return b.String()
}

// RandomCustomerID returns a unique messenger style customer identifier.
func RandomCustomerID() string {
	return "tg-" + uuid.NewString()[:8]
}
