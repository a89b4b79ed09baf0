package auth

import "crypto/rand"

const base32alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// randText matches crypto/rand.Text (Go 1.24): 26 base32 characters,
// at least 128 bits of randomness.
func randText() string {
	src := make([]byte, 26)
	if _, err := rand.Read(src); err != nil {
		panic(err)
	}
	for i := range src {
		src[i] = base32alphabet[src[i]%32]
	}
	return string(src)
}
