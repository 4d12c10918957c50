package random

import (
	"crypto/rand"
	"encoding/base64"
)

// Token returns n random bytes from crypto/rand, URL-safe base64 encoded.
// Used for session ids and OAuth state.
func Token(n int) string {
	b := make([]byte, n)
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
