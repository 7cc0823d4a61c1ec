package pkg

import "math/rand"

const letters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RandString returns an n character join code. Ambiguous characters such
// as O and 0 are left out. Safe for concurrent use.
func RandString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
