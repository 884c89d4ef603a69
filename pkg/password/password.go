// Package password generates the short base36 passwords that are emailed to
// newly provisioned students.
package password

import "math/rand/v2"

const (
	// Length is the number of characters in a generated password.
	Length = 8

	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Generate returns a pseudo-random base36 password of Length characters.
// It is backed by math/rand and is not cryptographically strong; recipients
// are expected to treat it as an initial credential only.
func Generate() string {
	buf := make([]byte, Length)
	for i := range buf {
		buf[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(buf)
}
