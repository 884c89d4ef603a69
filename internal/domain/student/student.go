package student

import "strings"

// Student represents a provisioned student record in the system.
type Student struct {
	Email    string // Email is the address the credentials were sent to, used as lookup key
	Password string // Password is stored exactly as provisioned; the upstream store keeps it in plaintext
	Name     string // Name is the display name derived from the email local-part
}

// DeriveName derives a display name from an email address.
//
// The local-part before the first '@' is taken, every run of characters that
// is not an ASCII letter (digits, underscores, punctuation) collapses into a
// single space, the first letter of each remaining word is uppercased, and
// the result is trimmed. An empty result is valid:
//
//	"john.doe123@x.com" -> "John Doe"
//	"a_b-c@x.com"       -> "A B C"
//	"123@x.com"         -> ""
func DeriveName(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i >= 0 {
		local = email[:i]
	}

	words := strings.FieldsFunc(local, func(r rune) bool {
		return !isASCIILetter(r)
	})

	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}

	return strings.Join(words, " ")
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
