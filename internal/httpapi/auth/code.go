package auth

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// CodeLength is the number of digits in a confirmation code.
const CodeLength = 5

// dummyHash is a valid bcrypt hash used to equalize timing when the user
// does not exist.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOHi6VbU5h6K9v8u5rO0m3j0h6dX5r8e"

// GenerateConfirmationCode returns a code of CodeLength distinct decimal
// digits. The space is deliberately small; the code is a short-lived shared
// secret delivered over email, not a password.
func GenerateConfirmationCode() string {
	perm := rand.Perm(10)
	var b strings.Builder
	for _, d := range perm[:CodeLength] {
		b.WriteString(strconv.Itoa(d))
	}
	return b.String()
}

// HashCode creates a bcrypt hash of the confirmation code for storage at rest.
func HashCode(code string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyCode checks the submitted code against the stored bcrypt hash.
// bcrypt's comparison is constant time over the hash.
func VerifyCode(hashedCode, providedCode string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedCode), []byte(providedCode))
}

// DummyVerify burns a bcrypt comparison so lookups for unknown users take
// about as long as real ones.
func DummyVerify(providedCode string) {
	bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(providedCode))
}
