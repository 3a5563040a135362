package region

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

// Region names cannot contain '-': a token with a hyphen is always an id.
var allowedName = regexp.MustCompile(`^[A-Za-z0-9]+$`)

const nameAlphabet = "AaBbCcDdEeFfGgHhIiJjKkLlMmNnOoPpQqRrSsTtUuVvWwXxYyZz0123456789"

// RandomNameLength is the length of generated names.
const RandomNameLength = 8

// ValidName reports whether name uses only allowed characters.
func ValidName(name string) bool {
	return allowedName.MatchString(name)
}

// randomName returns n characters drawn from nameAlphabet.
func randomName(n int) (string, error) {
	buf := make([]byte, n)
	max := big.NewInt(int64(len(nameAlphabet)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = nameAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
