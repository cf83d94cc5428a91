package api

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	idLength = 24
	charset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	actionIDPrefix = "act_"
)

var actionIDPattern = regexp.MustCompile(`^act_[a-zA-Z0-9]{24}$`)

// NewActionID generates a new action history ID with the "act_" prefix
// followed by 24 cryptographically random alphanumeric characters.
func NewActionID() string {
	return actionIDPrefix + randomAlphanumeric(idLength)
}

// ValidateActionID checks whether the given string is a valid action ID.
func ValidateActionID(id string) bool {
	return actionIDPattern.MatchString(id)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}
