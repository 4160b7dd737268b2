package accountd

import (
	"crypto/rand"
	"encoding/hex"

	goerrors "github.com/goliatone/go-errors"
)

// ConfirmationTokenBytes is the entropy carried by a confirmation token.
const ConfirmationTokenBytes = 32

// GenerateToken returns nBytes of cryptographically secure randomness as
// a hex string of length 2*nBytes. Uniqueness is not guaranteed here;
// the users table carries a unique index on confirmation_token for
// defense in depth.
func GenerateToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		return "", goerrors.New("token size must be positive", goerrors.CategoryBadInput)
	}

	buf := make([]byte, nBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read random bytes")
	}

	return hex.EncodeToString(buf), nil
}
