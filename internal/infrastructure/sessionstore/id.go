package sessionstore

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/nfaa/webapp/internal/core/domain/auth"
)

// idBytes is the number of random bytes in a session id (256 bits).
const idBytes = 32

// generateID reads idBytes from src and encodes them URL-safe without padding.
// A short read or reader failure is reported as auth.ErrEntropy.
func generateID(src io.Reader) (string, error) {
	b := make([]byte, idBytes)
	if _, err := io.ReadFull(src, b); err != nil {
		return "", fmt.Errorf("%w: %v", auth.ErrEntropy, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

var defaultEntropy io.Reader = rand.Reader
