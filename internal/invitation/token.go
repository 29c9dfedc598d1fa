package invitation

import (
	"crypto/rand"
	"encoding/hex"
)

// NewToken returns an unguessable invitation token. The token is the
// credential embedded in invite links; the invitation's row id is never
// exposed there.
func NewToken() string {
	bytes := make([]byte, 24)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
