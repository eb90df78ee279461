package auth

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/argon2"
)

// Argon2 parameters for key derivation
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
)

// HashServiceKey derives the hex digest stored in SERVICE_API_KEY_HASHES.
func HashServiceKey(key string, salt []byte) string {
	return hex.EncodeToString(deriveKey(key, salt))
}

func deriveKey(key string, salt []byte) []byte {
	return argon2.IDKey([]byte(key), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
}

// ServiceKeys verifies the static keys calling services present. Keys that
// verified once are remembered by their blake3 digest so the argon2
// derivation runs once per key rather than once per request.
type ServiceKeys struct {
	hashes   [][]byte
	salt     []byte
	verified sync.Map // blake3 digest -> struct{}
}

// NewServiceKeys decodes the configured hex digests. An empty list disables
// service key checks.
func NewServiceKeys(hexHashes []string, salt string) (*ServiceKeys, error) {
	k := &ServiceKeys{salt: []byte(salt)}
	for i, h := range hexHashes {
		b, err := hex.DecodeString(h)
		if err != nil || len(b) != argon2KeyLen {
			return nil, fmt.Errorf(msgInvalidKeyHashFmt, i, argon2KeyLen)
		}
		k.hashes = append(k.hashes, b)
	}
	return k, nil
}

func (k *ServiceKeys) Enabled() bool {
	return len(k.hashes) > 0
}

// KeyID is a short stable identifier for key that does not reveal it.
func KeyID(key string) string {
	digest := blake3.Sum256([]byte(key))
	return hex.EncodeToString(digest[:8])
}

// Verify reports whether key matches one of the configured digests. Every
// digest is compared so the time taken does not reveal which one matched.
func (k *ServiceKeys) Verify(key string) bool {
	if key == "" || !k.Enabled() {
		return false
	}

	digest := blake3.Sum256([]byte(key))
	if _, ok := k.verified.Load(digest); ok {
		return true
	}

	derived := deriveKey(key, k.salt)
	match := 0
	for _, h := range k.hashes {
		match |= subtle.ConstantTimeCompare(derived, h)
	}
	if match != 1 {
		return false
	}

	k.verified.Store(digest, struct{}{})
	return true
}
