package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	saltLength = 16
	keyLength  = 32
)

// Params tunes the argon2id cost. The values are embedded in each digest, so
// verification keeps working after the defaults change.
type Params struct {
	MemoryKB    uint32
	Iterations  uint32
	Parallelism uint8
}

// DefaultParams follows the argon2id recommendation of 64 MiB memory with a
// single pass.
var DefaultParams = Params{
	MemoryKB:    64 * 1024,
	Iterations:  1,
	Parallelism: 4,
}

// PasswordHasher produces and verifies argon2id digests.
type PasswordHasher struct {
	params Params
}

// NewPasswordHasher constructs a hasher. Zero fields fall back to DefaultParams.
func NewPasswordHasher(params Params) *PasswordHasher {
	if params.MemoryKB == 0 {
		params.MemoryKB = DefaultParams.MemoryKB
	}
	if params.Iterations == 0 {
		params.Iterations = DefaultParams.Iterations
	}
	if params.Parallelism == 0 {
		params.Parallelism = DefaultParams.Parallelism
	}
	return &PasswordHasher{params: params}
}

// Hash derives an argon2id digest with a fresh random salt. Hashing the same
// plaintext twice yields different digests.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(plain), salt, h.params.Iterations, h.params.MemoryKB, h.params.Parallelism, keyLength)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryKB,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify compares plaintext against a digest in constant time. A malformed
// digest verifies as false rather than erroring.
func (h *PasswordHasher) Verify(plain, digest string) bool {
	params, salt, key, err := decodeDigest(digest)
	if err != nil {
		return false
	}
	derived := argon2.IDKey([]byte(plain), salt, params.Iterations, params.MemoryKB, params.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(derived, key) == 1
}

func decodeDigest(digest string) (Params, []byte, []byte, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, fmt.Errorf("malformed digest")
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Params{}, nil, nil, fmt.Errorf("parse version: %w", err)
	}
	if version != argon2.Version {
		return Params{}, nil, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}
	var params Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.MemoryKB, &params.Iterations, &params.Parallelism); err != nil {
		return Params{}, nil, nil, fmt.Errorf("parse params: %w", err)
	}
	if params.MemoryKB == 0 || params.Iterations == 0 || params.Parallelism == 0 {
		return Params{}, nil, nil, fmt.Errorf("invalid params")
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("decode salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("decode key: %w", err)
	}
	if len(key) == 0 {
		return Params{}, nil, nil, fmt.Errorf("empty key")
	}
	return params, salt, key, nil
}
