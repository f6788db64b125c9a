package application

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrMalformedPasswordHash reports a stored hash that is not a PHC-encoded
// argon2id string this service can verify.
var ErrMalformedPasswordHash = errors.New("malformed password hash")

// argon2id cost parameters for newly hashed passwords. Verification reads
// the costs from the stored hash, so these can be raised without
// invalidating existing credentials.
const (
	argonMemoryKiB   = 64 * 1024
	argonIterations  = 3
	argonParallelism = 2
	argonSaltLen     = 16
	argonKeyLen      = 32
)

// HashPassword derives an argon2id hash of password and encodes it in the
// PHC string format ($argon2id$v=19$m=..,t=..,p=..$salt$hash).
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonIterations, argonMemoryKiB, argonParallelism, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemoryKiB, argonIterations, argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword checks password against a PHC-encoded argon2id hash. A
// mismatch returns ErrInvalidCredentials; hashes that cannot be decoded
// return ErrMalformedPasswordHash.
func VerifyPassword(hashedPassword, password string) error {
	salt, expected, memory, iterations, parallelism, err := decodeArgon2idHash(hashedPassword)
	if err != nil {
		return err
	}

	derived := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expected)))
	if subtle.ConstantTimeCompare(expected, derived) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

func decodeArgon2idHash(encoded string) (salt, key []byte, memory, iterations uint32, parallelism uint8, err error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return nil, nil, 0, 0, 0, ErrMalformedPasswordHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, 0, 0, 0, ErrMalformedPasswordHash
	}
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return nil, nil, 0, 0, 0, ErrMalformedPasswordHash
	}

	salt, err = base64.RawStdEncoding.DecodeString(fields[4])
	if err != nil {
		return nil, nil, 0, 0, 0, ErrMalformedPasswordHash
	}
	key, err = base64.RawStdEncoding.DecodeString(fields[5])
	if err != nil {
		return nil, nil, 0, 0, 0, ErrMalformedPasswordHash
	}
	return salt, key, memory, iterations, parallelism, nil
}
