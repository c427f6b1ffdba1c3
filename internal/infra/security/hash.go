package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for principal credentials. Stored hashes embed the
// salt, so these can only be raised for newly written credentials.
const (
	credentialSaltLen        = 16
	credentialTime    uint32 = 1
	credentialMemory  uint32 = 64 * 1024
	credentialThreads uint8  = 4
	credentialKeyLen  uint32 = 32
)

// HashPassword derives an Argon2id credential for the password and
// returns it as "<salt>:<key>", both parts base64-encoded.
func HashPassword(password string) (string, error) {
	salt := make([]byte, credentialSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, credentialTime, credentialMemory, credentialThreads, credentialKeyLen)

	return base64.StdEncoding.EncodeToString(salt) + ":" + base64.StdEncoding.EncodeToString(key), nil
}

// VerifyPassword re-derives the key from the candidate password and the
// stored salt and compares the two in constant time. Empty inputs verify
// as false without error.
func VerifyPassword(password, stored string) (bool, error) {
	if password == "" || stored == "" {
		return false, nil
	}

	salt, key, err := decodeCredential(stored)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, credentialTime, credentialMemory, credentialThreads, uint32(len(key)))

	return subtle.ConstantTimeCompare(candidate, key) == 1, nil
}

func decodeCredential(stored string) (salt, key []byte, err error) {
	parts := strings.Split(stored, ":")
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("invalid password hash format")
	}

	salt, err = base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, nil, fmt.Errorf("decode salt: %w", err)
	}

	key, err = base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, nil, fmt.Errorf("decode stored key: %w", err)
	}

	return salt, key, nil
}
