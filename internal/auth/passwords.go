package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrMalformedHash is returned when a stored hash is not a PHC formatted
// argon2id string this package can verify.
var ErrMalformedHash = errors.New("auth: malformed password hash")

type hashParams struct {
	memory  uint32
	time    uint32
	threads uint8
	saltLen int
	keyLen  uint32
}

var passwordParams = hashParams{
	memory:  64 * 1024,
	time:    3,
	threads: 2,
	saltLen: 16,
	keyLen:  32,
}

var b64 = base64.RawStdEncoding

// HashPassword derives an argon2id key with a random salt and returns it in
// the $argon2id$v=19$m=..,t=..,p=..$salt$key form.
func HashPassword(plaintext string) (string, error) {
	return passwordParams.hash(plaintext)
}

// VerifyPassword reports whether plaintext matches hash. The parameters are
// taken from the hash itself so older hashes keep verifying after a tuning
// change.
func VerifyPassword(hash, plaintext string) (bool, error) {
	p, salt, want, err := decodeHash(hash)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(plaintext), salt, p.time, p.memory, p.threads, p.keyLen)
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

func (p hashParams) hash(plaintext string) (string, error) {
	salt := make([]byte, p.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	key := argon2.IDKey([]byte(plaintext), salt, p.time, p.memory, p.threads, p.keyLen)

	var sb strings.Builder
	fmt.Fprintf(&sb, "$argon2id$v=%d$m=%d,t=%d,p=%d", argon2.Version, p.memory, p.time, p.threads)
	sb.WriteString("$" + b64.EncodeToString(salt))
	sb.WriteString("$" + b64.EncodeToString(key))
	return sb.String(), nil
}

func decodeHash(hash string) (hashParams, []byte, []byte, error) {
	fields := strings.Split(hash, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return hashParams{}, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return hashParams{}, nil, nil, ErrMalformedHash
	}
	if version != argon2.Version {
		return hashParams{}, nil, nil, fmt.Errorf("auth: unsupported argon2 version %d", version)
	}

	var p hashParams
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return hashParams{}, nil, nil, ErrMalformedHash
	}

	salt, err := b64.DecodeString(fields[4])
	if err != nil || len(salt) == 0 {
		return hashParams{}, nil, nil, ErrMalformedHash
	}
	key, err := b64.DecodeString(fields[5])
	if err != nil || len(key) == 0 {
		return hashParams{}, nil, nil, ErrMalformedHash
	}
	p.saltLen = len(salt)
	p.keyLen = uint32(len(key))
	return p, salt, key, nil
}
