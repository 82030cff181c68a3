package hash

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// DefaultIterations is capped by the CPU-time budget of the hosting
// platform's request handlers, not picked for maximum strength. Raising it
// later needs no schema change: every stored hash carries its own count.
const DefaultIterations = 100000

const (
	algorithm  = "pbkdf2"
	saltLength = 16
	keyLength  = 32

	maxIterations = 10_000_000
)

var ErrMalformed = errors.New("malformed password hash")

// Encoded is a parsed password hash. It is either PBKDF2 or Legacy.
type Encoded interface {
	scheme() string
}

// PBKDF2 is a PBKDF2-HMAC-SHA256 hash in the current format.
type PBKDF2 struct {
	Iterations int
	Salt       []byte
	Digest     []byte
}

func (PBKDF2) scheme() string { return algorithm }

// Legacy is a hash produced by a scheme that is no longer verified. Accounts
// holding one must go through a password reset.
type Legacy struct {
	Scheme string
}

func (l Legacy) scheme() string { return l.Scheme }

type Hasher struct {
	Iterations int
}

func New(iterations int) *Hasher {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &Hasher{Iterations: iterations}
}

func (h *Hasher) iterations() int {
	if h == nil || h.Iterations <= 0 {
		return DefaultIterations
	}
	return h.Iterations
}

func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	iter := h.iterations()
	digest := derive(password, salt, iter)

	return Format(PBKDF2{Iterations: iter, Salt: salt, Digest: digest}), nil
}

// Verify never returns an error: anything that is not a well-formed PBKDF2
// hash matching the candidate is simply a failed verification.
func (h *Hasher) Verify(stored, candidate string) bool {
	enc, err := Parse(stored)
	if err != nil {
		return false
	}

	switch v := enc.(type) {
	case PBKDF2:
		computed := derive(candidate, v.Salt, v.Iterations)
		return Equal(computed, v.Digest)
	case Legacy:
		return false
	default:
		return false
	}
}

// NeedsRehash reports whether stored should be replaced with a fresh hash
// at the hasher's current cost.
func (h *Hasher) NeedsRehash(stored string) bool {
	enc, err := Parse(stored)
	if err != nil {
		return true
	}

	switch v := enc.(type) {
	case PBKDF2:
		return v.Iterations < h.iterations()
	default:
		return true
	}
}

// Equal compares a and b in time that depends only on their lengths. The
// difference is accumulated over every byte; there is no early exit.
func Equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

func Format(p PBKDF2) string {
	return fmt.Sprintf("%s:%d:%s:%s", algorithm, p.Iterations, hex.EncodeToString(p.Salt), hex.EncodeToString(p.Digest))
}

// Parse decodes a stored hash. Only the canonical encoding is accepted
// (decimal iterations without sign or padding, lowercase hex), so any edit
// to a stored string changes what it decodes to or makes it invalid.
func Parse(stored string) (Encoded, error) {
	if strings.HasPrefix(stored, "$argon2") {
		return Legacy{Scheme: "argon2"}, nil
	}

	parts := strings.Split(stored, ":")
	if len(parts) != 4 {
		return nil, ErrMalformed
	}
	if parts[0] != algorithm {
		return nil, fmt.Errorf("%w: unknown algorithm %q", ErrMalformed, parts[0])
	}

	iter, err := strconv.Atoi(parts[1])
	if err != nil || iter <= 0 || iter > maxIterations || strconv.Itoa(iter) != parts[1] {
		return nil, fmt.Errorf("%w: bad iteration count", ErrMalformed)
	}

	salt, err := decodeHex(parts[2])
	if err != nil || len(salt) == 0 {
		return nil, fmt.Errorf("%w: bad salt", ErrMalformed)
	}

	digest, err := decodeHex(parts[3])
	if err != nil || len(digest) != keyLength {
		return nil, fmt.Errorf("%w: bad digest", ErrMalformed)
	}

	return PBKDF2{Iterations: iter, Salt: salt, Digest: digest}, nil
}

func decodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if hex.EncodeToString(b) != s {
		return nil, errors.New("non-canonical hex")
	}
	return b, nil
}

func derive(password string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha256.New)
}

// Sha256Hex is the storage key for bearer secrets (session tokens, reset
// tokens, api keys). Raw secrets are never persisted.
func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
