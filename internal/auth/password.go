// PASSWORD SCHEMES:
// Accounts created by the browser build carry an unsalted SHA-256 digest of
// the password, hex-encoded (64 lowercase hex characters). Those records must
// keep verifying, so "sha256" is the default scheme and produces exactly that
// format.
//
// "bcrypt" is the slow, salted alternative. It is selected with
// auth.password_scheme in the config. Verify looks at the stored hash, not at
// the configured scheme, so a store holding both formats works whichever
// scheme new accounts use.
//
// bcrypt hash format (the full output of bcrypt.GenerateFromPassword):
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (12 rounds → 2^12 = 4096 iterations)
//	 version

package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Scheme names a password hashing scheme.
type Scheme string

const (
	SchemeSHA256 Scheme = "sha256"
	SchemeBcrypt Scheme = "bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
//
// COST TUNING RULE OF THUMB:
// Set cost so that hashing takes ~200–300ms on your production hardware.
const DefaultCost = 12

// ErrPasswordMismatch is returned by Verify when the password is wrong.
var ErrPasswordMismatch = errors.New("auth: invalid password")

// PasswordService hashes new passwords with one scheme and verifies hashes
// of any supported scheme.
type PasswordService struct {
	scheme Scheme
	cost   int
}

// NewPasswordService validates the scheme and cost. A zero cost means
// DefaultCost; the cost is ignored by the sha256 scheme.
func NewPasswordService(scheme Scheme, cost int) (*PasswordService, error) {
	switch scheme {
	case SchemeSHA256, SchemeBcrypt:
	case "":
		scheme = SchemeSHA256
	default:
		return nil, fmt.Errorf("auth: unknown password scheme %q", scheme)
	}
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("auth: bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &PasswordService{scheme: scheme, cost: cost}, nil
}

// Scheme reports the scheme used for new hashes.
func (p *PasswordService) Scheme() Scheme {
	return p.scheme
}

// Hash hashes plaintext with the configured scheme.
//
// bcrypt silently truncates passwords longer than 72 bytes, so the bcrypt
// scheme rejects them explicitly.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if p.scheme == SchemeSHA256 {
		return sha256Hex(plaintext), nil
	}

	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks plaintext against a stored hash of either scheme.
// Returns nil on a match and ErrPasswordMismatch on a wrong password.
//
// Both paths compare in constant time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	if strings.HasPrefix(hash, "$2") {
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
		if err != nil {
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return ErrPasswordMismatch
			}
			return fmt.Errorf("auth: comparing password hash: %w", err)
		}
		return nil
	}

	want := strings.ToLower(hash)
	got := sha256Hex(plaintext)
	if subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

func sha256Hex(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
