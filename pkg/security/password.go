package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrHashingFailed    = errors.New("password hashing failed")
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
	ErrMismatch         = errors.New("password does not match")
	MinPasswordLen      = 6
	// MaxPasswordLen is the number of bytes bcrypt accepts
	MaxPasswordLen      = 72
)

// PasswordHasher provides interface for password operations
type PasswordHasher interface {
	Hash(password string) ([]byte, error)
	Compare(hash []byte, password string) error
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a new password hasher using bcrypt
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (b *bcryptHasher) Hash(password string) ([]byte, error) {
	if len(password) < MinPasswordLen {
		return nil, ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLen {
		return nil, ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return nil, ErrHashingFailed
	}
	return hash, nil
}

// Compare runs in constant time with respect to the password contents.
func (b *bcryptHasher) Compare(hash []byte, password string) error {
	if len(hash) == 0 {
		return ErrMismatch
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrMismatch
	}
	return nil
}
