package model

import (
	"strings"
	"time"
)

// Role of a user account
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

// CredentialKind discriminates how a user proves their identity
type CredentialKind string

const (
	CredentialLocal    CredentialKind = "local"
	CredentialExternal CredentialKind = "external"
)

// Credential is either a local password hash or a marker for an identity
// managed by an external provider. An external credential has no hash and
// never verifies a password.
type Credential struct {
	Kind CredentialKind
	Hash []byte
}

func LocalCredential(hash []byte) Credential {
	return Credential{Kind: CredentialLocal, Hash: hash}
}

func ExternalCredential() Credential {
	return Credential{Kind: CredentialExternal}
}

// HasPassword reports whether the credential can be checked against a password
func (c Credential) HasPassword() bool {
	return c.Kind == CredentialLocal && len(c.Hash) > 0
}

// User represents a registered patient or doctor
type User struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	Credential Credential `json:"-"`
	FirstName  *string    `json:"firstName"`
	LastName   *string    `json:"lastName"`
	Role       Role       `json:"userType"`
	Specialty  *string    `json:"specialty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// PublicUser is the externally visible shape of a user, without credential
type PublicUser struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName *string   `json:"firstName"`
	LastName  *string   `json:"lastName"`
	Role      Role      `json:"userType"`
	Specialty *string   `json:"specialty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		Specialty: u.Specialty,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// DisplayName joins first and last name the way the client renders them
func (u *User) DisplayName() string {
	return strings.TrimSpace(deref(u.FirstName) + " " + deref(u.LastName))
}

// RegisterRequest represents local account registration
type RegisterRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=6,max=72"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Role      Role    `json:"userType" binding:"omitempty,role"`
	Specialty *string `json:"specialty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ExternalLoginRequest carries an identity assertion issued by the external provider
type ExternalLoginRequest struct {
	Token string `json:"token" binding:"required"`
}

// ExternalIdentity is the verified content of an identity assertion
type ExternalIdentity struct {
	Email     string
	FirstName *string
	LastName  *string
}

// StringPtr returns nil for an empty string
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
