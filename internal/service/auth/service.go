package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/internal/repository"
	"github.com/doctaba/telehealth-api/pkg/auth"
	apperrors "github.com/doctaba/telehealth-api/pkg/errors"
	"github.com/doctaba/telehealth-api/pkg/security"
)

const invalidCredentials = "Invalid email or password"

// IdentityVerifier validates assertions from the external identity provider
type IdentityVerifier interface {
	Verify(token string) (*auth.IdentityClaims, error)
}

type Service struct {
	users    repository.UserRepository
	hasher   security.PasswordHasher
	identity IdentityVerifier
	// dummyHash is compared against when the email is unknown so that
	// unknown and known accounts take the same time to reject.
	dummyHash []byte
}

func NewService(users repository.UserRepository, hasher security.PasswordHasher, identity IdentityVerifier) (*Service, error) {
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}
	return &Service{
		users:     users,
		hasher:    hasher,
		identity:  identity,
		dummyHash: dummy,
	}, nil
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		switch {
		case errors.Is(err, security.ErrPasswordTooShort):
			return nil, apperrors.BadRequest(fmt.Sprintf("Password must be at least %d characters", security.MinPasswordLen), err)
		case errors.Is(err, security.ErrPasswordTooLong):
			return nil, apperrors.BadRequest(fmt.Sprintf("Password must be at most %d bytes", security.MaxPasswordLen), err)
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = model.RolePatient
	}

	user := &model.User{
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Credential: model.LocalCredential(hash),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Role:       role,
		Specialty:  req.Specialty,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("Email already registered", err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil || !user.Credential.HasPassword() {
		_ = s.hasher.Compare(s.dummyHash, password)
		return nil, apperrors.Unauthorized(invalidCredentials)
	}
	if err := s.hasher.Compare(user.Credential.Hash, password); err != nil {
		return nil, apperrors.Unauthorized(invalidCredentials)
	}

	return user, nil
}

// ExternalLogin verifies an identity assertion and upserts the user by email
func (s *Service) ExternalLogin(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.identity.Verify(token)
	if err != nil {
		log.Debug().Err(err).Msg("identity assertion rejected")
		return nil, apperrors.Unauthorized("Invalid identity assertion")
	}

	user, err := s.users.Upsert(ctx, &model.User{
		Email:     strings.ToLower(strings.TrimSpace(claims.Email)),
		FirstName: model.StringPtr(claims.GivenName),
		LastName:  model.StringPtr(claims.FamilyName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

func (s *Service) CurrentUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("User not found")
	}
	return user, nil
}
