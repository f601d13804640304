package user

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/internal/repository"
)

type Service struct {
	repo repository.UserRepository
}

func NewService(repo repository.UserRepository) *Service {
	return &Service{repo: repo}
}

// ListUsers returns every user with the credential removed
func (s *Service) ListUsers(ctx context.Context) ([]model.PublicUser, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return lo.Map(users, func(u *model.User, _ int) model.PublicUser {
		return u.Public()
	}), nil
}
