package memory

import (
	"context"
	"time"

	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/internal/repository"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Get(ctx context.Context, id int64) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return clone(at(r.s.users, id)), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.emails[email]
	if !ok {
		return nil, nil
	}
	return clone(at(r.s.users, id)), nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		if u := at(r.s.users, id); u != nil {
			users = append(users, clone(u))
		}
	}
	return users, nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]*model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, clone(u))
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.insert(user)
}

func (r *userRepository) Upsert(ctx context.Context, user *model.User) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if id, ok := r.s.emails[user.Email]; ok {
		existing := at(r.s.users, id)
		if user.FirstName != nil {
			existing.FirstName = user.FirstName
		}
		if user.LastName != nil {
			existing.LastName = user.LastName
		}
		existing.UpdatedAt = time.Now()
		return clone(existing), nil
	}

	created := &model.User{
		Email:      user.Email,
		Credential: model.ExternalCredential(),
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Role:       model.RolePatient,
	}
	if err := r.insert(created); err != nil {
		return nil, err
	}
	return clone(created), nil
}

// insert expects the write lock to be held
func (r *userRepository) insert(user *model.User) error {
	if _, ok := r.s.emails[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	if user.Role == "" {
		user.Role = model.RolePatient
	}

	now := time.Now()
	user.ID = int64(len(r.s.users)) + 1
	user.CreatedAt = now
	user.UpdatedAt = now

	r.s.users = append(r.s.users, clone(user))
	r.s.emails[user.Email] = user.ID
	return nil
}
