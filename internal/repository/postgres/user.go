package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/internal/repository"
)

const userColumns = `id, email, auth_provider, password_hash, first_name, last_name, user_type, specialty, created_at, updated_at`

const uniqueViolation = "23505"

type userRow struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	AuthProvider string    `db:"auth_provider"`
	PasswordHash *string   `db:"password_hash"`
	FirstName    *string   `db:"first_name"`
	LastName     *string   `db:"last_name"`
	Role         string    `db:"user_type"`
	Specialty    *string   `db:"specialty"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *userRow) toModel() *model.User {
	cred := model.ExternalCredential()
	if model.CredentialKind(r.AuthProvider) == model.CredentialLocal && r.PasswordHash != nil {
		cred = model.LocalCredential([]byte(*r.PasswordHash))
	}
	return &model.User{
		ID:         r.ID,
		Email:      r.Email,
		Credential: cred,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Role:       model.Role(r.Role),
		Specialty:  r.Specialty,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func credentialColumns(c model.Credential) (string, *string) {
	if c.Kind == model.CredentialLocal && len(c.Hash) > 0 {
		hash := string(c.Hash)
		return string(model.CredentialLocal), &hash
	}
	return string(model.CredentialExternal), nil
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Get(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return row.toModel(), nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1) ORDER BY id`

	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to get users by ids: %w", err)
	}
	return toUsers(rows), nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return toUsers(rows), nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			email, auth_provider, password_hash, first_name, last_name, user_type, specialty
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	if user.Role == "" {
		user.Role = model.RolePatient
	}
	provider, hash := credentialColumns(user.Credential)

	err := r.db.QueryRowxContext(ctx, query,
		user.Email,
		provider,
		hash,
		user.FirstName,
		user.LastName,
		user.Role,
		user.Specialty,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Upsert(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
		INSERT INTO users (email, auth_provider, first_name, last_name, user_type)
		VALUES ($1, 'external', $2, $3, 'patient')
		ON CONFLICT (email) DO UPDATE SET
			first_name = COALESCE(EXCLUDED.first_name, users.first_name),
			last_name  = COALESCE(EXCLUDED.last_name, users.last_name),
			updated_at = NOW()
		RETURNING ` + userColumns

	var row userRow
	if err := r.db.QueryRowxContext(ctx, query, user.Email, user.FirstName, user.LastName).StructScan(&row); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return row.toModel(), nil
}

func toUsers(rows []userRow) []*model.User {
	users := make([]*model.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toModel())
	}
	return users
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
