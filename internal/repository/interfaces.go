package repository

import (
	"context"
	"errors"
	"time"

	"github.com/doctaba/telehealth-api/internal/model"
)

// ErrDuplicateEmail is returned when a user is created with an email that
// already belongs to another user.
var ErrDuplicateEmail = errors.New("email already registered")

// All repository interfaces in one file. Lookups of a single record return
// (nil, nil) when the record does not exist.
type (
	UserRepository interface {
		Get(ctx context.Context, id int64) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		GetByIDs(ctx context.Context, ids []int64) ([]*model.User, error)
		List(ctx context.Context) ([]*model.User, error)
		Create(ctx context.Context, user *model.User) error
		// Upsert updates first and last name of the user with the same email,
		// or creates the user with an external credential and patient role.
		Upsert(ctx context.Context, user *model.User) (*model.User, error)
	}

	AppointmentRepository interface {
		ListByUser(ctx context.Context, userID int64, role model.Role) ([]*model.Appointment, error)
		Get(ctx context.Context, id int64) (*model.Appointment, error)
		Create(ctx context.Context, appointment *model.Appointment) error
		UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) (*model.Appointment, error)
	}

	MessageRepository interface {
		ListByUser(ctx context.Context, userID int64) ([]*model.Message, error)
		Conversation(ctx context.Context, user1, user2 int64) ([]*model.Message, error)
		Create(ctx context.Context, message *model.Message) error
		MarkRead(ctx context.Context, id int64) error
	}

	DocumentRepository interface {
		ListByUser(ctx context.Context, userID int64) ([]*model.Document, error)
		Create(ctx context.Context, document *model.Document) error
	}

	SessionRepository interface {
		Create(ctx context.Context, session *model.Session) error
		Get(ctx context.Context, id string) (*model.Session, error)
		Delete(ctx context.Context, id string) error
		DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	}

	// Store groups the entity repositories of one backing implementation
	Store interface {
		Users() UserRepository
		Appointments() AppointmentRepository
		Messages() MessageRepository
		Documents() DocumentRepository
		Ping(ctx context.Context) error
		Close() error
	}
)
