package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/doctaba/telehealth-api/internal/repository"
)

type Store struct {
	db           *sqlx.DB
	users        repository.UserRepository
	appointments repository.AppointmentRepository
	messages     repository.MessageRepository
	documents    repository.DocumentRepository
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:           db,
		users:        NewUserRepository(db),
		appointments: NewAppointmentRepository(db),
		messages:     NewMessageRepository(db),
		documents:    NewDocumentRepository(db),
	}
}

func (s *Store) Users() repository.UserRepository               { return s.users }
func (s *Store) Appointments() repository.AppointmentRepository { return s.appointments }
func (s *Store) Messages() repository.MessageRepository         { return s.messages }
func (s *Store) Documents() repository.DocumentRepository       { return s.documents }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
