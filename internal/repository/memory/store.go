package memory

import (
	"context"
	"sync"

	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/internal/repository"
)

// Store keeps every entity in process memory. Records are held in id order;
// ids start at 1 and are never reused because nothing is deleted.
type Store struct {
	mu sync.RWMutex

	users        []*model.User
	emails       map[string]int64
	appointments []*model.Appointment
	messages     []*model.Message
	documents    []*model.Document
}

func NewStore() *Store {
	return &Store{emails: make(map[string]int64)}
}

func (s *Store) Users() repository.UserRepository               { return &userRepository{s} }
func (s *Store) Appointments() repository.AppointmentRepository { return &appointmentRepository{s} }
func (s *Store) Messages() repository.MessageRepository         { return &messageRepository{s} }
func (s *Store) Documents() repository.DocumentRepository       { return &documentRepository{s} }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close() error { return nil }

// at returns the record with the given 1-based id from an id-ordered slice
func at[T any](records []*T, id int64) *T {
	if id < 1 || id > int64(len(records)) {
		return nil
	}
	return records[id-1]
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
