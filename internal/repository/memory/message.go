package memory

import (
	"context"
	"time"

	"github.com/doctaba/telehealth-api/internal/model"
)

type messageRepository struct {
	s *Store
}

func (r *messageRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.Message
	for _, m := range r.s.messages {
		if m.Involves(userID) {
			out = append(out, clone(m))
		}
	}
	return out, nil
}

func (r *messageRepository) Conversation(ctx context.Context, user1, user2 int64) ([]*model.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.Message
	for _, m := range r.s.messages {
		if (m.SenderID == user1 && m.ReceiverID == user2) || (m.SenderID == user2 && m.ReceiverID == user1) {
			out = append(out, clone(m))
		}
	}
	return out, nil
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	message.ID = int64(len(r.s.messages)) + 1
	message.Timestamp = time.Now()
	message.Read = false
	r.s.messages = append(r.s.messages, clone(message))
	return nil
}

func (r *messageRepository) MarkRead(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if m := at(r.s.messages, id); m != nil {
		m.Read = true
	}
	return nil
}
