package message

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/internal/repository"
)

type EventEmitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

type Service struct {
	repo   repository.MessageRepository
	events EventEmitter
}

func NewService(repo repository.MessageRepository, events EventEmitter) *Service {
	return &Service{repo: repo, events: events}
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*model.Message, error) {
	messages, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return nonNil(messages), nil
}

func (s *Service) Conversation(ctx context.Context, user1, user2 int64) ([]*model.Message, error) {
	messages, err := s.repo.Conversation(ctx, user1, user2)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return nonNil(messages), nil
}

func (s *Service) Send(ctx context.Context, req *model.CreateMessageRequest) (*model.Message, error) {
	msg := req.ToMessage()
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	if s.events != nil {
		if err := s.events.Emit(ctx, model.EventMessageSent, msg); err != nil {
			log.Warn().Err(err).Int64("message_id", msg.ID).Msg("failed to emit event")
		}
	}
	return msg, nil
}

// MarkRead is idempotent and silent for unknown ids
func (s *Service) MarkRead(ctx context.Context, id int64) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	return nil
}

// Conversations groups the user's messages by counterpart, most recent
// conversation first. Unread counts only cover messages the user received.
func (s *Service) Conversations(ctx context.Context, userID int64) ([]model.ConversationSummary, error) {
	messages, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	groups := lo.GroupBy(messages, func(m *model.Message) int64 {
		return m.Counterpart(userID)
	})

	summaries := make([]model.ConversationSummary, 0, len(groups))
	for counterpart, msgs := range groups {
		last := lo.MaxBy(msgs, func(a, b *model.Message) bool {
			if a.Timestamp.Equal(b.Timestamp) {
				return a.ID > b.ID
			}
			return a.Timestamp.After(b.Timestamp)
		})
		summaries = append(summaries, model.ConversationSummary{
			UserID:      counterpart,
			LastMessage: last,
			UnreadCount: lo.CountBy(msgs, func(m *model.Message) bool {
				return m.ReceiverID == userID && !m.Read
			}),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessage, summaries[j].LastMessage
		if a.Timestamp.Equal(b.Timestamp) {
			return a.ID > b.ID
		}
		return a.Timestamp.After(b.Timestamp)
	})
	return summaries, nil
}

func nonNil(messages []*model.Message) []*model.Message {
	if messages == nil {
		return []*model.Message{}
	}
	return messages
}
