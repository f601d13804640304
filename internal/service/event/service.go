package event

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/pkg/messaging"
	"github.com/doctaba/telehealth-api/pkg/metrics"
)

// EventService publishes domain events on a single broker channel
type EventService struct {
	broker  messaging.Broker
	channel string
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewEventService(broker messaging.Broker, channel string, m *metrics.Metrics) *EventService {
	return &EventService{
		broker:  broker,
		channel: channel,
		metrics: m,
		now:     time.Now,
	}
}

func (s *EventService) Emit(ctx context.Context, eventType string, payload interface{}) error {
	evt := model.Event{
		Type:       eventType,
		OccurredAt: s.now().UTC(),
		Payload:    payload,
	}

	if err := s.broker.Publish(ctx, s.channel, evt); err != nil {
		if s.metrics != nil {
			s.metrics.EventsFailed.WithLabelValues(eventType).Inc()
		}
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}

	if s.metrics != nil {
		s.metrics.EventsPublished.WithLabelValues(eventType).Inc()
	}
	log.Debug().Str("event_type", eventType).Str("channel", s.channel).Msg("event published")
	return nil
}

// Subscribe returns the raw event stream of the service's channel
func (s *EventService) Subscribe(ctx context.Context) (<-chan []byte, error) {
	return s.broker.Subscribe(ctx, s.channel)
}
