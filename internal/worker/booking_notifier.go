package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/doctaba/telehealth-api/internal/email"
	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/internal/repository"
)

// EventSource yields raw domain events
type EventSource interface {
	Subscribe(ctx context.Context) (<-chan []byte, error)
}

// BookingNotifier mails the doctor whenever an appointment is booked
type BookingNotifier struct {
	events EventSource
	users  repository.UserRepository
	mailer email.Service
}

func NewBookingNotifier(events EventSource, users repository.UserRepository, mailer email.Service) *BookingNotifier {
	return &BookingNotifier{
		events: events,
		users:  users,
		mailer: mailer,
	}
}

// Start consumes events until ctx is cancelled or the stream closes
func (w *BookingNotifier) Start(ctx context.Context) error {
	stream, err := w.events.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to events: %w", err)
	}

	go func() {
		for raw := range stream {
			if err := w.Handle(ctx, raw); err != nil {
				log.Error().Err(err).Msg("booking notification failed")
			}
		}
	}()
	return nil
}

type rawEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (w *BookingNotifier) Handle(ctx context.Context, raw []byte) error {
	var evt rawEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}
	if evt.Type != model.EventAppointmentBooked {
		return nil
	}

	var apt model.Appointment
	if err := json.Unmarshal(evt.Payload, &apt); err != nil {
		return fmt.Errorf("failed to decode appointment: %w", err)
	}
	doctor, err := w.users.Get(ctx, apt.DoctorID)
	if err != nil {
		return fmt.Errorf("failed to get doctor: %w", err)
	}
	if doctor == nil {
		log.Warn().Int64("appointment_id", apt.ID).Msg("booked appointment references unknown doctor")
		return nil
	}

	patientName := model.UnknownPatientName
	patient, err := w.users.Get(ctx, apt.PatientID)
	if err != nil {
		return fmt.Errorf("failed to get patient: %w", err)
	}
	if patient != nil && patient.DisplayName() != "" {
		patientName = patient.DisplayName()
	}

	subject := "New appointment booked"
	body := fmt.Sprintf(
		"%s booked a %s appointment on %s at %s.",
		patientName, apt.Type, apt.Date, apt.Time,
	)
	return w.mailer.Send(ctx, doctor.Email, subject, body)
}
