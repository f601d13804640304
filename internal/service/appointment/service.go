package appointment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/internal/repository"
	apperrors "github.com/doctaba/telehealth-api/pkg/errors"
)

const notFoundMessage = "Appointment not found"

// EventEmitter publishes domain events
type EventEmitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

type Service struct {
	repo   repository.AppointmentRepository
	users  repository.UserRepository
	events EventEmitter
}

func NewService(repo repository.AppointmentRepository, users repository.UserRepository, events EventEmitter) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		events: events,
	}
}

// ListForUser returns the appointments where the user takes part in their
// own role, enriched with participant names.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]model.AppointmentDetail, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("User not found")
	}

	appointments, err := s.repo.ListByUser(ctx, userID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return s.enrich(ctx, appointments)
}

// enrich resolves every referenced user in one batch and joins in memory
func (s *Service) enrich(ctx context.Context, appointments []*model.Appointment) ([]model.AppointmentDetail, error) {
	if len(appointments) == 0 {
		return []model.AppointmentDetail{}, nil
	}

	ids := lo.Uniq(lo.FlatMap(appointments, func(a *model.Appointment, _ int) []int64 {
		return []int64{a.PatientID, a.DoctorID}
	}))
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve appointment participants: %w", err)
	}
	byID := lo.KeyBy(users, func(u *model.User) int64 { return u.ID })

	return lo.Map(appointments, func(a *model.Appointment, _ int) model.AppointmentDetail {
		return detail(a, byID[a.DoctorID], byID[a.PatientID])
	}), nil
}

func detail(a *model.Appointment, doctor, patient *model.User) model.AppointmentDetail {
	d := model.AppointmentDetail{
		Appointment:     *a,
		DoctorName:      model.UnknownDoctorName,
		PatientName:     model.UnknownPatientName,
		DoctorSpecialty: model.DefaultDoctorSpecialty,
	}
	if doctor != nil {
		if name := doctor.DisplayName(); name != "" {
			d.DoctorName = "Dr. " + name
		}
		if doctor.Specialty != nil && *doctor.Specialty != "" {
			d.DoctorSpecialty = *doctor.Specialty
		}
	}
	if patient != nil {
		if name := patient.DisplayName(); name != "" {
			d.PatientName = name
		}
	}
	return d
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if appointment == nil {
		return nil, apperrors.NotFound(notFoundMessage)
	}
	return appointment, nil
}

// Book inserts the appointment unconditionally. There is no conflict or
// ownership check.
func (s *Service) Book(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	appointment := req.ToAppointment()
	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.emit(ctx, model.EventAppointmentBooked, appointment)
	return appointment, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) (*model.Appointment, error) {
	if status == "" {
		return nil, apperrors.BadRequest("Status is required", nil)
	}
	if !status.Valid() {
		return nil, apperrors.BadRequest("Invalid appointment status", nil)
	}

	appointment, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	if appointment == nil {
		return nil, apperrors.NotFound(notFoundMessage)
	}

	s.emit(ctx, model.EventAppointmentStatusChanged, appointment)
	return appointment, nil
}

func (s *Service) emit(ctx context.Context, eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("failed to emit event")
	}
}
