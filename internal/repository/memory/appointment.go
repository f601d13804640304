package memory

import (
	"context"

	"github.com/doctaba/telehealth-api/internal/model"
)

type appointmentRepository struct {
	s *Store
}

func (r *appointmentRepository) ListByUser(ctx context.Context, userID int64, role model.Role) ([]*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.Appointment
	for _, a := range r.s.appointments {
		owner := a.PatientID
		if role == model.RoleDoctor {
			owner = a.DoctorID
		}
		if owner == userID {
			out = append(out, clone(a))
		}
	}
	return out, nil
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return clone(at(r.s.appointments, id)), nil
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if appointment.Status == "" {
		appointment.Status = model.AppointmentStatusUpcoming
	}
	appointment.ID = int64(len(r.s.appointments)) + 1
	r.s.appointments = append(r.s.appointments, clone(appointment))
	return nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) (*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a := at(r.s.appointments, id)
	if a == nil {
		return nil, nil
	}
	a.Status = status
	return clone(a), nil
}
