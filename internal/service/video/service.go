package video

import (
	"context"
	"fmt"

	"github.com/doctaba/telehealth-api/internal/model"
)

const roomPrefix = "doctaba-appointment-"

// AppointmentGetter resolves an appointment or returns a not-found error
type AppointmentGetter interface {
	Get(ctx context.Context, id int64) (*model.Appointment, error)
}

// Service describes the hosted conference room for an appointment. The
// conference itself runs entirely in the client widget.
type Service struct {
	appointments AppointmentGetter
	domain       string
}

func NewService(appointments AppointmentGetter, domain string) *Service {
	return &Service{appointments: appointments, domain: domain}
}

func RoomName(appointmentID int64) string {
	return fmt.Sprintf("%s%d", roomPrefix, appointmentID)
}

func (s *Service) Room(ctx context.Context, appointmentID int64) (*model.VideoRoom, error) {
	appointment, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	return &model.VideoRoom{
		AppointmentID: appointment.ID,
		RoomName:      RoomName(appointment.ID),
		Domain:        s.domain,
		Config: map[string]any{
			"startWithAudioMuted": false,
			"startWithVideoMuted": false,
			"prejoinPageEnabled":  false,
			"domain":              s.domain,
		},
	}, nil
}
