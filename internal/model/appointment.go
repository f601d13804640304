package model

type AppointmentStatus string

const (
	AppointmentStatusUpcoming  AppointmentStatus = "upcoming"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusUpcoming, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

type AppointmentType string

const (
	AppointmentTypeVideo    AppointmentType = "video"
	AppointmentTypePhone    AppointmentType = "phone"
	AppointmentTypeInPerson AppointmentType = "in-person"
)

func (t AppointmentType) Valid() bool {
	switch t {
	case AppointmentTypeVideo, AppointmentTypePhone, AppointmentTypeInPerson:
		return true
	}
	return false
}

// Appointment is a booked consultation between a patient and a doctor.
// Date is a calendar date (YYYY-MM-DD) and Time a free-text label.
type Appointment struct {
	ID        int64             `json:"id" db:"id"`
	PatientID int64             `json:"patientId" db:"patient_id"`
	DoctorID  int64             `json:"doctorId" db:"doctor_id"`
	Date      string            `json:"date" db:"date"`
	Time      string            `json:"time" db:"time"`
	Status    AppointmentStatus `json:"status" db:"status"`
	Type      AppointmentType   `json:"type" db:"type"`
	Specialty *string           `json:"specialty" db:"specialty"`
	Notes     *string           `json:"notes" db:"notes"`
}

// AppointmentDetail is an appointment enriched with counterpart names
type AppointmentDetail struct {
	Appointment
	DoctorName      string `json:"doctorName"`
	PatientName     string `json:"patientName"`
	DoctorSpecialty string `json:"doctorSpecialty"`
}

const (
	UnknownDoctorName      = "Unknown Doctor"
	UnknownPatientName     = "Unknown Patient"
	DefaultDoctorSpecialty = "General Medicine"
)

type CreateAppointmentRequest struct {
	PatientID int64             `json:"patientId" binding:"required,gt=0"`
	DoctorID  int64             `json:"doctorId" binding:"required,gt=0"`
	Date      string            `json:"date" binding:"required,calendar_date"`
	Time      string            `json:"time" binding:"required,notblank"`
	Status    AppointmentStatus `json:"status" binding:"omitempty,appointment_status"`
	Type      AppointmentType   `json:"type" binding:"required,appointment_type"`
	Specialty *string           `json:"specialty"`
	Notes     *string           `json:"notes"`
}

// ToAppointment converts the request into a record ready for insertion
func (r *CreateAppointmentRequest) ToAppointment() *Appointment {
	status := r.Status
	if status == "" {
		status = AppointmentStatusUpcoming
	}
	return &Appointment{
		PatientID: r.PatientID,
		DoctorID:  r.DoctorID,
		Date:      r.Date,
		Time:      r.Time,
		Status:    status,
		Type:      r.Type,
		Specialty: r.Specialty,
		Notes:     r.Notes,
	}
}

type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status"`
}

// VideoRoom describes the hosted conference room for an appointment
type VideoRoom struct {
	AppointmentID int64          `json:"appointmentId"`
	RoomName      string         `json:"roomName"`
	Domain        string         `json:"domain"`
	Config        map[string]any `json:"config"`
}
