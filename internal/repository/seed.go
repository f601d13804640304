package repository

import (
	"context"
	"fmt"

	"github.com/doctaba/telehealth-api/internal/model"
)

const (
	SeedDoctorEmail  = "doctor@doctaba.com"
	SeedPatientEmail = "patient@doctaba.com"
	SeedPassword     = "password123"
)

// Seed loads the demo doctor and patient with one conversation, two
// appointments and a lab result. A missing demo user is recreated, but the
// fixtures are only inserted when neither user existed, so they are never
// duplicated.
func Seed(ctx context.Context, store Store, hash func(password string) ([]byte, error)) error {
	users := store.Users()

	doctor, err := users.GetByEmail(ctx, SeedDoctorEmail)
	if err != nil {
		return err
	}
	patient, err := users.GetByEmail(ctx, SeedPatientEmail)
	if err != nil {
		return err
	}
	if doctor != nil && patient != nil {
		return nil
	}
	fresh := doctor == nil && patient == nil

	hashed, err := hash(SeedPassword)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	if doctor == nil {
		doctor = &model.User{
			Email:      SeedDoctorEmail,
			Credential: model.LocalCredential(hashed),
			FirstName:  model.StringPtr("John"),
			LastName:   model.StringPtr("Smith"),
			Role:       model.RoleDoctor,
			Specialty:  model.StringPtr("Cardiology"),
		}
		if err := users.Create(ctx, doctor); err != nil {
			return fmt.Errorf("failed to seed doctor: %w", err)
		}
	}
	if patient == nil {
		patient = &model.User{
			Email:      SeedPatientEmail,
			Credential: model.LocalCredential(hashed),
			FirstName:  model.StringPtr("Jane"),
			LastName:   model.StringPtr("Doe"),
			Role:       model.RolePatient,
		}
		if err := users.Create(ctx, patient); err != nil {
			return fmt.Errorf("failed to seed patient: %w", err)
		}
	}

	if !fresh {
		return nil
	}

	appointments := []*model.Appointment{
		{
			PatientID: patient.ID,
			DoctorID:  doctor.ID,
			Date:      "2025-01-30",
			Time:      "10:00 AM",
			Status:    model.AppointmentStatusUpcoming,
			Type:      model.AppointmentTypeVideo,
			Specialty: model.StringPtr("Cardiology"),
			Notes:     model.StringPtr("Routine checkup"),
		},
		{
			PatientID: patient.ID,
			DoctorID:  doctor.ID,
			Date:      "2025-01-25",
			Time:      "2:30 PM",
			Status:    model.AppointmentStatusCompleted,
			Type:      model.AppointmentTypeVideo,
			Specialty: model.StringPtr("Cardiology"),
			Notes:     model.StringPtr("Follow-up consultation"),
		},
	}
	for _, a := range appointments {
		if err := store.Appointments().Create(ctx, a); err != nil {
			return fmt.Errorf("failed to seed appointment: %w", err)
		}
	}

	msg := &model.Message{
		SenderID:   patient.ID,
		ReceiverID: doctor.ID,
		Content:    "Hello Doctor, I have a question about my medication.",
	}
	if err := store.Messages().Create(ctx, msg); err != nil {
		return fmt.Errorf("failed to seed message: %w", err)
	}

	doc := &model.Document{
		UserID: patient.ID,
		Title:  "Blood Test Results",
		Type:   model.DocumentTypeLabResult,
		URL:    "/documents/blood-test-results.pdf",
	}
	if err := store.Documents().Create(ctx, doc); err != nil {
		return fmt.Errorf("failed to seed document: %w", err)
	}

	return nil
}
