package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/internal/repository"
)

const appointmentColumns = `id, patient_id, doctor_id, "date", "time", status, "type", specialty, notes`

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) ListByUser(ctx context.Context, userID int64, role model.Role) ([]*model.Appointment, error) {
	column := "patient_id"
	if role == model.RoleDoctor {
		column = "doctor_id"
	}
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE %s = $1 ORDER BY id`, appointmentColumns, column)

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			patient_id, doctor_id, "date", "time", status, "type", specialty, notes
		) VALUES (
			:patient_id, :doctor_id, :date, :time, :status, :type, :specialty, :notes
		)
		RETURNING id
	`

	if appointment.Status == "" {
		appointment.Status = model.AppointmentStatusUpcoming
	}

	rows, err := r.db.NamedQueryContext(ctx, query, appointment)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		return fmt.Errorf("failed to create appointment: no id returned")
	}
	if err := rows.Scan(&appointment.ID); err != nil {
		return fmt.Errorf("failed to scan appointment id: %w", err)
	}
	return nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) (*model.Appointment, error) {
	query := `UPDATE appointments SET status = $1 WHERE id = $2 RETURNING ` + appointmentColumns

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, status, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	return &appointment, nil
}
