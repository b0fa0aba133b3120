package repositories

import (
	"context"
	"database/sql"

	"event-ledger-service/internal/models"
)

type RegistrationRepository interface {
	InsertRegistration(ctx context.Context, tx *sql.Tx, reg *models.Registration) error
	ListRegistrations(ctx context.Context, registrationType string) ([]*models.Registration, error)
}

type registrationRepository struct {
	db *sql.DB
}

func NewRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) InsertRegistration(ctx context.Context, tx *sql.Tx, reg *models.Registration) error {
	query := `
		INSERT INTO registrations (registration_type, name, mobile, amount)
		VALUES (?, ?, ?, ?)
	`
	id, err := insertID(tx.ExecContext(ctx, query,
		reg.RegistrationType,
		reg.Name,
		reg.Mobile,
		reg.Amount,
	))
	if err != nil {
		return err
	}
	reg.ID = id
	return nil
}

// ListRegistrations returns all registrations, or only those of the given type.
func (r *registrationRepository) ListRegistrations(ctx context.Context, registrationType string) ([]*models.Registration, error) {
	query := `
		SELECT id, registration_type, name, mobile, amount, created_at
		FROM registrations
	`
	var args []any
	if registrationType != "" {
		query += ` WHERE registration_type = ?`
		args = append(args, registrationType)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var registrations []*models.Registration
	for rows.Next() {
		reg := &models.Registration{}
		err := rows.Scan(
			&reg.ID,
			&reg.RegistrationType,
			&reg.Name,
			&reg.Mobile,
			&reg.Amount,
			&reg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		registrations = append(registrations, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return registrations, nil
}
