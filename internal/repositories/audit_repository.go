package repositories

import (
	"context"
	"database/sql"

	"event-ledger-service/internal/models"
)

type AuditRepository interface {
	CreateAuditEntry(ctx context.Context, tx *sql.Tx, audit *models.AuditEntry) error
	ListAuditEntries(ctx context.Context, entityType string, entityID int64) ([]*models.AuditEntry, error)
}

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) CreateAuditEntry(ctx context.Context, tx *sql.Tx, audit *models.AuditEntry) error {
	query := `
		INSERT INTO audit_log (
			entity_type, entity_id, action, details, user_id
		) VALUES (?, ?, ?, ?, ?)
	`
	var details any
	if len(audit.Details) > 0 {
		details = []byte(audit.Details)
	}
	id, err := insertID(tx.ExecContext(ctx, query,
		audit.EntityType,
		audit.EntityID,
		audit.Action,
		details,
		audit.UserID,
	))
	if err != nil {
		return err
	}
	audit.ID = id
	return nil
}

func (r *auditRepository) ListAuditEntries(ctx context.Context, entityType string, entityID int64) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, entity_type, entity_id, action, details, user_id, created_at
		FROM audit_log
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		a := &models.AuditEntry{}
		var details []byte
		err := rows.Scan(
			&a.ID,
			&a.EntityType,
			&a.EntityID,
			&a.Action,
			&details,
			&a.UserID,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		a.Details = details
		entries = append(entries, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
