package repositories

import (
	"context"
	"database/sql"

	"event-ledger-service/internal/models"
)

type EnquiryRepository interface {
	InsertField(ctx context.Context, tx *sql.Tx, f *models.StallEnquiryField) error
	ListActiveFields(ctx context.Context) ([]*models.StallEnquiryField, error)
	InsertEnquiry(ctx context.Context, tx *sql.Tx, e *models.StallEnquiry) error
	ListEnquiries(ctx context.Context) ([]*models.StallEnquiry, error)
}

type enquiryRepository struct {
	db *sql.DB
}

func NewEnquiryRepository(db *sql.DB) EnquiryRepository {
	return &enquiryRepository{db: db}
}

func (r *enquiryRepository) InsertField(ctx context.Context, tx *sql.Tx, f *models.StallEnquiryField) error {
	query := `
		INSERT INTO stall_enquiry_fields (
			label, field_type, options, is_required, display_order,
			visible_when_field_id, visible_when_value, is_active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := insertID(tx.ExecContext(ctx, query,
		f.Label,
		f.FieldType,
		f.Options,
		f.IsRequired,
		f.DisplayOrder,
		f.VisibleWhenFieldID,
		f.VisibleWhenValue,
		f.IsActive,
	))
	if err != nil {
		return err
	}
	f.ID = id
	return nil
}

func (r *enquiryRepository) ListActiveFields(ctx context.Context) ([]*models.StallEnquiryField, error) {
	query := `
		SELECT id, label, field_type, options, is_required, display_order,
		       visible_when_field_id, visible_when_value, is_active, created_at
		FROM stall_enquiry_fields
		WHERE is_active = ?
		ORDER BY display_order, id
	`
	rows, err := r.db.QueryContext(ctx, query, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fields []*models.StallEnquiryField
	for rows.Next() {
		f := &models.StallEnquiryField{}
		err := rows.Scan(
			&f.ID,
			&f.Label,
			&f.FieldType,
			&f.Options,
			&f.IsRequired,
			&f.DisplayOrder,
			&f.VisibleWhenFieldID,
			&f.VisibleWhenValue,
			&f.IsActive,
			&f.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return fields, nil
}

func (r *enquiryRepository) InsertEnquiry(ctx context.Context, tx *sql.Tx, e *models.StallEnquiry) error {
	query := `INSERT INTO stall_enquiries (name, mobile, responses) VALUES (?, ?, ?)`
	id, err := insertID(tx.ExecContext(ctx, query, e.Name, e.Mobile, []byte(e.Responses)))
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (r *enquiryRepository) ListEnquiries(ctx context.Context) ([]*models.StallEnquiry, error) {
	query := `
		SELECT id, name, mobile, responses, created_at
		FROM stall_enquiries
		ORDER BY id DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enquiries []*models.StallEnquiry
	for rows.Next() {
		e := &models.StallEnquiry{}
		var responses []byte
		if err := rows.Scan(&e.ID, &e.Name, &e.Mobile, &responses, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Responses = responses
		enquiries = append(enquiries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return enquiries, nil
}
