package repositories

import (
	"context"
	"database/sql"
	"strings"

	"event-ledger-service/internal/models"
)

// PaymentFilter narrows ListPayments; zero values match everything.
type PaymentFilter struct {
	StallID     *int64
	PaymentType string
}

// PaymentRepository has no update or delete path: payments only accumulate.
type PaymentRepository interface {
	InsertPayment(ctx context.Context, tx *sql.Tx, p *models.Payment) error
	ListPayments(ctx context.Context, filter PaymentFilter) ([]*models.Payment, error)
	ListPaymentsByStall(ctx context.Context, q DBTX, stallID int64) ([]*models.Payment, error)
}

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, payment_type, stall_id, amount_paid, narration, created_at`

func (r *paymentRepository) InsertPayment(ctx context.Context, tx *sql.Tx, p *models.Payment) error {
	query := `
		INSERT INTO payments (payment_type, stall_id, amount_paid, narration)
		VALUES (?, ?, ?, ?)
	`
	id, err := insertID(tx.ExecContext(ctx, query,
		p.PaymentType,
		p.StallID,
		p.AmountPaid,
		p.Narration,
	))
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *paymentRepository) ListPayments(ctx context.Context, filter PaymentFilter) ([]*models.Payment, error) {
	var where []string
	var args []any
	if filter.StallID != nil {
		where = append(where, "stall_id = ?")
		args = append(args, *filter.StallID)
	}
	if filter.PaymentType != "" {
		where = append(where, "payment_type = ?")
		args = append(args, filter.PaymentType)
	}

	query := `SELECT ` + paymentColumns + ` FROM payments`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id`
	return r.list(ctx, r.db, query, args...)
}

func (r *paymentRepository) ListPaymentsByStall(ctx context.Context, q DBTX, stallID int64) ([]*models.Payment, error) {
	return r.list(ctx, q, `SELECT `+paymentColumns+` FROM payments WHERE stall_id = ? ORDER BY id`, stallID)
}

func (r *paymentRepository) list(ctx context.Context, q DBTX, query string, args ...any) ([]*models.Payment, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		err := rows.Scan(
			&p.ID,
			&p.PaymentType,
			&p.StallID,
			&p.AmountPaid,
			&p.Narration,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}
