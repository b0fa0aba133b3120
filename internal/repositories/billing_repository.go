package repositories

import (
	"context"
	"database/sql"
	"errors"

	"event-ledger-service/internal/models"
)

// BillingRepository has no update path: billing transactions are immutable.
type BillingRepository interface {
	InsertBillingTransaction(ctx context.Context, tx *sql.Tx, bt *models.BillingTransaction) error
	GetBillingTransactionByID(ctx context.Context, id int64) (*models.BillingTransaction, error)
	ListBillingTransactions(ctx context.Context) ([]*models.BillingTransaction, error)
	ListBillingTransactionsByStall(ctx context.Context, q DBTX, stallID int64) ([]*models.BillingTransaction, error)
}

type billingRepository struct {
	db *sql.DB
}

func NewBillingRepository(db *sql.DB) BillingRepository {
	return &billingRepository{db: db}
}

const billingColumns = `id, bill_number, stall_id, items, subtotal, total, created_at`

func scanBillingTransaction(row interface{ Scan(...any) error }) (*models.BillingTransaction, error) {
	bt := &models.BillingTransaction{}
	err := row.Scan(
		&bt.ID,
		&bt.BillNumber,
		&bt.StallID,
		&bt.Items,
		&bt.Subtotal,
		&bt.Total,
		&bt.CreatedAt,
	)
	return bt, err
}

func (r *billingRepository) InsertBillingTransaction(ctx context.Context, tx *sql.Tx, bt *models.BillingTransaction) error {
	query := `
		INSERT INTO billing_transactions (
			bill_number, stall_id, items, subtotal, total
		) VALUES (?, ?, ?, ?, ?)
	`
	id, err := insertID(tx.ExecContext(ctx, query,
		bt.BillNumber,
		bt.StallID,
		bt.Items,
		bt.Subtotal,
		bt.Total,
	))
	if err != nil {
		if isDuplicate(err) {
			return duplicate("bill number")
		}
		return err
	}
	bt.ID = id
	return nil
}

func (r *billingRepository) GetBillingTransactionByID(ctx context.Context, id int64) (*models.BillingTransaction, error) {
	query := `SELECT ` + billingColumns + ` FROM billing_transactions WHERE id = ?`
	bt, err := scanBillingTransaction(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("billing transaction")
	}
	if err != nil {
		return nil, err
	}
	return bt, nil
}

func (r *billingRepository) ListBillingTransactions(ctx context.Context) ([]*models.BillingTransaction, error) {
	return r.list(ctx, r.db, `SELECT `+billingColumns+` FROM billing_transactions ORDER BY id`)
}

// ListBillingTransactionsByStall reads through q so the payment path can see
// the same snapshot it locked.
func (r *billingRepository) ListBillingTransactionsByStall(ctx context.Context, q DBTX, stallID int64) ([]*models.BillingTransaction, error) {
	return r.list(ctx, q, `SELECT `+billingColumns+` FROM billing_transactions WHERE stall_id = ? ORDER BY id`, stallID)
}

func (r *billingRepository) list(ctx context.Context, q DBTX, query string, args ...any) ([]*models.BillingTransaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*models.BillingTransaction
	for rows.Next() {
		bt, err := scanBillingTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, bt)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return transactions, nil
}
