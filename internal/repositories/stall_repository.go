package repositories

import (
	"context"
	"database/sql"
	"errors"

	"event-ledger-service/internal/models"
)

type StallRepository interface {
	InsertStall(ctx context.Context, tx *sql.Tx, s *models.Stall) error
	GetStallByID(ctx context.Context, id int64) (*models.Stall, error)
	ListStalls(ctx context.Context) ([]*models.Stall, error)
	SetVerified(ctx context.Context, tx *sql.Tx, id int64, verified bool) error
	// LockStall reads the stall row and holds a write lock on it until tx ends.
	LockStall(ctx context.Context, tx *sql.Tx, id int64) (*models.Stall, error)
}

type stallRepository struct {
	db       *sql.DB
	rowLocks bool
}

type StallRepositoryOption func(*stallRepository)

// WithoutRowLocks drops FOR UPDATE from LockStall, for databases such as
// SQLite that have no row locks and serialize writers themselves.
func WithoutRowLocks() StallRepositoryOption {
	return func(r *stallRepository) {
		r.rowLocks = false
	}
}

func NewStallRepository(db *sql.DB, opts ...StallRepositoryOption) StallRepository {
	r := &stallRepository{db: db, rowLocks: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const stallColumns = `id, counter_name, participant_name, mobile, panchayath_id, ward_id,
	is_verified, registration_fee, created_at`

func scanStall(row interface{ Scan(...any) error }) (*models.Stall, error) {
	s := &models.Stall{}
	err := row.Scan(
		&s.ID,
		&s.CounterName,
		&s.ParticipantName,
		&s.Mobile,
		&s.PanchayathID,
		&s.WardID,
		&s.IsVerified,
		&s.RegistrationFee,
		&s.CreatedAt,
	)
	return s, err
}

func (r *stallRepository) InsertStall(ctx context.Context, tx *sql.Tx, s *models.Stall) error {
	query := `
		INSERT INTO stalls (
			counter_name, participant_name, mobile,
			panchayath_id, ward_id, is_verified, registration_fee
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := insertID(tx.ExecContext(ctx, query,
		s.CounterName,
		s.ParticipantName,
		s.Mobile,
		s.PanchayathID,
		s.WardID,
		s.IsVerified,
		s.RegistrationFee,
	))
	if err != nil {
		if isDuplicate(err) {
			return duplicate("stall counter name")
		}
		return err
	}
	s.ID = id
	return nil
}

func (r *stallRepository) GetStallByID(ctx context.Context, id int64) (*models.Stall, error) {
	return r.getStall(ctx, r.db, `SELECT `+stallColumns+` FROM stalls WHERE id = ?`, id)
}

func (r *stallRepository) LockStall(ctx context.Context, tx *sql.Tx, id int64) (*models.Stall, error) {
	return r.getStall(ctx, tx, r.lockQuery(), id)
}

func (r *stallRepository) lockQuery() string {
	query := `SELECT ` + stallColumns + ` FROM stalls WHERE id = ?`
	if r.rowLocks {
		query += ` FOR UPDATE`
	}
	return query
}

func (r *stallRepository) getStall(ctx context.Context, q DBTX, query string, id int64) (*models.Stall, error) {
	s, err := scanStall(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("stall")
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *stallRepository) ListStalls(ctx context.Context) ([]*models.Stall, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+stallColumns+` FROM stalls ORDER BY counter_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stalls []*models.Stall
	for rows.Next() {
		s, err := scanStall(rows)
		if err != nil {
			return nil, err
		}
		stalls = append(stalls, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return stalls, nil
}

func (r *stallRepository) SetVerified(ctx context.Context, tx *sql.Tx, id int64, verified bool) error {
	result, err := tx.ExecContext(ctx, `UPDATE stalls SET is_verified = ? WHERE id = ?`, verified, id)
	return checkAffected(result, err, "stall")
}
