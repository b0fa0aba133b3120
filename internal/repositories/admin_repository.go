package repositories

import (
	"context"
	"database/sql"
	"errors"

	"event-ledger-service/internal/models"
)

type AdminRepository interface {
	InsertAdmin(ctx context.Context, tx *sql.Tx, a *models.Admin) error
	GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error)
}

type adminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) AdminRepository {
	return &adminRepository{db: db}
}

// InsertAdmin stores the admin and its permission rows.
func (r *adminRepository) InsertAdmin(ctx context.Context, tx *sql.Tx, a *models.Admin) error {
	id, err := insertID(tx.ExecContext(ctx,
		`INSERT INTO admins (username, password_hash, is_super) VALUES (?, ?, ?)`,
		a.Username, a.PasswordHash, a.IsSuper,
	))
	if err != nil {
		if isDuplicate(err) {
			return duplicate("admin username")
		}
		return err
	}
	a.ID = id

	for _, permission := range a.Permissions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO admin_permissions (admin_id, permission) VALUES (?, ?)`,
			a.ID, permission,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *adminRepository) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	a := &models.Admin{}
	query := `
		SELECT id, username, password_hash, is_super, created_at
		FROM admins
		WHERE username = ?
	`
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&a.ID,
		&a.Username,
		&a.PasswordHash,
		&a.IsSuper,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("admin")
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT permission FROM admin_permissions WHERE admin_id = ? ORDER BY permission`, a.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var permission string
		if err := rows.Scan(&permission); err != nil {
			return nil, err
		}
		a.Permissions = append(a.Permissions, permission)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return a, nil
}
