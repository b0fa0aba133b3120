package repositories

import (
	"context"
	"database/sql"
	"errors"

	"event-ledger-service/internal/models"
)

// DirectoryRepository covers the reference tables: panchayaths, their wards
// and the public survey content carousel.
type DirectoryRepository interface {
	InsertPanchayath(ctx context.Context, tx *sql.Tx, p *models.Panchayath) error
	GetPanchayathByID(ctx context.Context, id int64) (*models.Panchayath, error)
	ListPanchayaths(ctx context.Context) ([]*models.Panchayath, error)
	InsertWard(ctx context.Context, tx *sql.Tx, w *models.Ward) error
	ListWards(ctx context.Context, panchayathID int64) ([]*models.Ward, error)
	InsertSurveyContent(ctx context.Context, tx *sql.Tx, c *models.SurveyContent) error
	ListActiveSurveyContent(ctx context.Context) ([]*models.SurveyContent, error)
}

type directoryRepository struct {
	db *sql.DB
}

func NewDirectoryRepository(db *sql.DB) DirectoryRepository {
	return &directoryRepository{db: db}
}

func (r *directoryRepository) InsertPanchayath(ctx context.Context, tx *sql.Tx, p *models.Panchayath) error {
	id, err := insertID(tx.ExecContext(ctx,
		`INSERT INTO panchayaths (name, district) VALUES (?, ?)`,
		p.Name, p.District,
	))
	if err != nil {
		if isDuplicate(err) {
			return duplicate("panchayath")
		}
		return err
	}
	p.ID = id
	return nil
}

func (r *directoryRepository) GetPanchayathByID(ctx context.Context, id int64) (*models.Panchayath, error) {
	p := &models.Panchayath{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, district, created_at FROM panchayaths WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.District, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("panchayath")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *directoryRepository) ListPanchayaths(ctx context.Context) ([]*models.Panchayath, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, district, created_at FROM panchayaths ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var panchayaths []*models.Panchayath
	for rows.Next() {
		p := &models.Panchayath{}
		if err := rows.Scan(&p.ID, &p.Name, &p.District, &p.CreatedAt); err != nil {
			return nil, err
		}
		panchayaths = append(panchayaths, p)
	}
	return panchayaths, rows.Err()
}

func (r *directoryRepository) InsertWard(ctx context.Context, tx *sql.Tx, w *models.Ward) error {
	id, err := insertID(tx.ExecContext(ctx,
		`INSERT INTO wards (panchayath_id, ward_number, name) VALUES (?, ?, ?)`,
		w.PanchayathID, w.WardNumber, w.Name,
	))
	if err != nil {
		if isDuplicate(err) {
			return duplicate("ward number")
		}
		return err
	}
	w.ID = id
	return nil
}

func (r *directoryRepository) ListWards(ctx context.Context, panchayathID int64) ([]*models.Ward, error) {
	query := `
		SELECT id, panchayath_id, ward_number, name, created_at
		FROM wards
		WHERE panchayath_id = ?
		ORDER BY ward_number
	`
	rows, err := r.db.QueryContext(ctx, query, panchayathID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wards []*models.Ward
	for rows.Next() {
		w := &models.Ward{}
		if err := rows.Scan(&w.ID, &w.PanchayathID, &w.WardNumber, &w.Name, &w.CreatedAt); err != nil {
			return nil, err
		}
		wards = append(wards, w)
	}
	return wards, rows.Err()
}

func (r *directoryRepository) InsertSurveyContent(ctx context.Context, tx *sql.Tx, c *models.SurveyContent) error {
	query := `
		INSERT INTO survey_content (title, body, image_url, display_order, is_active)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := insertID(tx.ExecContext(ctx, query, c.Title, c.Body, c.ImageURL, c.DisplayOrder, c.IsActive))
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *directoryRepository) ListActiveSurveyContent(ctx context.Context) ([]*models.SurveyContent, error) {
	query := `
		SELECT id, title, body, image_url, display_order, is_active, created_at
		FROM survey_content
		WHERE is_active = ?
		ORDER BY display_order, id
	`
	rows, err := r.db.QueryContext(ctx, query, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var content []*models.SurveyContent
	for rows.Next() {
		c := &models.SurveyContent{}
		err := rows.Scan(&c.ID, &c.Title, &c.Body, &c.ImageURL, &c.DisplayOrder, &c.IsActive, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		content = append(content, c)
	}
	return content, rows.Err()
}
