package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"event-ledger-service/internal/ledger"
	"event-ledger-service/internal/models"
)

type ProductRepository interface {
	InsertProduct(ctx context.Context, tx *sql.Tx, p *models.Product) error
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	ListProductsByStall(ctx context.Context, stallID int64) ([]*models.Product, error)
	UpdateProductPricing(ctx context.Context, tx *sql.Tx, id int64, cost, margin decimal.Decimal) error
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(
		&p.ID,
		&p.StallID,
		&p.Name,
		&p.CostPrice,
		&p.MarginPercent,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.SellingPrice = ledger.SellingPrice(p.CostPrice, p.MarginPercent)
	return p, nil
}

func (r *productRepository) InsertProduct(ctx context.Context, tx *sql.Tx, p *models.Product) error {
	query := `
		INSERT INTO products (stall_id, name, cost_price, margin_percent)
		VALUES (?, ?, ?, ?)
	`
	id, err := insertID(tx.ExecContext(ctx, query, p.StallID, p.Name, p.CostPrice, p.MarginPercent))
	if err != nil {
		return err
	}
	p.ID = id
	p.SellingPrice = ledger.SellingPrice(p.CostPrice, p.MarginPercent)
	return nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `
		SELECT id, stall_id, name, cost_price, margin_percent, created_at
		FROM products
		WHERE id = ?
	`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("product")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepository) ListProductsByStall(ctx context.Context, stallID int64) ([]*models.Product, error) {
	query := `
		SELECT id, stall_id, name, cost_price, margin_percent, created_at
		FROM products
		WHERE stall_id = ?
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query, stallID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) UpdateProductPricing(ctx context.Context, tx *sql.Tx, id int64, cost, margin decimal.Decimal) error {
	query := `
		UPDATE products
		SET cost_price = ?,
		    margin_percent = ?
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query, cost, margin, id)
	return checkAffected(result, err, "product")
}
