package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"event-ledger-service/internal/database"
	"event-ledger-service/internal/ledger"
	"event-ledger-service/internal/models"
	"event-ledger-service/internal/repositories"
)

type BillingService struct {
	db          *sql.DB
	stallRepo   repositories.StallRepository
	productRepo repositories.ProductRepository
	billingRepo repositories.BillingRepository
	auditRepo   repositories.AuditRepository
}

func NewBillingService(
	db *sql.DB,
	stallRepo repositories.StallRepository,
	productRepo repositories.ProductRepository,
	billingRepo repositories.BillingRepository,
	auditRepo repositories.AuditRepository,
) *BillingService {
	return &BillingService{
		db:          db,
		stallRepo:   stallRepo,
		productRepo: productRepo,
		billingRepo: billingRepo,
		auditRepo:   auditRepo,
	}
}

// BillingItemInput is one bill line. With ProductID set, price, margin and
// name come from the product; otherwise Name and Price are required.
type BillingItemInput struct {
	ProductID *int64              `json:"product_id"`
	Name      string              `json:"name" validate:"required_without=ProductID,max=255"`
	Price     decimal.NullDecimal `json:"price"`
	Quantity  decimal.Decimal     `json:"quantity"`
	Margin    decimal.NullDecimal `json:"margin"`
}

type CreateBillingInput struct {
	StallID int64              `json:"stall_id" validate:"required,gt=0"`
	Items   []BillingItemInput `json:"items" validate:"required,min=1,dive"`
}

func (s *BillingService) CreateBillingTransaction(ctx context.Context, input CreateBillingInput) (*models.BillingTransaction, error) {
	verr := validateStruct(input)
	for i, item := range input.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		checkPositive(verr, prefix+"quantity", item.Quantity)
		if item.ProductID == nil && !item.Price.Valid {
			verr.add(prefix+"price", "is required")
		}
		if item.Price.Valid {
			checkNonNegative(verr, prefix+"price", item.Price.Decimal)
			checkCents(verr, prefix+"price", item.Price.Decimal)
		}
		if item.Margin.Valid {
			checkMargin(verr, prefix+"margin", item.Margin.Decimal)
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	if _, err := s.stallRepo.GetStallByID(ctx, input.StallID); err != nil {
		return nil, fmt.Errorf("failed to get stall: %w", err)
	}

	items, err := s.resolveItems(ctx, input.StallID, input.Items)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(ledger.LineTotal(item))
	}
	subtotal = toCents(subtotal)

	bt := &models.BillingTransaction{
		BillNumber: newBillNumber(),
		StallID:    input.StallID,
		Items:      items,
		Subtotal:   subtotal,
		Total:      subtotal,
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.billingRepo.InsertBillingTransaction(ctx, tx, bt); err != nil {
			return err
		}
		return writeAudit(ctx, s.auditRepo, tx, "billing_transaction", bt.ID, models.AuditActionCreated, map[string]any{
			"bill_number": bt.BillNumber,
			"stall_id":    bt.StallID,
			"total":       bt.Total,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create billing transaction: %w", err)
	}
	return bt, nil
}

// resolveItems fills product lines from the product catalogue. Prices are
// captured on the bill, rounded to cents, so later repricing leaves it
// unchanged.
func (s *BillingService) resolveItems(ctx context.Context, stallID int64, inputs []BillingItemInput) (models.LineItems, error) {
	items := make(models.LineItems, 0, len(inputs))
	verr := &ValidationError{}

	for i, input := range inputs {
		item := models.LineItem{
			Name:     input.Name,
			Quantity: input.Quantity,
			Margin:   input.Margin,
		}
		if input.ProductID == nil {
			item.Price = input.Price.Decimal
			items = append(items, item)
			continue
		}

		product, err := s.productRepo.GetProductByID(ctx, *input.ProductID)
		if errors.Is(err, repositories.ErrNotFound) || (err == nil && product.StallID != stallID) {
			verr.add(fmt.Sprintf("items[%d].product_id", i), "product not sold at this stall")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get product: %w", err)
		}

		item.ProductID = &product.ID
		item.Price = toCents(product.SellingPrice)
		item.Margin = decimal.NewNullDecimal(product.MarginPercent)
		if item.Name == "" {
			item.Name = product.Name
		}
		items = append(items, item)
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return items, nil
}

func newBillNumber() string {
	return "BILL-" + strings.ToUpper(uuid.NewString()[:8])
}

func (s *BillingService) GetBillingTransaction(ctx context.Context, id int64) (*models.BillingTransaction, error) {
	bt, err := s.billingRepo.GetBillingTransactionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get billing transaction: %w", err)
	}
	return bt, nil
}

// ListBillingTransactions returns all bills, or one stall's bills when
// stallID is set.
func (s *BillingService) ListBillingTransactions(ctx context.Context, stallID *int64) ([]*models.BillingTransaction, error) {
	var (
		bills []*models.BillingTransaction
		err   error
	)
	if stallID != nil {
		bills, err = s.billingRepo.ListBillingTransactionsByStall(ctx, s.db, *stallID)
	} else {
		bills, err = s.billingRepo.ListBillingTransactions(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list billing transactions: %w", err)
	}
	return bills, nil
}
