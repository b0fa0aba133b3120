package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"event-ledger-service/internal/auth"
	"event-ledger-service/internal/database"
	"event-ledger-service/internal/ledger"
	"event-ledger-service/internal/models"
	"event-ledger-service/internal/repositories"
)

type StallService struct {
	db            *sql.DB
	stallRepo     repositories.StallRepository
	productRepo   repositories.ProductRepository
	directoryRepo repositories.DirectoryRepository
	auditRepo     repositories.AuditRepository
}

func NewStallService(
	db *sql.DB,
	stallRepo repositories.StallRepository,
	productRepo repositories.ProductRepository,
	directoryRepo repositories.DirectoryRepository,
	auditRepo repositories.AuditRepository,
) *StallService {
	return &StallService{
		db:            db,
		stallRepo:     stallRepo,
		productRepo:   productRepo,
		directoryRepo: directoryRepo,
		auditRepo:     auditRepo,
	}
}

type CreateStallInput struct {
	CounterName     string          `json:"counter_name" validate:"required,max=255"`
	ParticipantName string          `json:"participant_name" validate:"required,max=255"`
	Mobile          string          `json:"mobile" validate:"omitempty,phone"`
	PanchayathID    *int64          `json:"panchayath_id"`
	WardID          *int64          `json:"ward_id"`
	RegistrationFee decimal.Decimal `json:"registration_fee"`
}

type ProductInput struct {
	Name          string              `json:"name" validate:"required,max=255"`
	CostPrice     decimal.Decimal     `json:"cost_price"`
	MarginPercent decimal.NullDecimal `json:"margin_percent"`
}

type PricingInput struct {
	CostPrice     decimal.Decimal     `json:"cost_price"`
	MarginPercent decimal.NullDecimal `json:"margin_percent"`
}

func (s *StallService) CreateStall(ctx context.Context, input CreateStallInput) (*models.Stall, error) {
	verr := validateStruct(input)
	checkNonNegative(verr, "registration_fee", input.RegistrationFee)
	checkCents(verr, "registration_fee", input.RegistrationFee)
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	if err := s.checkLocation(ctx, input.PanchayathID, input.WardID); err != nil {
		return nil, err
	}

	stall := &models.Stall{
		CounterName:     input.CounterName,
		ParticipantName: input.ParticipantName,
		Mobile:          input.Mobile,
		PanchayathID:    input.PanchayathID,
		WardID:          input.WardID,
		RegistrationFee: input.RegistrationFee,
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.stallRepo.InsertStall(ctx, tx, stall); err != nil {
			return err
		}
		return s.audit(ctx, tx, "stall", stall.ID, models.AuditActionCreated, map[string]any{
			"counter_name":     stall.CounterName,
			"registration_fee": stall.RegistrationFee,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create stall: %w", err)
	}
	return stall, nil
}

// checkLocation verifies the panchayath exists and, when a ward is given,
// that the ward belongs to it.
func (s *StallService) checkLocation(ctx context.Context, panchayathID, wardID *int64) error {
	if panchayathID == nil {
		if wardID != nil {
			return invalid("ward_id", "requires panchayath_id")
		}
		return nil
	}

	if _, err := s.directoryRepo.GetPanchayathByID(ctx, *panchayathID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return invalid("panchayath_id", "unknown panchayath")
		}
		return fmt.Errorf("failed to get panchayath: %w", err)
	}
	if wardID == nil {
		return nil
	}

	wards, err := s.directoryRepo.ListWards(ctx, *panchayathID)
	if err != nil {
		return fmt.Errorf("failed to list wards: %w", err)
	}
	if !slices.ContainsFunc(wards, func(w *models.Ward) bool { return w.ID == *wardID }) {
		return invalid("ward_id", "ward does not belong to panchayath")
	}
	return nil
}

func (s *StallService) GetStall(ctx context.Context, id int64) (*models.Stall, error) {
	stall, err := s.stallRepo.GetStallByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get stall: %w", err)
	}
	return stall, nil
}

func (s *StallService) ListStalls(ctx context.Context) ([]*models.Stall, error) {
	stalls, err := s.stallRepo.ListStalls(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stalls: %w", err)
	}
	return stalls, nil
}

// VerifyStall marks the stall as verified by the event desk.
func (s *StallService) VerifyStall(ctx context.Context, id int64) (*models.Stall, error) {
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.stallRepo.SetVerified(ctx, tx, id, true); err != nil {
			return err
		}
		return s.audit(ctx, tx, "stall", id, models.AuditActionVerified, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to verify stall: %w", err)
	}
	return s.GetStall(ctx, id)
}

func (s *StallService) AddProduct(ctx context.Context, stallID int64, input ProductInput) (*models.Product, error) {
	product, verr := newProduct(stallID, input)
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	if _, err := s.GetStall(ctx, stallID); err != nil {
		return nil, err
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.productRepo.InsertProduct(ctx, tx, product); err != nil {
			return err
		}
		return s.audit(ctx, tx, "product", product.ID, models.AuditActionCreated, map[string]any{
			"stall_id":       stallID,
			"cost_price":     product.CostPrice,
			"margin_percent": product.MarginPercent,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add product: %w", err)
	}
	return product, nil
}

func newProduct(stallID int64, input ProductInput) (*models.Product, *ValidationError) {
	verr := validateStruct(input)
	checkNonNegative(verr, "cost_price", input.CostPrice)
	checkCents(verr, "cost_price", input.CostPrice)

	margin := ledger.DefaultMarginPercent
	if input.MarginPercent.Valid {
		margin = input.MarginPercent.Decimal
		checkMargin(verr, "margin_percent", margin)
	}

	return &models.Product{
		StallID:       stallID,
		Name:          input.Name,
		CostPrice:     input.CostPrice,
		MarginPercent: margin,
		SellingPrice:  ledger.SellingPrice(input.CostPrice, margin),
	}, verr
}

func (s *StallService) ListProducts(ctx context.Context, stallID int64) ([]*models.Product, error) {
	if _, err := s.GetStall(ctx, stallID); err != nil {
		return nil, err
	}
	products, err := s.productRepo.ListProductsByStall(ctx, stallID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// UpdateProductPricing changes cost and margin. The selling price follows;
// bills already recorded keep the price they were sold at.
func (s *StallService) UpdateProductPricing(ctx context.Context, productID int64, input PricingInput) (*models.Product, error) {
	current, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	verr := &ValidationError{}
	checkNonNegative(verr, "cost_price", input.CostPrice)
	checkCents(verr, "cost_price", input.CostPrice)
	margin := current.MarginPercent
	if input.MarginPercent.Valid {
		margin = input.MarginPercent.Decimal
		checkMargin(verr, "margin_percent", margin)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.productRepo.UpdateProductPricing(ctx, tx, productID, input.CostPrice, margin); err != nil {
			return err
		}
		return s.audit(ctx, tx, "product", productID, models.AuditActionRepriced, map[string]any{
			"old_cost_price":     current.CostPrice,
			"old_margin_percent": current.MarginPercent,
			"cost_price":         input.CostPrice,
			"margin_percent":     margin,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product pricing: %w", err)
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *StallService) audit(ctx context.Context, tx *sql.Tx, entityType string, entityID int64, action string, details map[string]any) error {
	return writeAudit(ctx, s.auditRepo, tx, entityType, entityID, action, details)
}

func writeAudit(ctx context.Context, repo repositories.AuditRepository, tx *sql.Tx, entityType string, entityID int64, action string, details map[string]any) error {
	entry := &models.AuditEntry{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		UserID:     auth.Actor(ctx),
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return err
		}
		entry.Details = raw
	}
	if err := repo.CreateAuditEntry(ctx, tx, entry); err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}
	return nil
}
