package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"event-ledger-service/internal/database"
	"event-ledger-service/internal/ledger"
	"event-ledger-service/internal/models"
	"event-ledger-service/internal/repositories"
)

type PaymentService struct {
	db          *sql.DB
	stallRepo   repositories.StallRepository
	billingRepo repositories.BillingRepository
	paymentRepo repositories.PaymentRepository
	auditRepo   repositories.AuditRepository
}

func NewPaymentService(
	db *sql.DB,
	stallRepo repositories.StallRepository,
	billingRepo repositories.BillingRepository,
	paymentRepo repositories.PaymentRepository,
	auditRepo repositories.AuditRepository,
) *PaymentService {
	return &PaymentService{
		db:          db,
		stallRepo:   stallRepo,
		billingRepo: billingRepo,
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
	}
}

type RecordPaymentInput struct {
	PaymentType string          `json:"payment_type" validate:"required,oneof=participant other"`
	StallID     *int64          `json:"stall_id"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	Narration   *string         `json:"narration" validate:"omitempty,max=500"`
}

// RecordPayment stores a payout. A participant payment is checked against
// the stall's remaining balance while the stall row is locked, so two
// concurrent payouts cannot together exceed it.
func (s *PaymentService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*models.Payment, error) {
	verr := validateStruct(input)
	checkPositive(verr, "amount_paid", input.AmountPaid)
	checkCents(verr, "amount_paid", input.AmountPaid)
	switch input.PaymentType {
	case models.PaymentTypeParticipant:
		if input.StallID == nil {
			verr.add("stall_id", "is required")
		}
	case models.PaymentTypeOther:
		if input.StallID != nil {
			verr.add("stall_id", "must be empty for other payments")
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		PaymentType: input.PaymentType,
		StallID:     input.StallID,
		AmountPaid:  input.AmountPaid,
		Narration:   input.Narration,
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		details := map[string]any{
			"payment_type": payment.PaymentType,
			"amount_paid":  payment.AmountPaid,
		}

		if payment.PaymentType == models.PaymentTypeParticipant {
			summary, err := s.lockedBalance(ctx, tx, *payment.StallID)
			if err != nil {
				return err
			}
			if err := ledger.ValidatePayment(summary, payment.AmountPaid); err != nil {
				return err
			}
			details["stall_id"] = summary.StallID
			details["remaining_before"] = summary.RemainingBalance
		}

		if err := s.paymentRepo.InsertPayment(ctx, tx, payment); err != nil {
			return err
		}
		return writeAudit(ctx, s.auditRepo, tx, "payment", payment.ID, models.AuditActionCreated, details)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	return payment, nil
}

// lockedBalance computes the stall's balance from reads made after taking
// the stall row lock.
func (s *PaymentService) lockedBalance(ctx context.Context, tx *sql.Tx, stallID int64) (ledger.StallSummary, error) {
	if _, err := s.stallRepo.LockStall(ctx, tx, stallID); err != nil {
		return ledger.StallSummary{}, err
	}
	billings, err := s.billingRepo.ListBillingTransactionsByStall(ctx, tx, stallID)
	if err != nil {
		return ledger.StallSummary{}, err
	}
	payments, err := s.paymentRepo.ListPaymentsByStall(ctx, tx, stallID)
	if err != nil {
		return ledger.StallSummary{}, err
	}
	return ledger.StallBalance(stallID, billings, payments), nil
}

func (s *PaymentService) ListPayments(ctx context.Context, filter repositories.PaymentFilter) ([]*models.Payment, error) {
	switch filter.PaymentType {
	case "", models.PaymentTypeParticipant, models.PaymentTypeOther:
	default:
		return nil, invalid("payment_type", "must be one of: participant other")
	}
	payments, err := s.paymentRepo.ListPayments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
