package services

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"event-ledger-service/internal/database"
	"event-ledger-service/internal/models"
	"event-ledger-service/internal/repositories"
)

var registrationTypes = []string{
	models.RegistrationStallCounterBooking,
	models.RegistrationEmploymentBooking,
	models.RegistrationEmploymentRegistering,
}

type RegistrationService struct {
	db               *sql.DB
	registrationRepo repositories.RegistrationRepository
	auditRepo        repositories.AuditRepository
}

func NewRegistrationService(db *sql.DB, registrationRepo repositories.RegistrationRepository, auditRepo repositories.AuditRepository) *RegistrationService {
	return &RegistrationService{
		db:               db,
		registrationRepo: registrationRepo,
		auditRepo:        auditRepo,
	}
}

type CreateRegistrationInput struct {
	RegistrationType string          `json:"registration_type" validate:"required,oneof=stall_counter_booking employment_booking employment_registration"`
	Name             string          `json:"name" validate:"required,max=255"`
	Mobile           string          `json:"mobile" validate:"omitempty,phone"`
	Amount           decimal.Decimal `json:"amount"`
}

func (s *RegistrationService) CreateRegistration(ctx context.Context, input CreateRegistrationInput) (*models.Registration, error) {
	verr := validateStruct(input)
	checkNonNegative(verr, "amount", input.Amount)
	checkCents(verr, "amount", input.Amount)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	reg := &models.Registration{
		RegistrationType: input.RegistrationType,
		Name:             input.Name,
		Mobile:           input.Mobile,
		Amount:           input.Amount,
	}
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.registrationRepo.InsertRegistration(ctx, tx, reg); err != nil {
			return err
		}
		return writeAudit(ctx, s.auditRepo, tx, "registration", reg.ID, models.AuditActionCreated, map[string]any{
			"registration_type": reg.RegistrationType,
			"amount":            reg.Amount,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}
	return reg, nil
}

// ListRegistrations returns registrations of one type, or all when
// registrationType is empty.
func (s *RegistrationService) ListRegistrations(ctx context.Context, registrationType string) ([]*models.Registration, error) {
	if registrationType != "" && !slices.Contains(registrationTypes, registrationType) {
		return nil, invalid("type", "unknown registration type")
	}
	regs, err := s.registrationRepo.ListRegistrations(ctx, registrationType)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return regs, nil
}
