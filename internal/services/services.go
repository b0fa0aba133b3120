package services

import (
	"database/sql"

	"event-ledger-service/internal/auth"
	"event-ledger-service/internal/repositories"
)

type Repositories struct {
	Stalls        repositories.StallRepository
	Products      repositories.ProductRepository
	Billing       repositories.BillingRepository
	Payments      repositories.PaymentRepository
	Registrations repositories.RegistrationRepository
	Directory     repositories.DirectoryRepository
	Enquiries     repositories.EnquiryRepository
	Admins        repositories.AdminRepository
	Audit         repositories.AuditRepository
}

func NewRepositories(db *sql.DB) Repositories {
	return Repositories{
		Stalls:        repositories.NewStallRepository(db),
		Products:      repositories.NewProductRepository(db),
		Billing:       repositories.NewBillingRepository(db),
		Payments:      repositories.NewPaymentRepository(db),
		Registrations: repositories.NewRegistrationRepository(db),
		Directory:     repositories.NewDirectoryRepository(db),
		Enquiries:     repositories.NewEnquiryRepository(db),
		Admins:        repositories.NewAdminRepository(db),
		Audit:         repositories.NewAuditRepository(db),
	}
}

// Services is the full set wired by main and the router
type Services struct {
	Stalls        *StallService
	Billing       *BillingService
	Payments      *PaymentService
	Registrations *RegistrationService
	Accounts      *AccountsService
	Enquiries     *EnquiryService
	Directory     *DirectoryService
	Auth          *AuthService
}

func New(db *sql.DB, repos Repositories, tokens *auth.TokenManager) *Services {
	return &Services{
		Stalls:        NewStallService(db, repos.Stalls, repos.Products, repos.Directory, repos.Audit),
		Billing:       NewBillingService(db, repos.Stalls, repos.Products, repos.Billing, repos.Audit),
		Payments:      NewPaymentService(db, repos.Stalls, repos.Billing, repos.Payments, repos.Audit),
		Registrations: NewRegistrationService(db, repos.Registrations, repos.Audit),
		Accounts:      NewAccountsService(db, repos.Stalls, repos.Billing, repos.Payments, repos.Registrations),
		Enquiries:     NewEnquiryService(db, repos.Enquiries),
		Directory:     NewDirectoryService(db, repos.Directory),
		Auth:          NewAuthService(db, repos.Admins, tokens),
	}
}
