package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"event-ledger-service/internal/ledger"
	"event-ledger-service/internal/models"
	"event-ledger-service/internal/repositories"
)

// AccountsService reconciles stalls against their bills and payouts and
// reports the event's cash position.
type AccountsService struct {
	db               *sql.DB
	stallRepo        repositories.StallRepository
	billingRepo      repositories.BillingRepository
	paymentRepo      repositories.PaymentRepository
	registrationRepo repositories.RegistrationRepository
}

func NewAccountsService(
	db *sql.DB,
	stallRepo repositories.StallRepository,
	billingRepo repositories.BillingRepository,
	paymentRepo repositories.PaymentRepository,
	registrationRepo repositories.RegistrationRepository,
) *AccountsService {
	return &AccountsService{
		db:               db,
		stallRepo:        stallRepo,
		billingRepo:      billingRepo,
		paymentRepo:      paymentRepo,
		registrationRepo: registrationRepo,
	}
}

// LedgerSnapshot is every row the accounts view is computed from
type LedgerSnapshot struct {
	Stalls        []*models.Stall
	Billings      []*models.BillingTransaction
	Payments      []*models.Payment
	Registrations []*models.Registration
}

// StallRow is one line of the per-stall accounts table
type StallRow struct {
	ledger.StallSummary
	CounterName     string `json:"counter_name"`
	ParticipantName string `json:"participant_name"`
	IsVerified      bool   `json:"is_verified"`
}

type AccountsSummary struct {
	Totals ledger.EventTotals `json:"totals"`
	Stalls []StallRow         `json:"stalls"`
}

// LoadSnapshot reads registrations alongside the stall ledger. The ledger
// tables are read payments, then bills, then stalls: a payment is only
// accepted against bills already committed and a bill only against an
// existing stall, so every row read has the rows it depends on.
func (s *AccountsService) LoadSnapshot(ctx context.Context) (*LedgerSnapshot, error) {
	snap := &LedgerSnapshot{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		registrations, err := s.registrationRepo.ListRegistrations(gctx, "")
		if err != nil {
			return fmt.Errorf("failed to list registrations: %w", err)
		}
		snap.Registrations = registrations
		return nil
	})
	g.Go(func() error {
		payments, err := s.paymentRepo.ListPayments(gctx, repositories.PaymentFilter{})
		if err != nil {
			return fmt.Errorf("failed to list payments: %w", err)
		}
		billings, err := s.billingRepo.ListBillingTransactions(gctx)
		if err != nil {
			return fmt.Errorf("failed to list billing transactions: %w", err)
		}
		stalls, err := s.stallRepo.ListStalls(gctx)
		if err != nil {
			return fmt.Errorf("failed to list stalls: %w", err)
		}
		snap.Payments, snap.Billings, snap.Stalls = payments, billings, stalls
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *AccountsService) GetStallBalance(ctx context.Context, stallID int64) (ledger.StallSummary, error) {
	if _, err := s.stallRepo.GetStallByID(ctx, stallID); err != nil {
		return ledger.StallSummary{}, fmt.Errorf("failed to get stall: %w", err)
	}
	billings, err := s.billingRepo.ListBillingTransactionsByStall(ctx, s.db, stallID)
	if err != nil {
		return ledger.StallSummary{}, fmt.Errorf("failed to list billing transactions: %w", err)
	}
	payments, err := s.paymentRepo.ListPaymentsByStall(ctx, s.db, stallID)
	if err != nil {
		return ledger.StallSummary{}, fmt.Errorf("failed to list payments: %w", err)
	}
	return ledger.StallBalance(stallID, billings, payments), nil
}

func (s *AccountsService) GetAccountsSummary(ctx context.Context) (*AccountsSummary, error) {
	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(snap), nil
}

func summarize(snap *LedgerSnapshot) *AccountsSummary {
	balances := ledger.StallBalances(snap.Stalls, snap.Billings, snap.Payments)
	rows := make([]StallRow, len(balances))
	for i, b := range balances {
		stall := snap.Stalls[i]
		rows[i] = StallRow{
			StallSummary:    b,
			CounterName:     stall.CounterName,
			ParticipantName: stall.ParticipantName,
			IsVerified:      stall.IsVerified,
		}
	}
	return &AccountsSummary{
		Totals: ledger.EventSummary(snap.Billings, snap.Payments, snap.Stalls, snap.Registrations),
		Stalls: rows,
	}
}

const (
	summarySheet = "Summary"
	stallsSheet  = "Stalls"
)

// ExportLedger writes the accounts summary as an xlsx workbook.
func (s *AccountsService) ExportLedger(ctx context.Context, w io.Writer) error {
	summary, err := s.GetAccountsSummary(ctx)
	if err != nil {
		return err
	}

	f, err := buildWorkbook(summary)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func buildWorkbook(summary *AccountsSummary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}

	t := summary.Totals
	totals := [][]any{
		{"Item", "Amount"},
		{"Total billing collected", t.TotalBillingCollected.InexactFloat64()},
		{"Total registration collected", t.TotalRegistrationCollected.InexactFloat64()},
		{"Stall booking fees", t.StallBookingFees.InexactFloat64()},
		{"Total collected", t.TotalCollected.InexactFloat64()},
		{"Total paid", t.TotalPaid.InexactFloat64()},
		{"Cash balance", t.CashBalance.InexactFloat64()},
	}
	if err := writeRows(f, summarySheet, totals); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(stallsSheet); err != nil {
		return nil, err
	}
	rows := [][]any{{
		"Stall ID", "Counter", "Participant", "Verified",
		"Billed amount", "Bill balance", "Already paid", "Remaining balance",
	}}
	for _, r := range summary.Stalls {
		rows = append(rows, []any{
			r.StallID, r.CounterName, r.ParticipantName, r.IsVerified,
			r.BilledAmount.InexactFloat64(),
			r.BillBalance.InexactFloat64(),
			r.AlreadyPaid.InexactFloat64(),
			r.RemainingBalance.InexactFloat64(),
		})
	}
	if err := writeRows(f, stallsSheet, rows); err != nil {
		return nil, err
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
