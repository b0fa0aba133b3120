// Package ledger computes stall billing balances and event-wide cash totals
// from already loaded rows. Every function here is pure: callers load a fresh
// snapshot and recompute after each write.
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"event-ledger-service/internal/models"
)

// DefaultMarginPercent applies to line items and products with no margin set.
var DefaultMarginPercent = decimal.NewFromInt(20)

var hundred = decimal.NewFromInt(100)

var (
	ErrPaymentExceedsBalance = errors.New("payment exceeds remaining balance")
	ErrInvalidAmount         = errors.New("payment amount must be greater than zero")
)

// StallSummary is the per-stall reconciliation result
type StallSummary struct {
	StallID          int64           `json:"stall_id"`
	BilledAmount     decimal.Decimal `json:"billed_amount"`
	BillBalance      decimal.Decimal `json:"bill_balance"`
	AlreadyPaid      decimal.Decimal `json:"already_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// EventTotals is the event-wide cash position. TotalPaid counts only payments
// of type "other"; participant payouts are reported per stall.
type EventTotals struct {
	TotalBillingCollected      decimal.Decimal `json:"total_billing_collected"`
	TotalRegistrationCollected decimal.Decimal `json:"total_registration_collected"`
	StallBookingFees           decimal.Decimal `json:"stall_booking_fees"`
	TotalCollected             decimal.Decimal `json:"total_collected"`
	TotalPaid                  decimal.Decimal `json:"total_paid"`
	CashBalance                decimal.Decimal `json:"cash_balance"`
}

// SellingPrice returns cost × (1 + margin/100).
func SellingPrice(cost, marginPercent decimal.Decimal) decimal.Decimal {
	return cost.Mul(decimal.NewFromInt(1).Add(marginPercent.Div(hundred)))
}

// LineMargin returns the item's own margin, or DefaultMarginPercent when unset.
func LineMargin(item models.LineItem) decimal.Decimal {
	if item.Margin.Valid {
		return item.Margin.Decimal
	}
	return DefaultMarginPercent
}

// LineTotal returns price × quantity.
func LineTotal(item models.LineItem) decimal.Decimal {
	return item.Price.Mul(item.Quantity)
}

// LineBalance returns the vendor's share of a line item after commission.
func LineBalance(item models.LineItem) decimal.Decimal {
	keep := decimal.NewFromInt(1).Sub(LineMargin(item).Div(hundred))
	return LineTotal(item).Mul(keep)
}

// StallBalance reconciles one stall against the given billing transactions and
// payments. Rows belonging to other stalls are ignored.
func StallBalance(stallID int64, billings []*models.BillingTransaction, payments []*models.Payment) StallSummary {
	summary := StallSummary{
		StallID:          stallID,
		BilledAmount:     decimal.Zero,
		BillBalance:      decimal.Zero,
		AlreadyPaid:      decimal.Zero,
		RemainingBalance: decimal.Zero,
	}

	for _, bt := range billings {
		if bt.StallID != stallID {
			continue
		}
		summary.BilledAmount = summary.BilledAmount.Add(bt.Total)
		for _, item := range bt.Items {
			summary.BillBalance = summary.BillBalance.Add(LineBalance(item))
		}
	}

	for _, p := range payments {
		if p.PaymentType != models.PaymentTypeParticipant || p.StallID == nil || *p.StallID != stallID {
			continue
		}
		summary.AlreadyPaid = summary.AlreadyPaid.Add(p.AmountPaid)
	}

	if remaining := summary.BillBalance.Sub(summary.AlreadyPaid); remaining.IsPositive() {
		summary.RemainingBalance = remaining
	}
	return summary
}

// StallBalances reconciles every stall, preserving the order of stalls.
func StallBalances(stalls []*models.Stall, billings []*models.BillingTransaction, payments []*models.Payment) []StallSummary {
	byStall := make(map[int64][]*models.BillingTransaction, len(stalls))
	for _, bt := range billings {
		byStall[bt.StallID] = append(byStall[bt.StallID], bt)
	}
	paidTo := make(map[int64][]*models.Payment, len(stalls))
	for _, p := range payments {
		if p.StallID != nil {
			paidTo[*p.StallID] = append(paidTo[*p.StallID], p)
		}
	}

	summaries := make([]StallSummary, 0, len(stalls))
	for _, s := range stalls {
		summaries = append(summaries, StallBalance(s.ID, byStall[s.ID], paidTo[s.ID]))
	}
	return summaries
}

// EventSummary aggregates collections and payouts across the whole event.
func EventSummary(billings []*models.BillingTransaction, payments []*models.Payment, stalls []*models.Stall, registrations []*models.Registration) EventTotals {
	totals := EventTotals{
		TotalBillingCollected:      decimal.Zero,
		TotalRegistrationCollected: decimal.Zero,
		StallBookingFees:           decimal.Zero,
		TotalPaid:                  decimal.Zero,
	}

	for _, bt := range billings {
		totals.TotalBillingCollected = totals.TotalBillingCollected.Add(bt.Total)
	}
	for _, r := range registrations {
		if r.RegistrationType == models.RegistrationStallCounterBooking {
			continue
		}
		totals.TotalRegistrationCollected = totals.TotalRegistrationCollected.Add(r.Amount)
	}
	for _, s := range stalls {
		totals.StallBookingFees = totals.StallBookingFees.Add(s.RegistrationFee)
	}
	for _, p := range payments {
		if p.PaymentType == models.PaymentTypeOther {
			totals.TotalPaid = totals.TotalPaid.Add(p.AmountPaid)
		}
	}

	totals.TotalCollected = totals.TotalBillingCollected.
		Add(totals.TotalRegistrationCollected).
		Add(totals.StallBookingFees)
	totals.CashBalance = totals.TotalCollected.Sub(totals.TotalPaid)
	return totals
}

// ValidatePayment checks a participant payment against the stall's current
// remaining balance. It must run against the same snapshot the payment is
// written into.
func ValidatePayment(summary StallSummary, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(summary.RemainingBalance) {
		return fmt.Errorf("%w: stall %d can receive at most %s, got %s",
			ErrPaymentExceedsBalance,
			summary.StallID,
			summary.RemainingBalance.StringFixed(2),
			amount.StringFixed(2),
		)
	}
	return nil
}
