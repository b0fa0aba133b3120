package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Stall is a vendor's sales counter at the event
type Stall struct {
	ID              int64           `db:"id" json:"id"`
	CounterName     string          `db:"counter_name" json:"counter_name"`
	ParticipantName string          `db:"participant_name" json:"participant_name"`
	Mobile          string          `db:"mobile" json:"mobile"`
	PanchayathID    *int64          `db:"panchayath_id" json:"panchayath_id,omitempty"`
	WardID          *int64          `db:"ward_id" json:"ward_id,omitempty"`
	IsVerified      bool            `db:"is_verified" json:"is_verified"`
	RegistrationFee decimal.Decimal `db:"registration_fee" json:"registration_fee"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// Product is an item sold at a stall. SellingPrice is derived from CostPrice
// and MarginPercent on every read and has no column of its own.
type Product struct {
	ID            int64           `db:"id" json:"id"`
	StallID       int64           `db:"stall_id" json:"stall_id"`
	Name          string          `db:"name" json:"name"`
	CostPrice     decimal.Decimal `db:"cost_price" json:"cost_price"`
	MarginPercent decimal.Decimal `db:"margin_percent" json:"margin_percent"`
	SellingPrice  decimal.Decimal `db:"-" json:"selling_price"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// BillingTransaction is a sale recorded against a stall. Rows are never updated.
type BillingTransaction struct {
	ID         int64           `db:"id" json:"id"`
	BillNumber string          `db:"bill_number" json:"bill_number"`
	StallID    int64           `db:"stall_id" json:"stall_id"`
	Items      LineItems       `db:"items" json:"items"`
	Subtotal   decimal.Decimal `db:"subtotal" json:"subtotal"`
	Total      decimal.Decimal `db:"total" json:"total"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Payment is money paid out, either to a stall participant or for other
// event expenditure. StallID is set only for participant payments.
type Payment struct {
	ID          int64           `db:"id" json:"id"`
	PaymentType string          `db:"payment_type" json:"payment_type"`
	StallID     *int64          `db:"stall_id" json:"stall_id,omitempty"`
	AmountPaid  decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	Narration   *string         `db:"narration" json:"narration,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// Registration is a paid booking or registration taken at the event desk
type Registration struct {
	ID               int64           `db:"id" json:"id"`
	RegistrationType string          `db:"registration_type" json:"registration_type"`
	Name             string          `db:"name" json:"name"`
	Mobile           string          `db:"mobile" json:"mobile"`
	Amount           decimal.Decimal `db:"amount" json:"amount"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

type Panchayath struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	District  string    `db:"district" json:"district"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Ward struct {
	ID           int64     `db:"id" json:"id"`
	PanchayathID int64     `db:"panchayath_id" json:"panchayath_id"`
	WardNumber   int       `db:"ward_number" json:"ward_number"`
	Name         string    `db:"name" json:"name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// SurveyContent is one slide of the public content carousel
type SurveyContent struct {
	ID           int64     `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Body         string    `db:"body" json:"body"`
	ImageURL     string    `db:"image_url" json:"image_url"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// StallEnquiryField configures one question of the public stall enquiry form
type StallEnquiryField struct {
	ID                 int64       `db:"id" json:"id"`
	Label              string      `db:"label" json:"label"`
	FieldType          string      `db:"field_type" json:"field_type"`
	Options            StringSlice `db:"options" json:"options,omitempty"`
	IsRequired         bool        `db:"is_required" json:"is_required"`
	DisplayOrder       int         `db:"display_order" json:"display_order"`
	VisibleWhenFieldID *int64      `db:"visible_when_field_id" json:"visible_when_field_id,omitempty"`
	VisibleWhenValue   *string     `db:"visible_when_value" json:"visible_when_value,omitempty"`
	IsActive           bool        `db:"is_active" json:"is_active"`
	CreatedAt          time.Time   `db:"created_at" json:"created_at"`
}

type StallEnquiry struct {
	ID        int64           `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Mobile    string          `db:"mobile" json:"mobile"`
	Responses json.RawMessage `db:"responses" json:"responses"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

type Admin struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsSuper      bool      `db:"is_super" json:"is_super"`
	Permissions  []string  `db:"-" json:"permissions"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// AuditEntry records a write made through the API
type AuditEntry struct {
	ID         int64           `db:"id" json:"id"`
	EntityType string          `db:"entity_type" json:"entity_type"`
	EntityID   int64           `db:"entity_id" json:"entity_id"`
	Action     string          `db:"action" json:"action"`
	Details    json.RawMessage `db:"details" json:"details"`
	UserID     string          `db:"user_id" json:"user_id"`
	CreatedAt  time.Time       `db:"created_at" json:"-"`
}

// PaymentType constants
const (
	PaymentTypeParticipant = "participant"
	PaymentTypeOther       = "other"
)

// RegistrationType constants
const (
	RegistrationStallCounterBooking   = "stall_counter_booking"
	RegistrationEmploymentBooking     = "employment_booking"
	RegistrationEmploymentRegistering = "employment_registration"
)

// FieldType constants
const (
	FieldTypeText         = "text"
	FieldTypeTextarea     = "textarea"
	FieldTypeSingleChoice = "single_choice"
	FieldTypeMultiChoice  = "multi_choice"
)

// Permission constants
const (
	PermissionStalls        = "stalls"
	PermissionBilling       = "billing"
	PermissionPayments      = "payments"
	PermissionRegistrations = "registrations"
	PermissionAccounts      = "accounts"
	PermissionForms         = "forms"
	PermissionDirectory     = "directory"
)

// AllPermissions is the permission set held by super admins
var AllPermissions = []string{
	PermissionStalls,
	PermissionBilling,
	PermissionPayments,
	PermissionRegistrations,
	PermissionAccounts,
	PermissionForms,
	PermissionDirectory,
}

// AuditAction constants
const (
	AuditActionCreated  = "created"
	AuditActionImported = "imported"
	AuditActionVerified = "verified"
	AuditActionRepriced = "repriced"
)
