package repositories_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"event-ledger-service/internal/models"
	"event-ledger-service/internal/repositories"
	"event-ledger-service/internal/testutil"
)

func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) error {
	t.Helper()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return nil
}

func mustTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) {
	t.Helper()
	if err := inTx(t, db, fn); err != nil {
		t.Fatalf("tx: %v", err)
	}
}

func insertStall(t *testing.T, db *sql.DB, name string, fee string) *models.Stall {
	t.Helper()
	s := &models.Stall{CounterName: name, ParticipantName: "Owner " + name, RegistrationFee: decimal.RequireFromString(fee)}
	repo := repositories.NewStallRepository(db)
	mustTx(t, db, func(tx *sql.Tx) error { return repo.InsertStall(context.Background(), tx, s) })
	return s
}

func TestStallRepository(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	repo := repositories.NewStallRepository(db)

	spices := insertStall(t, db, "Spices", "500")
	insertStall(t, db, "Bakery", "250.50")

	err := inTx(t, db, func(tx *sql.Tx) error {
		return repo.InsertStall(ctx, tx, &models.Stall{CounterName: "Spices", ParticipantName: "Other"})
	})
	if !errors.Is(err, repositories.ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	got, err := repo.GetStallByID(ctx, spices.ID)
	if err != nil {
		t.Fatalf("get stall: %v", err)
	}
	if got.CounterName != "Spices" || !got.RegistrationFee.Equal(decimal.NewFromInt(500)) || got.IsVerified {
		t.Fatalf("unexpected stall %+v", got)
	}
	if got.PanchayathID != nil {
		t.Fatalf("expected no panchayath, got %v", *got.PanchayathID)
	}

	mustTx(t, db, func(tx *sql.Tx) error { return repo.SetVerified(ctx, tx, spices.ID, true) })
	got, _ = repo.GetStallByID(ctx, spices.ID)
	if !got.IsVerified {
		t.Fatal("expected stall to be verified")
	}

	err = inTx(t, db, func(tx *sql.Tx) error { return repo.SetVerified(ctx, tx, 999, true) })
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := repo.GetStallByID(ctx, 999); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	stalls, err := repo.ListStalls(ctx)
	if err != nil {
		t.Fatalf("list stalls: %v", err)
	}
	if len(stalls) != 2 || stalls[0].CounterName != "Bakery" {
		t.Fatalf("expected stalls ordered by name, got %d", len(stalls))
	}
	if !stalls[0].RegistrationFee.Equal(decimal.RequireFromString("250.50")) {
		t.Fatalf("unexpected fee %s", stalls[0].RegistrationFee)
	}
}

func TestProductRepositoryDerivesSellingPrice(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	repo := repositories.NewProductRepository(db)
	stall := insertStall(t, db, "Crafts", "0")

	p := &models.Product{StallID: stall.ID, Name: "Basket", CostPrice: decimal.NewFromInt(100), MarginPercent: decimal.NewFromInt(20)}
	mustTx(t, db, func(tx *sql.Tx) error { return repo.InsertProduct(ctx, tx, p) })
	if !p.SellingPrice.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected selling price 120 after insert, got %s", p.SellingPrice)
	}

	mustTx(t, db, func(tx *sql.Tx) error {
		return repo.UpdateProductPricing(ctx, tx, p.ID, decimal.NewFromInt(200), decimal.NewFromInt(10))
	})

	got, err := repo.GetProductByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if !got.SellingPrice.Equal(decimal.NewFromInt(220)) {
		t.Fatalf("expected recomputed selling price 220, got %s", got.SellingPrice)
	}

	products, err := repo.ListProductsByStall(ctx, stall.ID)
	if err != nil || len(products) != 1 {
		t.Fatalf("list products: %v (%d)", err, len(products))
	}
}

func TestBillingRepositoryRoundTripsLineItems(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	repo := repositories.NewBillingRepository(db)
	a := insertStall(t, db, "A", "0")
	b := insertStall(t, db, "B", "0")

	productID := int64(3)
	bt := &models.BillingTransaction{
		BillNumber: "BILL-1",
		StallID:    a.ID,
		Items: models.LineItems{
			{ProductID: &productID, Name: "Tea", Price: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(2),
				Margin: decimal.NewNullDecimal(decimal.NewFromInt(15))},
			{Name: "Cake", Price: decimal.RequireFromString("12.50"), Quantity: decimal.NewFromInt(1)},
		},
		Subtotal: decimal.RequireFromString("212.50"),
		Total:    decimal.RequireFromString("212.50"),
	}
	mustTx(t, db, func(tx *sql.Tx) error { return repo.InsertBillingTransaction(ctx, tx, bt) })
	mustTx(t, db, func(tx *sql.Tx) error {
		return repo.InsertBillingTransaction(ctx, tx, &models.BillingTransaction{
			BillNumber: "BILL-2", StallID: b.ID, Subtotal: decimal.NewFromInt(5), Total: decimal.NewFromInt(5),
		})
	})

	err := inTx(t, db, func(tx *sql.Tx) error {
		return repo.InsertBillingTransaction(ctx, tx, &models.BillingTransaction{BillNumber: "BILL-1", StallID: a.ID})
	})
	if !errors.Is(err, repositories.ErrDuplicate) {
		t.Fatalf("expected duplicate bill number, got %v", err)
	}

	got, err := repo.GetBillingTransactionByID(ctx, bt.ID)
	if err != nil {
		t.Fatalf("get billing: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got.Items))
	}
	first, second := got.Items[0], got.Items[1]
	if first.ProductID == nil || *first.ProductID != 3 || !first.Margin.Valid || !first.Margin.Decimal.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("unexpected first item %+v", first)
	}
	if second.Margin.Valid {
		t.Fatalf("expected missing margin to stay unset, got %s", second.Margin.Decimal)
	}

	byStall, err := repo.ListBillingTransactionsByStall(ctx, db, a.ID)
	if err != nil || len(byStall) != 1 {
		t.Fatalf("list by stall: %v (%d)", err, len(byStall))
	}
	all, err := repo.ListBillingTransactions(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("list all: %v (%d)", err, len(all))
	}
	if len(all[1].Items) != 0 {
		t.Fatalf("expected empty items on second bill, got %d", len(all[1].Items))
	}
}

func TestPaymentRepositoryFilters(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	repo := repositories.NewPaymentRepository(db)
	stall := insertStall(t, db, "A", "0")
	narration := "electricity"

	payments := []*models.Payment{
		{PaymentType: models.PaymentTypeParticipant, StallID: &stall.ID, AmountPaid: decimal.NewFromInt(50)},
		{PaymentType: models.PaymentTypeOther, AmountPaid: decimal.RequireFromString("20.25"), Narration: &narration},
		{PaymentType: models.PaymentTypeParticipant, StallID: &stall.ID, AmountPaid: decimal.NewFromInt(10)},
	}
	mustTx(t, db, func(tx *sql.Tx) error {
		for _, p := range payments {
			if err := repo.InsertPayment(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})

	all, err := repo.ListPayments(ctx, repositories.PaymentFilter{})
	if err != nil || len(all) != 3 {
		t.Fatalf("list all: %v (%d)", err, len(all))
	}
	if all[1].StallID != nil || all[1].Narration == nil || *all[1].Narration != "electricity" {
		t.Fatalf("unexpected other payment %+v", all[1])
	}

	others, err := repo.ListPayments(ctx, repositories.PaymentFilter{PaymentType: models.PaymentTypeOther})
	if err != nil || len(others) != 1 || !others[0].AmountPaid.Equal(decimal.RequireFromString("20.25")) {
		t.Fatalf("list others: %v (%d)", err, len(others))
	}

	byStall, err := repo.ListPaymentsByStall(ctx, db, stall.ID)
	if err != nil || len(byStall) != 2 {
		t.Fatalf("list by stall: %v (%d)", err, len(byStall))
	}
	filtered, err := repo.ListPayments(ctx, repositories.PaymentFilter{StallID: &stall.ID, PaymentType: models.PaymentTypeParticipant})
	if err != nil || len(filtered) != 2 {
		t.Fatalf("list filtered: %v (%d)", err, len(filtered))
	}
}

func TestRegistrationRepository(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	repo := repositories.NewRegistrationRepository(db)

	mustTx(t, db, func(tx *sql.Tx) error {
		for _, reg := range []*models.Registration{
			{RegistrationType: models.RegistrationStallCounterBooking, Name: "A", Amount: decimal.NewFromInt(1000)},
			{RegistrationType: models.RegistrationEmploymentBooking, Name: "B", Amount: decimal.NewFromInt(100)},
		} {
			if err := repo.InsertRegistration(ctx, tx, reg); err != nil {
				return err
			}
		}
		return nil
	})

	all, err := repo.ListRegistrations(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("list all: %v (%d)", err, len(all))
	}
	bookings, err := repo.ListRegistrations(ctx, models.RegistrationEmploymentBooking)
	if err != nil || len(bookings) != 1 || bookings[0].Name != "B" {
		t.Fatalf("list bookings: %v (%d)", err, len(bookings))
	}
}

func TestDirectoryRepository(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	repo := repositories.NewDirectoryRepository(db)

	p := &models.Panchayath{Name: "Kottayam", District: "Kottayam"}
	mustTx(t, db, func(tx *sql.Tx) error { return repo.InsertPanchayath(ctx, tx, p) })
	mustTx(t, db, func(tx *sql.Tx) error {
		if err := repo.InsertWard(ctx, tx, &models.Ward{PanchayathID: p.ID, WardNumber: 2, Name: "Two"}); err != nil {
			return err
		}
		return repo.InsertWard(ctx, tx, &models.Ward{PanchayathID: p.ID, WardNumber: 1, Name: "One"})
	})

	err := inTx(t, db, func(tx *sql.Tx) error {
		return repo.InsertWard(ctx, tx, &models.Ward{PanchayathID: p.ID, WardNumber: 1})
	})
	if !errors.Is(err, repositories.ErrDuplicate) {
		t.Fatalf("expected duplicate ward, got %v", err)
	}

	wards, err := repo.ListWards(ctx, p.ID)
	if err != nil || len(wards) != 2 || wards[0].WardNumber != 1 {
		t.Fatalf("list wards: %v (%d)", err, len(wards))
	}

	mustTx(t, db, func(tx *sql.Tx) error {
		for _, c := range []*models.SurveyContent{
			{Title: "Second", Body: "b", DisplayOrder: 2, IsActive: true},
			{Title: "Hidden", Body: "h", DisplayOrder: 0, IsActive: false},
			{Title: "First", Body: "a", DisplayOrder: 1, IsActive: true},
		} {
			if err := repo.InsertSurveyContent(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
	content, err := repo.ListActiveSurveyContent(ctx)
	if err != nil || len(content) != 2 || content[0].Title != "First" {
		t.Fatalf("list content: %v (%d)", err, len(content))
	}
}

func TestEnquiryRepository(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	repo := repositories.NewEnquiryRepository(db)

	parent := &models.StallEnquiryField{Label: "Need a stall?", FieldType: models.FieldTypeSingleChoice,
		Options: models.StringSlice{"yes", "no"}, IsRequired: true, DisplayOrder: 1, IsActive: true}
	mustTx(t, db, func(tx *sql.Tx) error { return repo.InsertField(ctx, tx, parent) })

	expected := "yes"
	child := &models.StallEnquiryField{Label: "Products", FieldType: models.FieldTypeText, DisplayOrder: 2,
		VisibleWhenFieldID: &parent.ID, VisibleWhenValue: &expected, IsActive: true}
	mustTx(t, db, func(tx *sql.Tx) error { return repo.InsertField(ctx, tx, child) })

	fields, err := repo.ListActiveFields(ctx)
	if err != nil || len(fields) != 2 {
		t.Fatalf("list fields: %v (%d)", err, len(fields))
	}
	if len(fields[0].Options) != 2 || fields[1].Options != nil {
		t.Fatalf("unexpected options %v / %v", fields[0].Options, fields[1].Options)
	}
	if fields[1].VisibleWhenFieldID == nil || *fields[1].VisibleWhenFieldID != parent.ID {
		t.Fatalf("expected condition on parent field, got %+v", fields[1])
	}

	responses, _ := json.Marshal(map[string]string{"1": "yes"})
	mustTx(t, db, func(tx *sql.Tx) error {
		return repo.InsertEnquiry(ctx, tx, &models.StallEnquiry{Name: "Asha", Mobile: "9000000000", Responses: responses})
	})
	enquiries, err := repo.ListEnquiries(ctx)
	if err != nil || len(enquiries) != 1 {
		t.Fatalf("list enquiries: %v (%d)", err, len(enquiries))
	}
	if string(enquiries[0].Responses) != `{"1":"yes"}` {
		t.Fatalf("unexpected responses %s", enquiries[0].Responses)
	}
}

func TestAdminRepository(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	repo := repositories.NewAdminRepository(db)

	admin := &models.Admin{Username: "desk", PasswordHash: "hash", Permissions: []string{"payments", "billing"}}
	mustTx(t, db, func(tx *sql.Tx) error { return repo.InsertAdmin(ctx, tx, admin) })

	err := inTx(t, db, func(tx *sql.Tx) error {
		return repo.InsertAdmin(ctx, tx, &models.Admin{Username: "desk", PasswordHash: "x"})
	})
	if !errors.Is(err, repositories.ErrDuplicate) {
		t.Fatalf("expected duplicate admin, got %v", err)
	}

	got, err := repo.GetAdminByUsername(ctx, "desk")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if len(got.Permissions) != 2 || got.Permissions[0] != "billing" {
		t.Fatalf("unexpected permissions %v", got.Permissions)
	}
	if _, err := repo.GetAdminByUsername(ctx, "nobody"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAuditRepository(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	repo := repositories.NewAuditRepository(db)

	mustTx(t, db, func(tx *sql.Tx) error {
		if err := repo.CreateAuditEntry(ctx, tx, &models.AuditEntry{
			EntityType: "payment", EntityID: 7, Action: models.AuditActionCreated,
			Details: json.RawMessage(`{"amount":"50"}`), UserID: "desk",
		}); err != nil {
			return err
		}
		return repo.CreateAuditEntry(ctx, tx, &models.AuditEntry{EntityType: "payment", EntityID: 7, Action: "noted"})
	})

	entries, err := repo.ListAuditEntries(ctx, "payment", 7)
	if err != nil || len(entries) != 2 {
		t.Fatalf("list audit: %v (%d)", err, len(entries))
	}
	if string(entries[0].Details) != `{"amount":"50"}` || entries[1].Details != nil {
		t.Fatalf("unexpected details %s / %s", entries[0].Details, entries[1].Details)
	}
}

func TestLockStallReadsFullRow(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	repo := repositories.NewStallRepository(db, repositories.WithoutRowLocks())

	bakery := insertStall(t, db, "Bakery", "250.50")
	mustTx(t, db, func(tx *sql.Tx) error { return repo.SetVerified(ctx, tx, bakery.ID, true) })

	var locked *models.Stall
	mustTx(t, db, func(tx *sql.Tx) error {
		var err error
		locked, err = repo.LockStall(ctx, tx, bakery.ID)
		return err
	})
	if locked.ID != bakery.ID || locked.CounterName != "Bakery" || locked.ParticipantName != "Owner Bakery" {
		t.Fatalf("unexpected stall %+v", locked)
	}
	if !locked.IsVerified || !locked.RegistrationFee.Equal(decimal.RequireFromString("250.50")) || locked.CreatedAt.IsZero() {
		t.Fatalf("expected every column scanned, got %+v", locked)
	}

	err := inTx(t, db, func(tx *sql.Tx) error {
		_, err := repo.LockStall(ctx, tx, 999)
		return err
	})
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
