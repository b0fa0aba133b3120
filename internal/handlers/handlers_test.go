package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"event-ledger-service/internal/auth"
	"event-ledger-service/internal/config"
	"event-ledger-service/internal/models"
	"event-ledger-service/internal/repositories"
	"event-ledger-service/internal/services"
	"event-ledger-service/internal/testutil"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	svc     *services.Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.OpenDB(t)

	repos := services.NewRepositories(db)
	repos.Stalls = repositories.NewStallRepository(db, repositories.WithoutRowLocks())
	svc := services.New(db, repos, auth.NewTokenManager("test-secret", "event-ledger", time.Hour))

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := &config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"*"}}}

	return &testServer{t: t, handler: SetupRouter(svc, cfg, logger), svc: svc}
}

// login creates an admin with the given permissions and returns its token.
func (s *testServer) login(username string, permissions ...string) string {
	s.t.Helper()
	_, err := s.svc.Auth.CreateAdmin(context.Background(), services.CreateAdminInput{
		Username: username, Password: "password1", Permissions: permissions,
	})
	if err != nil {
		s.t.Fatalf("create admin: %v", err)
	}

	rec := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": username, "password": "password1"})
	if rec.Code != http.StatusOK {
		s.t.Fatalf("login: status %d body %s", rec.Code, rec.Body)
	}
	var result struct {
		Token string `json:"token"`
	}
	decode(s.t, rec, &result)
	return result.Token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %s: %v", rec.Body, err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body)
	}
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/health", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected a request id header")
	}
}

func TestAuthGuards(t *testing.T) {
	s := newTestServer(t)
	billingOnly := s.login("cashier", models.PermissionBilling)

	tests := []struct {
		name   string
		token  string
		path   string
		status int
	}{
		{"no token", "", "/api/v1/stalls", http.StatusUnauthorized},
		{"bad token", "garbage", "/api/v1/stalls", http.StatusUnauthorized},
		{"missing permission", billingOnly, "/api/v1/stalls", http.StatusForbidden},
		{"missing accounts permission", billingOnly, "/api/v1/accounts/summary", http.StatusForbidden},
		{"granted", billingOnly, "/api/v1/billing", http.StatusOK},
		{"public", "", "/api/v1/public/survey-content", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, s.do(http.MethodGet, tt.path, tt.token, nil), tt.status)
		})
	}

	rec := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "cashier", "password": "nope"})
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestLedgerFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login("desk", models.AllPermissions...)

	rec := s.do(http.MethodPost, "/api/v1/stalls", token, map[string]any{
		"counter_name": "Tea", "participant_name": "Anu", "registration_fee": "500",
	})
	expectStatus(t, rec, http.StatusCreated)
	var stall models.Stall
	decode(t, rec, &stall)

	rec = s.do(http.MethodPost, "/api/v1/stalls", token, map[string]any{"counter_name": "Tea", "participant_name": "Other"})
	expectStatus(t, rec, http.StatusConflict)

	rec = s.do(http.MethodPost, "/api/v1/billing", token, map[string]any{
		"stall_id": stall.ID,
		"items":    []map[string]any{{"name": "Chai", "price": "100", "quantity": 2, "margin": 20}},
	})
	expectStatus(t, rec, http.StatusCreated)

	rec = s.do(http.MethodPost, "/api/v1/payments", token, map[string]any{
		"payment_type": "participant", "stall_id": stall.ID, "amount_paid": "50",
	})
	expectStatus(t, rec, http.StatusCreated)

	rec = s.do(http.MethodPost, "/api/v1/payments", token, map[string]any{
		"payment_type": "participant", "stall_id": stall.ID, "amount_paid": "120",
	})
	expectStatus(t, rec, http.StatusUnprocessableEntity)
	var errBody ErrorResponse
	decode(t, rec, &errBody)
	if !strings.Contains(errBody.Error, "at most 110.00") {
		t.Fatalf("expected remaining balance in message, got %q", errBody.Error)
	}

	rec = s.do(http.MethodGet, "/api/v1/stalls/"+itoa(stall.ID)+"/balance", token, nil)
	expectStatus(t, rec, http.StatusOK)
	var balance map[string]any
	decode(t, rec, &balance)
	if balance["bill_balance"] != "160" || balance["already_paid"] != "50" || balance["remaining_balance"] != "110" {
		t.Fatalf("unexpected balance %v", balance)
	}

	rec = s.do(http.MethodGet, "/api/v1/accounts/summary", token, nil)
	expectStatus(t, rec, http.StatusOK)
	var summary struct {
		Totals map[string]string `json:"totals"`
		Stalls []map[string]any  `json:"stalls"`
	}
	decode(t, rec, &summary)
	if summary.Totals["total_collected"] != "700" || len(summary.Stalls) != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	rec = s.do(http.MethodGet, "/api/v1/accounts/export", token, nil)
	expectStatus(t, rec, http.StatusOK)
	if rec.Header().Get("Content-Type") != xlsxContentType || rec.Body.Len() == 0 {
		t.Fatalf("unexpected export response %q (%d bytes)", rec.Header().Get("Content-Type"), rec.Body.Len())
	}
}

func TestErrorResponses(t *testing.T) {
	s := newTestServer(t)
	token := s.login("desk", models.AllPermissions...)

	rec := s.do(http.MethodGet, "/api/v1/stalls/404", token, nil)
	expectStatus(t, rec, http.StatusNotFound)

	rec = s.do(http.MethodGet, "/api/v1/stalls/404/balance", token, nil)
	expectStatus(t, rec, http.StatusNotFound)

	rec = s.do(http.MethodPost, "/api/v1/payments", token, map[string]any{"payment_type": "refund", "amount_paid": "-1"})
	expectStatus(t, rec, http.StatusBadRequest)
	var errBody ErrorResponse
	decode(t, rec, &errBody)
	if errBody.Fields["payment_type"] == "" || errBody.Fields["amount_paid"] == "" {
		t.Fatalf("expected field errors, got %+v", errBody)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/stalls", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = s.do(http.MethodGet, "/api/v1/billing?stall_id=abc", token, nil)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestBulkImportPartialContent(t *testing.T) {
	s := newTestServer(t)
	token := s.login("desk", models.PermissionStalls)

	rec := s.do(http.MethodPost, "/api/v1/stalls", token, map[string]any{"counter_name": "Bakery", "participant_name": "Joy"})
	expectStatus(t, rec, http.StatusCreated)
	var stall models.Stall
	decode(t, rec, &stall)

	path := "/api/v1/stalls/" + itoa(stall.ID) + "/products/bulk"
	rec = s.do(http.MethodPost, path, token, map[string]any{"products": []map[string]any{
		{"name": "Bun", "cost_price": "10"},
		{"name": "", "cost_price": "5"},
	}})
	expectStatus(t, rec, http.StatusPartialContent)

	rec = s.do(http.MethodPost, path, token, map[string]any{"products": []map[string]any{}})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = s.do(http.MethodGet, "/api/v1/stalls/"+itoa(stall.ID)+"/products", token, nil)
	expectStatus(t, rec, http.StatusOK)
	var products []models.Product
	decode(t, rec, &products)
	if len(products) != 1 || products[0].SellingPrice.String() != "12" {
		t.Fatalf("unexpected products %+v", products)
	}
}

func TestPublicEnquiry(t *testing.T) {
	s := newTestServer(t)
	token := s.login("forms", models.PermissionForms)

	rec := s.do(http.MethodPost, "/api/v1/enquiry-fields", token, map[string]any{
		"label": "What will you sell?", "field_type": "text", "is_required": true,
	})
	expectStatus(t, rec, http.StatusCreated)
	var field models.StallEnquiryField
	decode(t, rec, &field)

	rec = s.do(http.MethodGet, "/api/v1/public/enquiry-fields", "", nil)
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(http.MethodPost, "/api/v1/public/enquiries", "", map[string]any{
		"name": "Asha", "mobile": "9000000000", "responses": map[string]any{},
	})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = s.do(http.MethodPost, "/api/v1/public/enquiries", "", map[string]any{
		"name": "Asha", "mobile": "9000000000", "responses": map[string]any{itoa(field.ID): "Pickles"},
	})
	expectStatus(t, rec, http.StatusCreated)

	rec = s.do(http.MethodGet, "/api/v1/enquiries", token, nil)
	expectStatus(t, rec, http.StatusOK)
	var enquiries []models.StallEnquiry
	decode(t, rec, &enquiries)
	if len(enquiries) != 1 {
		t.Fatalf("expected 1 enquiry, got %d", len(enquiries))
	}
}

func TestDirectoryRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.login("dir", models.PermissionDirectory)

	rec := s.do(http.MethodPost, "/api/v1/panchayaths", token, map[string]any{"name": "Pala", "district": "Kottayam"})
	expectStatus(t, rec, http.StatusCreated)
	var p models.Panchayath
	decode(t, rec, &p)

	wards := "/api/v1/panchayaths/" + itoa(p.ID) + "/wards"
	expectStatus(t, s.do(http.MethodPost, wards, token, map[string]any{"ward_number": 3}), http.StatusCreated)
	expectStatus(t, s.do(http.MethodPost, wards, token, map[string]any{"ward_number": 3}), http.StatusConflict)
	expectStatus(t, s.do(http.MethodGet, "/api/v1/panchayaths/999/wards", token, nil), http.StatusNotFound)

	expectStatus(t, s.do(http.MethodPost, "/api/v1/survey-content", token, map[string]any{"title": "Welcome", "body": "Hello"}), http.StatusCreated)
	rec = s.do(http.MethodGet, "/api/v1/public/survey-content", "", nil)
	expectStatus(t, rec, http.StatusOK)
	var content []models.SurveyContent
	decode(t, rec, &content)
	if len(content) != 1 {
		t.Fatalf("expected 1 slide, got %d", len(content))
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
