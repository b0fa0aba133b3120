package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"event-ledger-service/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReconciliationHandler serves stall balances and the event accounts.
type ReconciliationHandler struct {
	accountsService *services.AccountsService
	logger          logrus.FieldLogger
	now             func() time.Time
}

func NewReconciliationHandler(accountsService *services.AccountsService, logger logrus.FieldLogger) *ReconciliationHandler {
	return &ReconciliationHandler{
		accountsService: accountsService,
		logger:          logger,
		now:             time.Now,
	}
}

func (h *ReconciliationHandler) GetStallBalance(w http.ResponseWriter, r *http.Request) {
	stallID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid stall ID")
		return
	}

	summary, err := h.accountsService.GetStallBalance(r.Context(), stallID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "GetStallBalance", err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

func (h *ReconciliationHandler) GetAccountsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.accountsService.GetAccountsSummary(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, "GetAccountsSummary", err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// ExportLedger streams the accounts workbook. It is built in memory first so
// a failure still gets a JSON error response.
func (h *ReconciliationHandler) ExportLedger(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.accountsService.ExportLedger(r.Context(), &buf); err != nil {
		respondWithServiceError(w, r, h.logger, "ExportLedger", err)
		return
	}

	filename := fmt.Sprintf("ledger-%s.xlsx", h.now().Format("20060102-150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
