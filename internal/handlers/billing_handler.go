package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"event-ledger-service/internal/repositories"
	"event-ledger-service/internal/services"
)

type BillingHandler struct {
	billingService *services.BillingService
	logger         logrus.FieldLogger
}

func NewBillingHandler(billingService *services.BillingService, logger logrus.FieldLogger) *BillingHandler {
	return &BillingHandler{billingService: billingService, logger: logger}
}

func (h *BillingHandler) CreateBillingTransaction(w http.ResponseWriter, r *http.Request) {
	var input services.CreateBillingInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	bt, err := h.billingService.CreateBillingTransaction(r.Context(), input)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "CreateBillingTransaction", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, bt)
}

func (h *BillingHandler) GetBillingTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid billing transaction ID")
		return
	}

	bt, err := h.billingService.GetBillingTransaction(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "GetBillingTransaction", err)
		return
	}
	respondWithJSON(w, http.StatusOK, bt)
}

func (h *BillingHandler) ListBillingTransactions(w http.ResponseWriter, r *http.Request) {
	stallID, ok := queryID(r, "stall_id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid stall_id")
		return
	}

	bills, err := h.billingService.ListBillingTransactions(r.Context(), stallID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "ListBillingTransactions", err)
		return
	}
	respondWithJSON(w, http.StatusOK, bills)
}

type PaymentHandler struct {
	paymentService *services.PaymentService
	logger         logrus.FieldLogger
}

func NewPaymentHandler(paymentService *services.PaymentService, logger logrus.FieldLogger) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, logger: logger}
}

func (h *PaymentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var input services.RecordPaymentInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	payment, err := h.paymentService.RecordPayment(r.Context(), input)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "RecordPayment", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, payment)
}

func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	stallID, ok := queryID(r, "stall_id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid stall_id")
		return
	}
	filter := repositories.PaymentFilter{
		StallID:     stallID,
		PaymentType: r.URL.Query().Get("payment_type"),
	}

	payments, err := h.paymentService.ListPayments(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "ListPayments", err)
		return
	}
	respondWithJSON(w, http.StatusOK, payments)
}

type RegistrationHandler struct {
	registrationService *services.RegistrationService
	logger              logrus.FieldLogger
}

func NewRegistrationHandler(registrationService *services.RegistrationService, logger logrus.FieldLogger) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService, logger: logger}
}

func (h *RegistrationHandler) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	var input services.CreateRegistrationInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	reg, err := h.registrationService.CreateRegistration(r.Context(), input)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "CreateRegistration", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, reg)
}

func (h *RegistrationHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.registrationService.ListRegistrations(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		respondWithServiceError(w, r, h.logger, "ListRegistrations", err)
		return
	}
	respondWithJSON(w, http.StatusOK, regs)
}
