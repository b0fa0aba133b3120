package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"event-ledger-service/internal/services"
)

type EnquiryHandler struct {
	enquiryService *services.EnquiryService
	logger         logrus.FieldLogger
}

func NewEnquiryHandler(enquiryService *services.EnquiryService, logger logrus.FieldLogger) *EnquiryHandler {
	return &EnquiryHandler{enquiryService: enquiryService, logger: logger}
}

func (h *EnquiryHandler) CreateField(w http.ResponseWriter, r *http.Request) {
	var input services.CreateFieldInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	field, err := h.enquiryService.CreateField(r.Context(), input)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "CreateField", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, field)
}

func (h *EnquiryHandler) ListFields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.enquiryService.ListFields(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, "ListFields", err)
		return
	}
	respondWithJSON(w, http.StatusOK, fields)
}

func (h *EnquiryHandler) SubmitEnquiry(w http.ResponseWriter, r *http.Request) {
	var input services.SubmitEnquiryInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	enquiry, err := h.enquiryService.SubmitEnquiry(r.Context(), input)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "SubmitEnquiry", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, enquiry)
}

func (h *EnquiryHandler) ListEnquiries(w http.ResponseWriter, r *http.Request) {
	enquiries, err := h.enquiryService.ListEnquiries(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, "ListEnquiries", err)
		return
	}
	respondWithJSON(w, http.StatusOK, enquiries)
}
