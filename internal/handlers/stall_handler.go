package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"event-ledger-service/internal/services"
)

type StallHandler struct {
	stallService *services.StallService
	logger       logrus.FieldLogger
}

func NewStallHandler(stallService *services.StallService, logger logrus.FieldLogger) *StallHandler {
	return &StallHandler{stallService: stallService, logger: logger}
}

func (h *StallHandler) CreateStall(w http.ResponseWriter, r *http.Request) {
	var input services.CreateStallInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	stall, err := h.stallService.CreateStall(r.Context(), input)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "CreateStall", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, stall)
}

func (h *StallHandler) ListStalls(w http.ResponseWriter, r *http.Request) {
	stalls, err := h.stallService.ListStalls(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, "ListStalls", err)
		return
	}
	respondWithJSON(w, http.StatusOK, stalls)
}

func (h *StallHandler) GetStall(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid stall ID")
		return
	}

	stall, err := h.stallService.GetStall(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "GetStall", err)
		return
	}
	respondWithJSON(w, http.StatusOK, stall)
}

func (h *StallHandler) VerifyStall(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid stall ID")
		return
	}

	stall, err := h.stallService.VerifyStall(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "VerifyStall", err)
		return
	}
	respondWithJSON(w, http.StatusOK, stall)
}

func (h *StallHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	stallID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid stall ID")
		return
	}
	var input services.ProductInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	product, err := h.stallService.AddProduct(r.Context(), stallID, input)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "AddProduct", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, product)
}

func (h *StallHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	stallID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid stall ID")
		return
	}

	products, err := h.stallService.ListProducts(r.Context(), stallID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "ListProducts", err)
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *StallHandler) UpdateProductPricing(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	var input services.PricingInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	product, err := h.stallService.UpdateProductPricing(r.Context(), productID, input)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "UpdateProductPricing", err)
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}
