package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"event-ledger-service/internal/services"
)

// DataHandler accepts bulk uploads
type DataHandler struct {
	stallService *services.StallService
	logger       logrus.FieldLogger
}

func NewDataHandler(stallService *services.StallService, logger logrus.FieldLogger) *DataHandler {
	return &DataHandler{
		stallService: stallService,
		logger:       logger,
	}
}

type ProductsRequest struct {
	Products []services.ProductInput `json:"products"`
}

// ImportProducts answers 206 when some rows were rejected.
func (h *DataHandler) ImportProducts(w http.ResponseWriter, r *http.Request) {
	stallID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid stall ID")
		return
	}

	var request ProductsRequest
	if err := decodeJSON(w, r, &request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if len(request.Products) == 0 {
		respondWithError(w, http.StatusBadRequest, "No products provided")
		return
	}

	result, err := h.stallService.ImportProducts(r.Context(), stallID, request.Products)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "ImportProducts", err)
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusPartialContent
	}
	respondWithJSON(w, status, result)
}
