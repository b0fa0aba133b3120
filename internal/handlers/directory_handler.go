package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"event-ledger-service/internal/services"
)

type DirectoryHandler struct {
	directoryService *services.DirectoryService
	logger           logrus.FieldLogger
}

func NewDirectoryHandler(directoryService *services.DirectoryService, logger logrus.FieldLogger) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService, logger: logger}
}

func (h *DirectoryHandler) CreatePanchayath(w http.ResponseWriter, r *http.Request) {
	var input services.PanchayathInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	p, err := h.directoryService.CreatePanchayath(r.Context(), input)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "CreatePanchayath", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, p)
}

func (h *DirectoryHandler) ListPanchayaths(w http.ResponseWriter, r *http.Request) {
	panchayaths, err := h.directoryService.ListPanchayaths(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, "ListPanchayaths", err)
		return
	}
	respondWithJSON(w, http.StatusOK, panchayaths)
}

func (h *DirectoryHandler) CreateWard(w http.ResponseWriter, r *http.Request) {
	panchayathID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid panchayath ID")
		return
	}
	var input services.WardInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	ward, err := h.directoryService.CreateWard(r.Context(), panchayathID, input)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "CreateWard", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, ward)
}

func (h *DirectoryHandler) ListWards(w http.ResponseWriter, r *http.Request) {
	panchayathID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid panchayath ID")
		return
	}

	wards, err := h.directoryService.ListWards(r.Context(), panchayathID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "ListWards", err)
		return
	}
	respondWithJSON(w, http.StatusOK, wards)
}

func (h *DirectoryHandler) CreateSurveyContent(w http.ResponseWriter, r *http.Request) {
	var input services.SurveyContentInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	content, err := h.directoryService.CreateSurveyContent(r.Context(), input)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "CreateSurveyContent", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, content)
}

func (h *DirectoryHandler) ListSurveyContent(w http.ResponseWriter, r *http.Request) {
	content, err := h.directoryService.ListSurveyContent(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, "ListSurveyContent", err)
		return
	}
	respondWithJSON(w, http.StatusOK, content)
}

type AuthHandler struct {
	authService *services.AuthService
	logger      logrus.FieldLogger
}

func NewAuthHandler(authService *services.AuthService, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := h.authService.Login(r.Context(), input)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "Login", err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
