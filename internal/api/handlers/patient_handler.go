package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/smileworks/clinic-backend/internal/application/services"
	"github.com/smileworks/clinic-backend/internal/domain/entities"
)

// PatientService defines the interface for patient operations
type PatientService interface {
	Register(ctx context.Context, input services.RegisterPatientInput) (*entities.Person, error)
	GetProfile(ctx context.Context, id string) (*services.PatientProfile, error)
	UpdateProfile(ctx context.Context, id string, input services.UpdateProfileInput) (*entities.Person, error)
	Delete(ctx context.Context, id string) error
}

// PatientHandler handles patient requests
type PatientHandler struct {
	service PatientService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(service PatientService) *PatientHandler {
	return &PatientHandler{
		service: service,
	}
}

// RegisterPatient handles POST /api/patients
func (h *PatientHandler) RegisterPatient(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterPatientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	person, err := h.service.Register(r.Context(), input)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, person)
}

// GetPatient handles GET /api/patients/{id}
func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

// UpdatePatient handles PATCH /api/patients/{id}
func (h *PatientHandler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	var input services.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	person, err := h.service.UpdateProfile(r.Context(), id, input)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, person)
}

// DeletePatient handles DELETE /api/patients/{id}
func (h *PatientHandler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
