package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/smileworks/clinic-backend/internal/application/services"
	"github.com/smileworks/clinic-backend/internal/domain/providers"
)

// DirectoryService defines the interface for directory lookups
type DirectoryService interface {
	Suggest(ctx context.Context, req services.SuggestRequest) (*services.SuggestResponse, error)
}

// DirectoryHandler handles as-you-type directory lookups
type DirectoryHandler struct {
	service DirectoryService
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(service DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{
		service: service,
	}
}

// Suggest handles GET /api/directory/{category}
func (h *DirectoryHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	if category == "" {
		respondWithError(w, http.StatusBadRequest, "directory category is required")
		return
	}

	req := services.SuggestRequest{
		Category: providers.DirectoryCategory(category),
		Query:    r.URL.Query().Get("q"),
		Session:  r.URL.Query().Get("session"),
	}

	if seqStr := r.URL.Query().Get("seq"); seqStr != "" {
		seq, err := strconv.ParseUint(seqStr, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "seq must be a non-negative integer")
			return
		}
		req.Seq = seq
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		req.Limit = limit
	}

	resp, err := h.service.Suggest(r.Context(), req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}
