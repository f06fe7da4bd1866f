package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"waypost/internal/httputil"
	"waypost/internal/model"
	"waypost/internal/service"
	"waypost/internal/transport/http/middleware"
)

// RoadmapHandler groups roadmap, step and lookback endpoints.
type RoadmapHandler struct {
	roadmapService *service.RoadmapService
}

func NewRoadmapHandler(roadmapService *service.RoadmapService) *RoadmapHandler {
	return &RoadmapHandler{roadmapService: roadmapService}
}

// Create stores a new roadmap
// POST /roadmaps
func (h *RoadmapHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.CreateRoadmapRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	roadmap, err := h.roadmapService.Create(r.Context(), userID, &req)
	if err != nil {
		writeRoadmapError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, roadmap)
}

// Update rewrites the caller's roadmap
// PUT /roadmaps/{id}
func (h *RoadmapHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}
	roadmapID := chi.URLParam(r, "id")

	var req model.CreateRoadmapRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	roadmap, err := h.roadmapService.Update(r.Context(), roadmapID, userID, &req)
	if err != nil {
		writeRoadmapError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, roadmap)
}

// Delete removes the caller's roadmap
// DELETE /roadmaps/{id}
func (h *RoadmapHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}
	roadmapID := chi.URLParam(r, "id")

	if err := h.roadmapService.Delete(r.Context(), roadmapID, userID); err != nil {
		writeRoadmapError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Roadmap deleted"})
}

// GetByID returns one roadmap with its steps
// GET /roadmaps/{id}
func (h *RoadmapHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	roadmapID := chi.URLParam(r, "id")

	roadmap, steps, err := h.roadmapService.GetByID(r.Context(), roadmapID, middleware.ViewerID(r.Context()))
	if err != nil {
		writeRoadmapError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"roadmap": roadmap,
		"steps":   steps,
	})
}

// ListByUser lists a user's roadmaps
// GET /profiles/{id}/roadmaps
func (h *RoadmapHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	resp, err := h.roadmapService.ListByUser(r.Context(), userID, r.URL.Query().Get("cursor"), queryLimit(r))
	if err != nil {
		writeRoadmapError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Feed lists roadmaps by the caller and everyone they follow
// GET /roadmaps/feed
func (h *RoadmapHandler) Feed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	resp, err := h.roadmapService.Feed(r.Context(), userID, r.URL.Query().Get("cursor"), queryLimit(r))
	if err != nil {
		writeRoadmapError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Search lists public roadmaps by title
// GET /roadmaps/search?q=...
func (h *RoadmapHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		httputil.WriteBadRequest(w, "Search query is required")
		return
	}

	resp, err := h.roadmapService.Search(r.Context(), query, r.URL.Query().Get("cursor"), queryLimit(r))
	if err != nil {
		writeRoadmapError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// CreateStep appends a step
// POST /steps
func (h *RoadmapHandler) CreateStep(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.CreateStepRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.RoadmapID == "" {
		httputil.WriteBadRequest(w, "Roadmap is required")
		return
	}

	step, err := h.roadmapService.CreateStep(r.Context(), userID, &req)
	if err != nil {
		writeRoadmapError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, step)
}

// UpdateStep rewrites a step
// PUT /steps/{id}
func (h *RoadmapHandler) UpdateStep(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}
	stepID := chi.URLParam(r, "id")

	var req model.CreateStepRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	step, err := h.roadmapService.UpdateStep(r.Context(), stepID, userID, &req)
	if err != nil {
		writeRoadmapError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, step)
}

// DeleteStep removes a step
// DELETE /steps/{id}
func (h *RoadmapHandler) DeleteStep(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}
	stepID := chi.URLParam(r, "id")

	if err := h.roadmapService.DeleteStep(r.Context(), stepID, userID); err != nil {
		writeRoadmapError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Step deleted"})
}

// ChangeStepOrder swaps the positions of two steps
// POST /steps/order
func (h *RoadmapHandler) ChangeStepOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.ChangeStepOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.StepID == "" || req.OtherStepID == "" {
		httputil.WriteBadRequest(w, "Both steps are required")
		return
	}

	if err := h.roadmapService.ChangeStepOrder(r.Context(), userID, &req); err != nil {
		writeRoadmapError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Step order changed"})
}

// CreateLookback attaches a lookback to a step
// POST /lookbacks
func (h *RoadmapHandler) CreateLookback(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.CreateLookbackRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.StepID == "" {
		httputil.WriteBadRequest(w, "Step is required")
		return
	}

	lookback, err := h.roadmapService.CreateLookback(r.Context(), userID, &req)
	if err != nil {
		writeRoadmapError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, lookback)
}

// UpdateLookback rewrites a lookback
// PUT /lookbacks/{id}
func (h *RoadmapHandler) UpdateLookback(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}
	lookbackID := chi.URLParam(r, "id")

	var req model.CreateLookbackRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	lookback, err := h.roadmapService.UpdateLookback(r.Context(), lookbackID, userID, &req)
	if err != nil {
		writeRoadmapError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, lookback)
}

// DeleteLookback removes a lookback
// DELETE /lookbacks/{id}
func (h *RoadmapHandler) DeleteLookback(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}
	lookbackID := chi.URLParam(r, "id")

	if err := h.roadmapService.DeleteLookback(r.Context(), lookbackID, userID); err != nil {
		writeRoadmapError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Lookback deleted"})
}

// ListLookbacks lists a step's lookbacks
// GET /steps/{id}/lookbacks
func (h *RoadmapHandler) ListLookbacks(w http.ResponseWriter, r *http.Request) {
	stepID := chi.URLParam(r, "id")

	lookbacks, err := h.roadmapService.ListLookbacks(r.Context(), stepID, middleware.ViewerID(r.Context()))
	if err != nil {
		writeRoadmapError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"lookbacks": lookbacks})
}

func writeRoadmapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrRoadmapNotFound):
		httputil.WriteNotFound(w, "Roadmap not found")
	case errors.Is(err, model.ErrStepNotFound):
		httputil.WriteNotFound(w, "Step not found")
	case errors.Is(err, model.ErrLookbackNotFound):
		httputil.WriteNotFound(w, "Lookback not found")
	case errors.Is(err, model.ErrNotRoadmapOwner):
		httputil.WriteForbidden(w, "Not the owner of this roadmap")
	case errors.Is(err, model.ErrTitleRequired):
		httputil.WriteBadRequest(w, "Roadmap title is required")
	case errors.Is(err, model.ErrToLearnRequired):
		httputil.WriteBadRequest(w, "Step to_learn is required")
	case errors.Is(err, model.ErrLearnedRequired):
		httputil.WriteBadRequest(w, "Lookback learned is required")
	case errors.Is(err, model.ErrStepsNotSiblings):
		httputil.WriteBadRequest(w, "Steps belong to different roadmaps")
	case errors.Is(err, model.ErrValidation):
		httputil.WriteBadRequest(w, validationMessage(err))
	default:
		httputil.WriteInternalError(w, "Internal error")
	}
}
