package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"waypost/internal/httputil"
	"waypost/internal/model"
	"waypost/internal/service"
	"waypost/internal/transport/http/middleware"
)

// ProfileHandler groups profile and follow-graph endpoints.
type ProfileHandler struct {
	profileService *service.ProfileService
	graphService   *service.GraphService
	mediaService   *service.MediaService
}

func NewProfileHandler(profileService *service.ProfileService, graphService *service.GraphService, mediaService *service.MediaService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		graphService:   graphService,
		mediaService:   mediaService,
	}
}

// Get returns a user's profile
// GET /profiles/{id}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	view, err := h.profileService.Get(r.Context(), userID, middleware.ViewerID(r.Context()))
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			httputil.WriteNotFound(w, "Profile not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to get profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, view)
}

// UpdateMe edits the caller's own profile
// PATCH /profiles/me
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	profile, err := h.profileService.Update(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			httputil.WriteNotFound(w, "Profile not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to update profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// UploadAvatar replaces the caller's avatar
// POST /profiles/me/avatar
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	maxFormSize := int64(model.MaxAvatarSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Avatar exceeds 5MB limit")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		httputil.WriteBadRequest(w, "Avatar file is required")
		return
	}
	defer file.Close()

	upload, err := h.mediaService.UploadAvatar(r.Context(), userID, file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Avatar exceeds 5MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
		case errors.Is(err, model.ErrProfileNotFound):
			httputil.WriteNotFound(w, "Profile not found")
		default:
			httputil.WriteInternalError(w, "Failed to upload avatar")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, upload)
}

// ToggleFollow flips the follow edge toward the target user
// POST /profiles/{id}/follow
func (h *ProfileHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}
	targetID := chi.URLParam(r, "id")

	result, err := h.graphService.ToggleFollow(r.Context(), userID, targetID)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			httputil.WriteNotFound(w, "Profile not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to toggle follow")
		return
	}

	// A rejected self-follow is a business outcome, not an error: it
	// answers 200 with a structured result like any other toggle.
	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetFollowers lists a user's followers
// GET /profiles/{id}/followers
func (h *ProfileHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	resp, err := h.graphService.GetFollowers(r.Context(), userID, r.URL.Query().Get("cursor"), queryLimit(r))
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			httputil.WriteBadRequest(w, "Invalid cursor")
			return
		}
		httputil.WriteInternalError(w, "Failed to list followers")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// GetFollowing lists who a user follows
// GET /profiles/{id}/following
func (h *ProfileHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	resp, err := h.graphService.GetFollowing(r.Context(), userID, r.URL.Query().Get("cursor"), queryLimit(r))
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			httputil.WriteBadRequest(w, "Invalid cursor")
			return
		}
		httputil.WriteInternalError(w, "Failed to list following")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// queryLimit parses the optional limit query parameter.
func queryLimit(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}
