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

// PostHandler groups post, share and like endpoints.
type PostHandler struct {
	postService  *service.PostService
	graphService *service.GraphService
}

func NewPostHandler(postService *service.PostService, graphService *service.GraphService) *PostHandler {
	return &PostHandler{
		postService:  postService,
		graphService: graphService,
	}
}

// Create stores a new post
// POST /posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.CreatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), userID, &req)
	if err != nil {
		writePostError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// Update rewrites the caller's post
// PUT /posts/{id}
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}
	postID := chi.URLParam(r, "id")

	var req model.CreatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Update(r.Context(), postID, userID, &req)
	if err != nil {
		writePostError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// Delete removes the caller's post
// DELETE /posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}
	postID := chi.URLParam(r, "id")

	if err := h.postService.Delete(r.Context(), postID, userID); err != nil {
		writePostError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Post deleted"})
}

// GetByID returns one post
// GET /posts/{id}
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	post, err := h.postService.GetByID(r.Context(), postID, middleware.ViewerID(r.Context()))
	if err != nil {
		writePostError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// GetUserPosts lists a user's posts
// GET /profiles/{id}/posts
func (h *PostHandler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	resp, err := h.postService.ListByUser(r.Context(), userID, middleware.ViewerID(r.Context()),
		r.URL.Query().Get("cursor"), queryLimit(r))
	if err != nil {
		writePostError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Feed lists posts by the caller and everyone they follow
// GET /feed
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	resp, err := h.postService.Feed(r.Context(), userID, r.URL.Query().Get("cursor"), queryLimit(r))
	if err != nil {
		writePostError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// GetByTag lists posts carrying a hashtag
// GET /tags/{name}/posts
func (h *PostHandler) GetByTag(w http.ResponseWriter, r *http.Request) {
	tagName := chi.URLParam(r, "name")

	resp, err := h.postService.ListByTag(r.Context(), tagName, middleware.ViewerID(r.Context()),
		r.URL.Query().Get("cursor"), queryLimit(r))
	if err != nil {
		if errors.Is(err, model.ErrTagNotFound) {
			httputil.WriteNotFound(w, "Tag not found")
			return
		}
		writePostError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Favorites lists the posts the caller has liked
// GET /posts/favorites
func (h *PostHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	resp, err := h.postService.Favorites(r.Context(), userID, r.URL.Query().Get("cursor"), queryLimit(r))
	if err != nil {
		writePostError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Search lists posts whose body contains the query
// GET /posts/search?q=...
func (h *PostHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		httputil.WriteBadRequest(w, "Search query is required")
		return
	}

	resp, err := h.postService.Search(r.Context(), query, middleware.ViewerID(r.Context()),
		r.URL.Query().Get("cursor"), queryLimit(r))
	if err != nil {
		writePostError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Share creates a share of the target post
// POST /posts/{id}/share
func (h *PostHandler) Share(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}
	postID := chi.URLParam(r, "id")

	post, err := h.postService.Share(r.Context(), userID, postID)
	if err != nil {
		writePostError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// Unshare deletes the caller's share
// DELETE /posts/{id}/share
func (h *PostHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}
	postID := chi.URLParam(r, "id")

	if err := h.postService.Unshare(r.Context(), postID, userID); err != nil {
		if errors.Is(err, model.ErrNotShareParent) {
			httputil.WriteBadRequest(w, "Post is not a share")
			return
		}
		writePostError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Share removed"})
}

// ToggleLike flips the caller's like on a post
// POST /posts/{id}/like
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}
	postID := chi.URLParam(r, "id")

	result, err := h.graphService.ToggleLike(r.Context(), userID, postID)
	if err != nil {
		writePostError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetLikers lists who likes a post
// GET /posts/{id}/likes
func (h *PostHandler) GetLikers(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	likers, err := h.graphService.GetLikers(r.Context(), postID)
	if err != nil {
		writePostError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"profiles": likers})
}

// writePostError maps post domain errors to HTTP responses.
func writePostError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrPostNotFound):
		httputil.WriteNotFound(w, "Post not found")
	case errors.Is(err, model.ErrNotPostOwner):
		httputil.WriteForbidden(w, "Not the owner of this post")
	case errors.Is(err, model.ErrBodyRequired):
		httputil.WriteBadRequest(w, "Post body is required")
	case errors.Is(err, model.ErrBodyTooLong):
		httputil.WriteBadRequest(w, "Post body too long")
	case errors.Is(err, model.ErrValidation):
		httputil.WriteBadRequest(w, validationMessage(err))
	default:
		httputil.WriteInternalError(w, "Internal error")
	}
}
