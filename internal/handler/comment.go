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

// CommentHandler groups comment endpoints.
type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create adds a comment to a post
// POST /comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.CreateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.PostID == "" {
		httputil.WriteBadRequest(w, "Post is required")
		return
	}

	comment, err := h.commentService.Create(r.Context(), userID, &req)
	if err != nil {
		writeCommentError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// Update rewrites the caller's comment
// PUT /comments/{id}
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}
	commentID := chi.URLParam(r, "id")

	var req model.UpdateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.commentService.Update(r.Context(), commentID, userID, &req)
	if err != nil {
		writeCommentError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, comment)
}

// Delete removes the caller's comment
// DELETE /comments/{id}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}
	commentID := chi.URLParam(r, "id")

	if err := h.commentService.Delete(r.Context(), commentID, userID); err != nil {
		writeCommentError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted"})
}

// ListByPost lists a post's comments
// GET /posts/{id}/comments
func (h *CommentHandler) ListByPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	comments, err := h.commentService.ListByPost(r.Context(), postID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to list comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

func writeCommentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrCommentNotFound):
		httputil.WriteNotFound(w, "Comment not found")
	case errors.Is(err, model.ErrPostNotFound):
		httputil.WriteNotFound(w, "Post not found")
	case errors.Is(err, model.ErrNotCommentOwner):
		httputil.WriteForbidden(w, "Not the owner of this comment")
	case errors.Is(err, model.ErrCommentRequired):
		httputil.WriteBadRequest(w, "Comment body is required")
	case errors.Is(err, model.ErrCommentTooLong):
		httputil.WriteBadRequest(w, "Comment body too long")
	default:
		httputil.WriteInternalError(w, "Internal error")
	}
}
