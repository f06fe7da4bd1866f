package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"waypost/internal/model"
	"waypost/internal/service"
	"waypost/internal/transport/http/middleware"
)

func TestToggleFollow_SelfAnswersOK(t *testing.T) {
	// A self follow is rejected before any repository call, so the
	// handler can run without a database.
	h := NewProfileHandler(nil, service.NewGraphService(nil, nil, nil), nil)

	req := httptest.NewRequest(http.MethodPost, "/profiles/user-1/follow", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "user-1")
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.UserIDKey, "user-1")

	rr := httptest.NewRecorder()
	h.ToggleFollow(rr, req.WithContext(ctx))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["result"] != model.ToggleRejected {
		t.Errorf(`body["result"] = %q, want %q`, body["result"], model.ToggleRejected)
	}
	if body["actor"] != "user-1" || body["target"] != "user-1" {
		t.Errorf("body = %v", body)
	}
}
