package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/devyouns/go-memorial-backend/internal/domain"
	"github.com/devyouns/go-memorial-backend/internal/session"
)

// brokenSessions satisfies session.Store but fails every call.
type brokenSessions struct{}

func (brokenSessions) Get(context.Context, string) (domain.Session, error) {
	return domain.Session{}, errors.New("store down")
}
func (brokenSessions) Put(context.Context, domain.Session) error  { return errors.New("store down") }
func (brokenSessions) Clear(context.Context, string) error        { return errors.New("store down") }
func (brokenSessions) Ping(context.Context) error                 { return errors.New("store down") }

func getHealth(h *HealthHandler) (*httptest.ResponseRecorder, map[string]any) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.Handle)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestHealthAllStoresUp(t *testing.T) {
	h := &HealthHandler{
		Sessions: session.NewMemoryStore(),
		Stats: func(context.Context) (int64, int64, error) {
			return 3, 12, nil
		},
	}
	w, body := getHealth(h)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["status"] != "ok" || body["session_store"] != "ok" || body["moderation_store"] != "ok" {
		t.Errorf("body = %v", body)
	}
	if body["pending_requests"] != float64(3) || body["published_records"] != float64(12) {
		t.Errorf("counters = %v", body)
	}
}

func TestHealthDegradedWhenModerationStoreDown(t *testing.T) {
	h := &HealthHandler{
		Sessions: session.NewMemoryStore(),
		Stats: func(context.Context) (int64, int64, error) {
			return 0, 0, errors.New("db locked")
		},
	}
	w, body := getHealth(h)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, health stays 200 through outages", w.Code)
	}
	if body["status"] != "degraded" || body["moderation_store"] != "down" {
		t.Errorf("body = %v", body)
	}
	if _, present := body["pending_requests"]; present {
		t.Error("counters must be omitted when the store is down")
	}
}

func TestHealthDegradedWhenSessionStoreDown(t *testing.T) {
	h := &HealthHandler{
		Sessions: brokenSessions{},
		Stats: func(context.Context) (int64, int64, error) {
			return 1, 2, nil
		},
	}
	w, body := getHealth(h)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["status"] != "degraded" || body["session_store"] != "down" {
		t.Errorf("body = %v", body)
	}
	// Moderation counters still reported
	if body["moderation_store"] != "ok" || body["pending_requests"] != float64(1) {
		t.Errorf("body = %v", body)
	}
}
