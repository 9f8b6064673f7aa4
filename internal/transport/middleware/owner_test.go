package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/semenovdl/recallbot/pkg/ctxutil"
)

func TestOwner_ValidHeader(t *testing.T) {
	var gotID int64
	var gotOK bool

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = ctxutil.OwnerIDFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	wrapped := Owner()(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(OwnerHeader, "123456789")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	if !gotOK {
		t.Fatal("expected owner id in context")
	}
	if gotID != 123456789 {
		t.Errorf("owner id = %d, want 123456789", gotID)
	}
}

func TestOwner_MissingHeaderPassesThrough(t *testing.T) {
	var gotOK bool

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, gotOK = ctxutil.OwnerIDFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	wrapped := Owner()(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if gotOK {
		t.Error("expected no owner id in context")
	}
}

func TestOwner_MalformedHeader(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not a number", "abc"},
		{"zero", "0"},
		{"negative", "-5"},
		{"overflow", "99999999999999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})

			wrapped := Owner()(handler)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(OwnerHeader, tt.value)
			rec := httptest.NewRecorder()

			wrapped.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if called {
				t.Error("handler must not run for a malformed header")
			}
		})
	}
}
