package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/semenovdl/recallbot/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCard() domain.Card {
	return domain.Card{
		ID:      uuid.New(),
		OwnerID: 123456789,
		Content: "review <b>this</b> & that",
	}
}

func TestNotifier_Send_Success(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotReq sendMessageRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	n := NewNotifierWithURL(newTestLogger(), "test-token", srv.URL, 5*time.Second)

	err := n.Send(context.Background(), testCard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/bottest-token/sendMessage" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotReq.ChatID != 123456789 {
		t.Errorf("ChatID = %d, want 123456789", gotReq.ChatID)
	}
	if gotReq.ParseMode != "HTML" {
		t.Errorf("ParseMode = %q, want HTML", gotReq.ParseMode)
	}
	// User content must be escaped for HTML parse mode.
	if !strings.Contains(gotReq.Text, "review &lt;b&gt;this&lt;/b&gt; &amp; that") {
		t.Errorf("expected escaped content, got %q", gotReq.Text)
	}
}

func TestNotifier_Send_BlockedIsPermanent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`))
	}))
	defer srv.Close()

	n := NewNotifierWithURL(newTestLogger(), "t", srv.URL, 5*time.Second)

	err := n.Send(context.Background(), testCard())
	if !errors.Is(err, domain.ErrDeliveryPermanent) {
		t.Fatalf("expected ErrDeliveryPermanent, got: %v", err)
	}
}

func TestNotifier_Send_ChatNotFoundIsPermanent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	n := NewNotifierWithURL(newTestLogger(), "t", srv.URL, 5*time.Second)

	err := n.Send(context.Background(), testCard())
	if !errors.Is(err, domain.ErrDeliveryPermanent) {
		t.Fatalf("expected ErrDeliveryPermanent, got: %v", err)
	}
}

func TestNotifier_Send_ThrottledIsTransient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 5","parameters":{"retry_after":5}}`))
	}))
	defer srv.Close()

	n := NewNotifierWithURL(newTestLogger(), "t", srv.URL, 5*time.Second)

	err := n.Send(context.Background(), testCard())
	if !errors.Is(err, domain.ErrDeliveryTransient) {
		t.Fatalf("expected ErrDeliveryTransient, got: %v", err)
	}
}

func TestNotifier_Send_ServerErrorIsTransient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewNotifierWithURL(newTestLogger(), "t", srv.URL, 5*time.Second)

	err := n.Send(context.Background(), testCard())
	if !errors.Is(err, domain.ErrDeliveryTransient) {
		t.Fatalf("expected ErrDeliveryTransient, got: %v", err)
	}
}

func TestNotifier_Send_NetworkErrorIsTransient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	n := NewNotifierWithURL(newTestLogger(), "t", srv.URL, 5*time.Second)

	err := n.Send(context.Background(), testCard())
	if !errors.Is(err, domain.ErrDeliveryTransient) {
		t.Fatalf("expected ErrDeliveryTransient, got: %v", err)
	}
}

func TestNotifier_Send_ContextCancelled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewNotifierWithURL(newTestLogger(), "t", srv.URL, 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := n.Send(ctx, testCard())
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	// A timed-out send is retryable.
	if !errors.Is(err, domain.ErrDeliveryTransient) {
		t.Fatalf("expected ErrDeliveryTransient, got: %v", err)
	}
}

func TestNewNotifier_RequestTimeout(t *testing.T) {
	t.Parallel()

	n := NewNotifierWithURL(newTestLogger(), "t", defaultBaseURL, 3*time.Second)
	if n.httpClient.Timeout != 3*time.Second {
		t.Errorf("client timeout = %v, want %v", n.httpClient.Timeout, 3*time.Second)
	}

	n = NewNotifierWithURL(newTestLogger(), "t", defaultBaseURL, 0)
	if n.httpClient.Timeout != defaultTimeout {
		t.Errorf("client timeout = %v, want default %v", n.httpClient.Timeout, defaultTimeout)
	}
}
