package notifiers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dvasquez/sketchem/internal/mol"
)

func testEvent() mol.EditEvent {
	return mol.EditEvent{
		ID:        "evt-1",
		Session:   "bench",
		Op:        "apply",
		Kind:      "set_position",
		Merged:    true,
		AtomCount: 3,
		BondCount: 2,
		Timestamp: 1234567890,
	}
}

func TestWebhookNotifier(t *testing.T) {
	notifier := NewWebhookNotifier("test-webhook", "http://localhost:9999/webhook")

	if notifier.ID() != "test-webhook" {
		t.Errorf("Expected ID 'test-webhook', got '%s'", notifier.ID())
	}

	if notifier.Type() != "webhook" {
		t.Errorf("Expected type 'webhook', got '%s'", notifier.Type())
	}

	// Notify against a dead endpoint must surface the transport error
	ctx := context.Background()
	if err := notifier.Notify(ctx, testEvent()); err == nil {
		t.Error("Expected error when no server is running")
	}

	if err := notifier.Close(); err != nil {
		t.Errorf("Close should not return error: %v", err)
	}
}

func TestWebhookNotifier_Notify(t *testing.T) {
	var gotMethod, gotContentType, gotAuth string
	var gotBody mol.EditEvent

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	notifier := NewWebhookNotifier("test-webhook", srv.URL)
	notifier.SetHeader("Authorization", "Bearer token-123")

	event := testEvent()
	if err := notifier.Notify(context.Background(), event); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("Expected POST, got %s", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", gotContentType)
	}
	if gotAuth != "Bearer token-123" {
		t.Errorf("Expected custom header to be sent, got '%s'", gotAuth)
	}
	if gotBody != event {
		t.Errorf("Expected event %+v, got %+v", event, gotBody)
	}
}

func TestWebhookNotifier_NotifyErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	notifier := NewWebhookNotifier("test-webhook", srv.URL)

	err := notifier.Notify(context.Background(), testEvent())
	if err == nil {
		t.Error("Expected error for non-2xx response")
	}
}

func TestWebhookNotifier_NotifyCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	notifier := NewWebhookNotifier("test-webhook", srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := notifier.Notify(ctx, testEvent()); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
