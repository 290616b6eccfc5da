package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendInvite(t *testing.T) {
	var received postmarkEmail
	var gotToken string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Postmark-Server-Token")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
	defer server.Close()

	client := NewClient("test-token", "noreply@example.com", WithAPIURL(server.URL))

	err := client.SendInvite("bob@example.com", "Smith Family", "AB12CD34")
	if err != nil {
		t.Fatalf("send invite: %v", err)
	}

	if gotToken != "test-token" {
		t.Errorf("server token = %q, want %q", gotToken, "test-token")
	}
	if received.To != "bob@example.com" {
		t.Errorf("To = %q, want %q", received.To, "bob@example.com")
	}
	if received.From != "noreply@example.com" {
		t.Errorf("From = %q, want %q", received.From, "noreply@example.com")
	}
	if received.Subject != "You've been invited to Smith Family on Mealio" {
		t.Errorf("Subject = %q, want invite subject", received.Subject)
	}
	if !strings.Contains(received.TextBody, "AB12CD34") {
		t.Errorf("text body %q does not contain the invite code", received.TextBody)
	}
}

func TestSendInviteNotConfigured(t *testing.T) {
	client := NewClient("", "noreply@example.com")

	if err := client.SendInvite("bob@example.com", "Smith Family", "AB12CD34"); err == nil {
		t.Fatal("expected error for unconfigured client")
	}
}

func TestSendInviteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient("test-token", "noreply@example.com", WithAPIURL(server.URL))

	if err := client.SendInvite("bob@example.com", "Smith Family", "AB12CD34"); err == nil {
		t.Fatal("expected error for API failure")
	}
}
