package mailtm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const (
	testToken   = "tok_abc123"
	testAccount = "acc_1"
)

// newFakeProvider serves a minimal mail.tm compatible API backed by the
// given messages. Listing answers the hydra collection shape; fetching a
// single message answers the bare object, mirroring the real service.
func newFakeProvider(t *testing.T, messages []Message) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Address  string `json:"address"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if creds.Password != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(tokenResponse{Token: testToken, ID: testAccount})
	})

	requireBearer := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			return false
		}
		return true
	}

	mux.HandleFunc("GET /messages", func(w http.ResponseWriter, r *http.Request) {
		if !requireBearer(w, r) {
			return
		}
		// Listings omit the body text, like the real provider.
		listed := make([]Message, len(messages))
		for i, m := range messages {
			m.Text = ""
			listed[i] = m
		}
		json.NewEncoder(w).Encode(map[string]any{"hydra:member": listed})
	})

	mux.HandleFunc("GET /messages/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !requireBearer(w, r) {
			return
		}
		for _, m := range messages {
			if m.ID == r.PathValue("id") {
				json.NewEncoder(w).Encode(m)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})

	mux.HandleFunc("GET /domains", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Domain{
			{ID: "d1", Domain: "private.example", IsActive: true, IsPrivate: true},
			{ID: "d2", Domain: "inbox.example", IsActive: true},
		})
	})

	mux.HandleFunc("POST /accounts", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Address string `json:"address"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Account{ID: "acc_new", Address: req.Address})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testMessages() []Message {
	return []Message{
		{
			ID:        "msg2",
			From:      Address{Address: "noreply@service.example"},
			Subject:   "Your login code",
			Intro:     "Your code is 48...",
			Text:      "Your code is 482910. It expires in 10 minutes.",
			CreatedAt: "2025-06-15T12:00:05Z",
		},
		{
			ID:        "msg1",
			From:      Address{Address: "noreply@service.example"},
			Subject:   "Welcome",
			Intro:     "Welcome aboard",
			CreatedAt: "2025-06-15T11:55:00Z",
		},
	}
}

func TestLoginAndList(t *testing.T) {
	srv := newFakeProvider(t, testMessages())
	client := New(srv.URL, nil)

	session, err := client.Login(context.Background(), "user@inbox.example", "hunter22")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if session.Token != testToken || session.AccountID != testAccount {
		t.Fatalf("unexpected session: %+v", session)
	}

	messages, err := client.ListMessages(context.Background(), session)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	// Provider order preserved, newest first.
	if messages[0].ID != "msg2" || messages[1].ID != "msg1" {
		t.Errorf("expected provider order msg2,msg1; got %s,%s", messages[0].ID, messages[1].ID)
	}
}

func TestLoginRejected(t *testing.T) {
	srv := newFakeProvider(t, nil)
	client := New(srv.URL, nil)

	_, err := client.Login(context.Background(), "user@inbox.example", "wrong")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %T: %v", err, err)
	}
	if authErr.Status != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", authErr.Status)
	}
}

func TestLoginNetworkFailure(t *testing.T) {
	srv := newFakeProvider(t, nil)
	srv.Close()
	client := New(srv.URL, nil)

	_, err := client.Login(context.Background(), "user@inbox.example", "hunter22")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError for network failure, got %T: %v", err, err)
	}
}

func TestFetchBody(t *testing.T) {
	srv := newFakeProvider(t, testMessages())
	client := New(srv.URL, nil)
	session := &Session{Token: testToken, AccountID: testAccount}

	body, err := client.FetchBody(context.Background(), session, "msg2")
	if err != nil {
		t.Fatalf("FetchBody failed: %v", err)
	}
	if body != "Your code is 482910. It expires in 10 minutes." {
		t.Errorf("unexpected body: %q", body)
	}

	// msg1 has no full text; the preview stands in.
	body, err = client.FetchBody(context.Background(), session, "msg1")
	if err != nil {
		t.Fatalf("FetchBody failed: %v", err)
	}
	if body != "Welcome aboard" {
		t.Errorf("expected intro fallback, got %q", body)
	}
}

func TestFetchBodyGone(t *testing.T) {
	srv := newFakeProvider(t, testMessages())
	client := New(srv.URL, nil)
	session := &Session{Token: testToken, AccountID: testAccount}

	_, err := client.FetchBody(context.Background(), session, "deleted")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
	if transportErr.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", transportErr.Status)
	}
}

func TestListMessagesUnauthorized(t *testing.T) {
	srv := newFakeProvider(t, testMessages())
	client := New(srv.URL, nil)

	_, err := client.ListMessages(context.Background(), &Session{Token: "stale"})
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
}

func TestDomainsAndCreateAccount(t *testing.T) {
	srv := newFakeProvider(t, nil)
	client := New(srv.URL, nil)

	domains, err := client.Domains(context.Background())
	if err != nil {
		t.Fatalf("Domains failed: %v", err)
	}
	if len(domains) != 2 {
		t.Fatalf("expected 2 domains, got %d", len(domains))
	}

	account, err := client.CreateAccount(context.Background(), "swiftfox00042", "inbox.example", "hunter22")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if account.Address != "swiftfox00042@inbox.example" {
		t.Errorf("unexpected address %q", account.Address)
	}
}

func TestMessageReceivedTime(t *testing.T) {
	msg := Message{CreatedAt: "2025-06-15T12:00:05Z"}
	ts, ok := msg.ReceivedTime()
	if !ok {
		t.Fatal("expected a parseable time")
	}
	if ts.Hour() != 12 || ts.Second() != 5 {
		t.Errorf("unexpected time %v", ts)
	}

	if _, ok := (Message{CreatedAt: "not a date"}).ReceivedTime(); ok {
		t.Error("expected failure for junk timestamp")
	}
}
