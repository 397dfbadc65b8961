package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/wasatext/internal/apipaths"
	"github.com/wasatext/internal/credential"
	"github.com/wasatext/internal/domain"
)

// echoAuth replies with the Authorization header it received
func echoAuth() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"authorization": r.Header.Get("Authorization"),
			"present":       len(r.Header.Values("Authorization")) > 0,
		})
	})
}

func newTestClient(t *testing.T, h http.Handler) (*Client, *credential.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	store := credential.NewMemoryStore()
	c, err := New(Config{BaseURL: srv.URL}, store, slog.Default())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c, store
}

func TestNew(t *testing.T) {
	store := credential.NewMemoryStore()

	tests := []struct {
		name    string
		cfg     Config
		store   credential.Store
		wantURL string
		wantErr bool
	}{
		{"default base url", Config{}, store, DefaultBaseURL, false},
		{"trailing slash trimmed", Config{BaseURL: "https://api.example.com/"}, store, "https://api.example.com", false},
		{"with path", Config{BaseURL: "http://host:3000/api"}, store, "http://host:3000/api", false},
		{"no scheme", Config{BaseURL: "localhost:3000"}, store, "", true},
		{"bad scheme", Config{BaseURL: "ftp://host"}, store, "", true},
		{"nil store", Config{}, nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg, tt.store, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if c.BaseURL() != tt.wantURL {
				t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), tt.wantURL)
			}
			if c.Timeout() != 10*time.Second {
				t.Errorf("Timeout() = %v, want 10s", c.Timeout())
			}
		})
	}
}

func TestBearerInjection(t *testing.T) {
	c, store := newTestClient(t, echoAuth())

	get := func() (string, bool) {
		t.Helper()
		req, err := c.NewRequest(context.Background(), http.MethodGet, "/echo", nil)
		if err != nil {
			t.Fatal(err)
		}
		resp, err := c.Do(req)
		if err != nil {
			t.Fatalf("Do failed: %v", err)
		}
		defer resp.Body.Close()
		var body struct {
			Authorization string `json:"authorization"`
			Present       bool   `json:"present"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		return body.Authorization, body.Present
	}

	if _, present := get(); present {
		t.Error("no credential stored: expected no Authorization header")
	}

	store.Set("abc-123")
	if auth, _ := get(); auth != "Bearer abc-123" {
		t.Errorf("Authorization = %q, want %q", auth, "Bearer abc-123")
	}

	// read on every request, not cached
	if err := c.SetAuth("xyz"); err != nil {
		t.Fatal(err)
	}
	if auth, _ := get(); auth != "Bearer xyz" {
		t.Errorf("Authorization = %q, want %q", auth, "Bearer xyz")
	}

	if err := c.SetAuth(""); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Identifier(); ok {
		t.Error("SetAuth(\"\") should clear the store")
	}
	if _, present := get(); present {
		t.Error("cleared credential: expected no Authorization header")
	}
}

func TestBearerTransport_DoesNotMutateRequest(t *testing.T) {
	c, store := newTestClient(t, echoAuth())
	store.Set("abc")

	req, _ := c.NewRequest(context.Background(), http.MethodGet, "/", nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if got := req.Header.Get("Authorization"); got != "" {
		t.Errorf("caller's request was modified: Authorization = %q", got)
	}
}

func TestDo_TimeoutErrorPassthrough(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	c.http.Timeout = 50 * time.Millisecond

	req, _ := c.NewRequest(context.Background(), http.MethodGet, "/slow", nil)
	_, err := c.Do(req)

	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		t.Fatalf("expected *url.Error, got %T: %v", err, err)
	}
	if !urlErr.Timeout() {
		t.Errorf("expected timeout error, got %v", err)
	}

	// typed endpoints wrap the same error
	_, err = c.MyConversations(context.Background())
	if !errors.As(err, &urlErr) || !urlErr.Timeout() {
		t.Errorf("MyConversations error = %v, want wrapped timeout", err)
	}
}

func TestDo_NoRetryOnFailure(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	req, _ := c.NewRequest(context.Background(), http.MethodGet, "/", nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do returned error for 500 reply: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	if calls != 1 {
		t.Errorf("server called %d times, want 1", calls)
	}
}

func TestLoginStoresIdentifier(t *testing.T) {
	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != apipaths.Session {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login sent a credential before one was stored")
		}
		var req domain.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(domain.LoginResponse{Identifier: "id-" + req.Name})
	}))

	id, err := c.Login(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if id != "id-alice" {
		t.Errorf("identifier = %q, want id-alice", id)
	}
	if stored, ok := store.Identifier(); !ok || stored != "id-alice" {
		t.Errorf("stored identifier = %q (%v), want id-alice", stored, ok)
	}

	if err := c.Logout(); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Identifier(); ok {
		t.Error("Logout should clear the identifier")
	}
}

func TestStatusError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":"user is not a member of the conversation"}`)
	}))

	_, err := c.SendMessage(context.Background(), 7, "hi")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", statusErr.StatusCode)
	}
	if !strings.Contains(statusErr.Error(), "not a member") {
		t.Errorf("Error() = %q", statusErr.Error())
	}

	plain := &StatusError{StatusCode: http.StatusBadGateway, Body: []byte("<html>")}
	if plain.Error() != "api error: status 502" {
		t.Errorf("Error() = %q", plain.Error())
	}
}

func TestTypedEndpoints(t *testing.T) {
	type call struct{ method, path, body string }
	var got []call

	c, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		got = append(got, call{r.Method, r.URL.RequestURI(), strings.TrimSpace(string(data))})
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == apipaths.Users:
			io.WriteString(w, `[{"id":"u1","name":"alice"}]`)
		case r.Method == http.MethodPut:
			io.WriteString(w, `{"name":"renamed"}`)
		default:
			io.WriteString(w, `{}`)
		}
	}))
	store.Set("me")
	ctx := context.Background()

	users, err := c.ListUsers(ctx, "al ice")
	if err != nil || len(users) != 1 || users[0].Name != "alice" {
		t.Fatalf("ListUsers = %+v, %v", users, err)
	}
	if err := c.ForwardMessage(ctx, 3, 9); err != nil {
		t.Fatal(err)
	}
	if err := c.LeaveGroup(ctx, 4); err != nil {
		t.Fatal(err)
	}
	if name, err := c.SetGroupName(ctx, 4, "renamed"); err != nil || name != "renamed" {
		t.Fatalf("SetGroupName = %q, %v", name, err)
	}

	want := []call{
		{http.MethodGet, "/users?q=al+ice", ""},
		{http.MethodPost, "/messages/3/forward", `{"conversationId":9}`},
		{http.MethodDelete, "/groups/4/members", ""},
		{http.MethodPut, "/groups/4/name", `{"name":"renamed"}`},
	}
	if len(got) != len(want) {
		t.Fatalf("calls = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSetMyPhoto(t *testing.T) {
	photo := []byte("\x89PNG\r\n\x1a\n")
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != apipaths.MyPhoto {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		f, fh, err := r.FormFile("photo")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if string(data) != string(photo) || fh.Filename != "me.png" {
			t.Errorf("upload = %q (%s)", data, fh.Filename)
		}
		json.NewEncoder(w).Encode(domain.PhotoResponse{URL: "/uploads/users/me.png"})
	}))

	photoURL, err := c.SetMyPhoto(context.Background(), strings.NewReader(string(photo)), "me.png")
	if err != nil {
		t.Fatalf("SetMyPhoto failed: %v", err)
	}
	if photoURL != "/uploads/users/me.png" {
		t.Errorf("url = %q", photoURL)
	}
}
