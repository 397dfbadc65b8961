package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/wasatext/internal/apipaths"
	"github.com/wasatext/internal/config"
	"github.com/wasatext/internal/db"
	"github.com/wasatext/internal/domain"
	"github.com/wasatext/internal/service"
	"github.com/wasatext/internal/session"
	"github.com/wasatext/internal/system"
)

var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

type staticHealth struct{ report system.HealthReport }

func (h staticHealth) Collect() *system.HealthReport { return &h.report }

// setupTestServer creates a server backed by a temp database and uploads dir
func setupTestServer(t *testing.T) (http.Handler, func()) {
	return setupTestServerWithHealth(t, staticHealth{report: system.HealthReport{Status: system.StatusHealthy}})
}

func setupTestServerWithHealth(t *testing.T, health HealthReporter) (http.Handler, func()) {
	gin.SetMode(gin.TestMode)

	tmpDB, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("Failed to create temp database: %v", err)
	}
	tmpDB.Close()

	database, err := db.Init(tmpDB.Name())
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}

	tmpUploads, err := os.MkdirTemp("", "test-uploads-")
	if err != nil {
		t.Fatalf("Failed to create temp uploads directory: %v", err)
	}

	cfg := &config.Config{
		UploadsDir:  tmpUploads,
		Environment: "test",
		Auth:        config.AuthConfig{TokenMode: session.ModePlain},
		CORS:        config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
	chat := service.NewChatService(database, session.PlainIssuer{}, cfg, slog.Default())
	server := NewServer(cfg, chat, health, slog.Default())
	gin.SetMode(gin.TestMode)

	cleanup := func() {
		database.Close()
		os.Remove(tmpDB.Name())
		os.RemoveAll(tmpUploads)
	}
	return server.Handler(), cleanup
}

// doJSON performs a request with an optional JSON body and bearer identifier
func doJSON(t *testing.T, h http.Handler, method, path, identifier string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if identifier != "" {
		req.Header.Set("Authorization", "Bearer "+identifier)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func loginAs(t *testing.T, h http.Handler, name string) string {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, apipaths.Session, "", domain.LoginRequest{Name: name})
	if w.Code != http.StatusCreated {
		t.Fatalf("login %s: status %d body %s", name, w.Code, w.Body.String())
	}
	return decode[domain.LoginResponse](t, w).Identifier
}

func TestServer_Liveness(t *testing.T) {
	h, cleanup := setupTestServer(t)
	defer cleanup()

	w := doJSON(t, h, http.MethodGet, apipaths.Liveness, "", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}

func TestServer_Health(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   int
	}{
		{"healthy", system.StatusHealthy, http.StatusOK},
		{"unhealthy", system.StatusUnhealthy, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, cleanup := setupTestServerWithHealth(t, staticHealth{report: system.HealthReport{
				Status:   tt.status,
				Database: system.DatabaseHealth{Status: tt.status},
			}})
			defer cleanup()

			w := doJSON(t, h, http.MethodGet, apipaths.Health, "", nil)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if got := decode[system.HealthReport](t, w).Status; got != tt.status {
				t.Errorf("report status = %q, want %q", got, tt.status)
			}
		})
	}
}

func TestServer_Login(t *testing.T) {
	h, cleanup := setupTestServer(t)
	defer cleanup()

	tests := []struct {
		name string
		body any
		want int
	}{
		{"valid", domain.LoginRequest{Name: "alice"}, http.StatusCreated},
		{"existing user", domain.LoginRequest{Name: "alice"}, http.StatusCreated},
		{"too short", domain.LoginRequest{Name: "al"}, http.StatusBadRequest},
		{"too long", domain.LoginRequest{Name: strings.Repeat("a", 17)}, http.StatusBadRequest},
		{"not json", "alice", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, h, http.MethodPost, apipaths.Session, "", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestServer_RequiresBearer(t *testing.T) {
	h, cleanup := setupTestServer(t)
	defer cleanup()

	alice := loginAs(t, h, "alice")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"unknown user", "Bearer not-a-user", http.StatusUnauthorized},
		{"bearer", "Bearer " + alice, http.StatusOK},
		{"raw identifier", alice, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, apipaths.MyConversations, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized && decode[ErrorResponse](t, w).Error == "" {
				t.Error("expected error message")
			}
		})
	}
}

func TestServer_MessagingFlow(t *testing.T) {
	h, cleanup := setupTestServer(t)
	defer cleanup()

	alice := loginAs(t, h, "alice")
	bob := loginAs(t, h, "bob")

	w := doJSON(t, h, http.MethodPost, apipaths.Messages, alice, domain.DirectMessageRequest{ToUserID: bob, Text: "hi bob"})
	if w.Code != http.StatusCreated {
		t.Fatalf("direct message: status %d body %s", w.Code, w.Body.String())
	}
	dm := decode[domain.DirectMessageResponse](t, w)
	if dm.Status != domain.StatusSent || dm.ConversationID == 0 || dm.MessageID == 0 {
		t.Fatalf("unexpected direct message response: %+v", dm)
	}

	w = doJSON(t, h, http.MethodPost, apipaths.ConversationMessages(dm.ConversationID), bob, domain.SendMessageRequest{Text: "hi alice"})
	if w.Code != http.StatusCreated {
		t.Fatalf("send message: status %d body %s", w.Code, w.Body.String())
	}
	reply := decode[domain.SendMessageResponse](t, w)

	w = doJSON(t, h, http.MethodGet, apipaths.MyConversations, bob, nil)
	items := decode[[]domain.ConversationItem](t, w)
	if len(items) != 1 || items[0].Name != "alice" {
		t.Fatalf("bob's conversations = %+v, want one named alice", items)
	}

	w = doJSON(t, h, http.MethodPost, apipaths.MessageComments(dm.MessageID), bob, domain.CommentRequest{Comment: "👍"})
	if w.Code != http.StatusCreated {
		t.Fatalf("comment: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodGet, apipaths.Conversation(dm.ConversationID), alice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get conversation: status %d body %s", w.Code, w.Body.String())
	}
	detail := decode[domain.ConversationDetail](t, w)
	if len(detail.Messages) != 2 || len(detail.Participants) != 2 {
		t.Fatalf("unexpected conversation: %+v", detail)
	}

	// only the author may delete
	w = doJSON(t, h, http.MethodDelete, apipaths.Message(reply.MessageID), alice, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("delete other's message: status %d, want 403", w.Code)
	}
	w = doJSON(t, h, http.MethodDelete, apipaths.Message(reply.MessageID), bob, nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete own message: status %d, want 200", w.Code)
	}
	w = doJSON(t, h, http.MethodDelete, apipaths.Message(reply.MessageID), bob, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("delete twice: status %d, want 404", w.Code)
	}

	w = doJSON(t, h, http.MethodDelete, apipaths.MessageComments(dm.MessageID), bob, nil)
	if w.Code != http.StatusOK {
		t.Errorf("uncomment: status %d, want 200", w.Code)
	}
	w = doJSON(t, h, http.MethodDelete, apipaths.MessageComments(dm.MessageID), bob, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("uncomment twice: status %d, want 404", w.Code)
	}
}

func TestServer_SendMessageErrors(t *testing.T) {
	h, cleanup := setupTestServer(t)
	defer cleanup()

	alice := loginAs(t, h, "alice")
	carol := loginAs(t, h, "carol")

	w := doJSON(t, h, http.MethodPost, apipaths.Conversations, alice, domain.CreateConversationRequest{Name: "team", IsGroup: true})
	if w.Code != http.StatusCreated {
		t.Fatalf("create conversation: status %d body %s", w.Code, w.Body.String())
	}
	convID := decode[domain.CreateConversationResponse](t, w).ConversationID

	tests := []struct {
		name   string
		path   string
		caller string
		text   string
		want   int
	}{
		{"member", apipaths.ConversationMessages(convID), alice, "hello", http.StatusCreated},
		{"blank text", apipaths.ConversationMessages(convID), alice, "   ", http.StatusBadRequest},
		{"not a member", apipaths.ConversationMessages(convID), carol, "hello", http.StatusForbidden},
		{"unknown conversation", apipaths.ConversationMessages(9999), alice, "hello", http.StatusNotFound},
		{"bad id", apipaths.Conversations + "/abc/messages", alice, "hello", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, h, http.MethodPost, tt.path, tt.caller, domain.SendMessageRequest{Text: tt.text})
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestServer_Groups(t *testing.T) {
	h, cleanup := setupTestServer(t)
	defer cleanup()

	alice := loginAs(t, h, "alice")
	bob := loginAs(t, h, "bob")

	w := doJSON(t, h, http.MethodPost, apipaths.Conversations, alice, domain.CreateConversationRequest{Name: "team", IsGroup: true})
	groupID := decode[domain.CreateConversationResponse](t, w).ConversationID

	w = doJSON(t, h, http.MethodPost, apipaths.GroupMembers(groupID), alice, domain.AddMemberRequest{UserID: bob})
	if w.Code != http.StatusOK || decode[domain.StatusResponse](t, w).Status != domain.StatusAdded {
		t.Fatalf("add member: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodPut, apipaths.GroupName(groupID), bob, domain.NameRequest{Name: "renamed"})
	if w.Code != http.StatusOK || decode[domain.NameResponse](t, w).Name != "renamed" {
		t.Fatalf("rename: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodDelete, apipaths.GroupMembers(groupID), bob, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("leave: status %d body %s", w.Code, w.Body.String())
	}
	w = doJSON(t, h, http.MethodDelete, apipaths.GroupMembers(groupID), bob, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("leave twice: status %d, want 404", w.Code)
	}
	w = doJSON(t, h, http.MethodPut, apipaths.GroupName(groupID), bob, domain.NameRequest{Name: "again"})
	if w.Code != http.StatusForbidden {
		t.Errorf("rename after leaving: status %d, want 403", w.Code)
	}
}

func TestServer_Users(t *testing.T) {
	h, cleanup := setupTestServer(t)
	defer cleanup()

	alice := loginAs(t, h, "alice")
	loginAs(t, h, "albert")
	bob := loginAs(t, h, "bob")

	w := doJSON(t, h, http.MethodGet, apipaths.Users+"?q=al", bob, nil)
	users := decode[[]domain.UserView](t, w)
	if len(users) != 2 {
		t.Errorf("users with prefix al = %+v, want 2", users)
	}

	w = doJSON(t, h, http.MethodGet, apipaths.User(alice), bob, nil)
	if w.Code != http.StatusOK || decode[domain.UserView](t, w).Name != "alice" {
		t.Errorf("get user: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodPut, apipaths.MyUsername, bob, domain.NameRequest{Name: "alice"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("taken username: status %d, want 400", w.Code)
	}
	w = doJSON(t, h, http.MethodPut, apipaths.MyUsername, bob, domain.NameRequest{Name: "robert"})
	if w.Code != http.StatusOK {
		t.Errorf("rename: status %d body %s", w.Code, w.Body.String())
	}
}

// photoRequest builds a multipart upload with the photo form field
func photoRequest(t *testing.T, path, identifier string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("photo", "avatar.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+identifier)
	return req
}

func TestServer_Photos(t *testing.T) {
	h, cleanup := setupTestServer(t)
	defer cleanup()

	alice := loginAs(t, h, "alice")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, photoRequest(t, apipaths.MyPhoto, alice, pngData))
	if w.Code != http.StatusOK {
		t.Fatalf("upload photo: status %d body %s", w.Code, w.Body.String())
	}
	resp := decode[domain.PhotoResponse](t, w)
	if want := fmt.Sprintf("%s/users/%s.png", apipaths.Uploads, alice); resp.URL != want {
		t.Errorf("URL = %q, want %q", resp.URL, want)
	}

	// the stored file is served back
	w = doJSON(t, h, http.MethodGet, resp.URL, "", nil)
	if w.Code != http.StatusOK || !bytes.Equal(w.Body.Bytes(), pngData) {
		t.Errorf("serve upload: status %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, photoRequest(t, apipaths.MyPhoto, alice, []byte("plain text")))
	if w.Code != http.StatusBadRequest {
		t.Errorf("non-image upload: status %d, want 400", w.Code)
	}

	w = doJSON(t, h, http.MethodPut, apipaths.MyPhoto, alice, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing photo: status %d, want 400", w.Code)
	}
}

func TestServer_CORS(t *testing.T) {
	h, cleanup := setupTestServer(t)
	defer cleanup()

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{"allowed", "http://localhost:5173", "http://localhost:5173"},
		{"other", "http://evil.example", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, apipaths.MyConversations, nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != http.StatusNoContent {
				t.Errorf("status = %d, want 204", w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestServer_JSONBodyLimit(t *testing.T) {
	h, cleanup := setupTestServer(t)
	defer cleanup()

	big := strings.Repeat("a", maxBodySize+1)
	w := doJSON(t, h, http.MethodPost, apipaths.Session, "", domain.LoginRequest{Name: big})
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}
}

func TestServer_NotFound(t *testing.T) {
	h, cleanup := setupTestServer(t)
	defer cleanup()

	w := doJSON(t, h, http.MethodGet, "/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestServer_ShutdownWithoutRun(t *testing.T) {
	s := &Server{}
	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown = %v", err)
	}
}
