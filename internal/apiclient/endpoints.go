package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/wasatext/internal/apipaths"
	"github.com/wasatext/internal/constants"
	"github.com/wasatext/internal/domain"
	"github.com/wasatext/internal/system"
)

// maxErrorBody caps how much of a failed reply is kept in StatusError
const maxErrorBody = 64 << 10

// StatusError is returned by the typed endpoints for non-2xx replies
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if json.Unmarshal(e.Body, &body) == nil && body.Error != "" {
		if body.Details != "" {
			return fmt.Sprintf("api error (%d): %s: %s", e.StatusCode, body.Error, body.Details)
		}
		return fmt.Sprintf("api error (%d): %s", e.StatusCode, body.Error)
	}
	return fmt.Sprintf("api error: status %d", e.StatusCode)
}

// send performs a request and decodes a JSON reply into out (when non-nil)
func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := c.NewRequest(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: data}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	if in == nil {
		return c.send(ctx, method, path, "", nil, out)
	}
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.send(ctx, method, path, "application/json", bytes.NewReader(data), out)
}

func (c *Client) sendPhoto(ctx context.Context, path string, r io.Reader, filename string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(constants.PhotoFormField, filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(fw, io.LimitReader(r, constants.MaxPhotoSize+1)); err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finish multipart body: %w", err)
	}

	var resp domain.PhotoResponse
	if err := c.send(ctx, http.MethodPut, path, mw.FormDataContentType(), &buf, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// Login signs in as name and stores the returned identifier
func (c *Client) Login(ctx context.Context, name string) (string, error) {
	var resp domain.LoginResponse
	if err := c.sendJSON(ctx, http.MethodPost, apipaths.Session, domain.LoginRequest{Name: name}, &resp); err != nil {
		return "", err
	}
	if err := c.SetAuth(resp.Identifier); err != nil {
		return "", err
	}
	return resp.Identifier, nil
}

// Logout forgets the stored identifier. The API keeps no session to end.
func (c *Client) Logout() error {
	return c.SetAuth("")
}

// MyConversations lists the caller's conversations
func (c *Client) MyConversations(ctx context.Context) ([]domain.ConversationItem, error) {
	var items []domain.ConversationItem
	if err := c.sendJSON(ctx, http.MethodGet, apipaths.MyConversations, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Conversation returns a conversation with its messages
func (c *Client) Conversation(ctx context.Context, convID int) (*domain.ConversationDetail, error) {
	var detail domain.ConversationDetail
	if err := c.sendJSON(ctx, http.MethodGet, apipaths.Conversation(convID), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// SendMessage posts text to a conversation and returns the message id
func (c *Client) SendMessage(ctx context.Context, convID int, text string) (int, error) {
	var resp domain.SendMessageResponse
	if err := c.sendJSON(ctx, http.MethodPost, apipaths.ConversationMessages(convID), domain.SendMessageRequest{Text: text}, &resp); err != nil {
		return 0, err
	}
	return resp.MessageID, nil
}

// SendDirectMessage messages a user directly
func (c *Client) SendDirectMessage(ctx context.Context, toUserID, text string) (*domain.DirectMessageResponse, error) {
	var resp domain.DirectMessageResponse
	if err := c.sendJSON(ctx, http.MethodPost, apipaths.Messages, domain.DirectMessageRequest{ToUserID: toUserID, Text: text}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateConversation creates a conversation and returns its id
func (c *Client) CreateConversation(ctx context.Context, name string, isGroup bool) (int, error) {
	var resp domain.CreateConversationResponse
	if err := c.sendJSON(ctx, http.MethodPost, apipaths.Conversations, domain.CreateConversationRequest{Name: name, IsGroup: isGroup}, &resp); err != nil {
		return 0, err
	}
	return resp.ConversationID, nil
}

// ForwardMessage copies a message into another conversation
func (c *Client) ForwardMessage(ctx context.Context, msgID, convID int) error {
	return c.sendJSON(ctx, http.MethodPost, apipaths.MessageForward(msgID), domain.ForwardRequest{ConversationID: convID}, nil)
}

// DeleteMessage deletes one of the caller's messages
func (c *Client) DeleteMessage(ctx context.Context, msgID int) error {
	return c.sendJSON(ctx, http.MethodDelete, apipaths.Message(msgID), nil, nil)
}

// CommentMessage sets the caller's comment on a message
func (c *Client) CommentMessage(ctx context.Context, msgID int, comment string) (int, error) {
	var resp domain.CommentResponse
	if err := c.sendJSON(ctx, http.MethodPost, apipaths.MessageComments(msgID), domain.CommentRequest{Comment: comment}, &resp); err != nil {
		return 0, err
	}
	return resp.CommentID, nil
}

// UncommentMessage removes the caller's comment from a message
func (c *Client) UncommentMessage(ctx context.Context, msgID int) error {
	return c.sendJSON(ctx, http.MethodDelete, apipaths.MessageComments(msgID), nil, nil)
}

// AddToGroup adds a user to a group
func (c *Client) AddToGroup(ctx context.Context, groupID int, userID string) error {
	return c.sendJSON(ctx, http.MethodPost, apipaths.GroupMembers(groupID), domain.AddMemberRequest{UserID: userID}, nil)
}

// LeaveGroup removes the caller from a group
func (c *Client) LeaveGroup(ctx context.Context, groupID int) error {
	return c.sendJSON(ctx, http.MethodDelete, apipaths.GroupMembers(groupID), nil, nil)
}

// SetGroupName renames a group and returns the stored name
func (c *Client) SetGroupName(ctx context.Context, groupID int, name string) (string, error) {
	var resp domain.NameResponse
	if err := c.sendJSON(ctx, http.MethodPut, apipaths.GroupName(groupID), domain.NameRequest{Name: name}, &resp); err != nil {
		return "", err
	}
	return resp.Name, nil
}

// SetMyUsername renames the caller and returns the stored name
func (c *Client) SetMyUsername(ctx context.Context, name string) (string, error) {
	var resp domain.NameResponse
	if err := c.sendJSON(ctx, http.MethodPut, apipaths.MyUsername, domain.NameRequest{Name: name}, &resp); err != nil {
		return "", err
	}
	return resp.Name, nil
}

// SetMyPhoto uploads the caller's photo and returns its URL
func (c *Client) SetMyPhoto(ctx context.Context, r io.Reader, filename string) (string, error) {
	return c.sendPhoto(ctx, apipaths.MyPhoto, r, filename)
}

// SetGroupPhoto uploads a group photo and returns its URL
func (c *Client) SetGroupPhoto(ctx context.Context, groupID int, r io.Reader, filename string) (string, error) {
	return c.sendPhoto(ctx, apipaths.GroupPhoto(groupID), r, filename)
}

// ListUsers lists users whose name starts with q (all users when empty)
func (c *Client) ListUsers(ctx context.Context, q string) ([]domain.UserView, error) {
	path := apipaths.Users
	if q != "" {
		path += "?" + url.Values{"q": {q}}.Encode()
	}
	var users []domain.UserView
	if err := c.sendJSON(ctx, http.MethodGet, path, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// User returns a single user
func (c *Client) User(ctx context.Context, userID string) (*domain.UserView, error) {
	var user domain.UserView
	if err := c.sendJSON(ctx, http.MethodGet, apipaths.User(userID), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Health returns the server health report. An unhealthy server answers 503,
// which is reported as a *StatusError.
func (c *Client) Health(ctx context.Context) (*system.HealthReport, error) {
	var report system.HealthReport
	if err := c.sendJSON(ctx, http.MethodGet, apipaths.Health, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
