package domain

import "time"

// Request/response payloads shared by the HTTP API and its client.
// JSON field names follow the web UI's wire format.

// LoginRequest is the body of POST /session
type LoginRequest struct {
	Name string `json:"name"`
}

// LoginResponse carries the identifier the client stores and sends back as bearer
type LoginResponse struct {
	Identifier string `json:"identifier"`
}

// UserView is the public shape of a user
type UserView struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	PhotoURL *string `json:"photoUrl,omitempty"`
}

// ConversationItem is one row of the caller's conversation list
type ConversationItem struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	IsGroup         bool    `json:"isGroup"`
	LastMessageText *string `json:"lastMessageText,omitempty"`
	LastMessageAt   *string `json:"lastMessageAt,omitempty"`
	PhotoURL        *string `json:"photoUrl,omitempty"`
}

// CommentView is a comment attached to a message
type CommentView struct {
	UserID  string `json:"userId"`
	Comment string `json:"comment"`
}

// MessageView is a message as rendered in a conversation
type MessageView struct {
	ID        int           `json:"id"`
	Sender    string        `json:"sender"`
	Text      string        `json:"text"`
	Timestamp time.Time     `json:"timestamp"`
	Comments  []CommentView `json:"comments"`
}

// ConversationDetail is the full conversation returned by GET /conversations/:id
type ConversationDetail struct {
	ID           int           `json:"id"`
	Participants []string      `json:"participants"`
	Messages     []MessageView `json:"messages"`
}

// SendMessageRequest is the body of POST /conversations/:id/messages
type SendMessageRequest struct {
	Text string `json:"text"`
}

// SendMessageResponse is returned after a message is stored
type SendMessageResponse struct {
	MessageID int    `json:"messageId"`
	Status    string `json:"status"`
}

// DirectMessageRequest is the body of POST /messages
type DirectMessageRequest struct {
	ToUserID string `json:"toUserId"`
	Text     string `json:"text"`
}

// DirectMessageResponse is returned after a direct message is stored
type DirectMessageResponse struct {
	ConversationID int    `json:"conversationId"`
	MessageID      int    `json:"messageId"`
	Status         string `json:"status"`
}

// CreateConversationRequest is the body of POST /conversations
type CreateConversationRequest struct {
	Name    string `json:"name"`
	IsGroup bool   `json:"isGroup"`
}

// CreateConversationResponse is returned after a conversation is created
type CreateConversationResponse struct {
	ConversationID int `json:"conversationId"`
}

// AddMemberRequest is the body of POST /groups/:id/members
type AddMemberRequest struct {
	UserID string `json:"userId"`
}

// ForwardRequest is the body of POST /messages/:id/forward
type ForwardRequest struct {
	ConversationID int `json:"conversationId"`
}

// CommentRequest is the body of POST /messages/:id/comments
type CommentRequest struct {
	Comment string `json:"comment"`
}

// CommentResponse is returned after a comment is stored
type CommentResponse struct {
	CommentID int    `json:"commentId"`
	Status    string `json:"status"`
}

// NameRequest is the body of PUT /me/username and PUT /groups/:id/name
type NameRequest struct {
	Name string `json:"name"`
}

// NameResponse echoes the stored name
type NameResponse struct {
	Name string `json:"name"`
}

// PhotoResponse is returned after a photo upload
type PhotoResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// StatusResponse is the generic {"status": "..."} acknowledgement
type StatusResponse struct {
	Status string `json:"status"`
}

// Status values returned by the API
const (
	StatusSent      = "sent"
	StatusAdded     = "Added"
	StatusForwarded = "Forwarded"
	StatusDeleted   = "deleted"
	StatusLeft      = "Left"
	StatusRemoved   = "removed"
	StatusOK        = "ok"
)

// PhotoUpload is an uploaded image after validation
type PhotoUpload struct {
	Data     []byte
	Filename string
}
