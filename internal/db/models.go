package db

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered chat user. ID doubles as the plain bearer identifier.
type User struct {
	ID       string  `json:"id" db:"id"`
	Username string  `json:"username" db:"username"`
	PhotoURL *string `json:"photo_url" db:"photo"` // NULL until a photo is uploaded
}

// Conversation is a direct (two members) or group conversation
type Conversation struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	IsGroup   bool      `json:"is_group" db:"is_group"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	PhotoURL  *string   `json:"photo_url" db:"photo"`
}

// ConversationInfo is the minimal projection used for existence and type checks
type ConversationInfo struct {
	ID      int
	IsGroup bool
}

// ConversationSummary is one row of a user's conversation list
type ConversationSummary struct {
	ID        int
	Name      string
	Photo     *string
	IsGroup   bool
	LastText  *string
	LastAtISO *string // last activity, RFC 3339 UTC
}

// Message is a chat message
type Message struct {
	ID             int       `json:"id" db:"id"`
	ConversationID int       `json:"conversation_id" db:"conversation_id"`
	SenderID       string    `json:"sender_id" db:"sender_id"`
	Text           string    `json:"text" db:"text"`
	Timestamp      time.Time `json:"timestamp" db:"timestamp"`
}

// Comment is a user's single comment (reaction) on a message
type Comment struct {
	MessageID int       `db:"message_id"`
	UserID    string    `db:"user_id"`
	Comment   string    `db:"comment"`
	Timestamp time.Time `db:"timestamp"`
}

// NewUser creates a new User with a generated UUID
func NewUser(username string) *User {
	return &User{
		ID:       uuid.New().String(),
		Username: username,
	}
}
