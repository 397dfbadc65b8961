package domain

import (
	"context"
)

// ============================================================================
// Primary Ports (Application Use Cases)
// ============================================================================

// ChatService defines the primary port for the messaging use cases.
// callerID is the authenticated user; every method that takes one rejects
// an empty value with ErrUnauthorized.
type ChatService interface {
	// Session
	Login(ctx context.Context, name string) (*LoginResponse, error)
	Authenticate(ctx context.Context, identifier string) (string, error)

	// Users
	GetUser(ctx context.Context, callerID, userID string) (*UserView, error)
	ListUsers(ctx context.Context, callerID, prefix string) ([]UserView, error)
	SetMyUsername(ctx context.Context, callerID, name string) (string, error)
	SetMyPhoto(ctx context.Context, callerID string, photo PhotoUpload) (string, error)

	// Conversations
	CreateConversation(ctx context.Context, callerID string, req CreateConversationRequest) (int, error)
	MyConversations(ctx context.Context, callerID string) ([]ConversationItem, error)
	GetConversation(ctx context.Context, callerID string, convID int) (*ConversationDetail, error)

	// Groups
	AddToGroup(ctx context.Context, callerID string, groupID int, userID string) error
	LeaveGroup(ctx context.Context, callerID string, groupID int) error
	SetGroupName(ctx context.Context, callerID string, groupID int, name string) (string, error)
	SetGroupPhoto(ctx context.Context, callerID string, groupID int, photo PhotoUpload) (string, error)

	// Messages
	SendMessage(ctx context.Context, callerID string, convID int, text string) (int, error)
	SendDirectMessage(ctx context.Context, callerID string, req DirectMessageRequest) (*DirectMessageResponse, error)
	ForwardMessage(ctx context.Context, callerID string, msgID, convID int) error
	DeleteMessage(ctx context.Context, callerID string, msgID int) error
	CommentMessage(ctx context.Context, callerID string, msgID int, comment string) (int, error)
	UncommentMessage(ctx context.Context, callerID string, msgID int) error
}

// ============================================================================
// Secondary Ports (Infrastructure)
// ============================================================================

// IdentifierIssuer turns a user id into the bearer identifier handed to
// clients, and back
type IdentifierIssuer interface {
	Issue(userID string) (string, error)
	Resolve(identifier string) (string, error)
}

// HealthChecker reports whether a dependency is usable
type HealthChecker interface {
	Ping() error
}
