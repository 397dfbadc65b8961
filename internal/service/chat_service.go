package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/wasatext/internal/config"
	"github.com/wasatext/internal/db"
	"github.com/wasatext/internal/domain"
	"github.com/wasatext/internal/validation"
)

// chatService implements the ChatService interface
type chatService struct {
	database *db.DB
	issuer   domain.IdentifierIssuer
	config   *config.Config
	logger   *slog.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	database *db.DB,
	issuer domain.IdentifierIssuer,
	cfg *config.Config,
	logger *slog.Logger,
) domain.ChatService {
	return &chatService{
		database: database,
		issuer:   issuer,
		config:   cfg,
		logger:   logger,
	}
}

// Login returns the identifier of the user called name, creating the user on first login
func (s *chatService) Login(ctx context.Context, name string) (*domain.LoginResponse, error) {
	name, err := validation.ValidateUsername(name)
	if err != nil {
		s.logger.WarnContext(ctx, "invalid login name", "error", err)
		return nil, domain.WrapValidationError("name", err)
	}

	user, err := s.database.GetUserByUsername(name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		user = db.NewUser(name)
		if err := s.database.CreateUser(user); err != nil {
			if errors.Is(err, db.ErrUsernameTaken) {
				// lost a race with a concurrent first login
				if user, err = s.database.GetUserByUsername(name); err != nil {
					return nil, domain.WrapDatabaseOperation("get user", err)
				}
				break
			}
			s.logger.ErrorContext(ctx, "failed to create user", "name", name, "error", err)
			return nil, domain.WrapDatabaseOperation("create user", err)
		}
		s.logger.InfoContext(ctx, "user registered", "userID", user.ID, "name", name)
	case err != nil:
		s.logger.ErrorContext(ctx, "failed to get user", "name", name, "error", err)
		return nil, domain.WrapDatabaseOperation("get user", err)
	}

	identifier, err := s.issuer.Issue(user.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to issue identifier", "userID", user.ID, "error", err)
		return nil, domain.NewDomainError(domain.ErrUnauthorized.Code, "could not issue identifier", err)
	}
	return &domain.LoginResponse{Identifier: identifier}, nil
}

// Authenticate resolves a bearer identifier to an existing user id
func (s *chatService) Authenticate(ctx context.Context, identifier string) (string, error) {
	userID, err := s.issuer.Resolve(identifier)
	if err != nil {
		s.logger.DebugContext(ctx, "identifier rejected", "error", err)
		return "", domain.NewDomainError(domain.ErrUnauthorized.Code, domain.ErrUnauthorized.Message, err)
	}

	if _, err := s.database.GetUserByID(userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrUnauthorized
		}
		return "", domain.WrapDatabaseOperation("get user", err)
	}
	return userID, nil
}

// GetUser returns the public view of a user
func (s *chatService) GetUser(ctx context.Context, callerID, userID string) (*domain.UserView, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	user, err := s.database.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapNotFound(domain.ErrUserNotFound, userID)
		}
		return nil, domain.WrapDatabaseOperation("get user", err)
	}
	view := toUserView(*user)
	return &view, nil
}

// ListUsers returns users whose name starts with prefix
func (s *chatService) ListUsers(ctx context.Context, callerID, prefix string) ([]domain.UserView, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	users, err := s.database.ListUsers(prefix)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list users", "error", err)
		return nil, domain.WrapDatabaseOperation("list users", err)
	}

	views := make([]domain.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	return views, nil
}

// SetMyUsername renames the caller
func (s *chatService) SetMyUsername(ctx context.Context, callerID, name string) (string, error) {
	if err := requireCaller(callerID); err != nil {
		return "", err
	}

	name, err := validation.ValidateUsername(name)
	if err != nil {
		return "", domain.WrapValidationError("name", err)
	}

	if err := s.database.SetUsername(callerID, name); err != nil {
		if errors.Is(err, db.ErrUsernameTaken) {
			return "", domain.ErrUsernameTaken
		}
		s.logger.ErrorContext(ctx, "failed to set username", "userID", callerID, "error", err)
		return "", domain.WrapDatabaseOperation("set username", err)
	}

	s.logger.InfoContext(ctx, "username changed", "userID", callerID, "name", name)
	return name, nil
}

// SetMyPhoto stores the caller's photo and returns its public URL
func (s *chatService) SetMyPhoto(ctx context.Context, callerID string, photo domain.PhotoUpload) (string, error) {
	if err := requireCaller(callerID); err != nil {
		return "", err
	}

	url, err := s.storePhoto(ctx, userPhotoKind, callerID, photo)
	if err != nil {
		return "", err
	}
	if err := s.database.SetUserPhoto(callerID, url); err != nil {
		s.logger.ErrorContext(ctx, "failed to set user photo", "userID", callerID, "error", err)
		return "", domain.WrapDatabaseOperation("set user photo", err)
	}
	return url, nil
}

// requireCaller rejects requests without an authenticated user
func requireCaller(callerID string) error {
	if callerID == "" {
		return domain.ErrUnauthorized
	}
	return nil
}

// requireConversation loads a conversation and checks the caller belongs to it.
// notMember is returned when the caller is not a member.
func (s *chatService) requireConversation(ctx context.Context, convID int, callerID string, notMember error) (*db.ConversationInfo, error) {
	info, err := s.database.GetConversationInfo(convID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapNotFound(domain.ErrConversationNotFound, convID)
		}
		s.logger.ErrorContext(ctx, "failed to get conversation", "conversationID", convID, "error", err)
		return nil, domain.WrapDatabaseOperation("get conversation", err)
	}

	if err := s.requireMember(ctx, convID, callerID, notMember); err != nil {
		return nil, err
	}
	return info, nil
}

// requireGroup is requireConversation for operations that only apply to groups
func (s *chatService) requireGroup(ctx context.Context, groupID int, callerID string, notMember error) error {
	info, err := s.database.GetConversationInfo(groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.WrapNotFound(domain.ErrConversationNotFound, groupID)
		}
		s.logger.ErrorContext(ctx, "failed to get conversation", "conversationID", groupID, "error", err)
		return domain.WrapDatabaseOperation("get conversation", err)
	}
	if !info.IsGroup {
		return domain.ErrNotAGroup
	}
	return s.requireMember(ctx, groupID, callerID, notMember)
}

func (s *chatService) requireMember(ctx context.Context, convID int, callerID string, notMember error) error {
	ok, err := s.database.IsUserInConversation(convID, callerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to check membership", "conversationID", convID, "error", err)
		return domain.WrapDatabaseOperation("check membership", err)
	}
	if !ok {
		return notMember
	}
	return nil
}

func toUserView(u db.User) domain.UserView {
	return domain.UserView{
		ID:       u.ID,
		Name:     u.Username,
		PhotoURL: u.PhotoURL,
	}
}
