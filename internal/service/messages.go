package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/wasatext/internal/domain"
	"github.com/wasatext/internal/validation"
)

// SendMessage posts text to a conversation the caller belongs to
func (s *chatService) SendMessage(ctx context.Context, callerID string, convID int, text string) (int, error) {
	if err := requireCaller(callerID); err != nil {
		return 0, err
	}
	if _, err := s.requireConversation(ctx, convID, callerID, domain.ErrNotAMember); err != nil {
		return 0, err
	}
	if _, err := validation.ValidateRequired("text", text); err != nil {
		return 0, domain.WrapValidationError("text", err)
	}

	id, err := s.database.InsertMessage(convID, callerID, text)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to insert message", "conversationID", convID, "error", err)
		return 0, domain.WrapDatabaseOperation("insert message", err)
	}

	s.logger.DebugContext(ctx, "message sent", "conversationID", convID, "messageID", id)
	return id, nil
}

// SendDirectMessage sends text to a user, opening the 1:1 conversation on first contact
func (s *chatService) SendDirectMessage(ctx context.Context, callerID string, req domain.DirectMessageRequest) (*domain.DirectMessageResponse, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	to := strings.TrimSpace(req.ToUserID)
	if to == "" {
		return nil, domain.WrapValidationError("toUserId", errors.New("recipient cannot be empty"))
	}
	if _, err := validation.ValidateRequired("text", req.Text); err != nil {
		return nil, domain.WrapValidationError("text", err)
	}
	if to == callerID {
		return nil, domain.WrapValidationError("toUserId", errors.New("cannot message yourself"))
	}

	if _, err := s.database.GetUserByID(to); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapNotFound(domain.ErrUserNotFound, to)
		}
		return nil, domain.WrapDatabaseOperation("get user", err)
	}

	convID, err := s.database.FindDirectConversation(callerID, to)
	if errors.Is(err, sql.ErrNoRows) {
		convID, err = s.database.CreateDirectConversation(callerID, to, "")
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to create direct conversation", "error", err)
			return nil, domain.WrapDatabaseOperation("create direct conversation", err)
		}
		s.logger.InfoContext(ctx, "direct conversation opened", "conversationID", convID, "from", callerID, "to", to)
	} else if err != nil {
		return nil, domain.WrapDatabaseOperation("find direct conversation", err)
	}

	msgID, err := s.database.InsertMessage(convID, callerID, req.Text)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to insert message", "conversationID", convID, "error", err)
		return nil, domain.WrapDatabaseOperation("insert message", err)
	}

	return &domain.DirectMessageResponse{
		ConversationID: convID,
		MessageID:      msgID,
		Status:         domain.StatusSent,
	}, nil
}

// ForwardMessage copies a message the caller can read into another conversation of theirs
func (s *chatService) ForwardMessage(ctx context.Context, callerID string, msgID, convID int) error {
	if err := requireCaller(callerID); err != nil {
		return err
	}
	if err := validation.ValidateConversationID(convID); err != nil {
		return domain.WrapValidationError("conversationId", err)
	}

	if _, err := s.requireConversation(ctx, convID, callerID, domain.ErrNotAMember); err != nil {
		return err
	}

	src, err := s.database.GetMessageByID(msgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.WrapNotFound(domain.ErrMessageNotFound, msgID)
		}
		return domain.WrapDatabaseOperation("get message", err)
	}
	if err := s.requireMember(ctx, src.ConversationID, callerID, domain.ErrNotAMember); err != nil {
		return err
	}

	if _, err := s.database.InsertMessage(convID, callerID, src.Text); err != nil {
		s.logger.ErrorContext(ctx, "failed to forward message", "messageID", msgID, "conversationID", convID, "error", err)
		return domain.WrapDatabaseOperation("forward message", err)
	}
	return nil
}

// DeleteMessage removes a message sent by the caller
func (s *chatService) DeleteMessage(ctx context.Context, callerID string, msgID int) error {
	if err := requireCaller(callerID); err != nil {
		return err
	}

	deleted, err := s.database.DeleteMessage(msgID, callerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete message", "messageID", msgID, "error", err)
		return domain.WrapDatabaseOperation("delete message", err)
	}
	if deleted {
		return nil
	}

	// nothing deleted: missing, or somebody else's
	if _, err := s.database.GetMessageByID(msgID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.WrapNotFound(domain.ErrMessageNotFound, msgID)
		}
		return domain.WrapDatabaseOperation("get message", err)
	}
	return domain.NewDomainError(domain.ErrForbidden.Code, "only the sender can delete a message", nil)
}

// CommentMessage sets the caller's comment on a message, replacing any previous one
func (s *chatService) CommentMessage(ctx context.Context, callerID string, msgID int, comment string) (int, error) {
	if err := requireCaller(callerID); err != nil {
		return 0, err
	}
	if _, err := validation.ValidateRequired("comment", comment); err != nil {
		return 0, domain.WrapValidationError("comment", err)
	}
	if err := s.requireMessageMember(ctx, msgID, callerID); err != nil {
		return 0, err
	}

	id, err := s.database.UpsertComment(msgID, callerID, comment)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to upsert comment", "messageID", msgID, "error", err)
		return 0, domain.WrapDatabaseOperation("upsert comment", err)
	}
	return id, nil
}

// UncommentMessage removes the caller's comment from a message
func (s *chatService) UncommentMessage(ctx context.Context, callerID string, msgID int) error {
	if err := requireCaller(callerID); err != nil {
		return err
	}
	if err := s.requireMessageMember(ctx, msgID, callerID); err != nil {
		return err
	}

	removed, err := s.database.DeleteComment(msgID, callerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete comment", "messageID", msgID, "error", err)
		return domain.WrapDatabaseOperation("delete comment", err)
	}
	if !removed {
		return domain.WrapNotFound(domain.ErrCommentNotFound, msgID)
	}
	return nil
}

// requireMessageMember checks the message exists and the caller can see its conversation
func (s *chatService) requireMessageMember(ctx context.Context, msgID int, callerID string) error {
	m, err := s.database.GetMessageByID(msgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.WrapNotFound(domain.ErrMessageNotFound, msgID)
		}
		return domain.WrapDatabaseOperation("get message", err)
	}
	return s.requireMember(ctx, m.ConversationID, callerID, domain.ErrNotAMember)
}
