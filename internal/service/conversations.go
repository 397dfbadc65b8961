package service

import (
	"context"
	"strings"

	"github.com/wasatext/internal/domain"
	"github.com/wasatext/internal/validation"
)

// CreateConversation creates a conversation with the caller as its first member
func (s *chatService) CreateConversation(ctx context.Context, callerID string, req domain.CreateConversationRequest) (int, error) {
	if err := requireCaller(callerID); err != nil {
		return 0, err
	}

	name := strings.TrimSpace(req.Name)
	if req.IsGroup {
		var err error
		if name, err = validation.ValidateRequired("group name", req.Name); err != nil {
			return 0, domain.WrapValidationError("name", err)
		}
	}

	id, err := s.database.CreateConversation(name, req.IsGroup, callerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create conversation", "error", err)
		return 0, domain.WrapDatabaseOperation("create conversation", err)
	}

	s.logger.InfoContext(ctx, "conversation created", "conversationID", id, "isGroup", req.IsGroup, "creator", callerID)
	return id, nil
}

// MyConversations lists the caller's conversations, most recent activity first
func (s *chatService) MyConversations(ctx context.Context, callerID string) ([]domain.ConversationItem, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}

	convs, err := s.database.GetMyConversations(callerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list conversations", "userID", callerID, "error", err)
		return nil, domain.WrapDatabaseOperation("list conversations", err)
	}

	items := make([]domain.ConversationItem, 0, len(convs))
	for _, c := range convs {
		items = append(items, domain.ConversationItem{
			ID:              c.ID,
			Name:            c.Name,
			IsGroup:         c.IsGroup,
			LastMessageText: c.LastText,
			LastMessageAt:   c.LastAtISO,
			PhotoURL:        c.Photo,
		})
	}
	return items, nil
}

// GetConversation returns participants and messages (newest first) with their comments
func (s *chatService) GetConversation(ctx context.Context, callerID string, convID int) (*domain.ConversationDetail, error) {
	if err := requireCaller(callerID); err != nil {
		return nil, err
	}
	if _, err := s.requireConversation(ctx, convID, callerID, domain.ErrNotAMember); err != nil {
		return nil, err
	}

	participants, err := s.database.GetConversationParticipants(convID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list participants", "conversationID", convID, "error", err)
		return nil, domain.WrapDatabaseOperation("list participants", err)
	}

	msgs, err := s.database.ListConversationMessages(convID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list messages", "conversationID", convID, "error", err)
		return nil, domain.WrapDatabaseOperation("list messages", err)
	}

	senders := make(map[string]string)
	views := make([]domain.MessageView, 0, len(msgs))
	for _, m := range msgs {
		sender, ok := senders[m.SenderID]
		if !ok {
			// users who left keep their id as display name
			sender = m.SenderID
			if u, err := s.database.GetUserByID(m.SenderID); err == nil {
				sender = u.Username
			}
			senders[m.SenderID] = sender
		}

		comments, err := s.database.ListMessageComments(m.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to list comments", "messageID", m.ID, "error", err)
			return nil, domain.WrapDatabaseOperation("list comments", err)
		}
		cv := make([]domain.CommentView, 0, len(comments))
		for _, c := range comments {
			cv = append(cv, domain.CommentView{UserID: c.UserID, Comment: c.Comment})
		}

		views = append(views, domain.MessageView{
			ID:        m.ID,
			Sender:    sender,
			Text:      m.Text,
			Timestamp: m.Timestamp,
			Comments:  cv,
		})
	}

	return &domain.ConversationDetail{
		ID:           convID,
		Participants: participants,
		Messages:     views,
	}, nil
}
