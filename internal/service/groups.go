package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/wasatext/internal/domain"
	"github.com/wasatext/internal/validation"
)

// AddToGroup adds userID to a group the caller belongs to
func (s *chatService) AddToGroup(ctx context.Context, callerID string, groupID int, userID string) error {
	if err := requireCaller(callerID); err != nil {
		return err
	}
	if err := s.requireGroup(ctx, groupID, callerID, domain.ErrNotAMember); err != nil {
		return err
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.WrapValidationError("userId", errors.New("user id cannot be empty"))
	}
	if _, err := s.database.GetUserByID(userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.WrapNotFound(domain.ErrUserNotFound, userID)
		}
		return domain.WrapDatabaseOperation("get user", err)
	}

	if err := s.database.AddUserToConversation(groupID, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to add group member", "groupID", groupID, "userID", userID, "error", err)
		return domain.WrapDatabaseOperation("add group member", err)
	}

	s.logger.InfoContext(ctx, "group member added", "groupID", groupID, "userID", userID, "by", callerID)
	return nil
}

// LeaveGroup removes the caller from a group
func (s *chatService) LeaveGroup(ctx context.Context, callerID string, groupID int) error {
	if err := requireCaller(callerID); err != nil {
		return err
	}

	// leaving a group you are not in is reported as not found
	notMember := domain.WrapNotFound(domain.ErrConversationNotFound, groupID)
	if err := s.requireGroup(ctx, groupID, callerID, notMember); err != nil {
		return err
	}

	removed, err := s.database.RemoveUserFromConversation(groupID, callerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to leave group", "groupID", groupID, "error", err)
		return domain.WrapDatabaseOperation("leave group", err)
	}
	if !removed {
		return notMember
	}

	s.logger.InfoContext(ctx, "group member left", "groupID", groupID, "userID", callerID)
	return nil
}

// SetGroupName renames a group the caller belongs to
func (s *chatService) SetGroupName(ctx context.Context, callerID string, groupID int, name string) (string, error) {
	if err := requireCaller(callerID); err != nil {
		return "", err
	}

	name, err := validation.ValidateRequired("group name", name)
	if err != nil {
		return "", domain.WrapValidationError("name", err)
	}
	if err := s.requireGroup(ctx, groupID, callerID, domain.ErrNotAMember); err != nil {
		return "", err
	}

	if err := s.database.UpdateConversationName(groupID, name); err != nil {
		s.logger.ErrorContext(ctx, "failed to rename group", "groupID", groupID, "error", err)
		return "", domain.WrapDatabaseOperation("rename group", err)
	}
	return name, nil
}

// SetGroupPhoto stores the photo of a group the caller belongs to and returns its public URL
func (s *chatService) SetGroupPhoto(ctx context.Context, callerID string, groupID int, photo domain.PhotoUpload) (string, error) {
	if err := requireCaller(callerID); err != nil {
		return "", err
	}
	if err := s.requireGroup(ctx, groupID, callerID, domain.ErrNotAMember); err != nil {
		return "", err
	}

	url, err := s.storePhoto(ctx, groupPhotoKind, strconv.Itoa(groupID), photo)
	if err != nil {
		return "", err
	}
	if err := s.database.SetConversationPhoto(groupID, url); err != nil {
		s.logger.ErrorContext(ctx, "failed to set group photo", "groupID", groupID, "error", err)
		return "", domain.WrapDatabaseOperation("set group photo", err)
	}
	return url, nil
}
