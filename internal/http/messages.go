package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wasatext/internal/domain"
	"github.com/wasatext/internal/httputil"
)

// sendDirectMessage sends to a user, opening the 1:1 conversation if needed
func (s *Server) sendDirectMessage(c *gin.Context) {
	var req domain.DirectMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}

	resp, err := s.chat.SendDirectMessage(c.Request.Context(), callerID(c), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// forwardMessage copies a message into another conversation
func (s *Server) forwardMessage(c *gin.Context) {
	msgID, err := httputil.ParseIntID(c, "id")
	if err != nil {
		badRequest(c, "Invalid message ID", nil)
		return
	}

	var req domain.ForwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}

	if err := s.chat.ForwardMessage(c.Request.Context(), callerID(c), msgID, req.ConversationID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.StatusResponse{Status: domain.StatusForwarded})
}

// deleteMessage removes one of the caller's own messages
func (s *Server) deleteMessage(c *gin.Context) {
	msgID, err := httputil.ParseIntID(c, "id")
	if err != nil {
		badRequest(c, "Invalid message ID", nil)
		return
	}

	if err := s.chat.DeleteMessage(c.Request.Context(), callerID(c), msgID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.StatusResponse{Status: domain.StatusDeleted})
}

// commentMessage sets the caller's comment on a message
func (s *Server) commentMessage(c *gin.Context) {
	msgID, err := httputil.ParseIntID(c, "id")
	if err != nil {
		badRequest(c, "Invalid message ID", nil)
		return
	}

	var req domain.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}

	commentID, err := s.chat.CommentMessage(c.Request.Context(), callerID(c), msgID, req.Comment)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, domain.CommentResponse{CommentID: commentID, Status: domain.StatusOK})
}

// uncommentMessage removes the caller's comment from a message
func (s *Server) uncommentMessage(c *gin.Context) {
	msgID, err := httputil.ParseIntID(c, "id")
	if err != nil {
		badRequest(c, "Invalid message ID", nil)
		return
	}

	if err := s.chat.UncommentMessage(c.Request.Context(), callerID(c), msgID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.StatusResponse{Status: domain.StatusRemoved})
}
