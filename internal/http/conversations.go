package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wasatext/internal/domain"
	"github.com/wasatext/internal/httputil"
)

// getMyConversations lists the caller's conversations, most recent first
func (s *Server) getMyConversations(c *gin.Context) {
	items, err := s.chat.MyConversations(c.Request.Context(), callerID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// createConversation creates a conversation with the caller as first member
func (s *Server) createConversation(c *gin.Context) {
	var req domain.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}

	id, err := s.chat.CreateConversation(c.Request.Context(), callerID(c), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, domain.CreateConversationResponse{ConversationID: id})
}

// getConversation returns participants and messages of a conversation
func (s *Server) getConversation(c *gin.Context) {
	convID, err := httputil.ParseIntID(c, "id")
	if err != nil {
		badRequest(c, "Invalid conversation ID", nil)
		return
	}

	detail, err := s.chat.GetConversation(c.Request.Context(), callerID(c), convID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// sendMessage posts a message to a conversation
func (s *Server) sendMessage(c *gin.Context) {
	convID, err := httputil.ParseIntID(c, "id")
	if err != nil {
		badRequest(c, "Invalid conversation ID", nil)
		return
	}

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}

	msgID, err := s.chat.SendMessage(c.Request.Context(), callerID(c), convID, req.Text)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, domain.SendMessageResponse{MessageID: msgID, Status: domain.StatusSent})
}
