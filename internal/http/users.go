package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wasatext/internal/domain"
	"github.com/wasatext/internal/httputil"
)

// listUsers returns users, optionally filtered by ?q= name prefix
func (s *Server) listUsers(c *gin.Context) {
	users, err := s.chat.ListUsers(c.Request.Context(), callerID(c), httputil.SearchPrefix(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// getUser returns a single user
func (s *Server) getUser(c *gin.Context) {
	userID, err := httputil.ValidateAndGetUserID(c)
	if err != nil {
		badRequest(c, "Invalid user ID", nil)
		return
	}

	user, err := s.chat.GetUser(c.Request.Context(), callerID(c), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// setMyUserName renames the caller
func (s *Server) setMyUserName(c *gin.Context) {
	var req domain.NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}

	name, err := s.chat.SetMyUsername(c.Request.Context(), callerID(c), req.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.NameResponse{Name: name})
}

// setMyPhoto replaces the caller's photo
func (s *Server) setMyPhoto(c *gin.Context) {
	photo, ok := s.readPhoto(c)
	if !ok {
		return
	}

	url, err := s.chat.SetMyPhoto(c.Request.Context(), callerID(c), photo)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.PhotoResponse{Message: "Photo updated", URL: url})
}
