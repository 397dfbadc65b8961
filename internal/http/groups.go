package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wasatext/internal/domain"
	"github.com/wasatext/internal/httputil"
)

func (s *Server) addToGroup(c *gin.Context) {
	groupID, err := httputil.ParseIntID(c, "id")
	if err != nil {
		badRequest(c, "Invalid group ID", nil)
		return
	}

	var req domain.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}

	if err := s.chat.AddToGroup(c.Request.Context(), callerID(c), groupID, req.UserID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.StatusResponse{Status: domain.StatusAdded})
}

func (s *Server) leaveGroup(c *gin.Context) {
	groupID, err := httputil.ParseIntID(c, "id")
	if err != nil {
		badRequest(c, "Invalid group ID", nil)
		return
	}

	if err := s.chat.LeaveGroup(c.Request.Context(), callerID(c), groupID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.StatusResponse{Status: domain.StatusLeft})
}

func (s *Server) setGroupName(c *gin.Context) {
	groupID, err := httputil.ParseIntID(c, "id")
	if err != nil {
		badRequest(c, "Invalid group ID", nil)
		return
	}

	var req domain.NameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format", err)
		return
	}

	name, err := s.chat.SetGroupName(c.Request.Context(), callerID(c), groupID, req.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.NameResponse{Name: name})
}

func (s *Server) setGroupPhoto(c *gin.Context) {
	groupID, err := httputil.ParseIntID(c, "id")
	if err != nil {
		badRequest(c, "Invalid group ID", nil)
		return
	}

	photo, ok := s.readPhoto(c)
	if !ok {
		return
	}

	url, err := s.chat.SetGroupPhoto(c.Request.Context(), callerID(c), groupID, photo)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.PhotoResponse{Message: "Group photo updated", URL: url})
}
