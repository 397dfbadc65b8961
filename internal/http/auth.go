package http

import (
	"github.com/gin-gonic/gin"
	"github.com/wasatext/internal/session"
)

const callerKey = "callerID"

// authMiddleware resolves the bearer identifier to a user and stores its id
// in the gin context. Requests without a known identifier get 401.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := session.ExtractIdentifier(c.Request)

		userID, err := s.chat.Authenticate(c.Request.Context(), identifier)
		if err != nil {
			s.respondError(c, err)
			c.Abort()
			return
		}

		c.Set(callerKey, userID)
		c.Next()
	}
}

// callerID returns the authenticated user id, or "" outside authMiddleware
func callerID(c *gin.Context) string {
	return c.GetString(callerKey)
}
