package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wasatext/internal/apipaths"
)

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Unauthenticated
	s.engine.GET(apipaths.Liveness, s.liveness)
	s.engine.GET(apipaths.Health, s.getHealth)
	s.engine.POST(apipaths.Session, s.doLogin)
	s.engine.Static(apipaths.Uploads, s.config.UploadsDir)

	api := s.engine.Group("")
	api.Use(s.authMiddleware())
	{
		me := api.Group("/me")
		me.GET("/conversations", s.getMyConversations)
		me.PUT("/username", s.setMyUserName)
		me.PUT("/photo", s.setMyPhoto)

		api.GET(apipaths.Users, s.listUsers)
		api.GET("/user/:id", s.getUser)

		conversations := api.Group(apipaths.Conversations)
		conversations.POST("", s.createConversation)
		conversations.GET("/:id", s.getConversation)
		conversations.POST("/:id/messages", s.sendMessage)

		messages := api.Group(apipaths.Messages)
		messages.POST("", s.sendDirectMessage)
		messages.POST("/:id/forward", s.forwardMessage)
		messages.DELETE("/:id", s.deleteMessage)
		messages.POST("/:id/comments", s.commentMessage)
		messages.DELETE("/:id/comments", s.uncommentMessage)

		groups := api.Group("/groups")
		groups.POST("/:id/members", s.addToGroup)
		groups.DELETE("/:id/members", s.leaveGroup)
		groups.PUT("/:id/name", s.setGroupName)
		groups.PUT("/:id/photo", s.setGroupPhoto)
	}

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
	})
}
