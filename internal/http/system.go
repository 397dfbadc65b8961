package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wasatext/internal/system"
)

// liveness reports that the process is serving requests
func (s *Server) liveness(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// getHealth returns database status and host statistics
func (s *Server) getHealth(c *gin.Context) {
	report := s.health.Collect()

	status := http.StatusOK
	if report.Status != system.StatusHealthy {
		status = http.StatusServiceUnavailable
		s.logger.WarnContext(c.Request.Context(), "health check failed", "database", report.Database.Error)
	}

	s.logger.DebugContext(c.Request.Context(), "health report collected",
		"cpu", report.CPU.UsagePercent,
		"memory", report.Memory.UsagePercent,
		"disks", len(report.Disk))

	c.JSON(status, report)
}
