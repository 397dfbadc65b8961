package httputil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ParseIntID validates and returns a positive integer URL parameter
func ParseIntID(c *gin.Context, name string) (int, error) {
	raw := c.Param(name)
	if raw == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// ValidateAndGetUserID validates and returns a user id from the URL parameter
func ValidateAndGetUserID(c *gin.Context) (string, error) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return "", fmt.Errorf("invalid user ID")
	}
	return id, nil
}

// SearchPrefix returns the trimmed ?q= filter
func SearchPrefix(c *gin.Context) string {
	return strings.TrimSpace(c.Query("q"))
}
