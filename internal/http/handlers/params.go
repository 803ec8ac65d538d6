package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func pathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Param(name)))
}

// queryLimit returns 0 (service default) for a missing or unparsable limit.
func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query("limit")))
	if err != nil || n < 0 {
		return 0
	}
	if n > 200 {
		return 200
	}
	return n
}
