package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// formPolicy strips every HTML tag from submitted text fields.
var formPolicy = bluemonday.StrictPolicy()

func sanitizeFormField(value string) string {
	return strings.TrimSpace(formPolicy.Sanitize(value))
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}
