package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParamUint reads a positive numeric path parameter.
func ParamUint(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, NewValidationError("invalid %s: %q", name, raw)
	}
	return uint(id), nil
}
