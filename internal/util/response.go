package util

import (
	"complaint_tracker_backend/pkg/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope every handler writes.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	fields := []zap.Field{zap.Error(err), zap.String("path", c.FullPath())}
	if claims := GetUserFromContext(c); claims != nil {
		fields = append(fields, zap.Uint("actor", claims.UserID))
	}
	if id := c.Param("id"); id != "" {
		fields = append(fields, zap.String("complaint_id", id))
	}
	logger.FromContext(c.Request.Context()).Error("Internal server error", fields...)
	InternalServerError(c)
}

// StatusCode maps an error kind to its HTTP status.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidState:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// RespondError writes err using the shared mapping. Forbidden never carries
// detail; internal errors are logged and answered generically.
func RespondError(c *gin.Context, err error) {
	code := StatusCode(err)
	switch code {
	case http.StatusInternalServerError:
		LogInternalError(c, err)
	case http.StatusForbidden:
		Forbidden(c)
	default:
		var appErr *AppError
		if errors.As(err, &appErr) {
			Error(c, code, appErr.Message)
			return
		}
		Error(c, code, err.Error())
	}
}
