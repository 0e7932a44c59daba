package middleware

import (
	"complaint_tracker_backend/internal/model"
	"complaint_tracker_backend/internal/util"
	"complaint_tracker_backend/pkg/logger"
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*util.Claims, error)
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// AuthMiddleware accepts only "Authorization: Bearer <token>". The verified
// claims are stored under util.ContextUserKey.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Error(c, http.StatusUnauthorized, "Missing or malformed authorization header")
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			if util.KindOf(err) == util.KindInternal {
				util.LogInternalError(c, err)
			} else {
				logger.FromContext(c.Request.Context()).Debug("token rejected", zap.Error(err))
				util.Unauthorized(c)
			}
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Set(util.ContextTokenKey, tokenString)
		ctx := logger.WithContext(c.Request.Context(),
			logger.FromContext(c.Request.Context()).With(zap.Uint("user_id", claims.UserID)))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RoleMiddleware is a coarse route gate. ADMIN always passes; per-complaint
// jurisdiction is still checked by the services.
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := user.Role == model.Admin
		for _, role := range roles {
			if user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

type UserActivityRepo interface {
	UpdateLastSeen(userID uint) error
}

func ActivityMiddleware(repo UserActivityRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims != nil {
			log := logger.FromContext(c.Request.Context())
			// async so the request never waits on it
			go func(id uint) {
				if err := repo.UpdateLastSeen(id); err != nil {
					log.Warn("update last seen failed", zap.Uint("user_id", id), zap.Error(err))
				}
			}(claims.UserID)
		}
		c.Next()
	}
}
