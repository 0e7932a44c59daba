package controller

import (
	"complaint_tracker_backend/internal/model"
	"complaint_tracker_backend/internal/service"
	"complaint_tracker_backend/internal/util"
	"context"

	"github.com/gin-gonic/gin"
)

type AuthAPI interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (string, *model.User, error)
	Logout(ctx context.Context, claims *util.Claims) error
	CurrentUser(ctx context.Context, userID uint) (*model.User, error)
}

type AuthController struct {
	AuthService AuthAPI
}

func NewAuthController(authService AuthAPI) *AuthController {
	return &AuthController{AuthService: authService}
}

// RegisterRequest defines model for registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"omitempty,oneof=STUDENT WARDEN FACULTY student warden faculty" example:"STUDENT"`
}

// Register godoc
// @Summary Register a new user
// @Description Open sign-up. Role defaults to STUDENT; ADMIN cannot self-register.
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body body RegisterRequest true "Registration data"
// @Success 200 {object} util.Response{data=object} "Registered"
// @Failure 400 {object} util.Response "Invalid body or blank password"
// @Failure 409 {object} util.Response "Email already registered"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.BindingMessage(err))
		return
	}

	user, err := c.AuthService.Register(ctx.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"message": "User registered successfully",
		"id":      user.ID,
		"role":    user.Role,
	})
}

// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Log in
// @Description Verifies credentials and returns a bearer token
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "Credentials"
// @Success 200 {object} util.Response{data=object} "Token issued"
// @Failure 400 {object} util.Response "Missing fields"
// @Failure 401 {object} util.Response "Invalid credentials"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.BindingMessage(err))
		return
	}

	token, user, err := c.AuthService.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"token": token,
		"role":  user.Role,
		"id":    user.ID,
	})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object}
// @Failure 401 {object} util.Response
// @Failure 500 {object} util.Response "Identity could not be resolved"
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.AuthService.CurrentUser(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
}

// Logout godoc
// @Summary Log out
// @Description Revokes the presented token until it expires
// @Tags auth
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	if err := c.AuthService.Logout(ctx.Request.Context(), claims); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Logged out successfully"})
}
