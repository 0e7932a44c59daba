package service

import (
	"complaint_tracker_backend/internal/config"
	"complaint_tracker_backend/internal/model"
	"complaint_tracker_backend/internal/util"
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type AuthService struct {
	UserRepo UserStore
	Tokens   TokenRevoker
	Cfg      *config.Config
}

func NewAuthService(userRepo UserStore, tokens TokenRevoker, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Tokens:   tokens,
		Cfg:      cfg,
	}
}

// Register handles open sign-up. ADMIN accounts can only be created through CreateUser.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	return s.CreateUser(ctx, in, false)
}

func (s *AuthService) CreateUser(ctx context.Context, in RegisterInput, allowAdmin bool) (*model.User, error) {
	if strings.TrimSpace(in.Password) == "" {
		return nil, util.NewValidationError("Password cannot be empty")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !util.ValidEmail(email) {
		return nil, util.NewValidationError("a valid email is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, util.NewValidationError("name is required")
	}

	role := model.Student
	if in.Role != "" {
		r, ok := model.ParseRole(in.Role)
		if !ok {
			return nil, util.NewValidationError("unknown role %q", in.Role)
		}
		role = r
	}
	if role == model.Admin && !allowAdmin {
		return nil, util.NewValidationError("role ADMIN cannot be self-registered")
	}

	_, err := s.UserRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, util.ErrUserNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, util.NewInternalError("hash password", err)
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, util.NewValidationError("Email and password are required")
	}

	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			return "", nil, util.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, util.NewInternalError("sign token", err)
	}
	return token, user, nil
}

func (s *AuthService) ValidateToken(ctx context.Context, token string) (*util.Claims, error) {
	claims, err := util.ParseJWT(token, s.Cfg.JWT.Secret)
	if err != nil {
		return nil, &util.AppError{Kind: util.KindUnauthenticated, Message: "invalid token", Err: err}
	}
	if s.Tokens != nil {
		revoked, err := s.Tokens.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, util.ErrTokenRevoked
		}
	}
	return claims, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *util.Claims) error {
	if s.Tokens == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.Tokens.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			return nil, util.NewInternalError("resolve current user", err)
		}
		return nil, err
	}
	return user, nil
}
