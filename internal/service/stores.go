package service

import (
	"complaint_tracker_backend/internal/model"
	"complaint_tracker_backend/internal/repository"
	"context"
	"time"
)

// Record store contracts. The gorm repositories satisfy them; tests use fakes.

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type ComplaintStore interface {
	Create(ctx context.Context, c *model.Complaint) error
	FindByID(ctx context.Context, id uint) (*model.Complaint, error)
	List(ctx context.Context, f repository.ComplaintFilter) ([]model.Complaint, error)
	Mutate(ctx context.Context, id uint, fn repository.MutateFunc) (*model.Complaint, *model.StatusUpdate, error)
	Delete(ctx context.Context, id uint, check func(c *model.Complaint) error) error
}

type LedgerStore interface {
	ListByComplaint(ctx context.Context, complaintID uint) ([]model.StatusUpdate, error)
	FindLatestResolved(ctx context.Context, complaintID uint) (*model.StatusUpdate, error)
	FindFeedback(ctx context.Context, complaintID uint) (*model.StatusUpdate, error)
	HasFeedback(ctx context.Context, complaintID uint) (bool, error)
	AttachFeedback(ctx context.Context, complaintID, entryID uint, fb model.Feedback) (*model.StatusUpdate, error)
}

type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

var (
	_ UserStore      = (*repository.UserRepository)(nil)
	_ ComplaintStore = (*repository.ComplaintRepository)(nil)
	_ LedgerStore    = (*repository.StatusUpdateRepository)(nil)
	_ TokenRevoker   = (*repository.TokenBlacklist)(nil)
)
