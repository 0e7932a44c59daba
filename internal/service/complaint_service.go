package service

import (
	"complaint_tracker_backend/internal/model"
	"complaint_tracker_backend/internal/policy"
	"complaint_tracker_backend/internal/repository"
	"complaint_tracker_backend/internal/util"
	"complaint_tracker_backend/pkg/logger"
	"complaint_tracker_backend/pkg/monitoring"
	"complaint_tracker_backend/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type ComplaintInput struct {
	Title         string
	Description   string
	Category      string
	Subcategory   string
	Location      string
	ContactNumber string
}

// StatusChange is the detailed status update. ExpectedCompletionDate is
// YYYY-MM-DD or empty.
type StatusChange struct {
	Status                 string
	Comments               string
	NextSteps              string
	ExpectedCompletionDate string
}

type ComplaintService struct {
	Complaints ComplaintStore
	Users      UserStore
	Log        *zap.Logger
	now        func() time.Time
}

func NewComplaintService(complaints ComplaintStore, users UserStore, log *zap.Logger) *ComplaintService {
	return &ComplaintService{
		Complaints: complaints,
		Users:      users,
		Log:        log,
		now:        time.Now,
	}
}

func (s *ComplaintService) logger(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.Log)
}

// resolveActor loads the acting user fresh so the role is never taken from a stale token.
func resolveActor(ctx context.Context, users UserStore, actorID uint) (*model.User, error) {
	u, err := users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			return nil, &util.AppError{Kind: util.KindUnauthenticated, Message: "unknown user", Err: err}
		}
		return nil, err
	}
	return u, nil
}

func deny(op string, u *model.User) error {
	monitoring.AuthorizationDenied.WithLabelValues(op, string(u.Role)).Inc()
	return util.ErrPermissionDenied
}

func validateComplaintInput(in ComplaintInput) (model.ComplaintFields, error) {
	f := model.ComplaintFields{
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		Category:      strings.TrimSpace(in.Category),
		Subcategory:   strings.TrimSpace(in.Subcategory),
		Location:      strings.TrimSpace(in.Location),
		ContactNumber: strings.TrimSpace(in.ContactNumber),
	}
	switch {
	case f.Title == "":
		return f, util.NewValidationError("title is required")
	case f.Description == "":
		return f, util.NewValidationError("description is required")
	case f.Category == "":
		return f, util.NewValidationError("category is required")
	case !model.IsKnownCategory(f.Category):
		return f, util.NewValidationError("unknown category %q", f.Category)
	}
	return f, nil
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(util.DateFormat, raw, time.Local)
	if err != nil {
		return nil, util.NewValidationError("invalid expectedCompletionDate %q, expected YYYY-MM-DD", raw)
	}
	return &d, nil
}

func (s *ComplaintService) Create(ctx context.Context, actorID uint, in ComplaintInput) (*model.Complaint, error) {
	ctx, span := tracing.StartSpan(ctx, "ComplaintService.Create")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if _, err = resolveActor(ctx, s.Users, actorID); err != nil {
		return nil, err
	}
	fields, err := validateComplaintInput(in)
	if err != nil {
		return nil, err
	}

	c := &model.Complaint{
		Status:   model.StatusNew,
		Priority: model.PriorityMedium,
		UserID:   actorID,
	}
	c.ApplyFields(fields)

	if err = s.Complaints.Create(ctx, c); err != nil {
		return nil, err
	}

	monitoring.ComplaintsCreated.WithLabelValues(c.Category).Inc()
	s.logger(ctx).Info("complaint created",
		zap.Uint("complaint_id", c.ID),
		zap.Uint("actor", actorID),
		zap.String("category", c.Category))
	return c, nil
}

// ListForIdentity applies the role's listing scope, optionally narrowed to RESOLVED.
func (s *ComplaintService) ListForIdentity(ctx context.Context, actorID uint, resolvedOnly bool) ([]model.Complaint, error) {
	u, err := resolveActor(ctx, s.Users, actorID)
	if err != nil {
		return nil, err
	}

	var f repository.ComplaintFilter
	scope := policy.ListScopeFor(u)
	switch scope.Kind {
	case policy.ScopeOwn:
		owner := scope.OwnerID
		f.OwnerID = &owner
	case policy.ScopeCategories:
		f.Categories = scope.Categories
	}
	if resolvedOnly {
		st := model.StatusResolved
		f.Status = &st
	}
	return s.Complaints.List(ctx, f)
}

func (s *ComplaintService) ListByUser(ctx context.Context, actorID, userID uint) ([]model.Complaint, error) {
	u, err := resolveActor(ctx, s.Users, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanListUser(u, userID) {
		return nil, deny("list_user", u)
	}
	return s.Complaints.List(ctx, repository.ComplaintFilter{OwnerID: &userID})
}

func (s *ComplaintService) GetByID(ctx context.Context, actorID, id uint) (*model.Complaint, error) {
	u, err := resolveActor(ctx, s.Users, actorID)
	if err != nil {
		return nil, err
	}
	c, err := s.Complaints.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(u, c) {
		return nil, deny("view", u)
	}
	return c, nil
}

// UpdateFields lets the filer edit an open complaint. A non-owner is
// forbidden; an owner of a closed complaint gets an invalid-state error.
func (s *ComplaintService) UpdateFields(ctx context.Context, actorID, id uint, in ComplaintInput) (*model.Complaint, error) {
	ctx, span := tracing.StartSpan(ctx, "ComplaintService.UpdateFields", attribute.Int64("complaint.id", int64(id)))
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	u, err := resolveActor(ctx, s.Users, actorID)
	if err != nil {
		return nil, err
	}
	fields, err := validateComplaintInput(in)
	if err != nil {
		return nil, err
	}

	c, _, err := s.Complaints.Mutate(ctx, id, func(c *model.Complaint) (*model.StatusUpdate, error) {
		if u.Role != model.Student || u.ID != c.UserID {
			return nil, deny("edit", u)
		}
		if !policy.CanEditFields(u, c) {
			return nil, util.ErrComplaintClosed
		}
		c.ApplyFields(fields)
		return nil, nil
	})
	return c, err
}

// TransitionStatus moves the complaint to a new status and appends exactly
// one ledger entry in the same transaction.
func (s *ComplaintService) TransitionStatus(ctx context.Context, actorID, id uint, change StatusChange) (*model.Complaint, *model.StatusUpdate, error) {
	ctx, span := tracing.StartSpan(ctx, "ComplaintService.TransitionStatus",
		attribute.Int64("complaint.id", int64(id)),
		attribute.String("complaint.status", change.Status))
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	u, err := resolveActor(ctx, s.Users, actorID)
	if err != nil {
		return nil, nil, err
	}
	status, ok := model.ParseStatus(change.Status)
	if !ok {
		err = util.NewValidationError("invalid status %q", change.Status)
		return nil, nil, err
	}
	expected, err := parseDate(change.ExpectedCompletionDate)
	if err != nil {
		return nil, nil, err
	}

	current, err := s.Complaints.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !policy.CanChangeStatus(u, current) {
		err = deny("change_status", u)
		return nil, nil, err
	}

	c, entry, err := s.Complaints.Mutate(ctx, id, func(c *model.Complaint) (*model.StatusUpdate, error) {
		// the category may have been edited since the first check
		if !policy.CanChangeStatus(u, c) {
			return nil, deny("change_status", u)
		}
		from := c.Status
		c.Status = status
		s.logger(ctx).Info("complaint status changed",
			zap.Uint("complaint_id", c.ID),
			zap.Uint("actor", u.ID),
			zap.String("from", string(from)),
			zap.String("to", string(status)))
		return &model.StatusUpdate{
			Status:                 status,
			Message:                change.Comments,
			WorkProgress:           change.Comments,
			NextSteps:              change.NextSteps,
			ExpectedCompletionDate: expected,
			UpdatedByUserID:        u.ID,
			UpdatedAt:              s.now(),
		}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	monitoring.StatusTransitions.WithLabelValues(string(status), string(u.Role)).Inc()
	return c, entry, nil
}

// UpdateStatus is the plain setter kept for older clients. It still writes a
// ledger entry, as every status change must.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actorID, id uint, status string) (*model.Complaint, error) {
	st, ok := model.ParseStatus(status)
	if !ok {
		return nil, util.NewValidationError("invalid status %q", status)
	}
	c, _, err := s.TransitionStatus(ctx, actorID, id, StatusChange{
		Status:   string(st),
		Comments: fmt.Sprintf("Status changed to %s", st),
	})
	return c, err
}

// UpdatePriority shares the status rule but leaves no ledger entry.
func (s *ComplaintService) UpdatePriority(ctx context.Context, actorID, id uint, priority string) (*model.Complaint, error) {
	u, err := resolveActor(ctx, s.Users, actorID)
	if err != nil {
		return nil, err
	}
	p, ok := model.ParsePriority(priority)
	if !ok {
		return nil, util.NewValidationError("invalid priority %q", priority)
	}

	c, _, err := s.Complaints.Mutate(ctx, id, func(c *model.Complaint) (*model.StatusUpdate, error) {
		if !policy.CanChangeStatus(u, c) {
			return nil, deny("change_priority", u)
		}
		c.Priority = p
		return nil, nil
	})
	return c, err
}

// Delete removes the complaint and its whole ledger.
func (s *ComplaintService) Delete(ctx context.Context, actorID, id uint) error {
	ctx, span := tracing.StartSpan(ctx, "ComplaintService.Delete", attribute.Int64("complaint.id", int64(id)))
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	u, err := resolveActor(ctx, s.Users, actorID)
	if err != nil {
		return err
	}
	err = s.Complaints.Delete(ctx, id, func(c *model.Complaint) error {
		if !policy.CanDelete(u, c) {
			return deny("delete", u)
		}
		return nil
	})
	if err == nil {
		s.logger(ctx).Info("complaint deleted", zap.Uint("complaint_id", id), zap.Uint("actor", actorID))
	}
	return err
}
