package service

import (
	"complaint_tracker_backend/internal/model"
	"complaint_tracker_backend/internal/policy"
	"complaint_tracker_backend/internal/util"
	"complaint_tracker_backend/pkg/logger"
	"complaint_tracker_backend/pkg/monitoring"
	"complaint_tracker_backend/pkg/tracing"
	"context"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	MinSatisfactionRating = 1
	MaxSatisfactionRating = 5
)

type FeedbackInput struct {
	Feedback           string
	SatisfactionRating int
	IsFullySolved      *bool
	WouldRecommend     *bool
}

// LedgerService reads the status history and attaches student feedback to it.
type LedgerService struct {
	Complaints ComplaintStore
	Ledger     LedgerStore
	Users      UserStore
	Log        *zap.Logger
	// OwnerOnly restricts feedback to the complaint's filer.
	OwnerOnly bool
	now       func() time.Time
}

func NewLedgerService(complaints ComplaintStore, ledger LedgerStore, users UserStore, ownerOnly bool, log *zap.Logger) *LedgerService {
	return &LedgerService{
		Complaints: complaints,
		Ledger:     ledger,
		Users:      users,
		Log:        log,
		OwnerOnly:  ownerOnly,
		now:        time.Now,
	}
}

func (s *LedgerService) visibleComplaint(ctx context.Context, actorID, complaintID uint) (*model.User, *model.Complaint, error) {
	u, err := resolveActor(ctx, s.Users, actorID)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.Complaints.FindByID(ctx, complaintID)
	if err != nil {
		return nil, nil, err
	}
	if !policy.CanView(u, c) {
		return nil, nil, deny("view_history", u)
	}
	return u, c, nil
}

// History returns the complaint's ledger, newest first.
func (s *LedgerService) History(ctx context.Context, actorID, complaintID uint) ([]model.StatusUpdate, error) {
	if _, _, err := s.visibleComplaint(ctx, actorID, complaintID); err != nil {
		return nil, err
	}
	return s.Ledger.ListByComplaint(ctx, complaintID)
}

func validateFeedback(in FeedbackInput) error {
	if in.SatisfactionRating < MinSatisfactionRating || in.SatisfactionRating > MaxSatisfactionRating {
		return util.NewValidationError("satisfactionRating must be between %d and %d", MinSatisfactionRating, MaxSatisfactionRating)
	}
	return nil
}

// AttachFeedback stores feedback on the complaint's RESOLVED ledger entry.
// It succeeds at most once per complaint. The comment is optional; state
// errors take precedence over a bad rating.
func (s *LedgerService) AttachFeedback(ctx context.Context, actorID, complaintID uint, in FeedbackInput) (*model.StatusUpdate, error) {
	ctx, span := tracing.StartSpan(ctx, "LedgerService.AttachFeedback", attribute.Int64("complaint.id", int64(complaintID)))
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	u, err := resolveActor(ctx, s.Users, actorID)
	if err != nil {
		return nil, err
	}

	c, err := s.Complaints.FindByID(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if s.OwnerOnly && c.UserID != u.ID {
		err = deny("feedback", u)
		return nil, err
	}
	if c.Status != model.StatusResolved {
		err = util.ErrComplaintNotResolved
		return nil, err
	}

	resolved, err := s.Ledger.FindLatestResolved(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	given, err := s.Ledger.HasFeedback(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if given {
		err = util.ErrFeedbackAlreadyExists
		return nil, err
	}
	if err = validateFeedback(in); err != nil {
		return nil, err
	}

	entry, err := s.Ledger.AttachFeedback(ctx, complaintID, resolved.ID, model.Feedback{
		Text:               strings.TrimSpace(in.Feedback),
		SatisfactionRating: in.SatisfactionRating,
		IsFullySolved:      in.IsFullySolved,
		WouldRecommend:     in.WouldRecommend,
		SubmittedAt:        s.now(),
	})
	if err != nil {
		return nil, err
	}

	monitoring.FeedbackSubmitted.WithLabelValues(strconv.Itoa(in.SatisfactionRating)).Inc()
	logger.FromContextOr(ctx, s.Log).Info("feedback submitted",
		zap.Uint("complaint_id", complaintID),
		zap.Uint("status_update_id", entry.ID),
		zap.Uint("actor", u.ID),
		zap.Int("rating", in.SatisfactionRating))
	return entry, nil
}

// Feedback returns the entry carrying the complaint's feedback.
func (s *LedgerService) Feedback(ctx context.Context, actorID, complaintID uint) (*model.StatusUpdate, error) {
	if _, _, err := s.visibleComplaint(ctx, actorID, complaintID); err != nil {
		return nil, err
	}
	return s.Ledger.FindFeedback(ctx, complaintID)
}

func (s *LedgerService) FeedbackProvided(ctx context.Context, actorID, complaintID uint) (bool, error) {
	if _, _, err := s.visibleComplaint(ctx, actorID, complaintID); err != nil {
		return false, err
	}
	return s.Ledger.HasFeedback(ctx, complaintID)
}
