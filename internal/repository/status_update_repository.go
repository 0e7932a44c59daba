package repository

import (
	"complaint_tracker_backend/internal/model"
	"complaint_tracker_backend/internal/util"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatusUpdateRepository struct {
	DB *gorm.DB
}

func NewStatusUpdateRepository(db *gorm.DB) *StatusUpdateRepository {
	return &StatusUpdateRepository{DB: db}
}

// ListByComplaint returns the ledger newest first, with the acting user loaded.
func (r *StatusUpdateRepository) ListByComplaint(ctx context.Context, complaintID uint) ([]model.StatusUpdate, error) {
	entries := []model.StatusUpdate{}
	err := r.DB.WithContext(ctx).
		Preload("UpdatedByUser").
		Where("complaint_id = ?", complaintID).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, translate(err, util.ErrComplaintNotFound, "list status updates")
	}
	return entries, nil
}

// FindLatestResolved returns the most recent RESOLVED entry.
func (r *StatusUpdateRepository) FindLatestResolved(ctx context.Context, complaintID uint) (*model.StatusUpdate, error) {
	var entry model.StatusUpdate
	err := r.DB.WithContext(ctx).
		Where("complaint_id = ? AND status = ?", complaintID, model.StatusResolved).
		Order("updated_at DESC").
		Order("id DESC").
		First(&entry).Error
	if err != nil {
		return nil, translate(err, util.ErrResolutionNotFound, "find resolved status update")
	}
	return &entry, nil
}

// FindFeedback returns the entry carrying the complaint's feedback.
func (r *StatusUpdateRepository) FindFeedback(ctx context.Context, complaintID uint) (*model.StatusUpdate, error) {
	var entry model.StatusUpdate
	err := r.DB.WithContext(ctx).
		Preload("UpdatedByUser").
		Where("complaint_id = ? AND status = ?", complaintID, model.StatusResolved).
		Where("feedback_submitted_at IS NOT NULL").
		Order("feedback_submitted_at DESC").
		First(&entry).Error
	if err != nil {
		return nil, translate(err, util.ErrFeedbackNotFound, "find feedback")
	}
	return &entry, nil
}

func (r *StatusUpdateRepository) HasFeedback(ctx context.Context, complaintID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.StatusUpdate{}).
		Where("complaint_id = ?", complaintID).
		Where("feedback_submitted_at IS NOT NULL").
		Count(&count).Error
	if err != nil {
		return false, translate(err, util.ErrComplaintNotFound, "check feedback")
	}
	return count > 0, nil
}

// AttachFeedback writes the feedback columns of one entry. The complaint row
// is locked so concurrent submissions serialize; whoever comes second sees
// the first one's feedback and gets a conflict.
func (r *StatusUpdateRepository) AttachFeedback(ctx context.Context, complaintID, entryID uint, fb model.Feedback) (*model.StatusUpdate, error) {
	var entry model.StatusUpdate

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var complaint model.Complaint
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&complaint, complaintID).Error; err != nil {
			return translate(err, util.ErrComplaintNotFound, "lock complaint")
		}
		if complaint.Status != model.StatusResolved {
			return util.ErrComplaintNotResolved
		}

		var existing int64
		if err := tx.Model(&model.StatusUpdate{}).
			Where("complaint_id = ?", complaintID).
			Where("feedback_submitted_at IS NOT NULL").
			Count(&existing).Error; err != nil {
			return translate(err, util.ErrComplaintNotFound, "check feedback")
		}
		if existing > 0 {
			return util.ErrFeedbackAlreadyExists
		}

		// UpdateColumns keeps updated_at, which orders the history.
		res := tx.Model(&model.StatusUpdate{}).
			Where("id = ? AND complaint_id = ? AND feedback_submitted_at IS NULL", entryID, complaintID).
			UpdateColumns(map[string]interface{}{
				"student_feedback":      fb.Text,
				"satisfaction_rating":   fb.SatisfactionRating,
				"is_fully_solved":       fb.IsFullySolved,
				"would_recommend":       fb.WouldRecommend,
				"feedback_submitted_at": fb.SubmittedAt,
			})
		if res.Error != nil {
			return translate(res.Error, util.ErrResolutionNotFound, "attach feedback")
		}
		if res.RowsAffected == 0 {
			return util.ErrFeedbackAlreadyExists
		}

		if err := tx.First(&entry, entryID).Error; err != nil {
			return translate(err, util.ErrResolutionNotFound, "reload status update")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
