package model

import (
	"time"
)

// StatusUpdate is one ledger row per status transition. Rows are only
// removed together with their complaint; feedback columns are filled once,
// on a RESOLVED row.
// swagger:model StatusUpdate
type StatusUpdate struct {
	ID                     uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	ComplaintID            uint            `gorm:"not null;index" json:"complaintId"`
	Status                 ComplaintStatus `gorm:"size:20;not null" json:"status"`
	Message                string          `gorm:"type:text" json:"message"`
	WorkProgress           string          `gorm:"type:text" json:"workProgress"`
	NextSteps              string          `gorm:"type:text" json:"nextSteps"`
	ExpectedCompletionDate *time.Time      `gorm:"type:date" json:"expectedCompletionDate,omitempty"`
	UpdatedByUserID        uint            `gorm:"not null" json:"updatedByUserId"`
	UpdatedByUser          *User           `gorm:"foreignKey:UpdatedByUserID" json:"updatedByUser,omitempty"`
	UpdatedAt              time.Time       `gorm:"not null;index" json:"updatedAt"`

	StudentFeedback     *string    `gorm:"type:text" json:"studentFeedback,omitempty"`
	SatisfactionRating  *int       `json:"satisfactionRating,omitempty"`
	IsFullySolved       *bool      `json:"isFullySolved,omitempty"`
	WouldRecommend      *bool      `json:"wouldRecommend,omitempty"`
	FeedbackSubmittedAt *time.Time `json:"feedbackSubmittedAt,omitempty"`
}

func (StatusUpdate) TableName() string {
	return "status_updates"
}

// HasFeedback reports whether feedback was submitted. The comment is optional,
// so the submission time is what marks it.
func (s *StatusUpdate) HasFeedback() bool {
	return s.FeedbackSubmittedAt != nil
}

// Feedback is what a student attaches to the resolving ledger entry.
type Feedback struct {
	Text               string
	SatisfactionRating int
	IsFullySolved      *bool
	WouldRecommend     *bool
	SubmittedAt        time.Time
}

func (s *StatusUpdate) ApplyFeedback(f Feedback) {
	text := f.Text
	rating := f.SatisfactionRating
	at := f.SubmittedAt
	s.StudentFeedback = &text
	s.SatisfactionRating = &rating
	s.IsFullySolved = f.IsFullySolved
	s.WouldRecommend = f.WouldRecommend
	s.FeedbackSubmittedAt = &at
}
