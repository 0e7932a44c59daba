package model

import (
	"strings"
)

type ComplaintStatus string

const (
	StatusNew        ComplaintStatus = "NEW"
	StatusInProgress ComplaintStatus = "IN_PROGRESS"
	StatusResolved   ComplaintStatus = "RESOLVED"
	StatusRejected   ComplaintStatus = "REJECTED"
)

// IsTerminal reports whether the complaint's editable fields are frozen.
// Authorized roles may still move a terminal complaint to another status.
func (s ComplaintStatus) IsTerminal() bool {
	return s == StatusResolved || s == StatusRejected
}

func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// ParseStatus accepts any casing and the "in progress"/"in-progress" spellings.
func ParseStatus(s string) (ComplaintStatus, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	st := ComplaintStatus(norm)
	return st, st.Valid()
}

type ComplaintPriority string

const (
	PriorityLow    ComplaintPriority = "LOW"
	PriorityMedium ComplaintPriority = "MEDIUM"
	PriorityHigh   ComplaintPriority = "HIGH"
)

func (p ComplaintPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func ParsePriority(s string) (ComplaintPriority, bool) {
	p := ComplaintPriority(strings.ToUpper(strings.TrimSpace(s)))
	return p, p.Valid()
}

// swagger:model Complaint
type Complaint struct {
	BaseModel
	Title         string            `gorm:"size:200;not null" json:"title"`
	Description   string            `gorm:"type:text;not null" json:"description"`
	Category      string            `gorm:"size:50;not null;index" json:"category"`
	Subcategory   string            `gorm:"size:100" json:"subcategory"`
	Location      string            `gorm:"size:200" json:"location"`
	ContactNumber string            `gorm:"size:30" json:"contactNumber"`
	Status        ComplaintStatus   `gorm:"size:20;not null;default:'NEW';index" json:"status"`
	Priority      ComplaintPriority `gorm:"size:20;not null;default:'MEDIUM'" json:"priority"`
	UserID        uint              `gorm:"not null;index" json:"userId"`
	User          *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Complaint) TableName() string {
	return "complaints"
}

// ComplaintFields is the owner-editable subset of a complaint.
type ComplaintFields struct {
	Title         string
	Description   string
	Category      string
	Subcategory   string
	Location      string
	ContactNumber string
}

func (c *Complaint) ApplyFields(f ComplaintFields) {
	c.Title = f.Title
	c.Description = f.Description
	c.Category = f.Category
	c.Subcategory = f.Subcategory
	c.Location = f.Location
	c.ContactNumber = f.ContactNumber
}
