package model

import (
	"strings"
	"time"
)

type UserRole string

const (
	Student UserRole = "STUDENT"
	Warden  UserRole = "WARDEN"
	Faculty UserRole = "FACULTY"
	Admin   UserRole = "ADMIN"
)

// Complaint categories offered by the submission form.
const (
	CategoryHostel      = "Hostel"
	CategoryMess        = "Mess"
	CategoryMaintenance = "Maintenance"
	CategoryAcademic    = "Academic"
	CategoryTransport   = "Transport"
	CategorySecurity    = "Security"
	CategoryOther       = "Other"
)

var Categories = []string{
	CategoryHostel,
	CategoryMess,
	CategoryMaintenance,
	CategoryAcademic,
	CategoryTransport,
	CategorySecurity,
	CategoryOther,
}

// jurisdictions maps authority roles to the categories they act on.
// ADMIN is absent on purpose; see InJurisdiction.
var jurisdictions = map[UserRole][]string{
	Student: nil,
	Warden: {
		CategoryHostel,
		CategoryMess,
		CategoryMaintenance,
		CategoryTransport,
		CategorySecurity,
	},
	Faculty: {CategoryAcademic},
}

// Jurisdiction returns the categories a role may act on. ADMIN gets the full catalogue.
func Jurisdiction(role UserRole) []string {
	if role == Admin {
		out := make([]string, len(Categories))
		copy(out, Categories)
		return out
	}
	cats := jurisdictions[role]
	out := make([]string, len(cats))
	copy(out, cats)
	return out
}

// InJurisdiction reports whether category falls under role. Comparison is case-sensitive.
func InJurisdiction(role UserRole, category string) bool {
	if role == Admin {
		return true
	}
	for _, c := range jurisdictions[role] {
		if c == category {
			return true
		}
	}
	return false
}

func IsKnownCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

func ParseRole(s string) (UserRole, bool) {
	r := UserRole(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case Student, Warden, Faculty, Admin:
		return r, true
	}
	return "", false
}

// swagger:model User
type User struct {
	BaseModel
	Name     string     `gorm:"size:100;not null" json:"name"`
	Email    string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password string     `gorm:"size:100;not null" json:"-"`
	Role     UserRole   `gorm:"size:20;not null;default:'STUDENT'" json:"role"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

func (User) TableName() string {
	return "users"
}
