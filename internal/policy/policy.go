// Package policy holds the complaint authorization rules. Every function is
// pure: the caller loads the acting user and the complaint, the policy only
// answers yes or no.
package policy

import (
	"complaint_tracker_backend/internal/model"
)

type ScopeKind int

const (
	ScopeOwn ScopeKind = iota
	ScopeCategories
	ScopeAll
)

// Scope tells a listing query which complaints a user may see.
type Scope struct {
	Kind       ScopeKind
	OwnerID    uint
	Categories []string
}

func isOwner(u *model.User, c *model.Complaint) bool {
	return u != nil && c != nil && u.ID == c.UserID
}

// CanView: students see their own, authorities see their jurisdiction, admins see everything.
func CanView(u *model.User, c *model.Complaint) bool {
	if u == nil || c == nil {
		return false
	}
	switch u.Role {
	case model.Admin:
		return true
	case model.Warden, model.Faculty:
		return model.InJurisdiction(u.Role, c.Category)
	case model.Student:
		return isOwner(u, c)
	}
	return false
}

// ListScopeFor picks the listing strategy for a user. Unknown roles fall back
// to their own complaints.
func ListScopeFor(u *model.User) Scope {
	switch u.Role {
	case model.Admin:
		return Scope{Kind: ScopeAll}
	case model.Warden, model.Faculty:
		return Scope{Kind: ScopeCategories, Categories: model.Jurisdiction(u.Role)}
	}
	return Scope{Kind: ScopeOwn, OwnerID: u.ID}
}

// CanEditFields is owner-only and only while the complaint is open. Admins
// have no field-edit right.
func CanEditFields(u *model.User, c *model.Complaint) bool {
	return isOwner(u, c) && u.Role == model.Student && !c.Status.IsTerminal()
}

func CanDelete(u *model.User, c *model.Complaint) bool {
	if u == nil || c == nil {
		return false
	}
	return u.Role == model.Admin || isOwner(u, c)
}

// CanChangeStatus also gates priority changes.
func CanChangeStatus(u *model.User, c *model.Complaint) bool {
	if u == nil || c == nil {
		return false
	}
	switch u.Role {
	case model.Admin:
		return true
	case model.Warden, model.Faculty:
		return model.InJurisdiction(u.Role, c.Category)
	}
	return false
}

func CanListUser(u *model.User, userID uint) bool {
	return u != nil && (u.Role == model.Admin || u.ID == userID)
}
