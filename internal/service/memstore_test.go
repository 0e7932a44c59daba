package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"complaint_tracker_backend/internal/model"
	"complaint_tracker_backend/internal/repository"
	"complaint_tracker_backend/internal/util"
)

// memDB is an in-memory record store with the same atomicity as the gorm
// repositories: a vetoed Mutate or Delete leaves everything untouched.
type memDB struct {
	mu         sync.Mutex
	nextID     uint
	clock      time.Time
	users      map[uint]model.User
	complaints map[uint]model.Complaint
	updates    map[uint]model.StatusUpdate
}

func newMemDB() *memDB {
	return &memDB{
		clock:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		users:      map[uint]model.User{},
		complaints: map[uint]model.Complaint{},
		updates:    map[uint]model.StatusUpdate{},
	}
}

func (db *memDB) id() uint {
	db.nextID++
	return db.nextID
}

// tick advances the fake clock so ledger ordering is deterministic.
func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Minute)
	return db.clock
}

type memUsers struct{ db *memDB }
type memComplaints struct{ db *memDB }
type memLedger struct{ db *memDB }

func (m memUsers) Create(ctx context.Context, u *model.User) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, existing := range m.db.users {
		if existing.Email == u.Email {
			return util.ErrEmailRegistered
		}
	}
	u.ID = m.db.id()
	m.db.users[u.ID] = *u
	return nil
}

func (m memUsers) FindByID(ctx context.Context, id uint) (*model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	u, ok := m.db.users[id]
	if !ok {
		return nil, util.ErrUserNotFound
	}
	return &u, nil
}

func (m memUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, u := range m.db.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, util.ErrUserNotFound
}

func (m memComplaints) Create(ctx context.Context, c *model.Complaint) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c.ID = m.db.id()
	now := m.db.tick()
	c.CreatedAt, c.UpdatedAt = now, now
	m.db.complaints[c.ID] = *c
	return nil
}

func (m memComplaints) FindByID(ctx context.Context, id uint) (*model.Complaint, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.complaints[id]
	if !ok {
		return nil, util.ErrComplaintNotFound
	}
	return &c, nil
}

func (m memComplaints) List(ctx context.Context, f repository.ComplaintFilter) ([]model.Complaint, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := []model.Complaint{}
	for _, c := range m.db.complaints {
		if f.OwnerID != nil && c.UserID != *f.OwnerID {
			continue
		}
		if f.Categories != nil && !contains(f.Categories, c.Category) {
			continue
		}
		if f.Status != nil && c.Status != *f.Status {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m memComplaints) Mutate(ctx context.Context, id uint, fn repository.MutateFunc) (*model.Complaint, *model.StatusUpdate, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	stored, ok := m.db.complaints[id]
	if !ok {
		return nil, nil, util.ErrComplaintNotFound
	}
	working := stored
	entry, err := fn(&working)
	if err != nil {
		return nil, nil, err
	}
	working.ID, working.UserID, working.CreatedAt = stored.ID, stored.UserID, stored.CreatedAt
	working.UpdatedAt = m.db.tick()
	m.db.complaints[id] = working

	if entry != nil {
		entry.ID = m.db.id()
		entry.ComplaintID = id
		entry.Status = working.Status
		entry.UpdatedAt = working.UpdatedAt
		m.db.updates[entry.ID] = *entry
	}
	return &working, entry, nil
}

func (m memComplaints) Delete(ctx context.Context, id uint, check func(c *model.Complaint) error) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.complaints[id]
	if !ok {
		return util.ErrComplaintNotFound
	}
	if err := check(&c); err != nil {
		return err
	}
	for uid, su := range m.db.updates {
		if su.ComplaintID == id {
			delete(m.db.updates, uid)
		}
	}
	delete(m.db.complaints, id)
	return nil
}

func (m memLedger) sorted(complaintID uint, keep func(model.StatusUpdate) bool) []model.StatusUpdate {
	out := []model.StatusUpdate{}
	for _, su := range m.db.updates {
		if su.ComplaintID == complaintID && keep(su) {
			out = append(out, su)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

func (m memLedger) ListByComplaint(ctx context.Context, complaintID uint) ([]model.StatusUpdate, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	return m.sorted(complaintID, func(model.StatusUpdate) bool { return true }), nil
}

func (m memLedger) FindLatestResolved(ctx context.Context, complaintID uint) (*model.StatusUpdate, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	got := m.sorted(complaintID, func(su model.StatusUpdate) bool { return su.Status == model.StatusResolved })
	if len(got) == 0 {
		return nil, util.ErrResolutionNotFound
	}
	return &got[0], nil
}

func (m memLedger) FindFeedback(ctx context.Context, complaintID uint) (*model.StatusUpdate, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	got := m.sorted(complaintID, func(su model.StatusUpdate) bool { return su.HasFeedback() })
	if len(got) == 0 {
		return nil, util.ErrFeedbackNotFound
	}
	return &got[0], nil
}

func (m memLedger) HasFeedback(ctx context.Context, complaintID uint) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	return len(m.sorted(complaintID, func(su model.StatusUpdate) bool { return su.HasFeedback() })) > 0, nil
}

func (m memLedger) AttachFeedback(ctx context.Context, complaintID, entryID uint, fb model.Feedback) (*model.StatusUpdate, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.complaints[complaintID]
	if !ok {
		return nil, util.ErrComplaintNotFound
	}
	if c.Status != model.StatusResolved {
		return nil, util.ErrComplaintNotResolved
	}
	if len(m.sorted(complaintID, func(su model.StatusUpdate) bool { return su.HasFeedback() })) > 0 {
		return nil, util.ErrFeedbackAlreadyExists
	}
	su, ok := m.db.updates[entryID]
	if !ok || su.ComplaintID != complaintID {
		return nil, util.ErrResolutionNotFound
	}
	su.ApplyFeedback(fb)
	m.db.updates[entryID] = su
	return &su, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
