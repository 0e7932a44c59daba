package repository

import (
	"complaint_tracker_backend/internal/model"
	"complaint_tracker_backend/internal/util"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ComplaintFilter narrows a listing. A non-nil, empty Categories slice matches nothing.
type ComplaintFilter struct {
	OwnerID    *uint
	Categories []string
	Status     *model.ComplaintStatus
}

// MutateFunc edits a locked complaint in place. A non-nil StatusUpdate is
// appended to the ledger in the same transaction.
type MutateFunc func(c *model.Complaint) (*model.StatusUpdate, error)

// columns written back by Mutate; user_id and created_at never change.
var mutableComplaintColumns = []string{
	"title", "description", "category", "subcategory", "location",
	"contact_number", "status", "priority", "updated_at",
}

type ComplaintRepository struct {
	DB *gorm.DB
}

func NewComplaintRepository(db *gorm.DB) *ComplaintRepository {
	return &ComplaintRepository{DB: db}
}

func (r *ComplaintRepository) Create(ctx context.Context, c *model.Complaint) error {
	return translate(r.DB.WithContext(ctx).Create(c).Error, util.ErrComplaintNotFound, "create complaint")
}

func (r *ComplaintRepository) FindByID(ctx context.Context, id uint) (*model.Complaint, error) {
	var c model.Complaint
	if err := r.DB.WithContext(ctx).Preload("User").First(&c, id).Error; err != nil {
		return nil, translate(err, util.ErrComplaintNotFound, "find complaint")
	}
	return &c, nil
}

// List returns matching complaints, newest first, with the filer loaded.
func (r *ComplaintRepository) List(ctx context.Context, f ComplaintFilter) ([]model.Complaint, error) {
	complaints := []model.Complaint{}
	if f.Categories != nil && len(f.Categories) == 0 {
		return complaints, nil
	}

	q := r.DB.WithContext(ctx).Model(&model.Complaint{}).Preload("User")
	if f.OwnerID != nil {
		q = q.Where("user_id = ?", *f.OwnerID)
	}
	if f.Categories != nil {
		q = q.Where("category IN ?", f.Categories)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	if err := q.Order("created_at DESC").Order("id DESC").Find(&complaints).Error; err != nil {
		return nil, translate(err, util.ErrComplaintNotFound, "list complaints")
	}
	return complaints, nil
}

// Mutate loads the complaint with a row lock, lets fn change it and commits
// the complaint together with the optional ledger entry. If fn returns an
// error nothing is written.
func (r *ComplaintRepository) Mutate(ctx context.Context, id uint, fn MutateFunc) (*model.Complaint, *model.StatusUpdate, error) {
	var (
		complaint model.Complaint
		entry     *model.StatusUpdate
	)

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&complaint, id).Error; err != nil {
			return translate(err, util.ErrComplaintNotFound, "lock complaint")
		}

		var err error
		entry, err = fn(&complaint)
		if err != nil {
			return err
		}

		now := time.Now()
		complaint.UpdatedAt = now
		if err := tx.Model(&complaint).Select(mutableComplaintColumns).Updates(&complaint).Error; err != nil {
			return translate(err, util.ErrComplaintNotFound, "update complaint")
		}

		if entry != nil {
			entry.ComplaintID = complaint.ID
			entry.Status = complaint.Status
			if entry.UpdatedAt.IsZero() {
				entry.UpdatedAt = now
			}
			if err := tx.Create(entry).Error; err != nil {
				return translate(err, util.ErrComplaintNotFound, "append status update")
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &complaint, entry, nil
}

// Delete removes the complaint and its ledger in one transaction. check runs
// against the locked row and can veto the delete.
func (r *ComplaintRepository) Delete(ctx context.Context, id uint, check func(c *model.Complaint) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var complaint model.Complaint
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&complaint, id).Error; err != nil {
			return translate(err, util.ErrComplaintNotFound, "lock complaint")
		}
		if check != nil {
			if err := check(&complaint); err != nil {
				return err
			}
		}
		if err := tx.Where("complaint_id = ?", id).Delete(&model.StatusUpdate{}).Error; err != nil {
			return translate(err, util.ErrComplaintNotFound, "delete status updates")
		}
		if err := tx.Delete(&model.Complaint{}, id).Error; err != nil {
			return translate(err, util.ErrComplaintNotFound, "delete complaint")
		}
		return nil
	})
}
