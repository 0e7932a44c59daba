package repository

import (
	"complaint_tracker_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

// translate turns gorm errors into the application taxonomy.
func translate(err error, notFound error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.NewConflictError("%s: duplicate record", op)
	}
	var appErr *util.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return util.NewInternalError(op, err)
}
