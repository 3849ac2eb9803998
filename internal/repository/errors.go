package repository

import (
	"errors"

	"github.com/timmy/hirelane/internal/domain"
	"gorm.io/gorm"
)

// lookupError maps a gorm lookup failure to a domain error.
func lookupError(err error, op, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound(op, entity, id)
	}
	return domain.Internal(op, "failed to load "+entity, err)
}
