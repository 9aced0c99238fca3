package service

import (
	"errors"

	"stripe-shop-backend/internal/apperr"

	"gorm.io/gorm"
)

// storeErr maps a repository failure onto the shared taxonomy: record-miss
// becomes NotFound with the entity name, anything else is a persistence fault.
func storeErr(err error, notFoundMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(notFoundMsg)
	}
	return apperr.Persistence(notFoundMsg, err)
}
