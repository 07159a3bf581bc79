// Package repository implements the service store contracts on gorm/MySQL.
package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/singhastra/microfeedx/services"
)

// translateDuplicate maps unique-index violations onto services.ErrDuplicate
// so callers can branch without knowing the driver. The string fallback covers
// setups where gorm error translation is disabled.
func translateDuplicate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "Duplicate entry") {
		return services.ErrDuplicate
	}
	return err
}
