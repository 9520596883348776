package models

import (
	"fmt"

	"gorm.io/gorm"
)

// acquireSettlementLock serializes settlement runs per (organization, provider)
// across instances using MySQL advisory locks.
// NOTE: GET_LOCK is connection-scoped, so this must be called on the same
// *gorm.DB transaction that will do the settlement writes.
func acquireSettlementLock(tx *gorm.DB, organizationId string, providerId int) error {
	lockName := fmt.Sprintf("settlement:%s:%d", organizationId, providerId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire settlement lock for organization_id=%s provider_id=%d", organizationId, providerId)
	}
	return nil
}

func releaseSettlementLock(tx *gorm.DB, organizationId string, providerId int) {
	lockName := fmt.Sprintf("settlement:%s:%d", organizationId, providerId)
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}
