package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/config"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
)

// Organization is the tenant (the consignment shop). Registration and
// membership live in the identity service; the engine only reads the row for
// display fields and the timezone that anchors day/period boundaries.
type Organization struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Timezone  string    `gorm:"size:64" json:"timezone"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// read organization, redis or db, cache result
func GetOrganizationById(ctx context.Context, organizationId string) (*Organization, error) {
	var organization Organization
	cacheKey := "Organization:" + organizationId
	exists, err := config.GetRedisObject(cacheKey, &organization)
	if err != nil {
		return nil, err
	}
	if exists {
		return &organization, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).First(&organization, "id = ?", organizationId).Error; err != nil {
		return nil, utils.NotFoundError(fmt.Sprintf("organization %s", organizationId))
	}
	if err := config.SetRedisObject(cacheKey, &organization, 0); err != nil {
		return nil, err
	}
	return &organization, nil
}

func GetOrganization(ctx context.Context) (*Organization, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}
	return GetOrganizationById(ctx, organizationId)
}
