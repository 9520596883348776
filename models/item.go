package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/config"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/shopspring/decimal"
)

// Item is one consigned good. The split percentage is copied from the provider
// at listing time so later provider edits don't change already-listed terms.
type Item struct {
	ID              int             `gorm:"primary_key" json:"id"`
	OrganizationId  string          `gorm:"index;size:64;not null" json:"organization_id"`
	ProviderId      int             `gorm:"index;not null" json:"provider_id" binding:"required"`
	Name            string          `gorm:"size:255;not null" json:"name" binding:"required"`
	Category        string          `gorm:"size:100;index" json:"category"`
	ListPrice       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"list_price"`
	SplitPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"split_percentage"`
	Status          ItemStatus      `gorm:"size:20;index;default:'Available'" json:"status"`
	ListedAt        time.Time       `gorm:"index;not null" json:"listed_at"`
	SoldAt          *time.Time      `json:"sold_at"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewItem struct {
	ProviderId      int              `json:"provider_id" binding:"required"`
	Name            string           `json:"name" binding:"required"`
	Category        string           `json:"category"`
	ListPrice       decimal.Decimal  `json:"list_price"`
	SplitPercentage *decimal.Decimal `json:"split_percentage"`
	ListedAt        *DateString      `json:"listed_at"`
}

func (input *NewItem) validate(ctx context.Context, organizationId string) error {
	if input.ListPrice.IsNegative() {
		return utils.ValidationError("list price must not be negative")
	}
	if input.SplitPercentage != nil &&
		(input.SplitPercentage.IsNegative() || input.SplitPercentage.GreaterThan(decimal.NewFromInt(100))) {
		return utils.ValidationError("split percentage must be within [0,100]")
	}
	if err := utils.ValidateResourceId[Provider](ctx, organizationId, input.ProviderId); err != nil {
		return utils.NotFoundError("provider")
	}
	return nil
}

func CreateItem(ctx context.Context, input *NewItem) (*Item, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	if err := input.validate(ctx, organizationId); err != nil {
		return nil, err
	}

	split := input.SplitPercentage
	if split == nil {
		provider, err := utils.FetchModel[Provider](ctx, organizationId, input.ProviderId)
		if err != nil {
			return nil, err
		}
		split = &provider.DefaultSplitPercentage
	}

	listedAt := time.Now().UTC()
	if input.ListedAt != nil {
		listedAt = time.Time(*input.ListedAt)
	}

	item := Item{
		OrganizationId:  organizationId,
		ProviderId:      input.ProviderId,
		Name:            input.Name,
		Category:        input.Category,
		ListPrice:       input.ListPrice,
		SplitPercentage: *split,
		Status:          ItemStatusAvailable,
		ListedAt:        listedAt,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func GetItem(ctx context.Context, id int) (*Item, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}
	return utils.FetchModel[Item](ctx, organizationId, id)
}

func GetItemAll(ctx context.Context, providerId *int, status *ItemStatus) ([]*Item, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("organization_id = ?", organizationId)
	if providerId != nil && *providerId != 0 {
		dbCtx = dbCtx.Where("provider_id = ?", *providerId)
	}
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	var results []*Item
	if err := dbCtx.Order("listed_at").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// MarkItemReturned takes an unsold item back off the floor.
func MarkItemReturned(ctx context.Context, id int) (*Item, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	item, err := utils.FetchModel[Item](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}
	if item.Status != ItemStatusAvailable {
		return nil, utils.InvalidStateError("only available items can be returned")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&item).Update("Status", ItemStatusReturned).Error; err != nil {
		return nil, err
	}
	return item, nil
}
