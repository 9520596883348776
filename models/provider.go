package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/config"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/shopspring/decimal"
)

// Provider is the consignor: the party who supplies items and receives a split
// of each sale. The default split percentage seeds new items and can be
// overridden per item.
type Provider struct {
	ID                     int             `gorm:"primary_key" json:"id"`
	OrganizationId         string          `gorm:"index;size:64;not null" json:"organization_id"`
	Name                   string          `gorm:"size:255;not null" json:"name" binding:"required"`
	Email                  string          `gorm:"size:255" json:"email"`
	Phone                  string          `gorm:"size:64" json:"phone"`
	DefaultSplitPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"default_split_percentage"`
	IsActive               bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt              time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProvider struct {
	Name                   string          `json:"name" binding:"required"`
	Email                  string          `json:"email" binding:"omitempty,email"`
	Phone                  string          `json:"phone"`
	DefaultSplitPercentage decimal.Decimal `json:"default_split_percentage"`
	IsActive               *bool           `json:"is_active"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewProvider) validate(ctx context.Context, organizationId string, id int) error {
	if input.DefaultSplitPercentage.IsNegative() || input.DefaultSplitPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return utils.ValidationError("split percentage must be within [0,100]")
	}
	if err := utils.ValidateUnique[Provider](ctx, organizationId, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func CreateProvider(ctx context.Context, input *NewProvider) (*Provider, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	if err := input.validate(ctx, organizationId, 0); err != nil {
		return nil, err
	}

	provider := Provider{
		OrganizationId:         organizationId,
		Name:                   input.Name,
		Email:                  input.Email,
		Phone:                  input.Phone,
		DefaultSplitPercentage: input.DefaultSplitPercentage,
		IsActive:               input.IsActive == nil || *input.IsActive,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&provider).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

func UpdateProvider(ctx context.Context, id int, input *NewProvider) (*Provider, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	if err := input.validate(ctx, organizationId, id); err != nil {
		return nil, err
	}

	provider, err := utils.FetchModel[Provider](ctx, organizationId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	updates := map[string]interface{}{
		"Name":                   input.Name,
		"Email":                  input.Email,
		"Phone":                  input.Phone,
		"DefaultSplitPercentage": input.DefaultSplitPercentage,
	}
	if input.IsActive != nil {
		updates["IsActive"] = *input.IsActive
	}
	if err := db.WithContext(ctx).Model(&provider).Updates(updates).Error; err != nil {
		return nil, err
	}
	return provider, nil
}

func GetProvider(ctx context.Context, id int) (*Provider, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}
	return utils.FetchModel[Provider](ctx, organizationId, id)
}

func GetProviderAll(ctx context.Context, name *string) ([]*Provider, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, utils.ValidationError("organization id is required")
	}

	db := config.GetDB()
	var results []*Provider

	dbCtx := db.WithContext(ctx).Where("organization_id = ?", organizationId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ProviderExists reports whether the provider belongs to the organization.
func ProviderExists(ctx context.Context, organizationId string, providerId int) (bool, error) {
	count, err := utils.ResourceCountWhere[Provider](ctx, organizationId, "id = ?", providerId)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ActiveProviderIds lists providers eligible for batch payout/statement runs.
func ActiveProviderIds(ctx context.Context, organizationId string) ([]int, error) {
	db := config.GetDB()
	var ids []int
	if err := db.WithContext(ctx).Model(&Provider{}).
		Where("organization_id = ? AND is_active = ?", organizationId, true).
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
