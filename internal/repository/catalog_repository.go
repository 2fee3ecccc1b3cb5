package repository

import (
	"context"

	"gorm.io/gorm"
	"sku-reconciliation-service/internal/matching"
	"sku-reconciliation-service/internal/models"
)

// CatalogRepositoryInterface defines catalog persistence
type CatalogRepositoryInterface interface {
	ReplaceManufacturer(ctx context.Context, tenantID string, products []models.ManufacturerProduct) error
	ListManufacturer(ctx context.Context, tenantID string, opts ListOptions) ([]models.ManufacturerProduct, int64, error)
	ReplacePlatform(ctx context.Context, tenantID string, platform matching.Platform, listings []models.PlatformListing) error
	ListPlatform(ctx context.Context, tenantID string, platform matching.Platform, opts ListOptions) ([]models.PlatformListing, int64, error)
	ListPlatforms(ctx context.Context, tenantID string) (map[matching.Platform][]models.PlatformListing, error)
}

// CatalogRepository handles catalog-related database operations
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ReplaceManufacturer swaps the tenant's manufacturer catalog for products
func (r *CatalogRepository) ReplaceManufacturer(ctx context.Context, tenantID string, products []models.ManufacturerProduct) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", tenantID).Delete(&models.ManufacturerProduct{}).Error; err != nil {
			return err
		}
		if len(products) == 0 {
			return nil
		}
		return tx.CreateInBatches(products, createBatchSize).Error
	})
}

// ListManufacturer retrieves the manufacturer catalog in import order
func (r *CatalogRepository) ListManufacturer(ctx context.Context, tenantID string, opts ListOptions) ([]models.ManufacturerProduct, int64, error) {
	var products []models.ManufacturerProduct
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ManufacturerProduct{}).Where("tenant_id = ?", tenantID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}

	if err := query.Order("position ASC").Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// ReplacePlatform swaps the tenant's catalog for one platform
func (r *CatalogRepository) ReplacePlatform(ctx context.Context, tenantID string, platform matching.Platform, listings []models.PlatformListing) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND platform = ?", tenantID, platform).Delete(&models.PlatformListing{}).Error; err != nil {
			return err
		}
		if len(listings) == 0 {
			return nil
		}
		return tx.CreateInBatches(listings, createBatchSize).Error
	})
}

// ListPlatform retrieves one platform catalog in import order
func (r *CatalogRepository) ListPlatform(ctx context.Context, tenantID string, platform matching.Platform, opts ListOptions) ([]models.PlatformListing, int64, error) {
	var listings []models.PlatformListing
	var total int64

	query := r.db.WithContext(ctx).Model(&models.PlatformListing{}).
		Where("tenant_id = ? AND platform = ?", tenantID, platform)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}

	if err := query.Order("position ASC").Find(&listings).Error; err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// ListPlatforms retrieves every platform catalog the tenant has imported
func (r *CatalogRepository) ListPlatforms(ctx context.Context, tenantID string) (map[matching.Platform][]models.PlatformListing, error) {
	var listings []models.PlatformListing
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("platform ASC, position ASC").
		Find(&listings).Error; err != nil {
		return nil, err
	}

	grouped := make(map[matching.Platform][]models.PlatformListing)
	for _, l := range listings {
		grouped[l.Platform] = append(grouped[l.Platform], l)
	}
	return grouped, nil
}
