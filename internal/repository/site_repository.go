package repository

import (
	"codista-cms/internal/models"

	"gorm.io/gorm"
)

type SiteRepository interface {
	Create(site *models.Site) error
	Update(site *models.Site) error
	GetDefault() (*models.Site, error)
}

type siteRepository struct {
	db *gorm.DB
}

func NewSiteRepository(db *gorm.DB) SiteRepository {
	return &siteRepository{db: db}
}

func (r *siteRepository) Create(site *models.Site) error {
	return r.db.Create(site).Error
}

func (r *siteRepository) Update(site *models.Site) error {
	return r.db.Omit("RootPage").Save(site).Error
}

func (r *siteRepository) GetDefault() (*models.Site, error) {
	var site models.Site
	err := r.db.Preload("RootPage").Where("is_default_site = ?", true).Order("id ASC").First(&site).Error
	if err != nil {
		return nil, err
	}
	return &site, nil
}
