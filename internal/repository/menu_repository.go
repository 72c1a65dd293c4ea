package repository

import (
	"codista-cms/internal/models"

	"gorm.io/gorm"
)

type MenuRepository interface {
	GetOrCreate(siteID uint, handle, title string) (*models.Menu, bool, error)
	GetByHandle(siteID uint, handle string) (*models.Menu, error)
	CountItems(menuID uint) (int64, error)
	CreateItems(items []models.MenuItem) error
	NextOrder(menuID uint) (int, error)
}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) GetOrCreate(siteID uint, handle, title string) (*models.Menu, bool, error) {
	var menus []models.Menu
	if err := r.db.Where("site_id = ? AND handle = ?", siteID, handle).Limit(1).Find(&menus).Error; err != nil {
		return nil, false, err
	}
	if len(menus) > 0 {
		return &menus[0], false, nil
	}

	menu := models.Menu{SiteID: siteID, Handle: handle, Title: title}
	if err := r.db.Create(&menu).Error; err != nil {
		return nil, false, err
	}
	return &menu, true, nil
}

func (r *menuRepository) GetByHandle(siteID uint, handle string) (*models.Menu, error) {
	var menu models.Menu
	err := r.db.Where("site_id = ? AND handle = ?", siteID, handle).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		First(&menu).Error
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *menuRepository) CountItems(menuID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.MenuItem{}).Where("menu_id = ?", menuID).Count(&count).Error
	return count, err
}

func (r *menuRepository) CreateItems(items []models.MenuItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Create(&items).Error
}

func (r *menuRepository) NextOrder(menuID uint) (int, error) {
	var maxOrder int64
	err := r.db.Model(&models.MenuItem{}).
		Select("COALESCE(MAX(sort_order), 0)").
		Where("menu_id = ?", menuID).
		Scan(&maxOrder).Error
	if err != nil {
		return 0, err
	}
	return int(maxOrder) + 1, nil
}
