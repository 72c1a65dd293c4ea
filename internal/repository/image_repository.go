package repository

import (
	"codista-cms/internal/models"

	"gorm.io/gorm"
)

type ImageRepository interface {
	Create(image *models.Image) error
	GetByID(id uint) (*models.Image, error)
	GetByTitle(title string) (*models.Image, error)
}

type imageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(image *models.Image) error {
	return r.db.Create(image).Error
}

func (r *imageRepository) GetByID(id uint) (*models.Image, error) {
	var image models.Image
	if err := r.db.First(&image, id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *imageRepository) GetByTitle(title string) (*models.Image, error) {
	var image models.Image
	if err := r.db.Where("title = ?", title).First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}
