package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"codista-cms/internal/models"
	"codista-cms/internal/repository"
	"codista-cms/pkg/utils"
	"codista-cms/pkg/validator"
)

// originalImagesDir is the folder below the upload directory holding imported
// image files.
const originalImagesDir = "original_images"

var ErrFixtureNotFound = errors.New("fixture image not found")

type ImageService struct {
	imageRepo    repository.ImageRepository
	uploadDir    string
	fixturesDir  string
	allowedTypes []string
}

func NewImageService(imageRepo repository.ImageRepository, uploadDir, fixturesDir string) *ImageService {
	return &ImageService{
		imageRepo:    imageRepo,
		uploadDir:    uploadDir,
		fixturesDir:  fixturesDir,
		allowedTypes: []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
	}
}

// ImportFixture stores the fixture file called name as an image titled name.
// An image with that title is reused instead of being imported twice.
func (s *ImageService) ImportFixture(name string) (*models.Image, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." {
		return nil, errors.New("image name is required")
	}

	existing, err := s.imageRepo.GetByTitle(name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up image %s: %w", name, err)
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !s.isAllowedType(ext) {
		return nil, fmt.Errorf("image type %q not allowed", ext)
	}

	src, err := os.Open(filepath.Join(s.fixturesDir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFixtureNotFound, name)
		}
		return nil, err
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read image %s: %w", name, err)
	}
	if !validator.ValidateImageContentType(validator.DetectImageType(head[:n])) {
		return nil, fmt.Errorf("fixture %s is not a supported image", name)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	targetDir := filepath.Join(s.uploadDir, originalImagesDir)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	filename := s.generateFilename(name, ext)
	target := filepath.Join(targetDir, filename)

	dst, err := os.Create(target)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(target)
		return nil, err
	}
	if err := dst.Close(); err != nil {
		os.Remove(target)
		return nil, err
	}

	image := &models.Image{
		Title: name,
		File:  path.Join(originalImagesDir, filename),
	}
	if err := s.imageRepo.Create(image); err != nil {
		os.Remove(target)
		return nil, fmt.Errorf("failed to save image %s: %w", name, err)
	}

	return image, nil
}

func (s *ImageService) GetByID(id uint) (*models.Image, error) {
	return s.imageRepo.GetByID(id)
}

// URL is the public address of an imported image.
func (s *ImageService) URL(image *models.Image) string {
	if image == nil {
		return ""
	}
	return "/uploads/" + image.File
}

func (s *ImageService) isAllowedType(ext string) bool {
	for _, allowedExt := range s.allowedTypes {
		if ext == allowedExt {
			return true
		}
	}
	return false
}

// generateFilename keeps only the slugged stem of the source name so no
// server path leaks into the stored file name.
func (s *ImageService) generateFilename(name, ext string) string {
	stem := utils.GenerateSlug(strings.TrimSuffix(name, filepath.Ext(name)))
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	if stem == "" {
		return suffix + ext
	}
	return fmt.Sprintf("%s-%s%s", stem, suffix, ext)
}
