package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"codista-cms/internal/models"

	"gorm.io/gorm"
)

const (
	// pathStepLength is the width of one tree level in Page.Path.
	pathStepLength = 4
	maxPathStep    = 36*36*36*36 - 1
)

type PageRepository interface {
	WithContext(ctx context.Context) PageRepository
	EnsureRoot() (*models.Page, error)
	AddChild(parent *models.Page, page *models.Page) error
	SetLanguageLink(page *models.Page, targetID uint) error
	UpdateFields(page *models.Page) error
	GetByID(id uint) (*models.Page, error)
	GetByURLPath(urlPath string) (*models.Page, error)
	AncestorAtDepth(page *models.Page, depth int) (*models.Page, error)
	Ancestors(page *models.Page, inclusive bool) ([]models.Page, error)
	Children(parent *models.Page) ([]models.Page, error)
	ChildBySlug(parent *models.Page, slug string) (*models.Page, error)
	FirstDescendantOfType(parent *models.Page, contentType string) (*models.Page, error)
	DescendantOfBySlug(parent *models.Page, contentType, slug string) (*models.Page, error)
	FindByLanguageLink(targetID uint) ([]models.Page, error)
	ListFromDepth(depth int) ([]models.Page, error)
	SetLiveByType(contentType string, live bool) (int64, error)
	Count() (int64, error)
}

type pageRepository struct {
	db *gorm.DB
}

func NewPageRepository(db *gorm.DB) PageRepository {
	return &pageRepository{db: db}
}

// WithContext returns a repository whose queries are bound to ctx.
func (r *pageRepository) WithContext(ctx context.Context) PageRepository {
	return &pageRepository{db: r.db.WithContext(ctx)}
}

func encodePathStep(step int) (string, error) {
	if step < 1 || step > maxPathStep {
		return "", fmt.Errorf("page path step %d out of range", step)
	}
	encoded := strings.ToUpper(strconv.FormatInt(int64(step), 36))
	return strings.Repeat("0", pathStepLength-len(encoded)) + encoded, nil
}

func decodePathStep(segment string) (int, error) {
	value, err := strconv.ParseInt(strings.ToLower(segment), 36, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid page path segment %q: %w", segment, err)
	}
	return int(value), nil
}

func ancestorPaths(page *models.Page, inclusive bool) []string {
	last := page.Depth
	if !inclusive {
		last--
	}
	paths := make([]string, 0, last)
	for depth := 1; depth <= last; depth++ {
		end := depth * pathStepLength
		if end > len(page.Path) {
			break
		}
		paths = append(paths, page.Path[:end])
	}
	return paths
}

func (r *pageRepository) EnsureRoot() (*models.Page, error) {
	var root models.Page
	err := r.db.Where("depth = ?", 1).Order("path ASC").First(&root).Error
	if err == nil {
		return &root, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	path, err := encodePathStep(1)
	if err != nil {
		return nil, err
	}

	root = models.Page{
		Path:        path,
		Depth:       1,
		Title:       "Root",
		DraftTitle:  "Root",
		Slug:        "root",
		URLPath:     "/",
		ContentType: models.ContentTypeRoot,
		Live:        true,
	}
	if err := r.db.Create(&root).Error; err != nil {
		return nil, err
	}
	return &root, nil
}

func (r *pageRepository) AddChild(parent *models.Page, page *models.Page) error {
	if parent == nil || parent.ID == 0 {
		return errors.New("parent page must be persisted before adding children")
	}
	if page == nil {
		return errors.New("page is required")
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var siblings []models.Page
		if err := tx.Where("path LIKE ? AND depth = ?", parent.Path+"%", parent.Depth+1).
			Order("path DESC").
			Limit(1).
			Find(&siblings).Error; err != nil {
			return err
		}

		step := 1
		if len(siblings) > 0 {
			lastPath := siblings[0].Path
			last, err := decodePathStep(lastPath[len(lastPath)-pathStepLength:])
			if err != nil {
				return err
			}
			step = last + 1
		}

		segment, err := encodePathStep(step)
		if err != nil {
			return err
		}

		page.ID = 0
		page.Path = parent.Path + segment
		page.Depth = parent.Depth + 1
		page.NumChild = 0
		page.URLPath = parent.URLPath + page.Slug + "/"

		if err := tx.Create(page).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Page{}).
			Where("id = ?", parent.ID).
			UpdateColumn("num_child", gorm.Expr("num_child + ?", 1)).Error; err != nil {
			return err
		}
		parent.NumChild++
		return nil
	})
}

// SetLanguageLink only writes the link column, leaving the tree columns alone.
func (r *pageRepository) SetLanguageLink(page *models.Page, targetID uint) error {
	if err := r.db.Model(page).Update("language_link_id", targetID).Error; err != nil {
		return err
	}
	page.LanguageLinkID = &targetID
	return nil
}

func (r *pageRepository) UpdateFields(page *models.Page) error {
	return r.db.Model(page).Update("fields", page.Fields).Error
}

func (r *pageRepository) GetByID(id uint) (*models.Page, error) {
	var page models.Page
	if err := r.db.First(&page, id).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepository) GetByURLPath(urlPath string) (*models.Page, error) {
	var page models.Page
	if err := r.db.Where("url_path = ?", urlPath).First(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// AncestorAtDepth returns the ancestor of page located at depth. The page
// itself counts as its own ancestor.
func (r *pageRepository) AncestorAtDepth(page *models.Page, depth int) (*models.Page, error) {
	if page == nil || depth < 1 || depth > page.Depth || depth*pathStepLength > len(page.Path) {
		return nil, gorm.ErrRecordNotFound
	}

	var ancestor models.Page
	if err := r.db.Where("path = ?", page.Path[:depth*pathStepLength]).First(&ancestor).Error; err != nil {
		return nil, err
	}
	return &ancestor, nil
}

func (r *pageRepository) Ancestors(page *models.Page, inclusive bool) ([]models.Page, error) {
	if page == nil {
		return nil, nil
	}
	paths := ancestorPaths(page, inclusive)
	if len(paths) == 0 {
		return []models.Page{}, nil
	}

	var pages []models.Page
	if err := r.db.Where("path IN ?", paths).Order("path ASC").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *pageRepository) Children(parent *models.Page) ([]models.Page, error) {
	var pages []models.Page
	if err := r.db.Where("path LIKE ? AND depth = ?", parent.Path+"%", parent.Depth+1).
		Order("path ASC").
		Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *pageRepository) ChildBySlug(parent *models.Page, slug string) (*models.Page, error) {
	var page models.Page
	if err := r.db.Where("path LIKE ? AND depth = ? AND slug = ?", parent.Path+"%", parent.Depth+1, slug).
		First(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepository) descendantsOf(parent *models.Page) *gorm.DB {
	return r.db.Where("path LIKE ? AND depth > ?", parent.Path+"%", parent.Depth)
}

func (r *pageRepository) FirstDescendantOfType(parent *models.Page, contentType string) (*models.Page, error) {
	var page models.Page
	if err := r.descendantsOf(parent).
		Where("content_type = ?", contentType).
		Order("path ASC").
		First(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepository) DescendantOfBySlug(parent *models.Page, contentType, slug string) (*models.Page, error) {
	var page models.Page
	if err := r.descendantsOf(parent).
		Where("content_type = ? AND slug = ?", contentType, slug).
		Order("path ASC").
		First(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// FindByLanguageLink returns every page whose language link points at
// targetID. A well formed tree yields at most one.
func (r *pageRepository) FindByLanguageLink(targetID uint) ([]models.Page, error) {
	var pages []models.Page
	if err := r.db.Where("language_link_id = ?", targetID).Order("path ASC").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *pageRepository) ListFromDepth(depth int) ([]models.Page, error) {
	var pages []models.Page
	if err := r.db.Where("depth >= ?", depth).Order("path ASC").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *pageRepository) SetLiveByType(contentType string, live bool) (int64, error) {
	result := r.db.Model(&models.Page{}).
		Where("content_type = ?", contentType).
		Update("live", live)
	return result.RowsAffected, result.Error
}

func (r *pageRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Page{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
