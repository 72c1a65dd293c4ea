package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"codista-cms/internal/models"
	"codista-cms/internal/repository"
	"codista-cms/pkg/cache"
	"codista-cms/pkg/logger"
	"codista-cms/pkg/utils"
)

const pageCacheTTL = time.Hour

var (
	ErrPageNotFound  = errors.New("page not found")
	ErrDuplicateSlug = errors.New("a sibling page already uses this slug")
)

type PageService struct {
	pageRepo repository.PageRepository
	cache    *cache.Cache
}

func NewPageService(pageRepo repository.PageRepository, cacheService *cache.Cache) *PageService {
	return &PageService{
		pageRepo: pageRepo,
		cache:    cacheService,
	}
}

func pagePathCacheKey(urlPath string) string {
	return "page:path:" + urlPath
}

func (s *PageService) cachePage(page *models.Page) {
	if s == nil || !s.cache.Enabled() || page == nil {
		return
	}
	if err := s.cache.Set(pagePathCacheKey(page.URLPath), page, pageCacheTTL); err != nil {
		logger.Warn("Failed to cache page", map[string]interface{}{
			"page_id": page.ID,
			"error":   err.Error(),
		})
	}
}

func (s *PageService) forget(page *models.Page) {
	if s == nil || !s.cache.Enabled() || page == nil {
		return
	}
	if err := s.cache.Delete(pagePathCacheKey(page.URLPath)); err != nil {
		logger.Warn("Failed to drop cached page", map[string]interface{}{
			"page_id": page.ID,
			"error":   err.Error(),
		})
	}
}

// InvalidateCache drops every cached page lookup.
func (s *PageService) InvalidateCache() {
	if s == nil || !s.cache.Enabled() {
		return
	}
	if err := s.cache.DeletePattern("page:*"); err != nil {
		logger.Error(err, "Failed to invalidate page cache", nil)
	}
}

func (s *PageService) Root() (*models.Page, error) {
	return s.pageRepo.EnsureRoot()
}

// AddChild creates a page below parent. The slug defaults to one derived from
// the title and has to be unique among the parent's children.
func (s *PageService) AddChild(parent *models.Page, req models.CreatePageRequest) (*models.Page, error) {
	if parent == nil {
		return nil, errors.New("parent page is required")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errors.New("page title is required")
	}
	if !models.IsContentType(req.ContentType) {
		return nil, fmt.Errorf("unknown content type %q", req.ContentType)
	}

	var slug string
	if strings.TrimSpace(req.Slug) != "" {
		slug = utils.GenerateSlug(req.Slug)
	} else {
		slug = utils.GenerateSlug(title)
	}
	if slug == "" {
		return nil, errors.New("page slug is required")
	}

	if _, err := s.pageRepo.ChildBySlug(parent, slug); err == nil {
		return nil, fmt.Errorf("%w: %s%s/", ErrDuplicateSlug, parent.URLPath, slug)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check slug uniqueness: %w", err)
	}

	page := &models.Page{
		Title:       title,
		DraftTitle:  title,
		Slug:        slug,
		ContentType: req.ContentType,
		Live:        req.Live,
		ShowInMenus: req.ShowInMenus,
	}
	if len(req.Fields) > 0 {
		page.Fields = req.Fields.Clone()
	}

	if err := s.pageRepo.AddChild(parent, page); err != nil {
		return nil, fmt.Errorf("failed to create page %s: %w", slug, err)
	}

	return page, nil
}

// Link stores the language link from a primary language page to its
// translation.
func (s *PageService) Link(primary, secondary *models.Page) error {
	if primary == nil || secondary == nil {
		return errors.New("both pages are required to link translations")
	}
	if primary.ID == secondary.ID {
		return errors.New("a page cannot be its own translation")
	}

	if err := s.pageRepo.SetLanguageLink(primary, secondary.ID); err != nil {
		return fmt.Errorf("failed to link page %d to %d: %w", primary.ID, secondary.ID, err)
	}
	s.forget(primary)
	return nil
}

// SetFields merges fields into the page's stored fields.
func (s *PageService) SetFields(page *models.Page, fields models.JSONMap) error {
	if page == nil {
		return errors.New("page is required")
	}
	if len(fields) == 0 {
		return nil
	}

	merged := page.Fields.Clone()
	for key, value := range fields {
		merged[key] = value
	}
	page.Fields = merged

	if err := s.pageRepo.UpdateFields(page); err != nil {
		return fmt.Errorf("failed to update fields of page %d: %w", page.ID, err)
	}
	s.forget(page)
	return nil
}

func (s *PageService) SetLiveByType(contentType string, live bool) (int64, error) {
	affected, err := s.pageRepo.SetLiveByType(contentType, live)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s pages: %w", contentType, err)
	}
	s.InvalidateCache()
	return affected, nil
}

func (s *PageService) GetByID(id uint) (*models.Page, error) {
	page, err := s.pageRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return page, nil
}

// GetByURLPath looks a page up by its full tree url path, for example
// "/root/de/team/".
func (s *PageService) GetByURLPath(urlPath string) (*models.Page, error) {
	if s.cache.Enabled() {
		var page models.Page
		if err := s.cache.Get(pagePathCacheKey(urlPath), &page); err == nil {
			return &page, nil
		}
	}

	page, err := s.pageRepo.GetByURLPath(urlPath)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}

	s.cachePage(page)
	return page, nil
}

// ChildBySlug returns nil without error when parent has no such child.
func (s *PageService) ChildBySlug(parent *models.Page, slug string) (*models.Page, error) {
	page, err := s.pageRepo.ChildBySlug(parent, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return page, nil
}

// Descendant returns nil without error when nothing below parent matches.
func (s *PageService) Descendant(parent *models.Page, contentType, slug string) (*models.Page, error) {
	var (
		page *models.Page
		err  error
	)
	if slug == "" {
		page, err = s.pageRepo.FirstDescendantOfType(parent, contentType)
	} else {
		page, err = s.pageRepo.DescendantOfBySlug(parent, contentType, slug)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return page, nil
}

// Ancestors returns the ancestors of page ordered from the tree root down,
// ending with page itself when inclusive is set.
func (s *PageService) Ancestors(page *models.Page, inclusive bool) ([]models.Page, error) {
	if page == nil {
		return nil, errors.New("page is required")
	}
	return s.pageRepo.Ancestors(page, inclusive)
}

// ListFromDepth returns every page at depth or deeper in tree order.
func (s *PageService) ListFromDepth(ctx context.Context, depth int) ([]models.Page, error) {
	return s.pageRepo.WithContext(ctx).ListFromDepth(depth)
}

func (s *PageService) Count() (int64, error) {
	return s.pageRepo.Count()
}
