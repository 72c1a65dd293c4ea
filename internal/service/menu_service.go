package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"codista-cms/internal/models"
	"codista-cms/internal/repository"
	"codista-cms/pkg/logger"
)

// PageURLBuilder computes the public URL of a page.
type PageURLBuilder interface {
	PageURL(page *models.Page) (string, error)
}

type MenuService struct {
	repo     repository.MenuRepository
	pageRepo repository.PageRepository
	urls     PageURLBuilder
}

func NewMenuService(repo repository.MenuRepository, pageRepo repository.PageRepository, urls PageURLBuilder) *MenuService {
	if repo == nil {
		return nil
	}
	return &MenuService{repo: repo, pageRepo: pageRepo, urls: urls}
}

// MenuHandle returns the handle of a per-language menu, e.g. main_menu_de.
func MenuHandle(name, language string) string {
	return normalizeMenuHandle(name) + "_" + strings.ToLower(strings.TrimSpace(language))
}

func normalizeMenuHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

func (s *MenuService) GetOrCreate(siteID uint, handle, title string) (*models.Menu, bool, error) {
	if s == nil || s.repo == nil {
		return nil, false, errors.New("menu repository not configured")
	}

	handle = normalizeMenuHandle(handle)
	if handle == "" {
		return nil, false, errors.New("menu handle is required")
	}
	if strings.TrimSpace(title) == "" {
		title = handle
	}

	return s.repo.GetOrCreate(siteID, handle, strings.TrimSpace(title))
}

// AddItemsIfEmpty adds items to a menu that has none yet. Menus that already
// hold items are left untouched. It returns the number of items created.
func (s *MenuService) AddItemsIfEmpty(menu *models.Menu, reqs []models.CreateMenuItemRequest) (int, error) {
	if s == nil || s.repo == nil {
		return 0, errors.New("menu repository not configured")
	}
	if menu == nil || menu.ID == 0 {
		return 0, errors.New("menu must be persisted")
	}

	count, err := s.repo.CountItems(menu.ID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	nextOrder, err := s.repo.NextOrder(menu.ID)
	if err != nil {
		return 0, err
	}

	items := make([]models.MenuItem, 0, len(reqs))
	for _, req := range reqs {
		item := models.MenuItem{
			MenuID:      menu.ID,
			LinkText:    req.LinkText,
			LinkPageID:  req.LinkPageID,
			LinkURL:     req.LinkURL,
			AllowSubnav: req.AllowSubnav,
		}
		item.EnsureTextFields()

		if item.LinkText == "" {
			return 0, errors.New("link text is required")
		}
		if item.LinkPageID == nil && item.LinkURL == "" {
			return 0, fmt.Errorf("menu item %q needs a page or a url", item.LinkText)
		}

		if req.SortOrder != nil {
			item.SortOrder = *req.SortOrder
		} else {
			item.SortOrder = nextOrder
		}
		if item.SortOrder >= nextOrder {
			nextOrder = item.SortOrder + 1
		}

		items = append(items, item)
	}

	if err := s.repo.CreateItems(items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// Render resolves the items of a menu to links. Items pointing at pages that
// are missing or not live are left out. An unknown menu renders empty.
func (s *MenuService) Render(siteID uint, handle string) ([]models.RenderedMenuItem, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("menu repository not configured")
	}

	menu, err := s.repo.GetByHandle(siteID, normalizeMenuHandle(handle))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.RenderedMenuItem{}, nil
		}
		return nil, err
	}

	rendered := make([]models.RenderedMenuItem, 0, len(menu.Items))
	for _, item := range models.NormalizeMenuItems(menu.Items) {
		entry := models.RenderedMenuItem{
			Text:        item.LinkText,
			URL:         item.LinkURL,
			AllowSubnav: item.AllowSubnav,
		}

		if item.LinkPageID != nil {
			page, err := s.livePage(*item.LinkPageID)
			if err != nil {
				return nil, err
			}
			if page == nil {
				continue
			}
			if entry.URL, err = s.urls.PageURL(page); err != nil {
				return nil, err
			}
			if item.AllowSubnav {
				if entry.Children, err = s.subnav(page); err != nil {
					return nil, err
				}
			}
		}

		rendered = append(rendered, entry)
	}

	return rendered, nil
}

// livePage returns nil without error when the page is missing or offline.
func (s *MenuService) livePage(pageID uint) (*models.Page, error) {
	if s.pageRepo == nil || s.urls == nil {
		return nil, errors.New("menu page links are not configured")
	}

	page, err := s.pageRepo.GetByID(pageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Menu item links to a missing page", map[string]interface{}{
				"page_id": pageID,
			})
			return nil, nil
		}
		return nil, err
	}
	if !page.Live {
		return nil, nil
	}
	return page, nil
}

// subnav lists the live children of page that are shown in menus.
func (s *MenuService) subnav(page *models.Page) ([]models.RenderedMenuItem, error) {
	children, err := s.pageRepo.Children(page)
	if err != nil {
		return nil, fmt.Errorf("failed to load children of page %d: %w", page.ID, err)
	}

	var items []models.RenderedMenuItem
	for i := range children {
		child := &children[i]
		if !child.Live || !child.ShowInMenus {
			continue
		}
		url, err := s.urls.PageURL(child)
		if err != nil {
			return nil, err
		}
		items = append(items, models.RenderedMenuItem{Text: child.Title, URL: url})
	}
	return items, nil
}
