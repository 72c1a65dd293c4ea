package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"codista-cms/internal/middleware"
	"codista-cms/internal/models"
	"codista-cms/internal/service"
	"codista-cms/internal/translation"
	"codista-cms/pkg/logger"
)

// Menus rendered into every page response.
var pageMenus = []string{"main_menu", "footer"}

type PageHandler struct {
	pages    *service.PageService
	sites    *service.SiteService
	menus    *service.MenuService
	resolver *translation.Resolver
}

func NewPageHandler(pages *service.PageService, sites *service.SiteService, menus *service.MenuService, resolver *translation.Resolver) *PageHandler {
	return &PageHandler{
		pages:    pages,
		sites:    sites,
		menus:    menus,
		resolver: resolver,
	}
}

// RedirectToLanguage sends visitors of the site root to the home page of
// their negotiated language.
func (h *PageHandler) RedirectToLanguage(c *gin.Context) {
	language := middleware.Language(c)
	if language == "" {
		language = h.resolver.Primary()
	}
	c.Redirect(http.StatusFound, "/"+language+"/")
}

// Serve renders the page whose url matches the request path, together with
// its language switcher and the site menus.
func (h *PageHandler) Serve(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
		return
	}

	path := c.Request.URL.Path
	if path == "" || path == "/" {
		h.RedirectToLanguage(c)
		return
	}
	if !strings.HasSuffix(path, "/") {
		target := path + "/"
		if c.Request.URL.RawQuery != "" {
			target += "?" + c.Request.URL.RawQuery
		}
		c.Redirect(http.StatusMovedPermanently, target)
		return
	}

	site, err := h.sites.Default()
	if err != nil {
		logger.Error(err, "Failed to load default site", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "site not configured"})
		return
	}
	if site.RootPage == nil {
		logger.Error(service.ErrSiteNotFound, "Default site has no root page", map[string]interface{}{"site_id": site.ID})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "site not configured"})
		return
	}

	urlPath := strings.TrimSuffix(site.RootPage.URLPath, "/") + path
	page, err := h.pages.GetByURLPath(urlPath)
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
			return
		}
		logger.Error(err, "Failed to load page", map[string]interface{}{"path": path})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load page"})
		return
	}
	if !page.Live {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
		return
	}

	response, err := h.pageContext(site, page, middleware.Language(c))
	if err != nil {
		logger.Error(err, "Failed to build page context", map[string]interface{}{
			"page_id": page.ID,
			"path":    path,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render page"})
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *PageHandler) pageContext(site *models.Site, page *models.Page, active string) (gin.H, error) {
	scope := h.resolver.Scope(active)

	language, err := scope.Language(page)
	if err != nil {
		return nil, err
	}
	variants, err := scope.Variants(page)
	if err != nil {
		return nil, err
	}
	noTranslation, err := scope.NoTranslationAvailable(page)
	if err != nil {
		return nil, err
	}

	specific, err := models.Specific(page)
	if err != nil {
		return nil, err
	}
	url, err := h.sites.PageURL(page)
	if err != nil {
		return nil, err
	}

	breadcrumbs, err := h.breadcrumbs(page)
	if err != nil {
		return nil, err
	}

	response := gin.H{
		"page":                      specific,
		"url":                       url,
		"language":                  language,
		"breadcrumbs":               breadcrumbs,
		"i18n_pages":                variants,
		"i18n_pages_no_translation": noTranslation,
	}
	for _, name := range pageMenus {
		items, err := h.menus.Render(site.ID, service.MenuHandle(name, language))
		if err != nil {
			return nil, err
		}
		response[name] = items
	}
	return response, nil
}

type breadcrumb struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// breadcrumbs runs from the language home down to page. Offline ancestors are
// skipped.
func (h *PageHandler) breadcrumbs(page *models.Page) ([]breadcrumb, error) {
	ancestors, err := h.pages.Ancestors(page, true)
	if err != nil {
		return nil, err
	}

	crumbs := make([]breadcrumb, 0, len(ancestors))
	for i := range ancestors {
		ancestor := &ancestors[i]
		if ancestor.Depth < translation.LanguageHomeDepth || !ancestor.Live {
			continue
		}
		url, err := h.sites.PageURL(ancestor)
		if err != nil {
			return nil, err
		}
		crumbs = append(crumbs, breadcrumb{Title: ancestor.Title, URL: url})
	}
	return crumbs, nil
}
