package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"codista-cms/internal/middleware"
	"codista-cms/internal/service"
	"codista-cms/pkg/logger"
)

type MenuHandler struct {
	menus *service.MenuService
	sites *service.SiteService
}

func NewMenuHandler(menus *service.MenuService, sites *service.SiteService) *MenuHandler {
	return &MenuHandler{menus: menus, sites: sites}
}

// Get renders the named menu in the negotiated language, for example
// GET /api/menus/footer?lang=en.
func (h *MenuHandler) Get(c *gin.Context) {
	if h.menus == nil || h.sites == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Service not configured"})
		return
	}

	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Menu name is required"})
		return
	}

	site, err := h.sites.Default()
	if err != nil {
		logger.Error(err, "Failed to load default site", nil)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load menu"})
		return
	}

	language := middleware.Language(c)
	handle := service.MenuHandle(name, language)
	items, err := h.menus.Render(site.ID, handle)
	if err != nil {
		logger.Error(err, "Failed to render menu", map[string]interface{}{"menu": handle})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load menu"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"menu":     handle,
		"language": language,
		"items":    items,
	})
}
