package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codista-cms/internal/middleware"
	"codista-cms/internal/repository"
	"codista-cms/internal/seed"
	"codista-cms/internal/service"
	"codista-cms/internal/testutil"
	"codista-cms/internal/translation"
)

type pageResponse struct {
	URL      string `json:"url"`
	Language string `json:"language"`
	Page     struct {
		ID          uint                   `json:"id"`
		Title       string                 `json:"title"`
		ContentType string                 `json:"content_type"`
		Content     map[string]interface{} `json:"content"`
	} `json:"page"`
	Variants []struct {
		Code     string `json:"code"`
		URL      string `json:"url"`
		IsActive bool   `json:"is_active"`
	} `json:"i18n_pages"`
	Breadcrumbs []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"breadcrumbs"`
	NoTranslation bool `json:"i18n_pages_no_translation"`
	MainMenu      []struct {
		Text     string `json:"text"`
		URL      string `json:"url"`
		Children []struct {
			Text string `json:"text"`
			URL  string `json:"url"`
		} `json:"children"`
	} `json:"main_menu"`
	Footer []struct {
		Text string `json:"text"`
		URL  string `json:"url"`
	} `json:"footer"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	pageRepo := repository.NewPageRepository(db)
	pages := service.NewPageService(pageRepo, nil)
	sites := service.NewSiteService(repository.NewSiteRepository(db))
	images := service.NewImageService(repository.NewImageRepository(db), t.TempDir(), t.TempDir())
	menus := service.NewMenuService(repository.NewMenuRepository(db), pageRepo, sites)

	require.NoError(t, seed.NewPageTree(pages, sites, images, menus, "de", "en").Run())

	resolver, err := translation.NewResolver(pageRepo, sites, "de", "en")
	require.NoError(t, err)

	pageHandler := NewPageHandler(pages, sites, menus, resolver)
	menuHandler := NewMenuHandler(menus, sites)

	router := gin.New()
	router.Use(middleware.LanguageNegotiationMiddleware(resolver))
	router.GET("/", pageHandler.RedirectToLanguage)
	router.GET("/api/menus/:name", menuHandler.Get)
	router.NoRoute(pageHandler.Serve)
	return router
}

func get(router *gin.Engine, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for name, value := range header {
		req.Header.Set(name, value)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) pageResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response pageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	return response
}

func TestRedirectToLanguage(t *testing.T) {
	router := newTestRouter(t)

	rec := get(router, "/", map[string]string{"Accept-Language": "en-GB,en;q=0.8"})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/en/", rec.Header().Get("Location"))

	rec = get(router, "/", map[string]string{"Accept-Language": "fr"})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/de/", rec.Header().Get("Location"))
}

func TestServeAppendsTrailingSlash(t *testing.T) {
	router := newTestRouter(t)

	rec := get(router, "/de/team?x=1", nil)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/de/team/?x=1", rec.Header().Get("Location"))
}

func TestServePrimaryPage(t *testing.T) {
	router := newTestRouter(t)

	response := decodePage(t, get(router, "/de/leistungen/", nil))

	assert.Equal(t, "/de/leistungen/", response.URL)
	assert.Equal(t, "de", response.Language)
	assert.Equal(t, "service_overview_page", response.Page.ContentType)
	assert.False(t, response.NoTranslation)

	require.Len(t, response.Variants, 2)
	urls := map[string]string{}
	for _, variant := range response.Variants {
		urls[variant.Code] = variant.URL
		assert.Equal(t, variant.Code == "de", variant.IsActive, variant.Code)
	}
	assert.Equal(t, "/de/leistungen/", urls["de"])
	assert.Equal(t, "/en/services/", urls["en"])

	require.Len(t, response.MainMenu, 4)
	assert.Equal(t, "Leistungen", response.MainMenu[0].Text)
	assert.Equal(t, "/de/leistungen/", response.MainMenu[0].URL)
	require.Len(t, response.Footer, 3)
	assert.Equal(t, "Datenschutz", response.Footer[0].Text)
}

func TestServeSecondaryPageResolvesPrimaryCounterpart(t *testing.T) {
	router := newTestRouter(t)

	response := decodePage(t, get(router, "/en/imprint/", nil))

	assert.Equal(t, "en", response.Language)
	urls := map[string]string{}
	for _, variant := range response.Variants {
		urls[variant.Code] = variant.URL
		assert.Equal(t, variant.Code == "en", variant.IsActive, variant.Code)
	}
	assert.Equal(t, "/de/impressum/", urls["de"])
	assert.Equal(t, "/en/imprint/", urls["en"])

	require.NotEmpty(t, response.Footer)
	assert.Equal(t, "Privacy", response.Footer[0].Text)
	assert.Equal(t, "/en/privacy-policy/", response.Footer[0].URL)
}

func TestServeHomePageContent(t *testing.T) {
	router := newTestRouter(t)

	response := decodePage(t, get(router, "/en/", nil))

	assert.Equal(t, "home_page", response.Page.ContentType)
	assert.Equal(t, "en", response.Page.Content["language"])
	assert.NotNil(t, response.Page.Content["featured_project_one"])
}

func TestServeNestedPageBreadcrumbs(t *testing.T) {
	router := newTestRouter(t)

	response := decodePage(t, get(router, "/en/projects/story-one/", nil))

	require.Len(t, response.Breadcrumbs, 3)
	assert.Equal(t, "Home - English", response.Breadcrumbs[0].Title)
	assert.Equal(t, "/en/", response.Breadcrumbs[0].URL)
	assert.Equal(t, "/en/projects/", response.Breadcrumbs[1].URL)
	assert.Equal(t, "story.one", response.Breadcrumbs[2].Title)
	assert.Equal(t, "/en/projects/story-one/", response.Breadcrumbs[2].URL)

	require.Len(t, response.MainMenu, 4)
	assert.Len(t, response.MainMenu[1].Children, 5)
	assert.Empty(t, response.MainMenu[0].Children)
}

func TestServeNotFound(t *testing.T) {
	router := newTestRouter(t)

	tests := []string{
		"/de/does-not-exist/",
		"/fr/",
		// team member pages are created offline
		"/de/team/thomas-kremmel/",
	}
	for _, target := range tests {
		rec := get(router, target, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}
}

func TestMenuHandlerGet(t *testing.T) {
	router := newTestRouter(t)

	rec := get(router, "/api/menus/main_menu?lang=en", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response struct {
		Menu     string `json:"menu"`
		Language string `json:"language"`
		Items    []struct {
			Text string `json:"text"`
			URL  string `json:"url"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))

	assert.Equal(t, "main_menu_en", response.Menu)
	assert.Equal(t, "en", response.Language)
	require.Len(t, response.Items, 4)
	assert.Equal(t, "Services", response.Items[0].Text)
	assert.Equal(t, "/en/services/", response.Items[0].URL)

	rec = get(router, "/api/menus/sidebar", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}
