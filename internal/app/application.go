package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"codista-cms/internal/background"
	"codista-cms/internal/config"
	"codista-cms/internal/database"
	"codista-cms/internal/handlers"
	"codista-cms/internal/middleware"
	"codista-cms/internal/repository"
	"codista-cms/internal/seed"
	"codista-cms/internal/service"
	"codista-cms/internal/translation"
	"codista-cms/pkg/cache"
	"codista-cms/pkg/logger"
)

type Application struct {
	cfg *config.Config

	db    *gorm.DB
	cache *cache.Cache

	repositories repositoryContainer
	services     serviceContainer
	handlers     handlerContainer

	resolver    *translation.Resolver
	jobs        *background.Runner
	rateLimiter *middleware.RateLimitManager
	router      *gin.Engine
	server      *http.Server
}

type repositoryContainer struct {
	Page  repository.PageRepository
	Site  repository.SiteRepository
	Image repository.ImageRepository
	User  repository.UserRepository
	Menu  repository.MenuRepository
}

type serviceContainer struct {
	Page  *service.PageService
	Site  *service.SiteService
	Image *service.ImageService
	User  *service.UserService
	Menu  *service.MenuService
}

type handlerContainer struct {
	Page *handlers.PageHandler
	Menu *handlers.MenuHandler
}

// New connects to the configured database and cache and wires repositories,
// services and the translation resolver. The schema is not touched; call
// Migrate for that.
func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}

	app, err := NewWithDB(cfg, db)
	if err != nil {
		database.Close(db)
		return nil, err
	}
	return app, nil
}

// NewWithDB wires the application on an already opened database.
func NewWithDB(cfg *config.Config, db *gorm.DB) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	app := &Application{
		cfg: cfg,
		db:  db,
	}

	if err := app.initCache(); err != nil {
		return nil, err
	}
	app.initRepositories()
	app.initServices()

	resolver, err := translation.NewResolver(
		app.repositories.Page,
		app.services.Site,
		cfg.PrimaryLanguage,
		cfg.SecondaryLanguage,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize translation resolver: %w", err)
	}
	app.resolver = resolver

	return app, nil
}

func (a *Application) Config() *config.Config {
	return a.cfg
}

func (a *Application) Resolver() *translation.Resolver {
	return a.resolver
}

func (a *Application) Router() *gin.Engine {
	return a.router
}

func (a *Application) initCache() error {
	c, err := cache.NewCache(a.cfg.RedisURL, a.cfg.EnableRedis)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	a.cache = c
	return nil
}

func (a *Application) initRepositories() {
	a.repositories = repositoryContainer{
		Page:  repository.NewPageRepository(a.db),
		Site:  repository.NewSiteRepository(a.db),
		Image: repository.NewImageRepository(a.db),
		User:  repository.NewUserRepository(a.db),
		Menu:  repository.NewMenuRepository(a.db),
	}
}

func (a *Application) initServices() {
	site := service.NewSiteService(a.repositories.Site)

	a.services = serviceContainer{
		Page:  service.NewPageService(a.repositories.Page, a.cache),
		Site:  site,
		Image: service.NewImageService(a.repositories.Image, a.cfg.UploadDir, filepath.Join(a.cfg.FixturesDir, "img")),
		User:  service.NewUserService(a.repositories.User),
		Menu:  service.NewMenuService(a.repositories.Menu, a.repositories.Page, site),
	}
}

func (a *Application) initHandlers() {
	a.handlers = handlerContainer{
		Page: handlers.NewPageHandler(a.services.Page, a.services.Site, a.services.Menu, a.resolver),
		Menu: handlers.NewMenuHandler(a.services.Menu, a.services.Site),
	}
}

// Migrate creates the schema, the tree root and the default site.
func (a *Application) Migrate() error {
	return database.Migrate(a.db)
}

// CreateUsers ensures the inactive admin account and the project superusers.
func (a *Application) CreateUsers() error {
	return seed.EnsureProjectUsers(a.services.User, a.cfg.IsDevelopment())
}

// Setup points the default site at the domain of the configured environment
// and creates the project users.
func (a *Application) Setup() error {
	if _, err := a.services.Site.SetDomain(service.DomainFor(a.cfg.Environment)); err != nil {
		return fmt.Errorf("failed to set site domain: %w", err)
	}
	return a.CreateUsers()
}

// SetupPageTree seeds the bilingual page tree and its menus.
func (a *Application) SetupPageTree() error {
	tree := seed.NewPageTree(
		a.services.Page,
		a.services.Site,
		a.services.Image,
		a.services.Menu,
		a.resolver.Primary(),
		a.resolver.Secondary(),
	)
	return tree.Run()
}

// ValidateTree checks every translatable page for structural problems. All
// queries run under ctx.
func (a *Application) ValidateTree(ctx context.Context) error {
	pages, err := a.services.Page.ListFromDepth(ctx, translation.LanguageHomeDepth)
	if err != nil {
		return fmt.Errorf("failed to load pages: %w", err)
	}
	resolver := a.resolver.WithStore(a.repositories.Page.WithContext(ctx))
	if err := resolver.Validate(pages); err != nil {
		return err
	}

	logger.Info("Page tree validated", map[string]interface{}{"pages": len(pages)})
	return nil
}

// Prepare validates the page tree and builds the HTTP server. ctx bounds the
// lifetime of background helpers such as the rate limiter cleanup.
func (a *Application) Prepare(ctx context.Context) error {
	if err := a.ValidateTree(ctx); err != nil {
		return fmt.Errorf("page tree is inconsistent: %w", err)
	}

	if err := a.initJobs(ctx); err != nil {
		return err
	}
	a.initHandlers()
	a.initRouter(ctx)

	a.server = &http.Server{
		Addr:           ":" + a.cfg.Port,
		Handler:        a.router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	return nil
}

func (a *Application) Run() error {
	if a.server == nil {
		return errors.New("server is not prepared")
	}

	logger.Info("Server starting", map[string]interface{}{
		"port":        a.cfg.Port,
		"environment": a.cfg.Environment,
	})

	return a.server.ListenAndServe()
}

func (a *Application) Shutdown(ctx context.Context) error {
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			return err
		}
	}

	if a.jobs != nil {
		if err := a.jobs.Shutdown(ctx); err != nil {
			logger.Error(err, "Failed to stop background jobs", nil)
		}
	}

	if a.rateLimiter != nil {
		_ = a.rateLimiter.Shutdown()
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Error(err, "Failed to close cache connection", nil)
		}
	}

	database.Close(a.db)
	return nil
}

// initJobs schedules the periodic page tree validation.
func (a *Application) initJobs(ctx context.Context) error {
	if a.cfg.TreeCheckInterval <= 0 {
		return nil
	}

	a.jobs = background.NewRunner()
	err := a.jobs.Add(background.Job{
		Name:     "validate_page_tree",
		Interval: time.Duration(a.cfg.TreeCheckInterval) * time.Minute,
		Timeout:  time.Minute,
		Run:      a.ValidateTree,
	})
	if err != nil {
		return fmt.Errorf("failed to register page tree check: %w", err)
	}

	a.jobs.Start(ctx)
	return nil
}

func (a *Application) initRouter(ctx context.Context) {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	a.rateLimiter = middleware.NewRateLimitManager(ctx)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LanguageNegotiationMiddleware(a.resolver))
	router.Use(logger.GinLogger())
	router.Use(middleware.SecurityHeadersMiddleware())
	if a.cfg.EnableMetrics {
		router.Use(middleware.MetricsMiddleware())
	}
	router.Use(middleware.RateLimitMiddleware(a.cfg, a.rateLimiter))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept-Language"},
		ExposeHeaders:    []string{"Content-Length", "Content-Language"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", a.health)
	if a.cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	router.Static("/uploads", a.cfg.UploadDir)

	api := router.Group("/api")
	{
		api.GET("/menus/:name", a.handlers.Menu.Get)
	}

	router.GET("/", a.handlers.Page.RedirectToLanguage)
	router.NoRoute(a.handlers.Page.Serve)

	a.router = router
}

func (a *Application) health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	}

	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		logger.Error(err, "Database health check failed", nil)
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
	}

	c.JSON(status, body)
}
