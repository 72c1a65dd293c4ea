package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"codista-cms/internal/config"
	"codista-cms/internal/models"
	"codista-cms/internal/repository"
	"codista-cms/pkg/logger"
)

var (
	ErrSiteNotFound    = errors.New("default site not found")
	ErrPageOutsideSite = errors.New("page is not part of the default site")
)

// Domain is the public host of the site in one environment.
type Domain struct {
	Hostname string
	Name     string
}

// DomainFor returns the site domain used in the given environment.
func DomainFor(environment string) Domain {
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case config.EnvironmentDevelopment:
		return Domain{Hostname: "localhost:3000", Name: "localhost dev"}
	case config.EnvironmentStaging:
		return Domain{Hostname: "test.codista.com", Name: "test.codista.com"}
	default:
		return Domain{Hostname: "www.codista.com", Name: "www.codista.com"}
	}
}

type SiteService struct {
	siteRepo repository.SiteRepository
}

func NewSiteService(siteRepo repository.SiteRepository) *SiteService {
	return &SiteService{siteRepo: siteRepo}
}

func (s *SiteService) createDefault(root *models.Page) (*models.Site, error) {
	site := models.NewDefaultSite(root)
	if err := s.siteRepo.Create(site); err != nil {
		return nil, fmt.Errorf("failed to create default site: %w", err)
	}
	site.RootPage = root
	logger.Info("Default site created", map[string]interface{}{
		"hostname":     site.Hostname,
		"root_page_id": root.ID,
	})
	return site, nil
}

// EnsureSite returns the default site, creating it with root as root page
// when there is none yet.
func (s *SiteService) EnsureSite(root *models.Page) (*models.Site, error) {
	if root == nil || root.ID == 0 {
		return nil, errors.New("site root page must be persisted")
	}

	site, err := s.siteRepo.GetDefault()
	if err == nil {
		return site, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load default site: %w", err)
	}
	return s.createDefault(root)
}

// EnsureDefaultSite makes root the root page of the default site, creating
// the site when there is none yet.
func (s *SiteService) EnsureDefaultSite(root *models.Page) (*models.Site, error) {
	site, err := s.EnsureSite(root)
	if err != nil {
		return nil, err
	}

	if site.RootPageID != root.ID {
		site.RootPageID = root.ID
		site.RootPage = nil
		if err := s.siteRepo.Update(site); err != nil {
			return nil, fmt.Errorf("failed to update default site: %w", err)
		}
		logger.Info("Default site root changed", map[string]interface{}{
			"hostname":     site.Hostname,
			"root_page_id": root.ID,
		})
	}
	site.RootPage = root
	return site, nil
}

func (s *SiteService) Default() (*models.Site, error) {
	site, err := s.siteRepo.GetDefault()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}
	return site, nil
}

// SetDomain stores the hostname and name of the default site.
func (s *SiteService) SetDomain(domain Domain) (*models.Site, error) {
	site, err := s.Default()
	if err != nil {
		return nil, err
	}

	site.Hostname = domain.Hostname
	site.SiteName = domain.Name
	if err := s.siteRepo.Update(site); err != nil {
		return nil, fmt.Errorf("failed to update site domain: %w", err)
	}

	logger.Info("Site domain set", map[string]interface{}{
		"hostname":  site.Hostname,
		"site_name": site.SiteName,
	})
	return site, nil
}

// PageURL returns the path of page relative to the default site root, for
// example "/de/team/" for the tree path "/root/de/team/".
func (s *SiteService) PageURL(page *models.Page) (string, error) {
	if page == nil {
		return "", errors.New("page is required")
	}

	site, err := s.Default()
	if err != nil {
		return "", err
	}
	if site.RootPage == nil {
		return "", fmt.Errorf("%w: site %d has no root page", ErrSiteNotFound, site.ID)
	}

	return relativeURL(site.RootPage.URLPath, page)
}

func relativeURL(rootURLPath string, page *models.Page) (string, error) {
	if !strings.HasPrefix(page.URLPath, rootURLPath) {
		return "", fmt.Errorf("%w: %s", ErrPageOutsideSite, page.URLPath)
	}
	return "/" + strings.TrimPrefix(page.URLPath, rootURLPath), nil
}
