package seed

import (
	"errors"
	"fmt"
	"sort"

	"codista-cms/internal/models"
	"codista-cms/internal/service"
	"codista-cms/pkg/logger"
	"codista-cms/pkg/validator"
)

// ErrPagesExist is returned when the tree already holds pages besides the
// root. Seeding never touches existing content.
var ErrPagesExist = errors.New("pages exist, aborting")

const (
	redirectionPageTitle = "codista.com"
	redirectionPageSlug  = "root"
)

// Content types that are created but kept offline.
var unpublishedContentTypes = []string{models.ContentTypeTeamMember}

// Rich text fields, either plain HTML strings or stream blocks.
var (
	richTextFields = map[string]bool{"about": true}
	streamFields   = map[string]bool{"body": true}
)

// pageIndex maps definition key and language to the created page.
type pageIndex map[string]map[string]*models.Page

func (idx pageIndex) get(key, language string) *models.Page {
	return idx[key][language]
}

func (idx pageIndex) put(key, language string, page *models.Page) {
	if idx[key] == nil {
		idx[key] = make(map[string]*models.Page)
	}
	idx[key][language] = page
}

// PageTree creates the initial bilingual page tree, links the translations
// and builds the menus of the default site.
type PageTree struct {
	pages     *service.PageService
	sites     *service.SiteService
	images    *service.ImageService
	menus     *service.MenuService
	languages []string
}

func NewPageTree(
	pages *service.PageService,
	sites *service.SiteService,
	images *service.ImageService,
	menus *service.MenuService,
	primary, secondary string,
) *PageTree {
	return &PageTree{
		pages:     pages,
		sites:     sites,
		images:    images,
		menus:     menus,
		languages: []string{primary, secondary},
	}
}

func (t *PageTree) Run() error {
	count, err := t.pages.Count()
	if err != nil {
		return fmt.Errorf("failed to count pages: %w", err)
	}
	// migrations create the tree root
	if count > 1 {
		return ErrPagesExist
	}

	definitions, err := LoadPageDefinitions()
	if err != nil {
		return err
	}
	menuDefinitions, err := LoadMenuDefinitions()
	if err != nil {
		return err
	}

	root, err := t.pages.Root()
	if err != nil {
		return err
	}
	redirect, err := t.pages.AddChild(root, models.CreatePageRequest{
		Title:       redirectionPageTitle,
		Slug:        redirectionPageSlug,
		ContentType: models.ContentTypeLanguageRedirection,
		Live:        true,
		ShowInMenus: true,
	})
	if err != nil {
		return err
	}

	site, err := t.sites.EnsureDefaultSite(redirect)
	if err != nil {
		return err
	}

	if err := t.createPages(redirect, definitions); err != nil {
		return err
	}
	pages, err := t.newLocator(redirect, definitions)
	if err != nil {
		return err
	}
	if err := t.resolveReferences(definitions, pages); err != nil {
		return err
	}

	for _, contentType := range unpublishedContentTypes {
		affected, err := t.pages.SetLiveByType(contentType, false)
		if err != nil {
			return err
		}
		logger.Info("Pages unpublished", map[string]interface{}{
			"content_type": contentType,
			"count":        affected,
		})
	}

	if err := t.ensureMenus(site.ID, menuDefinitions, pages); err != nil {
		return err
	}

	t.pages.InvalidateCache()

	total, err := t.pages.Count()
	if err != nil {
		return err
	}
	logger.Info("Page Tree successfully created.", map[string]interface{}{"pages": total})
	return nil
}

func (t *PageTree) createPages(redirect *models.Page, definitions []PageDefinition) error {
	created := make(pageIndex, len(definitions))

	for _, definition := range definitions {
		for _, language := range t.languages {
			translation, ok := definition.Translations[language]
			if !ok {
				continue
			}

			parent := redirect
			if definition.Parent != "" {
				parent = created.get(definition.Parent, language)
				if parent == nil {
					return fmt.Errorf("page %q: parent %q has no %s page", definition.Key, definition.Parent, language)
				}
			}

			fields := sanitizeFields(translation.Fields)
			if definition.ContentType == models.ContentTypeHome {
				fields["language"] = language
			}

			page, err := t.pages.AddChild(parent, models.CreatePageRequest{
				Title:       translation.Title,
				Slug:        translation.Slug,
				ContentType: definition.ContentType,
				Live:        definition.isLive(),
				ShowInMenus: definition.ShowInMenus,
				Fields:      fields,
			})
			if err != nil {
				return fmt.Errorf("page %q (%s): %w", definition.Key, language, err)
			}
			created.put(definition.Key, language, page)
		}

		primary := created.get(definition.Key, t.languages[0])
		secondary := created.get(definition.Key, t.languages[1])
		if primary != nil && secondary != nil {
			if err := t.pages.Link(primary, secondary); err != nil {
				return err
			}
		}

		logger.Debug("Seeded page", map[string]interface{}{
			"key":          definition.Key,
			"content_type": definition.ContentType,
		})
	}

	return nil
}

// locator finds seeded pages below the home page of their language. Content
// types seeded once per language are looked up by type alone, the others by
// slug.
type locator struct {
	pages       *service.PageService
	homes       map[string]*models.Page
	definitions map[string]PageDefinition
	typeCount   map[string]int
}

func (t *PageTree) newLocator(redirect *models.Page, definitions []PageDefinition) (*locator, error) {
	loc := &locator{
		pages:       t.pages,
		homes:       make(map[string]*models.Page, len(t.languages)),
		definitions: make(map[string]PageDefinition, len(definitions)),
		typeCount:   make(map[string]int),
	}
	for _, definition := range definitions {
		loc.definitions[definition.Key] = definition
		loc.typeCount[definition.ContentType]++
	}

	for _, language := range t.languages {
		home, err := t.pages.Descendant(redirect, models.ContentTypeHome, language)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s home page: %w", language, err)
		}
		if home == nil {
			return nil, fmt.Errorf("no home page with slug %q was seeded", language)
		}
		loc.homes[language] = home
	}
	return loc, nil
}

// find returns nil without error when the definition has no translation in
// language.
func (l *locator) find(key, language string) (*models.Page, error) {
	definition, ok := l.definitions[key]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", key)
	}
	home := l.homes[language]
	if definition.ContentType == models.ContentTypeHome {
		return home, nil
	}
	translation, ok := definition.Translations[language]
	if !ok {
		return nil, nil
	}

	slug := ""
	if l.typeCount[definition.ContentType] > 1 {
		slug = translation.Slug
	}
	return l.pages.Descendant(home, definition.ContentType, slug)
}

// resolveReferences fills page and image reference fields once every page
// exists.
func (t *PageTree) resolveReferences(definitions []PageDefinition, pages *locator) error {
	for _, definition := range definitions {
		if len(definition.Refs) == 0 && len(definition.Images) == 0 {
			continue
		}

		for _, language := range t.languages {
			page, err := pages.find(definition.Key, language)
			if err != nil {
				return err
			}
			if page == nil {
				continue
			}

			updates := models.JSONMap{}
			for _, field := range sortedKeys(definition.Refs) {
				target, err := pages.find(definition.Refs[field], language)
				if err != nil {
					return fmt.Errorf("page %q (%s): %w", definition.Key, language, err)
				}
				if target == nil {
					return fmt.Errorf("page %q (%s): %s refers to %q which has no %s page",
						definition.Key, language, field, definition.Refs[field], language)
				}
				updates[field] = target.ID
			}

			for _, field := range sortedKeys(definition.Images) {
				image, err := t.importImage(definition.Images[field])
				if err != nil {
					return fmt.Errorf("page %q (%s): %w", definition.Key, language, err)
				}
				if image != nil {
					updates[field] = image.ID
				}
			}

			if err := t.pages.SetFields(page, updates); err != nil {
				return err
			}
		}
	}
	return nil
}

// importImage returns nil without error when the fixture file is missing.
func (t *PageTree) importImage(name string) (*models.Image, error) {
	if t.images == nil {
		logger.Warn("Image import is not configured, skipping fixture", map[string]interface{}{"image": name})
		return nil, nil
	}

	image, err := t.images.ImportFixture(name)
	if err != nil {
		if errors.Is(err, service.ErrFixtureNotFound) {
			logger.Warn("Fixture image not found, skipping", map[string]interface{}{"image": name})
			return nil, nil
		}
		return nil, err
	}
	return image, nil
}

func (t *PageTree) ensureMenus(siteID uint, definitions []MenuDefinition, pages *locator) error {
	for _, definition := range definitions {
		for _, language := range t.languages {
			handle := service.MenuHandle(definition.Name, language)
			menu, isNew, err := t.menus.GetOrCreate(siteID, handle, handle)
			if err != nil {
				return fmt.Errorf("menu %s: %w", handle, err)
			}

			reqs := make([]models.CreateMenuItemRequest, 0, len(definition.Items))
			for _, item := range definition.Items {
				text := item.LinkText[language]
				if text == "" {
					continue
				}

				req := models.CreateMenuItemRequest{
					LinkText:    text,
					LinkURL:     item.URL,
					SortOrder:   item.SortOrder,
					AllowSubnav: item.AllowSubnav,
				}
				if item.Page != "" {
					page, err := pages.find(item.Page, language)
					if err != nil {
						return fmt.Errorf("menu %s: %w", handle, err)
					}
					if page == nil {
						return fmt.Errorf("menu %s: item %q links to %q which has no %s page", handle, text, item.Page, language)
					}
					pageID := page.ID
					req.LinkPageID = &pageID
				}
				reqs = append(reqs, req)
			}

			added, err := t.menus.AddItemsIfEmpty(menu, reqs)
			if err != nil {
				return fmt.Errorf("menu %s: %w", handle, err)
			}

			logger.Info("Menu ensured", map[string]interface{}{
				"handle":  handle,
				"created": isNew,
				"items":   added,
			})
		}
	}
	return nil
}

func sanitizeFields(fields models.JSONMap) models.JSONMap {
	sanitized := fields.Clone()
	for key, value := range sanitized {
		switch {
		case richTextFields[key]:
			if html, ok := value.(string); ok {
				sanitized[key] = validator.SanitizeHTML(html)
			}
		case streamFields[key]:
			if blocks, ok := value.([]interface{}); ok {
				sanitized[key] = sanitizeBlocks(blocks)
			}
		}
	}
	return sanitized
}

func sanitizeBlocks(blocks []interface{}) []interface{} {
	cleaned := make([]interface{}, 0, len(blocks))
	for _, block := range blocks {
		fields, ok := block.(map[string]interface{})
		if !ok {
			continue
		}
		copied := make(map[string]interface{}, len(fields))
		for key, value := range fields {
			copied[key] = value
		}
		if html, ok := copied["value"].(string); ok {
			copied["value"] = validator.SanitizeHTML(html)
		}
		cleaned = append(cleaned, copied)
	}
	return cleaned
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
