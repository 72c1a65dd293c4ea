package service

import (
	"testing"

	"codista-cms/internal/models"
	"codista-cms/internal/repository"
	"codista-cms/internal/testutil"
)

func intPtr(value int) *int {
	return &value
}

type menuFixture struct {
	svc   *MenuService
	pages *PageService
	site  *models.Site
	home  *models.Page
}

func newMenuFixture(t *testing.T) *menuFixture {
	t.Helper()
	db := testutil.NewDB(t)
	pageRepo := repository.NewPageRepository(db)
	pages := NewPageService(pageRepo, nil)
	sites := NewSiteService(repository.NewSiteRepository(db))

	root, _ := pages.Root()
	home := mustAddChild(t, pages, root, models.CreatePageRequest{Title: "de", ContentType: models.ContentTypeHome, Live: true})
	site, err := sites.Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}

	return &menuFixture{
		svc:   NewMenuService(repository.NewMenuRepository(db), pageRepo, sites),
		pages: pages,
		site:  site,
		home:  home,
	}
}

func TestMenuHandle(t *testing.T) {
	if got := MenuHandle(" Main_Menu ", "DE"); got != "main_menu_de" {
		t.Fatalf("expected main_menu_de, got %q", got)
	}
	if got := MenuHandle("footer", "en"); got != "footer_en" {
		t.Fatalf("expected footer_en, got %q", got)
	}
}

func TestMenuService_GetOrCreate(t *testing.T) {
	f := newMenuFixture(t)

	menu, created, err := f.svc.GetOrCreate(f.site.ID, "Footer_DE", "")
	if err != nil || !created {
		t.Fatalf("expected menu to be created, got %v (%v)", created, err)
	}
	if menu.Handle != "footer_de" || menu.Title != "footer_de" {
		t.Fatalf("unexpected menu %q / %q", menu.Handle, menu.Title)
	}

	again, created, err := f.svc.GetOrCreate(f.site.ID, "footer_de", "Footer")
	if err != nil || created || again.ID != menu.ID {
		t.Fatalf("expected existing menu %d, got %+v created=%v (%v)", menu.ID, again, created, err)
	}

	if _, _, err := f.svc.GetOrCreate(f.site.ID, " ", ""); err == nil {
		t.Fatalf("expected error for blank handle")
	}
}

func TestMenuService_AddItemsIfEmpty(t *testing.T) {
	f := newMenuFixture(t)
	services := mustAddChild(t, f.pages, f.home, models.CreatePageRequest{Title: "Leistungen", Live: true})
	contact := mustAddChild(t, f.pages, f.home, models.CreatePageRequest{Title: "Kontakt", Live: true})
	menu, _, _ := f.svc.GetOrCreate(f.site.ID, "main_menu_de", "")

	added, err := f.svc.AddItemsIfEmpty(menu, []models.CreateMenuItemRequest{
		{LinkText: "Kontakt", LinkPageID: &contact.ID, SortOrder: intPtr(5)},
		{LinkText: "Leistungen", LinkPageID: &services.ID, SortOrder: intPtr(1)},
		{LinkText: " Blog ", LinkURL: "https://blog.codista.com"},
	})
	if err != nil {
		t.Fatalf("AddItemsIfEmpty returned error: %v", err)
	}
	if added != 3 {
		t.Fatalf("expected 3 items, got %d", added)
	}

	added, err = f.svc.AddItemsIfEmpty(menu, []models.CreateMenuItemRequest{{LinkText: "Team", LinkURL: "/team/"}})
	if err != nil || added != 0 {
		t.Fatalf("expected filled menu to be left alone, got %d (%v)", added, err)
	}

	items, err := f.svc.Render(f.site.ID, "main_menu_de")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 rendered items, got %d", len(items))
	}
	want := []models.RenderedMenuItem{
		{Text: "Leistungen", URL: "/de/leistungen/"},
		{Text: "Kontakt", URL: "/de/kontakt/"},
		{Text: "Blog", URL: "https://blog.codista.com"},
	}
	for i := range want {
		if items[i].Text != want[i].Text || items[i].URL != want[i].URL || items[i].Children != nil {
			t.Fatalf("item %d: expected %+v, got %+v", i, want[i], items[i])
		}
	}
}

func TestMenuService_AddItemsValidates(t *testing.T) {
	f := newMenuFixture(t)
	menu, _, _ := f.svc.GetOrCreate(f.site.ID, "footer_de", "")

	if _, err := f.svc.AddItemsIfEmpty(menu, []models.CreateMenuItemRequest{{LinkText: "  ", LinkURL: "/x/"}}); err == nil {
		t.Fatalf("expected error for blank link text")
	}
	if _, err := f.svc.AddItemsIfEmpty(menu, []models.CreateMenuItemRequest{{LinkText: "AGB"}}); err == nil {
		t.Fatalf("expected error for item without target")
	}
	if _, err := f.svc.AddItemsIfEmpty(&models.Menu{}, nil); err == nil {
		t.Fatalf("expected error for unsaved menu")
	}
}

func TestMenuService_RenderSkipsOfflinePages(t *testing.T) {
	f := newMenuFixture(t)
	team := mustAddChild(t, f.pages, f.home, models.CreatePageRequest{Title: "Team", Live: true})
	member := mustAddChild(t, f.pages, team, models.CreatePageRequest{Title: "Bernhard", ContentType: models.ContentTypeTeamMember})
	missing := uint(4242)
	menu, _, _ := f.svc.GetOrCreate(f.site.ID, "main_menu_de", "")

	if _, err := f.svc.AddItemsIfEmpty(menu, []models.CreateMenuItemRequest{
		{LinkText: "Team", LinkPageID: &team.ID},
		{LinkText: "Bernhard", LinkPageID: &member.ID},
		{LinkText: "Gone", LinkPageID: &missing},
	}); err != nil {
		t.Fatalf("AddItemsIfEmpty returned error: %v", err)
	}

	items, err := f.svc.Render(f.site.ID, "main_menu_de")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if len(items) != 1 || items[0].URL != "/de/team/" {
		t.Fatalf("expected only the team page, got %+v", items)
	}

	empty, err := f.svc.Render(f.site.ID, "main_menu_fr")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected unknown menu to render empty, got %+v (%v)", empty, err)
	}
}

func TestMenuService_RenderSubnav(t *testing.T) {
	f := newMenuFixture(t)
	projects := mustAddChild(t, f.pages, f.home, models.CreatePageRequest{Title: "Projekte", Live: true, ShowInMenus: true})
	mustAddChild(t, f.pages, projects, models.CreatePageRequest{Title: "story.one", Live: true, ShowInMenus: true})
	mustAddChild(t, f.pages, projects, models.CreatePageRequest{Title: "Hidden", Live: true})
	mustAddChild(t, f.pages, projects, models.CreatePageRequest{Title: "Draft", ShowInMenus: true})
	contact := mustAddChild(t, f.pages, f.home, models.CreatePageRequest{Title: "Kontakt", Live: true})
	mustAddChild(t, f.pages, contact, models.CreatePageRequest{Title: "Anfahrt", Live: true, ShowInMenus: true})
	menu, _, _ := f.svc.GetOrCreate(f.site.ID, "main_menu_de", "")

	if _, err := f.svc.AddItemsIfEmpty(menu, []models.CreateMenuItemRequest{
		{LinkText: "Projekte", LinkPageID: &projects.ID, AllowSubnav: true},
		{LinkText: "Kontakt", LinkPageID: &contact.ID},
	}); err != nil {
		t.Fatalf("AddItemsIfEmpty returned error: %v", err)
	}

	items, err := f.svc.Render(f.site.ID, "main_menu_de")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %+v", items)
	}
	if len(items[0].Children) != 1 {
		t.Fatalf("expected one subnav entry, got %+v", items[0].Children)
	}
	if got := items[0].Children[0]; got.Text != "story.one" || got.URL != "/de/projekte/story-one/" {
		t.Fatalf("unexpected subnav entry %+v", got)
	}
	if items[1].Children != nil {
		t.Fatalf("expected no subnav without allow_subnav, got %+v", items[1].Children)
	}
}
