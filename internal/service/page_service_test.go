package service

import (
	"errors"
	"testing"

	"codista-cms/internal/models"
	"codista-cms/internal/repository"
	"codista-cms/internal/testutil"
)

func newTestPageService(t *testing.T) (*PageService, repository.PageRepository) {
	t.Helper()
	repo := repository.NewPageRepository(testutil.NewDB(t))
	return NewPageService(repo, nil), repo
}

func mustAddChild(t *testing.T, svc *PageService, parent *models.Page, req models.CreatePageRequest) *models.Page {
	t.Helper()
	if req.ContentType == "" {
		req.ContentType = models.ContentTypeDefault
	}
	page, err := svc.AddChild(parent, req)
	if err != nil {
		t.Fatalf("AddChild(%q) returned error: %v", req.Title, err)
	}
	return page
}

func TestPageService_AddChildDerivesSlug(t *testing.T) {
	svc, _ := newTestPageService(t)
	root, err := svc.Root()
	if err != nil {
		t.Fatalf("Root returned error: %v", err)
	}

	page := mustAddChild(t, svc, root, models.CreatePageRequest{Title: "  Über uns  ", Live: true})

	if page.Slug != "ueber-uns" {
		t.Fatalf("expected slug ueber-uns, got %q", page.Slug)
	}
	if page.Title != "Über uns" || page.DraftTitle != "Über uns" {
		t.Fatalf("expected trimmed titles, got %q / %q", page.Title, page.DraftTitle)
	}
	if page.URLPath != "/ueber-uns/" {
		t.Fatalf("unexpected url path %q", page.URLPath)
	}
	if page.Depth != 2 {
		t.Fatalf("expected depth 2, got %d", page.Depth)
	}
}

func TestPageService_AddChildValidates(t *testing.T) {
	svc, _ := newTestPageService(t)
	root, _ := svc.Root()

	if _, err := svc.AddChild(nil, models.CreatePageRequest{Title: "x", ContentType: models.ContentTypeDefault}); err == nil {
		t.Fatalf("expected error without parent")
	}
	if _, err := svc.AddChild(root, models.CreatePageRequest{Title: "   ", ContentType: models.ContentTypeDefault}); err == nil {
		t.Fatalf("expected error for blank title")
	}
	if _, err := svc.AddChild(root, models.CreatePageRequest{Title: "Blog", ContentType: "blog_page"}); err == nil {
		t.Fatalf("expected error for unknown content type")
	}

	mustAddChild(t, svc, root, models.CreatePageRequest{Title: "Team", Slug: "team"})
	_, err := svc.AddChild(root, models.CreatePageRequest{Title: "Das Team", Slug: "team", ContentType: models.ContentTypeDefault})
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestPageService_SameSlugUnderDifferentParents(t *testing.T) {
	svc, _ := newTestPageService(t)
	root, _ := svc.Root()

	de := mustAddChild(t, svc, root, models.CreatePageRequest{Title: "de", ContentType: models.ContentTypeHome})
	en := mustAddChild(t, svc, root, models.CreatePageRequest{Title: "en", ContentType: models.ContentTypeHome})

	teamDE := mustAddChild(t, svc, de, models.CreatePageRequest{Title: "Team"})
	teamEN := mustAddChild(t, svc, en, models.CreatePageRequest{Title: "Team"})

	if teamDE.URLPath != "/de/team/" || teamEN.URLPath != "/en/team/" {
		t.Fatalf("unexpected url paths %q and %q", teamDE.URLPath, teamEN.URLPath)
	}
}

func TestPageService_Link(t *testing.T) {
	svc, repo := newTestPageService(t)
	root, _ := svc.Root()

	de := mustAddChild(t, svc, root, models.CreatePageRequest{Title: "Kontakt"})
	en := mustAddChild(t, svc, root, models.CreatePageRequest{Title: "Contact"})

	if err := svc.Link(de, de); err == nil {
		t.Fatalf("expected error when linking a page to itself")
	}
	if err := svc.Link(de, en); err != nil {
		t.Fatalf("Link returned error: %v", err)
	}

	stored, err := repo.GetByID(de.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if stored.LanguageLinkID == nil || *stored.LanguageLinkID != en.ID {
		t.Fatalf("expected link to %d, got %v", en.ID, stored.LanguageLinkID)
	}

	linked, err := repo.FindByLanguageLink(en.ID)
	if err != nil {
		t.Fatalf("FindByLanguageLink returned error: %v", err)
	}
	if len(linked) != 1 || linked[0].ID != de.ID {
		t.Fatalf("expected reverse lookup to find %d, got %+v", de.ID, linked)
	}
}

func TestPageService_SetFieldsMerges(t *testing.T) {
	svc, _ := newTestPageService(t)
	root, _ := svc.Root()

	page := mustAddChild(t, svc, root, models.CreatePageRequest{
		Title:       "Team",
		ContentType: models.ContentTypeTeamMemberIndex,
		Fields:      models.JSONMap{"hero_title": "Unser Team"},
	})

	if err := svc.SetFields(page, models.JSONMap{"team_member_one": uint(7)}); err != nil {
		t.Fatalf("SetFields returned error: %v", err)
	}

	stored, err := svc.GetByID(page.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	specific, err := models.Specific(stored)
	if err != nil {
		t.Fatalf("Specific returned error: %v", err)
	}
	content := specific.Content.(*models.TeamMemberIndexPage)
	if content.HeroTitle != "Unser Team" {
		t.Fatalf("expected hero title kept, got %q", content.HeroTitle)
	}
	if content.TeamMemberOne == nil || *content.TeamMemberOne != 7 {
		t.Fatalf("expected team member one to be 7, got %v", content.TeamMemberOne)
	}
}

func TestPageService_Lookups(t *testing.T) {
	svc, _ := newTestPageService(t)
	root, _ := svc.Root()

	de := mustAddChild(t, svc, root, models.CreatePageRequest{Title: "de", ContentType: models.ContentTypeHome})
	team := mustAddChild(t, svc, de, models.CreatePageRequest{Title: "Team", ContentType: models.ContentTypeTeamMemberIndex})
	member := mustAddChild(t, svc, team, models.CreatePageRequest{Title: "Luis Nell", ContentType: models.ContentTypeTeamMember})

	if _, err := svc.GetByURLPath("/de/nope/"); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
	if _, err := svc.GetByID(9999); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}

	found, err := svc.GetByURLPath("/de/team/luis-nell/")
	if err != nil || found.ID != member.ID {
		t.Fatalf("expected member %d, got %+v (%v)", member.ID, found, err)
	}

	child, err := svc.ChildBySlug(de, "team")
	if err != nil || child == nil || child.ID != team.ID {
		t.Fatalf("expected team child, got %+v (%v)", child, err)
	}
	missing, err := svc.ChildBySlug(de, "kontakt")
	if err != nil || missing != nil {
		t.Fatalf("expected nil without error, got %+v (%v)", missing, err)
	}

	first, err := svc.Descendant(de, models.ContentTypeTeamMember, "")
	if err != nil || first == nil || first.ID != member.ID {
		t.Fatalf("expected first team member, got %+v (%v)", first, err)
	}
	bySlug, err := svc.Descendant(de, models.ContentTypeTeamMember, "luis-nell")
	if err != nil || bySlug == nil || bySlug.ID != member.ID {
		t.Fatalf("expected team member by slug, got %+v (%v)", bySlug, err)
	}
	none, err := svc.Descendant(de, models.ContentTypeProject, "")
	if err != nil || none != nil {
		t.Fatalf("expected no project, got %+v (%v)", none, err)
	}
}

func TestPageService_SetLiveByType(t *testing.T) {
	svc, _ := newTestPageService(t)
	root, _ := svc.Root()

	mustAddChild(t, svc, root, models.CreatePageRequest{Title: "Tom", ContentType: models.ContentTypeTeamMember, Live: true})
	mustAddChild(t, svc, root, models.CreatePageRequest{Title: "Max", ContentType: models.ContentTypeTeamMember, Live: true})
	contact := mustAddChild(t, svc, root, models.CreatePageRequest{Title: "Kontakt", ContentType: models.ContentTypeContact, Live: true})

	affected, err := svc.SetLiveByType(models.ContentTypeTeamMember, false)
	if err != nil {
		t.Fatalf("SetLiveByType returned error: %v", err)
	}
	if affected != 2 {
		t.Fatalf("expected 2 pages updated, got %d", affected)
	}

	stored, _ := svc.GetByID(contact.ID)
	if !stored.Live {
		t.Fatalf("expected contact page to stay live")
	}
}
