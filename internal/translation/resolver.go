// Package translation pairs every page of the bilingual tree with its
// counterpart in the other language.
//
// A page's language is the slug of its ancestor at LanguageHomeDepth. Only
// pages in the primary language store a link, pointing at their secondary
// language counterpart; the reverse direction is derived by querying the store
// for the page that links to a given page.
package translation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"codista-cms/internal/models"
	"codista-cms/pkg/lang"
	"codista-cms/pkg/logger"
)

// LanguageHomeDepth is the tree depth of the per-language home pages.
const LanguageHomeDepth = 3

var (
	// ErrMalformedTree reports a page without a language home ancestor, or one
	// whose home slug is not a configured language.
	ErrMalformedTree = errors.New("malformed page tree")
	// ErrAmbiguousLink reports several pages linking to the same translation.
	ErrAmbiguousLink = errors.New("ambiguous language link")
	// ErrInvalidLink reports a link stored on or pointing at the wrong language.
	ErrInvalidLink = errors.New("invalid language link")
)

// PageStore is the read access the resolver needs from the page tree.
type PageStore interface {
	GetByID(id uint) (*models.Page, error)
	AncestorAtDepth(page *models.Page, depth int) (*models.Page, error)
	FindByLanguageLink(targetID uint) ([]models.Page, error)
}

// URLBuilder computes the public URL of a page.
type URLBuilder interface {
	PageURL(page *models.Page) (string, error)
}

// Variant is one entry of a page's language switcher.
type Variant struct {
	Code     string               `json:"code"`
	Page     *models.SpecificPage `json:"-"`
	URL      string               `json:"url,omitempty"`
	IsActive bool                 `json:"is_active"`
	lang.Metadata
}

// Available reports whether the language has a page.
func (v Variant) Available() bool {
	return v.Page != nil
}

// Resolver finds the language variants of pages in a tree with one home page
// per language at LanguageHomeDepth. It holds no per-request state; use Scope
// to resolve pages.
type Resolver struct {
	store     PageStore
	urls      URLBuilder
	primary   string
	secondary string
	metadata  map[string]lang.Metadata
}

// NewResolver validates the language pair and requires display metadata for
// both codes. Codes are compared in lower case.
func NewResolver(store PageStore, urls URLBuilder, primary, secondary string) (*Resolver, error) {
	if store == nil {
		return nil, errors.New("page store is required")
	}
	if urls == nil {
		return nil, errors.New("url builder is required")
	}

	primary = strings.ToLower(strings.TrimSpace(primary))
	secondary = strings.ToLower(strings.TrimSpace(secondary))
	if primary == "" || secondary == "" {
		return nil, errors.New("primary and secondary language are required")
	}
	if primary == secondary {
		return nil, fmt.Errorf("primary and secondary language must differ, both are %q", primary)
	}

	metadata := make(map[string]lang.Metadata, 2)
	for _, code := range []string{primary, secondary} {
		meta, ok := lang.Lookup(code)
		if !ok {
			return nil, fmt.Errorf("no display metadata for language %q, known: %s", code, strings.Join(lang.Codes(), ", "))
		}
		metadata[code] = meta
	}

	return &Resolver{
		store:     store,
		urls:      urls,
		primary:   primary,
		secondary: secondary,
		metadata:  metadata,
	}, nil
}

// WithStore returns a copy of the resolver that reads from store, for example
// a store bound to a request context.
func (r *Resolver) WithStore(store PageStore) *Resolver {
	if store == nil {
		return r
	}
	copied := *r
	copied.store = store
	return &copied
}

// Primary is the language whose pages store the language links.
func (r *Resolver) Primary() string {
	return r.primary
}

// Secondary is the language the stored links point at.
func (r *Resolver) Secondary() string {
	return r.secondary
}

// Languages returns both language codes in ascending order.
func (r *Resolver) Languages() []string {
	codes := []string{r.primary, r.secondary}
	sort.Strings(codes)
	return codes
}

// Supports reports whether code is the primary or the secondary language.
func (r *Resolver) Supports(code string) bool {
	code = strings.ToLower(strings.TrimSpace(code))
	return code == r.primary || code == r.secondary
}

type lookup struct {
	page *models.SpecificPage
	err  error
}

// Scope memoises lookups for one request. A Scope is not safe for concurrent
// use.
type Scope struct {
	resolver *Resolver
	active   string

	languages map[uint]string
	primary   map[uint]lookup
	secondary map[uint]lookup
	variants  map[uint][]Variant
}

// Scope starts a lookup cache for one request. Variants of activeLanguage are
// marked active.
func (r *Resolver) Scope(activeLanguage string) *Scope {
	return &Scope{
		resolver:  r,
		active:    strings.ToLower(strings.TrimSpace(activeLanguage)),
		languages: make(map[uint]string),
		primary:   make(map[uint]lookup),
		secondary: make(map[uint]lookup),
		variants:  make(map[uint][]Variant),
	}
}

// ActiveLanguage is the language the scope was created for.
func (s *Scope) ActiveLanguage() string {
	return s.active
}

// Language returns the slug of the page's language home.
func (s *Scope) Language(page *models.Page) (string, error) {
	if page == nil {
		return "", fmt.Errorf("%w: nil page", ErrMalformedTree)
	}
	if code, ok := s.languages[page.ID]; ok {
		return code, nil
	}

	home, err := s.resolver.store.AncestorAtDepth(page, LanguageHomeDepth)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: page %d has no ancestor at depth %d", ErrMalformedTree, page.ID, LanguageHomeDepth)
		}
		return "", fmt.Errorf("failed to load language home of page %d: %w", page.ID, err)
	}
	if home == nil {
		return "", fmt.Errorf("%w: page %d has no ancestor at depth %d", ErrMalformedTree, page.ID, LanguageHomeDepth)
	}
	if !s.resolver.Supports(home.Slug) {
		return "", fmt.Errorf("%w: page %d lives under %q which is not a configured language", ErrMalformedTree, page.ID, home.Slug)
	}

	s.languages[page.ID] = home.Slug
	return home.Slug, nil
}

// PrimaryVariant returns the primary language version of page, the page itself
// when it is already in the primary language. It returns nil when no primary
// page links to it.
func (s *Scope) PrimaryVariant(page *models.Page) (*models.SpecificPage, error) {
	code, err := s.Language(page)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.primary[page.ID]; ok {
		return cached.page, cached.err
	}

	result, err := s.primaryVariant(page, code)
	s.primary[page.ID] = lookup{page: result, err: err}
	return result, err
}

func (s *Scope) primaryVariant(page *models.Page, code string) (*models.SpecificPage, error) {
	if code == s.resolver.primary {
		if page.LanguageLinkID != nil && *page.LanguageLinkID == page.ID {
			return nil, fmt.Errorf("%w: page %d links to itself", ErrInvalidLink, page.ID)
		}
		return specific(page)
	}

	if page.LanguageLinkID != nil {
		return nil, fmt.Errorf("%w: %s page %d stores a language link", ErrInvalidLink, code, page.ID)
	}

	linking, err := s.resolver.store.FindByLanguageLink(page.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find pages linking to %d: %w", page.ID, err)
	}
	switch len(linking) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("%w: %d pages link to page %d", ErrAmbiguousLink, len(linking), page.ID)
	}

	owner := &linking[0]
	ownerCode, err := s.Language(owner)
	if err != nil {
		return nil, err
	}
	if ownerCode != s.resolver.primary {
		return nil, fmt.Errorf("%w: page %d links to %d but is not in %q", ErrInvalidLink, owner.ID, page.ID, s.resolver.primary)
	}
	return specific(owner)
}

// SecondaryVariant returns the page the primary variant links to, or nil when
// there is no primary variant or it has no link.
func (s *Scope) SecondaryVariant(page *models.Page) (*models.SpecificPage, error) {
	if page == nil {
		return nil, fmt.Errorf("%w: nil page", ErrMalformedTree)
	}
	if cached, ok := s.secondary[page.ID]; ok {
		return cached.page, cached.err
	}

	result, err := s.secondaryVariant(page)
	s.secondary[page.ID] = lookup{page: result, err: err}
	return result, err
}

func (s *Scope) secondaryVariant(page *models.Page) (*models.SpecificPage, error) {
	primary, err := s.PrimaryVariant(page)
	if err != nil || primary == nil {
		return nil, err
	}
	if primary.LanguageLinkID == nil {
		return nil, nil
	}

	target, err := s.resolver.store.GetByID(*primary.LanguageLinkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: page %d links to missing page %d", ErrInvalidLink, primary.ID, *primary.LanguageLinkID)
		}
		return nil, fmt.Errorf("failed to load page %d: %w", *primary.LanguageLinkID, err)
	}

	code, err := s.Language(target)
	if err != nil {
		return nil, err
	}
	if code != s.resolver.secondary {
		return nil, fmt.Errorf("%w: page %d links to %d which is not in %q", ErrInvalidLink, primary.ID, target.ID, s.resolver.secondary)
	}
	return specific(target)
}

// Variants returns one entry per configured language, sorted by code.
// Languages without a page keep their metadata but carry no page and no URL.
// A page whose URL cannot be built keeps its entry with an empty URL.
func (s *Scope) Variants(page *models.Page) ([]Variant, error) {
	if page == nil {
		return nil, fmt.Errorf("%w: nil page", ErrMalformedTree)
	}
	if cached, ok := s.variants[page.ID]; ok {
		return cached, nil
	}

	primary, err := s.PrimaryVariant(page)
	if err != nil {
		return nil, err
	}
	secondary, err := s.SecondaryVariant(page)
	if err != nil {
		return nil, err
	}

	targets := map[string]*models.SpecificPage{
		s.resolver.primary:   primary,
		s.resolver.secondary: secondary,
	}

	variants := make([]Variant, 0, len(targets))
	for _, code := range s.resolver.Languages() {
		variant := Variant{
			Code:     code,
			Page:     targets[code],
			IsActive: code == s.active,
			Metadata: s.resolver.metadata[code],
		}
		if variant.Page != nil {
			if url, err := s.resolver.urls.PageURL(variant.Page.Page); err == nil {
				variant.URL = url
			} else {
				logger.Warn("Failed to build language switcher url", map[string]interface{}{
					"page_id":  variant.Page.ID,
					"language": code,
					"error":    err.Error(),
				})
			}
		}
		variants = append(variants, variant)
	}

	s.variants[page.ID] = variants
	return variants, nil
}

// NoTranslationAvailable reports whether at most one language has a page.
func (s *Scope) NoTranslationAvailable(page *models.Page) (bool, error) {
	variants, err := s.Variants(page)
	if err != nil {
		return false, err
	}

	available := 0
	for _, variant := range variants {
		if variant.Available() {
			available++
		}
	}
	return available <= 1, nil
}

func specific(page *models.Page) (*models.SpecificPage, error) {
	result, err := models.Specific(page)
	if err != nil {
		return nil, fmt.Errorf("failed to decode page %d: %w", page.ID, err)
	}
	return result, nil
}
