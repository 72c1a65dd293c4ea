package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

const (
	ContentTypeRoot                = "root"
	ContentTypeLanguageRedirection = "language_redirection_page"
	ContentTypeHome                = "home_page"
	ContentTypeDefault             = "default_page"
	ContentTypePrivacyPolicy       = "privacy_policy_page"
	ContentTypeContact             = "contact_page"
	ContentTypeServiceOverview     = "service_overview_page"
	ContentTypeProjectIndex        = "project_index_page"
	ContentTypeProject             = "project_page"
	ContentTypeTeamMemberIndex     = "team_member_index_page"
	ContentTypeTeamMember          = "team_member_page"
)

// Content is the type specific part of a page, decoded from Page.Fields.
type Content interface {
	ContentType() string
}

var contentTypes = map[string]func() Content{
	ContentTypeRoot:                func() Content { return &RootPage{} },
	ContentTypeLanguageRedirection: func() Content { return &LanguageRedirectionPage{} },
	ContentTypeHome:                func() Content { return &HomePage{} },
	ContentTypeDefault:             func() Content { return &DefaultPage{} },
	ContentTypePrivacyPolicy:       func() Content { return &PrivacyPolicyPage{} },
	ContentTypeContact:             func() Content { return &ContactPage{} },
	ContentTypeServiceOverview:     func() Content { return &ServiceOverviewPage{} },
	ContentTypeProjectIndex:        func() Content { return &ProjectIndexPage{} },
	ContentTypeProject:             func() Content { return &ProjectPage{} },
	ContentTypeTeamMemberIndex:     func() Content { return &TeamMemberIndexPage{} },
	ContentTypeTeamMember:          func() Content { return &TeamMemberPage{} },
}

// IsContentType reports whether name is a registered content type.
func IsContentType(name string) bool {
	_, ok := contentTypes[name]
	return ok
}

// ContentTypes lists the registered content type names in alphabetical order.
func ContentTypes() []string {
	names := make([]string, 0, len(contentTypes))
	for name := range contentTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SpecificPage pairs a tree node with its decoded content.
type SpecificPage struct {
	*Page
	Content Content `json:"content"`
}

// Specific decodes the page fields into the struct registered for the page's
// content type.
func Specific(page *Page) (*SpecificPage, error) {
	if page == nil {
		return nil, nil
	}

	factory, ok := contentTypes[page.ContentType]
	if !ok {
		return nil, fmt.Errorf("unknown content type %q for page %d", page.ContentType, page.ID)
	}

	content := factory()
	if len(page.Fields) > 0 {
		data, err := json.Marshal(page.Fields)
		if err != nil {
			return nil, fmt.Errorf("encode fields of page %d: %w", page.ID, err)
		}
		if err := json.Unmarshal(data, content); err != nil {
			return nil, fmt.Errorf("decode %s fields of page %d: %w", page.ContentType, page.ID, err)
		}
	}

	return &SpecificPage{Page: page, Content: content}, nil
}

// StreamBlock is one block of a rich body, stored as {"type", "value"}.
type StreamBlock struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type RootPage struct{}

func (*RootPage) ContentType() string { return ContentTypeRoot }

// LanguageRedirectionPage is the site root. It only redirects visitors to the
// home page of their preferred language.
type LanguageRedirectionPage struct{}

func (*LanguageRedirectionPage) ContentType() string { return ContentTypeLanguageRedirection }

type HomePage struct {
	Language             string `json:"language"`
	HeroTitle            string `json:"hero_title"`
	HeroIntro            string `json:"hero_intro"`
	ServicesTitle        string `json:"services_title"`
	ServicesTeaser       string `json:"services_teaser"`
	TeamTitle            string `json:"team_title"`
	TeamTeaser           string `json:"team_teaser"`
	FeaturedProjectOne   *uint  `json:"featured_project_one,omitempty"`
	FeaturedProjectTwo   *uint  `json:"featured_project_two,omitempty"`
	FeaturedProjectThree *uint  `json:"featured_project_three,omitempty"`
}

func (*HomePage) ContentType() string { return ContentTypeHome }

type DefaultPage struct {
	HeroTitle string        `json:"hero_title"`
	Body      []StreamBlock `json:"body,omitempty"`
}

func (*DefaultPage) ContentType() string { return ContentTypeDefault }

type PrivacyPolicyPage struct {
	HeroTitle string        `json:"hero_title"`
	Body      []StreamBlock `json:"body,omitempty"`
}

func (*PrivacyPolicyPage) ContentType() string { return ContentTypePrivacyPolicy }

type ContactPage struct {
	HeroTitle   string `json:"hero_title"`
	HeroIntro   string `json:"hero_intro"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

func (*ContactPage) ContentType() string { return ContentTypeContact }

type ServiceOverviewPage struct {
	ServicesColumnOne   string `json:"services_column_one"`
	ServicesColumnTwo   string `json:"services_column_two"`
	ServicesColumnThree string `json:"services_column_three"`
	ClientsColumnOne    string `json:"clients_column_one"`
	ClientsColumnTwo    string `json:"clients_column_two"`
	ClientsColumnThree  string `json:"clients_column_three"`
}

func (*ServiceOverviewPage) ContentType() string { return ContentTypeServiceOverview }

type ProjectIndexPage struct {
	HeroTitle string `json:"hero_title"`
}

func (*ProjectIndexPage) ContentType() string { return ContentTypeProjectIndex }

type ProjectPage struct {
	HeroTitle   string `json:"hero_title"`
	HeroIntro   string `json:"hero_intro"`
	ProjectURL  string `json:"project_url"`
	TeaserTitle string `json:"teaser_title"`
	Client      string `json:"client"`
	Services    string `json:"services"`
	Tech        string `json:"tech"`
}

func (*ProjectPage) ContentType() string { return ContentTypeProject }

type TeamMemberIndexPage struct {
	HeroTitle       string `json:"hero_title"`
	HeroIntro       string `json:"hero_intro"`
	TeamMemberOne   *uint  `json:"team_member_one,omitempty"`
	TeamMemberTwo   *uint  `json:"team_member_two,omitempty"`
	TeamMemberThree *uint  `json:"team_member_three,omitempty"`
	TeamMemberFour  *uint  `json:"team_member_four,omitempty"`
	TeamMemberFive  *uint  `json:"team_member_five,omitempty"`
}

func (*TeamMemberIndexPage) ContentType() string { return ContentTypeTeamMemberIndex }

type TeamMemberPage struct {
	Name               string `json:"name"`
	OrganisationalRole string `json:"organisational_role"`
	About              string `json:"about"`
	Portrait           *uint  `json:"portrait,omitempty"`
}

func (*TeamMemberPage) ContentType() string { return ContentTypeTeamMember }
