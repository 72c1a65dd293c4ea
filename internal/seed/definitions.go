package seed

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"codista-cms/internal/models"
	"codista-cms/pkg/validator"
)

//go:embed data/pagetree/*.json
var pageTreeFS embed.FS

//go:embed data/menus/*.json
var menusFS embed.FS

//go:embed data/users.json
var usersData []byte

// PageDefinition describes one page of the seeded tree in every language it
// exists in. Parent names the key of an earlier definition; an empty parent
// places the page directly below the language redirection page.
type PageDefinition struct {
	Key          string                     `json:"key" validate:"required,slug"`
	Parent       string                     `json:"parent" validate:"omitempty,slug"`
	ContentType  string                     `json:"content_type" validate:"required"`
	ShowInMenus  bool                       `json:"show_in_menus"`
	Live         *bool                      `json:"live"`
	Translations map[string]PageTranslation `json:"translations" validate:"required,min=1,dive,keys,language,endkeys"`

	// Refs point page fields at pages of other definitions, in the same
	// language. Images point page fields at fixture images.
	Refs   map[string]string `json:"refs" validate:"dive,keys,required,endkeys,slug"`
	Images map[string]string `json:"images" validate:"dive,keys,required,endkeys,required"`
}

type PageTranslation struct {
	Title  string         `json:"title" validate:"required,no_html"`
	Slug   string         `json:"slug" validate:"required,slug"`
	Fields models.JSONMap `json:"fields"`
}

func (d PageDefinition) isLive() bool {
	return d.Live == nil || *d.Live
}

// MenuDefinition lists the items of a menu that exists once per language,
// for example "main_menu" as main_menu_de and main_menu_en.
type MenuDefinition struct {
	Name  string               `json:"name" validate:"required"`
	Items []MenuItemDefinition `json:"items" validate:"dive"`
}

type MenuItemDefinition struct {
	Page        string            `json:"page" validate:"required_without=URL"`
	URL         string            `json:"url"`
	SortOrder   *int              `json:"sort_order"`
	AllowSubnav bool              `json:"allow_subnav"`
	LinkText    map[string]string `json:"link_text" validate:"required,min=1,dive,keys,language,endkeys,required"`
}

// UserDefinitions are the accounts every installation starts with.
type UserDefinitions struct {
	Inactive            []models.CreateUserRequest `json:"inactive" validate:"dive"`
	Superusers          []models.CreateUserRequest `json:"superusers" validate:"dive"`
	DevelopmentPassword string                     `json:"development_password" validate:"required"`
}

// LoadPageDefinitions returns the embedded page tree in file name order.
// Every parent has to be defined before its children.
func LoadPageDefinitions() ([]PageDefinition, error) {
	var definitions []PageDefinition
	err := readDefinitionFiles(pageTreeFS, "data/pagetree", func(name string, data []byte) error {
		parsed, err := parseDefinitions[PageDefinition](data)
		if err != nil {
			return err
		}
		definitions = append(definitions, parsed...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := validatePageDefinitions(definitions); err != nil {
		return nil, err
	}
	return definitions, nil
}

func validatePageDefinitions(definitions []PageDefinition) error {
	seen := make(map[string]bool, len(definitions))
	for _, definition := range definitions {
		if err := validator.Validate(definition); err != nil {
			return fmt.Errorf("page definition %q: %w", definition.Key, err)
		}
		if !models.IsContentType(definition.ContentType) {
			return fmt.Errorf("page definition %q: unknown content type %q, expected one of %s",
				definition.Key, definition.ContentType, strings.Join(models.ContentTypes(), ", "))
		}
		if seen[definition.Key] {
			return fmt.Errorf("page definition %q is defined twice", definition.Key)
		}
		if definition.Parent != "" && !seen[definition.Parent] {
			return fmt.Errorf("page definition %q: parent %q must be defined first", definition.Key, definition.Parent)
		}
		seen[definition.Key] = true
	}

	for _, definition := range definitions {
		for field, target := range definition.Refs {
			if !seen[target] {
				return fmt.Errorf("page definition %q: %s refers to unknown page %q", definition.Key, field, target)
			}
		}
	}
	return nil
}

func LoadMenuDefinitions() ([]MenuDefinition, error) {
	var definitions []MenuDefinition
	err := readDefinitionFiles(menusFS, "data/menus", func(name string, data []byte) error {
		parsed, err := parseDefinitions[MenuDefinition](data)
		if err != nil {
			return err
		}
		for _, definition := range parsed {
			if err := validator.Validate(definition); err != nil {
				return fmt.Errorf("menu %q: %w", definition.Name, err)
			}
		}
		definitions = append(definitions, parsed...)
		return nil
	})
	return definitions, err
}

func LoadUserDefinitions() (*UserDefinitions, error) {
	var definitions UserDefinitions
	if err := json.Unmarshal(usersData, &definitions); err != nil {
		return nil, fmt.Errorf("parse user definitions: %w", err)
	}
	if err := validator.Validate(definitions); err != nil {
		return nil, fmt.Errorf("user definitions: %w", err)
	}
	return &definitions, nil
}

func readDefinitionFiles(fsys fs.FS, dir string, handle func(name string, data []byte) error) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".json") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := handle(name, data); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
	}
	return nil
}

// parseDefinitions accepts a single JSON object or an array of them.
func parseDefinitions[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var definitions []T
		if err := json.Unmarshal(trimmed, &definitions); err != nil {
			return nil, err
		}
		return definitions, nil
	}

	var definition T
	if err := json.Unmarshal(trimmed, &definition); err != nil {
		return nil, err
	}
	return []T{definition}, nil
}
