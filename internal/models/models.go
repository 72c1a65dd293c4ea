package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Page is a node of the content tree. Nodes are addressed by a materialised
// path made of fixed-width base-36 steps, so ancestors are path prefixes and
// descendants share the path as prefix.
type Page struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Path     string `gorm:"uniqueIndex;size:255;not null" json:"path"`
	Depth    int    `gorm:"index;not null" json:"depth"`
	NumChild int    `gorm:"not null" json:"numchild"`

	Title       string `gorm:"not null" json:"title"`
	DraftTitle  string `json:"draft_title"`
	Slug        string `gorm:"index;not null" json:"slug"`
	URLPath     string `gorm:"index;not null" json:"url_path"`
	ContentType string `gorm:"size:64;index;not null" json:"content_type"`
	Live        bool   `gorm:"not null" json:"live"`
	ShowInMenus bool   `gorm:"not null" json:"show_in_menus"`

	// LanguageLinkID is only set on primary language pages and points at the
	// secondary language counterpart.
	LanguageLinkID *uint `gorm:"index" json:"language_link_id,omitempty"`

	Fields JSONMap `gorm:"type:jsonb" json:"fields"`
}

type CreatePageRequest struct {
	Title       string  `json:"title" validate:"required"`
	Slug        string  `json:"slug"`
	ContentType string  `json:"content_type" validate:"required"`
	Live        bool    `json:"live"`
	ShowInMenus bool    `json:"show_in_menus"`
	Fields      JSONMap `json:"fields"`
}

type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("failed to scan JSONMap")
	}

	if len(raw) == 0 {
		*m = JSONMap{}
		return nil
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}

	*m = decoded
	return nil
}

// Clone returns a shallow copy so callers can add keys without mutating a
// shared definition.
func (m JSONMap) Clone() JSONMap {
	clone := make(JSONMap, len(m))
	for key, value := range m {
		clone[key] = value
	}
	return clone
}
