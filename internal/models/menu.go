package models

import (
	"strings"
	"time"
)

// Menu is a flat menu of a site, addressed by its handle (main_menu_de,
// footer_en, ...).
type Menu struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SiteID uint       `gorm:"uniqueIndex:idx_menus_site_handle;not null" json:"site_id"`
	Handle string     `gorm:"uniqueIndex:idx_menus_site_handle;size:64;not null" json:"handle"`
	Title  string     `gorm:"not null" json:"title"`
	Items  []MenuItem `gorm:"foreignKey:MenuID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

type MenuItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	MenuID      uint   `gorm:"index;not null" json:"menu_id"`
	LinkText    string `gorm:"not null" json:"link_text"`
	LinkPageID  *uint  `gorm:"index" json:"link_page_id,omitempty"`
	LinkURL     string `json:"link_url,omitempty"`
	SortOrder   int    `gorm:"not null" json:"sort_order"`
	AllowSubnav bool   `gorm:"not null" json:"allow_subnav"`
}

func (m *MenuItem) EnsureTextFields() {
	if m == nil {
		return
	}
	m.LinkText = strings.TrimSpace(m.LinkText)
	m.LinkURL = strings.TrimSpace(m.LinkURL)
}

func NormalizeMenuItems(items []MenuItem) []MenuItem {
	for i := range items {
		items[i].EnsureTextFields()
	}
	return items
}

type CreateMenuItemRequest struct {
	LinkText    string `json:"link_text" validate:"required"`
	LinkPageID  *uint  `json:"link_page_id"`
	LinkURL     string `json:"link_url"`
	SortOrder   *int   `json:"sort_order"`
	AllowSubnav bool   `json:"allow_subnav"`
}

// RenderedMenuItem is a menu entry with its link resolved to a URL. Children
// lists the linked page's menu pages when the item allows a subnav.
type RenderedMenuItem struct {
	Text        string             `json:"text"`
	URL         string             `json:"url"`
	AllowSubnav bool               `json:"allow_subnav"`
	Children    []RenderedMenuItem `json:"children,omitempty"`
}
