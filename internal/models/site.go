package models

import "time"

const (
	DefaultSiteHostname = "localhost"
	DefaultSiteName     = "codista.com"
)

type Site struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Hostname      string `gorm:"not null" json:"hostname"`
	SiteName      string `json:"site_name"`
	RootPageID    uint   `gorm:"not null" json:"root_page_id"`
	RootPage      *Page  `gorm:"foreignKey:RootPageID" json:"-"`
	IsDefaultSite bool   `gorm:"not null" json:"is_default_site"`
}

// NewDefaultSite returns an unsaved default site served from root.
func NewDefaultSite(root *Page) *Site {
	return &Site{
		Hostname:      DefaultSiteHostname,
		SiteName:      DefaultSiteName,
		RootPageID:    root.ID,
		IsDefaultSite: true,
	}
}
