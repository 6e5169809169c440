package models

// Document is a tenant-visible file reference. Storage is not backed by a
// real object store; URL is informational.
type Document struct {
	Model
	TenantID string `gorm:"size:36;index;not null" json:"tenantId"`
	Name     string `gorm:"size:128;not null" json:"name"`
	Type     string `gorm:"size:32;not null" json:"type"`
	URL      string `gorm:"size:512" json:"url"`
}
