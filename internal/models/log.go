package models

import "time"

// AuditLog records authenticated requests for compliance review.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ActorID   string    `gorm:"size:36;index" json:"actorId"`
	Role      Role      `gorm:"size:16;index" json:"role"`
	Method    string    `gorm:"size:16" json:"method"`
	Path      string    `gorm:"size:255" json:"path"`
	Status    int       `json:"status"`
	ActionEnc string    `gorm:"size:4096" json:"-"` // encrypted request summary
	IP        string    `gorm:"size:64" json:"ip"`
	UserAgent string    `gorm:"size:255" json:"userAgent"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// Backup is an encrypted platform snapshot written by an admin.
type Backup struct {
	Model
	AdminID  string `gorm:"size:36;index;not null" json:"adminId"`
	FileName string `gorm:"size:255;not null" json:"fileName"`
	FilePath string `gorm:"size:512;not null" json:"-"`
	Size     int64  `json:"size"`
}
