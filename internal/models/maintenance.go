package models

type MaintenanceStatus string

const (
	MaintenanceOpen       MaintenanceStatus = "Open"
	MaintenanceInProgress MaintenanceStatus = "In Progress"
	MaintenanceCompleted  MaintenanceStatus = "Completed"
)

func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenanceOpen, MaintenanceInProgress, MaintenanceCompleted:
		return true
	}
	return false
}

// CanAdvance reports whether a request may move from s to next.
// Status only moves forward.
func (s MaintenanceStatus) CanAdvance(next MaintenanceStatus) bool {
	rank := map[MaintenanceStatus]int{
		MaintenanceOpen:       0,
		MaintenanceInProgress: 1,
		MaintenanceCompleted:  2,
	}
	return rank[next] > rank[s]
}

// MaintenanceRequest is filed by a tenant against the property of their active lease.
type MaintenanceRequest struct {
	Model
	PropertyID  string            `gorm:"size:36;index;not null" json:"propertyId"`
	TenantID    string            `gorm:"size:36;index;not null" json:"tenantId"`
	Title       string            `gorm:"size:128;not null" json:"title"`
	Description string            `gorm:"type:text" json:"description"`
	Priority    string            `gorm:"size:16;not null" json:"priority"`
	Status      MaintenanceStatus `gorm:"size:16;index;not null" json:"status"`
	Category    string            `gorm:"size:32" json:"category"`
}
