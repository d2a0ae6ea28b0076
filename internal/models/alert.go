package models

import "time"

type AlertSeverity string

const (
	AlertInfo     AlertSeverity = "info"
	AlertWarning  AlertSeverity = "warning"
	AlertCritical AlertSeverity = "critical"
)

func (s AlertSeverity) Valid() bool {
	switch s {
	case AlertInfo, AlertWarning, AlertCritical:
		return true
	}
	return false
}

type Alert struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	Title            string        `gorm:"size:255;not null" json:"title"`
	Description      string        `gorm:"type:text" json:"description"`
	Severity         AlertSeverity `gorm:"type:varchar(16);not null;default:info" json:"severity"`
	IsResolved       bool          `gorm:"not null;default:false" json:"is_resolved"`
	RelatedControlID *uint         `json:"related_control_id"`
	CreatedAt        time.Time     `json:"created_at"`
	ResolvedAt       *time.Time    `json:"resolved_at"`
}
