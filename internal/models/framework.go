package models

import "time"

// Framework — компл. стандарт (SOC 2, ISO 27001 и т.п.), состоит из требований.
type Framework struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Version     string    `gorm:"size:50" json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Requirements []Requirement `gorm:"constraint:OnDelete:CASCADE" json:"requirements,omitempty"`
}

// Requirement — пункт стандарта, код уникален внутри фреймворка.
type Requirement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FrameworkID uint      `gorm:"not null;uniqueIndex:idx_requirement_code" json:"framework_id"`
	Code        string    `gorm:"size:64;not null;uniqueIndex:idx_requirement_code" json:"code"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	Controls []Control `gorm:"many2many:control_requirements" json:"-"`
}
