package models

import "time"

type ControlStatus string

const (
	ControlNotStarted  ControlStatus = "not_started"
	ControlInProgress  ControlStatus = "in_progress"
	ControlImplemented ControlStatus = "implemented"
	ControlFailed      ControlStatus = "failed"
)

func (s ControlStatus) Valid() bool {
	switch s {
	case ControlNotStarted, ControlInProgress, ControlImplemented, ControlFailed:
		return true
	}
	return false
}

// Control — реализованная мера защиты. Связана с требованиями и рисками
// (many2many), владеет свидетельствами (cascade).
type Control struct {
	ID                    uint          `gorm:"primaryKey" json:"id"`
	Title                 string        `gorm:"size:255;not null" json:"title"`
	Description           string        `gorm:"type:text" json:"description"`
	Status                ControlStatus `gorm:"type:varchar(32);not null;default:not_started" json:"status"`
	OwnerID               *uint         `gorm:"index" json:"owner_id"`
	Owner                 *User         `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	ImplementationDetails string        `gorm:"type:text" json:"implementation_details"`
	LastChecked           *time.Time    `json:"last_checked"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`

	Requirements []Requirement `gorm:"many2many:control_requirements" json:"requirements,omitempty"`
	Evidence     []Evidence    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Risks        []Risk        `gorm:"many2many:control_risks" json:"-"`
}

// Evidence — свидетельство по контролю: текст и/или ссылка на загруженный файл.
type Evidence struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ControlID    uint      `gorm:"not null;index" json:"control_id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	FilePath     string    `gorm:"size:512" json:"file_path"`
	FileName     string    `gorm:"size:255" json:"file_name"`
	ContentText  string    `gorm:"type:text" json:"content_text"`
	UploadedByID *uint     `json:"uploaded_by_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Evidence) TableName() string { return "evidence" }
