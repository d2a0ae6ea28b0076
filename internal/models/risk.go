package models

import "time"

type RiskStatus string
type RiskLevel string

const (
	RiskIdentified RiskStatus = "identified"
	RiskInProgress RiskStatus = "in_progress"
	RiskMitigated  RiskStatus = "mitigated"
	RiskAccepted   RiskStatus = "accepted"
	RiskClosed     RiskStatus = "closed"

	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

func (s RiskStatus) Valid() bool {
	switch s {
	case RiskIdentified, RiskInProgress, RiskMitigated, RiskAccepted, RiskClosed:
		return true
	}
	return false
}

// Risk — оценённая угроза: likelihood и impact в [1,5], score и level
// всегда производные (engine пересчитывает их при каждом изменении).
type Risk struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Likelihood  int        `gorm:"not null" json:"likelihood"`
	Impact      int        `gorm:"not null" json:"impact"`
	RiskScore   int        `json:"risk_score"`
	RiskLevel   RiskLevel  `gorm:"type:varchar(16)" json:"risk_level"`
	Category    string     `gorm:"size:100" json:"category"`
	Status      RiskStatus `gorm:"type:varchar(32);not null;default:identified" json:"status"`
	OwnerID     *uint      `gorm:"index" json:"owner_id"`
	Owner       *User      `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Controls []Control     `gorm:"many2many:control_risks" json:"controls,omitempty"`
	History  []RiskHistory `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// RiskHistory — append-only журнал изменений риска. Записи не
// редактируются и не удаляются (кроме каскада при удалении риска).
type RiskHistory struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	RiskID            uint      `gorm:"not null;index" json:"risk_id"`
	ChangedByID       *uint     `json:"changed_by_id"`
	ChangeDescription string    `gorm:"type:text;not null" json:"change_description"`
	ChangedAt         time.Time `gorm:"autoCreateTime" json:"changed_at"`
}
