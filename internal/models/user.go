package models

import "time"

type UserRole string

const (
	RoleAdmin             UserRole = "admin"
	RoleComplianceOfficer UserRole = "compliance_officer"
	RoleExternalAuditor   UserRole = "external_auditor"
	RoleEmployee          UserRole = "employee"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleComplianceOfficer, RoleExternalAuditor, RoleEmployee:
		return true
	}
	return false
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName     string    `gorm:"size:255;not null" json:"full_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         UserRole  `gorm:"type:varchar(32);not null;default:employee" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
