package models

import "time"

// Policy — версионируемый документ. Непубликованные политики не видны
// сотрудникам; каждая публикация новой версии требует повторного
// ознакомления.
type Policy struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Version     string     `gorm:"size:50;not null;default:'1.0'" json:"version"`
	IsPublished bool       `gorm:"not null;default:false" json:"is_published"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Versions        []PolicyVersion        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Acknowledgments []PolicyAcknowledgment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// PolicyVersion — неизменяемый снимок (version, content) до изменения
// содержимого. Только история, текущее состояние не трогает.
type PolicyVersion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PolicyID  uint      `gorm:"not null;index" json:"policy_id"`
	Version   string    `gorm:"size:50;not null" json:"version"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// PolicyAcknowledgment — факт ознакомления пользователя с конкретной
// версией политики. Уникальный индекс по тройке защищает
// check-then-insert от гонки.
type PolicyAcknowledgment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	PolicyID       uint      `gorm:"not null;uniqueIndex:idx_policy_ack" json:"policy_id"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_policy_ack" json:"user_id"`
	PolicyVersion  string    `gorm:"size:50;not null;uniqueIndex:idx_policy_ack" json:"policy_version"`
	AcknowledgedAt time.Time `gorm:"autoCreateTime" json:"acknowledged_at"`
}
