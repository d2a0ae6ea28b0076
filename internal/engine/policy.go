package engine

import (
	"errors"
	"strings"
	"time"

	"isms-platform/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreatePolicyInput struct {
	Title   string
	Content string
	Version string
}

func CreatePolicy(db *gorm.DB, in CreatePolicyInput) (*models.Policy, error) {
	version := strings.TrimSpace(in.Version)
	if version == "" {
		version = "1.0"
	}
	policy := models.Policy{
		Title:   in.Title,
		Content: in.Content,
		Version: version,
	}
	if err := db.Create(&policy).Error; err != nil {
		return nil, err
	}
	return &policy, nil
}

type UpdatePolicyInput struct {
	Title   *string
	Content *string
	Version *string
}

// UpdatePolicy применяет частичное обновление. Если содержимое меняется,
// сначала снимается снимок (version, content) с меткой версии ДО
// изменения. Смена только метки версии снимка не создаёт.
func UpdatePolicy(db *gorm.DB, policyID uint, in UpdatePolicyInput) (*models.Policy, error) {
	if in.Version != nil && strings.TrimSpace(*in.Version) == "" {
		return nil, invalid("version label must not be empty")
	}

	var policy models.Policy
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&policy, policyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("policy", policyID)
			}
			return err
		}

		if in.Content != nil && *in.Content != policy.Content {
			snapshot := models.PolicyVersion{
				PolicyID: policy.ID,
				Version:  policy.Version,
				Content:  policy.Content,
			}
			if err := tx.Create(&snapshot).Error; err != nil {
				return err
			}
		}

		if in.Title != nil {
			policy.Title = *in.Title
		}
		if in.Content != nil {
			policy.Content = *in.Content
		}
		if in.Version != nil {
			policy.Version = *in.Version
		}
		return tx.Save(&policy).Error
	})
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// PublishPolicy помечает политику опубликованной. При повторной
// публикации удаляются ознакомления ТЕКУЩЕЙ версии — все должны
// ознакомиться заново; записи по старым версиям остаются как
// исторический след.
func PublishPolicy(db *gorm.DB, policyID uint) (*models.Policy, error) {
	var policy models.Policy
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&policy, policyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("policy", policyID)
			}
			return err
		}

		if policy.IsPublished {
			if err := tx.Where("policy_id = ? AND policy_version = ?", policy.ID, policy.Version).
				Delete(&models.PolicyAcknowledgment{}).Error; err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		policy.IsPublished = true
		policy.PublishedAt = &now
		return tx.Save(&policy).Error
	})
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// AcknowledgePolicy создаёт ознакомление для текущей версии политики.
// Повторный вызов для той же тройки (policy, user, version) — Conflict,
// а не тихий no-op. Уникальный индекс в БД страхует от гонки двух
// одновременных вызовов.
func AcknowledgePolicy(db *gorm.DB, policyID, userID uint) (*models.PolicyAcknowledgment, error) {
	var ack models.PolicyAcknowledgment
	err := db.Transaction(func(tx *gorm.DB) error {
		var policy models.Policy
		if err := tx.First(&policy, policyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("policy", policyID)
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.PolicyAcknowledgment{}).
			Where("policy_id = ? AND user_id = ? AND policy_version = ?", policy.ID, userID, policy.Version).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflictf("policy %d already acknowledged at version %s", policy.ID, policy.Version)
		}

		ack = models.PolicyAcknowledgment{
			PolicyID:      policy.ID,
			UserID:        userID,
			PolicyVersion: policy.Version,
		}
		return tx.Create(&ack).Error
	})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// PendingPolicies — опубликованные политики, текущую версию которых
// пользователь ещё не подтвердил. Проверка поштучная: версия у каждой
// политики своя.
func PendingPolicies(db *gorm.DB, userID uint) ([]models.Policy, error) {
	var published []models.Policy
	if err := db.Where("is_published = ?", true).Order("id asc").Find(&published).Error; err != nil {
		return nil, err
	}

	pending := make([]models.Policy, 0, len(published))
	for _, policy := range published {
		var count int64
		if err := db.Model(&models.PolicyAcknowledgment{}).
			Where("policy_id = ? AND user_id = ? AND policy_version = ?", policy.ID, userID, policy.Version).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			pending = append(pending, policy)
		}
	}
	return pending, nil
}

// GetPolicy читает политику с учётом роли: сотрудникам доступны только
// опубликованные. Непубликованная для сотрудника — Forbidden, запись
// существует, но доступ закрыт.
func GetPolicy(db *gorm.DB, policyID uint, role models.UserRole) (*models.Policy, error) {
	var policy models.Policy
	if err := db.First(&policy, policyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("policy", policyID)
		}
		return nil, err
	}
	if role == models.RoleEmployee && !policy.IsPublished {
		return nil, forbiddenf("policy %d is not published", policyID)
	}
	return &policy, nil
}

// ListPolicies — для сотрудников только опубликованные.
func ListPolicies(db *gorm.DB, role models.UserRole) ([]models.Policy, error) {
	q := db.Order("id asc")
	if role == models.RoleEmployee {
		q = q.Where("is_published = ?", true)
	}
	var policies []models.Policy
	if err := q.Find(&policies).Error; err != nil {
		return nil, err
	}
	return policies, nil
}

// PolicyVersions — история снимков политики от новых к старым.
func PolicyVersions(db *gorm.DB, policyID uint) ([]models.PolicyVersion, error) {
	var policy models.Policy
	if err := db.First(&policy, policyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("policy", policyID)
		}
		return nil, err
	}
	var versions []models.PolicyVersion
	if err := db.Where("policy_id = ?", policyID).Order("id desc").Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

// DeletePolicy удаляет политику вместе со снимками и ознакомлениями.
func DeletePolicy(db *gorm.DB, policyID uint) error {
	var policy models.Policy
	if err := db.First(&policy, policyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("policy", policyID)
		}
		return err
	}
	return db.Select(clause.Associations).Delete(&policy).Error
}
