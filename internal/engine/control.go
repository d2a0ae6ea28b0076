package engine

import (
	"errors"
	"time"

	"isms-platform/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateControlInput struct {
	Title                 string
	Description           string
	ImplementationDetails string
	Status                models.ControlStatus
	OwnerID               *uint
	RequirementIDs        []uint
}

// CreateControl сохраняет контроль и привязывает существующие требования.
// Неизвестные id требований отбрасываются — итоговый набор это
// пересечение переданного списка с каталогом.
func CreateControl(db *gorm.DB, in CreateControlInput) (*models.Control, error) {
	status := in.Status
	if status == "" {
		status = models.ControlNotStarted
	}
	if !status.Valid() {
		return nil, invalid("unknown control status %q", status)
	}

	control := models.Control{
		Title:                 in.Title,
		Description:           in.Description,
		ImplementationDetails: in.ImplementationDetails,
		Status:                status,
		OwnerID:               in.OwnerID,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&control).Error; err != nil {
			return err
		}
		if len(in.RequirementIDs) == 0 {
			return nil
		}
		var requirements []models.Requirement
		if err := tx.Where("id IN ?", in.RequirementIDs).Find(&requirements).Error; err != nil {
			return err
		}
		return tx.Model(&control).Association("Requirements").Replace(requirements)
	})
	if err != nil {
		return nil, err
	}
	return &control, nil
}

type UpdateControlInput struct {
	Title                 *string
	Description           *string
	ImplementationDetails *string
	Status                *models.ControlStatus
	OwnerID               *uint
	// nil — набор требований не трогаем, пустой срез — очистить.
	RequirementIDs []uint
}

// UpdateControl применяет частичное обновление и штампует last_checked
// при КАЖДОМ изменении, независимо от того, какие поля пришли.
func UpdateControl(db *gorm.DB, controlID uint, in UpdateControlInput) (*models.Control, error) {
	if in.Status != nil && !in.Status.Valid() {
		return nil, invalid("unknown control status %q", *in.Status)
	}

	var control models.Control
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&control, controlID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("control", controlID)
			}
			return err
		}

		if in.Title != nil {
			control.Title = *in.Title
		}
		if in.Description != nil {
			control.Description = *in.Description
		}
		if in.ImplementationDetails != nil {
			control.ImplementationDetails = *in.ImplementationDetails
		}
		if in.Status != nil {
			control.Status = *in.Status
		}
		if in.OwnerID != nil {
			control.OwnerID = in.OwnerID
		}

		now := time.Now().UTC()
		control.LastChecked = &now

		if err := tx.Save(&control).Error; err != nil {
			return err
		}

		if in.RequirementIDs == nil {
			return nil
		}
		var requirements []models.Requirement
		if err := tx.Where("id IN ?", in.RequirementIDs).Find(&requirements).Error; err != nil {
			return err
		}
		return tx.Model(&control).Association("Requirements").Replace(requirements)
	})
	if err != nil {
		return nil, err
	}
	return &control, nil
}

// DeleteControl удаляет контроль, его свидетельства и связи с
// требованиями и рисками.
func DeleteControl(db *gorm.DB, controlID uint) error {
	var control models.Control
	if err := db.First(&control, controlID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("control", controlID)
		}
		return err
	}
	return db.Select(clause.Associations).Delete(&control).Error
}

// DeleteFramework удаляет фреймворк каскадом: связи контролей с его
// требованиями, сами требования, затем фреймворк. Контроли остаются.
func DeleteFramework(db *gorm.DB, frameworkID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var framework models.Framework
		if err := tx.First(&framework, frameworkID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("framework", frameworkID)
			}
			return err
		}

		var reqIDs []uint
		if err := tx.Model(&models.Requirement{}).
			Where("framework_id = ?", frameworkID).
			Pluck("id", &reqIDs).Error; err != nil {
			return err
		}
		if len(reqIDs) > 0 {
			if err := tx.Exec("DELETE FROM control_requirements WHERE requirement_id IN ?", reqIDs).Error; err != nil {
				return err
			}
			if err := tx.Where("framework_id = ?", frameworkID).Delete(&models.Requirement{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&framework).Error
	})
}
