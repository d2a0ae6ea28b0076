package engine

import (
	"errors"
	"fmt"
	"strings"

	"isms-platform/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RiskScore — likelihood * impact, диапазон [1,25] при валидных входах.
func RiskScore(likelihood, impact int) int {
	return likelihood * impact
}

// ClassifyRisk — уровень по баллам. Пороги включительны по нижней
// границе и проверяются по убыванию: 20 критический, 12 высокий,
// 6 средний, иначе низкий.
func ClassifyRisk(score int) models.RiskLevel {
	switch {
	case score >= 20:
		return models.RiskCritical
	case score >= 12:
		return models.RiskHigh
	case score >= 6:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// ValidateRating проверяет диапазон [1,5] для обоих параметров.
func ValidateRating(likelihood, impact int) error {
	if likelihood < 1 || likelihood > 5 {
		return invalid("likelihood must be between 1 and 5, got %d", likelihood)
	}
	if impact < 1 || impact > 5 {
		return invalid("impact must be between 1 and 5, got %d", impact)
	}
	return nil
}

type CreateRiskInput struct {
	Title       string
	Description string
	Category    string
	Likelihood  int
	Impact      int
	Status      models.RiskStatus
	OwnerID     *uint
	ControlIDs  []uint
}

// CreateRisk классифицирует и сохраняет риск, привязывает существующие
// контроли (неизвестные id молча отбрасываются) и пишет первую запись
// истории. Всё в одной транзакции.
func CreateRisk(db *gorm.DB, actorID uint, in CreateRiskInput) (*models.Risk, error) {
	if err := ValidateRating(in.Likelihood, in.Impact); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.RiskIdentified
	}
	if !status.Valid() {
		return nil, invalid("unknown risk status %q", status)
	}

	score := RiskScore(in.Likelihood, in.Impact)
	risk := models.Risk{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Likelihood:  in.Likelihood,
		Impact:      in.Impact,
		RiskScore:   score,
		RiskLevel:   ClassifyRisk(score),
		Status:      status,
		OwnerID:     in.OwnerID,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&risk).Error; err != nil {
			return err
		}
		if len(in.ControlIDs) > 0 {
			var controls []models.Control
			if err := tx.Where("id IN ?", in.ControlIDs).Find(&controls).Error; err != nil {
				return err
			}
			if err := tx.Model(&risk).Association("Controls").Replace(controls); err != nil {
				return err
			}
		}
		history := models.RiskHistory{
			RiskID:            risk.ID,
			ChangedByID:       &actorID,
			ChangeDescription: fmt.Sprintf("Risk created with status: %s", risk.Status),
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return nil, err
	}
	return &risk, nil
}

type UpdateRiskInput struct {
	Title       *string
	Description *string
	Category    *string
	Likelihood  *int
	Impact      *int
	Status      *models.RiskStatus
	OwnerID     *uint
	// nil — набор контролей не трогаем, пустой срез — очистить.
	ControlIDs []uint
}

// UpdateRisk сравнивает поля с текущими значениями и собирает фрагменты
// "field: old -> new". Если переданы likelihood или impact (даже без
// фактического изменения), score и level пересчитываются от текущих
// значений. Набор контролей заменяется целиком. Непустой список
// изменений даёт ровно одну запись истории.
func UpdateRisk(db *gorm.DB, actorID, riskID uint, in UpdateRiskInput) (*models.Risk, error) {
	if in.Likelihood != nil || in.Impact != nil {
		likelihood, impact := 1, 1
		if in.Likelihood != nil {
			likelihood = *in.Likelihood
		}
		if in.Impact != nil {
			impact = *in.Impact
		}
		if err := ValidateRating(likelihood, impact); err != nil {
			return nil, err
		}
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, invalid("unknown risk status %q", *in.Status)
	}

	var risk models.Risk
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&risk, riskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("risk", riskID)
			}
			return err
		}

		var changes []string
		if in.Title != nil && *in.Title != risk.Title {
			changes = append(changes, fmt.Sprintf("title: %s -> %s", risk.Title, *in.Title))
			risk.Title = *in.Title
		}
		if in.Description != nil && *in.Description != risk.Description {
			changes = append(changes, fmt.Sprintf("description: %s -> %s", risk.Description, *in.Description))
			risk.Description = *in.Description
		}
		if in.Likelihood != nil && *in.Likelihood != risk.Likelihood {
			changes = append(changes, fmt.Sprintf("likelihood: %d -> %d", risk.Likelihood, *in.Likelihood))
			risk.Likelihood = *in.Likelihood
		}
		if in.Impact != nil && *in.Impact != risk.Impact {
			changes = append(changes, fmt.Sprintf("impact: %d -> %d", risk.Impact, *in.Impact))
			risk.Impact = *in.Impact
		}
		if in.Category != nil && *in.Category != risk.Category {
			changes = append(changes, fmt.Sprintf("category: %s -> %s", risk.Category, *in.Category))
			risk.Category = *in.Category
		}
		if in.Status != nil && *in.Status != risk.Status {
			changes = append(changes, fmt.Sprintf("status: %s -> %s", risk.Status, *in.Status))
			risk.Status = *in.Status
		}
		if in.OwnerID != nil && (risk.OwnerID == nil || *risk.OwnerID != *in.OwnerID) {
			changes = append(changes, fmt.Sprintf("owner_id: %s -> %d", ownerRef(risk.OwnerID), *in.OwnerID))
			risk.OwnerID = in.OwnerID
		}

		// сам факт передачи оценки триггерит пересчёт
		if in.Likelihood != nil || in.Impact != nil {
			risk.RiskScore = RiskScore(risk.Likelihood, risk.Impact)
			risk.RiskLevel = ClassifyRisk(risk.RiskScore)
		}

		if err := tx.Save(&risk).Error; err != nil {
			return err
		}

		if in.ControlIDs != nil {
			var controls []models.Control
			if err := tx.Where("id IN ?", in.ControlIDs).Find(&controls).Error; err != nil {
				return err
			}
			if err := tx.Model(&risk).Association("Controls").Replace(controls); err != nil {
				return err
			}
			changes = append(changes, "Controls updated")
		}

		if len(changes) == 0 {
			return nil
		}
		history := models.RiskHistory{
			RiskID:            risk.ID,
			ChangedByID:       &actorID,
			ChangeDescription: strings.Join(changes, "; "),
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return nil, err
	}
	return &risk, nil
}

// DeleteRisk удаляет риск вместе с историей и связями с контролями.
func DeleteRisk(db *gorm.DB, riskID uint) error {
	var risk models.Risk
	if err := db.First(&risk, riskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("risk", riskID)
		}
		return err
	}
	return db.Select(clause.Associations).Delete(&risk).Error
}

// RiskHistoryEntries возвращает журнал риска от новых к старым.
func RiskHistoryEntries(db *gorm.DB, riskID uint) ([]models.RiskHistory, error) {
	var risk models.Risk
	if err := db.First(&risk, riskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("risk", riskID)
		}
		return nil, err
	}
	var entries []models.RiskHistory
	if err := db.Where("risk_id = ?", riskID).Order("id desc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func ownerRef(id *uint) string {
	if id == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *id)
}
