package engine

import (
	"isms-platform/internal/models"

	"gorm.io/gorm"
)

// ControlsLackingEvidence — количество контролей без единого
// свидетельства (left join по Control×Evidence).
func ControlsLackingEvidence(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.Control{}).
		Joins("LEFT JOIN evidence ON evidence.control_id = controls.id").
		Where("evidence.id IS NULL").
		Count(&count).Error
	return count, err
}
