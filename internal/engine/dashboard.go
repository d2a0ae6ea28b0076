package engine

import (
	"math"

	"isms-platform/internal/models"

	"gorm.io/gorm"
)

type FrameworkProgress struct {
	FrameworkID         uint    `json:"framework_id"`
	FrameworkName       string  `json:"framework_name"`
	TotalControls       int     `json:"total_controls"`
	ImplementedControls int     `json:"implemented_controls"`
	ProgressPercentage  float64 `json:"progress_percentage"`
}

// DashboardStats — снимок состояния на момент запроса, без кеширования.
type DashboardStats struct {
	ComplianceProgress      []FrameworkProgress `json:"compliance_progress"`
	TotalRisks              int64               `json:"total_risks"`
	HighRisks               int64               `json:"high_risks"`
	MediumRisks             int64               `json:"medium_risks"`
	LowRisks                int64               `json:"low_risks"`
	PendingAcknowledgments  int64               `json:"pending_acknowledgments"`
	ActiveAlerts            int64               `json:"active_alerts"`
	ControlsLackingEvidence int64               `json:"controls_lacking_evidence"`
}

// BuildDashboard собирает сводку заново при каждом вызове. Любая ошибка
// хранилища валит весь запрос, частичных результатов нет.
func BuildDashboard(db *gorm.DB, user *models.User) (*DashboardStats, error) {
	stats := &DashboardStats{ComplianceProgress: []FrameworkProgress{}}

	var frameworks []models.Framework
	if err := db.Preload("Requirements").Order("id asc").Find(&frameworks).Error; err != nil {
		return nil, err
	}
	for _, framework := range frameworks {
		progress, err := frameworkProgress(db, framework)
		if err != nil {
			return nil, err
		}
		stats.ComplianceProgress = append(stats.ComplianceProgress, progress)
	}

	if err := db.Model(&models.Risk{}).Count(&stats.TotalRisks).Error; err != nil {
		return nil, err
	}
	// high и critical сведены в одну корзину, это осознанное решение
	if err := db.Model(&models.Risk{}).
		Where("risk_level IN ?", []models.RiskLevel{models.RiskHigh, models.RiskCritical}).
		Count(&stats.HighRisks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Risk{}).
		Where("risk_level = ?", models.RiskMedium).
		Count(&stats.MediumRisks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Risk{}).
		Where("risk_level = ?", models.RiskLow).
		Count(&stats.LowRisks).Error; err != nil {
		return nil, err
	}

	pending, err := pendingAcknowledgmentCount(db, user)
	if err != nil {
		return nil, err
	}
	stats.PendingAcknowledgments = pending

	if err := db.Model(&models.Alert{}).
		Where("is_resolved = ?", false).
		Count(&stats.ActiveAlerts).Error; err != nil {
		return nil, err
	}

	lacking, err := ControlsLackingEvidence(db)
	if err != nil {
		return nil, err
	}
	stats.ControlsLackingEvidence = lacking

	return stats, nil
}

// frameworkProgress — доля внедрённых контролей среди всех контролей,
// достижимых через требования фреймворка (без дублей).
func frameworkProgress(db *gorm.DB, framework models.Framework) (FrameworkProgress, error) {
	progress := FrameworkProgress{
		FrameworkID:   framework.ID,
		FrameworkName: framework.Name,
	}

	reqIDs := make([]uint, 0, len(framework.Requirements))
	for _, req := range framework.Requirements {
		reqIDs = append(reqIDs, req.ID)
	}

	if len(reqIDs) > 0 {
		var controls []models.Control
		if err := db.Distinct("controls.*").
			Joins("JOIN control_requirements cr ON cr.control_id = controls.id").
			Where("cr.requirement_id IN ?", reqIDs).
			Find(&controls).Error; err != nil {
			return progress, err
		}
		progress.TotalControls = len(controls)
		for _, control := range controls {
			if control.Status == models.ControlImplemented {
				progress.ImplementedControls++
			}
		}
	}

	// деление на ноль охраняем: фреймворк без контролей даёт 0, не ошибку
	if progress.TotalControls > 0 {
		progress.ProgressPercentage = round2(float64(progress.ImplementedControls) / float64(progress.TotalControls) * 100)
	}
	return progress, nil
}

// pendingAcknowledgmentCount: сотруднику — его личный счётчик; остальным
// ролям — грубая оценка employees*published - все_ознакомления. Она
// намеренно неточна при смене версий, чинить её без явного требования
// нельзя — изменятся наблюдаемые цифры дашборда.
func pendingAcknowledgmentCount(db *gorm.DB, user *models.User) (int64, error) {
	if user.Role == models.RoleEmployee {
		pending, err := PendingPolicies(db, user.ID)
		if err != nil {
			return 0, err
		}
		return int64(len(pending)), nil
	}

	var employees, published, acknowledged int64
	if err := db.Model(&models.User{}).
		Where("role = ?", models.RoleEmployee).
		Count(&employees).Error; err != nil {
		return 0, err
	}
	if err := db.Model(&models.Policy{}).
		Where("is_published = ?", true).
		Count(&published).Error; err != nil {
		return 0, err
	}
	if err := db.Model(&models.PolicyAcknowledgment{}).Count(&acknowledged).Error; err != nil {
		return 0, err
	}
	return employees*published - acknowledged, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
