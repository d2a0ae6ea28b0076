package engine

import (
	"errors"
	"time"

	"isms-platform/internal/models"

	"gorm.io/gorm"
)

const unassignedOwner = "Unassigned"

type AcknowledgmentReport struct {
	PolicyID           uint          `json:"policy_id"`
	PolicyTitle        string        `json:"policy_title"`
	PolicyVersion      string        `json:"policy_version"`
	TotalUsers         int           `json:"total_users"`
	AcknowledgedCount  int           `json:"acknowledged_count"`
	PendingCount       int           `json:"pending_count"`
	AcknowledgmentRate float64       `json:"acknowledgment_rate"`
	PendingUsers       []models.User `json:"pending_users"`
}

// BuildAcknowledgmentReport — кто из активных сотрудников подтвердил
// текущую версию политики, кто ещё нет.
func BuildAcknowledgmentReport(db *gorm.DB, policyID uint) (*AcknowledgmentReport, error) {
	var policy models.Policy
	if err := db.First(&policy, policyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("policy", policyID)
		}
		return nil, err
	}

	var employees []models.User
	if err := db.Where("role = ? AND is_active = ?", models.RoleEmployee, true).
		Order("id asc").Find(&employees).Error; err != nil {
		return nil, err
	}

	var acks []models.PolicyAcknowledgment
	if err := db.Where("policy_id = ? AND policy_version = ?", policy.ID, policy.Version).
		Find(&acks).Error; err != nil {
		return nil, err
	}

	acknowledged := make(map[uint]struct{}, len(acks))
	for _, ack := range acks {
		acknowledged[ack.UserID] = struct{}{}
	}

	pendingUsers := make([]models.User, 0)
	for _, u := range employees {
		if _, ok := acknowledged[u.ID]; !ok {
			pendingUsers = append(pendingUsers, u)
		}
	}

	report := &AcknowledgmentReport{
		PolicyID:          policy.ID,
		PolicyTitle:       policy.Title,
		PolicyVersion:     policy.Version,
		TotalUsers:        len(employees),
		AcknowledgedCount: len(acknowledged),
		PendingCount:      len(pendingUsers),
		PendingUsers:      pendingUsers,
	}
	if report.TotalUsers > 0 {
		report.AcknowledgmentRate = round2(float64(report.AcknowledgedCount) / float64(report.TotalUsers) * 100)
	}
	return report, nil
}

type RiskRegisterEntry struct {
	ID                 uint              `json:"id"`
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	Likelihood         int               `json:"likelihood"`
	Impact             int               `json:"impact"`
	RiskScore          int               `json:"risk_score"`
	RiskLevel          models.RiskLevel  `json:"risk_level"`
	Category           string            `json:"category"`
	Status             models.RiskStatus `json:"status"`
	Owner              string            `json:"owner"`
	MitigatingControls []string          `json:"mitigating_controls"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// BuildRiskRegister — реестр рисков с именем владельца (или
// "Unassigned", если владелец не назначен либо удалён).
func BuildRiskRegister(db *gorm.DB) ([]RiskRegisterEntry, error) {
	var risks []models.Risk
	if err := db.Preload("Owner").Preload("Controls").Order("id asc").Find(&risks).Error; err != nil {
		return nil, err
	}

	register := make([]RiskRegisterEntry, 0, len(risks))
	for _, risk := range risks {
		owner := unassignedOwner
		if risk.Owner != nil {
			owner = risk.Owner.FullName
		}
		controlTitles := make([]string, 0, len(risk.Controls))
		for _, control := range risk.Controls {
			controlTitles = append(controlTitles, control.Title)
		}
		register = append(register, RiskRegisterEntry{
			ID:                 risk.ID,
			Title:              risk.Title,
			Description:        risk.Description,
			Likelihood:         risk.Likelihood,
			Impact:             risk.Impact,
			RiskScore:          risk.RiskScore,
			RiskLevel:          risk.RiskLevel,
			Category:           risk.Category,
			Status:             risk.Status,
			Owner:              owner,
			MitigatingControls: controlTitles,
			CreatedAt:          risk.CreatedAt,
			UpdatedAt:          risk.UpdatedAt,
		})
	}
	return register, nil
}

type ComplianceReportRow struct {
	RequirementCode        string               `json:"requirement_code"`
	RequirementTitle       string               `json:"requirement_title"`
	RequirementDescription string               `json:"requirement_description"`
	ControlID              uint                 `json:"control_id"`
	ControlTitle           string               `json:"control_title"`
	ControlStatus          models.ControlStatus `json:"control_status"`
	ControlOwner           string               `json:"control_owner"`
	EvidenceCount          int                  `json:"evidence_count"`
	LastChecked            *time.Time           `json:"last_checked"`
}

type ComplianceReport struct {
	FrameworkName    string                `json:"framework_name"`
	FrameworkVersion string                `json:"framework_version"`
	ReportDate       time.Time             `json:"report_date"`
	Requirements     []ComplianceReportRow `json:"requirements"`
}

// BuildComplianceReport — построчный отчёт требование×контроль по
// одному фреймворку.
func BuildComplianceReport(db *gorm.DB, frameworkID uint) (*ComplianceReport, error) {
	var framework models.Framework
	if err := db.First(&framework, frameworkID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("framework", frameworkID)
		}
		return nil, err
	}

	var requirements []models.Requirement
	if err := db.Preload("Controls.Owner").Preload("Controls.Evidence").
		Where("framework_id = ?", frameworkID).
		Order("id asc").Find(&requirements).Error; err != nil {
		return nil, err
	}

	rows := make([]ComplianceReportRow, 0)
	for _, req := range requirements {
		for _, control := range req.Controls {
			owner := unassignedOwner
			if control.Owner != nil {
				owner = control.Owner.FullName
			}
			rows = append(rows, ComplianceReportRow{
				RequirementCode:        req.Code,
				RequirementTitle:       req.Title,
				RequirementDescription: req.Description,
				ControlID:              control.ID,
				ControlTitle:           control.Title,
				ControlStatus:          control.Status,
				ControlOwner:           owner,
				EvidenceCount:          len(control.Evidence),
				LastChecked:            control.LastChecked,
			})
		}
	}

	return &ComplianceReport{
		FrameworkName:    framework.Name,
		FrameworkVersion: framework.Version,
		ReportDate:       time.Now().UTC(),
		Requirements:     rows,
	}, nil
}
