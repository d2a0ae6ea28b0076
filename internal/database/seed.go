package database

import (
	"fmt"
	"os"

	"isms-platform/internal/engine"
	"isms-platform/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type seedRequirement struct {
	Code        string `yaml:"code"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type seedFramework struct {
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description"`
	Version      string            `yaml:"version"`
	Requirements []seedRequirement `yaml:"requirements"`
}

type seedUser struct {
	Email    string          `yaml:"email"`
	FullName string          `yaml:"full_name"`
	Password string          `yaml:"password"`
	Role     models.UserRole `yaml:"role"`
}

type seedControl struct {
	Title                 string               `yaml:"title"`
	Description           string               `yaml:"description"`
	ImplementationDetails string               `yaml:"implementation_details"`
	Status                models.ControlStatus `yaml:"status"`
	Requirements          []string             `yaml:"requirements"` // коды требований
}

type seedPolicy struct {
	Title     string `yaml:"title"`
	Content   string `yaml:"content"`
	Version   string `yaml:"version"`
	Published bool   `yaml:"published"`
}

type seedRisk struct {
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Category    string            `yaml:"category"`
	Likelihood  int               `yaml:"likelihood"`
	Impact      int               `yaml:"impact"`
	Status      models.RiskStatus `yaml:"status"`
	Controls    []string          `yaml:"controls"` // названия контролей
}

type seedAlert struct {
	Title       string               `yaml:"title"`
	Description string               `yaml:"description"`
	Severity    models.AlertSeverity `yaml:"severity"`
}

type seedFixture struct {
	Users      []seedUser      `yaml:"users"`
	Frameworks []seedFramework `yaml:"frameworks"`
	Controls   []seedControl   `yaml:"controls"`
	Policies   []seedPolicy    `yaml:"policies"`
	Risks      []seedRisk      `yaml:"risks"`
	Alerts     []seedAlert     `yaml:"alerts"`
}

// Seed загружает YAML-фикстуру и досоздаёт недостающие записи. Повторный
// запуск безопасен: существующие сущности определяются по естественным
// ключам (email, название) и пропускаются.
func Seed(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixture: %w", err)
	}
	var fixture seedFixture
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		return fmt.Errorf("parse fixture: %w", err)
	}

	for _, u := range fixture.Users {
		if err := seedOneUser(u); err != nil {
			return err
		}
	}
	for _, fw := range fixture.Frameworks {
		if err := seedOneFramework(fw); err != nil {
			return err
		}
	}
	for _, c := range fixture.Controls {
		if err := seedOneControl(c); err != nil {
			return err
		}
	}
	for _, p := range fixture.Policies {
		if err := seedOnePolicy(p); err != nil {
			return err
		}
	}

	actorID, err := seedActor()
	if err != nil {
		return err
	}
	for _, r := range fixture.Risks {
		if err := seedOneRisk(r, actorID); err != nil {
			return err
		}
	}
	for _, a := range fixture.Alerts {
		if err := seedOneAlert(a); err != nil {
			return err
		}
	}

	log.Info().Str("fixture", path).Msg("seeding finished")
	return nil
}

// история и производные поля рисков должны писаться от чьего-то имени;
// берём первого админа
func seedActor() (uint, error) {
	var admin models.User
	if err := DB.Where("role = ?", models.RoleAdmin).Order("id asc").First(&admin).Error; err != nil {
		return 0, fmt.Errorf("no admin user to seed as: %w", err)
	}
	return admin.ID, nil
}

func seedOneUser(in seedUser) error {
	var count int64
	if err := DB.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if !in.Role.Valid() {
		return fmt.Errorf("seed user %s: unknown role %q", in.Email, in.Role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := models.User{
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: string(hash),
		Role:         in.Role,
		IsActive:     true,
	}
	if err := DB.Create(&user).Error; err != nil {
		return err
	}
	log.Info().Str("email", in.Email).Str("role", string(in.Role)).Msg("seeded user")
	return nil
}

func seedOneFramework(in seedFramework) error {
	var count int64
	if err := DB.Model(&models.Framework{}).Where("name = ?", in.Name).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	framework := models.Framework{
		Name:        in.Name,
		Description: in.Description,
		Version:     in.Version,
	}
	if err := DB.Create(&framework).Error; err != nil {
		return err
	}
	for _, req := range in.Requirements {
		requirement := models.Requirement{
			FrameworkID: framework.ID,
			Code:        req.Code,
			Title:       req.Title,
			Description: req.Description,
		}
		if err := DB.Create(&requirement).Error; err != nil {
			return err
		}
	}
	log.Info().Str("framework", in.Name).Int("requirements", len(in.Requirements)).Msg("seeded framework")
	return nil
}

func seedOneControl(in seedControl) error {
	var count int64
	if err := DB.Model(&models.Control{}).Where("title = ?", in.Title).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	var reqIDs []uint
	if len(in.Requirements) > 0 {
		if err := DB.Model(&models.Requirement{}).
			Where("code IN ?", in.Requirements).
			Pluck("id", &reqIDs).Error; err != nil {
			return err
		}
	}
	_, err := engine.CreateControl(DB, engine.CreateControlInput{
		Title:                 in.Title,
		Description:           in.Description,
		ImplementationDetails: in.ImplementationDetails,
		Status:                in.Status,
		RequirementIDs:        reqIDs,
	})
	return err
}

func seedOnePolicy(in seedPolicy) error {
	var count int64
	if err := DB.Model(&models.Policy{}).Where("title = ?", in.Title).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	policy, err := engine.CreatePolicy(DB, engine.CreatePolicyInput{
		Title:   in.Title,
		Content: in.Content,
		Version: in.Version,
	})
	if err != nil {
		return err
	}
	if in.Published {
		if _, err := engine.PublishPolicy(DB, policy.ID); err != nil {
			return err
		}
	}
	return nil
}

func seedOneRisk(in seedRisk, actorID uint) error {
	var count int64
	if err := DB.Model(&models.Risk{}).Where("title = ?", in.Title).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	var controlIDs []uint
	if len(in.Controls) > 0 {
		if err := DB.Model(&models.Control{}).
			Where("title IN ?", in.Controls).
			Pluck("id", &controlIDs).Error; err != nil {
			return err
		}
	}
	_, err := engine.CreateRisk(DB, actorID, engine.CreateRiskInput{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Likelihood:  in.Likelihood,
		Impact:      in.Impact,
		Status:      in.Status,
		ControlIDs:  controlIDs,
	})
	return err
}

func seedOneAlert(in seedAlert) error {
	var count int64
	if err := DB.Model(&models.Alert{}).Where("title = ?", in.Title).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	severity := in.Severity
	if severity == "" {
		severity = models.AlertInfo
	}
	alert := models.Alert{
		Title:       in.Title,
		Description: in.Description,
		Severity:    severity,
	}
	return DB.Create(&alert).Error
}
