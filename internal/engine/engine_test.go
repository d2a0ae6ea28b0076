package engine

import (
	"fmt"
	"testing"

	"isms-platform/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB — чистая in-memory БД на каждый тест. Один коннект, иначе
// sqlite раздаёт каждому соединению отдельную память.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Framework{},
		&models.Requirement{},
		&models.Control{},
		&models.Evidence{},
		&models.Policy{},
		&models.PolicyVersion{},
		&models.PolicyAcknowledgment{},
		&models.Risk{},
		&models.RiskHistory{},
		&models.Alert{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) models.User {
	t.Helper()
	user := models.User{
		Email:        email,
		FullName:     "Test " + email,
		PasswordHash: "not-a-real-hash",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestControl(t *testing.T, db *gorm.DB, title string, status models.ControlStatus, reqIDs ...uint) *models.Control {
	t.Helper()
	control, err := CreateControl(db, CreateControlInput{
		Title:          title,
		Status:         status,
		RequirementIDs: reqIDs,
	})
	require.NoError(t, err)
	return control
}

func createTestFramework(t *testing.T, db *gorm.DB, name string, reqCount int) (models.Framework, []uint) {
	t.Helper()
	framework := models.Framework{Name: name, Version: "1.0"}
	require.NoError(t, db.Create(&framework).Error)

	reqIDs := make([]uint, 0, reqCount)
	for i := 0; i < reqCount; i++ {
		req := models.Requirement{
			FrameworkID: framework.ID,
			Code:        fmt.Sprintf("%s-%d", name, i+1),
			Title:       fmt.Sprintf("Requirement %d", i+1),
		}
		require.NoError(t, db.Create(&req).Error)
		reqIDs = append(reqIDs, req.ID)
	}
	return framework, reqIDs
}
