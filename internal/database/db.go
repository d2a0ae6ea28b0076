package database

import (
	"os"
	"time"

	"isms-platform/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(dsn string) {
	var err error

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		log.Info().Int("attempt", i).Int("max", maxAttempts).Msg("connecting to db")

		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			log.Info().Msg("connected to db")
			break
		}

		log.Warn().Err(err).Msg("db connection failed")
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Fatal().Err(err).Int("attempts", maxAttempts).Msg("giving up on db connection")
	}

	if err := Migrate(DB); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	createDefaultAdmin()
}

// Migrate прогоняет автомиграции для всех сущностей. Вынесено отдельно,
// чтобы тесты могли мигрировать свою БД тем же списком.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
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
	)
}

// админ только из кода/конфига
func createDefaultAdmin() {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@isms.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "Admin123!"
	}

	var count int64
	if err := DB.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		log.Error().Err(err).Msg("failed to check admin user")
		return
	}
	if count > 0 {
		// админ уже есть — ничего не делаем
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash default admin password")
		return
	}

	admin := models.User{
		Email:        email,
		FullName:     "System Administrator",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}

	if err := DB.Create(&admin).Error; err != nil {
		log.Error().Err(err).Msg("failed to create default admin")
		return
	}

	log.Info().Str("email", email).Msg("created default admin user")
}
