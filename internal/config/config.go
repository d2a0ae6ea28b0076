package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DBDSN         string
	ServerPort    string
	SessionSecret string
	EvidenceDir   string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		EvidenceDir:   os.Getenv("EVIDENCE_DIR"),
	}

	if cfg.DBDSN == "" {
		log.Fatal().Msg("DB_DSN is not set")
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.SessionSecret == "" {
		log.Fatal().Msg("SESSION_SECRET is not set")
	}
	if cfg.EvidenceDir == "" {
		cfg.EvidenceDir = "./evidence"
	}

	return cfg
}
