package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/cardops/emboss-services/internal/embosssvc/dateparse"
)

type Config struct {
	Port          string
	JWTSecret     string
	RateLimit     int
	DataDir       string
	MasterFile    string
	UsersFile     string
	DateOrder     dateparse.Order
	AdminPassword string
}

func Load() Config {
	dataDir := envOr("DATA_DIR", "data")
	rateLimit, err := strconv.Atoi(os.Getenv("RATE_LIMIT"))
	if err != nil || rateLimit <= 0 {
		rateLimit = 60
	}
	return Config{
		Port:          envOr("SERVICE_PORT", "8080"),
		JWTSecret:     os.Getenv("JWT_SECRET_KEY"),
		RateLimit:     rateLimit,
		DataDir:       dataDir,
		MasterFile:    envOr("MASTER_FILE", filepath.Join(dataDir, "master_data.xlsx")),
		UsersFile:     envOr("USERS_FILE", filepath.Join(dataDir, "users.csv")),
		DateOrder:     dateparse.ParseOrder(os.Getenv("DATE_ORDER")),
		AdminPassword: envOr("ADMIN_PASSWORD", "change-me"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
