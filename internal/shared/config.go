package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string

	UploadDir      string
	MaxUploadBytes int64

	// Admin identity comes from the environment; there is no in-process
	// credential store. AdminPassHash is a bcrypt hash.
	JWTSecret     string
	AdminUser     string
	AdminPassHash string
	LoginRPS      int

	SweepWorkers int
	SweepMinAge  time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/tutelo?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		UploadDir:      env("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: int64(atoi("MAX_UPLOAD_BYTES", 32<<20)),
		JWTSecret:      env("JWT_SECRET", ""),
		AdminUser:      env("ADMIN_USER", "admin"),
		AdminPassHash:  env("ADMIN_PASS_HASH", ""),
		LoginRPS:       atoi("LOGIN_RPS", 2),
		SweepWorkers:   atoi("SWEEP_WORKERS", 4),
		SweepMinAge:    time.Duration(atoi("SWEEP_MIN_AGE_SECONDS", 3600)) * time.Second,
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; login and the admin routes are disabled")
	}
	if c.AdminPassHash == "" {
		log.Warn().Msg("ADMIN_PASS_HASH is empty; login is disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
