package config

import "time"

// APIConfig holds runtime configuration for the auth service.
type APIConfig struct {
	Environment        string
	Addr               string
	DatabaseURL        string
	MigrationsDir      string
	TokenTTL           time.Duration
	TokenSweepEvery    time.Duration
	Argon2MemoryKB     int
	Argon2Iterations   int
	Argon2Parallelism  int
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
}

// LoadAPIConfig constructs an APIConfig from environment variables.
func LoadAPIConfig() APIConfig {
	return APIConfig{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("API_ADDR", ":8000"),
		DatabaseURL:        GetString("DATABASE_URL", "postgres://oficina:oficina@db:5432/oficina?sslmode=disable"),
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", "./db/migrations"),
		TokenTTL:           time.Duration(GetInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		TokenSweepEvery:    time.Duration(GetInt("TOKEN_SWEEP_MINUTES", 60)) * time.Minute,
		Argon2MemoryKB:     GetInt("ARGON2_MEMORY_KB", 65536),
		Argon2Iterations:   GetInt("ARGON2_ITERATIONS", 1),
		Argon2Parallelism:  GetInt("ARGON2_PARALLELISM", 4),
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
	}
}
