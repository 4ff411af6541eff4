package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var allEnvVars = []string{
	"HOST", "PORT", "READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT", "SHUTDOWN_TIMEOUT", "ENVIRONMENT", "CORS_ORIGINS",
	"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE", "DB_SQLITE_PATH",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME", "DB_LOG_LEVEL",
	"REDIS_ENABLED", "REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "REDIS_POOL_SIZE",
	"REDIS_MIN_IDLE_CONNS", "REDIS_MAX_RETRIES", "REDIS_DIAL_TIMEOUT", "REDIS_READ_TIMEOUT", "REDIS_WRITE_TIMEOUT",
	"SUMMARY_CACHE_TTL",
	"JWT_SECRET", "JWT_ISSUER", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "BCRYPT_COST",
	"RATE_LIMIT_ENABLED", "RATE_LIMIT_RPM", "RATE_LIMIT_BURST", "RATE_LIMIT_CLEANUP",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allEnvVars {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error with default config, got: %v", err)
	}

	if config.Server.Host != "localhost" {
		t.Errorf("Expected default host 'localhost', got %s", config.Server.Host)
	}
	if config.Server.Port != "8080" {
		t.Errorf("Expected default port '8080', got %s", config.Server.Port)
	}
	if config.Server.Environment != "development" {
		t.Errorf("Expected default environment 'development', got %s", config.Server.Environment)
	}
	if config.Database.Driver != "postgres" {
		t.Errorf("Expected default DB driver 'postgres', got %s", config.Database.Driver)
	}
	if config.Database.Name != "task_management" {
		t.Errorf("Expected default DB name 'task_management', got %s", config.Database.Name)
	}
	if config.Database.MaxOpenConns != 25 {
		t.Errorf("Expected default max open conns 25, got %d", config.Database.MaxOpenConns)
	}
	if config.Redis.Enabled {
		t.Error("Expected Redis to be disabled by default")
	}
	if config.Cache.SummaryTTL != time.Minute {
		t.Errorf("Expected default summary TTL 1m, got %v", config.Cache.SummaryTTL)
	}
	if config.Auth.BCryptCost != 10 {
		t.Errorf("Expected default bcrypt cost 10, got %d", config.Auth.BCryptCost)
	}
	if config.Auth.AccessTokenTTL != 24*time.Hour {
		t.Errorf("Expected default access token TTL 24h, got %v", config.Auth.AccessTokenTTL)
	}
	if !config.RateLimit.Enabled {
		t.Error("Expected rate limiting to be enabled by default")
	}
	if config.RateLimit.RequestsPerMin != 100 {
		t.Errorf("Expected default requests per minute 100, got %d", config.RateLimit.RequestsPerMin)
	}
}

func TestLoadConfig_CustomEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("PORT", "9000")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DB_PASSWORD", "secure_password")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("JWT_SECRET", "super-secret")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if config.Server.Host != "0.0.0.0" || config.Server.Port != "9000" {
		t.Errorf("Unexpected server address %s", config.GetServerAddr())
	}
	if config.Database.MaxOpenConns != 50 {
		t.Errorf("Expected max open conns 50, got %d", config.Database.MaxOpenConns)
	}
	if !config.Redis.Enabled {
		t.Error("Expected Redis to be enabled")
	}
	if config.Auth.AccessTokenTTL != 30*time.Minute {
		t.Errorf("Expected access token TTL 30m, got %v", config.Auth.AccessTokenTTL)
	}
	if len(config.Server.CORSOrigins) != 2 || config.Server.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("Unexpected CORS origins %v", config.Server.CORSOrigins)
	}
}

func TestLoadConfig_ProductionValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "super-secret")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error when database password is missing in production")
	}
}

func TestLoadConfig_ProductionJWTValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DB_PASSWORD", "secure_password")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error when JWT secret is left at its default in production")
	}
}

func TestLoadConfig_UnsupportedDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "mysql")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}

func TestLoad_TOMLFileWithEnvOverride(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "tasktimer.toml")
	content := `
[server]
port = "7000"
environment = "staging"

[database]
driver = "sqlite"
sqlite_path = "/tmp/tasks.db"

[cache]
summary_ttl = "5m"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("PORT", "7100")

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if config.Server.Port != "7100" {
		t.Errorf("Expected env to override file port, got %s", config.Server.Port)
	}
	if config.Server.Environment != "staging" {
		t.Errorf("Expected environment from file, got %s", config.Server.Environment)
	}
	if config.GetDatabaseDSN() != "/tmp/tasks.db" {
		t.Errorf("Expected sqlite DSN from file, got %s", config.GetDatabaseDSN())
	}
	if config.Cache.SummaryTTL != 5*time.Minute {
		t.Errorf("Expected summary TTL 5m, got %v", config.Cache.SummaryTTL)
	}
	if config.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Expected untouched defaults to survive, got %v", config.Server.ReadTimeout)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestConfig_GetDatabaseDSN(t *testing.T) {
	config := Defaults()
	config.Database.Password = "pw"

	expected := "host=localhost port=5432 user=postgres password=pw dbname=task_management sslmode=disable TimeZone=UTC"
	if dsn := config.GetDatabaseDSN(); dsn != expected {
		t.Errorf("Expected DSN %q, got %q", expected, dsn)
	}
}

func TestConfig_GetRedisAddr(t *testing.T) {
	config := Defaults()
	if addr := config.GetRedisAddr(); addr != "localhost:6379" {
		t.Errorf("Expected redis addr localhost:6379, got %s", addr)
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		environment string
		expected    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		config := &Config{Server: ServerConfig{Environment: tt.environment}}
		if got := config.IsProduction(); got != tt.expected {
			t.Errorf("IsProduction() for %q = %v, want %v", tt.environment, got, tt.expected)
		}
	}
}

func TestGetEnvAsInt(t *testing.T) {
	key := "TEST_INT_VAR"

	t.Setenv(key, "100")
	if v := getEnvAsInt(key, 42); v != 100 {
		t.Errorf("Expected 100, got %d", v)
	}

	t.Setenv(key, "not-a-number")
	if v := getEnvAsInt(key, 42); v != 42 {
		t.Errorf("Expected fallback 42, got %d", v)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	key := "TEST_BOOL_VAR"
	testCases := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"1", true},
		{"false", false},
		{"0", false},
		{"garbage", true},
	}

	for _, tc := range testCases {
		t.Setenv(key, tc.value)
		if v := getEnvAsBool(key, true); v != tc.expected {
			t.Errorf("getEnvAsBool(%q) = %v, want %v", tc.value, v, tc.expected)
		}
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"

	t.Setenv(key, "5m")
	if v := getEnvAsDuration(key, time.Second); v != 5*time.Minute {
		t.Errorf("Expected 5m, got %v", v)
	}

	t.Setenv(key, "not-a-duration")
	if v := getEnvAsDuration(key, time.Second); v != time.Second {
		t.Errorf("Expected fallback 1s, got %v", v)
	}
}

func BenchmarkGetEnvAsDuration(b *testing.B) {
	os.Setenv("BENCH_DURATION", "30s")
	defer os.Unsetenv("BENCH_DURATION")

	for i := 0; i < b.N; i++ {
		_ = getEnvAsDuration("BENCH_DURATION", time.Minute)
	}
}
