package bootstrap

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pat-apps/teleprompter/internal/realtime"
)

type Config struct {
	CompanionURL string
	APIBaseURL   string
	ClientName   string
	HandshakeAck string

	RetryDelay       time.Duration
	RetryMaxAttempts int

	SettingsPath string

	WorkerEnabled      bool
	WorkerCommand      []string
	WorkerDir          string
	WorkerRestartDelay time.Duration
}

func LoadConfig() *Config {
	// Missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	return &Config{
		// Empty means "defer to the settings file"; the realtime and api
		// packages apply their own defaults after that.
		CompanionURL: getEnv("COMPANION_URL", ""),
		APIBaseURL:   getEnv("API_BASE_URL", ""),
		ClientName:   getEnv("CLIENT_NAME", ""),
		HandshakeAck: getEnv("HANDSHAKE_ACK", realtime.DefaultHandshakeAck),

		RetryDelay:       getEnvDuration("RETRY_DELAY", 2*time.Second),
		RetryMaxAttempts: getEnvInt("RETRY_MAX_ATTEMPTS", 0),

		SettingsPath: getEnv("SETTINGS_PATH", "conf/settings.json"),

		WorkerEnabled:      getEnv("WORKER_ENABLED", "false") == "true",
		WorkerCommand:      parseCommand(getEnv("WORKER_COMMAND", "python3 transcriber.py")),
		WorkerDir:          getEnv("WORKER_DIR", ""),
		WorkerRestartDelay: getEnvDuration("WORKER_RESTART_DELAY", 2*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseCommand(envValue string) []string {
	var argv []string
	for _, part := range strings.Fields(envValue) {
		if part != "" {
			argv = append(argv, part)
		}
	}
	return argv
}
