package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chalktalk/studio/internal/domain/entities"
)

// GetDefaultConfig returns the default configuration with environment overrides
func GetDefaultConfig() *entities.Config {
	dataDir := defaultDataDir()

	config := &entities.Config{
		Server: entities.ServerConfig{
			Host:            getEnvOrDefault("CHALKTALK_HOST", "localhost"),
			Port:            getEnvIntOrDefault("CHALKTALK_PORT", 3000),
			ReadTimeout:     getEnvIntOrDefault("CHALKTALK_READ_TIMEOUT", 30),
			WriteTimeout:    getEnvIntOrDefault("CHALKTALK_WRITE_TIMEOUT", 30),
			ShutdownTimeout: getEnvIntOrDefault("CHALKTALK_SHUTDOWN_TIMEOUT", 5),
			Environment:     getEnvOrDefault("CHALKTALK_ENV", ""),
			CORSOrigins: getEnvSliceOrDefault("CHALKTALK_CORS_ORIGINS", []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:8080",
				"http://127.0.0.1:8080",
			}),
		},
		Storage: entities.StorageConfig{
			DatabasePath: getEnvOrDefault("CHALKTALK_DB_PATH", filepath.Join(dataDir, "decks.db")),
			AudioDir:     getEnvOrDefault("CHALKTALK_AUDIO_DIR", filepath.Join(dataDir, "audio")),
		},
		TTS: entities.TTSConfig{
			APIKey:   getEnvOrDefault("ELEVENLABS_API_KEY", ""),
			VoiceID:  getEnvOrDefault("CHALKTALK_TTS_VOICE", ""),
			Model:    getEnvOrDefault("CHALKTALK_TTS_MODEL", ""),
			Endpoint: getEnvOrDefault("CHALKTALK_TTS_ENDPOINT", ""),
		},
		Export: entities.ExportConfig{
			ThemesDir:    getEnvOrDefault("CHALKTALK_THEMES_DIR", ""),
			DefaultTheme: getEnvOrDefault("CHALKTALK_EXPORT_THEME", ""),
		},
		Logging: entities.LoggingConfig{
			Level:   getEnvOrDefault("CHALKTALK_LOG_LEVEL", "info"),
			Verbose: getEnvBoolOrDefault("CHALKTALK_LOG_VERBOSE", false),
		},
	}

	return config
}

// defaultDataDir resolves where decks and audio live when nothing is
// configured.
func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.TempDir()
	}
	return filepath.Join(homeDir, ".local", "share", "chalktalk")
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns environment variable as int or default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBoolOrDefault returns environment variable as bool or default
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvSliceOrDefault returns environment variable as slice or default
func getEnvSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
