package entities

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	TTS     TTSConfig     `toml:"tts"`
	Export  ExportConfig  `toml:"export"`
	Logging LoggingConfig `toml:"logging"`
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}
	if err := c.TTS.Validate(); err != nil {
		return fmt.Errorf("tts config: %w", err)
	}
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	Environment     string   `toml:"environment"`
	CORSOrigins     []string `toml:"cors_origins"`
}

// Validate validates server configuration
func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if s.Host != "" {
		if ip := net.ParseIP(s.Host); ip == nil {
			if _, err := net.LookupHost(s.Host); err != nil {
				return fmt.Errorf("invalid host: %w", err)
			}
		}
	}

	if s.ReadTimeout < 0 {
		return errors.New("read timeout must be non-negative")
	}
	if s.WriteTimeout < 0 {
		return errors.New("write timeout must be non-negative")
	}
	if s.ShutdownTimeout < 0 {
		return errors.New("shutdown timeout must be non-negative")
	}

	for _, origin := range s.CORSOrigins {
		if origin == "" {
			return errors.New("CORS origin cannot be empty")
		}
		if origin == "*" {
			continue
		}
		if len(origin) < 7 || (!strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://")) {
			return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
		}
	}

	return nil
}

// GetReadTimeout returns the read timeout as a duration
func (s ServerConfig) GetReadTimeout() time.Duration {
	if s.ReadTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.ReadTimeout) * time.Second
}

// GetWriteTimeout returns the write timeout as a duration
func (s ServerConfig) GetWriteTimeout() time.Duration {
	if s.WriteTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.WriteTimeout) * time.Second
}

// GetShutdownTimeout returns the shutdown timeout as a duration
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	if s.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// GetCORSOrigins returns CORS origins with defaults if empty
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) == 0 {
		return []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:8080",
			"http://127.0.0.1:8080",
		}
	}
	return s.CORSOrigins
}

// IsDevelopment returns true if the server is running in development mode
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "development" || s.Environment == ""
}

// StorageConfig contains deck database and audio blob store configuration
type StorageConfig struct {
	DatabasePath string `toml:"database_path"`
	AudioDir     string `toml:"audio_dir"`
}

// Validate validates storage configuration
func (s StorageConfig) Validate() error {
	if s.DatabasePath != "" && !filepath.IsAbs(s.DatabasePath) {
		return errors.New("database path must be absolute")
	}
	if s.AudioDir != "" && !filepath.IsAbs(s.AudioDir) {
		return errors.New("audio directory must be absolute")
	}
	return nil
}

// TTSConfig contains speech synthesis configuration. The lead-in and buffer
// values are carried over from the original playback tuning rather than
// derived; treat them as opaque.
type TTSConfig struct {
	APIKey            string `toml:"api_key"`
	VoiceID           string `toml:"voice_id"`
	Model             string `toml:"model"`
	Endpoint          string `toml:"endpoint"`
	BatchSize         int    `toml:"batch_size"`
	LeadInAutoslide   int    `toml:"lead_in_autoslide"`
	AudioBufferMS     int    `toml:"audio_buffer_ms"`
	DefaultDurationMS int    `toml:"default_duration_ms"`
}

// Validate validates TTS configuration
func (t TTSConfig) Validate() error {
	if t.BatchSize < 0 {
		return errors.New("batch size must be non-negative")
	}
	if t.AudioBufferMS < 0 {
		return errors.New("audio buffer must be non-negative")
	}
	if t.DefaultDurationMS < 0 {
		return errors.New("default duration must be non-negative")
	}
	return nil
}

// GetBatchSize returns the synthesis concurrency cap with default
func (t TTSConfig) GetBatchSize() int {
	if t.BatchSize <= 0 {
		return 3
	}
	return t.BatchSize
}

// GetVoiceID returns the voice with default
func (t TTSConfig) GetVoiceID() string {
	if t.VoiceID == "" {
		return "21m00Tcm4TlvDq8ikWAM"
	}
	return t.VoiceID
}

// GetModel returns the synthesis model with default
func (t TTSConfig) GetModel() string {
	if t.Model == "" {
		return "eleven_turbo_v2"
	}
	return t.Model
}

// GetEndpoint returns the provider endpoint with default
func (t TTSConfig) GetEndpoint() string {
	if t.Endpoint == "" {
		return "https://api.elevenlabs.io"
	}
	return strings.TrimSuffix(t.Endpoint, "/")
}

// GetLeadInAutoslide returns the lead-in fragment autoslide value
func (t TTSConfig) GetLeadInAutoslide() int {
	if t.LeadInAutoslide <= 0 {
		return 10
	}
	return t.LeadInAutoslide
}

// GetAudioBufferMS returns the per-fragment auto-advance buffer
func (t TTSConfig) GetAudioBufferMS() int {
	if t.AudioBufferMS <= 0 {
		return 250
	}
	return t.AudioBufferMS
}

// GetDefaultDurationMS returns the fallback duration when probing fails
func (t TTSConfig) GetDefaultDurationMS() int {
	if t.DefaultDurationMS <= 0 {
		return 1000
	}
	return t.DefaultDurationMS
}

// ExportConfig contains export theme configuration
type ExportConfig struct {
	ThemesDir    string `toml:"themes_dir"`
	DefaultTheme string `toml:"default_theme"`
}

// Validate validates export configuration
func (e ExportConfig) Validate() error {
	if e.ThemesDir != "" && !filepath.IsAbs(e.ThemesDir) {
		return errors.New("themes directory must be absolute")
	}
	return nil
}

// GetDefaultTheme returns the export theme with default
func (e ExportConfig) GetDefaultTheme() string {
	if e.DefaultTheme == "" {
		return "white"
	}
	return e.DefaultTheme
}

// LogLevel represents logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level   string `toml:"level"` // debug, info, warn, error
	Verbose bool   `toml:"verbose"`
}

// Validate validates logging configuration
func (l LoggingConfig) Validate() error {
	switch LogLevel(l.Level) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, "":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l.Level)
	}
	return nil
}

// GetLevel returns the log level with default
func (l LoggingConfig) GetLevel() LogLevel {
	if l.Level == "" {
		return LogLevelInfo
	}
	return LogLevel(l.Level)
}
