package config

import (
	"os"
	"strconv"

	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
)

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Merge merges multiple configurations with later configs taking precedence
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	result := deepCopy(configs[0])

	for i := 1; i < len(configs); i++ {
		if configs[i] != nil {
			m.mergeInto(result, configs[i])
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	if port, ok := flags["port"].(int); ok && port > 0 {
		result.Server.Port = port
	}

	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	if dbPath, ok := flags["db"].(string); ok && dbPath != "" {
		result.Storage.DatabasePath = dbPath
	}

	if audioDir, ok := flags["audio-dir"].(string); ok && audioDir != "" {
		result.Storage.AudioDir = audioDir
	}

	if theme, ok := flags["theme"].(string); ok && theme != "" {
		result.Export.DefaultTheme = theme
	}

	if apiKey, ok := flags["tts-key"].(string); ok && apiKey != "" {
		result.TTS.APIKey = apiKey
	}

	if voice, ok := flags["voice"].(string); ok && voice != "" {
		result.TTS.VoiceID = voice
	}

	if verbose, ok := flags["verbose"].(bool); ok && verbose {
		result.Logging.Verbose = true
	}

	return result
}

// ApplyEnvVars applies environment variable overrides to a configuration
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	if host := os.Getenv("CHALKTALK_HOST"); host != "" {
		result.Server.Host = host
	}

	if portStr := os.Getenv("CHALKTALK_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			result.Server.Port = port
		}
	}

	if env := os.Getenv("CHALKTALK_ENV"); env != "" {
		result.Server.Environment = env
	}

	if dbPath := os.Getenv("CHALKTALK_DB_PATH"); dbPath != "" {
		result.Storage.DatabasePath = dbPath
	}

	if audioDir := os.Getenv("CHALKTALK_AUDIO_DIR"); audioDir != "" {
		result.Storage.AudioDir = audioDir
	}

	if apiKey := os.Getenv("ELEVENLABS_API_KEY"); apiKey != "" {
		result.TTS.APIKey = apiKey
	}

	if voice := os.Getenv("CHALKTALK_TTS_VOICE"); voice != "" {
		result.TTS.VoiceID = voice
	}

	if model := os.Getenv("CHALKTALK_TTS_MODEL"); model != "" {
		result.TTS.Model = model
	}

	if endpoint := os.Getenv("CHALKTALK_TTS_ENDPOINT"); endpoint != "" {
		result.TTS.Endpoint = endpoint
	}

	if batchStr := os.Getenv("CHALKTALK_TTS_BATCH"); batchStr != "" {
		if batch, err := strconv.Atoi(batchStr); err == nil && batch > 0 {
			result.TTS.BatchSize = batch
		}
	}

	if themesDir := os.Getenv("CHALKTALK_THEMES_DIR"); themesDir != "" {
		result.Export.ThemesDir = themesDir
	}

	if theme := os.Getenv("CHALKTALK_EXPORT_THEME"); theme != "" {
		result.Export.DefaultTheme = theme
	}

	if level := os.Getenv("CHALKTALK_LOG_LEVEL"); level != "" {
		result.Logging.Level = level
	}

	if verboseStr := os.Getenv("CHALKTALK_LOG_VERBOSE"); verboseStr != "" {
		if verbose, err := strconv.ParseBool(verboseStr); err == nil {
			result.Logging.Verbose = verbose
		}
	}

	return result
}

// mergeInto merges src into dst, with src values taking precedence when set
func (m *ConfigMerger) mergeInto(dst, src *entities.Config) {
	if src.Server.Host != "" {
		dst.Server.Host = src.Server.Host
	}
	if src.Server.Port > 0 {
		dst.Server.Port = src.Server.Port
	}
	if src.Server.ReadTimeout > 0 {
		dst.Server.ReadTimeout = src.Server.ReadTimeout
	}
	if src.Server.WriteTimeout > 0 {
		dst.Server.WriteTimeout = src.Server.WriteTimeout
	}
	if src.Server.ShutdownTimeout > 0 {
		dst.Server.ShutdownTimeout = src.Server.ShutdownTimeout
	}
	if src.Server.Environment != "" {
		dst.Server.Environment = src.Server.Environment
	}
	if len(src.Server.CORSOrigins) > 0 {
		dst.Server.CORSOrigins = append([]string(nil), src.Server.CORSOrigins...)
	}

	if src.Storage.DatabasePath != "" {
		dst.Storage.DatabasePath = src.Storage.DatabasePath
	}
	if src.Storage.AudioDir != "" {
		dst.Storage.AudioDir = src.Storage.AudioDir
	}

	if src.TTS.APIKey != "" {
		dst.TTS.APIKey = src.TTS.APIKey
	}
	if src.TTS.VoiceID != "" {
		dst.TTS.VoiceID = src.TTS.VoiceID
	}
	if src.TTS.Model != "" {
		dst.TTS.Model = src.TTS.Model
	}
	if src.TTS.Endpoint != "" {
		dst.TTS.Endpoint = src.TTS.Endpoint
	}
	if src.TTS.BatchSize > 0 {
		dst.TTS.BatchSize = src.TTS.BatchSize
	}
	if src.TTS.LeadInAutoslide > 0 {
		dst.TTS.LeadInAutoslide = src.TTS.LeadInAutoslide
	}
	if src.TTS.AudioBufferMS > 0 {
		dst.TTS.AudioBufferMS = src.TTS.AudioBufferMS
	}
	if src.TTS.DefaultDurationMS > 0 {
		dst.TTS.DefaultDurationMS = src.TTS.DefaultDurationMS
	}

	if src.Export.ThemesDir != "" {
		dst.Export.ThemesDir = src.Export.ThemesDir
	}
	if src.Export.DefaultTheme != "" {
		dst.Export.DefaultTheme = src.Export.DefaultTheme
	}

	if src.Logging.Level != "" {
		dst.Logging.Level = src.Logging.Level
	}
	if src.Logging.Verbose {
		dst.Logging.Verbose = true
	}
}

// deepCopy creates an independent copy of a configuration
func deepCopy(config *entities.Config) *entities.Config {
	if config == nil {
		return GetDefaultConfig()
	}

	result := *config
	result.Server.CORSOrigins = append([]string(nil), config.Server.CORSOrigins...)
	return &result
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
