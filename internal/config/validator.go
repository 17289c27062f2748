package config

import (
	"fmt"
	"os"
	"strings"

	"filewarden/internal/common"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ValidateConfig performs structural validation on the GlobalConfig.
// Structural problems (negative timeouts, malformed endpoints) are fatal at
// startup; entries that are merely unusable at runtime are handled by
// SanitizeConfig instead.
func ValidateConfig(cfg *GlobalConfig) error {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "debug", "info", "warn", "error", "fatal":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "json":
			return true
		default:
			return false
		}
	})

	if err := validate.Struct(cfg); err != nil {
		return common.WrapError(err, "config validation failed")
	}
	return nil
}

// SanitizeConfig disables configuration entries that cannot be used at
// runtime: watched directories that do not exist and enabled providers
// without an API key. Each removal is logged and collected; none are fatal,
// the affected feature is simply turned off.
func SanitizeConfig(cfg *GlobalConfig, log zerolog.Logger) []string {
	var warnings []string

	kept := cfg.WatcherConfig.Directories[:0]
	for _, dir := range cfg.WatcherConfig.Directories {
		expanded := ExpandHome(dir)
		info, err := os.Stat(expanded)
		if err != nil || !info.IsDir() {
			msg := fmt.Sprintf("watched directory '%s' does not exist, skipping", dir)
			warnings = append(warnings, msg)
			log.Warn().Str("directory", dir).Msg("Watched directory does not exist, skipping")
			continue
		}
		kept = append(kept, expanded)
	}
	cfg.WatcherConfig.Directories = kept

	if cfg.ProvidersConfig.VirusTotal.Enabled && cfg.ProvidersConfig.VirusTotal.APIKey == "" {
		cfg.ProvidersConfig.VirusTotal.Enabled = false
		warnings = append(warnings, "virustotal provider enabled without an API key, disabling")
		log.Warn().Msg("VirusTotal provider enabled without an API key, disabling")
	}
	if cfg.ProvidersConfig.SafeBrowsing.Enabled && cfg.ProvidersConfig.SafeBrowsing.APIKey == "" {
		cfg.ProvidersConfig.SafeBrowsing.Enabled = false
		warnings = append(warnings, "safe browsing provider enabled without an API key, disabling")
		log.Warn().Msg("Safe Browsing provider enabled without an API key, disabling")
	}

	return warnings
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return home + strings.TrimPrefix(path, "~")
		}
	}
	return path
}
