package configloader

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/config"
	"github.com/yaklabco/gomdedit/pkg/ot"
	"github.com/yaklabco/gomdedit/pkg/style"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "transport.url").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// knownFlavors lists valid flavor values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownFlavors = map[config.Flavor]bool{
	config.FlavorCommonMark: true,
	config.FlavorGFM:        true,
}

// Validate checks a configuration for errors and warnings. Zero values are
// treated as unset and pass.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Flavor != "" && !knownFlavors[cfg.Flavor] {
		result.fail("flavor", cfg.Flavor, "invalid flavor %q; must be one of: commonmark, gfm", cfg.Flavor)
	}

	if cfg.OffsetUnit != "" {
		if _, err := ot.ParseUnit(cfg.OffsetUnit); err != nil {
			result.fail("offset_unit", cfg.OffsetUnit, "%v", err)
		}
	}

	if cfg.LogLevel != "" {
		if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
			result.fail("log_level", cfg.LogLevel, "%v", err)
		}
	}

	validateTransport(cfg.Transport, result)
	validateImages(cfg.Images, result)

	if len(cfg.Theme) > 0 {
		if _, err := style.DefaultTheme().Override(cfg.Theme); err != nil {
			result.fail("theme", nil, "%v", err)
		}
	}

	return result
}

func validateTransport(t config.TransportConfig, result *ValidationResult) {
	if t.URL != "" {
		u, err := url.Parse(t.URL)
		switch {
		case err != nil:
			result.fail("transport.url", t.URL, "invalid URL: %v", err)
		case u.Scheme != "ws" && u.Scheme != "wss":
			result.fail("transport.url", t.URL, "scheme must be ws or wss, got %q", u.Scheme)
		case u.Host == "":
			result.fail("transport.url", t.URL, "missing host")
		}
	}
	if t.HandshakeTimeout < 0 {
		result.fail("transport.handshake_timeout", t.HandshakeTimeout, "must be >= 0")
	}
	if t.WriteTimeout < 0 {
		result.fail("transport.write_timeout", t.WriteTimeout, "must be >= 0")
	}
}

func validateImages(img config.ImagesConfig, result *ValidationResult) {
	if img.MaxBytes < 0 {
		result.fail("images.max_bytes", img.MaxBytes, "must be >= 0")
	}
	if img.Timeout < 0 {
		result.fail("images.timeout", img.Timeout, "must be >= 0")
	}
	if img.Width < 0 || img.Height < 0 {
		result.fail("images", fmt.Sprintf("%gx%g", img.Width, img.Height), "width and height must be >= 0")
	}
	if img.Scale < 0 {
		result.fail("images.scale", img.Scale, "must be >= 0")
	}
	if img.Scale > 8 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "images.scale",
			Value:   img.Scale,
			Message: fmt.Sprintf("scale %g is unusually large", img.Scale),
		})
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)
	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}
	return result
}

// IsValidFlavor returns true if the flavor is valid.
func IsValidFlavor(f config.Flavor) bool {
	return knownFlavors[f]
}
