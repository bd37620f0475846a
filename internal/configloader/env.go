package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/yaklabco/gomdedit/pkg/config"
)

// envVarPrefix is the prefix for all gomdedit environment variables.
const envVarPrefix = "GOMDEDIT_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeFloat
	envTypeDuration
)

// envMapping defines an environment variable to config field mapping.
type envMapping struct {
	field       string
	typ         envFieldType
	description string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"FLAVOR":                      {"flavor", envTypeString, "Markdown flavor: commonmark or gfm"},
	"OFFSET_UNIT":                 {"offset_unit", envTypeString, "Wire offset unit: utf16, rune or byte"},
	"DEFAULT_TITLE":               {"default_title", envTypeString, "Title for documents that arrive empty"},
	"DEBUG":                       {"debug", envTypeBool, "Panic on reentrant mutation: true or false"},
	"LOG_LEVEL":                   {"log_level", envTypeString, "Log level: debug, info, warn or error"},
	"TRANSPORT_URL":               {"transport.url", envTypeString, "Collaboration websocket URL"},
	"TRANSPORT_HANDSHAKE_TIMEOUT": {"transport.handshake_timeout", envTypeDuration, "Websocket handshake timeout (e.g. 10s)"},
	"TRANSPORT_WRITE_TIMEOUT":     {"transport.write_timeout", envTypeDuration, "Websocket frame write timeout"},
	"IMAGES_MAX_BYTES":            {"images.max_bytes", envTypeInt, "Largest image download in bytes"},
	"IMAGES_TIMEOUT":              {"images.timeout", envTypeDuration, "Image download timeout"},
	"IMAGES_SCALE":                {"images.scale", envTypeFloat, "Image display scale factor"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with GOMDEDIT_ (e.g., GOMDEDIT_FLAVOR).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for %s: %q", envVar, value)
		}
		return setFloatField(cfg, mapping.field, f)
	case envTypeDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %q", envVar, value)
		}
		return setDurationField(cfg, mapping.field, d)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// setStringField sets a string field on the config by field path.
func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "flavor":
		cfg.Flavor = config.Flavor(value)
	case "offset_unit":
		cfg.OffsetUnit = value
	case "default_title":
		cfg.DefaultTitle = value
	case "log_level":
		cfg.LogLevel = value
	case "transport.url":
		cfg.Transport.URL = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

// setBoolField sets a boolean field on the config by field path.
func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "debug":
		cfg.Debug = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

// setIntField sets an integer field on the config by field path.
func setIntField(cfg *config.Config, field string, value int64) error {
	switch field {
	case "images.max_bytes":
		cfg.Images.MaxBytes = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// setFloatField sets a floating point field on the config by field path.
func setFloatField(cfg *config.Config, field string, value float64) error {
	switch field {
	case "images.scale":
		cfg.Images.Scale = value
	default:
		return fmt.Errorf("unknown number field: %s", field)
	}
	return nil
}

// setDurationField sets a duration field on the config by field path.
func setDurationField(cfg *config.Config, field string, value time.Duration) error {
	switch field {
	case "transport.handshake_timeout":
		cfg.Transport.HandshakeTimeout = value
	case "transport.write_timeout":
		cfg.Transport.WriteTimeout = value
	case "images.timeout":
		cfg.Images.Timeout = value
	default:
		return fmt.Errorf("unknown duration field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// EnvVar describes one supported environment variable.
type EnvVar struct {
	Name        string
	Description string
}

// ListEnvVars returns all supported environment variables sorted by name.
func ListEnvVars() []EnvVar {
	vars := make([]EnvVar, 0, len(envMappings))
	for suffix, mapping := range envMappings {
		vars = append(vars, EnvVar{Name: envVarPrefix + suffix, Description: mapping.description})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}
