package configloader

import (
	"maps"

	"github.com/yaklabco/gomdedit/pkg/config"
)

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Theme: deep merge per node kind, override's attributes taking precedence
//   - Debug: can only be switched on, since false is the zero value
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.Flavor != "" {
		result.Flavor = override.Flavor
	}
	if override.OffsetUnit != "" {
		result.OffsetUnit = override.OffsetUnit
	}
	if override.DefaultTitle != "" {
		result.DefaultTitle = override.DefaultTitle
	}
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.Debug {
		result.Debug = true
	}

	if override.Transport.URL != "" {
		result.Transport.URL = override.Transport.URL
	}
	if override.Transport.HandshakeTimeout != 0 {
		result.Transport.HandshakeTimeout = override.Transport.HandshakeTimeout
	}
	if override.Transport.WriteTimeout != 0 {
		result.Transport.WriteTimeout = override.Transport.WriteTimeout
	}

	if override.Images.MaxBytes != 0 {
		result.Images.MaxBytes = override.Images.MaxBytes
	}
	if override.Images.Timeout != 0 {
		result.Images.Timeout = override.Images.Timeout
	}
	if override.Images.Width != 0 {
		result.Images.Width = override.Images.Width
	}
	if override.Images.Height != 0 {
		result.Images.Height = override.Images.Height
	}
	if override.Images.Scale != 0 {
		result.Images.Scale = override.Images.Scale
	}

	result.Theme = mergeTheme(base.Theme, override.Theme)

	return &result
}

// mergeTheme performs a deep merge of theme overrides. Neither input is modified.
func mergeTheme(base, override map[string]map[string]any) map[string]map[string]any {
	if base == nil && override == nil {
		return nil
	}

	result := make(map[string]map[string]any, len(base)+len(override))
	for kind, attrs := range base {
		result[kind] = maps.Clone(attrs)
	}
	for kind, attrs := range override {
		if existing := result[kind]; existing != nil {
			maps.Copy(existing, attrs)
			continue
		}
		result[kind] = maps.Clone(attrs)
	}
	return result
}
