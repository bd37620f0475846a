package configloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yaklabco/gomdedit/pkg/config"
)

func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	result, err := Load(context.Background(), isolated(t.TempDir()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.Flavor != config.FlavorGFM {
		t.Errorf("expected flavor %q, got %q", config.FlavorGFM, cfg.Flavor)
	}
	if cfg.OffsetUnit != "utf16" {
		t.Errorf("expected offset unit utf16, got %q", cfg.OffsetUnit)
	}
	if cfg.DefaultTitle != config.DefaultTitle {
		t.Errorf("expected default title %q, got %q", config.DefaultTitle, cfg.DefaultTitle)
	}
	if len(result.Sources) != 0 {
		t.Errorf("expected no files loaded, got %v", result.Sources)
	}
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".gomdedit.yml"), `
flavor: commonmark
default_title: Notes
transport:
  url: ws://localhost:8080/doc
  write_timeout: 2s
theme:
  heading:
    color: "#ff8800"
`)

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.Flavor != config.FlavorCommonMark {
		t.Errorf("expected flavor commonmark, got %q", cfg.Flavor)
	}
	if cfg.DefaultTitle != "Notes" {
		t.Errorf("expected title Notes, got %q", cfg.DefaultTitle)
	}
	if cfg.Transport.WriteTimeout != 2*time.Second {
		t.Errorf("expected write timeout 2s, got %v", cfg.Transport.WriteTimeout)
	}
	if cfg.Transport.HandshakeTimeout != config.DefaultHandshakeTimeout {
		t.Errorf("handshake timeout default lost: %v", cfg.Transport.HandshakeTimeout)
	}
	if cfg.Theme["heading"]["color"] != "#ff8800" {
		t.Errorf("theme override not loaded: %v", cfg.Theme)
	}
	if len(result.Sources) != 1 || result.Sources[0].Scope != ScopeProject {
		t.Errorf("expected one project file loaded, got %v", result.Sources)
	}
}

func TestLoad_SearchesUpward(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "gomdedit.yaml"), "offset_unit: rune\n")

	result, err := Load(context.Background(), isolated(nested))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.OffsetUnit != "rune" {
		t.Errorf("expected rune, got %q", result.Config.OffsetUnit)
	}
}

func TestLoad_DocumentDirWins(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	writeFile(t, filepath.Join(work, ".gomdedit.yml"), "default_title: Work\n")
	docs := t.TempDir()
	if err := os.Mkdir(filepath.Join(docs, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(docs, ".gomdedit.yaml"), "default_title: Docs\n")

	opts := isolated(work)
	opts.DocumentDir = docs
	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.DefaultTitle != "Docs" {
		t.Errorf("expected the document's project config, got %q", result.Config.DefaultTitle)
	}

	opts.DocumentDir = t.TempDir()
	result, err = Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.DefaultTitle != "Work" {
		t.Errorf("expected fallback to the working directory, got %q", result.Config.DefaultTitle)
	}
}

func TestConfigPaths_Sources(t *testing.T) {
	t.Parallel()

	paths := &ConfigPaths{User: "u.yaml", Explicit: "e.yaml"}
	got := paths.Sources()

	if len(got) != 2 {
		t.Fatalf("Sources() = %v, want 2 entries", got)
	}
	if got[0] != (Source{ScopeUser, "u.yaml"}) || got[1] != (Source{ScopeExplicit, "e.yaml"}) {
		t.Errorf("Sources() = %v", got)
	}
	if got[1].Scope.String() != "explicit" {
		t.Errorf("Scope.String() = %q", got[1].Scope.String())
	}
}

func TestLoad_ExplicitOverridesProject(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".gomdedit.yml"), "default_title: Project\nlog_level: debug\n")
	explicit := filepath.Join(tmpDir, "custom.yml")
	writeFile(t, explicit, "default_title: Explicit\n")

	opts := isolated(tmpDir)
	opts.ExplicitPath = explicit
	opts.CLIConfig = &config.Config{LogLevel: "error"}

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.DefaultTitle != "Explicit" {
		t.Errorf("expected explicit title, got %q", result.Config.DefaultTitle)
	}
	if result.Config.LogLevel != "error" {
		t.Errorf("expected CLI log level, got %q", result.Config.LogLevel)
	}
	want := Source{Scope: ScopeExplicit, Path: explicit}
	if len(result.Sources) != 2 || result.Sources[1] != want {
		t.Errorf("unexpected load order %v", result.Sources)
	}
}

func TestLoad_InvalidFileReportsPath(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ".gomdedit.yml")
	writeFile(t, path, "offset_unit: nibble\n")

	_, err := Load(context.Background(), isolated(tmpDir))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "offset_unit" || verr.FilePath != path {
		t.Errorf("unexpected error fields: %+v", verr)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".gomdedit.yml"), "flavor: [\n")

	_, err := Load(context.Background(), isolated(tmpDir))
	if err == nil || !strings.Contains(err.Error(), "load project config") {
		t.Fatalf("expected project config error, got %v", err)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("GOMDEDIT_OFFSET_UNIT", "byte")
	t.Setenv("GOMDEDIT_TRANSPORT_HANDSHAKE_TIMEOUT", "3s")
	t.Setenv("GOMDEDIT_DEBUG", "true")

	opts := isolated(t.TempDir())
	opts.IgnoreEnv = false

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg := result.Config
	if cfg.OffsetUnit != "byte" || cfg.Transport.HandshakeTimeout != 3*time.Second || !cfg.Debug {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"bool", "GOMDEDIT_DEBUG", "maybe", "invalid boolean"},
		{"int", "GOMDEDIT_IMAGES_MAX_BYTES", "lots", "invalid integer"},
		{"duration", "GOMDEDIT_IMAGES_TIMEOUT", "soon", "invalid duration"},
		{"float", "GOMDEDIT_IMAGES_SCALE", "big", "invalid number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			err := LoadFromEnv(config.NewConfig())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadFromEnv() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"flavor", func(c *config.Config) { c.Flavor = "wiki" }, "flavor"},
		{"log level", func(c *config.Config) { c.LogLevel = "loud" }, "log_level"},
		{"url scheme", func(c *config.Config) { c.Transport.URL = "http://x/doc" }, "transport.url"},
		{"url host", func(c *config.Config) { c.Transport.URL = "ws:///doc" }, "transport.url"},
		{"negative timeout", func(c *config.Config) { c.Transport.WriteTimeout = -time.Second }, "transport.write_timeout"},
		{"negative bytes", func(c *config.Config) { c.Images.MaxBytes = -1 }, "images.max_bytes"},
		{"unknown theme kind", func(c *config.Config) {
			c.Theme = map[string]map[string]any{"sidebar": {"bold": true}}
		}, "theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.NewConfig()
			tt.mutate(cfg)

			result := Validate(cfg)
			if result.Valid() {
				t.Fatal("expected validation error")
			}
			if result.Errors[0].Field != tt.field {
				t.Errorf("field = %q, want %q", result.Errors[0].Field, tt.field)
			}
		})
	}

	if !Validate(config.NewConfig()).Valid() {
		t.Error("defaults must validate")
	}
	if !Validate(&config.Config{}).Valid() {
		t.Error("zero config must validate")
	}
}

func TestValidate_ScaleWarning(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Images.Scale = 16

	result := Validate(cfg)
	if !result.Valid() || !result.HasWarnings() {
		t.Fatalf("expected a warning only, got %v", result.AllMessages())
	}
}

func TestMerge_Theme(t *testing.T) {
	t.Parallel()

	base := &config.Config{Theme: map[string]map[string]any{
		"heading": {"bold": true, "color": "#000"},
	}}
	override := &config.Config{Theme: map[string]map[string]any{
		"heading": {"color": "#fff"},
		"link":    {"underline": false},
	}}

	merged := merge(base, override)

	if merged.Theme["heading"]["bold"] != true || merged.Theme["heading"]["color"] != "#fff" {
		t.Errorf("heading not deep merged: %v", merged.Theme["heading"])
	}
	if _, ok := merged.Theme["link"]; !ok {
		t.Error("link override missing")
	}
	if base.Theme["heading"]["color"] != "#000" {
		t.Error("merge modified its input")
	}
}

func TestWriteConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".gomdedit.yml")
	if err := WriteConfig(config.NewConfig(), path, false); err != nil {
		t.Fatalf("WriteConfig() error = %v", err)
	}
	if err := WriteConfig(config.NewConfig(), path, false); err == nil {
		t.Error("expected refusal to overwrite")
	}

	cfg, err := loadConfigFile(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.OffsetUnit != "utf16" {
		t.Errorf("written config lost offset unit: %q", cfg.OffsetUnit)
	}
}

func TestListEnvVars(t *testing.T) {
	t.Parallel()

	vars := ListEnvVars()
	if len(vars) != len(envMappings) {
		t.Fatalf("got %d vars, want %d", len(vars), len(envMappings))
	}
	for i := 1; i < len(vars); i++ {
		if vars[i-1].Name > vars[i].Name {
			t.Fatalf("not sorted: %s before %s", vars[i-1].Name, vars[i].Name)
		}
	}
	if GetEnvVarName("transport.url") != "GOMDEDIT_TRANSPORT_URL" {
		t.Error("GetEnvVarName mismatch")
	}
}
