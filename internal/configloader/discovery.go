package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// appName names the per-user and system config directories.
const appName = "gomdedit"

// Scope identifies the layer a configuration file belongs to.
type Scope int

// Scopes in merge order; later scopes override earlier ones.
const (
	ScopeSystem Scope = iota
	ScopeUser
	ScopeProject
	ScopeExplicit
)

func (s Scope) String() string {
	switch s {
	case ScopeSystem:
		return "system"
	case ScopeUser:
		return "user"
	case ScopeProject:
		return "project"
	case ScopeExplicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// Source is one configuration file and the scope it was found in.
type Source struct {
	Scope Scope
	Path  string
}

// ConfigPaths holds the configuration file found for each scope. An empty
// path means the scope has no file.
type ConfigPaths struct {
	System   string
	User     string
	Project  string
	Explicit string
}

// Sources lists the non-empty paths in merge order.
func (p *ConfigPaths) Sources() []Source {
	var sources []Source
	for _, s := range []Source{
		{ScopeSystem, p.System},
		{ScopeUser, p.User},
		{ScopeProject, p.Project},
		{ScopeExplicit, p.Explicit},
	} {
		if s.Path != "" {
			sources = append(sources, s)
		}
	}
	return sources
}

// ProjectConfigFiles are the project config names, in order of preference.
//
//nolint:gochecknoglobals // Read-only lookup table.
var ProjectConfigFiles = []string{
	".gomdedit.yml",
	".gomdedit.yaml",
	"gomdedit.yml",
	"gomdedit.yaml",
}

// scopeConfigFiles are the file names looked up in system and user directories.
//
//nolint:gochecknoglobals // Read-only lookup table.
var scopeConfigFiles = []string{"config.yaml", "config.yml"}

// DiscoverPaths finds the system, user, and project configuration files.
// The project file is searched upward from each of startDirs in turn.
func DiscoverPaths(ctx context.Context, startDirs ...string) (*ConfigPaths, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	paths := &ConfigPaths{System: firstFile(systemConfigDir(), scopeConfigFiles)}
	if dir, err := UserConfigDir(); err == nil {
		paths.User = firstFile(dir, scopeConfigFiles)
	}

	project, err := FindProjectConfig(ctx, startDirs...)
	if err != nil {
		return nil, err
	}
	paths.Project = project
	return paths, nil
}

func systemConfigDir() string {
	if runtime.GOOS != "windows" {
		return filepath.Join("/etc", appName)
	}
	programData := os.Getenv("ProgramData")
	if programData == "" {
		programData = `C:\ProgramData`
	}
	return filepath.Join(programData, appName)
}

// UserConfigDir returns the per-user configuration directory.
func UserConfigDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// FindProjectConfig searches upward from each start directory for a project
// config file and returns the first one found. A search stops at a VCS root,
// the home directory, or the filesystem root. Empty start directories are
// skipped; with none given the search starts at the working directory.
func FindProjectConfig(ctx context.Context, startDirs ...string) (string, error) {
	if len(startDirs) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		startDirs = []string{wd}
	}

	home, _ := os.UserHomeDir()
	for _, start := range startDirs {
		if start == "" {
			continue
		}
		dir, err := filepath.Abs(start)
		if err != nil {
			return "", fmt.Errorf("resolve absolute path: %w", err)
		}

		for {
			if err := ctx.Err(); err != nil {
				return "", fmt.Errorf("context cancelled: %w", err)
			}
			if path := firstFile(dir, ProjectConfigFiles); path != "" {
				return path, nil
			}
			parent := filepath.Dir(dir)
			if isVCSRoot(dir) || dir == home || parent == dir {
				break
			}
			dir = parent
		}
	}
	return "", nil
}

// isVCSRoot reports whether dir holds a .git, .hg, or .svn directory.
func isVCSRoot(dir string) bool {
	for _, marker := range []string{".git", ".hg", ".svn"} {
		if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// firstFile returns the first of names that exists as a regular file in dir.
func firstFile(dir string, names []string) string {
	for _, name := range names {
		if path := filepath.Join(dir, name); fileExists(path) {
			return path
		}
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
