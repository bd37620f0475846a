package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultExtensions returns the default set of Markdown file extensions.
func DefaultExtensions() []string {
	return []string{".md", ".markdown"}
}

// Discover finds Markdown files under opts.Paths. It returns a sorted,
// deduplicated list of absolute paths. Hidden files and directories are
// skipped while walking; explicitly named files are always included.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir := opts.WorkingDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		workDir = wd
	}

	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions()
	}
	paths := opts.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	var files []string
	for _, input := range paths {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		abs := input
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(workDir, abs)
		}
		abs = filepath.Clean(abs)

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}
		if !info.IsDir() {
			files = append(files, abs)
			continue
		}

		err = filepath.WalkDir(abs, func(path string, entry fs.DirEntry, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if walkErr != nil {
				if os.IsPermission(walkErr) {
					return nil
				}
				return walkErr
			}

			rel, relErr := filepath.Rel(workDir, path)
			if relErr != nil {
				rel = path
			}
			hidden := path != abs && strings.HasPrefix(entry.Name(), ".")

			if entry.IsDir() {
				if hidden || excluded(rel, opts.ExcludeGlobs) {
					return filepath.SkipDir
				}
				return nil
			}
			if hidden || entry.Type()&fs.ModeSymlink != 0 || excluded(rel, opts.ExcludeGlobs) {
				return nil
			}
			if slices.Contains(extensions, strings.ToLower(filepath.Ext(path))) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk directory %s: %w", input, err)
		}
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

// excluded reports whether rel or its base name matches one of patterns.
func excluded(rel string, patterns []string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
			if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
				return true
			}
			continue
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, filepath.Base(rel)); matched {
			return true
		}
	}
	return false
}
