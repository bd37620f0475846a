package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdedit/pkg/mdast"
	"github.com/yaklabco/gomdedit/pkg/parser/goldmark"
	"github.com/yaklabco/gomdedit/pkg/runner"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"a.md":              "",
		"b.markdown":        "",
		"notes.txt":         "",
		".hidden.md":        "",
		".git/x.md":         "",
		"docs/c.MD":         "",
		"vendor/d.md":       "",
		"docs/drafts/e.md":  "",
		"docs/skip-this.md": "",
	})

	tests := []struct {
		name string
		opts runner.Options
		want []string
	}{
		{
			name: "walks directory",
			opts: runner.Options{},
			want: []string{"a.md", "b.markdown", "docs/c.MD", "docs/drafts/e.md", "docs/skip-this.md", "vendor/d.md"},
		},
		{
			name: "excludes",
			opts: runner.Options{ExcludeGlobs: []string{"vendor/**", "skip-*", "docs/drafts"}},
			want: []string{"a.md", "b.markdown", "docs/c.MD"},
		},
		{
			name: "explicit files and dedup",
			opts: runner.Options{Paths: []string{"notes.txt", "a.md", "a.md"}},
			want: []string{"a.md", "notes.txt"},
		},
		{
			name: "custom extensions",
			opts: runner.Options{Extensions: []string{".txt"}},
			want: []string{"notes.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := tt.opts
			opts.WorkingDir = root

			files, err := runner.Discover(context.Background(), opts)
			require.NoError(t, err)

			rel := make([]string, len(files))
			for i, f := range files {
				r, err := filepath.Rel(root, f)
				require.NoError(t, err)
				rel[i] = filepath.ToSlash(r)
			}
			assert.Equal(t, tt.want, rel)
		})
	}
}

func TestDiscover_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := runner.Discover(context.Background(), runner.Options{WorkingDir: t.TempDir(), Paths: []string{"nope"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stat nope")
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"plan.md":  "# Plan\n- [x] one\n- [ ] two\n![shot](s.png)\n",
		"code.md":  "```\npackage main\n\nfunc main() {}\n```\n",
		"empty.md": "",
	})

	result, err := runner.New(goldmark.New(goldmark.FlavorGFM)).Run(context.Background(), runner.Options{WorkingDir: root, Jobs: 2})
	require.NoError(t, err)

	require.Len(t, result.Files, 3)
	assert.Equal(t, filepath.Join(root, "code.md"), result.Files[0].Path)

	code := result.Files[0]
	assert.Equal(t, []string{"go"}, code.Languages)

	plan := result.Files[2]
	assert.Equal(t, "Plan", plan.Title)
	assert.Equal(t, 2, plan.Tasks)
	assert.Equal(t, 1, plan.TasksDone)
	assert.Equal(t, []string{"s.png"}, plan.Images)
	assert.Equal(t, 2, plan.Blocks[mdast.NodeChecklistItem])

	assert.Equal(t, 3, result.Stats.FilesProcessed)
	assert.Equal(t, 2, result.Stats.Tasks)
	assert.Equal(t, 1, result.Stats.Images)
	assert.Equal(t, 1, result.Stats.Blocks[mdast.NodeTitle])
}

func TestRunner_Run_Cancelled(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.md": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.New(goldmark.New(goldmark.FlavorGFM)).Run(ctx, runner.Options{WorkingDir: root})
	require.Error(t, err)
}
