package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdedit/internal/configloader"
	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/internal/ui/pretty"
	"github.com/yaklabco/gomdedit/pkg/config"
	"github.com/yaklabco/gomdedit/pkg/editor"
	"github.com/yaklabco/gomdedit/pkg/fsutil"
	"github.com/yaklabco/gomdedit/pkg/imagecache"
	"github.com/yaklabco/gomdedit/pkg/ot"
	goldmarkparser "github.com/yaklabco/gomdedit/pkg/parser/goldmark"
	"github.com/yaklabco/gomdedit/pkg/sched"
	"github.com/yaklabco/gomdedit/pkg/style"
)

// Command annotations read by load.
const (
	// annotationSkipConfig marks commands that run without loading configuration.
	annotationSkipConfig = "gomdedit/skip-config"

	// annotationDocumentArg marks commands whose first argument is a document
	// or directory; project config is looked up next to it first.
	annotationDocumentArg = "gomdedit/document-arg"
)

// globalFlags holds the persistent flags of the root command.
type globalFlags struct {
	configPath string
	color      string
	logLevel   string
	flavor     string
	unit       string
	debug      bool
}

// app carries the state shared by all subcommands once the root command has
// resolved configuration.
type app struct {
	flags  globalFlags
	cfg     *config.Config
	sources []configloader.Source
	logger  *log.Logger
}

// load resolves configuration and sets up logging. It runs before every
// subcommand.
func (a *app) load(cmd *cobra.Command, args []string) error {
	level := a.flags.logLevel
	if a.flags.debug {
		level = "debug"
	}
	if _, err := logging.ParseLevel(level); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	a.logger = logging.NewWriter(cmd.ErrOrStderr(), level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if cmd.Annotations[annotationSkipConfig] == "true" {
		a.cfg = config.NewConfig()
		cmd.SetContext(logging.WithLogger(ctx, a.logger))
		return nil
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	result, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		DocumentDir:  documentDir(cmd, args),
		ExplicitPath: a.flags.configPath,
		CLIConfig: &config.Config{
			Flavor:     config.Flavor(a.flags.flavor),
			OffsetUnit: a.flags.unit,
			LogLevel:   a.flags.logLevel,
			Debug:      a.flags.debug,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	a.cfg = result.Config
	a.sources = result.Sources

	if level == "" {
		lvl, _ := logging.ParseLevel(a.cfg.LogLevel)
		a.logger.SetLevel(lvl)
	}
	for _, warning := range result.Warnings {
		a.logger.Warn(warning)
	}
	a.logger.Debug("configuration loaded",
		"files", len(result.Sources),
		logging.FieldFlavor, a.cfg.Flavor,
		logging.FieldUnit, a.cfg.OffsetUnit,
	)

	logging.SetDefault(a.logger)
	cmd.SetContext(logging.WithLogger(ctx, a.logger))
	return nil
}

// documentDir returns the directory holding the document named by the first
// argument of an annotated command, or "" when there is none.
func documentDir(cmd *cobra.Command, args []string) string {
	if cmd.Annotations[annotationDocumentArg] != "true" || len(args) == 0 || args[0] == "-" {
		return ""
	}
	info, err := os.Stat(args[0])
	if err != nil {
		return ""
	}
	if info.IsDir() {
		return args[0]
	}
	return filepath.Dir(args[0])
}

// controller builds an editor controller from the resolved configuration.
// extra options are applied last.
func (a *app) controller(exec sched.Executor, extra ...editor.Option) (*editor.Controller, error) {
	unit, err := ot.ParseUnit(a.cfg.OffsetUnit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	theme, err := style.DefaultTheme().Override(a.cfg.Theme)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	opts := []editor.Option{
		editor.WithParser(goldmarkparser.New(string(a.cfg.Flavor))),
		editor.WithUnit(unit),
		editor.WithTheme(theme),
		editor.WithDefaultTitle(a.cfg.DefaultTitle),
		editor.WithLogger(a.logger),
		editor.WithDebug(a.cfg.Debug),
	}
	return editor.New(exec, append(opts, extra...)...), nil
}

// imageCache returns a cache that loads attachments within the configured
// limits.
func (a *app) imageCache() *imagecache.Cache {
	return imagecache.New(
		&imagecache.HTTPLoader{MaxBytes: a.cfg.Images.MaxBytes},
		imagecache.WithTimeout(a.cfg.Images.Timeout),
		imagecache.WithLogger(a.logger),
	)
}

// imageSize returns the configured display bounds.
func (a *app) imageSize() imagecache.Size {
	return imagecache.Size{Width: a.cfg.Images.Width, Height: a.cfg.Images.Height}
}

// styles returns output styles for w honouring the --color flag.
func (a *app) styles(w io.Writer) *pretty.Styles {
	return pretty.NewStyles(pretty.IsColorEnabled(a.flags.color, w))
}

// readDocument reads path, or standard input when path is "" or "-". The
// returned FileInfo is nil for standard input.
func readDocument(cmd *cobra.Command, path string) (string, *fsutil.FileInfo, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil, nil
	}

	data, info, err := fsutil.ReadFile(cmd.Context(), path)
	if err != nil {
		return "", nil, err
	}
	return string(data), info, nil
}

// blockingFetcher resolves images on the calling goroutine, so completions
// are queued on a Manual executor before Drain returns. Relative paths
// resolve against dir.
type blockingFetcher struct {
	ctx   context.Context
	cache *imagecache.Cache
	dir   string
}

// FetchImage implements editor.ImageFetcher.
func (f blockingFetcher) FetchImage(_, url string, size imagecache.Size, scale float64, completion func(imagecache.Image, error)) {
	img, err := f.cache.Get(f.ctx, resolveImageURL(f.dir, url))
	if err == nil {
		img.Display = img.Fit(size, scale)
	}
	completion(img, err)
}

// resolveImageURL joins relative file references onto dir.
func resolveImageURL(dir, url string) string {
	if dir == "" || strings.Contains(url, "://") || filepath.IsAbs(url) {
		return url
	}
	return filepath.Join(dir, url)
}
