package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdedit/internal/configloader"
	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/config"
)

type initFlags struct {
	force  bool
	user   bool
	output string
	url    string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a gomdedit configuration file",
		Long: `Create a .gomdedit.yml configuration file in the current directory with
the default settings written out, ready to be edited.`,
		Example: `  gomdedit init
  gomdedit init --url wss://collab.example.com/doc/notes
  gomdedit init --user
  gomdedit init --output team.yml --force`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing configuration file")
	cmd.Flags().BoolVar(&flags.user, "user", false, "write the per-user configuration instead")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file path (default: "+configloader.ProjectConfigFiles[0]+")")
	cmd.Flags().StringVar(&flags.url, "url", "", "collaboration server URL to record")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.FromContext(cmd.Context())

	path := flags.output
	switch {
	case path != "" && flags.user:
		return fmt.Errorf("%w: --output and --user are mutually exclusive", ErrUsage)
	case flags.user:
		dir, err := configloader.UserConfigDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		path = filepath.Join(dir, "config.yaml")
	case path == "":
		path = configloader.ProjectConfigFiles[0]
	}

	cfg := config.NewConfig()
	cfg.Transport.URL = flags.url
	if result := configloader.Validate(cfg); !result.Valid() {
		return fmt.Errorf("%w: %v", ErrUsage, result.AllMessages())
	}

	if err := configloader.WriteConfig(cfg, path, flags.force); err != nil {
		return err
	}

	logger.Info("created configuration file", logging.FieldPath, path)
	logger.Info("environment variables override file settings; run 'gomdedit config env' to list them")
	return nil
}
