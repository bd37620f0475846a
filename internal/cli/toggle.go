package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/fsutil"
	"github.com/yaklabco/gomdedit/pkg/mdast"
	"github.com/yaklabco/gomdedit/pkg/sched"
)

func newToggleCommand(a *app) *cobra.Command {
	var backup bool

	cmd := &cobra.Command{
		Use:   "toggle <file> <item>",
		Short: "Check or uncheck a checklist item in place",
		Long: `Flip the check mark of a checklist item and save the file.

Items are numbered from 1 in document order, counting checklist items only.
The file is rewritten atomically, and the save fails if the file changed
while it was being edited.`,
		Example: `  gomdedit toggle TODO.md 3
  gomdedit toggle --backup TODO.md 1`,
		Annotations: map[string]string{annotationDocumentArg: "true"},
		Args:        cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "-" {
				return fmt.Errorf("%w: toggle needs a file, not standard input", ErrUsage)
			}
			item, err := strconv.Atoi(args[1])
			if err != nil || item < 1 {
				return fmt.Errorf("%w: item must be a positive number, got %q", ErrUsage, args[1])
			}
			return runToggle(cmd, a, args[0], item, backup)
		},
	}

	cmd.Flags().BoolVar(&backup, "backup", false, "keep the original file next to it")

	return cmd
}

func runToggle(cmd *cobra.Command, a *app, path string, item int, backup bool) error {
	logger := logging.FromContext(cmd.Context())

	text, info, err := readDocument(cmd, path)
	if err != nil {
		return err
	}

	exec := &sched.Manual{}
	ctrl, err := a.controller(exec)
	if err != nil {
		return err
	}
	if err := ctrl.SetText(text); err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	exec.Drain()

	index, count := -1, 0
	for i, block := range ctrl.Document().Blocks() {
		if block.Kind != mdast.NodeChecklistItem {
			continue
		}
		count++
		if count == item {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("%w: %s has %d checklist items", ErrUsage, path, count)
	}

	if err := ctrl.ToggleChecklist(index); err != nil {
		return err
	}
	exec.Drain()

	if _, _, err := fsutil.Save(cmd.Context(), path, []byte(ctrl.Text()), fsutil.SaveOptions{Info: info, Backup: backup}); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	block := ctrl.Document().Blocks()[index]
	state := "unchecked"
	if block.Attrs.Checked {
		state = "checked"
	}
	logger.Info("checklist item updated", logging.FieldPath, path, "item", item, "state", state)
	return nil
}
