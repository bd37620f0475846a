package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/internal/ui/pretty"
	"github.com/yaklabco/gomdedit/pkg/fsutil"
	"github.com/yaklabco/gomdedit/pkg/ot"
	"github.com/yaklabco/gomdedit/pkg/sched"
	"github.com/yaklabco/gomdedit/pkg/transport/wsclient"
)

// maxFrameSize bounds one line of an operation log.
const maxFrameSize = 16 << 20

type replayFlags struct {
	base    string
	write   string
	backup  bool
	preview bool
}

func newReplayCommand(a *app) *cobra.Command {
	flags := &replayFlags{}

	cmd := &cobra.Command{
		Use:   "replay <log>",
		Short: "Apply a recorded log of server frames to a document",
		Long: `Replay a log of collaboration frames, one JSON object per line, exactly
as the editor would receive them from the server:

  {"type":"snapshot","text":"# Notes\n","version":1}
  {"type":"insert","location":8,"string":"- a\n","seq":2}
  {"type":"remove","location":0,"length":2,"seq":3}

Operations are applied verbatim and must line up with the document they
arrive at. The log must start with a snapshot unless --base names a file
to start from. Reads standard input when the log is "-".`,
		Example: `  gomdedit replay session.jsonl
  gomdedit replay --base notes.md --write notes.md edits.jsonl
  gomdedit replay --preview session.jsonl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, a, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.base, "base", "", "start from this file instead of an initial snapshot")
	cmd.Flags().StringVarP(&flags.write, "write", "o", "", "save the result to this file instead of printing it")
	cmd.Flags().BoolVar(&flags.backup, "backup", false, "keep the previous content when overwriting")
	cmd.Flags().BoolVar(&flags.preview, "preview", false, "print the rendered presentation instead of markdown")

	return cmd
}

func runReplay(cmd *cobra.Command, a *app, logPath string, flags *replayFlags) error {
	logger := logging.FromContext(cmd.Context())

	var in io.Reader = cmd.InOrStdin()
	if logPath != "-" {
		f, err := os.Open(logPath)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		in = f
	}

	exec := &sched.Manual{}
	ctrl, err := a.controller(exec)
	if err != nil {
		return err
	}
	view := &renderCapture{}
	ctrl.AddObserver(view)

	var info *fsutil.FileInfo
	if flags.base != "" {
		var text string
		text, info, err = readDocument(cmd, flags.base)
		if err != nil {
			return err
		}
		if err := ctrl.ApplySnapshot(ot.Snapshot{Text: text}); err != nil {
			return fmt.Errorf("load base: %w", err)
		}
		exec.Drain()
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxFrameSize)
	line, applied := 0, 0
	for scanner.Scan() {
		line++
		frame := bytes.TrimSpace(scanner.Bytes())
		if len(frame) == 0 {
			continue
		}

		msg, err := wsclient.Decode(frame)
		if err != nil {
			_, col := wsclient.Position(frame, err)
			return fmt.Errorf("%s:%d:%d: malformed frame: %w", logPath, line, col, err)
		}

		switch {
		case msg.Snapshot != nil:
			err = ctrl.ApplySnapshot(*msg.Snapshot)
		case msg.Operation != nil:
			err = ctrl.ApplyRemote(*msg.Operation)
		case msg.Error != nil:
			logger.Warn("server error in log", "line", line, logging.FieldMessage, msg.Error.Message)
		}
		if err != nil {
			return fmt.Errorf("%s:%d: %w", logPath, line, err)
		}
		exec.Drain()
		applied++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read log: %w", err)
	}
	logger.Debug("replay finished", "frames", applied, logging.FieldSeq, ctrl.Seq(), logging.FieldTitle, view.title)

	if flags.write != "" {
		if flags.write != flags.base {
			info = nil
		}
		if _, _, err := fsutil.Save(cmd.Context(), flags.write, []byte(ctrl.Text()), fsutil.SaveOptions{Info: info, Backup: flags.backup}); err != nil {
			return fmt.Errorf("save %s: %w", flags.write, err)
		}
		logger.Info("document saved", logging.FieldPath, flags.write, logging.FieldSeq, ctrl.Seq())
		return nil
	}

	out := cmd.OutOrStdout()
	if flags.preview {
		_, err = fmt.Fprint(out, a.styles(out).RenderPreview(view.state, pretty.PreviewOptions{
			HideClosedFolds: true,
			Annotations:     view.annotations,
		}))
		return err
	}
	_, err = fmt.Fprint(out, ctrl.Text())
	return err
}
