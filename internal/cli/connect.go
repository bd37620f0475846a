package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/internal/ui/pretty"
	"github.com/yaklabco/gomdedit/pkg/editor"
	"github.com/yaklabco/gomdedit/pkg/fsutil"
	"github.com/yaklabco/gomdedit/pkg/mdast"
	"github.com/yaklabco/gomdedit/pkg/sched"
	"github.com/yaklabco/gomdedit/pkg/transport/wsclient"
)

// closeTimeout bounds how long a session waits for the server to
// acknowledge a disconnect.
const closeTimeout = 5 * time.Second

// ErrResync is returned when a session ended because the document fell out
// of sync with the server.
var ErrResync = errors.New("document out of sync with server")

type connectFlags struct {
	save   string
	backup bool
	quiet  bool
	stdin  bool
	width  int
}

func newConnectCommand(a *app) *cobra.Command {
	flags := &connectFlags{}

	cmd := &cobra.Command{
		Use:   "connect [url]",
		Short: "Join a live editing session",
		Long: `Connect to a collaboration server over a websocket and follow the shared
document. Every change is rendered as the editor presents it, and --save
keeps a local copy up to date.

With --stdin, each line read from standard input is appended to the
document as a new paragraph and sent to the other collaborators.

The URL defaults to transport.url from the configuration.`,
		Example: `  gomdedit connect ws://localhost:8080/doc/notes
  gomdedit connect --save notes.md --quiet
  tail -f events.log | gomdedit connect --stdin ws://localhost:8080/doc/log`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := a.cfg.Transport.URL
			if len(args) > 0 {
				url = args[0]
			}
			if url == "" {
				return fmt.Errorf("%w: no server URL given and transport.url is not configured", ErrUsage)
			}
			return runConnect(cmd, a, url, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.save, "save", "s", "", "keep the document saved to this file")
	cmd.Flags().BoolVar(&flags.backup, "backup", false, "keep the file's original content before the first save")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "do not print the document on every change")
	cmd.Flags().BoolVar(&flags.stdin, "stdin", false, "append lines read from standard input")
	cmd.Flags().IntVarP(&flags.width, "width", "w", 0, "wrap output at this width (0 disables wrapping)")

	return cmd
}

func runConnect(cmd *cobra.Command, a *app, url string, flags *connectFlags) error {
	logger := a.logger
	if cmd.ErrOrStderr() == os.Stderr {
		logger = logging.NewInteractive()
		logger.SetLevel(a.logger.GetLevel())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exec := sched.NewSerial()
	client := wsclient.New(url,
		wsclient.WithHandshakeTimeout(a.cfg.Transport.HandshakeTimeout),
		wsclient.WithWriteTimeout(a.cfg.Transport.WriteTimeout),
		wsclient.WithLogger(logger),
	)
	ctrl, err := a.controller(exec,
		editor.WithTransport(client),
		editor.WithImageFetcher(a.imageCache(), a.imageSize(), a.cfg.Images.Scale),
		editor.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	sess, err := newSession(ctx, a, cmd.OutOrStdout(), ctrl, logger, flags)
	if err != nil {
		return err
	}
	ctrl.AddObserver(sess)

	runCtx, cancelRun := context.WithCancel(context.WithoutCancel(ctx))
	var g errgroup.Group
	g.Go(func() error {
		if err := exec.Run(runCtx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	defer func() {
		cancelRun()
		_ = g.Wait()
	}()

	connected := make(chan error, 1)
	exec.Post(func() { connected <- ctrl.Connect(ctx) })
	if err := <-connected; err != nil {
		return err
	}
	logger.Info("websocket open", logging.FieldURL, url)

	if flags.stdin {
		go sess.feed(cmd.InOrStdin(), exec)
	}

	select {
	case <-ctx.Done():
		quit := make(chan struct{})
		exec.Post(func() {
			ctrl.Disconnect("client quit")
			close(quit)
		})
		<-quit
	case <-sess.done:
	}

	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	waitErr := client.Wait(waitCtx)

	if err := sess.result(); err != nil {
		return err
	}
	return waitErr
}

// session follows a live document: it prints and saves every render and
// ends when the connection does. Observer methods run on the executor.
type session struct {
	editor.BaseObserver

	ctx    context.Context
	ctrl   *editor.Controller
	logger *log.Logger
	out    io.Writer
	styles *pretty.Styles
	flags  *connectFlags

	info     *fsutil.FileInfo
	live     chan struct{}
	liveOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once

	mu  sync.Mutex
	err error
}

func newSession(ctx context.Context, a *app, out io.Writer, ctrl *editor.Controller, logger *log.Logger, flags *connectFlags) (*session, error) {
	s := &session{
		ctx:    context.WithoutCancel(ctx),
		ctrl:   ctrl,
		logger: logger,
		out:    out,
		styles: a.styles(out),
		flags:  flags,
		live:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	if flags.save != "" {
		_, info, err := fsutil.ReadFile(ctx, flags.save)
		if err != nil && !errors.Is(err, fsutil.ErrNotFound) {
			return nil, err
		}
		s.info = info
	}
	return s, nil
}

func (s *session) Render(state editor.RenderState) {
	select {
	case <-s.live:
	default:
		return
	}

	if !s.flags.quiet {
		fmt.Fprintln(s.out, s.styles.TableSeparator.Render(strings.Repeat("─", 40)))
		fmt.Fprint(s.out, s.styles.RenderPreview(state, pretty.PreviewOptions{
			Width:           s.flags.width,
			HideClosedFolds: true,
			Annotations:     s.ctrl.Annotations(),
		}))
	}
	if s.flags.save != "" {
		s.save()
	}
}

func (s *session) TitleChanged(title string) {
	s.logger.Info("title changed", logging.FieldTitle, title)
}

func (s *session) ConnectionChanged(ev editor.ConnectionEvent) {
	switch ev.State {
	case editor.Connected:
		s.logger.Info("session live", logging.FieldSeq, s.ctrl.Seq())
		s.liveOnce.Do(func() { close(s.live) })
	case editor.ConnectionError:
		s.logger.Warn("server error", logging.FieldMessage, ev.Message, "line", ev.Line, "column", ev.Column)
	case editor.Disconnected:
		s.logger.Info("session ended", logging.FieldReason, ev.Message)
		if ev.Message == editor.DisconnectResync {
			s.finish(ErrResync)
			return
		}
		s.finish(nil)
	}
}

// save writes the document, failing the session if the file was changed by
// someone else since the last save.
func (s *session) save() {
	info, changed, err := fsutil.Save(s.ctx, s.flags.save, []byte(s.ctrl.Text()), fsutil.SaveOptions{
		Info:   s.info,
		Backup: s.flags.backup,
	})
	if err != nil {
		s.logger.Error("save failed", logging.FieldPath, s.flags.save, logging.FieldError, err)
		s.finish(fmt.Errorf("save %s: %w", s.flags.save, err))
		s.ctrl.Disconnect("save failed")
		return
	}
	if info != nil {
		s.info = info
	}
	if changed {
		s.logger.Debug("document saved", logging.FieldPath, s.flags.save)
	}
}

// feed appends each line of r to the document once the session is live.
func (s *session) feed(r io.Reader, exec sched.Executor) {
	select {
	case <-s.live:
	case <-s.done:
		return
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		exec.Post(func() {
			if !s.ctrl.Connected() {
				s.logger.Warn("not connected, line dropped")
				return
			}
			text := s.ctrl.Presentation()
			insert := line + "\n"
			if text != "" && !strings.HasSuffix(text, "\n") {
				insert = "\n" + insert
			}
			end := len(text)
			if err := s.ctrl.Edit(mdast.Range{Start: end, End: end}, insert); err != nil {
				s.logger.Warn("append failed", logging.FieldError, err)
			}
		})
	}
}

func (s *session) finish(err error) {
	s.doneOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
	})
}

func (s *session) result() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
