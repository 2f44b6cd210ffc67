package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/keystroke-labs/lantern/internal/complete"
	"github.com/keystroke-labs/lantern/internal/item"
	"github.com/keystroke-labs/lantern/internal/logging"
	"github.com/keystroke-labs/lantern/internal/schedule"
	"github.com/keystroke-labs/lantern/internal/stream"
)

// newServeCmd creates the serve command: background indexing plus an
// interactive completion shell on stdin.
func newServeCmd() *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the indexing scheduler with an interactive shell",
		Long: `Serve starts the per-source indexing loops and reads input lines
from stdin. Each line is completed against the index; selecting an
option records the choice so it ranks higher next time.

  <text>      complete the input
  !<n>        select option n from the last completion (and learn it)
  :quit       exit`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, noWatch)
		},
	}

	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Disable filesystem change kicks")
	return cmd
}

func runServe(cmd *cobra.Command, noWatch bool) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if !debugMode {
		logCfg := logging.DefaultConfig()
		logCfg.Level = a.cfg.Logging.Level
		if a.cfg.Logging.File != "" {
			logCfg.FilePath = a.cfg.Logging.File
		}
		cleanup, err := logging.SetupDefault(logCfg)
		if err != nil {
			return fmt.Errorf("setup logging: %w", err)
		}
		defer cleanup()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := schedule.New(a.reconciler)
	for i, src := range a.sources {
		if err := sched.Add(src, a.cfg.Sources[i].Interval()); err != nil {
			return err
		}
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	if a.cfg.Watch.Enabled && !noWatch {
		kicker, err := schedule.NewWatchKicker(sched, a.cfg.Watch.Debounce())
		if err != nil {
			slog.Warn("watch_unavailable", slog.String("error", err.Error()))
		} else {
			defer kicker.Close()
			for _, src := range a.sources {
				watchable, ok := src.(item.WatchableSource)
				if !ok {
					continue
				}
				if err := kicker.Watch(watchable); err != nil {
					slog.Warn("watch_add_failed",
						slog.String("source", src.Name()),
						slog.String("error", err.Error()))
				}
			}
			go kicker.Run(ctx)
		}
	}

	slog.Info("serve_started", slog.Int("sources", len(a.sources)))
	return runShell(ctx, cmd, a)
}

// shellState holds the last published completion for selection.
type shellState struct {
	mu   sync.Mutex
	last complete.Result
}

func (s *shellState) set(res complete.Result) {
	s.mu.Lock()
	s.last = res
	s.mu.Unlock()
}

func (s *shellState) get() complete.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// runShell reads input lines and completes them. A new line supersedes
// the in-flight completion the same way a keystroke supersedes the
// previous one.
func runShell(ctx context.Context, cmd *cobra.Command, a *app) error {
	state := &shellState{}
	coord := stream.New(func(res complete.Result) {
		state.set(res)
		printResult(cmd, res)
	})
	defer coord.Close()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	out := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			switch {
			case line == "":
			case line == ":quit" || line == ":q":
				return nil
			case strings.HasPrefix(line, "!"):
				selectOption(ctx, out, a, state, line[1:])
			default:
				input := line
				coord.Submit(ctx, func(ctx context.Context) (complete.Result, error) {
					return a.engine.Query(ctx, input)
				})
			}
		}
	}
}

// selectOption resolves "!<n>" against the last result, records the
// choice, and lists the actions available on it.
func selectOption(ctx context.Context, out io.Writer, a *app, state *shellState, arg string) {
	say := func(format string, args ...any) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		say("not a selection: %q", arg)
		return
	}

	last := state.get()
	options := last.Options()
	if n < 1 || n > len(options) {
		say("no option %d", n)
		return
	}
	chosen := options[n-1]

	if err := a.engine.Learn(ctx, last.Input, chosen); err != nil {
		slog.Warn("learn_failed",
			slog.String("input", last.Input),
			slog.String("error", err.Error()))
	}

	say("selected: %s", chosen.Item.Text())
	for _, action := range item.ActionsFor(chosen.Item, a.actions) {
		say("  action: %s", action.Name())
	}
}
