package watch

import (
	"context"
	"log/slog"
	"time"

	foundationerrors "git.home.luguber.info/inful/plantbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/plantbuild/internal/logfields"
)

// PassFunc runs one build pass. reason names what triggered it.
type PassFunc func(ctx context.Context, reason string) error

// Options configures a Runner.
type Options struct {
	// Dirs are the source directories to watch.
	Dirs []string
	// Files are extra files, such as the config file, whose changes trigger a pass.
	Files []string
	// SkipDir reports whether a newly created directory is left unwatched.
	SkipDir func(path string) bool
	// Debounce is the quiet window for filesystem events.
	Debounce time.Duration
	// Interval, when positive, triggers a pass periodically.
	Interval time.Duration
}

// Runner runs an initial pass and then one pass per trigger until its
// context is done.
type Runner struct {
	pass    PassFunc
	opts    Options
	pending chan string
	started chan struct{}
}

// NewRunner creates a runner for pass.
func NewRunner(pass PassFunc, opts Options) *Runner {
	return &Runner{
		pass:    pass,
		opts:    opts,
		pending: make(chan string, 1),
		started: make(chan struct{}),
	}
}

// Started is closed once watching is set up, after the initial pass.
func (r *Runner) Started() <-chan struct{} { return r.started }

// Trigger requests a pass. Requests made while one is pending coalesce.
func (r *Runner) Trigger(reason string) {
	select {
	case r.pending <- reason:
	default:
	}
}

// Run blocks until ctx is done. Pass errors are logged and do not stop the
// runner; only setup failures are returned.
func (r *Runner) Run(ctx context.Context) error {
	r.runPass(ctx, "initial")

	sw, err := NewSourceWatcher(r.opts.Debounce, r.opts.SkipDir)
	if err != nil {
		return foundationerrors.FileSystemError("failed to start source watcher").WithCause(err).Build()
	}
	defer func() { _ = sw.Stop() }()
	for _, dir := range r.opts.Dirs {
		if err := sw.AddDir(dir); err != nil {
			return foundationerrors.FileSystemError("failed to watch source directory").
				WithCause(err).
				WithContext("path", dir).
				Build()
		}
	}
	for _, file := range r.opts.Files {
		if err := sw.AddFile(file); err != nil {
			slog.Warn("Not watching file", logfields.Path(file), logfields.Error(err))
		}
	}
	sw.Start(ctx)
	slog.Info("Watching for changes",
		logfields.Count(len(r.opts.Dirs)),
		logfields.Duration(r.opts.Debounce))

	if r.opts.Interval > 0 {
		sched, err := NewScheduler()
		if err != nil {
			return foundationerrors.InternalError("failed to start scheduler").WithCause(err).Build()
		}
		if _, err := sched.SchedulePeriodicPass(r.opts.Interval, r.Trigger); err != nil {
			return foundationerrors.InternalError("failed to schedule periodic pass").WithCause(err).Build()
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}
	close(r.started)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Watch stopped")
			return nil
		case path := <-sw.Triggers():
			r.Trigger("change:" + path)
		case reason := <-r.pending:
			r.runPass(ctx, reason)
		}
	}
}

func (r *Runner) runPass(ctx context.Context, reason string) {
	if ctx.Err() != nil {
		return
	}
	slog.Info("Starting pass", slog.String("reason", reason))
	if err := r.pass(ctx, reason); err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("Pass failed", slog.String("reason", reason), logfields.Error(err))
	}
}
