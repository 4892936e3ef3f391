package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/rxkeeper/internal/clock"
	"github.com/dmitrijs2005/rxkeeper/internal/common"
	"github.com/dmitrijs2005/rxkeeper/internal/compliance"
	"github.com/dmitrijs2005/rxkeeper/internal/config"
	"github.com/dmitrijs2005/rxkeeper/internal/logging"
	"github.com/dmitrijs2005/rxkeeper/internal/metrics"
	"github.com/dmitrijs2005/rxkeeper/internal/reminders"
	"github.com/dmitrijs2005/rxkeeper/internal/report"
	"github.com/dmitrijs2005/rxkeeper/internal/storage"
	"github.com/dmitrijs2005/rxkeeper/internal/tasks"
	"github.com/dmitrijs2005/rxkeeper/internal/users"
)

// lockedWriter serializes writes from the REPL and from reminder timers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

type App struct {
	config    *config.Config
	logger    logging.Logger
	clock     clock.Clock
	location  *time.Location
	storage   storage.Storage
	tasks     *tasks.Store
	ledger    *compliance.Ledger
	users     *users.Store
	reports   *report.Service
	scheduler reminders.Scheduler
	reader    *bufio.Reader
	out       io.Writer
	userID    string

	closers       []func() error
	metricsServer *http.Server
}

// NewApp wires the application from c, reading commands from stdin.
func NewApp(c *config.Config) (*App, error) {
	return newApp(context.Background(), c, os.Stdin, os.Stdout, os.Stderr)
}

func newApp(ctx context.Context, c *config.Config, in io.Reader, out, logOut io.Writer) (*App, error) {
	logger, err := logging.New(logOut, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, err
	}

	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	clk := clock.System{Location: loc}

	st, err := storage.Open(ctx, c.StorageOptions())
	if err != nil {
		logger.Error(ctx, "error initializing storage", "driver", c.StorageDriver, "error", err)
		return nil, err
	}

	a := &App{
		config:   c,
		logger:   logger,
		clock:    clk,
		location: loc,
		storage:  st,
		reader:   bufio.NewReader(in),
		out:      &lockedWriter{w: out},
	}
	a.closers = append(a.closers, st.Close)

	sched, err := a.newScheduler()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.scheduler = sched

	a.tasks = tasks.NewStore(st, clk, sched, logger)
	a.ledger = compliance.NewLedger(st, clk, logger)
	a.users = users.NewStore(st, logger)

	builder := report.NewBuilder(a.users, a.tasks, a.ledger, clk, c.ReportDays)
	a.reports = report.NewService(builder, report.HTMLAssembler{}, a.newPublisher())

	return a, nil
}

func (a *App) newScheduler() (reminders.Scheduler, error) {
	switch a.config.Scheduler {
	case config.SchedulerLocal, "":
		s := reminders.NewLocalScheduler(a.clock, a.notify, a.logger)
		a.closers = append(a.closers, func() error { s.Stop(); return nil })
		return s, nil
	case config.SchedulerAMQP:
		s, err := reminders.DialAMQP(a.config.AMQPURL, a.config.AMQPExchange, a.clock, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case config.SchedulerNone:
		return reminders.Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown scheduler %q", a.config.Scheduler)
	}
}

func (a *App) newPublisher() report.Publisher {
	if a.config.ReportTarget == config.ReportToS3 {
		return report.NewS3Publisher(report.S3Options{
			Region:    a.config.S3Region,
			AccessKey: a.config.S3AccessKey,
			SecretKey: a.config.S3SecretKey,
			Endpoint:  a.config.S3Endpoint,
			Bucket:    a.config.S3Bucket,
			Prefix:    a.config.S3Prefix,
			LinkTTL:   a.config.S3LinkTTL,
		})
	}
	return report.FilePublisher{Dir: a.config.ReportDir}
}

func (a *App) notify(r reminders.Reminder) {
	fmt.Fprintf(a.out, "\n[reminder] %s: %s (%s)\n", r.Title, r.Message, r.FireAt.In(a.location).Format("2006-01-02 15:04"))
}

// Run onboards the user if needed, rebuilds reminders and runs the REPL
// until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.startMetrics(ctx)

	if err := a.ensureUser(ctx); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	if err := a.rebuildReminders(ctx); err != nil {
		a.logger.Warn(ctx, "failed to rebuild reminders", "error", err)
	}

	fmt.Fprintln(a.out, "Welcome to rxkeeper (type 'help' for commands)")
	runREPL(ctx, a, a.reader, a.out, interactive())
}

func (a *App) ensureUser(ctx context.Context) error {
	u, err := a.users.Get(ctx)
	switch {
	case err == nil:
		a.userID = u.ID
		return nil
	case errors.Is(err, common.ErrNotFound):
		fmt.Fprintln(a.out, "No profile found, let's set one up.")
		return a.Onboard(ctx)
	default:
		return err
	}
}

func (a *App) rebuildReminders(ctx context.Context) error {
	all, err := a.tasks.All(ctx)
	if err != nil {
		return err
	}
	err = a.scheduler.Reschedule(ctx, all)
	metrics.Reschedules.WithLabelValues(metrics.Result(err)).Inc()
	return err
}

func (a *App) startMetrics(ctx context.Context) {
	if a.config.MetricsAddr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	a.metricsServer = &http.Server{Addr: a.config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.logger.Info(ctx, "serving metrics", "addr", a.config.MetricsAddr)
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(ctx, "metrics server failed", "error", err)
		}
	}()
}

// Close stops the metrics server, the scheduler and the storage.
func (a *App) Close() error {
	var errs []error
	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		errs = append(errs, a.metricsServer.Shutdown(ctx))
		cancel()
		a.metricsServer = nil
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
