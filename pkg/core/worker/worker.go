package worker

import (
	"context"
	"sync"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/core/health"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Worker is a background loop bound to the application lifecycle.
type Worker interface {
	Start()
	Stop()
}

type runnable interface {
	Run(ctx context.Context) error
}

type Options struct {
	WaitReady           bool
	WaitForTrafficReady bool
	ShutdownOnError     bool
}

type Option func(*Options)

// WithReady delays Run until all components are ready.
func WithReady() Option {
	return func(o *Options) { o.WaitReady = true }
}

// WithTrafficReady delays Run until the traffic gate opens.
func WithTrafficReady() Option {
	return func(o *Options) { o.WaitForTrafficReady = true }
}

// WithShutdown stops the application when Run returns an error.
func WithShutdown() Option {
	return func(o *Options) { o.ShutdownOnError = true }
}

type baseWorker struct {
	name       string
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	log        *zap.Logger
	run        func(ctx context.Context) error
	shutdowner fx.Shutdowner
	readiness  health.ReadinessWaiter
	options    Options
}

func newBaseWorker(name string, log *zap.Logger, run func(context.Context) error, shutdowner fx.Shutdowner, readiness health.ReadinessWaiter, options Options) *baseWorker {
	return &baseWorker{
		name:       name,
		log:        log.With(zap.String("worker", name)),
		run:        run,
		shutdowner: shutdowner,
		readiness:  readiness,
		options:    options,
	}
}

func (w *baseWorker) Start() {
	w.log.Info("starting worker")
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop(ctx)
	}()
}

func (w *baseWorker) loop(ctx context.Context) {
	if w.options.WaitReady {
		if err := w.readiness.WaitReady(ctx); err != nil {
			w.log.Info("worker stopped while waiting for readiness")
			return
		}
	}

	if w.options.WaitForTrafficReady {
		if err := w.readiness.WaitForTrafficReady(ctx); err != nil {
			w.log.Info("worker stopped while waiting for traffic readiness")
			return
		}
	}

	err := w.run(ctx)
	if err == nil {
		w.log.Info("worker stopped")
		return
	}

	if !w.options.ShutdownOnError {
		w.log.Error("worker stopped with error", zap.Error(err))
		return
	}

	w.log.Error("worker fatal error, initiating shutdown", zap.Error(err))
	if shutdownErr := w.shutdowner.Shutdown(fx.ExitCode(1)); shutdownErr != nil {
		w.log.Error("failed to initiate shutdown", zap.Error(shutdownErr))
	}
}

func (w *baseWorker) Stop() {
	w.log.Info("stopping worker")
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

// Register returns an fx constructor that wraps T in a lifecycle-managed worker
// and contributes it to the "workers" group.
//
//	worker.Register[*fetcher]("outbox-fetcher", worker.WithReady())
func Register[T runnable](name string, opts ...Option) any {
	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}

	return fx.Annotate(
		func(lc fx.Lifecycle, log *zap.Logger, shutdowner fx.Shutdowner, readiness health.ReadinessWaiter, dep T) Worker {
			w := newBaseWorker(name, log, dep.Run, shutdowner, readiness, options)
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					w.Start()
					return nil
				},
				OnStop: func(context.Context) error {
					w.Stop()
					return nil
				},
			})
			return w
		},
		fx.ResultTags(`group:"workers"`),
	)
}

// NewWorkersModule forces construction of every registered worker.
func NewWorkersModule() fx.Option {
	return fx.Invoke(fx.Annotate(
		func(workers []Worker, log *zap.Logger) {
			log.Info("workers registered", zap.Int("count", len(workers)))
		},
		fx.ParamTags(`group:"workers"`),
	))
}
