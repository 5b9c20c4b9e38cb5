// Package app assembles the scheduling service from its configuration.
package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"maintenance-scheduler/api"
	"maintenance-scheduler/config"
	"maintenance-scheduler/core/events"
	coremetrics "maintenance-scheduler/core/metrics"
	"maintenance-scheduler/core/registry"
	"maintenance-scheduler/core/scheduler"
	"maintenance-scheduler/core/scheduler/history"
	"maintenance-scheduler/core/solver"
	"maintenance-scheduler/infra/logger"
	"maintenance-scheduler/infra/metrics"
	"maintenance-scheduler/infra/mqtt"
	"maintenance-scheduler/internal/eventbus"
)

// Service wires the crew registry, optimizer, HTTP API and outbound
// publishers together.
type Service struct {
	Optimizer *scheduler.Optimizer

	cfg   *config.Config
	log   logger.Logger
	store registry.Store
	hist  history.Store
	pub   mqtt.Publisher
	bus   *eventbus.Bus[events.ScheduleComputed]
	srv   *http.Server
	ln    net.Listener
}

// New creates a Service from the configuration. The API listener is bound
// here, so Addr is valid before Run.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	store, err := registry.NewSQLStore(cfg.Registry)
	if err != nil {
		return nil, fmt.Errorf("crew registry: %w", err)
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	opt := scheduler.New(cfg.Scheduler, solver.NewBranchAndBound(), logger.New("optimizer"), sink)

	var hist history.Store
	if cfg.History.Enabled {
		hist, err = history.New(cfg.History)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("run history: %w", err)
		}
		opt.SetHistory(hist)
	}

	var pub mqtt.Publisher = mqtt.NopPublisher{}
	if cfg.MQTT.Enabled {
		p, err := mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			if hist != nil {
				_ = hist.Close()
			}
			_ = store.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		pub = p
	}

	bus := eventbus.New[events.ScheduleComputed]()
	handler := api.NewRouter(api.Deps{
		Store:     store,
		Optimizer: opt,
		History:   hist,
		Bus:       bus,
		Log:       logger.New("api"),
		Token:     cfg.Server.APIToken,
	})

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		bus.Close()
		pub.Close()
		if hist != nil {
			_ = hist.Close()
		}
		_ = store.Close()
		return nil, fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	return &Service{
		Optimizer: opt,
		cfg:       cfg,
		log:       logg,
		store:     store,
		hist:      hist,
		pub:       pub,
		bus:       bus,
		srv:       srv,
		ln:        ln,
	}, nil
}

// Addr returns the bound API address. Configuring port 0 and reading Addr
// back is how tests avoid port clashes.
func (s *Service) Addr() string { return s.ln.Addr().String() }

// Run serves the API and forwards computed schedules until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.forwardSchedules(s.bus.Subscribe())

	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(s.ln) }()
	s.log.Infof("api listening on %s", s.Addr())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

// forwardSchedules pushes computed schedules to the configured publisher. It
// exits when the bus closes.
func (s *Service) forwardSchedules(sub <-chan events.ScheduleComputed) {
	for ev := range sub {
		if err := s.pub.PublishSchedule(ev); err != nil {
			s.log.Errorf("publish schedule %s: %v", ev.RunID, err)
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	s.pub.Close()
	var firstErr error
	if s.hist != nil {
		if err := s.hist.Close(); err != nil {
			firstErr = err
		}
	}
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
