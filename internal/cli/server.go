package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"hero-quiz-service/internal/app"
	"hero-quiz-service/internal/config"
	redisinfra "hero-quiz-service/internal/infra/redis"
	"hero-quiz-service/internal/logging"
	"hero-quiz-service/internal/metrics"
	"hero-quiz-service/internal/notify"
	transport "hero-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the hero quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New(serviceName, cfg.Log.Level)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	heroRepo := newHeroRepository(b, cfg, log)
	ai, err := newAIGenerator(ctx, cfg, log)
	if err != nil {
		return err
	}

	hub := app.NewSummaryHub()
	var publisher app.SummaryPublisher = hub
	if b.redis != nil {
		channel := cfg.Redis.SummaryChannel
		if channel == "" {
			channel = redisinfra.DefaultSummaryChannel
		}
		relay := redisinfra.NewSummaryRelay(b.redis, hub, channel, log)
		go func() {
			if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
				log.WithError(err).Error("summary relay stopped")
			}
		}()
		publisher = relay
	}

	dayKey := app.FixedOffsetDayKey(app.DefaultDayOffset)
	services := transport.Services{
		Heroes:  app.NewHeroService(heroRepo, b.writer, log),
		Quizzes: app.NewQuizService(heroRepo, newSynthesizer(cfg.Quiz.Seed), ai, log, m),
		Scoring: app.NewScoringService(b.scores, heroRepo, b.queue,
			app.WithDayKey(dayKey),
			app.WithLogger(log),
			app.WithMetrics(m),
			app.WithSummaryPublisher(publisher),
		),
		Points: app.NewPointsService(b.scores, heroRepo, dayKey),
		Hub:    hub,
	}

	worker := notify.NewWorker(b.outbox, newMailer(cfg, log), notify.WorkerConfig{
		Interval:    config.TTLDuration(cfg.Outbox.Interval, notify.DefaultInterval),
		BatchSize:   cfg.Outbox.BatchSize,
		MaxAttempts: cfg.Outbox.MaxAttempts,
	}, log, m)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()

	router := transport.NewRouter(services, transport.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Gatherer:       reg,
		Metrics:        m,
		Log:            log,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting hero quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("failed to start server")
			cancel()
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	err = server.Shutdown(shutdownCtx)
	cancel()
	<-workerDone
	return err
}
