package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"example.com/roletrack/config"
	"example.com/roletrack/internal/cache"
	"example.com/roletrack/internal/database"
	"example.com/roletrack/internal/messaging"
	"example.com/roletrack/internal/metrics"
	"example.com/roletrack/internal/repositories"
	"example.com/roletrack/internal/search"
	"example.com/roletrack/internal/services"
	"example.com/roletrack/internal/tracing"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long:  `Start the background worker to process import-queue messages, reindex roles, and sweep stale roles`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}
	setupConsoleLogging(cfg.Environment)

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	db, readOnlyDB, err := database.Connect(cfg.DB)
	if err != nil {
		return err
	}
	store := repositories.NewStore(db, readOnlyDB)

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
		redisCache = nil
	}

	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		tracer = tracing.Noop()
	}

	elasticClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search")
		elasticClient = nil
	}

	metricsCollector := metrics.NewMetrics()

	roleService := services.NewRoleService(store, redisCache, elasticClient, metricsCollector, tracer)

	// The import subsystem posts parsed event-creation requests here
	importBus, err := messaging.NewAzureServiceBus(cfg.Azure, tracer)
	if err != nil {
		log.Warn().Err(err).Msg("Import queue unavailable, worker will only run scheduled jobs")
	} else {
		g.Go(func() error {
			log.Info().Str("queue", cfg.Azure.QueueName).Msg("Starting import queue processor")
			return importBus.ProcessMessages(ctx, roleService.ProcessImportMessage)
		})
	}

	// Scheduled maintenance: reindex recently touched roles and sweep
	// stale ones
	g.Go(func() error {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return err
		}

		lastReindex := time.Now().Add(-cfg.Worker.ReindexInterval)
		_, err = scheduler.NewJob(
			gocron.DurationJob(cfg.Worker.ReindexInterval),
			gocron.NewTask(func() {
				since := lastReindex
				lastReindex = time.Now()
				if err := roleService.ReindexRoles(ctx, since); err != nil {
					log.Error().Err(err).Msg("Failed to reindex roles")
				}
			}),
		)
		if err != nil {
			return err
		}

		_, err = scheduler.NewJob(
			gocron.DurationJob(cfg.Worker.StaleSweepEvery),
			gocron.NewTask(func() {
				if err := roleService.SweepStaleRoles(ctx, cfg.Worker.StaleAfter); err != nil {
					log.Error().Err(err).Msg("Failed to sweep stale roles")
				}
			}),
		)
		if err != nil {
			return err
		}

		scheduler.Start()

		<-ctx.Done()
		return scheduler.Shutdown()
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker error")
		return err
	}

	log.Info().Msg("Worker shutting down gracefully")
	return nil
}
