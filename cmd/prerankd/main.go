package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/editor"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/feature"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/partition"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/prerank/handler"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/preranker"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/ranker"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting pre-ranker service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, prometheus.DefaultGatherer)
		defer shutdownMetrics(context.Background())
	}

	checker := health.NewChecker()

	var source partition.Source
	var store handler.StoreFunc
	if cfg.Postgres.Enabled {
		pg, err := postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		pgSource := partition.NewPostgresSource(pg, m)
		if err := pgSource.EnsureSchema(ctx); err != nil {
			slog.Error("failed to create partition schema", "error", err)
			os.Exit(1)
		}
		source, store = pgSource, pgSource.Put
		checker.Register("postgres", health.Ping(pg.Ping, health.StatusDown))
		slog.Info("partition store: postgres", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	} else {
		mem := partition.NewMemorySource()
		source = mem
		store = func(_ context.Context, id feature.PartitionID, snap *partition.Snapshot) error {
			mem.Put(id, snap)
			return nil
		}
		slog.Info("partition store: in-memory")
	}

	var invalidator handler.Invalidator
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, section caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cached := partition.NewCachedSource(source, redisClient, cfg.Redis.CacheTTL, m)
			source, invalidator = cached, cached
			put := store
			store = func(ctx context.Context, id feature.PartitionID, snap *partition.Snapshot) error {
				if err := put(ctx, id, snap); err != nil {
					return err
				}
				return cached.InvalidatePartition(ctx, id)
			}
			slog.Info("section cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}
	var redisPing func(context.Context) error
	if redisClient != nil {
		redisPing = redisClient.Ping
	}
	checker.Register("redis", health.Ping(redisPing, health.StatusDegraded))

	edits := editor.NewStore()
	collector := ranker.NewCollector()
	var downstream preranker.Ranker = collector
	var publisher *ranker.Publisher

	if cfg.Kafka.Enabled {
		editConsumer := editor.NewEditConsumer(kafka.NewConsumer(
			cfg.Kafka, cfg.Kafka.Topics.FeatureEdits, editor.HandleEdits(edits, m), kafka.FromBeginning(),
		))
		go func() {
			if err := editConsumer.Start(ctx); err != nil {
				slog.Error("edit consumer error", "error", err)
			}
		}()

		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.PrerankBatches)
		defer producer.Close()
		publisher = ranker.NewPublisher(producer, m)
		downstream = ranker.Tee{collector, publisher}
		slog.Info("kafka wiring enabled",
			"edits_topic", cfg.Kafka.Topics.FeatureEdits,
			"batches_topic", cfg.Kafka.Topics.PrerankBatches,
		)
	}

	pre := preranker.New(preranker.Options{
		Source:          source,
		Overlay:         edits,
		Ranker:          downstream,
		Metrics:         m,
		StrictContracts: cfg.PreRank.StrictContracts,
	})
	h := handler.New(handler.Config{
		PreRanker:   pre,
		Collector:   collector,
		Publisher:   publisher,
		Invalidator: invalidator,
		Store:       store,
		Defaults:    preranker.ParamsFromConfig(cfg.PreRank),
	})

	checker.Register("edit_overlay", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d edited features", edits.Len())}
	})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/prerank", h.Prerank)
	mux.HandleFunc("POST /api/v1/caches/clear", h.ClearCaches)
	mux.HandleFunc("PUT /api/v1/partitions/{id}", h.PutPartition)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", metrics.Handler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("pre-ranker service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("pre-ranker service stopped")
}
