package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/courtsidehq/courtside/external/nbacdn"
	"github.com/courtsidehq/courtside/internal/config"
	"github.com/courtsidehq/courtside/internal/infrastructure/blobstore"
	"github.com/courtsidehq/courtside/internal/infrastructure/repository/blob"
	"github.com/courtsidehq/courtside/internal/interfaces/httpapi"
	"github.com/courtsidehq/courtside/internal/platform/cache"
	"github.com/courtsidehq/courtside/internal/platform/logging"
	"github.com/courtsidehq/courtside/internal/platform/resilience"
	"github.com/courtsidehq/courtside/internal/usecase"
)

// NewHTTPServer wires the full service: snapshot storage, the NBA CDN
// client, the ingest and resolve services, and the HTTP router. The
// returned cleanup releases storage resources and must run on shutdown.
func NewHTTPServer(cfg config.Config, logger *logging.Logger, accessLogger *slog.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if accessLogger == nil {
		accessLogger = slog.Default()
	}

	store, cleanup, err := NewSnapshotStore(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("build snapshot store: %w", err)
	}

	repo := blob.NewSnapshotRepository(store)
	client := NewGameDataClient(cfg, logger)

	var snapshots *cache.Store
	if cfg.CacheEnabled {
		snapshots = cache.NewStore(cfg.CacheTTL)
	}

	ingestSvc := usecase.NewIngestService(client, repo, cfg.IngestMaxWorkers, logger.Named("ingest"))
	resolveSvc := usecase.NewResolveService(repo, snapshots, logger.Named("resolve"))

	handler := httpapi.NewHandler(ingestSvc, resolveSvc, logger.Named("httpapi"))
	router := httpapi.NewRouter(handler, accessLogger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = cleanup(context.Background())
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

// NewSnapshotStore selects the blob backend from configuration.
func NewSnapshotStore(cfg config.Config, logger *logging.Logger) (blobstore.Store, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.BlobstoreBackend {
	case config.BlobstoreMemory:
		logger.Info("snapshot store ready", "backend", config.BlobstoreMemory)
		return blobstore.NewMemory(), noopCleanup, nil
	case config.BlobstorePostgres:
		db, err := otelsqlx.Connect("postgres",
			normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
			otelsql.WithDBSystem("postgresql"),
			otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
			otelsql.WithQueryFormatter(formatDBQueryForTrace),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		logger.Info("snapshot store ready", "backend", config.BlobstorePostgres, "db", dbNameFromURL(cfg.DBURL))
		return blobstore.NewPostgres(db), func(context.Context) error { return db.Close() }, nil
	default:
		store, err := blobstore.NewFS(cfg.SnapshotDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open snapshot dir %s: %w", cfg.SnapshotDir, err)
		}
		logger.Info("snapshot store ready", "backend", config.BlobstoreFS, "dir", cfg.SnapshotDir)
		return store, noopCleanup, nil
	}
}

// NewGameDataClient builds the NBA CDN client from configuration.
func NewGameDataClient(cfg config.Config, logger *logging.Logger) *nbacdn.Client {
	return nbacdn.NewClient(nbacdn.ClientConfig{
		BaseURL:    cfg.NBACDNBaseURL,
		Timeout:    cfg.NBACDNTimeout,
		MaxRetries: cfg.NBACDNMaxRetries,
		Logger:     logger.Named("nbacdn"),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.NBACDNCircuitEnabled,
			FailureThreshold: cfg.NBACDNCircuitFailureCount,
			OpenTimeout:      cfg.NBACDNCircuitOpenTimeout,
			ProbeBudget:      cfg.NBACDNCircuitProbeBudget,
		},
	})
}

func noopCleanup(context.Context) error { return nil }
