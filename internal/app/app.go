package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"newsdigest/internal/config"
	"newsdigest/internal/infrastructure/artifact"
	"newsdigest/internal/infrastructure/sanitize"
	"newsdigest/internal/infrastructure/storage"
	"newsdigest/internal/logging"
	"newsdigest/internal/tools"
	"newsdigest/internal/transport/httpapi"
	"newsdigest/internal/usecase"
)

// Application wires configs to use cases and owns the process lifecycle.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	pool   *pgxpool.Pool
	server *httpapi.Server
}

// New connects to Postgres, applies the schema, seeds configured missions
// and builds the HTTP surface.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	pool, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	db := storage.NewDB(pool)
	if err := db.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	missions := storage.NewMissionRepository(db)
	if err := missions.Seed(ctx, cfg.DomainMissions()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("seed missions: %w", err)
	}

	categories := storage.NewCategoryRepository(db)
	articles := storage.NewArticleRepository(db)
	stats := storage.NewStatsRepository(db)
	digests := storage.NewDigestRepository(db)
	artifacts := artifact.NewWriter(cfg.Archive.ArtifactDir, cfg.Archive.ExecutionDir)
	loc := cfg.Archive.Location()

	daily := usecase.NewDailySubmission(usecase.DailySubmissionDeps{
		Tx:             db,
		Missions:       missions,
		Categories:     categories,
		Articles:       articles,
		Digests:        digests,
		Artifacts:      artifacts,
		Cleaner:        sanitize.NewCleaner(),
		Location:       loc,
		DefaultMission: cfg.DefaultMission,
		Logger:         baseLogger.With("component", "daily"),
	})

	weekly := usecase.NewWeeklyAggregation(usecase.WeeklyAggregationDeps{
		Tx:             db,
		Missions:       missions,
		Categories:     categories,
		Articles:       articles,
		Stats:          stats,
		Digests:        digests,
		Artifacts:      artifacts,
		WeekStart:      cfg.WeekStart,
		Location:       loc,
		DefaultMission: cfg.DefaultMission,
		Logger:         baseLogger.With("component", "weekly"),
	})

	archive := usecase.NewArchiveQuery(usecase.ArchiveQueryDeps{
		Categories:     categories,
		Articles:       articles,
		Stats:          stats,
		Location:       loc,
		DefaultMission: cfg.DefaultMission,
	})

	feed := usecase.NewDigestFeed(digests, cfg.DefaultMission, baseLogger.With("component", "feed"))

	server := httpapi.New(httpapi.Deps{
		Tools:  tools.NewCatalog(tools.Deps{Archive: archive, Daily: daily, Weekly: weekly}),
		Feed:   feed,
		Logger: baseLogger.With("component", "http"),
	})

	baseLogger.Info("engine ready",
		"missions", len(cfg.Missions),
		"default_mission", cfg.DefaultMission,
		"timezone", loc.String(),
	)

	return &Application{cfg: cfg, logger: baseLogger, pool: pool, server: server}, nil
}

// Run serves until ctx is cancelled, then drains requests and closes the pool.
func (a *Application) Run(ctx context.Context) error {
	defer a.pool.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start(a.cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", "timeout", a.cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return <-errCh
}
