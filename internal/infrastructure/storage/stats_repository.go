package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"golang.org/x/sync/errgroup"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

const topSources = 10

// StatsRepository aggregates archive volume over archived_on windows.
type StatsRepository struct {
	db *DB
}

var _ ports.StatsRepository = (*StatsRepository)(nil)

// NewStatsRepository wires the archive aggregates onto the shared pool.
func NewStatsRepository(db *DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Stats runs the four aggregates concurrently on the pool. Inside a
// transaction they run one at a time since a pgx.Tx is not goroutine-safe.
func (r *StatsRepository) Stats(ctx context.Context, missionID string, from, to time.Time) (domain.ArticleStats, error) {
	stats := domain.ArticleStats{
		ByCategory: map[string]int64{},
		BySource:   map[string]int64{},
		ByDay:      map[string]int64{},
	}

	window := func(columns ...string) sq.SelectBuilder {
		return psql.Select(columns...).
			From("articles a").
			Where(sq.Eq{"a.mission_id": missionID}).
			Where(sq.GtOrEq{"a.archived_on": from}).
			Where(sq.LtOrEq{"a.archived_on": to})
	}

	g, gctx := errgroup.WithContext(ctx)
	if txFromContext(ctx) != nil {
		g.SetLimit(1)
	}

	g.Go(func() error {
		query, args, err := window("COUNT(*)").ToSql()
		if err != nil {
			return fmt.Errorf("build total query: %w", err)
		}
		if err := r.db.executor(gctx).QueryRow(gctx, query, args...).Scan(&stats.Total); err != nil {
			return fmt.Errorf("count articles: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		q := window("COALESCE(c.name, '"+domain.UncategorizedLabel+"')", "COUNT(*)").
			LeftJoin("categories c ON c.id = a.category_id").
			GroupBy("c.name").
			OrderBy("COUNT(*) DESC")
		return r.collect(gctx, q, "by category", stats.ByCategory)
	})

	g.Go(func() error {
		q := window("a.source", "COUNT(*)").
			GroupBy("a.source").
			OrderBy("COUNT(*) DESC", "a.source").
			Limit(topSources)
		return r.collect(gctx, q, "by source", stats.BySource)
	})

	g.Go(func() error {
		q := window("a.archived_on", "COUNT(*)").
			GroupBy("a.archived_on").
			OrderBy("a.archived_on")

		query, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build by day query: %w", err)
		}
		rows, err := r.db.executor(gctx).Query(gctx, query, args...)
		if err != nil {
			return fmt.Errorf("query by day: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var (
				day   time.Time
				count int64
			)
			if err := rows.Scan(&day, &count); err != nil {
				return fmt.Errorf("scan by day: %w", err)
			}
			stats.ByDay[day.Format(domain.DateLayout)] = count
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return domain.ArticleStats{}, err
	}
	return stats, nil
}

func (r *StatsRepository) collect(ctx context.Context, q sq.SelectBuilder, label string, into map[string]int64) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build %s query: %w", label, err)
	}
	rows, err := r.db.executor(ctx).Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query %s: %w", label, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name  string
			count int64
		)
		if err := rows.Scan(&name, &count); err != nil {
			return fmt.Errorf("scan %s: %w", label, err)
		}
		into[name] += count
	}
	return rows.Err()
}
