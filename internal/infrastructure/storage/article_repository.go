package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

const insertArticleSQL = `
INSERT INTO articles (
    mission_id, category_id, daily_digest_id, execution_id, title, url, source,
    description, pub_date, archived_on, status, exclusion_reason, relevance_score
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (mission_id, archived_on, url, status) DO NOTHING`

const recentHeadlinesSQL = `
SELECT a.title, a.url, a.archived_on, COALESCE(c.name, 'uncategorized')
FROM articles a
LEFT JOIN categories c ON c.id = a.category_id
WHERE a.mission_id = $1 AND a.status = 'selected' AND a.archived_on >= $2
ORDER BY a.archived_on DESC, a.id DESC
LIMIT 50`

var articleColumns = []string{
	"a.id",
	"a.mission_id",
	"a.category_id",
	"COALESCE(c.name, '')",
	"a.title",
	"a.url",
	"a.source",
	"COALESCE(a.description, '')",
	"a.pub_date",
	"a.archived_on",
	"a.status",
	"a.exclusion_reason",
	"a.relevance_score",
	"a.daily_digest_id",
	"a.execution_id",
	"a.created_at",
}

// ArticleRepository is the append-only archive of analyzed items.
type ArticleRepository struct {
	db *DB
}

var _ ports.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository wires the archive onto the shared pgx pool.
func NewArticleRepository(db *DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// InsertBatch appends articles in one round trip; rows already archived
// for the same (mission, day, url, status) are skipped and counted separately.
func (r *ArticleRepository) InsertBatch(ctx context.Context, articles []domain.NewArticle) (domain.ArchiveCounts, error) {
	var counts domain.ArchiveCounts
	if len(articles) == 0 {
		return counts, nil
	}

	batch := &pgx.Batch{}
	for _, a := range articles {
		var reason *string
		if a.ExclusionReason != nil {
			value := string(*a.ExclusionReason)
			reason = &value
		}
		batch.Queue(insertArticleSQL,
			a.MissionID,
			a.CategoryID,
			a.DailyDigestID,
			a.ExecutionID,
			a.Title,
			a.URL,
			a.Source,
			nullableText(a.Description),
			a.PublishedAt,
			a.ArchivedOn,
			string(a.Status),
			reason,
			a.RelevanceScore,
		)
	}

	err := r.db.RunInTx(ctx, func(ctx context.Context) (err error) {
		br := r.db.executor(ctx).SendBatch(ctx, batch)
		defer func() {
			if cerr := br.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close article batch: %w", cerr)
			}
		}()

		for i, a := range articles {
			tag, err := br.Exec()
			if err != nil {
				return fmt.Errorf("insert article %d (%s): %w", i, a.URL, err)
			}
			if tag.RowsAffected() == 0 {
				counts.AlreadyArchived++
				continue
			}
			switch a.Status {
			case domain.StatusSelected:
				counts.Selected++
			case domain.StatusExcluded:
				counts.Excluded++
			}
		}
		return nil
	})
	if err != nil {
		return domain.ArchiveCounts{}, err
	}
	return counts, nil
}

// Query reads archived articles newest first.
func (r *ArticleRepository) Query(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, error) {
	q := psql.Select(articleColumns...).
		From("articles a").
		LeftJoin("categories c ON c.id = a.category_id").
		Where(sq.Eq{"a.mission_id": filter.MissionID})

	if names := normalizedNames(filter.Categories); len(names) > 0 {
		q = q.Where(sq.Eq{"c.normalized_name": names})
	}
	if filter.Status != "" {
		q = q.Where(sq.Eq{"a.status": string(filter.Status)})
	}
	q = whereArchivedWithin(q, filter.Range)
	q = q.OrderBy("COALESCE(a.pub_date, a.created_at) DESC", "a.id DESC").
		Limit(uint64(domain.ClampLimit(filter.Limit)))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build articles query: %w", err)
	}

	rows, err := r.db.executor(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	articles := make([]domain.Article, 0)
	for rows.Next() {
		var (
			a      domain.Article
			status string
			reason *string
		)
		if err := rows.Scan(
			&a.ID,
			&a.MissionID,
			&a.CategoryID,
			&a.Category,
			&a.Title,
			&a.URL,
			&a.Source,
			&a.Description,
			&a.PublishedAt,
			&a.ArchivedOn,
			&status,
			&reason,
			&a.RelevanceScore,
			&a.DailyDigestID,
			&a.ExecutionID,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		a.Status = domain.ArticleStatus(status)
		if reason != nil {
			er := domain.ExclusionReason(*reason)
			a.ExclusionReason = &er
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return articles, nil
}

// RecentSelectedHeadlines lists items published on or after since.
func (r *ArticleRepository) RecentSelectedHeadlines(ctx context.Context, missionID string, since time.Time) ([]domain.Headline, error) {
	rows, err := r.db.executor(ctx).Query(ctx, recentHeadlinesSQL, missionID, since)
	if err != nil {
		return nil, fmt.Errorf("query recent headlines: %w", err)
	}
	defer rows.Close()

	headlines := make([]domain.Headline, 0)
	for rows.Next() {
		var (
			h  domain.Headline
			on time.Time
		)
		if err := rows.Scan(&h.Title, &h.URL, &on, &h.Category); err != nil {
			return nil, fmt.Errorf("scan headline: %w", err)
		}
		h.Date = on.Format(domain.DateLayout)
		headlines = append(headlines, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate headlines: %w", err)
	}
	return headlines, nil
}

func normalizedNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		key := domain.NormalizeCategoryName(name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
