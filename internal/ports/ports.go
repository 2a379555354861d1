package ports

import (
	"context"
	"encoding/json"
	"time"

	"newsdigest/internal/domain"
)

// TxManager owns transaction boundaries; repositories join the tx carried by ctx.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// MissionRepository seeds and checks the mission namespace.
type MissionRepository interface {
	Seed(ctx context.Context, missions []domain.Mission) error
	Exists(ctx context.Context, missionID string) (bool, error)
}

// CategoryRepository is the mission-scoped label registry.
type CategoryRepository interface {
	Resolve(ctx context.Context, missionID, name string) (int64, error)
	List(ctx context.Context, missionID string, rng domain.DateRange) ([]domain.Category, error)
}

// ArticleRepository is the append-only archive.
type ArticleRepository interface {
	InsertBatch(ctx context.Context, articles []domain.NewArticle) (domain.ArchiveCounts, error)
	Query(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, error)
	RecentSelectedHeadlines(ctx context.Context, missionID string, since time.Time) ([]domain.Headline, error)
}

// StatsRepository aggregates archive volume.
type StatsRepository interface {
	Stats(ctx context.Context, missionID string, from, to time.Time) (domain.ArticleStats, error)
}

// DigestRepository stores daily and weekly digest records.
type DigestRepository interface {
	UpsertDaily(ctx context.Context, missionID string, date time.Time, content json.RawMessage, generatedAt time.Time) (int64, error)
	UpsertStandardWeekly(ctx context.Context, digest domain.WeeklyDigest) (int64, error)
	InsertThematicWeekly(ctx context.Context, digest domain.WeeklyDigest) (int64, error)
	LatestDaily(ctx context.Context, missionID string) (domain.DailyDigest, error)
	DailyByDate(ctx context.Context, missionID string, date time.Time) (domain.DailyDigest, error)
	LatestWeekly(ctx context.Context, missionID string, standardOnly bool) (domain.WeeklyDigest, error)
	MarkDailyPosted(ctx context.Context, id int64) error
	MarkWeeklyPosted(ctx context.Context, id int64) error
}

// ArtifactWriter exports a derivative JSON copy of a digest for audit.
type ArtifactWriter interface {
	Write(executionID, name string, at time.Time, payload any) (string, error)
}

// TextCleaner turns markup-bearing classifier text into plain text.
type TextCleaner interface {
	Clean(text string) string
}
