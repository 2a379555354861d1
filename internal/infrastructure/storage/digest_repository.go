package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

// Resubmitting a day replaces content but leaves the posted flag alone.
const upsertDailySQL = `
INSERT INTO daily_digests (mission_id, date, content, generated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (mission_id, date) DO UPDATE
SET content = EXCLUDED.content,
    generated_at = EXCLUDED.generated_at
RETURNING id`

const upsertStandardWeeklySQL = `
INSERT INTO weekly_digests (mission_id, week_start, week_end, params, content, is_standard, generated_at)
VALUES ($1, $2, $3, $4, $5, TRUE, $6)
ON CONFLICT (mission_id, week_start, week_end) WHERE is_standard DO UPDATE
SET params = EXCLUDED.params,
    content = EXCLUDED.content,
    generated_at = EXCLUDED.generated_at
RETURNING id`

const insertThematicWeeklySQL = `
INSERT INTO weekly_digests (mission_id, week_start, week_end, params, content, is_standard, generated_at)
VALUES ($1, $2, $3, $4, $5, FALSE, $6)
RETURNING id`

const (
	dailyColumns  = "id, mission_id, date, content, generated_at, posted"
	weeklyColumns = "id, mission_id, week_start, week_end, params, content, is_standard, generated_at, posted"
)

// DigestRepository stores daily and weekly digest records.
type DigestRepository struct {
	db *DB
}

var _ ports.DigestRepository = (*DigestRepository)(nil)

// NewDigestRepository wires a pgx implementation of the digest store.
func NewDigestRepository(db *DB) *DigestRepository {
	return &DigestRepository{db: db}
}

func (r *DigestRepository) UpsertDaily(ctx context.Context, missionID string, date time.Time, content json.RawMessage, generatedAt time.Time) (int64, error) {
	var id int64
	err := r.db.executor(ctx).
		QueryRow(ctx, upsertDailySQL, missionID, date, []byte(content), generatedAt).
		Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert daily digest %s/%s: %w", missionID, date.Format(domain.DateLayout), err)
	}
	return id, nil
}

func (r *DigestRepository) UpsertStandardWeekly(ctx context.Context, digest domain.WeeklyDigest) (int64, error) {
	return r.writeWeekly(ctx, upsertStandardWeeklySQL, digest)
}

func (r *DigestRepository) InsertThematicWeekly(ctx context.Context, digest domain.WeeklyDigest) (int64, error) {
	return r.writeWeekly(ctx, insertThematicWeeklySQL, digest)
}

func (r *DigestRepository) writeWeekly(ctx context.Context, sql string, d domain.WeeklyDigest) (int64, error) {
	var params any
	if len(d.Params) > 0 {
		params = []byte(d.Params)
	}

	var id int64
	err := r.db.executor(ctx).
		QueryRow(ctx, sql, d.MissionID, d.WeekStart, d.WeekEnd, params, []byte(d.Content), d.GeneratedAt).
		Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("write weekly digest %s/%s: %w", d.MissionID, d.WeekStart.Format(domain.DateLayout), err)
	}
	return id, nil
}

func (r *DigestRepository) LatestDaily(ctx context.Context, missionID string) (domain.DailyDigest, error) {
	q := psql.Select(dailyColumns).
		From("daily_digests").
		Where(sq.Eq{"mission_id": missionID}).
		OrderBy("date DESC").
		Limit(1)
	return r.daily(ctx, q)
}

func (r *DigestRepository) DailyByDate(ctx context.Context, missionID string, date time.Time) (domain.DailyDigest, error) {
	q := psql.Select(dailyColumns).
		From("daily_digests").
		Where(sq.Eq{"mission_id": missionID}).
		Where(sq.Eq{"date": date})
	return r.daily(ctx, q)
}

// LatestWeekly returns the most recent weekly digest by week_start, newest
// generation first. standardOnly skips thematic analyses.
func (r *DigestRepository) LatestWeekly(ctx context.Context, missionID string, standardOnly bool) (domain.WeeklyDigest, error) {
	q := psql.Select(weeklyColumns).
		From("weekly_digests").
		Where(sq.Eq{"mission_id": missionID})
	if standardOnly {
		q = q.Where(sq.Eq{"is_standard": true})
	}
	q = q.OrderBy("week_start DESC", "generated_at DESC").Limit(1)

	query, args, err := q.ToSql()
	if err != nil {
		return domain.WeeklyDigest{}, fmt.Errorf("build weekly query: %w", err)
	}

	var (
		d       domain.WeeklyDigest
		params  []byte
		content []byte
	)
	err = r.db.executor(ctx).QueryRow(ctx, query, args...).Scan(
		&d.ID, &d.MissionID, &d.WeekStart, &d.WeekEnd, &params, &content, &d.IsStandard, &d.GeneratedAt, &d.Posted,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.WeeklyDigest{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.WeeklyDigest{}, fmt.Errorf("read weekly digest: %w", err)
	}
	d.Params = params
	d.Content = content
	return d, nil
}

func (r *DigestRepository) MarkDailyPosted(ctx context.Context, id int64) error {
	return r.markPosted(ctx, "daily_digests", id)
}

func (r *DigestRepository) MarkWeeklyPosted(ctx context.Context, id int64) error {
	return r.markPosted(ctx, "weekly_digests", id)
}

func (r *DigestRepository) markPosted(ctx context.Context, table string, id int64) error {
	query, args, err := psql.Update(table).
		Set("posted", true).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark posted: %w", err)
	}

	tag, err := r.db.executor(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark %s %d posted: %w", table, id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DigestRepository) daily(ctx context.Context, q sq.SelectBuilder) (domain.DailyDigest, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return domain.DailyDigest{}, fmt.Errorf("build daily query: %w", err)
	}

	var (
		d       domain.DailyDigest
		content []byte
	)
	err = r.db.executor(ctx).QueryRow(ctx, query, args...).Scan(
		&d.ID, &d.MissionID, &d.Date, &content, &d.GeneratedAt, &d.Posted,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DailyDigest{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.DailyDigest{}, fmt.Errorf("read daily digest: %w", err)
	}
	d.Content = content
	return d, nil
}
