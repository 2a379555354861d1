package usecase

import (
	"context"
	"log/slog"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

// DigestFeed is the downstream read side: publishers fetch the latest
// digests and flag them once delivered.
type DigestFeed struct {
	digests        ports.DigestRepository
	defaultMission string
	logger         *slog.Logger
}

// NewDigestFeed wires the publisher-facing read side.
func NewDigestFeed(digests ports.DigestRepository, defaultMission string, logger *slog.Logger) *DigestFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &DigestFeed{digests: digests, defaultMission: defaultMission, logger: logger}
}

func (f *DigestFeed) LatestDaily(ctx context.Context, missionID string) (domain.DailyDigest, error) {
	return f.digests.LatestDaily(ctx, f.mission(missionID))
}

func (f *DigestFeed) DailyByDate(ctx context.Context, missionID, date string) (domain.DailyDigest, error) {
	day, err := domain.ParseDate(date)
	if err != nil {
		return domain.DailyDigest{}, domain.NewValidationError("date", "%v", err)
	}
	return f.digests.DailyByDate(ctx, f.mission(missionID), day)
}

func (f *DigestFeed) LatestWeekly(ctx context.Context, missionID string, standardOnly bool) (domain.WeeklyDigest, error) {
	return f.digests.LatestWeekly(ctx, f.mission(missionID), standardOnly)
}

func (f *DigestFeed) MarkDailyPosted(ctx context.Context, id int64) error {
	if err := f.digests.MarkDailyPosted(ctx, id); err != nil {
		return err
	}
	f.logger.Info("daily digest marked posted", "digest_id", id)
	return nil
}

func (f *DigestFeed) MarkWeeklyPosted(ctx context.Context, id int64) error {
	if err := f.digests.MarkWeeklyPosted(ctx, id); err != nil {
		return err
	}
	f.logger.Info("weekly digest marked posted", "digest_id", id)
	return nil
}

func (f *DigestFeed) mission(id string) string {
	if id == "" {
		return f.defaultMission
	}
	return id
}
