package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"newsdigest/internal/domain"
	"newsdigest/internal/metrics"
	"newsdigest/internal/ports"
	"newsdigest/internal/validation"
)

const (
	weeklyArtifactName = "weekly_digest.json"
	evidenceArticles   = 100
)

// WeeklyAggregationDeps wires the weekly read and write paths.
type WeeklyAggregationDeps struct {
	Tx             ports.TxManager
	Missions       ports.MissionRepository
	Categories     ports.CategoryRepository
	Articles       ports.ArticleRepository
	Stats          ports.StatsRepository
	Digests        ports.DigestRepository
	Artifacts      ports.ArtifactWriter
	WeekStart      func(missionID string) time.Weekday
	Location       *time.Location
	DefaultMission string
	Clock          func() time.Time
	Logger         *slog.Logger
}

// WeeklyAggregation serves the weekly evidence window and records weekly verdicts.
type WeeklyAggregation struct {
	tx             ports.TxManager
	missions       ports.MissionRepository
	categories     ports.CategoryRepository
	articles       ports.ArticleRepository
	stats          ports.StatsRepository
	digests        ports.DigestRepository
	artifacts      ports.ArtifactWriter
	weekStart      func(missionID string) time.Weekday
	location       *time.Location
	defaultMission string
	clock          func() time.Time
	logger         *slog.Logger
}

// NewWeeklyAggregation defaults to Monday weeks in UTC when WeekStart or
// Location is unset.
func NewWeeklyAggregation(deps WeeklyAggregationDeps) *WeeklyAggregation {
	w := &WeeklyAggregation{
		tx:             deps.Tx,
		missions:       deps.Missions,
		categories:     deps.Categories,
		articles:       deps.Articles,
		stats:          deps.Stats,
		digests:        deps.Digests,
		artifacts:      deps.Artifacts,
		weekStart:      deps.WeekStart,
		location:       deps.Location,
		defaultMission: deps.DefaultMission,
		clock:          deps.Clock,
		logger:         deps.Logger,
	}
	if w.weekStart == nil {
		w.weekStart = func(string) time.Weekday { return time.Monday }
	}
	if w.location == nil {
		w.location = time.UTC
	}
	if w.clock == nil {
		w.clock = time.Now
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

type weeklyContentMetadata struct {
	domain.WeeklyMetadata
	ExecutionID string `json:"execution_id"`
	MissionID   string `json:"mission_id"`
	WeekStart   string `json:"week_start"`
	WeekEnd     string `json:"week_end"`
}

type weeklyContent struct {
	DigestID         int64                             `json:"digest_id,omitempty"`
	Summary          string                            `json:"summary"`
	Trends           []domain.Trend                    `json:"trends"`
	TopStories       []domain.TopStory                 `json:"top_stories"`
	CategoryAnalysis map[string]domain.CategoryInsight `json:"category_analysis"`
	IsStandard       bool                              `json:"is_standard"`
	Metadata         weeklyContentMetadata             `json:"metadata"`
	GeneratedAt      string                            `json:"generated_at"`
}

type weeklyParams struct {
	Theme string `json:"theme"`
}

// Evidence bundles stats, active categories and selected articles for a week.
func (w *WeeklyAggregation) Evidence(ctx context.Context, missionID, weekStart, weekEnd string) (domain.WeeklyEvidence, error) {
	if missionID == "" {
		missionID = w.defaultMission
	}
	from, to, err := parseWindow(weekStart, weekEnd, weekFields, true)
	if err != nil {
		return domain.WeeklyEvidence{}, err
	}
	rng := domain.DateRange{From: &from, To: &to}

	stats, err := w.stats.Stats(ctx, missionID, from, to)
	if err != nil {
		return domain.WeeklyEvidence{}, fmt.Errorf("weekly stats: %w", err)
	}
	categories, err := w.categories.List(ctx, missionID, rng)
	if err != nil {
		return domain.WeeklyEvidence{}, fmt.Errorf("weekly categories: %w", err)
	}
	selected, err := w.articles.Query(ctx, domain.ArticleFilter{
		MissionID: missionID,
		Range:     rng,
		Status:    domain.StatusSelected,
		Limit:     evidenceArticles,
	})
	if err != nil {
		return domain.WeeklyEvidence{}, fmt.Errorf("weekly articles: %w", err)
	}

	return domain.WeeklyEvidence{
		MissionID:  missionID,
		WeekStart:  from.Format(domain.DateLayout),
		WeekEnd:    to.Format(domain.DateLayout),
		Stats:      stats,
		Categories: categories,
		Selected:   selected,
	}, nil
}

// Submit validates and stores a weekly verdict. Standard analyses replace the
// week's previous standard digest; thematic ones are always appended.
func (w *WeeklyAggregation) Submit(ctx context.Context, v domain.WeeklyVerdict) (domain.WeeklySubmissionResult, error) {
	if v.MissionID == "" {
		v.MissionID = w.defaultMission
	}

	if err := validation.Weekly(v, w.weekStart(v.MissionID)); err != nil {
		metrics.RecordSubmission("weekly", "rejected")
		return domain.WeeklySubmissionResult{}, err
	}

	start, _ := domain.ParseDate(v.WeekStart)
	end, _ := domain.ParseDate(v.WeekEnd)
	now := w.clock().In(w.location)
	standard := v.Standard()

	content := weeklyContent{
		Summary:          v.Summary,
		Trends:           v.Trends,
		TopStories:       v.TopStories,
		CategoryAnalysis: v.CategoryAnalysis,
		IsStandard:       standard,
		Metadata: weeklyContentMetadata{
			WeeklyMetadata: v.Metadata,
			ExecutionID:    v.ExecutionID,
			MissionID:      v.MissionID,
			WeekStart:      v.WeekStart,
			WeekEnd:        v.WeekEnd,
		},
		GeneratedAt: now.Format(time.RFC3339),
	}
	if content.CategoryAnalysis == nil {
		content.CategoryAnalysis = map[string]domain.CategoryInsight{}
	}

	raw, err := json.Marshal(content)
	if err != nil {
		return domain.WeeklySubmissionResult{}, fmt.Errorf("encode weekly content: %w", err)
	}

	digest := domain.WeeklyDigest{
		MissionID:   v.MissionID,
		WeekStart:   start,
		WeekEnd:     end,
		Content:     raw,
		IsStandard:  standard,
		GeneratedAt: now,
	}
	if v.Thematic() {
		params, err := json.Marshal(weeklyParams{Theme: v.Metadata.Theme})
		if err != nil {
			return domain.WeeklySubmissionResult{}, fmt.Errorf("encode weekly params: %w", err)
		}
		digest.Params = params
	}

	var digestID int64
	err = w.tx.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := w.missions.Exists(ctx, v.MissionID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnknownMission, v.MissionID)
		}
		if standard {
			digestID, err = w.digests.UpsertStandardWeekly(ctx, digest)
		} else {
			digestID, err = w.digests.InsertThematicWeekly(ctx, digest)
		}
		return err
	})
	if err != nil {
		metrics.RecordSubmission("weekly", "failed")
		return domain.WeeklySubmissionResult{}, fmt.Errorf("submit weekly digest: %w", err)
	}
	metrics.RecordSubmission("weekly", "accepted")

	result := domain.WeeklySubmissionResult{
		Status:          "success",
		ExecutionID:     v.ExecutionID,
		MissionID:       v.MissionID,
		DigestID:        digestID,
		WeekRange:       v.WeekStart + " to " + v.WeekEnd,
		IsStandard:      standard,
		TrendsCount:     len(v.Trends),
		TopStoriesCount: len(v.TopStories),
	}

	if w.artifacts != nil {
		content.DigestID = digestID
		path, err := w.artifacts.Write(v.ExecutionID, weeklyArtifactName, now, content)
		if err != nil {
			w.logger.Warn("artifact export failed", "execution_id", v.ExecutionID, "error", err)
			result.ArtifactError = err.Error()
		} else {
			result.OutputPath = path
		}
	}

	kind := "standard"
	if !standard {
		kind = "thematic"
	}
	result.Message = fmt.Sprintf("%s weekly digest %s saved", kind, result.WeekRange)

	w.logger.Info("weekly digest accepted",
		"mission_id", v.MissionID,
		"execution_id", v.ExecutionID,
		"digest_id", digestID,
		"standard", standard,
		"theme", v.Metadata.Theme,
	)

	return result, nil
}
