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
	dailyArtifactName = "digest.json"
	unknownSource     = "unknown"
)

// DailySubmissionDeps wires the driven adapters into the daily write path.
type DailySubmissionDeps struct {
	Tx             ports.TxManager
	Missions       ports.MissionRepository
	Categories     ports.CategoryRepository
	Articles       ports.ArticleRepository
	Digests        ports.DigestRepository
	Artifacts      ports.ArtifactWriter
	Cleaner        ports.TextCleaner
	Location       *time.Location
	DefaultMission string
	Clock          func() time.Time
	Logger         *slog.Logger
}

// DailySubmission accepts a classifier's daily verdict and records it.
type DailySubmission struct {
	tx             ports.TxManager
	missions       ports.MissionRepository
	categories     ports.CategoryRepository
	articles       ports.ArticleRepository
	digests        ports.DigestRepository
	artifacts      ports.ArtifactWriter
	cleaner        ports.TextCleaner
	location       *time.Location
	defaultMission string
	clock          func() time.Time
	logger         *slog.Logger
}

// NewDailySubmission wires the daily write path. Location defaults to UTC
// and Clock to time.Now.
func NewDailySubmission(deps DailySubmissionDeps) *DailySubmission {
	s := &DailySubmission{
		tx:             deps.Tx,
		missions:       deps.Missions,
		categories:     deps.Categories,
		articles:       deps.Articles,
		digests:        deps.Digests,
		artifacts:      deps.Artifacts,
		cleaner:        deps.Cleaner,
		location:       deps.Location,
		defaultMission: deps.DefaultMission,
		clock:          deps.Clock,
		logger:         deps.Logger,
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

type dailySummary struct {
	Date          string   `json:"date"`
	HeadlineCount int      `json:"headline_count"`
	Categories    []string `json:"categories"`
}

type dailyContentMetadata struct {
	ExecutionID        string                         `json:"execution_id"`
	MissionID          string                         `json:"mission_id"`
	ArticlesAnalyzed   int                            `json:"articles_analyzed"`
	WebSearches        int                            `json:"web_searches"`
	FactChecks         int                            `json:"fact_checks"`
	DeepDives          int                            `json:"deep_dives"`
	ResearchDoc        string                         `json:"research_doc"`
	SelectedCount      int                            `json:"selected_count"`
	ExcludedCount      int                            `json:"excluded_count"`
	ExclusionBreakdown map[domain.ExclusionReason]int `json:"exclusion_breakdown"`
}

// dailyContent is the structured payload stored on the digest row and
// exported as the execution artifact.
type dailyContent struct {
	DigestID    int64                 `json:"digest_id,omitempty"`
	Digest      dailySummary          `json:"digest"`
	Headlines   []domain.NewsItem     `json:"headlines"`
	Research    []domain.NewsItem     `json:"research"`
	Industry    []domain.NewsItem     `json:"industry"`
	Watching    []domain.NewsItem     `json:"watching"`
	Excluded    []domain.ExcludedItem `json:"excluded"`
	Metadata    dailyContentMetadata  `json:"metadata"`
	SubmittedAt string                `json:"submitted_at"`
}

// Submit validates the verdict and, in one transaction, upserts the day's
// digest, resolves categories and archives every analyzed item. A rejected
// verdict performs no writes. Artifact export happens after commit and its
// failure is reported without failing the submission.
func (s *DailySubmission) Submit(ctx context.Context, v domain.DailyVerdict) (domain.DailySubmissionResult, error) {
	if v.Metadata.MissionID == "" {
		v.Metadata.MissionID = s.defaultMission
	}
	missionID := v.Metadata.MissionID

	if err := validation.Daily(v); err != nil {
		metrics.RecordSubmission("daily", "rejected")
		return domain.DailySubmissionResult{}, err
	}

	now := s.clock().In(s.location)
	day := domain.CalendarDate(now, s.location)
	content := s.buildContent(v, day, now)

	raw, err := json.Marshal(content)
	if err != nil {
		return domain.DailySubmissionResult{}, fmt.Errorf("encode digest content: %w", err)
	}

	var (
		digestID int64
		saved    domain.ArchiveCounts
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := s.missions.Exists(ctx, missionID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnknownMission, missionID)
		}

		digestID, err = s.digests.UpsertDaily(ctx, missionID, day, raw, now)
		if err != nil {
			return err
		}

		categoryIDs, err := s.resolveCategories(ctx, missionID, v)
		if err != nil {
			return err
		}

		saved, err = s.articles.InsertBatch(ctx, s.buildArticles(v, missionID, day, digestID, categoryIDs))
		return err
	})
	if err != nil {
		metrics.RecordSubmission("daily", "failed")
		return domain.DailySubmissionResult{}, fmt.Errorf("submit daily digest: %w", err)
	}

	metrics.RecordSubmission("daily", "accepted")
	metrics.RecordArchive(saved.Selected, saved.Excluded, saved.AlreadyArchived)

	result := domain.DailySubmissionResult{
		Status:             "success",
		ExecutionID:        v.ExecutionID,
		MissionID:          missionID,
		DigestID:           digestID,
		DigestDate:         day.Format(domain.DateLayout),
		SelectedCount:      v.SelectedCount(),
		ExcludedCount:      len(v.Excluded),
		SavedCounts:        saved,
		ExclusionBreakdown: v.ExclusionBreakdown(),
	}

	if s.artifacts != nil {
		content.DigestID = digestID
		path, err := s.artifacts.Write(v.ExecutionID, dailyArtifactName, now, content)
		if err != nil {
			s.logger.Warn("artifact export failed", "execution_id", v.ExecutionID, "error", err)
			result.ArtifactError = err.Error()
		} else {
			result.OutputPath = path
		}
	}

	result.Message = fmt.Sprintf("digest %s saved: %d selected, %d excluded (%d already archived)",
		result.DigestDate, result.SelectedCount, result.ExcludedCount, saved.AlreadyArchived)

	s.logger.Info("daily digest accepted",
		"mission_id", missionID,
		"execution_id", v.ExecutionID,
		"digest_id", digestID,
		"selected", result.SelectedCount,
		"excluded", result.ExcludedCount,
		"already_archived", saved.AlreadyArchived,
	)

	return result, nil
}

func (s *DailySubmission) resolveCategories(ctx context.Context, missionID string, v domain.DailyVerdict) (map[string]int64, error) {
	ids := make(map[string]int64)
	resolve := func(name string) error {
		key := domain.NormalizeCategoryName(name)
		if _, done := ids[key]; done {
			return nil
		}
		id, err := s.categories.Resolve(ctx, missionID, name)
		if err != nil {
			return fmt.Errorf("resolve category %q: %w", name, err)
		}
		ids[key] = id
		return nil
	}

	for _, section := range domain.Sections {
		for _, item := range v.SectionItems(section) {
			if err := resolve(item.Category); err != nil {
				return nil, err
			}
		}
	}
	for _, item := range v.Excluded {
		if err := resolve(item.Category); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (s *DailySubmission) buildArticles(v domain.DailyVerdict, missionID string, day time.Time, digestID int64, categoryIDs map[string]int64) []domain.NewArticle {
	articles := make([]domain.NewArticle, 0, v.SelectedCount()+len(v.Excluded))

	for _, section := range domain.Sections {
		for _, item := range v.SectionItems(section) {
			published, _ := domain.ParsePublishedAt(item.PublishedAt)
			linked := digestID
			articles = append(articles, domain.NewArticle{
				MissionID:      missionID,
				CategoryID:     categoryIDs[domain.NormalizeCategoryName(item.Category)],
				DailyDigestID:  &linked,
				ExecutionID:    v.ExecutionID,
				Title:          s.clean(item.Title),
				URL:            item.URL,
				Source:         item.Source,
				Description:    s.clean(item.Summary),
				PublishedAt:    published,
				ArchivedOn:     day,
				Status:         domain.StatusSelected,
				RelevanceScore: item.RelevanceScore,
			})
		}
	}

	for _, item := range v.Excluded {
		reason := item.Reason
		source := item.Source
		if source == "" {
			source = unknownSource
		}
		articles = append(articles, domain.NewArticle{
			MissionID:       missionID,
			CategoryID:      categoryIDs[domain.NormalizeCategoryName(item.Category)],
			ExecutionID:     v.ExecutionID,
			Title:           s.clean(item.Title),
			URL:             item.URL,
			Source:          source,
			ArchivedOn:      day,
			Status:          domain.StatusExcluded,
			ExclusionReason: &reason,
			RelevanceScore:  item.Score,
		})
	}
	return articles
}

func (s *DailySubmission) buildContent(v domain.DailyVerdict, day, now time.Time) dailyContent {
	categories := make([]string, 0)
	seen := make(map[string]struct{})
	for _, section := range domain.Sections {
		for _, item := range v.SectionItems(section) {
			key := domain.NormalizeCategoryName(item.Category)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			categories = append(categories, domain.CleanCategoryName(item.Category))
		}
	}

	excluded := make([]domain.ExcludedItem, 0, len(v.Excluded))
	for _, item := range v.Excluded {
		if item.Source == "" {
			item.Source = unknownSource
		}
		excluded = append(excluded, item)
	}

	return dailyContent{
		Digest: dailySummary{
			Date:          day.Format(domain.DateLayout),
			HeadlineCount: len(v.Headlines),
			Categories:    categories,
		},
		Headlines: nonNilItems(v.Headlines),
		Research:  nonNilItems(v.Research),
		Industry:  nonNilItems(v.Industry),
		Watching:  nonNilItems(v.Watching),
		Excluded:  excluded,
		Metadata: dailyContentMetadata{
			ExecutionID:        v.ExecutionID,
			MissionID:          v.Metadata.MissionID,
			ArticlesAnalyzed:   *v.Metadata.ArticlesAnalyzed,
			WebSearches:        v.Metadata.WebSearches,
			FactChecks:         v.Metadata.FactChecks,
			DeepDives:          v.Metadata.DeepDives,
			ResearchDoc:        v.Metadata.ResearchDoc,
			SelectedCount:      v.SelectedCount(),
			ExcludedCount:      len(v.Excluded),
			ExclusionBreakdown: v.ExclusionBreakdown(),
		},
		SubmittedAt: now.Format(time.RFC3339),
	}
}

func (s *DailySubmission) clean(text string) string {
	if s.cleaner == nil {
		return text
	}
	return s.cleaner.Clean(text)
}

func nonNilItems(items []domain.NewsItem) []domain.NewsItem {
	if items == nil {
		return []domain.NewsItem{}
	}
	return items
}
