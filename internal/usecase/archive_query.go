package usecase

import (
	"context"
	"strings"
	"time"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

// ArchiveQueryDeps wires the read-only archive adapters.
type ArchiveQueryDeps struct {
	Categories     ports.CategoryRepository
	Articles       ports.ArticleRepository
	Stats          ports.StatsRepository
	Location       *time.Location
	DefaultMission string
	Clock          func() time.Time
}

// ArchiveQuery serves the read side used during classification.
type ArchiveQuery struct {
	categories     ports.CategoryRepository
	articles       ports.ArticleRepository
	stats          ports.StatsRepository
	location       *time.Location
	defaultMission string
	clock          func() time.Time
}

// NewArchiveQuery builds the read side; a nil Location means UTC.
func NewArchiveQuery(deps ArchiveQueryDeps) *ArchiveQuery {
	q := &ArchiveQuery{
		categories:     deps.Categories,
		articles:       deps.Articles,
		stats:          deps.Stats,
		location:       deps.Location,
		defaultMission: deps.DefaultMission,
		clock:          deps.Clock,
	}
	if q.location == nil {
		q.location = time.UTC
	}
	if q.clock == nil {
		q.clock = time.Now
	}
	return q
}

// ArticlesRequest carries get_articles parameters as received on the wire.
type ArticlesRequest struct {
	MissionID  string
	Categories []string
	From       string
	To         string
	Limit      int
}

// Categories lists mission categories, restricted to those with articles
// in the window when either bound is given.
func (q *ArchiveQuery) Categories(ctx context.Context, missionID, from, to string) ([]domain.Category, error) {
	rng, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}
	return q.categories.List(ctx, q.mission(missionID), rng)
}

func (q *ArchiveQuery) Articles(ctx context.Context, req ArticlesRequest) ([]domain.Article, error) {
	rng, err := parseRange(req.From, req.To)
	if err != nil {
		return nil, err
	}
	if req.Limit < 0 {
		return nil, domain.NewValidationError("limit", "must be >= 0, got %d", req.Limit)
	}
	return q.articles.Query(ctx, domain.ArticleFilter{
		MissionID:  q.mission(req.MissionID),
		Categories: req.Categories,
		Range:      rng,
		Limit:      domain.ClampLimit(req.Limit),
	})
}

// Stats aggregates the inclusive window; both dates are required.
func (q *ArchiveQuery) Stats(ctx context.Context, missionID, from, to string) (domain.ArticleStats, error) {
	start, end, err := parseWindow(from, to, dateFields, false)
	if err != nil {
		return domain.ArticleStats{}, err
	}
	return q.stats.Stats(ctx, q.mission(missionID), start, end)
}

// RecentHeadlines lists selected items archived within the trailing window
// of days calendar days, today included.
func (q *ArchiveQuery) RecentHeadlines(ctx context.Context, missionID string, days int) ([]domain.Headline, error) {
	days = domain.ClampRecentDays(days)
	today := domain.CalendarDate(q.clock(), q.location)
	since := today.AddDate(0, 0, -(days - 1))
	return q.articles.RecentSelectedHeadlines(ctx, q.mission(missionID), since)
}

func (q *ArchiveQuery) mission(id string) string {
	if id == "" {
		return q.defaultMission
	}
	return id
}

// windowFields names the request arguments a window was parsed from.
type windowFields struct {
	from, to string
}

var (
	dateFields = windowFields{from: "date_from", to: "date_to"}
	weekFields = windowFields{from: "week_start", to: "week_end"}
)

func parseRange(from, to string) (domain.DateRange, error) {
	return parseNamedRange(from, to, dateFields)
}

func parseNamedRange(from, to string, fields windowFields) (domain.DateRange, error) {
	ve := &domain.ValidationError{}
	start, err := domain.ParseOptionalDate(from)
	if err != nil {
		ve.Add(fields.from, "%v", err)
	}
	end, err := domain.ParseOptionalDate(to)
	if err != nil {
		ve.Add(fields.to, "%v", err)
	}
	if start != nil && end != nil && start.After(*end) {
		ve.Add(fields.to, "must not be before %s", fields.from)
	}
	if err := ve.OrNil(); err != nil {
		return domain.DateRange{}, err
	}
	return domain.DateRange{From: start, To: end}, nil
}

// parseWindow parses a required inclusive window. strict rejects
// from == to, as a week must span more than one day.
func parseWindow(from, to string, fields windowFields, strict bool) (time.Time, time.Time, error) {
	ve := &domain.ValidationError{}
	if strings.TrimSpace(from) == "" {
		ve.Add(fields.from, "required")
	}
	if strings.TrimSpace(to) == "" {
		ve.Add(fields.to, "required")
	}
	if err := ve.OrNil(); err != nil {
		return time.Time{}, time.Time{}, err
	}

	rng, err := parseNamedRange(from, to, fields)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if strict && !rng.From.Before(*rng.To) {
		return time.Time{}, time.Time{}, domain.NewValidationError(fields.to, "must be after %s", fields.from)
	}
	return *rng.From, *rng.To, nil
}
