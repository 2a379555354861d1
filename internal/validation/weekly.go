package validation

import (
	"fmt"
	"strings"
	"time"

	"newsdigest/internal/domain"
)

const (
	MinTrends     = 2
	MinTopStories = 3
)

// Weekly validates a weekly verdict against the mission's week-start weekday.
func Weekly(v domain.WeeklyVerdict, weekStartDay time.Weekday) error {
	ve := &domain.ValidationError{}

	checkExecutionID(ve, v.ExecutionID)
	required(ve, "mission_id", v.MissionID)
	required(ve, "summary", v.Summary)

	checkWeek(ve, v.WeekStart, v.WeekEnd, weekStartDay)

	if len(v.Trends) < MinTrends {
		ve.Add("trends", "at least %d trends required, got %d", MinTrends, len(v.Trends))
	}
	for i, trend := range v.Trends {
		path := fmt.Sprintf("trends[%d]", i)
		required(ve, path+".name", trend.Name)
		required(ve, path+".description", trend.Description)
		switch trend.Direction {
		case domain.TrendRising, domain.TrendStable, domain.TrendDeclining:
		case "":
			ve.Add(path+".direction", "required")
		default:
			ve.Add(path+".direction", "invalid value %q, must be one of [rising stable declining]", trend.Direction)
		}
	}

	if len(v.TopStories) < MinTopStories {
		ve.Add("top_stories", "at least %d stories required, got %d", MinTopStories, len(v.TopStories))
	}
	for i, story := range v.TopStories {
		path := fmt.Sprintf("top_stories[%d]", i)
		required(ve, path+".title", story.Title)
		required(ve, path+".summary", story.Summary)
		checkURL(ve, path+".url", story.URL)
	}

	for name := range v.CategoryAnalysis {
		if strings.TrimSpace(name) == "" {
			ve.Add("category_analysis", "category names must not be empty")
		}
	}

	checkTheme(ve, v)

	return ve.OrNil()
}

func checkWeek(ve *domain.ValidationError, rawStart, rawEnd string, weekStartDay time.Weekday) {
	start, startErr := domain.ParseDate(rawStart)
	if startErr != nil {
		ve.Add("week_start", "%v", startErr)
	}
	end, endErr := domain.ParseDate(rawEnd)
	if endErr != nil {
		ve.Add("week_end", "%v", endErr)
	}
	if startErr == nil && start.Weekday() != weekStartDay {
		ve.Add("week_start", "%s is a %s, weeks start on %s", rawStart, start.Weekday(), weekStartDay)
	}
	if startErr == nil && endErr == nil && !start.Before(end) {
		ve.Add("week_end", "must be after week_start")
	}
}

func checkTheme(ve *domain.ValidationError, v domain.WeeklyVerdict) {
	meta := v.Metadata
	if !v.Thematic() {
		if meta.DataSource != "" && !validDataSource(meta.DataSource) {
			ve.Add("metadata.data_source", "invalid value %q, must be one of [database mixed web_search]", meta.DataSource)
		}
		return
	}

	if v.IsStandard != nil && *v.IsStandard {
		ve.Add("is_standard", "thematic submissions must set is_standard to false")
	}

	switch {
	case meta.DataSource == "":
		ve.Add("metadata.data_source", "required when theme is set")
	case !validDataSource(meta.DataSource):
		ve.Add("metadata.data_source", "invalid value %q, must be one of [database mixed web_search]", meta.DataSource)
	}

	switch {
	case meta.DBArticlesMatched == nil:
		ve.Add("metadata.db_articles_matched", "required when theme is set")
	case *meta.DBArticlesMatched < 0:
		ve.Add("metadata.db_articles_matched", "must be >= 0, got %d", *meta.DBArticlesMatched)
	case validDataSource(meta.DataSource):
		if want := domain.ExpectedDataSource(*meta.DBArticlesMatched); want != meta.DataSource {
			ve.Add("metadata.data_source", "%d matched articles implies %q, got %q",
				*meta.DBArticlesMatched, want, meta.DataSource)
		}
	}
}

func validDataSource(ds domain.DataSource) bool {
	switch ds {
	case domain.DataSourceDatabase, domain.DataSourceMixed, domain.DataSourceWebSearch:
		return true
	}
	return false
}
