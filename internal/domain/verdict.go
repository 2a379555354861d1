package domain

// Confidence is the classifier's certainty about a selected item.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Section names the digest bucket a selected item was published under.
type Section string

const (
	SectionHeadlines Section = "headlines"
	SectionResearch  Section = "research"
	SectionIndustry  Section = "industry"
	SectionWatching  Section = "watching"
)

// Sections lists digest buckets in publication order.
var Sections = []Section{SectionHeadlines, SectionResearch, SectionIndustry, SectionWatching}

// NewsItem is a selected item as proposed by the classifier.
type NewsItem struct {
	Title          string     `json:"title"`
	Summary        string     `json:"summary"`
	URL            string     `json:"url"`
	Source         string     `json:"source"`
	Category       string     `json:"category"`
	Confidence     Confidence `json:"confidence"`
	RelevanceScore *int       `json:"relevance_score,omitempty"`
	PublishedAt    string     `json:"published_at,omitempty"`
}

// ExcludedItem is an analyzed item the classifier chose not to publish.
type ExcludedItem struct {
	URL      string          `json:"url"`
	Title    string          `json:"title"`
	Category string          `json:"category"`
	Reason   ExclusionReason `json:"reason"`
	Score    *int            `json:"score"`
	Source   string          `json:"source,omitempty"`
}

// DailyMetadata describes the analysis run behind a daily verdict.
type DailyMetadata struct {
	MissionID        string `json:"mission_id"`
	ArticlesAnalyzed *int   `json:"articles_analyzed"`
	WebSearches      int    `json:"web_searches"`
	FactChecks       int    `json:"fact_checks"`
	DeepDives        int    `json:"deep_dives"`
	ResearchDoc      string `json:"research_doc"`
}

// DailyVerdict is one cycle's full classification output.
type DailyVerdict struct {
	ExecutionID string         `json:"execution_id"`
	Headlines   []NewsItem     `json:"headlines"`
	Research    []NewsItem     `json:"research"`
	Industry    []NewsItem     `json:"industry"`
	Watching    []NewsItem     `json:"watching"`
	Excluded    []ExcludedItem `json:"excluded"`
	Metadata    DailyMetadata  `json:"metadata"`
}

// SectionItems returns the items of one bucket.
func (v DailyVerdict) SectionItems(s Section) []NewsItem {
	switch s {
	case SectionHeadlines:
		return v.Headlines
	case SectionResearch:
		return v.Research
	case SectionIndustry:
		return v.Industry
	case SectionWatching:
		return v.Watching
	}
	return nil
}

// SelectedCount counts items across all selected buckets.
func (v DailyVerdict) SelectedCount() int {
	return len(v.Headlines) + len(v.Research) + len(v.Industry) + len(v.Watching)
}

// ExclusionBreakdown counts excluded items per reason; every reason is present.
func (v DailyVerdict) ExclusionBreakdown() map[ExclusionReason]int {
	breakdown := make(map[ExclusionReason]int, len(ExclusionReasons))
	for _, r := range ExclusionReasons {
		breakdown[r] = 0
	}
	for _, item := range v.Excluded {
		if item.Reason.Valid() {
			breakdown[item.Reason]++
		}
	}
	return breakdown
}

// TrendDirection is the closed set of trend movements.
type TrendDirection string

const (
	TrendRising    TrendDirection = "rising"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

// Trend is one movement identified across the week.
type Trend struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Evidence    []string       `json:"evidence,omitempty"`
	Direction   TrendDirection `json:"direction"`
}

// TopStory is one of the week's most significant items.
type TopStory struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
	Impact  string `json:"impact,omitempty"`
}

// CategoryInsight summarizes one category over the week.
type CategoryInsight struct {
	Summary      string   `json:"summary"`
	ArticleCount int      `json:"article_count,omitempty"`
	Highlights   []string `json:"highlights,omitempty"`
}

// DataSource tells where a thematic analysis drew its evidence from.
type DataSource string

const (
	DataSourceDatabase  DataSource = "database"
	DataSourceMixed     DataSource = "mixed"
	DataSourceWebSearch DataSource = "web_search"
)

// ExpectedDataSource applies the match-count threshold rule.
func ExpectedDataSource(matched int) DataSource {
	switch {
	case matched >= 3:
		return DataSourceDatabase
	case matched >= 1:
		return DataSourceMixed
	default:
		return DataSourceWebSearch
	}
}

// WeeklyMetadata describes the analysis behind a weekly verdict.
type WeeklyMetadata struct {
	Theme             string     `json:"theme,omitempty"`
	DataSource        DataSource `json:"data_source,omitempty"`
	DBArticlesMatched *int       `json:"db_articles_matched,omitempty"`
	ArticlesAnalyzed  int        `json:"articles_analyzed,omitempty"`
	WebSearches       int        `json:"web_searches,omitempty"`
}

// WeeklyVerdict is the second-order analysis submitted for a week.
type WeeklyVerdict struct {
	ExecutionID      string                     `json:"execution_id"`
	MissionID        string                     `json:"mission_id"`
	WeekStart        string                     `json:"week_start"`
	WeekEnd          string                     `json:"week_end"`
	Summary          string                     `json:"summary"`
	Trends           []Trend                    `json:"trends"`
	TopStories       []TopStory                 `json:"top_stories"`
	CategoryAnalysis map[string]CategoryInsight `json:"category_analysis"`
	Metadata         WeeklyMetadata             `json:"metadata"`
	IsStandard       *bool                      `json:"is_standard,omitempty"`
}

// Thematic reports whether the verdict is scoped to a caller-chosen theme.
func (v WeeklyVerdict) Thematic() bool {
	return v.Metadata.Theme != ""
}

// Standard resolves the is_standard flag; thematic verdicts are never standard.
func (v WeeklyVerdict) Standard() bool {
	if v.Thematic() {
		return false
	}
	if v.IsStandard == nil {
		return true
	}
	return *v.IsStandard
}
