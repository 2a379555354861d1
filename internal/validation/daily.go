// Package validation enforces the structural contract of classifier verdicts
// before the engine performs any write.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"newsdigest/internal/domain"
)

var executionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// Daily validates a daily verdict. It returns a *domain.ValidationError
// listing every failing field, or nil.
func Daily(v domain.DailyVerdict) error {
	ve := &domain.ValidationError{}

	checkExecutionID(ve, v.ExecutionID)
	if strings.TrimSpace(v.Metadata.MissionID) == "" {
		ve.Add("metadata.mission_id", "required")
	}

	analyzed := v.Metadata.ArticlesAnalyzed
	switch {
	case analyzed == nil:
		ve.Add("metadata.articles_analyzed", "required")
	case *analyzed < 0:
		ve.Add("metadata.articles_analyzed", "must be >= 0, got %d", *analyzed)
	}
	if strings.TrimSpace(v.Metadata.ResearchDoc) == "" {
		ve.Add("metadata.research_doc", "required")
	}
	nonNegative(ve, "metadata.web_searches", v.Metadata.WebSearches)
	nonNegative(ve, "metadata.fact_checks", v.Metadata.FactChecks)
	nonNegative(ve, "metadata.deep_dives", v.Metadata.DeepDives)

	// A cycle that analyzed nothing may publish nothing.
	emptyCycle := analyzed != nil && *analyzed == 0
	if len(v.Headlines) == 0 && !emptyCycle {
		ve.Add(string(domain.SectionHeadlines), "at least 1 item required")
	}

	// The archive keys rows by (url, status), so each pair may appear once.
	selectedSeen := map[string]string{}
	for _, section := range domain.Sections {
		for i, item := range v.SectionItems(section) {
			path := fmt.Sprintf("%s[%d]", section, i)
			newsItem(ve, path, item)
			unique(ve, selectedSeen, path, item.URL)
		}
	}
	excludedSeen := map[string]string{}
	for i, item := range v.Excluded {
		path := fmt.Sprintf("excluded[%d]", i)
		excludedItem(ve, path, item)
		unique(ve, excludedSeen, path, item.URL)
	}

	if analyzed != nil && *analyzed >= 0 {
		selected, excluded := v.SelectedCount(), len(v.Excluded)
		if selected+excluded != *analyzed {
			ve.Add("metadata.articles_analyzed",
				"selected (%d) + excluded (%d) = %d does not account for %d analyzed items",
				selected, excluded, selected+excluded, *analyzed)
		}
	}

	return ve.OrNil()
}

func newsItem(ve *domain.ValidationError, path string, item domain.NewsItem) {
	required(ve, path+".title", item.Title)
	required(ve, path+".summary", item.Summary)
	required(ve, path+".source", item.Source)
	required(ve, path+".category", item.Category)
	checkURL(ve, path+".url", item.URL)

	switch item.Confidence {
	case domain.ConfidenceHigh, domain.ConfidenceMedium:
	case "":
		ve.Add(path+".confidence", "required")
	case domain.ConfidenceLow:
		ve.Add(path+".confidence", "low-confidence items cannot be selected; exclude them instead")
	default:
		ve.Add(path+".confidence", "invalid value %q, must be one of [high medium]", item.Confidence)
	}

	if item.RelevanceScore != nil {
		scoreInRange(ve, path+".relevance_score", *item.RelevanceScore)
	}
	if _, err := domain.ParsePublishedAt(item.PublishedAt); err != nil {
		ve.Add(path+".published_at", "%v", err)
	}
}

func excludedItem(ve *domain.ValidationError, path string, item domain.ExcludedItem) {
	required(ve, path+".title", item.Title)
	required(ve, path+".category", item.Category)
	checkURL(ve, path+".url", item.URL)

	switch {
	case item.Reason == "":
		ve.Add(path+".reason", "required")
	case !item.Reason.Valid():
		ve.Add(path+".reason", "invalid reason %q, must be one of %v", item.Reason, domain.ExclusionReasons)
	}

	if item.Score == nil {
		ve.Add(path+".score", "required")
	} else {
		scoreInRange(ve, path+".score", *item.Score)
	}
}

func unique(ve *domain.ValidationError, seen map[string]string, path, raw string) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	if first, dup := seen[raw]; dup {
		ve.Add(path+".url", "duplicate of %s", first)
		return
	}
	seen[raw] = path
}

func checkExecutionID(ve *domain.ValidationError, id string) {
	switch {
	case id == "":
		ve.Add("execution_id", "required")
	case !executionIDPattern.MatchString(id):
		ve.Add("execution_id", "must match %s", executionIDPattern.String())
	}
}

func required(ve *domain.ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, "required")
	}
}

func nonNegative(ve *domain.ValidationError, field string, value int) {
	if value < 0 {
		ve.Add(field, "must be >= 0, got %d", value)
	}
}

func scoreInRange(ve *domain.ValidationError, field string, score int) {
	if score < domain.MinRelevanceScore || score > domain.MaxRelevanceScore {
		ve.Add(field, "must be between %d and %d, got %d", domain.MinRelevanceScore, domain.MaxRelevanceScore, score)
	}
}

func checkURL(ve *domain.ValidationError, field, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		ve.Add(field, "required")
		return
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		ve.Add(field, "must be an absolute http(s) URL")
	}
}
