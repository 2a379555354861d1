package validation

import (
	"fmt"
	"strings"
	"testing"

	"newsdigest/internal/domain"
)

func intPtr(v int) *int { return &v }

func sampleItem(i int, confidence domain.Confidence) domain.NewsItem {
	return domain.NewsItem{
		Title:      fmt.Sprintf("Story %d", i),
		Summary:    "summary",
		URL:        fmt.Sprintf("https://example.com/story-%d", i),
		Source:     "Example Wire",
		Category:   "Models",
		Confidence: confidence,
	}
}

func sampleExcluded(i int, reason domain.ExclusionReason, score int) domain.ExcludedItem {
	return domain.ExcludedItem{
		URL:      fmt.Sprintf("https://example.com/skip-%d", i),
		Title:    fmt.Sprintf("Skipped %d", i),
		Category: "Policy",
		Reason:   reason,
		Score:    intPtr(score),
	}
}

func validVerdict() domain.DailyVerdict {
	v := domain.DailyVerdict{
		ExecutionID: "exec-20251108-0600",
		Headlines:   []domain.NewsItem{sampleItem(1, domain.ConfidenceHigh), sampleItem(2, domain.ConfidenceMedium)},
		Research:    []domain.NewsItem{sampleItem(3, domain.ConfidenceHigh)},
		Metadata: domain.DailyMetadata{
			MissionID:        "ai-news",
			ArticlesAnalyzed: intPtr(10),
			ResearchDoc:      "research.md",
		},
	}
	reasons := []domain.ExclusionReason{
		domain.ReasonOffTopic, domain.ReasonOffTopic, domain.ReasonDuplicate,
		domain.ReasonLowPriority, domain.ReasonLowPriority, domain.ReasonOutdated, domain.ReasonOffTopic,
	}
	for i, r := range reasons {
		v.Excluded = append(v.Excluded, sampleExcluded(i, r, 3))
	}
	return v
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	if err == nil {
		t.Fatalf("expected validation error, got nil")
	}
	ve, ok := domain.AsValidationError(err)
	if !ok {
		t.Fatalf("expected *domain.ValidationError, got %T", err)
	}
	out := make(map[string]string, len(ve.Errors))
	for _, fe := range ve.Errors {
		out[fe.Field] = fe.Message
	}
	return out
}

func TestDailyAcceptsCompleteVerdict(t *testing.T) {
	t.Parallel()

	if err := Daily(validVerdict()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDailyRejectsLowConfidenceSelection(t *testing.T) {
	t.Parallel()

	v := validVerdict()
	v.Research[0].Confidence = domain.ConfidenceLow

	errs := fieldErrors(t, Daily(v))
	msg, ok := errs["research[0].confidence"]
	if !ok {
		t.Fatalf("expected research[0].confidence error, got %v", errs)
	}
	if !strings.Contains(msg, "exclude") {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestDailyRejectsUnknownConfidence(t *testing.T) {
	t.Parallel()

	v := validVerdict()
	v.Headlines[1].Confidence = "certain"

	errs := fieldErrors(t, Daily(v))
	if _, ok := errs["headlines[1].confidence"]; !ok {
		t.Fatalf("expected headlines[1].confidence error, got %v", errs)
	}
}

func TestDailyRejectsCountMismatch(t *testing.T) {
	t.Parallel()

	v := validVerdict()
	v.Excluded = v.Excluded[:6]

	errs := fieldErrors(t, Daily(v))
	if _, ok := errs["metadata.articles_analyzed"]; !ok {
		t.Fatalf("expected articles_analyzed mismatch, got %v", errs)
	}
}

func TestDailyRequiresHeadlineUnlessCycleIsEmpty(t *testing.T) {
	t.Parallel()

	v := validVerdict()
	v.Research = append(v.Research, v.Headlines...)
	v.Headlines = nil

	errs := fieldErrors(t, Daily(v))
	if _, ok := errs["headlines"]; !ok {
		t.Fatalf("expected headlines error, got %v", errs)
	}

	empty := domain.DailyVerdict{
		ExecutionID: "exec-empty",
		Metadata: domain.DailyMetadata{
			MissionID:        "ai-news",
			ArticlesAnalyzed: intPtr(0),
			ResearchDoc:      "research.md",
		},
	}
	if err := Daily(empty); err != nil {
		t.Fatalf("empty cycle should be exempt: %v", err)
	}
}

func TestDailyExcludedItemRules(t *testing.T) {
	t.Parallel()

	v := validVerdict()
	v.Excluded[0].Reason = "boring"
	v.Excluded[1].Score = intPtr(11)
	v.Excluded[2].Score = nil
	v.Excluded[3].URL = "not a url"

	errs := fieldErrors(t, Daily(v))
	for _, field := range []string{
		"excluded[0].reason",
		"excluded[1].score",
		"excluded[2].score",
		"excluded[3].url",
	} {
		if _, ok := errs[field]; !ok {
			t.Fatalf("expected %s error, got %v", field, errs)
		}
	}
}

func TestDailyMissingFieldsAreNamed(t *testing.T) {
	t.Parallel()

	v := validVerdict()
	v.ExecutionID = "../etc"
	v.Headlines[0].Summary = "  "
	v.Headlines[0].RelevanceScore = intPtr(0)
	v.Metadata.ArticlesAnalyzed = nil
	v.Metadata.ResearchDoc = ""

	errs := fieldErrors(t, Daily(v))
	for _, field := range []string{
		"execution_id",
		"headlines[0].summary",
		"headlines[0].relevance_score",
		"metadata.articles_analyzed",
		"metadata.research_doc",
	} {
		if _, ok := errs[field]; !ok {
			t.Fatalf("expected %s error, got %v", field, errs)
		}
	}
}

func TestDailyRejectsRepeatedURLWithinStatus(t *testing.T) {
	t.Parallel()

	v := validVerdict()
	v.Excluded[1].URL = v.Excluded[0].URL
	v.Research[0].URL = v.Headlines[0].URL

	errs := fieldErrors(t, Daily(v))
	if msg := errs["excluded[1].url"]; msg != "duplicate of excluded[0]" {
		t.Fatalf("excluded[1].url = %q, got %v", msg, errs)
	}
	if msg := errs["research[0].url"]; msg != "duplicate of headlines[0]" {
		t.Fatalf("research[0].url = %q, got %v", msg, errs)
	}
}

func TestDailyAllowsSameURLAcrossStatuses(t *testing.T) {
	t.Parallel()

	v := validVerdict()
	v.Excluded[0].URL = v.Headlines[0].URL

	if err := Daily(v); err != nil {
		t.Fatalf("selected and excluded rows are distinct: %v", err)
	}
}
