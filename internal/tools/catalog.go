package tools

import (
	"context"
	"encoding/json"
	"time"

	"newsdigest/internal/domain"
	"newsdigest/internal/usecase"
)

// ArchiveReader is the read side consulted during classification.
type ArchiveReader interface {
	Categories(ctx context.Context, missionID, from, to string) ([]domain.Category, error)
	Articles(ctx context.Context, req usecase.ArticlesRequest) ([]domain.Article, error)
	Stats(ctx context.Context, missionID, from, to string) (domain.ArticleStats, error)
	RecentHeadlines(ctx context.Context, missionID string, days int) ([]domain.Headline, error)
}

// DailySubmitter records a daily verdict.
type DailySubmitter interface {
	Submit(ctx context.Context, v domain.DailyVerdict) (domain.DailySubmissionResult, error)
}

// WeeklyAnalyst serves weekly evidence and records weekly verdicts.
type WeeklyAnalyst interface {
	Evidence(ctx context.Context, missionID, weekStart, weekEnd string) (domain.WeeklyEvidence, error)
	Submit(ctx context.Context, v domain.WeeklyVerdict) (domain.WeeklySubmissionResult, error)
}

// Deps are the services the catalog exposes.
type Deps struct {
	Archive ArchiveReader
	Daily   DailySubmitter
	Weekly  WeeklyAnalyst
}

// NewCatalog registers every tool of the classification surface.
func NewCatalog(deps Deps) *Registry {
	r := NewRegistry()
	c := catalog{deps: deps}

	r.Register(Tool{
		Name:        "get_categories",
		Description: "List the mission's categories. With a date window, only categories that have archived articles in it.",
		InputSchema: object(map[string]any{
			"mission_id": str("Mission identifier; defaults to the engine's default mission."),
			"date_from":  str("Inclusive start date, YYYY-MM-DD."),
			"date_to":    str("Inclusive end date, YYYY-MM-DD."),
		}),
		Handler: c.getCategories,
	})
	r.Register(Tool{
		Name:        "get_articles",
		Description: "Query archived articles, newest first. Descriptions are truncated to 200 characters.",
		InputSchema: object(map[string]any{
			"mission_id": str("Mission identifier."),
			"categories": array(str("Category name, matched case-insensitively."), "Restrict to these categories."),
			"date_from":  str("Inclusive start date, YYYY-MM-DD."),
			"date_to":    str("Inclusive end date, YYYY-MM-DD."),
			"limit":      integer("Maximum rows, default 100, capped at 500."),
		}),
		Handler: c.getArticles,
	})
	r.Register(Tool{
		Name:        "get_article_stats",
		Description: "Aggregate archive volume by category, source and day over an inclusive window.",
		InputSchema: object(map[string]any{
			"mission_id": str("Mission identifier."),
			"date_from":  str("Inclusive start date, YYYY-MM-DD."),
			"date_to":    str("Inclusive end date, YYYY-MM-DD."),
		}, "date_from", "date_to"),
		Handler: c.getArticleStats,
	})
	r.Register(Tool{
		Name:        "get_recent_headlines",
		Description: "Recently published headlines, used to avoid covering the same story twice.",
		InputSchema: object(map[string]any{
			"mission_id": str("Mission identifier."),
			"days":       integer("Look-back window in days, default 3, at most 7."),
		}),
		Handler: c.getRecentHeadlines,
	})
	r.Register(Tool{
		Name:        "submit_digest",
		Description: "Submit the daily verdict: selected items per section plus every excluded item with its reason. Call once per cycle.",
		InputSchema: object(map[string]any{
			"execution_id": str("Execution identifier of this cycle."),
			"headlines":    array(newsItemSchema(), "Major news, at least one unless nothing was analyzed."),
			"research":     array(newsItemSchema(), "Research and papers."),
			"industry":     array(newsItemSchema(), "Industry and business news."),
			"watching":     array(newsItemSchema(), "Developments to keep watching."),
			"excluded":     array(excludedItemSchema(), "Every analyzed item that was not selected."),
			"metadata": object(map[string]any{
				"mission_id":        str("Mission identifier."),
				"articles_analyzed": integer("Number of items analyzed; must equal selected plus excluded."),
				"web_searches":      integer("Web searches performed."),
				"fact_checks":       integer("Fact checks performed."),
				"deep_dives":        integer("Deep dives performed."),
				"research_doc":      str("Path of the research document."),
			}, "articles_analyzed", "research_doc"),
		}, "execution_id", "headlines", "metadata"),
		Handler: c.submitDigest,
	})
	r.Register(Tool{
		Name:        "get_weekly_evidence",
		Description: "Stats, active categories and selected articles for one week, the starting point of a weekly analysis.",
		InputSchema: object(map[string]any{
			"mission_id": str("Mission identifier."),
			"week_start": str("First day of the week, YYYY-MM-DD."),
			"week_end":   str("Last day of the week, YYYY-MM-DD."),
		}, "week_start", "week_end"),
		Handler: c.getWeeklyEvidence,
	})
	r.Register(Tool{
		Name:        "submit_weekly_digest",
		Description: "Submit a weekly analysis. Standard analyses replace the week's previous one; themed analyses are kept alongside.",
		InputSchema: object(map[string]any{
			"execution_id": str("Execution identifier."),
			"mission_id":   str("Mission identifier."),
			"week_start":   str("First day of the week, YYYY-MM-DD; must fall on the mission's week-start day."),
			"week_end":     str("Last day of the week, YYYY-MM-DD."),
			"summary":      str("Overview of the week."),
			"trends": array(object(map[string]any{
				"name":        str("Trend name."),
				"description": str("What moved."),
				"evidence":    array(str("Supporting URL or headline."), "Evidence."),
				"direction":   enum("Trend direction.", "rising", "stable", "declining"),
			}, "name", "description", "direction"), "At least 2 trends."),
			"top_stories": array(object(map[string]any{
				"title":   str("Story title."),
				"summary": str("Why it mattered."),
				"url":     str("Story URL."),
				"impact":  str("Expected impact."),
			}, "title", "summary", "url"), "At least 3 stories."),
			"category_analysis": map[string]any{"type": "object", "description": "Per-category insight keyed by category name."},
			"metadata": object(map[string]any{
				"theme":               str("Theme of a thematic analysis."),
				"data_source":         enum("Where the evidence came from.", "database", "mixed", "web_search"),
				"db_articles_matched": integer("Archive articles matching the theme."),
				"articles_analyzed":   integer("Articles analyzed."),
				"web_searches":        integer("Web searches performed."),
			}),
			"is_standard": map[string]any{"type": "boolean", "description": "False for thematic analyses."},
		}, "execution_id", "week_start", "week_end", "summary", "trends", "top_stories"),
		Handler: c.submitWeeklyDigest,
	})

	return r
}

type catalog struct {
	deps Deps
}

type windowArgs struct {
	MissionID string `json:"mission_id"`
	DateFrom  string `json:"date_from"`
	DateTo    string `json:"date_to"`
}

type articlesArgs struct {
	windowArgs
	Categories []string `json:"categories"`
	Limit      int      `json:"limit"`
}

type recentArgs struct {
	MissionID string `json:"mission_id"`
	Days      int    `json:"days"`
}

type evidenceArgs struct {
	MissionID string `json:"mission_id"`
	WeekStart string `json:"week_start"`
	WeekEnd   string `json:"week_end"`
}

type articleView struct {
	ID          int64                `json:"id"`
	Title       string               `json:"title"`
	URL         string               `json:"url"`
	Source      string               `json:"source"`
	Description *string              `json:"description"`
	PubDate     *string              `json:"pub_date"`
	Category    string               `json:"category"`
	ArchivedOn  string               `json:"archived_on"`
	Status      domain.ArticleStatus `json:"status"`
}

func (c catalog) getCategories(ctx context.Context, raw json.RawMessage) (any, error) {
	var args windowArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	categories, err := c.deps.Archive.Categories(ctx, args.MissionID, args.DateFrom, args.DateTo)
	if err != nil {
		return nil, err
	}
	return map[string]any{"categories": categories, "count": len(categories)}, nil
}

func (c catalog) getArticles(ctx context.Context, raw json.RawMessage) (any, error) {
	var args articlesArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	articles, err := c.deps.Archive.Articles(ctx, usecase.ArticlesRequest{
		MissionID:  args.MissionID,
		Categories: args.Categories,
		From:       args.DateFrom,
		To:         args.DateTo,
		Limit:      args.Limit,
	})
	if err != nil {
		return nil, err
	}
	views := articleViews(articles)
	return map[string]any{"articles": views, "count": len(views)}, nil
}

func (c catalog) getArticleStats(ctx context.Context, raw json.RawMessage) (any, error) {
	var args windowArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return c.deps.Archive.Stats(ctx, args.MissionID, args.DateFrom, args.DateTo)
}

func (c catalog) getRecentHeadlines(ctx context.Context, raw json.RawMessage) (any, error) {
	var args recentArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	headlines, err := c.deps.Archive.RecentHeadlines(ctx, args.MissionID, args.Days)
	if err != nil {
		return nil, err
	}
	return map[string]any{"headlines": headlines, "count": len(headlines)}, nil
}

func (c catalog) submitDigest(ctx context.Context, raw json.RawMessage) (any, error) {
	var verdict domain.DailyVerdict
	if err := decodeArgs(raw, &verdict); err != nil {
		return nil, err
	}
	return c.deps.Daily.Submit(ctx, verdict)
}

func (c catalog) getWeeklyEvidence(ctx context.Context, raw json.RawMessage) (any, error) {
	var args evidenceArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	ev, err := c.deps.Weekly.Evidence(ctx, args.MissionID, args.WeekStart, args.WeekEnd)
	if err != nil {
		return nil, err
	}
	views := articleViews(ev.Selected)
	return map[string]any{
		"mission_id":    ev.MissionID,
		"week_start":    ev.WeekStart,
		"week_end":      ev.WeekEnd,
		"stats":         ev.Stats,
		"categories":    ev.Categories,
		"articles":      views,
		"article_count": len(views),
	}, nil
}

func (c catalog) submitWeeklyDigest(ctx context.Context, raw json.RawMessage) (any, error) {
	var verdict domain.WeeklyVerdict
	if err := decodeArgs(raw, &verdict); err != nil {
		return nil, err
	}
	return c.deps.Weekly.Submit(ctx, verdict)
}

func articleViews(articles []domain.Article) []articleView {
	views := make([]articleView, 0, len(articles))
	for _, a := range articles {
		v := articleView{
			ID:         a.ID,
			Title:      a.Title,
			URL:        a.URL,
			Source:     a.Source,
			Category:   a.Category,
			ArchivedOn: a.ArchivedOn.Format(domain.DateLayout),
			Status:     a.Status,
		}
		if a.Description != "" {
			desc := truncate(a.Description, domain.DescriptionPreview)
			v.Description = &desc
		}
		if a.PublishedAt != nil {
			pub := a.PublishedAt.Format(time.RFC3339)
			v.PubDate = &pub
		}
		views = append(views, v)
	}
	return views
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
