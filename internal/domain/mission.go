package domain

import (
	"strings"
	"time"
)

// Mission scopes every category, article and digest.
type Mission struct {
	ID           string
	Name         string
	Description  string
	WeekStartDay time.Weekday
}

// Category is a mission-scoped classification label.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ArticleStats aggregates archive volume over a window.
type ArticleStats struct {
	Total      int64            `json:"total_articles"`
	ByCategory map[string]int64 `json:"by_category"`
	BySource   map[string]int64 `json:"by_source"`
	ByDay      map[string]int64 `json:"by_day"`
}

// UncategorizedLabel is reported for articles whose category is missing.
const UncategorizedLabel = "uncategorized"

// CleanCategoryName trims and collapses inner whitespace, keeping case for display.
func CleanCategoryName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// NormalizeCategoryName is the comparison key for category resolution.
func NormalizeCategoryName(name string) string {
	return strings.ToLower(CleanCategoryName(name))
}
