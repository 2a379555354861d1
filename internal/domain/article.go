package domain

import "time"

// ArticleStatus enumerates the archival outcome of an analyzed item.
type ArticleStatus string

const (
	StatusRaw      ArticleStatus = "raw"
	StatusSelected ArticleStatus = "selected"
	StatusExcluded ArticleStatus = "excluded"
)

// ExclusionReason is the closed set of reasons an item may be discarded for.
type ExclusionReason string

const (
	ReasonOffTopic    ExclusionReason = "off_topic"
	ReasonDuplicate   ExclusionReason = "duplicate"
	ReasonLowPriority ExclusionReason = "low_priority"
	ReasonOutdated    ExclusionReason = "outdated"
)

// ExclusionReasons lists every valid reason in a stable order.
var ExclusionReasons = []ExclusionReason{ReasonOffTopic, ReasonDuplicate, ReasonLowPriority, ReasonOutdated}

// Valid reports whether r belongs to the closed enum.
func (r ExclusionReason) Valid() bool {
	for _, known := range ExclusionReasons {
		if r == known {
			return true
		}
	}
	return false
}

const (
	MinRelevanceScore = 1
	MaxRelevanceScore = 10
)

// Article is an immutable archival record of one analyzed item.
type Article struct {
	ID              int64
	MissionID       string
	CategoryID      int64
	Category        string
	Title           string
	URL             string
	Source          string
	Description     string
	PublishedAt     *time.Time
	ArchivedOn      time.Time
	Status          ArticleStatus
	ExclusionReason *ExclusionReason
	RelevanceScore  *int
	DailyDigestID   *int64
	ExecutionID     string
	CreatedAt       time.Time
}

// NewArticle is the write model handed to the archive inside a submission.
type NewArticle struct {
	MissionID       string
	CategoryID      int64
	DailyDigestID   *int64
	ExecutionID     string
	Title           string
	URL             string
	Source          string
	Description     string
	PublishedAt     *time.Time
	ArchivedOn      time.Time
	Status          ArticleStatus
	ExclusionReason *ExclusionReason
	RelevanceScore  *int
}

// ArchiveCounts reports how many rows an insert batch actually appended.
type ArchiveCounts struct {
	Selected        int `json:"selected"`
	Excluded        int `json:"excluded"`
	AlreadyArchived int `json:"already_archived"`
}

// Archived is the number of new rows written.
func (c ArchiveCounts) Archived() int {
	return c.Selected + c.Excluded
}

// ArticleFilter narrows archive reads.
type ArticleFilter struct {
	MissionID  string
	Categories []string
	Range      DateRange
	Limit      int
	Status     ArticleStatus
}

// Headline is a previously published item exposed for deduplication upstream.
type Headline struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Date     string `json:"date"`
	Category string `json:"category"`
}

const (
	DefaultQueryLimit = 100
	MaxQueryLimit     = 500

	DefaultRecentDays  = 3
	MaxRecentDays      = 7
	RecentHeadlineCap  = 50
	DescriptionPreview = 200
)

// ClampLimit applies the default and the hard ceiling for archive reads.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultQueryLimit
	case limit > MaxQueryLimit:
		return MaxQueryLimit
	}
	return limit
}

// ClampRecentDays bounds the dedup lookback window to [1, MaxRecentDays].
func ClampRecentDays(days int) int {
	switch {
	case days <= 0:
		return DefaultRecentDays
	case days > MaxRecentDays:
		return MaxRecentDays
	}
	return days
}
