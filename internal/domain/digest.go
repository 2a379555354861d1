package domain

import (
	"encoding/json"
	"time"
)

// DailyDigest is the authoritative record of one mission's day.
type DailyDigest struct {
	ID          int64           `json:"id"`
	MissionID   string          `json:"mission_id"`
	Date        time.Time       `json:"date"`
	Content     json.RawMessage `json:"content"`
	GeneratedAt time.Time       `json:"generated_at"`
	Posted      bool            `json:"posted"`
}

// WeeklyDigest is a standard or thematic weekly analysis.
type WeeklyDigest struct {
	ID          int64           `json:"id"`
	MissionID   string          `json:"mission_id"`
	WeekStart   time.Time       `json:"week_start"`
	WeekEnd     time.Time       `json:"week_end"`
	Content     json.RawMessage `json:"content"`
	Params      json.RawMessage `json:"params,omitempty"`
	IsStandard  bool            `json:"is_standard"`
	GeneratedAt time.Time       `json:"generated_at"`
	Posted      bool            `json:"posted"`
}

// DailySubmissionResult acknowledges an accepted daily verdict.
type DailySubmissionResult struct {
	Status             string                  `json:"status"`
	ExecutionID        string                  `json:"execution_id"`
	MissionID          string                  `json:"mission_id"`
	DigestID           int64                   `json:"digest_id"`
	DigestDate         string                  `json:"digest_date"`
	SelectedCount      int                     `json:"selected_count"`
	ExcludedCount      int                     `json:"excluded_count"`
	SavedCounts        ArchiveCounts           `json:"saved_counts"`
	ExclusionBreakdown map[ExclusionReason]int `json:"exclusion_breakdown"`
	OutputPath         string                  `json:"output_path,omitempty"`
	ArtifactError      string                  `json:"artifact_error,omitempty"`
	Message            string                  `json:"message"`
}

// WeeklySubmissionResult acknowledges an accepted weekly verdict.
type WeeklySubmissionResult struct {
	Status          string `json:"status"`
	ExecutionID     string `json:"execution_id"`
	MissionID       string `json:"mission_id"`
	DigestID        int64  `json:"digest_id"`
	WeekRange       string `json:"week_range"`
	IsStandard      bool   `json:"is_standard"`
	TrendsCount     int    `json:"trends_count"`
	TopStoriesCount int    `json:"top_stories_count"`
	OutputPath      string `json:"output_path,omitempty"`
	ArtifactError   string `json:"artifact_error,omitempty"`
	Message         string `json:"message"`
}

// WeeklyEvidence bundles the archive reads a weekly analysis starts from.
type WeeklyEvidence struct {
	MissionID  string       `json:"mission_id"`
	WeekStart  string       `json:"week_start"`
	WeekEnd    string       `json:"week_end"`
	Stats      ArticleStats `json:"stats"`
	Categories []Category   `json:"categories"`
	Selected   []Article    `json:"-"`
}
