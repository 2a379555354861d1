package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

// memoryStore is an in-memory stand-in for the Postgres repositories.
// RunInTx snapshots state and restores it when fn fails.
type memoryStore struct {
	mu sync.Mutex

	missions    map[string]domain.Mission
	categories  map[string]domain.Category
	nextID      int64
	articles    []domain.Article
	articleKeys map[string]struct{}
	daily       map[string]domain.DailyDigest
	weekly      []domain.WeeklyDigest

	failInsert error
}

var (
	_ ports.TxManager          = (*memoryStore)(nil)
	_ ports.MissionRepository  = (*memoryStore)(nil)
	_ ports.CategoryRepository = (*memoryStore)(nil)
	_ ports.ArticleRepository  = (*memoryStore)(nil)
	_ ports.StatsRepository    = (*memoryStore)(nil)
	_ ports.DigestRepository   = (*memoryStore)(nil)
)

func newMemoryStore(missionIDs ...string) *memoryStore {
	s := &memoryStore{
		missions:    map[string]domain.Mission{},
		categories:  map[string]domain.Category{},
		articleKeys: map[string]struct{}{},
		daily:       map[string]domain.DailyDigest{},
	}
	for _, id := range missionIDs {
		s.missions[id] = domain.Mission{ID: id, Name: id, WeekStartDay: time.Monday}
	}
	return s
}

type memorySnapshot struct {
	missions    map[string]domain.Mission
	categories  map[string]domain.Category
	nextID      int64
	articles    []domain.Article
	articleKeys map[string]struct{}
	daily       map[string]domain.DailyDigest
	weekly      []domain.WeeklyDigest
}

func (s *memoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	snap := memorySnapshot{
		missions:    maps.Clone(s.missions),
		categories:  maps.Clone(s.categories),
		nextID:      s.nextID,
		articles:    slices.Clone(s.articles),
		articleKeys: maps.Clone(s.articleKeys),
		daily:       maps.Clone(s.daily),
		weekly:      slices.Clone(s.weekly),
	}
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.missions = snap.missions
		s.categories = snap.categories
		s.nextID = snap.nextID
		s.articles = snap.articles
		s.articleKeys = snap.articleKeys
		s.daily = snap.daily
		s.weekly = snap.weekly
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memoryStore) Seed(_ context.Context, missions []domain.Mission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range missions {
		s.missions[m.ID] = m
	}
	return nil
}

func (s *memoryStore) Exists(_ context.Context, missionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.missions[missionID]
	return ok, nil
}

func (s *memoryStore) Resolve(_ context.Context, missionID, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := missionID + "|" + domain.NormalizeCategoryName(name)
	if c, ok := s.categories[key]; ok {
		return c.ID, nil
	}
	s.nextID++
	s.categories[key] = domain.Category{ID: s.nextID, Name: domain.CleanCategoryName(name)}
	return s.nextID, nil
}

func (s *memoryStore) List(_ context.Context, missionID string, rng domain.DateRange) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := map[int64]bool{}
	for _, a := range s.articles {
		if a.MissionID == missionID && inRange(a.ArchivedOn, rng) {
			active[a.CategoryID] = true
		}
	}

	out := make([]domain.Category, 0)
	for key, c := range s.categories {
		if !strings.HasPrefix(key, missionID+"|") {
			continue
		}
		if !rng.IsZero() && !active[c.ID] {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memoryStore) InsertBatch(_ context.Context, batch []domain.NewArticle) (domain.ArchiveCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var counts domain.ArchiveCounts
	if s.failInsert != nil {
		return counts, s.failInsert
	}
	for _, a := range batch {
		key := fmt.Sprintf("%s|%s|%s|%s", a.MissionID, a.ArchivedOn.Format(domain.DateLayout), a.URL, a.Status)
		if _, dup := s.articleKeys[key]; dup {
			counts.AlreadyArchived++
			continue
		}
		s.articleKeys[key] = struct{}{}
		s.nextID++
		s.articles = append(s.articles, domain.Article{
			ID:              s.nextID,
			MissionID:       a.MissionID,
			CategoryID:      a.CategoryID,
			Category:        s.categoryName(a.CategoryID),
			Title:           a.Title,
			URL:             a.URL,
			Source:          a.Source,
			Description:     a.Description,
			PublishedAt:     a.PublishedAt,
			ArchivedOn:      a.ArchivedOn,
			Status:          a.Status,
			ExclusionReason: a.ExclusionReason,
			RelevanceScore:  a.RelevanceScore,
			DailyDigestID:   a.DailyDigestID,
			ExecutionID:     a.ExecutionID,
			CreatedAt:       a.ArchivedOn,
		})
		switch a.Status {
		case domain.StatusSelected:
			counts.Selected++
		case domain.StatusExcluded:
			counts.Excluded++
		}
	}
	return counts, nil
}

func (s *memoryStore) categoryName(id int64) string {
	for _, c := range s.categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func (s *memoryStore) Query(_ context.Context, f domain.ArticleFilter) ([]domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := map[string]bool{}
	for _, c := range f.Categories {
		wanted[domain.NormalizeCategoryName(c)] = true
	}

	out := make([]domain.Article, 0)
	for i := len(s.articles) - 1; i >= 0; i-- {
		a := s.articles[i]
		if a.MissionID != f.MissionID || !inRange(a.ArchivedOn, f.Range) {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if len(wanted) > 0 && !wanted[domain.NormalizeCategoryName(a.Category)] {
			continue
		}
		out = append(out, a)
		if len(out) == domain.ClampLimit(f.Limit) {
			break
		}
	}
	return out, nil
}

func (s *memoryStore) RecentSelectedHeadlines(_ context.Context, missionID string, since time.Time) ([]domain.Headline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Headline, 0)
	for _, a := range s.articles {
		if a.MissionID != missionID || a.Status != domain.StatusSelected || a.ArchivedOn.Before(since) {
			continue
		}
		out = append(out, domain.Headline{
			Title: a.Title, URL: a.URL, Date: a.ArchivedOn.Format(domain.DateLayout), Category: a.Category,
		})
	}
	return out, nil
}

func (s *memoryStore) Stats(_ context.Context, missionID string, from, to time.Time) (domain.ArticleStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := domain.ArticleStats{ByCategory: map[string]int64{}, BySource: map[string]int64{}, ByDay: map[string]int64{}}
	rng := domain.DateRange{From: &from, To: &to}
	for _, a := range s.articles {
		if a.MissionID != missionID || !inRange(a.ArchivedOn, rng) {
			continue
		}
		stats.Total++
		name := a.Category
		if name == "" {
			name = domain.UncategorizedLabel
		}
		stats.ByCategory[name]++
		stats.BySource[a.Source]++
		stats.ByDay[a.ArchivedOn.Format(domain.DateLayout)]++
	}
	return stats, nil
}

func (s *memoryStore) UpsertDaily(_ context.Context, missionID string, date time.Time, content json.RawMessage, generatedAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := missionID + "|" + date.Format(domain.DateLayout)
	d, ok := s.daily[key]
	if !ok {
		s.nextID++
		d = domain.DailyDigest{ID: s.nextID, MissionID: missionID, Date: date}
	}
	d.Content = content
	d.GeneratedAt = generatedAt
	s.daily[key] = d
	return d.ID, nil
}

func (s *memoryStore) UpsertStandardWeekly(_ context.Context, d domain.WeeklyDigest) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.weekly {
		if existing.IsStandard && existing.MissionID == d.MissionID &&
			existing.WeekStart.Equal(d.WeekStart) && existing.WeekEnd.Equal(d.WeekEnd) {
			d.ID = existing.ID
			d.Posted = existing.Posted
			d.IsStandard = true
			s.weekly[i] = d
			return d.ID, nil
		}
	}
	s.nextID++
	d.ID = s.nextID
	d.IsStandard = true
	s.weekly = append(s.weekly, d)
	return d.ID, nil
}

func (s *memoryStore) InsertThematicWeekly(_ context.Context, d domain.WeeklyDigest) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	d.ID = s.nextID
	d.IsStandard = false
	s.weekly = append(s.weekly, d)
	return d.ID, nil
}

func (s *memoryStore) LatestDaily(_ context.Context, missionID string) (domain.DailyDigest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		latest domain.DailyDigest
		found  bool
	)
	for _, d := range s.daily {
		if d.MissionID == missionID && (!found || d.Date.After(latest.Date)) {
			latest, found = d, true
		}
	}
	if !found {
		return domain.DailyDigest{}, domain.ErrNotFound
	}
	return latest, nil
}

func (s *memoryStore) DailyByDate(_ context.Context, missionID string, date time.Time) (domain.DailyDigest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.daily[missionID+"|"+date.Format(domain.DateLayout)]
	if !ok {
		return domain.DailyDigest{}, domain.ErrNotFound
	}
	return d, nil
}

func (s *memoryStore) LatestWeekly(_ context.Context, missionID string, standardOnly bool) (domain.WeeklyDigest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.weekly) - 1; i >= 0; i-- {
		d := s.weekly[i]
		if d.MissionID == missionID && (!standardOnly || d.IsStandard) {
			return d, nil
		}
	}
	return domain.WeeklyDigest{}, domain.ErrNotFound
}

func (s *memoryStore) MarkDailyPosted(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, d := range s.daily {
		if d.ID == id {
			d.Posted = true
			s.daily[key] = d
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *memoryStore) MarkWeeklyPosted(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.weekly {
		if s.weekly[i].ID == id {
			s.weekly[i].Posted = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *memoryStore) articleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.articles)
}

func (s *memoryStore) dailyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.daily)
}

func inRange(day time.Time, rng domain.DateRange) bool {
	if rng.From != nil && day.Before(*rng.From) {
		return false
	}
	if rng.To != nil && day.After(*rng.To) {
		return false
	}
	return true
}

type recordingArtifacts struct {
	mu      sync.Mutex
	err     error
	written map[string]any
	at      map[string]time.Time
}

func (r *recordingArtifacts) Write(executionID, name string, at time.Time, payload any) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	if r.written == nil {
		r.written = map[string]any{}
		r.at = map[string]time.Time{}
	}
	path := executionID + "/" + name
	r.written[path] = payload
	r.at[path] = at
	return path, nil
}
