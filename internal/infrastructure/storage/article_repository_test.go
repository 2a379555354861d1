package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/domain"
)

func TestInsertBatch_CountsSkippedRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewArticleRepository(db)

	digestID := int64(42)
	reason := domain.ReasonDuplicate
	day := time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC)

	articles := []domain.NewArticle{
		{MissionID: "ai-news", CategoryID: 1, DailyDigestID: &digestID, ExecutionID: "e1", Title: "A", URL: "https://a", Source: "wire", ArchivedOn: day, Status: domain.StatusSelected},
		{MissionID: "ai-news", CategoryID: 1, ExecutionID: "e1", Title: "B", URL: "https://b", Source: "wire", ArchivedOn: day, Status: domain.StatusExcluded, ExclusionReason: &reason},
		{MissionID: "ai-news", CategoryID: 2, ExecutionID: "e1", Title: "C", URL: "https://c", Source: "wire", ArchivedOn: day, Status: domain.StatusExcluded, ExclusionReason: &reason},
	}

	mock.ExpectBegin()
	batch := mock.ExpectBatch()
	batch.ExpectExec("INSERT INTO articles").
		WithArgs(anyArgs(13)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	batch.ExpectExec("INSERT INTO articles").
		WithArgs(anyArgs(13)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	batch.ExpectExec("INSERT INTO articles").
		WithArgs(anyArgs(13)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	counts, err := repo.InsertBatch(context.Background(), articles)
	require.NoError(t, err)
	assert.Equal(t, domain.ArchiveCounts{Selected: 1, Excluded: 1, AlreadyArchived: 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatch_PassesReasonAsText(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewArticleRepository(db)

	reason := domain.ReasonOffTopic
	score := 2
	day := time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC)
	reasonText := "off_topic"

	mock.ExpectBegin()
	mock.ExpectBatch().ExpectExec("INSERT INTO articles").
		WithArgs(
			"ai-news", int64(5), (*int64)(nil), "e1", "Title", "https://x", "wire",
			(*string)(nil), (*time.Time)(nil), day, "excluded", &reasonText, &score,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	counts, err := repo.InsertBatch(context.Background(), []domain.NewArticle{{
		MissionID:       "ai-news",
		CategoryID:      5,
		ExecutionID:     "e1",
		Title:           "Title",
		URL:             "https://x",
		Source:          "wire",
		ArchivedOn:      day,
		Status:          domain.StatusExcluded,
		ExclusionReason: &reason,
		RelevanceScore:  &score,
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Excluded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatch_RollsBackOnFailedRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewArticleRepository(db)

	day := time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC)
	articles := []domain.NewArticle{
		{MissionID: "ai-news", CategoryID: 1, ExecutionID: "e1", Title: "A", URL: "https://a", Source: "wire", ArchivedOn: day, Status: domain.StatusSelected},
		{MissionID: "ai-news", CategoryID: 1, ExecutionID: "e1", Title: "B", URL: "https://b", Source: "wire", ArchivedOn: day, Status: domain.StatusSelected},
	}

	mock.ExpectBegin()
	batch := mock.ExpectBatch()
	batch.ExpectExec("INSERT INTO articles").
		WithArgs(anyArgs(13)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	batch.ExpectExec("INSERT INTO articles").
		WithArgs(anyArgs(13)...).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	counts, err := repo.InsertBatch(context.Background(), articles)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert article 1 (https://b)")
	assert.Equal(t, domain.ArchiveCounts{}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuery_FiltersByNormalizedCategoriesAndRange(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewArticleRepository(db)

	from := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC)
	pub := time.Date(2025, 11, 7, 9, 30, 0, 0, time.UTC)
	created := time.Date(2025, 11, 8, 6, 0, 0, 0, time.UTC)
	reason := "duplicate"
	score := 4

	cols := []string{
		"id", "mission_id", "category_id", "category", "title", "url", "source", "description",
		"pub_date", "archived_on", "status", "exclusion_reason", "relevance_score", "daily_digest_id",
		"execution_id", "created_at",
	}
	rows := pgxmock.NewRows(cols).
		AddRow(int64(11), "ai-news", int64(1), "Models", "A", "https://a", "wire", "desc",
			&pub, to, "excluded", &reason, &score, nil, "e1", created)

	mock.ExpectQuery(regexp.QuoteMeta("c.normalized_name IN ($2,$3)")).
		WithArgs("ai-news", "models", "policy", from, to).
		WillReturnRows(rows)

	articles, err := repo.Query(context.Background(), domain.ArticleFilter{
		MissionID:  "ai-news",
		Categories: []string{"Models", " policy ", "MODELS"},
		Range:      domain.DateRange{From: &from, To: &to},
	})
	require.NoError(t, err)
	require.Len(t, articles, 1)

	a := articles[0]
	assert.Equal(t, domain.StatusExcluded, a.Status)
	require.NotNil(t, a.ExclusionReason)
	assert.Equal(t, domain.ReasonDuplicate, *a.ExclusionReason)
	require.NotNil(t, a.PublishedAt)
	assert.Equal(t, pub, *a.PublishedAt)
	assert.Nil(t, a.DailyDigestID)
	assert.Equal(t, "Models", a.Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuery_ClampsLimit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewArticleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT 500")).
		WithArgs("ai-news").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	articles, err := repo.Query(context.Background(), domain.ArticleFilter{MissionID: "ai-news", Limit: 10_000})
	require.NoError(t, err)
	assert.Empty(t, articles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentSelectedHeadlines(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewArticleRepository(db)

	since := time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("a.status = 'selected'").
		WithArgs("ai-news", since).
		WillReturnRows(pgxmock.NewRows([]string{"title", "url", "archived_on", "category"}).
			AddRow("A", "https://a", time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC), "Models"))

	headlines, err := repo.RecentSelectedHeadlines(context.Background(), "ai-news", since)
	require.NoError(t, err)
	assert.Equal(t, []domain.Headline{{Title: "A", URL: "https://a", Date: "2025-11-07", Category: "Models"}}, headlines)
	assert.NoError(t, mock.ExpectationsWereMet())
}
