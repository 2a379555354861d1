package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/domain"
)

func TestStats_AggregatesWindow(t *testing.T) {
	db, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	repo := NewStatsRepository(db)

	from := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 11, 9, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM articles a WHERE`).
		WithArgs("ai-news", from, to).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(12)))
	mock.ExpectQuery(`^SELECT COALESCE\(c\.name, 'uncategorized'\)`).
		WithArgs("ai-news", from, to).
		WillReturnRows(pgxmock.NewRows([]string{"name", "count"}).
			AddRow("Models", int64(7)).
			AddRow(domain.UncategorizedLabel, int64(5)))
	mock.ExpectQuery(`^SELECT a\.source, COUNT`).
		WithArgs("ai-news", from, to).
		WillReturnRows(pgxmock.NewRows([]string{"source", "count"}).
			AddRow("Example Wire", int64(9)).
			AddRow("Blog", int64(3)))
	mock.ExpectQuery(`^SELECT a\.archived_on, COUNT`).
		WithArgs("ai-news", from, to).
		WillReturnRows(pgxmock.NewRows([]string{"archived_on", "count"}).
			AddRow(from, int64(4)).
			AddRow(to, int64(8)))

	stats, err := repo.Stats(context.Background(), "ai-news", from, to)
	require.NoError(t, err)

	assert.Equal(t, int64(12), stats.Total)
	assert.Equal(t, map[string]int64{"Models": 7, "uncategorized": 5}, stats.ByCategory)
	assert.Equal(t, map[string]int64{"Example Wire": 9, "Blog": 3}, stats.BySource)
	assert.Equal(t, map[string]int64{"2025-11-03": 4, "2025-11-09": 8}, stats.ByDay)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStats_PropagatesQueryError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	repo := NewStatsRepository(db)

	from := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 6)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`^SELECT COUNT\(\*\)`).WithArgs("ai-news", from, to).WillReturnError(boom)
	mock.ExpectQuery(`^SELECT COALESCE`).WithArgs("ai-news", from, to).
		WillReturnRows(pgxmock.NewRows([]string{"name", "count"})).Maybe()
	mock.ExpectQuery(`^SELECT a\.source`).WithArgs("ai-news", from, to).
		WillReturnRows(pgxmock.NewRows([]string{"source", "count"})).Maybe()
	mock.ExpectQuery(`^SELECT a\.archived_on`).WithArgs("ai-news", from, to).
		WillReturnRows(pgxmock.NewRows([]string{"archived_on", "count"})).Maybe()

	_, err := repo.Stats(context.Background(), "ai-news", from, to)
	require.ErrorIs(t, err, boom)
}
