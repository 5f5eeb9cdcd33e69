package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
)

func rankedWithN(n int) *Ranking {
	es := make([]Entry, n)
	for i := range es {
		es[i].Metric = n - i
	}
	return Rank(1, shared.PeriodDay, SortByScore, es)
}

func TestPaginate_PreservesGlobalRanks(t *testing.T) {
	r := rankedWithN(25)

	page := r.Paginate(2, 10)
	require.Len(t, page.Entries, 10)
	assert.Equal(t, 11, page.Entries[0].Rank)
	assert.Equal(t, 20, page.Entries[9].Rank)
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, 3, page.TotalPages)
}

func TestPaginate_LastPartialPage(t *testing.T) {
	r := rankedWithN(25)

	page := r.Paginate(3, 10)
	assert.Len(t, page.Entries, 5)
	assert.Equal(t, 21, page.Entries[0].Rank)
}

func TestPaginate_ClampsOutOfRange(t *testing.T) {
	r := rankedWithN(25)

	// За пределами диапазона прижимается к последней странице.
	page := r.Paginate(99, 10)
	assert.Equal(t, 3, page.Number)
	assert.Len(t, page.Entries, 5)

	// Ноль и отрицательные - к первой.
	page = r.Paginate(0, 10)
	assert.Equal(t, 1, page.Number)
	page = r.Paginate(-5, 10)
	assert.Equal(t, 1, page.Number)
}

func TestPaginate_EmptyList(t *testing.T) {
	r := rankedWithN(0)

	page := r.Paginate(1, 10)
	assert.Empty(t, page.Entries)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.TotalPages)
}

func TestPaginate_DefaultPageSize(t *testing.T) {
	r := rankedWithN(15)

	page := r.Paginate(1, 0)
	assert.Len(t, page.Entries, DefaultPageSize)
	assert.Equal(t, 2, page.TotalPages)
}

func TestPage_Navigation(t *testing.T) {
	r := rankedWithN(25)

	first := r.Paginate(1, 10)
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrev())

	last := r.Paginate(3, 10)
	assert.False(t, last.HasNext())
	assert.True(t, last.HasPrev())
}
