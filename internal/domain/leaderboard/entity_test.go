package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/user"
)

func entries(metrics ...int) []Entry {
	es := make([]Entry, len(metrics))
	for i, m := range metrics {
		es[i] = Entry{
			UserID: user.DiscordID(i + 1),
			Metric: m,
		}
	}
	return es
}

func ranks(es []Entry) []int {
	rs := make([]int, len(es))
	for i, e := range es {
		rs[i] = e.Rank
	}
	return rs
}

func TestRank_CompetitionRanking(t *testing.T) {
	// Равные метрики делят ранг; следующее отличное значение
	// увеличивает ранг на единицу, а не на размер группы.
	r := Rank(1, shared.PeriodDay, SortByScore, entries(50, 50, 30, 10))

	assert.Equal(t, []int{1, 1, 2, 3}, ranks(r.Entries))
}

func TestRank_SortsDescending(t *testing.T) {
	r := Rank(1, shared.PeriodDay, SortByScore, entries(10, 50, 30))

	metrics := []int{r.Entries[0].Metric, r.Entries[1].Metric, r.Entries[2].Metric}
	assert.Equal(t, []int{50, 30, 10}, metrics)
	assert.Equal(t, []int{1, 2, 3}, ranks(r.Entries))
}

func TestRank_StableOnTies(t *testing.T) {
	es := entries(40, 40)
	es[0].DisplayName = "first"
	es[1].DisplayName = "second"

	r := Rank(1, shared.PeriodDay, SortByScore, es)

	require.Len(t, r.Entries, 2)
	assert.Equal(t, "first", r.Entries[0].DisplayName)
	assert.Equal(t, "second", r.Entries[1].DisplayName)
}

func TestRank_ZeroMetricGetsNoMedal(t *testing.T) {
	r := Rank(1, shared.PeriodDay, SortByScore, entries(50, 0))

	assert.True(t, r.Entries[0].Medal)
	assert.False(t, r.Entries[1].Medal)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	es := entries(10, 50)
	Rank(1, shared.PeriodDay, SortByScore, es)

	assert.Equal(t, 10, es[0].Metric)
	assert.Equal(t, 50, es[1].Metric)
}

func TestWinnersOnly_StopsAtZero(t *testing.T) {
	// Нулевые метрики и всё после них исключаются даже внутри
	// первых трёх групп рангов.
	r := Rank(1, shared.PeriodDay, SortByScore, entries(100, 100, 80, 0, 0))

	winners := r.WinnersOnly()
	require.Len(t, winners, 3)
	assert.Equal(t, []int{1, 1, 2}, ranks(winners))
}

func TestWinnersOnly_KeepsFirstTwoRankGroups(t *testing.T) {
	// Группа ранга 2 входит целиком вместе со своими ничьими;
	// строка ранга 3 уже не входит.
	r := Rank(1, shared.PeriodDay, SortByScore, entries(100, 80, 80, 50))

	winners := r.WinnersOnly()
	require.Len(t, winners, 3)
	assert.Equal(t, []int{1, 2, 2}, ranks(winners))
}

func TestWinnersOnly_ThirdDistinctScoreExcluded(t *testing.T) {
	r := Rank(1, shared.PeriodDay, SortByScore, entries(100, 80, 60))

	winners := r.WinnersOnly()
	require.Len(t, winners, 2)
	assert.Equal(t, []int{1, 2}, ranks(winners))
}

func TestWinnersOnly_AllZero(t *testing.T) {
	r := Rank(1, shared.PeriodDay, SortByScore, entries(0, 0, 0))

	assert.Empty(t, r.WinnersOnly())
}

func TestChampions_TiesAllWin(t *testing.T) {
	r := Rank(1, shared.PeriodDay, SortByScore, entries(40, 40, 0))

	champs := r.Champions()
	require.Len(t, champs, 2)
	assert.Equal(t, user.DiscordID(1), champs[0].UserID)
	assert.Equal(t, user.DiscordID(2), champs[1].UserID)
}

func TestChampions_AllZeroMeansNoWinner(t *testing.T) {
	r := Rank(1, shared.PeriodDay, SortByScore, entries(0, 0))

	assert.Empty(t, r.Champions())
}

func TestRanking_IsEmpty(t *testing.T) {
	r := Rank(1, shared.PeriodDay, SortByScore, nil)

	assert.True(t, r.IsEmpty())
	assert.Equal(t, 0, r.TopScore())
}
