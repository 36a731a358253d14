package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/transferwatch/internal/model"
)

func intPtr(n int) *int { return &n }

func TestClassifyGameweeks_NormalWeek(t *testing.T) {
	fixtures := []model.Fixture{
		{Code: 1, Event: intPtr(1), HomeTeam: 1, AwayTeam: 2},
		{Code: 2, Event: intPtr(1), HomeTeam: 3, AwayTeam: 4},
		{Code: 3, Event: intPtr(1), HomeTeam: 5, AwayTeam: 6},
		{Code: 4, Event: intPtr(1), HomeTeam: 7, AwayTeam: 8},
		{Code: 5, Event: intPtr(1), HomeTeam: 9, AwayTeam: 10},
	}

	info := ClassifyGameweeks(fixtures, 5)

	require.Contains(t, info, 1)
	gw := info[1]
	assert.False(t, gw.IsDouble)
	assert.False(t, gw.IsBlank)
	assert.Equal(t, 5, gw.TotalFixtures)
	assert.Empty(t, gw.TeamsWithDouble)
}

func TestClassifyGameweeks_Double(t *testing.T) {
	fixtures := []model.Fixture{
		{Code: 1, Event: intPtr(34), HomeTeam: 1, AwayTeam: 2},
		{Code: 2, Event: intPtr(34), HomeTeam: 3, AwayTeam: 1},
		{Code: 3, Event: intPtr(34), HomeTeam: 2, AwayTeam: 4},
		{Code: 4, Event: intPtr(34), HomeTeam: 5, AwayTeam: 6},
		{Code: 5, Event: intPtr(34), HomeTeam: 7, AwayTeam: 8},
	}

	info := ClassifyGameweeks(fixtures, 5)

	gw := info[34]
	assert.True(t, gw.IsDouble)
	assert.Equal(t, []int{1, 2}, gw.TeamsWithDouble)
}

func TestClassifyGameweeks_Blank(t *testing.T) {
	fixtures := []model.Fixture{
		{Code: 1, Event: intPtr(29), HomeTeam: 1, AwayTeam: 2},
		{Code: 2, Event: intPtr(29), HomeTeam: 3, AwayTeam: 4},
		{Code: 3, Event: intPtr(29), HomeTeam: 5, AwayTeam: 6},
	}

	info := ClassifyGameweeks(fixtures, 5)

	gw := info[29]
	assert.True(t, gw.IsBlank)
	assert.False(t, gw.IsDouble)
	assert.Equal(t, 3, gw.TotalFixtures)
}

func TestClassifyGameweeks_FloorIsExclusive(t *testing.T) {
	var fixtures []model.Fixture
	for i := 0; i < 5; i++ {
		fixtures = append(fixtures, model.Fixture{
			Code: i, Event: intPtr(2), HomeTeam: i * 2, AwayTeam: i*2 + 1,
		})
	}

	info := ClassifyGameweeks(fixtures, 5)
	assert.False(t, info[2].IsBlank, "exactly blankFloor fixtures is not blank")

	info = ClassifyGameweeks(fixtures[:4], 5)
	assert.True(t, info[2].IsBlank)
}

func TestClassifyGameweeks_SkipsUnscheduled(t *testing.T) {
	fixtures := []model.Fixture{
		{Code: 1, Event: nil, HomeTeam: 1, AwayTeam: 2},
		{Code: 2, Event: intPtr(3), HomeTeam: 3, AwayTeam: 4},
	}

	info := ClassifyGameweeks(fixtures, 5)

	require.Len(t, info, 1)
	assert.Equal(t, 1, info[3].TotalFixtures)
}
