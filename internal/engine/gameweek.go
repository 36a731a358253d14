package engine

import (
	"sort"

	"github.com/sells-group/transferwatch/internal/model"
)

// ClassifyGameweeks analyzes the fixture list and labels each gameweek as
// double (a team plays twice or more), blank (total fixtures below
// blankFloor), or neither. Fixtures without an assigned gameweek are treated
// as not yet scheduled and skipped. Pure function of its input.
//
// blankFloor is an absolute count, not derived from the number of active
// teams; it needs revisiting if the league size ever changes.
func ClassifyGameweeks(fixtures []model.Fixture, blankFloor int) map[int]model.GameweekInfo {
	type counts struct {
		perTeam  map[int]int
		fixtures []model.FixtureDetail
	}
	byEvent := make(map[int]*counts)

	for _, f := range fixtures {
		if f.Event == nil {
			continue
		}
		ev := *f.Event
		c, ok := byEvent[ev]
		if !ok {
			c = &counts{perTeam: make(map[int]int)}
			byEvent[ev] = c
		}
		c.perTeam[f.HomeTeam]++
		c.perTeam[f.AwayTeam]++
		c.fixtures = append(c.fixtures, model.FixtureDetail{
			Code:        f.Code,
			HomeTeam:    f.HomeTeam,
			AwayTeam:    f.AwayTeam,
			KickoffTime: f.KickoffTime,
			Finished:    f.Finished,
		})
	}

	info := make(map[int]model.GameweekInfo, len(byEvent))
	for ev, c := range byEvent {
		var doubles []int
		for team, n := range c.perTeam {
			if n >= 2 {
				doubles = append(doubles, team)
			}
		}
		sort.Ints(doubles)

		info[ev] = model.GameweekInfo{
			Event:           ev,
			IsDouble:        len(doubles) > 0,
			IsBlank:         len(c.fixtures) < blankFloor,
			TeamsWithDouble: doubles,
			TotalFixtures:   len(c.fixtures),
			Fixtures:        c.fixtures,
		}
	}
	return info
}
