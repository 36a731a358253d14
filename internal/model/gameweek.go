package model

import "time"

// Fixture is one scheduled match from the fixtures feed. Event is nil for
// fixtures that have not been assigned to a gameweek yet.
type Fixture struct {
	Code        int        `json:"code"`
	Event       *int       `json:"event"`
	HomeTeam    int        `json:"team_h"`
	AwayTeam    int        `json:"team_a"`
	KickoffTime *time.Time `json:"kickoff_time"`
	Finished    bool       `json:"finished"`
}

// FixtureDetail is the trimmed per-fixture record kept inside GameweekInfo.
type FixtureDetail struct {
	Code        int        `json:"id"`
	HomeTeam    int        `json:"team_h"`
	AwayTeam    int        `json:"team_a"`
	KickoffTime *time.Time `json:"kickoff_time"`
	Finished    bool       `json:"finished"`
}

// GameweekInfo labels one gameweek as double (some team plays twice), blank
// (fixture volume below the configured floor), or neither. Read-mostly
// reference data, recomputed on every fixture sync.
type GameweekInfo struct {
	Event           int             `json:"gameweek"`
	IsDouble        bool            `json:"is_dgw"`
	IsBlank         bool            `json:"is_bgw"`
	TeamsWithDouble []int           `json:"teams_with_doubles"`
	TotalFixtures   int             `json:"total_fixtures"`
	Fixtures        []FixtureDetail `json:"fixture_details"`
}
