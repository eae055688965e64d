package usecase

import "context"

// ScoringProvider is the external roster-and-scoring service. It is
// authoritative for live points but knows nothing about conferences,
// internal team ids, or override records; all calls are read-only and may
// fail transiently.
type ScoringProvider interface {
	FetchMatchups(ctx context.Context, leagueID string, week int) ([]ProviderMatchup, error)
	FetchRosters(ctx context.Context, leagueID string) ([]ProviderRoster, error)
	FetchUsers(ctx context.Context, leagueID string) ([]ProviderUser, error)
	FetchCurrentWeek(ctx context.Context) (ProviderClock, error)
}

// ProviderMatchup is one roster's week snapshot. Two rosters sharing a
// MatchupID form one provider-side pairing.
type ProviderMatchup struct {
	RosterID        string
	MatchupID       int64
	Points          float64
	ProjectedPoints float64
	Starters        []string
	StartersPoints  []float64
	PlayersPoints   map[string]float64
}

type ProviderRoster struct {
	RosterID      string
	OwnerID       string
	Players       []string
	Starters      []string
	Wins          int
	Losses        int
	Ties          int
	PointsFor     float64
	PointsAgainst float64
}

type ProviderUser struct {
	UserID      string
	DisplayName string
	TeamName    string
}

// ProviderClock is the provider's notion of "now" in league time.
type ProviderClock struct {
	Week       int
	SeasonYear int
}
