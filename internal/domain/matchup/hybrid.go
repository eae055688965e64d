package matchup

// DataSource tags where a hybrid matchup's scores came from.
type DataSource string

const (
	SourceDatabase DataSource = "database"
	SourceProvider DataSource = "provider"
	SourceHybrid   DataSource = "hybrid"
)

type HybridStatus string

const (
	HybridUpcoming  HybridStatus = "upcoming"
	HybridLive      HybridStatus = "live"
	HybridCompleted HybridStatus = "completed"
)

// Side is one team's half of a resolved hybrid matchup.
type Side struct {
	TeamID           int64
	TeamName         string
	ExternalRosterID string
	Points           float64
	ProjectedPoints  float64
	Starters         []string
	StarterPoints    []float64
	PlayerPoints     map[string]float64
}

// Hybrid is the authoritative merged view of one pairing: administrator
// records and provider live scores combined under the override precedence
// rule.
type Hybrid struct {
	RecordID        int64
	ConferenceID    int64
	Week            int
	TeamA           Side
	TeamB           Side
	WinnerTeamID    *int64
	ManualOverride  bool
	InterConference bool
	DataSource      DataSource
	Status          HybridStatus
	Notes           string
}

// DeriveHybridStatus is a pure function of the requested week against the
// season clock. Historical seasons are always final regardless of week.
func DeriveHybridStatus(week, currentWeek, seasonYear, currentYear int, hasNonZeroPoints bool) HybridStatus {
	if seasonYear < currentYear {
		return HybridCompleted
	}
	switch {
	case week > currentWeek:
		return HybridUpcoming
	case week < currentWeek:
		return HybridCompleted
	case hasNonZeroPoints:
		return HybridLive
	default:
		return HybridUpcoming
	}
}
