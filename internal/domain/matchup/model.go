package matchup

// Record is the internally authoritative row for one week's pairing between
// two teams. Administrators may edit it directly; ManualOverride marks rows
// whose team assignments must not be overwritten from provider data, and
// ScoresFrozen additionally pins the recorded scores.
type Record struct {
	ID             int64
	ConferenceID   int64
	Week           int
	TeamAID        int64
	TeamBID        int64
	TeamAScore     float64
	TeamBScore     float64
	WinnerTeamID   *int64
	ManualOverride bool
	ScoresFrozen   bool
	Status         Status
	Notes          string
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

// DecideWinner applies strict score comparison and returns the winning team
// id, or nil for a tie. Both matchup finalization and the admin recalculate
// path go through here; there is deliberately no second implementation.
func DecideWinner(teamAID, teamBID int64, teamAScore, teamBScore float64) *int64 {
	switch {
	case teamAScore > teamBScore:
		return &teamAID
	case teamBScore > teamAScore:
		return &teamBID
	default:
		return nil
	}
}

// IsInterConferenceWeek reports whether the given week is one where teams
// play across conference lines. The interval is league configuration;
// the historical default is every third week.
func IsInterConferenceWeek(week, interval int) bool {
	if interval <= 0 {
		return false
	}
	return week%interval == 0
}
