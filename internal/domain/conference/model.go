package conference

// Conference is one externally hosted league inside the multi-conference
// superstructure. ExternalLeagueID is the scoring provider's league
// identifier.
type Conference struct {
	ID               int64
	Name             string
	ExternalLeagueID string
	SeasonID         int64
	Active           bool
}
