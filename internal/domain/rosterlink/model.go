package rosterlink

import "strconv"

// Link joins an internal team to the roster identifier the external scoring
// provider uses for it, scoped to one conference. At most one active link
// may exist per (team, conference) pair.
type Link struct {
	TeamID           int64
	ConferenceID     int64
	ExternalRosterID string
	Active           bool
}

// Entry is one resolved side of the bidirectional lookup.
type Entry struct {
	TeamID           int64
	ExternalRosterID string
	ConferenceID     int64
}

// Lookup is the bidirectional team/roster index built from active links.
// Every entry is present twice, once under TeamKey and once under RosterKey.
type Lookup map[string]Entry

func TeamKey(teamID int64) string {
	return "team_" + strconv.FormatInt(teamID, 10)
}

func RosterKey(externalRosterID string) string {
	return "roster_" + externalRosterID
}

func (l Lookup) ByTeam(teamID int64) (Entry, bool) {
	entry, ok := l[TeamKey(teamID)]
	return entry, ok
}

func (l Lookup) ByRoster(externalRosterID string) (Entry, bool) {
	entry, ok := l[RosterKey(externalRosterID)]
	return entry, ok
}

// TeamIDs returns the distinct internal team ids present in the lookup,
// optionally restricted to one conference (0 = all).
func (l Lookup) TeamIDs(conferenceID int64) []int64 {
	out := make([]int64, 0, len(l)/2)
	for key, entry := range l {
		if key != TeamKey(entry.TeamID) {
			continue
		}
		if conferenceID > 0 && entry.ConferenceID != conferenceID {
			continue
		}
		out = append(out, entry.TeamID)
	}
	return out
}
