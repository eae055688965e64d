package memory

import (
	"github.com/dvail/conferencesync/internal/domain/conference"
	"github.com/dvail/conferencesync/internal/domain/matchup"
	"github.com/dvail/conferencesync/internal/domain/rosterlink"
	"github.com/dvail/conferencesync/internal/domain/season"
	"github.com/dvail/conferencesync/internal/domain/team"
)

const (
	SeasonID2025        = int64(1)
	ConferenceIDNorth   = int64(1)
	ConferenceIDSouth   = int64(2)
	LeagueExternalNorth = "10001"
	LeagueExternalSouth = "10002"
)

func SeedSeasons() []season.Season {
	return []season.Season{
		{ID: SeasonID2025, Year: 2025, CurrentWeek: 3, Active: true},
	}
}

func SeedConferences() []conference.Conference {
	return []conference.Conference{
		{ID: ConferenceIDNorth, Name: "North", ExternalLeagueID: LeagueExternalNorth, SeasonID: SeasonID2025, Active: true},
		{ID: ConferenceIDSouth, Name: "South", ExternalLeagueID: LeagueExternalSouth, SeasonID: SeasonID2025, Active: true},
	}
}

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: 1, Name: "Northwind Giants", OwnerName: "Avery", OwnerExternalID: "u-1001"},
		{ID: 2, Name: "Harbor City Hawks", OwnerName: "Blake", OwnerExternalID: "u-1002"},
		{ID: 3, Name: "Ridgeline Rush", OwnerName: "Casey", OwnerExternalID: "u-1003"},
		{ID: 4, Name: "Ironwood Owls", OwnerName: "Drew", OwnerExternalID: "u-1004"},
		{ID: 5, Name: "Southgate Stampede", OwnerName: "Emery", OwnerExternalID: "u-2001"},
		{ID: 6, Name: "Bayou Kings", OwnerName: "Finley", OwnerExternalID: "u-2002"},
		{ID: 7, Name: "Dune Runners", OwnerName: "Gray", OwnerExternalID: "u-2003"},
		{ID: 8, Name: "Palmetto Chargers", OwnerName: "Hollis", OwnerExternalID: "u-2004"},
	}
}

func SeedRosterLinks() []rosterlink.Link {
	return []rosterlink.Link{
		{TeamID: 1, ConferenceID: ConferenceIDNorth, ExternalRosterID: "1", Active: true},
		{TeamID: 2, ConferenceID: ConferenceIDNorth, ExternalRosterID: "2", Active: true},
		{TeamID: 3, ConferenceID: ConferenceIDNorth, ExternalRosterID: "3", Active: true},
		{TeamID: 4, ConferenceID: ConferenceIDNorth, ExternalRosterID: "4", Active: true},
		{TeamID: 5, ConferenceID: ConferenceIDSouth, ExternalRosterID: "1", Active: true},
		{TeamID: 6, ConferenceID: ConferenceIDSouth, ExternalRosterID: "2", Active: true},
		{TeamID: 7, ConferenceID: ConferenceIDSouth, ExternalRosterID: "3", Active: true},
		{TeamID: 8, ConferenceID: ConferenceIDSouth, ExternalRosterID: "4", Active: true},
	}
}

func SeedMatchups() []matchup.Record {
	return []matchup.Record{
		{ID: 1, ConferenceID: ConferenceIDNorth, Week: 1, TeamAID: 1, TeamBID: 2, TeamAScore: 121.4, TeamBScore: 98.6, WinnerTeamID: int64Ptr(1), Status: matchup.StatusComplete},
		{ID: 2, ConferenceID: ConferenceIDNorth, Week: 1, TeamAID: 3, TeamBID: 4, TeamAScore: 104.2, TeamBScore: 111.9, WinnerTeamID: int64Ptr(4), Status: matchup.StatusComplete},
		{ID: 3, ConferenceID: ConferenceIDSouth, Week: 1, TeamAID: 5, TeamBID: 6, TeamAScore: 88.3, TeamBScore: 95.1, WinnerTeamID: int64Ptr(6), Status: matchup.StatusComplete},
		{ID: 4, ConferenceID: ConferenceIDSouth, Week: 1, TeamAID: 7, TeamBID: 8, TeamAScore: 102.0, TeamBScore: 102.0, Status: matchup.StatusComplete},
		{ID: 5, ConferenceID: ConferenceIDNorth, Week: 2, TeamAID: 1, TeamBID: 3, TeamAScore: 109.8, TeamBScore: 93.5, WinnerTeamID: int64Ptr(1), Status: matchup.StatusComplete},
		{ID: 6, ConferenceID: ConferenceIDNorth, Week: 2, TeamAID: 2, TeamBID: 4, TeamAScore: 100.4, TeamBScore: 118.7, WinnerTeamID: int64Ptr(4), Status: matchup.StatusComplete},
		{ID: 7, ConferenceID: ConferenceIDSouth, Week: 2, TeamAID: 5, TeamBID: 7, TeamAScore: 97.6, TeamBScore: 90.2, WinnerTeamID: int64Ptr(5), Status: matchup.StatusComplete},
		{ID: 8, ConferenceID: ConferenceIDSouth, Week: 2, TeamAID: 6, TeamBID: 8, TeamAScore: 113.0, TeamBScore: 120.5, WinnerTeamID: int64Ptr(8), Status: matchup.StatusComplete},
		{ID: 9, ConferenceID: ConferenceIDNorth, Week: 3, TeamAID: 1, TeamBID: 4, Status: matchup.StatusPending},
		{ID: 10, ConferenceID: ConferenceIDNorth, Week: 3, TeamAID: 2, TeamBID: 3, Status: matchup.StatusPending},
		{ID: 11, ConferenceID: ConferenceIDSouth, Week: 3, TeamAID: 5, TeamBID: 8, Status: matchup.StatusPending},
		{ID: 12, ConferenceID: ConferenceIDSouth, Week: 3, TeamAID: 6, TeamBID: 7, Status: matchup.StatusPending},
	}
}

// SeedSeasonByConference mirrors the conference-to-season scoping the
// relational layer resolves through the conferences table.
func SeedSeasonByConference() map[int64]int64 {
	return map[int64]int64{
		ConferenceIDNorth: SeasonID2025,
		ConferenceIDSouth: SeasonID2025,
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}
