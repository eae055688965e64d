package usecase

import (
	"context"
	"sort"
	"sync"

	"github.com/dvail/conferencesync/internal/domain/conference"
	"github.com/dvail/conferencesync/internal/domain/matchup"
	"github.com/dvail/conferencesync/internal/domain/rosterlink"
	"github.com/dvail/conferencesync/internal/domain/season"
	"github.com/dvail/conferencesync/internal/domain/syncrun"
	"github.com/dvail/conferencesync/internal/domain/team"
	"github.com/dvail/conferencesync/internal/domain/teamrecord"
)

type stubSeasonRepository struct {
	active    *season.Season
	activeErr error
	updates   []int
}

func (s *stubSeasonRepository) GetActive(_ context.Context) (season.Season, bool, error) {
	if s.activeErr != nil {
		return season.Season{}, false, s.activeErr
	}
	if s.active == nil {
		return season.Season{}, false, nil
	}
	return *s.active, true, nil
}

func (s *stubSeasonRepository) GetByID(_ context.Context, seasonID int64) (season.Season, bool, error) {
	if s.active != nil && s.active.ID == seasonID {
		return *s.active, true, nil
	}
	return season.Season{}, false, nil
}

func (s *stubSeasonRepository) UpdateCurrentWeek(_ context.Context, _ int64, week int) error {
	s.updates = append(s.updates, week)
	if s.active != nil {
		s.active.CurrentWeek = week
	}
	return nil
}

type stubConferenceRepository struct {
	conferences []conference.Conference
	listErr     error
}

func (s *stubConferenceRepository) ListActiveBySeason(_ context.Context, seasonID int64) ([]conference.Conference, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]conference.Conference, 0, len(s.conferences))
	for _, conf := range s.conferences {
		if conf.SeasonID == seasonID && conf.Active {
			out = append(out, conf)
		}
	}
	return out, nil
}

func (s *stubConferenceRepository) GetByID(_ context.Context, conferenceID int64) (conference.Conference, bool, error) {
	for _, conf := range s.conferences {
		if conf.ID == conferenceID {
			return conf, true, nil
		}
	}
	return conference.Conference{}, false, nil
}

type stubMatchupRepository struct {
	mu      sync.Mutex
	rows    map[int64]matchup.Record
	listErr error
}

func newStubMatchupRepository(rows ...matchup.Record) *stubMatchupRepository {
	byID := make(map[int64]matchup.Record, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	return &stubMatchupRepository{rows: byID}
}

func (s *stubMatchupRepository) list(filter func(matchup.Record) bool) []matchup.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]matchup.Record, 0, len(s.rows))
	for _, row := range s.rows {
		if filter(row) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *stubMatchupRepository) ListByConferenceWeek(_ context.Context, conferenceID int64, week int) ([]matchup.Record, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.list(func(row matchup.Record) bool {
		return row.ConferenceID == conferenceID && row.Week == week
	}), nil
}

func (s *stubMatchupRepository) ListPendingByConferenceWeek(_ context.Context, conferenceID int64, week int) ([]matchup.Record, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.list(func(row matchup.Record) bool {
		return row.ConferenceID == conferenceID && row.Week == week && row.Status != matchup.StatusComplete
	}), nil
}

func (s *stubMatchupRepository) ListCompleteBySeason(_ context.Context, _ int64, conferenceID int64) ([]matchup.Record, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.list(func(row matchup.Record) bool {
		if conferenceID > 0 && row.ConferenceID != conferenceID {
			return false
		}
		return row.Status == matchup.StatusComplete
	}), nil
}

func (s *stubMatchupRepository) GetByID(_ context.Context, matchupID int64) (matchup.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[matchupID]
	return row, ok, nil
}

func (s *stubMatchupRepository) Update(_ context.Context, record matchup.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[record.ID] = record
	return nil
}

type stubRosterLinkRepository struct {
	links   []rosterlink.Link
	listErr error
}

func (s *stubRosterLinkRepository) List(_ context.Context, conferenceIDs []int64) ([]rosterlink.Link, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if len(conferenceIDs) == 0 {
		out := make([]rosterlink.Link, len(s.links))
		copy(out, s.links)
		return out, nil
	}
	wanted := make(map[int64]struct{}, len(conferenceIDs))
	for _, id := range conferenceIDs {
		wanted[id] = struct{}{}
	}
	out := make([]rosterlink.Link, 0, len(s.links))
	for _, link := range s.links {
		if _, ok := wanted[link.ConferenceID]; ok {
			out = append(out, link)
		}
	}
	return out, nil
}

type stubTeamRepository struct {
	teams map[int64]team.Team
}

func (s *stubTeamRepository) ListByIDs(_ context.Context, teamIDs []int64) ([]team.Team, error) {
	out := make([]team.Team, 0, len(teamIDs))
	for _, id := range teamIDs {
		if item, ok := s.teams[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubTeamRepository) GetByID(_ context.Context, teamID int64) (team.Team, bool, error) {
	item, ok := s.teams[teamID]
	return item, ok, nil
}

type stubTeamRecordRepository struct {
	mu        sync.Mutex
	byScope   map[int64]map[int64][]teamrecord.Record
	replaces  int
	champions []int64
}

func newStubTeamRecordRepository() *stubTeamRecordRepository {
	return &stubTeamRecordRepository{byScope: make(map[int64]map[int64][]teamrecord.Record)}
}

func (s *stubTeamRecordRepository) ListBySeason(_ context.Context, seasonID int64, conferenceID int64) ([]teamrecord.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []teamrecord.Record
	for confID, records := range s.byScope[seasonID] {
		if conferenceID > 0 && confID != conferenceID {
			continue
		}
		out = append(out, records...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ConferenceID != out[j].ConferenceID {
			return out[i].ConferenceID < out[j].ConferenceID
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out, nil
}

func (s *stubTeamRecordRepository) ReplaceScope(_ context.Context, seasonID int64, conferenceID int64, records []teamrecord.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byScope[seasonID] == nil {
		s.byScope[seasonID] = make(map[int64][]teamrecord.Record)
	}
	stored := make([]teamrecord.Record, len(records))
	copy(stored, records)
	s.byScope[seasonID][conferenceID] = stored
	s.replaces++
	return nil
}

func (s *stubTeamRecordRepository) SetConferenceChampions(_ context.Context, seasonID int64, championTeamIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.champions = append([]int64(nil), championTeamIDs...)
	for confID, records := range s.byScope[seasonID] {
		for i := range records {
			records[i].ConferenceChampion = false
			for _, teamID := range championTeamIDs {
				if records[i].TeamID == teamID {
					records[i].ConferenceChampion = true
				}
			}
		}
		s.byScope[seasonID][confID] = records
	}
	return nil
}

type stubSyncStateRepository struct {
	mu    sync.Mutex
	state syncrun.State
	saved bool
	saves int
}

func (s *stubSyncStateRepository) Load(_ context.Context) (syncrun.State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.saved, nil
}

func (s *stubSyncStateRepository) Save(_ context.Context, state syncrun.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.saved = true
	s.saves++
	return nil
}

type stubScoringProvider struct {
	matchupsByLeague map[string][]ProviderMatchup
	matchupsErr      error
	clock            ProviderClock
	clockErr         error
}

func (s *stubScoringProvider) FetchMatchups(_ context.Context, leagueID string, _ int) ([]ProviderMatchup, error) {
	if s.matchupsErr != nil {
		return nil, s.matchupsErr
	}
	return s.matchupsByLeague[leagueID], nil
}

func (s *stubScoringProvider) FetchRosters(_ context.Context, _ string) ([]ProviderRoster, error) {
	return nil, nil
}

func (s *stubScoringProvider) FetchUsers(_ context.Context, _ string) ([]ProviderUser, error) {
	return nil, nil
}

func (s *stubScoringProvider) FetchCurrentWeek(_ context.Context) (ProviderClock, error) {
	if s.clockErr != nil {
		return ProviderClock{}, s.clockErr
	}
	return s.clock, nil
}
