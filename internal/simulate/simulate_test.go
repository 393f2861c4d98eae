package simulate_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/scorebook/internal/adapters/http/api"
	service "github.com/okian/scorebook/internal/app"
	"github.com/okian/scorebook/internal/domain/match"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/standings"
	"github.com/okian/scorebook/internal/simulate"
	"github.com/okian/scorebook/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func newServer(t *testing.T, opts ...service.Option) *httptest.Server {
	t.Helper()
	svc := service.New(opts...)
	r := mux.NewRouter()
	api.NewServer(svc, svc, nil).Register(context.Background(), r)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		svc.Stop()
	})
	return srv
}

func TestRunner_RoundRobin(t *testing.T) {
	srv := newServer(t)
	runner, err := simulate.NewRunner(simulate.Config{
		BaseURL: srv.URL,
		Teams:   []string{"A", "B", "C", "D"},
		Policy:  model.RoundRobin,
		Seed:    42,
		Overs:   2,
		Wickets: 10,
	})
	require.NoError(t, err)

	rep, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, rep.TournamentID)
	assert.Equal(t, 6, rep.Scheduled)
	assert.Equal(t, 6, rep.Played)
	assert.Len(t, rep.Results, 6)
	assert.Positive(t, rep.Events)
	require.Len(t, rep.Standings, 4)

	played, points := 0, 0
	for _, row := range rep.Standings {
		played += row.Played
		points += row.Points
		assert.Equal(t, 3, row.Played)
	}
	assert.Equal(t, 12, played)
	// every match hands out 2 points in total, win or tie
	assert.Equal(t, 12, points)
}

func TestRunner_KnockoutWithOddTeam(t *testing.T) {
	srv := newServer(t)
	runner, err := simulate.NewRunner(simulate.Config{
		BaseURL: srv.URL,
		Teams:   []string{"A", "B", "C", "D", "E"},
		Policy:  model.Knockout,
		Seed:    7,
		Overs:   1,
		Wickets: 3,
	})
	require.NoError(t, err)

	rep, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Played)
	assert.Equal(t, []string{"E"}, rep.Unpaired)
	e, ok := standings.Row(rep.Standings, "E")
	require.True(t, ok)
	assert.Zero(t, e.Played)
}

func TestRunner_ServerClosesInningsFirst(t *testing.T) {
	srv := newServer(t, service.WithMatchPolicy(match.Policy{MaxWickets: 1}))
	runner, err := simulate.NewRunner(simulate.Config{
		BaseURL: srv.URL,
		Teams:   []string{"A", "B"},
		Seed:    3,
		Overs:   3,
		Wickets: 10,
	})
	require.NoError(t, err)

	rep, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rep.Results, 1)
	res := rep.Results[0]
	assert.LessOrEqual(t, res.FirstInnings.Wickets, 1)
	assert.LessOrEqual(t, res.SecondInnings.Wickets, 1)
}

func TestRunner_SameSeedSameResults(t *testing.T) {
	cfg := simulate.Config{Teams: []string{"A", "B", "C"}, Seed: 11, Overs: 2, Wickets: 10}

	play := func() []model.Result {
		c := cfg
		c.BaseURL = newServer(t).URL
		runner, err := simulate.NewRunner(c)
		require.NoError(t, err)
		rep, err := runner.Run(context.Background())
		require.NoError(t, err)
		return rep.Results
	}

	first, second := play(), play()
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].FirstInnings, second[i].FirstInnings)
		assert.Equal(t, first[i].SecondInnings, second[i].SecondInnings)
		assert.Equal(t, first[i].Winner, second[i].Winner)
	}
}

func TestNewRunner_Validation(t *testing.T) {
	cases := []struct {
		name string
		cfg  simulate.Config
	}{
		{"no url", simulate.Config{Teams: []string{"A", "B"}, Overs: 1, Wickets: 1}},
		{"one team", simulate.Config{BaseURL: "http://x", Teams: []string{"A"}, Overs: 1, Wickets: 1}},
		{"bad policy", simulate.Config{BaseURL: "http://x", Teams: []string{"A", "B"}, Policy: "Swiss", Overs: 1, Wickets: 1}},
		{"no overs", simulate.Config{BaseURL: "http://x", Teams: []string{"A", "B"}, Wickets: 1}},
		{"no wickets", simulate.Config{BaseURL: "http://x", Teams: []string{"A", "B"}, Overs: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := simulate.NewRunner(tc.cfg)
			assert.Error(t, err)
		})
	}
}

func TestRunner_APIErrors(t *testing.T) {
	srv := newServer(t)
	runner, err := simulate.NewRunner(simulate.Config{
		BaseURL: srv.URL,
		Teams:   []string{"A", "A"},
		Overs:   1,
		Wickets: 1,
	})
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	var apiErr *simulate.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "bad_request", apiErr.Code)
}

func TestVerify(t *testing.T) {
	teams := []model.Team{{Name: "A"}, {Name: "B"}}
	scheduled := []model.Match{{ID: "m1", TournamentID: "t1", TeamA: "A", TeamB: "B", Status: model.StatusScheduled}}
	results := []model.Result{{
		MatchID:       "m1",
		TeamA:         "A",
		TeamB:         "B",
		FirstInnings:  model.InningsScore{Team: "A", Runs: 100},
		SecondInnings: model.InningsScore{Team: "B", Runs: 90},
		Winner:        "A",
	}}
	good := []model.StandingsRow{
		{Team: "A", Played: 1, Won: 1, Points: 2, RunsFor: 100, RunsAgainst: 90},
		{Team: "B", Played: 1, Lost: 1, RunsFor: 90, RunsAgainst: 100},
	}

	require.NoError(t, simulate.Verify(teams, scheduled, results, good, standings.DefaultScheme))

	bad := append([]model.StandingsRow(nil), good...)
	bad[1].Points = 1
	err := simulate.Verify(teams, scheduled, results, bad, standings.DefaultScheme)
	assert.ErrorIs(t, err, simulate.ErrStandingsMismatch)

	err = simulate.Verify(teams, scheduled, results, good[:1], standings.DefaultScheme)
	assert.ErrorIs(t, err, simulate.ErrStandingsMismatch)
}
