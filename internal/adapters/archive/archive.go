// Package archive stores completed match results in a SQL database.
// PostgreSQL (lib/pq) and SQLite (mattn/go-sqlite3) share one schema.
package archive

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/okian/scorebook/internal/domain/model"
)

//go:embed schema.sql
var schemaSQL string

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Archive persists results.
type Archive interface {
	SaveResult(ctx context.Context, r model.Result) error
	Results(ctx context.Context, tournamentID string) ([]model.Result, error)
	Close() error
}

// SQLArchive implements Archive over database/sql.
type SQLArchive struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and applies the schema.
func Open(ctx context.Context, driver, dsn string) (*SQLArchive, error) {
	const op = "archive.Open"
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, model.NewError(op, model.ErrInvalidInput, "unsupported archive driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, model.WrapError(op, model.ErrPersistenceUnavailable, fmt.Errorf("open %s: %w", driver, err))
	}
	if driver == DriverSQLite {
		// one writer at a time; also keeps a :memory: database alive across calls
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, model.WrapError(op, model.ErrPersistenceUnavailable, fmt.Errorf("ping %s: %w", driver, err))
	}
	a := &SQLArchive{db: db, driver: driver}
	if err := a.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

// Migrate creates the results table if it does not exist.
func (a *SQLArchive) Migrate(ctx context.Context) error {
	if a.driver == DriverSQLite {
		if _, err := a.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
			return model.WrapError("archive.Migrate", model.ErrPersistenceUnavailable, err)
		}
	}
	if _, err := a.db.ExecContext(ctx, schemaSQL); err != nil {
		return model.WrapError("archive.Migrate", model.ErrPersistenceUnavailable, fmt.Errorf("apply schema: %w", err))
	}
	return nil
}

// SaveResult upserts a result keyed by (tournament, match).
func (a *SQLArchive) SaveResult(ctx context.Context, r model.Result) error {
	const op = "archive.SaveResult"
	if r.TournamentID == "" || r.MatchID == "" {
		return model.NewError(op, model.ErrMissingTournamentContext, "result has no tournament or match id")
	}
	const q = `
		INSERT INTO match_results
		  (tournament_id, match_id, team_a, team_b,
		   first_team, first_runs, first_wickets, first_balls,
		   second_team, second_runs, second_wickets, second_balls,
		   winner, status, completed_at_ms)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (tournament_id, match_id) DO UPDATE SET
		  team_a          = EXCLUDED.team_a,
		  team_b          = EXCLUDED.team_b,
		  first_team      = EXCLUDED.first_team,
		  first_runs      = EXCLUDED.first_runs,
		  first_wickets   = EXCLUDED.first_wickets,
		  first_balls     = EXCLUDED.first_balls,
		  second_team     = EXCLUDED.second_team,
		  second_runs     = EXCLUDED.second_runs,
		  second_wickets  = EXCLUDED.second_wickets,
		  second_balls    = EXCLUDED.second_balls,
		  winner          = EXCLUDED.winner,
		  status          = EXCLUDED.status,
		  completed_at_ms = EXCLUDED.completed_at_ms
	`
	_, err := a.db.ExecContext(ctx, q,
		r.TournamentID, r.MatchID, r.TeamA, r.TeamB,
		r.FirstInnings.Team, r.FirstInnings.Runs, r.FirstInnings.Wickets, r.FirstInnings.Balls,
		r.SecondInnings.Team, r.SecondInnings.Runs, r.SecondInnings.Wickets, r.SecondInnings.Balls,
		r.Winner, r.Status, r.CompletedAt.UnixMilli(),
	)
	if err != nil {
		return model.WrapError(op, model.ErrPersistenceUnavailable, err)
	}
	return nil
}

// Results lists a tournament's results in completion order.
func (a *SQLArchive) Results(ctx context.Context, tournamentID string) ([]model.Result, error) {
	const op = "archive.Results"
	const q = `
		SELECT tournament_id, match_id, team_a, team_b,
		       first_team, first_runs, first_wickets, first_balls,
		       second_team, second_runs, second_wickets, second_balls,
		       winner, status, completed_at_ms
		FROM match_results
		WHERE tournament_id = $1
		ORDER BY completed_at_ms, match_id
	`
	rows, err := a.db.QueryContext(ctx, q, tournamentID)
	if err != nil {
		return nil, model.WrapError(op, model.ErrPersistenceUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Result
	for rows.Next() {
		var (
			r  model.Result
			ms int64
		)
		if err := rows.Scan(
			&r.TournamentID, &r.MatchID, &r.TeamA, &r.TeamB,
			&r.FirstInnings.Team, &r.FirstInnings.Runs, &r.FirstInnings.Wickets, &r.FirstInnings.Balls,
			&r.SecondInnings.Team, &r.SecondInnings.Runs, &r.SecondInnings.Wickets, &r.SecondInnings.Balls,
			&r.Winner, &r.Status, &ms,
		); err != nil {
			return nil, model.WrapError(op, model.ErrPersistenceUnavailable, err)
		}
		r.FirstInnings.Overs = r.FirstInnings.Balls / model.BallsPerOver
		r.SecondInnings.Overs = r.SecondInnings.Balls / model.BallsPerOver
		r.CompletedAt = time.UnixMilli(ms).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, model.WrapError(op, model.ErrPersistenceUnavailable, err)
	}
	return out, nil
}

// Close closes the database.
func (a *SQLArchive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

var _ Archive = (*SQLArchive)(nil)
