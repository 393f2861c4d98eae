package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/types"
)

// APIError is a non-2xx answer from the scorebook API.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

// Client is a thin JSON client for the scorebook HTTP API.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

// CreateTournament calls POST /tournaments.
func (c *Client) CreateTournament(ctx context.Context, in types.CreateTournamentInput) (types.CreatedTournament, error) {
	var out types.CreatedTournament
	err := c.do(ctx, http.MethodPost, "/tournaments", in, &out)
	return out, err
}

// Matches calls GET /tournaments/{id}/matches.
func (c *Client) Matches(ctx context.Context, tournamentID string) ([]model.Match, error) {
	var out []model.Match
	err := c.do(ctx, http.MethodGet, "/tournaments/"+tournamentID+"/matches", nil, &out)
	return out, err
}

// Standings calls GET /tournaments/{id}/standings.
func (c *Client) Standings(ctx context.Context, tournamentID string) ([]model.StandingsRow, error) {
	var out []model.StandingsRow
	err := c.do(ctx, http.MethodGet, "/tournaments/"+tournamentID+"/standings", nil, &out)
	return out, err
}

// StartMatch calls POST /matches/{id}/start.
func (c *Client) StartMatch(ctx context.Context, matchID, passcode string) (types.MatchUpdate, error) {
	var out types.MatchUpdate
	err := c.do(ctx, http.MethodPost, "/matches/"+matchID+"/start", map[string]string{"passcode": passcode}, &out)
	return out, err
}

// Score calls POST /matches/{id}/events.
func (c *Client) Score(ctx context.Context, matchID, eventID, event string) (types.MatchUpdate, error) {
	var out types.MatchUpdate
	body := map[string]string{"event_id": eventID, "event": event}
	err := c.do(ctx, http.MethodPost, "/matches/"+matchID+"/events", body, &out)
	return out, err
}

// EndInnings calls POST /matches/{id}/end-innings.
func (c *Client) EndInnings(ctx context.Context, matchID string) (types.MatchUpdate, error) {
	var out types.MatchUpdate
	err := c.do(ctx, http.MethodPost, "/matches/"+matchID+"/end-innings", nil, &out)
	return out, err
}

// EndMatch calls POST /matches/{id}/end-match.
func (c *Client) EndMatch(ctx context.Context, matchID string) (types.MatchUpdate, error) {
	var out types.MatchUpdate
	err := c.do(ctx, http.MethodPost, "/matches/"+matchID+"/end-match", nil, &out)
	return out, err
}

// do sends body as JSON and decodes the answer into out. A 202 is decoded
// like a 200; the state change happened even though it was not published.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
