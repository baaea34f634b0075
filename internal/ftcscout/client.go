// Package ftcscout provides a minimal client for the FTCScout REST API v1.
package ftcscout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the root endpoint of the public FTCScout REST API.
const DefaultBaseURL = "https://api.ftcscout.org/rest/v1"

// ErrUpstream tags every failure talking to the API. Callers match it with
// errors.Is to tell upstream trouble from local errors.
var ErrUpstream = errors.New("ftcscout api error")

// Client is a minimal FTCScout REST API client. The API is public and
// unauthenticated.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns an FTCScout client rooted at baseURL (DefaultBaseURL
// when empty). A timeout of zero falls back to 30 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Team holds the fields we need from the /teams endpoint.
type Team struct {
	Number     int    `json:"number"`
	Name       string `json:"name"`
	SchoolName string `json:"schoolName"`
	RookieYear int    `json:"rookieYear"`
	Location   struct {
		City    string `json:"city"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"location"`
}

// TeamEvent is one entry from /teams/{number}/events/{season}. Stats is the
// raw per-event stats object, null for events without recorded statistics.
type TeamEvent struct {
	Season     int             `json:"season"`
	EventCode  string          `json:"eventCode"`
	TeamNumber int             `json:"teamNumber"`
	Stats      json.RawMessage `json:"stats"`
}

// HasStats reports whether the event carries recorded statistics. Only
// these events contribute matches to a team's score series.
func (e *TeamEvent) HasStats() bool {
	s := strings.TrimSpace(string(e.Stats))
	return s != "" && s != "null"
}

// AllianceScore is one side's score breakdown for a match.
type AllianceScore struct {
	TotalPoints        float64 `json:"totalPoints"`
	AutoSpecimenPoints float64 `json:"autoSpecimenPoints"`
	AutoSamplePoints   float64 `json:"autoSamplePoints"`
	DCSpecimenPoints   float64 `json:"dcSpecimenPoints"`
	DCSamplePoints     float64 `json:"dcSamplePoints"`
}

// MatchTeam is one roster slot of a match.
type MatchTeam struct {
	Alliance   string `json:"alliance"`
	Station    string `json:"station"`
	TeamNumber int    `json:"teamNumber"`
	Surrogate  bool   `json:"surrogate"`
	NoShow     bool   `json:"noShow"`
	OnField    bool   `json:"onField"`
}

// MatchScores pairs the two alliance breakdowns of one match.
type MatchScores struct {
	Red  *AllianceScore `json:"red"`
	Blue *AllianceScore `json:"blue"`
}

// Match is one entry from /events/{season}/{code}/matches.
type Match struct {
	ID              int          `json:"id"`
	HasBeenPlayed   bool         `json:"hasBeenPlayed"`
	TournamentLevel string       `json:"tournamentLevel"`
	Series          int          `json:"series"`
	MatchNum        int          `json:"matchNum"`
	Scores          *MatchScores `json:"scores"`
	Teams           []MatchTeam  `json:"teams"`
}

// ScoreFor resolves the alliance score the given team contributed to in
// this match. ok is false when the record cannot be resolved: the team is
// not on the roster, no-showed, or the match has no score block for its
// side. Unresolvable records are skipped by callers, never zero-filled.
func (m *Match) ScoreFor(teamNumber int) (*AllianceScore, bool) {
	var slot *MatchTeam
	for i := range m.Teams {
		if m.Teams[i].TeamNumber == teamNumber {
			slot = &m.Teams[i]
			break
		}
	}
	if slot == nil || slot.NoShow || m.Scores == nil {
		return nil, false
	}
	switch slot.Alliance {
	case "Red":
		if m.Scores.Red == nil {
			return nil, false
		}
		return m.Scores.Red, true
	case "Blue":
		if m.Scores.Blue == nil {
			return nil, false
		}
		return m.Scores.Blue, true
	default:
		return nil, false
	}
}

// get performs a GET request against the FTCScout API and JSON-decodes the
// response body into out.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w: %v", path, ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %w: HTTP %d", path, ErrUpstream, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: %w: decode: %v", path, ErrUpstream, err)
	}
	return nil
}

// GetTeam looks up a team by number.
func (c *Client) GetTeam(ctx context.Context, number int) (*Team, error) {
	var t Team
	if err := c.get(ctx, fmt.Sprintf("/teams/%d", number), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTeamEvents returns a team's event participations for one season,
// including events without recorded statistics.
func (c *Client) GetTeamEvents(ctx context.Context, number, season int) ([]TeamEvent, error) {
	var events []TeamEvent
	path := fmt.Sprintf("/teams/%d/events/%d", number, season)
	if err := c.get(ctx, path, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetEventMatches returns every match of one event, qualification and
// playoff, with full score breakdowns and rosters.
func (c *Client) GetEventMatches(ctx context.Context, season int, eventCode string) ([]Match, error) {
	var matches []Match
	path := fmt.Sprintf("/events/%d/%s/matches", season, eventCode)
	if err := c.get(ctx, path, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}
