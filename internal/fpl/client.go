// Package fpl is the client for the public Fantasy Premier League API.
package fpl

import (
	"context"
	"encoding/json"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/transferwatch/internal/config"
	"github.com/sells-group/transferwatch/internal/model"
)

// Bootstrap is the parsed bulk download of the full player population plus
// gameweek metadata.
type Bootstrap struct {
	Players      []model.PlayerSnapshot
	CurrentEvent int
	TotalPlayers int
}

// Client fetches FPL API resources with rate limiting and bounded retry.
// Retries here are transport courtesy only; scheduled jobs retry by cadence.
type Client struct {
	baseURL    string
	userAgent  string
	maxRetries int
	client     *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Client from configuration.
func NewClient(cfg config.FPLConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	perSec := cfg.RatePerSec
	if perSec == 0 {
		perSec = 2
	}
	burst := cfg.RateBurst
	if burst == 0 {
		burst = 4
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		maxRetries: maxRetries,
		client:     &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(perSec), burst),
	}
}

// wire types

type bootstrapResponse struct {
	Elements     []elementRecord `json:"elements"`
	Events       []eventRecord   `json:"events"`
	TotalPlayers int             `json:"total_players"`
}

type elementRecord struct {
	ID                int    `json:"id"`
	WebName           string `json:"web_name"`
	TransfersInEvent  int    `json:"transfers_in_event"`
	TransfersOutEvent int    `json:"transfers_out_event"`
	SelectedByPercent string `json:"selected_by_percent"`
	NowCost           int    `json:"now_cost"`
	CostChangeEvent   int    `json:"cost_change_event"`
}

type eventRecord struct {
	ID        int  `json:"id"`
	IsCurrent bool `json:"is_current"`
}

type fixtureRecord struct {
	Code        int        `json:"code"`
	Event       *int       `json:"event"`
	TeamH       int        `json:"team_h"`
	TeamA       int        `json:"team_a"`
	KickoffTime *time.Time `json:"kickoff_time"`
	Finished    bool       `json:"finished"`
}

// Bootstrap downloads the full player population and current gameweek.
func (c *Client) Bootstrap(ctx context.Context) (*Bootstrap, error) {
	var resp bootstrapResponse
	if err := c.getJSON(ctx, c.baseURL+"/bootstrap-static/", &resp); err != nil {
		return nil, eris.Wrap(err, "fpl: bootstrap")
	}

	b := &Bootstrap{
		Players:      make([]model.PlayerSnapshot, 0, len(resp.Elements)),
		TotalPlayers: resp.TotalPlayers,
	}
	for _, e := range resp.Elements {
		// Malformed ownership strings parse to 0 rather than failing the
		// whole download.
		ownership, err := strconv.ParseFloat(e.SelectedByPercent, 64)
		if err != nil {
			ownership = 0
		}
		b.Players = append(b.Players, model.PlayerSnapshot{
			ID:                e.ID,
			Name:              e.WebName,
			TransfersInEvent:  e.TransfersInEvent,
			TransfersOutEvent: e.TransfersOutEvent,
			Ownership:         ownership,
			Price:             e.NowCost,
			PriceChangesEvent: e.CostChangeEvent,
		})
	}
	for _, ev := range resp.Events {
		if ev.IsCurrent {
			b.CurrentEvent = ev.ID
			break
		}
	}
	return b, nil
}

// Fixtures downloads the full fixture list.
func (c *Client) Fixtures(ctx context.Context) ([]model.Fixture, error) {
	var records []fixtureRecord
	if err := c.getJSON(ctx, c.baseURL+"/fixtures/", &records); err != nil {
		return nil, eris.Wrap(err, "fpl: fixtures")
	}

	fixtures := make([]model.Fixture, 0, len(records))
	for _, r := range records {
		fixtures = append(fixtures, model.Fixture{
			Code:        r.Code,
			Event:       r.Event,
			HomeTeam:    r.TeamH,
			AwayTeam:    r.TeamA,
			KickoffTime: r.KickoffTime,
			Finished:    r.Finished,
		})
	}
	return fixtures, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrapf(err, "decode %s", url)
	}
	return nil
}

func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := range c.maxRetries {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		cloned := req.Clone(ctx)
		resp, err := c.client.Do(cloned)
		if err != nil {
			lastErr = err
			zap.L().Warn("fpl: request failed, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			c.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, req.URL.String())
			zap.L().Warn("fpl: retriable status",
				zap.String("url", req.URL.String()),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			c.backoff(ctx, attempt)
			continue
		}

		return resp, nil
	}
	return nil, eris.Wrap(lastErr, "all retries exhausted")
}

func (c *Client) backoff(ctx context.Context, attempt int) {
	base := time.Second
	maxBackoff := 30 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	d += time.Duration(rand.Int64N(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
