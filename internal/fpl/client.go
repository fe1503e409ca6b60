package fpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nickbutler25/FPLOptimizer/internal/cache"
	"github.com/nickbutler25/FPLOptimizer/internal/logger"
	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

// DefaultBaseURL is the official FPL API root.
const DefaultBaseURL = "https://fantasy.premierleague.com/api"

// DefaultHorizon is how many future gameweeks get an expected-points
// forecast per player.
const DefaultHorizon = 8

// Client fetches and maps FPL data. Responses are cached when a cache
// is wired in; the client works without one.
type Client struct {
	httpClient    *http.Client
	cache         *cache.Cache
	log           *logrus.Logger
	baseURL       string
	retryAttempts int
	horizon       int
}

func NewClient(baseURL string, c *cache.Cache) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		cache:         c,
		log:           logger.Get(),
		baseURL:       baseURL,
		retryAttempts: 3,
		horizon:       DefaultHorizon,
	}
}

// GetPlayers returns the full mapped candidate pool with expected
// points projected over the forecast horizon.
func (c *Client) GetPlayers(ctx context.Context) ([]types.Player, error) {
	bootstrap, err := c.getBootstrap(ctx)
	if err != nil {
		return nil, err
	}
	fixtures, err := c.getFixtures(ctx)
	if err != nil {
		return nil, err
	}
	return mapPlayers(bootstrap, fixtures, c.horizon), nil
}

// GetSquad loads a manager's current squad for a gameweek, with
// purchase prices reconstructed from transfer history and bank from
// entry history.
func (c *Client) GetSquad(ctx context.Context, entryID, gameweek int) ([]types.RosterEntry, float64, error) {
	players, err := c.GetPlayers(ctx)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[int]types.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	var picks picksResponse
	url := fmt.Sprintf("%s/entry/%d/event/%d/picks/", c.baseURL, entryID, gameweek)
	cacheKey := []string{"squad", strconv.Itoa(entryID), strconv.Itoa(gameweek)}
	if c.cache.Get(ctx, cacheKey, &picks) != nil {
		if err := c.makeRequest(ctx, url, &picks); err != nil {
			return nil, 0, fmt.Errorf("fetching squad picks: %w", err)
		}
		c.cache.Set(ctx, cacheKey, picks, cache.SquadTTL)
	}

	purchase := c.purchasePrices(ctx, entryID)

	roster := make([]types.RosterEntry, 0, len(picks.Picks))
	for _, pick := range picks.Picks {
		player, ok := byID[pick.Element]
		if !ok {
			return nil, 0, fmt.Errorf("squad references unknown player %d", pick.Element)
		}
		price := player.Cost
		if t, ok := purchase[pick.Element]; ok {
			price = types.FromTenths(t)
		}
		roster = append(roster, types.RosterEntry{
			Player:        player,
			PurchasePrice: price,
			IsStarting:    pick.Multiplier > 0,
			IsCaptain:     pick.IsCaptain,
			IsViceCaptain: pick.IsViceCaptain,
		})
	}
	bank := types.FromTenths(picks.EntryHistory.Bank)
	return roster, bank, nil
}

// CurrentGameweek returns the id of the next unfinished gameweek.
func (c *Client) CurrentGameweek(ctx context.Context) (int, error) {
	bootstrap, err := c.getBootstrap(ctx)
	if err != nil {
		return 0, err
	}
	for _, ev := range bootstrap.Events {
		if ev.IsNext {
			return ev.ID, nil
		}
	}
	for _, ev := range bootstrap.Events {
		if ev.IsCurrent {
			return ev.ID, nil
		}
	}
	return 0, fmt.Errorf("no current gameweek in bootstrap data")
}

func (c *Client) getBootstrap(ctx context.Context) (*bootstrapResponse, error) {
	var bootstrap bootstrapResponse
	cacheKey := []string{"bootstrap"}
	if c.cache.Get(ctx, cacheKey, &bootstrap) == nil {
		return &bootstrap, nil
	}
	url := c.baseURL + "/bootstrap-static/"
	if err := c.makeRequest(ctx, url, &bootstrap); err != nil {
		return nil, fmt.Errorf("fetching bootstrap data: %w", err)
	}
	c.cache.Set(ctx, cacheKey, bootstrap, cache.BootstrapTTL)
	return &bootstrap, nil
}

func (c *Client) getFixtures(ctx context.Context) ([]Fixture, error) {
	var fixtures []Fixture
	cacheKey := []string{"fixtures"}
	if c.cache.Get(ctx, cacheKey, &fixtures) == nil {
		return fixtures, nil
	}
	url := c.baseURL + "/fixtures/"
	if err := c.makeRequest(ctx, url, &fixtures); err != nil {
		return nil, fmt.Errorf("fetching fixtures: %w", err)
	}
	c.cache.Set(ctx, cacheKey, fixtures, cache.FixturesTTL)
	return fixtures, nil
}

// purchasePrices replays the transfer log into element -> purchase
// cost in tenths. Missing history degrades to current prices.
func (c *Client) purchasePrices(ctx context.Context, entryID int) map[int]int {
	var transfers []transferEntry
	url := fmt.Sprintf("%s/entry/%d/transfers/", c.baseURL, entryID)
	if err := c.makeRequest(ctx, url, &transfers); err != nil {
		c.log.WithError(err).Warn("Transfer history unavailable, assuming current prices")
		return nil
	}
	prices := make(map[int]int, len(transfers))
	// The log is newest-first; the first occurrence of an element_in is
	// its latest acquisition.
	for _, t := range transfers {
		if _, ok := prices[t.ElementIn]; !ok {
			prices[t.ElementIn] = t.ElementInCost
		}
	}
	return prices
}

// makeRequest performs a GET with exponential-backoff retries and
// decodes the JSON body into target.
func (c *Client) makeRequest(ctx context.Context, url string, target interface{}) error {
	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "fpl-optimizer/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("failed to read response body: %w", err)
			}
			if err := json.Unmarshal(body, target); err != nil {
				c.log.WithFields(logrus.Fields{
					"url":             url,
					"response_length": len(body),
				}).WithError(err).Error("Failed to decode FPL response")
				return fmt.Errorf("failed to decode response: %w", err)
			}
			return nil
		}
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("not found: %s", url)
		case http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limit exceeded")
		default:
			lastErr = fmt.Errorf("request failed with status %d", resp.StatusCode)
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", c.retryAttempts, lastErr)
}
