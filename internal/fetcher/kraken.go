package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"denki-watcher/internal/usage"
)

const (
	obtainTokenMutation = `mutation obtainKrakenToken($input: ObtainJSONWebTokenInput!) {
  obtainKrakenToken(input: $input) {
    token
  }
}`

	accountQuery = `query accountViewer {
  viewer {
    accounts {
      number
    }
  }
}`

	readingsQuery = `query halfHourlyReadings($accountNumber: String!, $fromDatetime: DateTime, $toDatetime: DateTime) {
  account(accountNumber: $accountNumber) {
    properties {
      electricitySupplyPoints {
        halfHourlyReadings(fromDatetime: $fromDatetime, toDatetime: $toDatetime) {
          startAt
          value
        }
      }
    }
  }
}`
)

// KrakenOptions parameterise the provider client.
type KrakenOptions struct {
	BaseURL   string
	Email     string
	Password  string
	Timeout   time.Duration
	UserAgent string
}

// Kraken talks to the provider's GraphQL endpoint.
type Kraken struct {
	opts    KrakenOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewKraken constructs a provider client.
func NewKraken(opts KrakenOptions, logger zerolog.Logger) *Kraken {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.oejp-kraken.energy/v1/graphql"
	}

	return &Kraken{
		opts:    opts,
		logger:  logger.With().Str("component", "kraken_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Authenticate exchanges the stored credentials for a bearer token.
func (k *Kraken) Authenticate(ctx context.Context) (string, error) {
	if k.opts.Email == "" || k.opts.Password == "" {
		return "", fmt.Errorf("%w: provider email and password required", ErrAuthFailed)
	}

	variables := map[string]any{
		"input": map[string]string{
			"email":    k.opts.Email,
			"password": k.opts.Password,
		},
	}

	var result struct {
		ObtainKrakenToken struct {
			Token string `json:"token"`
		} `json:"obtainKrakenToken"`
	}
	if err := k.execute(ctx, "", obtainTokenMutation, variables, &result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	token := result.ObtainKrakenToken.Token
	if token == "" {
		return "", fmt.Errorf("%w: response contained no token", ErrAuthFailed)
	}

	return token, nil
}

// AccountNumber resolves the account associated with the token.
func (k *Kraken) AccountNumber(ctx context.Context, token string) (string, error) {
	var result struct {
		Viewer struct {
			Accounts []struct {
				Number string `json:"number"`
			} `json:"accounts"`
		} `json:"viewer"`
	}
	if err := k.execute(ctx, token, accountQuery, nil, &result); err != nil {
		return "", fmt.Errorf("resolve account: %w", err)
	}

	for _, account := range result.Viewer.Accounts {
		if account.Number != "" {
			return account.Number, nil
		}
	}
	return "", ErrAccountNotFound
}

// HalfHourlyReadings fetches interval readings for the UTC window. Readings
// from every supply point of every property are flattened in API order.
func (k *Kraken) HalfHourlyReadings(ctx context.Context, token, accountNumber string, fromUTC, toUTC time.Time) ([]usage.IntervalReading, error) {
	variables := map[string]any{
		"accountNumber": accountNumber,
		"fromDatetime":  fromUTC.UTC().Format(time.RFC3339),
		"toDatetime":    toUTC.UTC().Format(time.RFC3339),
	}

	var result struct {
		Account struct {
			Properties []struct {
				ElectricitySupplyPoints []struct {
					HalfHourlyReadings []struct {
						StartAt string `json:"startAt"`
						Value   string `json:"value"`
					} `json:"halfHourlyReadings"`
				} `json:"electricitySupplyPoints"`
			} `json:"properties"`
		} `json:"account"`
	}
	if err := k.execute(ctx, token, readingsQuery, variables, &result); err != nil {
		return nil, fmt.Errorf("fetch readings: %w", err)
	}

	readings := make([]usage.IntervalReading, 0)
	for _, property := range result.Account.Properties {
		for _, point := range property.ElectricitySupplyPoints {
			for _, raw := range point.HalfHourlyReadings {
				startAt, err := time.Parse(time.RFC3339, raw.StartAt)
				if err != nil {
					return nil, fmt.Errorf("parse reading startAt %q: %w", raw.StartAt, err)
				}
				readings = append(readings, usage.IntervalReading{
					StartAt: startAt.UTC(),
					Value:   raw.Value,
				})
			}
		}
	}

	k.logger.Debug().
		Int("count", len(readings)).
		Time("from", fromUTC).
		Time("to", toUTC).
		Msg("fetched half-hourly readings")
	return readings, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

func (k *Kraken) execute(ctx context.Context, token, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(k.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := k.client.Do(req)
	if err != nil {
		return fmt.Errorf("send graphql request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read graphql response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider api error (%d): %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return fmt.Errorf("decode graphql response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		return fmt.Errorf("provider graphql error: %s", strings.Join(messages, "; "))
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode graphql data: %w", err)
		}
	}
	return nil
}

var _ UsageFetcher = (*Kraken)(nil)
