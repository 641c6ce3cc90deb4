package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestKraken(t *testing.T, handler http.HandlerFunc) *Kraken {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewKraken(KrakenOptions{
		BaseURL:  srv.URL,
		Email:    "user@example.com",
		Password: "secret",
		Timeout:  time.Second,
	}, noopLogger())
}

func decodeRequest(t *testing.T, r *http.Request) graphqlRequest {
	t.Helper()
	var req graphqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Fatalf("decode graphql request: %v", err)
	}
	return req
}

func TestAuthenticateSuccess(t *testing.T) {
	k := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		if !strings.Contains(req.Query, "obtainKrakenToken") {
			t.Fatalf("unexpected query: %s", req.Query)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"obtainKrakenToken": map[string]string{"token": "jwt-token"},
			},
		})
	})

	token, err := k.Authenticate(context.Background())
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if token != "jwt-token" {
		t.Errorf("token = %q, want jwt-token", token)
	}
}

func TestAuthenticateNoToken(t *testing.T) {
	k := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"obtainKrakenToken": map[string]string{},
			},
		})
	})

	_, err := k.Authenticate(context.Background())
	if !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}

func TestAuthenticateGraphQLError(t *testing.T) {
	k := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]string{{"message": "invalid credentials"}},
		})
	})

	_, err := k.Authenticate(context.Background())
	if !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}

func TestAuthenticateMissingCredentials(t *testing.T) {
	k := NewKraken(KrakenOptions{BaseURL: "http://localhost"}, noopLogger())
	if _, err := k.Authenticate(context.Background()); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed without credentials, got %v", err)
	}
}

func TestAccountNumber(t *testing.T) {
	k := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "jwt-token" {
			t.Fatalf("Authorization header = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"viewer": map[string]any{
					"accounts": []map[string]string{{"number": "A-1234"}},
				},
			},
		})
	})

	number, err := k.AccountNumber(context.Background(), "jwt-token")
	if err != nil {
		t.Fatalf("AccountNumber: %v", err)
	}
	if number != "A-1234" {
		t.Errorf("number = %q, want A-1234", number)
	}
}

func TestAccountNumberNotFound(t *testing.T) {
	k := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"viewer": map[string]any{"accounts": []any{}},
			},
		})
	})

	_, err := k.AccountNumber(context.Background(), "jwt-token")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestHalfHourlyReadings(t *testing.T) {
	k := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		if req.Variables["accountNumber"] != "A-1234" {
			t.Fatalf("accountNumber variable = %v", req.Variables["accountNumber"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"account": map[string]any{
					"properties": []map[string]any{{
						"electricitySupplyPoints": []map[string]any{{
							"halfHourlyReadings": []map[string]string{
								{"startAt": "2024-01-14T15:00:00+00:00", "value": "0.5"},
								{"startAt": "2024-01-14T15:30:00+00:00", "value": "0.3"},
							},
						}},
					}},
				},
			},
		})
	})

	from := time.Date(2024, time.January, 14, 15, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.January, 15, 14, 59, 59, 0, time.UTC)
	readings, err := k.HalfHourlyReadings(context.Background(), "jwt-token", "A-1234", from, to)
	if err != nil {
		t.Fatalf("HalfHourlyReadings: %v", err)
	}

	if len(readings) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(readings))
	}
	if !readings[0].StartAt.Equal(from) {
		t.Errorf("first startAt = %v, want %v", readings[0].StartAt, from)
	}
	if readings[1].Value != "0.3" {
		t.Errorf("second value = %q, want 0.3", readings[1].Value)
	}
}

func TestHalfHourlyReadingsEmptyIsNotError(t *testing.T) {
	k := newTestKraken(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"account": map[string]any{"properties": []any{}},
			},
		})
	})

	readings, err := k.HalfHourlyReadings(context.Background(), "t", "A-1234", time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("empty result must not error: %v", err)
	}
	if len(readings) != 0 {
		t.Errorf("expected no readings, got %d", len(readings))
	}
}
