// Package backend is the HTTP/JSON client for the remote analysis and
// prescription service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/mrsinham/medkiosk/internal/intake"
)

// API paths, relative to the base URL.
const (
	PathAnalyze     = "/api/v1/analyze_input"
	PathConfirm     = "/api/v1/confirm_prescription"
	PathMedications = "/api/v1/medications"
	PathPatients    = "/api/v1/patients"
)

// errServerStatus marks a 5xx answer as a breaker failure while still
// letting the caller read the body.
var errServerStatus = errors.New("server status")

// Client talks to the service. Every call is a single attempt.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets a per-request timeout. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// BreakerSettings configures the optional circuit breaker.
type BreakerSettings struct {
	MaxFailures uint32
	Timeout     time.Duration
}

// WithBreaker trips after MaxFailures consecutive network or 5xx failures
// and rejects calls for Timeout. A rejected call is a NetworkError; it is
// never retried.
func WithBreaker(s BreakerSettings) Option {
	return func(c *Client) {
		if s.MaxFailures == 0 {
			s.MaxFailures = 5
		}
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "medkiosk-backend",
			MaxRequests: 1,
			Timeout:     s.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= s.MaxFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.log.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("circuit breaker state changed")
			},
		})
	}
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze sends the complete record for analysis.
func (c *Client) Analyze(ctx context.Context, r intake.Record) (*Recommendation, error) {
	var out Recommendation
	if err := c.do(ctx, "analyze", http.MethodPost, PathAnalyze, NewAnalyzeRequest(r), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Confirm turns a recommendation into a priced prescription.
func (c *Client) Confirm(ctx context.Context, r intake.Record, rec *Recommendation) (*Prescription, error) {
	if rec == nil {
		return nil, fmt.Errorf("confirm: recommendation is required")
	}
	var out Prescription
	if err := c.do(ctx, "confirm", http.MethodPost, PathConfirm, NewConfirmRequest(r, rec), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMedications returns the machine's inventory.
func (c *Client) ListMedications(ctx context.Context) ([]Medication, error) {
	var out []Medication
	if err := c.do(ctx, "medications", http.MethodGet, PathMedications, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePatient registers the patient's vitals.
func (c *Client) CreatePatient(ctx context.Context, r intake.Record) (*Patient, error) {
	var out Patient
	if err := c.do(ctx, "create_patient", http.MethodPost, PathPatients, NewPatientRequest(r), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.send(req)
	if err != nil {
		c.log.Error().Err(err).Str("op", op).Dur("latency", time.Since(start)).Msg("backend unreachable")
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.Info().
		Str("op", op).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{Op: op, Status: resp.StatusCode, Message: readDetail(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ServerError{Op: op, Status: resp.StatusCode, Message: ""}
	}
	return nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.http.Do(req)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, errServerStatus
		}
		return resp, nil
	})
	if errors.Is(err, errServerStatus) {
		return result.(*http.Response), nil
	}
	if err != nil {
		return nil, err
	}
	return result.(*http.Response), nil
}

// readDetail extracts the "detail" message of an error body, if any.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil {
		return ""
	}
	return strings.TrimSpace(eb.Detail)
}
