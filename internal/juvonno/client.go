// Package juvonno is a REST client for the Juvonno practice-management API.
// Every request carries the deployment API key as a query parameter; list
// endpoints paginate with page/count and stop on a short page.
package juvonno

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/mklimstra/Juvonno-test/internal/observability/metrics"
	"github.com/mklimstra/Juvonno-test/pkg/logging"
)

const (
	defaultTimeout = 20 * time.Second
	pageSize       = 100
)

// ErrNotFound reports that an object does not exist upstream after all
// endpoint probes were exhausted.
var ErrNotFound = errors.New("juvonno: not found")

// listContainerKeys are the wrapper keys list endpoints are known to use.
var listContainerKeys = []string{"list", "results", "data"}

// encounterFetchFlags are the include variants tried for each encounter root.
var encounterFetchFlags = []url.Values{
	{},
	{"include": {"fields"}},
	{"include": {"answers"}},
	{"full": {"1"}},
}

// StatusError is a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("juvonno: status %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 400/404 upstream response or ErrNotFound.
// The upstream API answers 400 for some unknown-object lookups.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && (se.StatusCode == http.StatusBadRequest || se.StatusCode == http.StatusNotFound)
}

// Client calls the Juvonno REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	breaker    *gobreaker.CircuitBreaker
	metrics    *metrics.UpstreamMetrics
	logger     *logging.Logger
}

// NewClient constructs a Juvonno client. metrics may be nil.
func NewClient(baseURL, apiKey string, timeout time.Duration, m *metrics.UpstreamMetrics, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		metrics:    m,
		logger:     logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "juvonno",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// Probe misses (400/404) are expected traffic, not upstream failure.
			var se *StatusError
			return errors.As(err, &se) && se.StatusCode < http.StatusInternalServerError
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// ListCustomers returns all active customer records with group memberships.
func (c *Client) ListCustomers(ctx context.Context) ([]Record, error) {
	params := url.Values{"include": {"groups"}, "status": {"ACTIVE"}}
	return c.pagedList(ctx, "customers/list", "customers/list", params)
}

// ListAppointments returns every appointment for a branch since the given date.
func (c *Client) ListAppointments(ctx context.Context, branch int, since string) ([]Record, error) {
	params := url.Values{"start_date": {since}, "status": {"all"}}
	path := fmt.Sprintf("appointments/list/%d", branch)
	return c.pagedList(ctx, "appointments/list", path, params)
}

// EncounterIDs resolves the encounter ids linked to an appointment. Both the
// charts and intakes arrays count; entries may be numbers or numeric strings.
func (c *Client) EncounterIDs(ctx context.Context, appointmentID int) ([]int, error) {
	params := url.Values{"appointment_id": {strconv.Itoa(appointmentID)}}
	payload, err := c.get(ctx, "encounters/appointment", "encounters/appointment", params)
	if err != nil {
		return nil, err
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, nil
	}
	var ids []int
	for _, key := range []string{"charts", "intakes"} {
		arr, ok := obj[key].([]any)
		if !ok {
			continue
		}
		for _, v := range arr {
			if n, ok := coerceInt(v); ok {
				ids = append(ids, n)
			}
		}
	}
	return ids, nil
}

// FetchEncounter retrieves one encounter's full nested payload, probing the
// chart and intake roots and several include variants until one answers.
func (c *Client) FetchEncounter(ctx context.Context, id int) (any, error) {
	roots := []string{
		fmt.Sprintf("encounters/%d", id),
		fmt.Sprintf("encounters/charts/%d", id),
		fmt.Sprintf("encounters/intakes/%d", id),
	}
	for _, root := range roots {
		for _, flags := range encounterFetchFlags {
			params := url.Values{}
			for k, vs := range flags {
				params[k] = vs
			}
			payload, err := c.get(ctx, "encounters", root, params)
			if err != nil {
				if IsNotFound(err) {
					continue
				}
				return nil, err
			}
			if obj, ok := payload.(map[string]any); ok {
				if enc, ok := obj["encounter"].(map[string]any); ok {
					return enc, nil
				}
			}
			return payload, nil
		}
	}
	return nil, fmt.Errorf("encounter %d: %w", id, ErrNotFound)
}

// ListCustomerComplaints returns the direct complaint records for a customer.
func (c *Client) ListCustomerComplaints(ctx context.Context, customerID int) ([]Record, error) {
	params := url.Values{"include": {"full"}}
	path := fmt.Sprintf("customers/%d/complaints", customerID)
	return c.pagedList(ctx, "customers/complaints", path, params)
}

// SearchComplaints runs the global complaint search filtered by customer id.
func (c *Client) SearchComplaints(ctx context.Context, customerID int) ([]Record, error) {
	params := url.Values{"customer_id": {strconv.Itoa(customerID)}}
	return c.pagedList(ctx, "complaints/list", "complaints/list", params)
}

// ListAppointmentComplaints returns the complaints linked to one appointment.
func (c *Client) ListAppointmentComplaints(ctx context.Context, appointmentID int) ([]Record, error) {
	path := fmt.Sprintf("appointments/%d/complaints", appointmentID)
	payload, err := c.get(ctx, "appointments/complaints", path, nil)
	if err != nil {
		return nil, err
	}
	return recordsFrom(payload), nil
}

// FetchComplaint retrieves one complaint's detail payload.
func (c *Client) FetchComplaint(ctx context.Context, id int) (Record, error) {
	payload, err := c.get(ctx, "complaints", fmt.Sprintf("complaints/%d", id), nil)
	if err != nil {
		return nil, err
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("complaint %d: unexpected payload shape", id)
	}
	if detail, ok := obj["complaint"].(map[string]any); ok {
		return detail, nil
	}
	return obj, nil
}

// pagedList walks a paginated list endpoint until a short or empty page.
// On a mid-pagination failure the records gathered so far are returned
// alongside the error so callers can degrade to partial results.
func (c *Client) pagedList(ctx context.Context, endpoint, path string, params url.Values) ([]Record, error) {
	var out []Record
	for page := 1; ; page++ {
		p := url.Values{}
		for k, vs := range params {
			p[k] = vs
		}
		p.Set("page", strconv.Itoa(page))
		p.Set("count", strconv.Itoa(pageSize))

		payload, err := c.get(ctx, endpoint, path, p)
		if err != nil {
			return out, err
		}
		block := recordsFrom(payload)
		if len(block) == 0 {
			return out, nil
		}
		out = append(out, block...)
		if len(block) < pageSize {
			return out, nil
		}
	}
}

// recordsFrom extracts a slice of records from a list payload, probing the
// known container keys before treating the payload as a bare array.
func recordsFrom(payload any) []Record {
	arr, ok := payload.([]any)
	if !ok {
		obj, isObj := payload.(map[string]any)
		if !isObj {
			return nil
		}
		for _, key := range listContainerKeys {
			if wrapped, isArr := obj[key].([]any); isArr {
				arr = wrapped
				break
			}
		}
	}
	var out []Record
	for _, item := range arr {
		if rec, ok := item.(map[string]any); ok {
			out = append(out, rec)
		}
	}
	return out
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values) (any, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, fmt.Errorf("juvonno: missing api key")
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + "/" + strings.TrimLeft(path, "/") + "?" + params.Encode()

	start := time.Now()
	payload, err := c.breaker.Execute(func() (interface{}, error) {
		return c.roundTrip(ctx, reqURL)
	})
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.ObserveRequest(endpoint, status, time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) roundTrip(ctx context.Context, reqURL string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("juvonno: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("juvonno: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("juvonno: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: msg}
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("juvonno: unmarshal response: %w", err)
	}
	return payload, nil
}
