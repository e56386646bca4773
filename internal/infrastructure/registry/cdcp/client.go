package cdcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jmanzanog/bond-tracker/internal/domain"
)

const (
	defaultBaseURL = "https://www.cdcp.cz/isbpublicjson/api"
	defaultTimeout = 10 * time.Second
	lookupPath     = "/VydaneISINy"

	unavailableMessage = "Error occurred while validating ISIN."
)

// Client implements registry.Provider against the CDCP public JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a CDCP client whose requests give up after timeout.
// A non-positive timeout falls back to 10 seconds.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientWithHTTPClient creates a CDCP client with a custom HTTP client (for testing).
func NewClientWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
	}
}

// SetBaseURL sets the base URL for the API (useful for testing).
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// issuedResponse is the VydaneISINy payload. Records are kept loosely typed:
// the registry adds fields over time and the completeness check decides what
// is required.
type issuedResponse struct {
	Records []map[string]any `json:"vydaneisiny"`
}

// Lookup fetches the registry record for cval. One attempt, no retry.
func (c *Client) Lookup(ctx context.Context, cval string) (domain.ReferenceRecord, error) {
	slog.DebugContext(ctx, "calling CDCP registry", "cval", cval)

	records, err := c.fetch(ctx, cval)
	if err != nil {
		slog.ErrorContext(ctx, "error occurred while validating ISIN", "cval", cval, "error", err)
		return nil, domain.WrapValidationError(domain.KindRegistryUnavailable, unavailableMessage, err)
	}

	if len(records) == 0 {
		slog.ErrorContext(ctx, "ISIN not found in CDCP data", "cval", cval)
		return nil, domain.NewValidationError(domain.KindNotFoundInRegistry,
			fmt.Sprintf("ISIN %s not found in CDCP data.", cval))
	}

	slog.DebugContext(ctx, "CDCP data found", "cval", cval, "record", records[0])
	return domain.ReferenceRecord(records[0]), nil
}

// IsMatching reports whether the registry returns a record for cval whose
// own identifier equals cval. Registry outages still propagate.
func (c *Client) IsMatching(ctx context.Context, cval string) (bool, error) {
	record, err := c.Lookup(ctx, cval)
	if err != nil {
		if domain.IsValidationKind(err, domain.KindNotFoundInRegistry) {
			return false, nil
		}
		return false, err
	}

	got, _ := domain.CanonicalValue(record[domain.FieldCVal])
	return got == cval, nil
}

func (c *Client) fetch(ctx context.Context, cval string) ([]map[string]any, error) {
	params := url.Values{}
	params.Add("isin", cval)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, lookupPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr, "url", reqURL)
		}
	}()

	slog.DebugContext(ctx, "CDCP response", "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var issued issuedResponse
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&issued); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return issued.Records, nil
}
