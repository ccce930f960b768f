package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spacesedan/ballotboard/internal/models"
)

// BallotClient talks to the remote summary and classification service.
// It never retries; callers decide what to do with a failure.
type BallotClient struct {
	Client  *http.Client
	baseURL string
	routes  *RouteTable
	timeout time.Duration
}

func NewBallotClient(baseURL string, routes *RouteTable, timeout time.Duration) *BallotClient {
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	slog.Info("[BallotClient] Initializing Client",
		slog.String("base_url", baseURL),
		slog.Duration("timeout", timeout))

	return &BallotClient{
		Client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		routes:  routes,
		timeout: timeout,
	}
}

func (b *BallotClient) Routes() *RouteTable {
	return b.routes
}

// FetchSummary resolves key through the route table and GETs its summary.
func (b *BallotClient) FetchSummary(ctx context.Context, key string) (models.SummaryPayload, error) {
	var payload models.SummaryPayload

	src, err := b.routes.Resolve(key)
	if err != nil {
		slog.Error("[BallotClient] Unknown data source",
			slog.String("source", key))
		return payload, err
	}

	start := time.Now()
	if err := b.getJSON(ctx, src.Path, &payload); err != nil {
		slog.Error("[BallotClient] Summary request failed",
			slog.String("source", key),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return models.SummaryPayload{}, &FetchFailure{Source: key, Err: err}
	}

	slog.Info("[BallotClient] Summary request successful",
		slog.String("source", key),
		slog.Int("total", payload.Total),
		slog.Duration("elapsed", time.Since(start)))
	return payload, nil
}

// AnalyzeText submits one piece of text for classification.
func (b *BallotClient) AnalyzeText(ctx context.Context, text string) (models.AnalyzeResponse, error) {
	var result models.AnalyzeResponse
	start := time.Now()

	err := b.postJSON(ctx, ANALYZE_SINGLE_ENDPOINT, models.AnalyzeRequest{Text: text}, &result)
	if err != nil {
		slog.Error("[BallotClient] Analyze request failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return models.AnalyzeResponse{}, err
	}

	if result.Error != "" {
		slog.Warn("[BallotClient] Analyze request returned an error body",
			slog.String("error", result.Error))
		return models.AnalyzeResponse{}, &ServerError{
			Endpoint:   ANALYZE_SINGLE_ENDPOINT,
			StatusCode: http.StatusOK,
			Message:    result.Error,
		}
	}

	slog.Info("[BallotClient] Analyze request successful",
		slog.String("sentiment", result.Sentiment),
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

// HealthCheck reports whether the remote service answers at all. Any status
// below 500 counts as alive.
func (b *BallotClient) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, b.baseURL+"/", nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := b.Client.Do(req)
	if err != nil {
		slog.Debug("[BallotClient] Health check failed",
			slog.String("error", err.Error()))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode < http.StatusInternalServerError
}

func (b *BallotClient) getJSON(ctx context.Context, endpoint string, output interface{}) error {
	return b.do(ctx, http.MethodGet, endpoint, nil, output)
}

func (b *BallotClient) postJSON(ctx context.Context, endpoint string, input interface{}, output interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		slog.Error("[BallotClient] Failed to marshal input",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to marshal input: %w", err)
	}
	return b.do(ctx, http.MethodPost, endpoint, body, output)
}

// do performs one bounded request and decodes a 2xx body into output.
func (b *BallotClient) do(ctx context.Context, method, endpoint string, body []byte, output interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := b.Client.Do(req)
	if err != nil {
		return &NetworkFailure{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
		}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkFailure{Endpoint: endpoint, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("[BallotClient] Failed to unmarshal response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(respBody)))
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// errorMessage pulls {"error": "..."} out of a failed response, if present.
func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, MAX_ERROR_BODY))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var errResp models.ErrorResponse
	if err := json.Unmarshal(raw, &errResp); err != nil {
		return ""
	}
	return errResp.Error
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

// IsTimeout reports whether err came from a deadline, either ours or the
// caller's.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
