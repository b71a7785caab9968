package recommender

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

	"github.com/hirewire/hirewire-api/internal/domain/model"
)

// Client is a thin HTTP JSON client for the recommendation engine.
// It carries no resilience logic; wrap it in a Gateway for production use.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientConfig holds settings for NewClient.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient constructs a Client against the given base URL.
func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("recommendation engine base URL is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid recommendation engine URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid recommendation engine URL scheme: %s", u.Scheme)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// MatchScore fetches the relevance score for an applicant against a job.
func (c *Client) MatchScore(ctx context.Context, applicantID, jobID string) (float64, error) {
	q := url.Values{}
	q.Set("applicant_id", applicantID)
	q.Set("job_id", jobID)

	var out struct {
		Score float64 `json:"score"`
	}
	if err := c.getJSON(ctx, "/v1/match-score?"+q.Encode(), &out); err != nil {
		return 0, err
	}
	return out.Score, nil
}

// RecommendJobs fetches up to limit job recommendations for an applicant.
func (c *Client) RecommendJobs(
	ctx context.Context,
	applicantID string,
	limit int,
) ([]model.Recommendation, error) {
	q := url.Values{}
	q.Set("applicant_id", applicantID)
	q.Set("limit", strconv.Itoa(limit))

	var out struct {
		Recommendations []model.Recommendation `json:"recommendations"`
	}
	if err := c.getJSON(ctx, "/v1/recommendations?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}

// NotifyApplication reports a new application to the engine.
func (c *Client) NotifyApplication(ctx context.Context, applicantID, jobID, applicationID string) error {
	body := struct {
		ApplicantID   string `json:"applicant_id"`
		JobID         string `json:"job_id"`
		ApplicationID string `json:"application_id"`
	}{ApplicantID: applicantID, JobID: jobID, ApplicationID: applicationID}
	return c.postJSON(ctx, "/v1/events/application", body)
}

// NotifyView reports a job view to the engine.
func (c *Client) NotifyView(ctx context.Context, applicantID, jobID string) error {
	body := struct {
		ApplicantID string `json:"applicant_id"`
		JobID       string `json:"job_id"`
	}{ApplicantID: applicantID, JobID: jobID}
	return c.postJSON(ctx, "/v1/events/view", body)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call recommendation engine: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("recommendation engine returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode recommendation engine response: %w", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(string(b)))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call recommendation engine: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("recommendation engine returned status %d", resp.StatusCode)
	}
	return nil
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}
