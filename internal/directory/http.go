package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/imamik/symphonyctl/internal/config"
	"github.com/imamik/symphonyctl/internal/topology"
	"github.com/imamik/symphonyctl/internal/util/retry"
)

// membersResponse is the body of GET /clusters/<id>/members.
type membersResponse struct {
	Members []topology.ClusterMember `json:"members"`
}

// HTTP talks to a cluster metadata service. Transport errors, 429 and 5xx
// responses of writes are retried by the client; 401 and 403 are fatal.
// Queries make a single request since discovery already polls on its own
// interval.
type HTTP struct {
	client *retryablehttp.Client
	query  *retryablehttp.Client
	base   string
	token  string
}

// NewHTTP creates an HTTP directory.
func NewHTTP(cfg config.HTTPConfig, log Logger) (*HTTP, error) {
	if _, err := url.Parse(cfg.BaseURL); err != nil || cfg.BaseURL == "" {
		return nil, &topology.ConfigError{Field: "discovery.http.base_url", Message: "must be a URL"}
	}

	return &HTTP{
		client: newRetryableClient(cfg, cfg.RetryMax, log),
		query:  newRetryableClient(cfg, 0, log),
		base:   cfg.BaseURL,
		token:  cfg.Token,
	}, nil
}

func newRetryableClient(cfg config.HTTPConfig, retryMax int, log Logger) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = nil
	if log != nil {
		client.Logger = log
	}
	return client
}

func (h *HTTP) Name() string { return "http" }

// Query implements topology.Directory. An unknown cluster (404) has no
// members yet.
func (h *HTTP) Query(ctx context.Context, clusterID string) ([]topology.ClusterMember, error) {
	endpoint, err := url.JoinPath(h.base, "clusters", clusterID, "members")
	if err != nil {
		return nil, retry.Fatal(fmt.Errorf("failed to build members URL: %w", err))
	}

	resp, err := h.do(ctx, h.query, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var body membersResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode members response: %w", err)
	}
	return body.Members, nil
}

// Register upserts the member record.
func (h *HTTP) Register(ctx context.Context, member topology.ClusterMember) error {
	endpoint, err := url.JoinPath(h.base, "clusters", member.ClusterID, "members", member.Hostname)
	if err != nil {
		return fmt.Errorf("failed to build member URL: %w", err)
	}
	data, err := json.Marshal(member)
	if err != nil {
		return fmt.Errorf("failed to encode member record: %w", err)
	}

	resp, err := h.do(ctx, h.client, http.MethodPut, endpoint, data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// Deregister deletes the member record. A missing record is not an error.
func (h *HTTP) Deregister(ctx context.Context, clusterID, hostname string) error {
	endpoint, err := url.JoinPath(h.base, "clusters", clusterID, "members", hostname)
	if err != nil {
		return fmt.Errorf("failed to build member URL: %w", err)
	}

	resp, err := h.do(ctx, h.client, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return checkStatus(resp)
}

// RequestCapacity posts autoscale demand for the cluster.
func (h *HTTP) RequestCapacity(ctx context.Context, clusterID string, requests []CapacityRequest) error {
	endpoint, err := url.JoinPath(h.base, "clusters", clusterID, "autoscale")
	if err != nil {
		return fmt.Errorf("failed to build autoscale URL: %w", err)
	}
	data, err := json.Marshal(requests)
	if err != nil {
		return fmt.Errorf("failed to encode autoscale request: %w", err)
	}

	resp, err := h.do(ctx, h.client, http.MethodPost, endpoint, data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

func (h *HTTP) do(ctx context.Context, client *retryablehttp.Client, method, endpoint string, body []byte) (*http.Response, error) {
	var raw any
	if body != nil {
		raw = bytes.NewReader(body)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	return resp, nil
}

// StatusError is a non-success response from the metadata service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("metadata service returned %d: %s", e.StatusCode, e.Body)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err := &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return retry.Fatal(err)
	}
	return err
}
