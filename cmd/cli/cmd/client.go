package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"layerplane/pkg/api"
)

// LayerClient handles API calls to the layerplane controller.
type LayerClient struct {
	BaseURL    string
	User       string
	Password   string
	HTTPClient *http.Client
}

// NewLayerClient creates a new client. Basic auth is sent when user is set.
func NewLayerClient(baseURL, user, password string) *LayerClient {
	return &LayerClient{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		User:     user,
		Password: password,
		HTTPClient: &http.Client{
			// Metadata batches wait for the repository push.
			Timeout: 5 * time.Minute,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// CreateJobs sends POST /jobs. An empty interval lets the controller pick Triggered.
func (c *LayerClient) CreateJobs(publishes []string, interval string) (*api.BatchResponse, error) {
	var result api.BatchResponse
	req := api.CreateJobsRequest{Publishes: publishes, Interval: interval}
	if err := c.do(http.MethodPost, "/jobs", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PublishMetadata sends POST /metajobs.
func (c *LayerClient) PublishMetadata(layers []string) (*api.BatchResponse, error) {
	var result api.BatchResponse
	if err := c.do(http.MethodPost, "/metajobs", api.PublishMetadataRequest{Layers: layers}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPublishStatus sends GET /publishs/{name}.
func (c *LayerClient) GetPublishStatus(name string) (*api.PublishStatusResponse, error) {
	var result api.PublishStatusResponse
	if err := c.do(http.MethodGet, "/publishs/"+url.PathEscape(name), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *LayerClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.User != "" {
		httpReq.SetBasicAuth(c.User, c.Password)
	}
	httpReq.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		var apiErr api.ErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
