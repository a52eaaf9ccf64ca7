package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gartstein/ehs/internal/training/controller"
	"github.com/gartstein/ehs/internal/training/handlers"
)

// Client handles API calls to the training service.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a new client with the given base URL and token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Kind       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

func (c *Client) do(method, path string, body, out interface{}) error {
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
	httpReq.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.Token))
	httpReq.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		var parsed handlers.ErrorResponse
		if json.Unmarshal(respBody, &parsed) == nil && parsed.Error != "" {
			apiErr.Kind = parsed.Kind
			apiErr.Message = parsed.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// SubmitProposal sends POST /v1/opportunities/{id}/proposals.
func (c *Client) SubmitProposal(opportunityID string, req handlers.SubmitProposalRequest) (*handlers.ProposalResponse, error) {
	var result handlers.ProposalResponse
	if err := c.do(http.MethodPost, "/v1/opportunities/"+url.PathEscape(opportunityID)+"/proposals", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DecideProposal sends POST /v1/proposals/{id}/decision.
func (c *Client) DecideProposal(proposalID, decision string) (*controller.Decision, error) {
	var result controller.Decision
	req := handlers.DecideProposalRequest{Decision: decision}
	if err := c.do(http.MethodPost, "/v1/proposals/"+url.PathEscape(proposalID)+"/decision", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ScheduleSession sends POST /v1/opportunities/{id}/sessions.
func (c *Client) ScheduleSession(opportunityID string, req handlers.ScheduleSessionRequest) (*handlers.SessionResponse, error) {
	var result handlers.SessionResponse
	if err := c.do(http.MethodPost, "/v1/opportunities/"+url.PathEscape(opportunityID)+"/sessions", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AdvanceSession sends POST /v1/sessions/{id}/status.
func (c *Client) AdvanceSession(sessionID string, req handlers.AdvanceSessionRequest) (*handlers.SessionResponse, error) {
	var result handlers.SessionResponse
	if err := c.do(http.MethodPost, "/v1/sessions/"+url.PathEscape(sessionID)+"/status", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReviewVendor sends POST /v1/vendors/{id}/approve or /reject.
func (c *Client) ReviewVendor(vendorID, action string) (*handlers.VendorResponse, error) {
	var result handlers.VendorResponse
	if err := c.do(http.MethodPost, "/v1/vendors/"+url.PathEscape(vendorID)+"/"+action, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Calendar sends GET /v1/calendar.
func (c *Client) Calendar(month, filter string) (*controller.Calendar, error) {
	q := url.Values{}
	if month != "" {
		q.Set("month", month)
	}
	if filter != "" {
		q.Set("filter", filter)
	}
	path := "/v1/calendar"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var result controller.Calendar
	if err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
