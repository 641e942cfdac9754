package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stemsi/class-subjects/internal/model"
)

// DefaultTimeout bounds every request to the subjects API.
const DefaultTimeout = 10 * time.Second

// Client talks to the subjects API. It is the transport the form workflow
// submits through.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a Client for baseURL (e.g. http://localhost:8080/api).
// The bearer token is attached to every request, even when empty.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// CreateSubjects posts a submission. Failures are *ServerError,
// *NetworkError or *RequestError. Any 2xx reply means the record was stored,
// so a body that does not decode still counts as success.
func (c *Client) CreateSubjects(ctx context.Context, req model.CreateSubjectsRequest) (*model.CreateSubjectsResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &RequestError{Message: "encode payload", Err: err}
	}

	raw, err := c.do(ctx, http.MethodPost, "/subjects", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	out := model.CreateSubjectsResponse{Success: true}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			out = model.CreateSubjectsResponse{Success: true}
		}
	}
	return &out, nil
}

// ListSubjects returns every stored record in insertion order.
func (c *Client) ListSubjects(ctx context.Context) ([]model.SubjectsRecord, error) {
	raw, err := c.do(ctx, http.MethodGet, "/subjects", nil)
	if err != nil {
		return nil, err
	}

	var out []model.SubjectsRecord
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &ServerError{Status: http.StatusOK, Message: "malformed response body"}
	}
	return out, nil
}

// do sends the request and returns the body of a 2xx reply.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	if _, err := url.ParseRequestURI(c.baseURL + path); err != nil {
		return nil, &RequestError{Message: "invalid API base URL", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &RequestError{Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	return raw, nil
}

// classifyTransportError separates requests that never left the client
// from requests that got no answer.
func classifyTransportError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if errors.Is(uerr.Err, context.Canceled) {
			return &RequestError{Message: "request canceled", Err: err}
		}
		if strings.Contains(uerr.Err.Error(), "unsupported protocol scheme") {
			return &RequestError{Message: "invalid API base URL", Err: err}
		}
	}
	return &NetworkError{Err: err}
}

// errorMessage extracts a user-facing message from an error body. It accepts
// a top-level "message" as well as the {"error": {"message": ...}} envelope.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	if body.Error != nil {
		return body.Error.Message
	}
	return ""
}
