package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// RemoteError reports a failed or malformed exchange with the synthesis
// server. Remote failures are never retried; they surface as fatal run
// failures, and checkpointing makes the restart cheap.
type RemoteError struct {
	Endpoint   string
	StatusCode int // 0 when the request never completed
	Err        error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("synthesis server %s: HTTP %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("synthesis server %s: %v", e.Endpoint, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsRemote returns true if the error is a remote synthesis failure.
// Uses errors.As to handle wrapped errors.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// Client talks JSON over HTTP to a synthesis server exposing /compile and
// /generate. The HTTP client carries no timeout: a compile can legitimately
// take minutes, and the run blocks on it by design.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// Compile implements Service.
func (c *Client) Compile(ctx context.Context, req CompileRequest) (CompileResponse, error) {
	var resp CompileResponse
	if err := c.post(ctx, "/compile", req, &resp); err != nil {
		return CompileResponse{}, err
	}
	return resp, nil
}

// GenerateModule implements Service.
func (c *Client) GenerateModule(ctx context.Context, req GenerateRequest) (string, error) {
	var resp GenerateResponse
	if err := c.post(ctx, "/generate", req, &resp); err != nil {
		return "", err
	}
	if resp.ModuleText == "" {
		return "", &RemoteError{Endpoint: "/generate", Err: errors.New("empty module text")}
	}
	return resp.ModuleText, nil
}

func (c *Client) post(ctx context.Context, endpoint string, reqBody, respBody any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", endpoint, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return &RemoteError{Endpoint: endpoint, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return &RemoteError{Endpoint: endpoint, Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, httpResp.Body)
		return &RemoteError{Endpoint: endpoint, StatusCode: httpResp.StatusCode}
	}
	if err := json.NewDecoder(httpResp.Body).Decode(respBody); err != nil {
		return &RemoteError{Endpoint: endpoint, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
