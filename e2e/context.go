package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TestContext drives a running server over HTTP and remembers the last
// response plus the session obtained by logging in.
type TestContext struct {
	BaseURL string
	Client  *http.Client

	lastStatus int
	lastBody   []byte

	accessToken string
	challengeID string
	forwardedIP string
}

func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.accessToken = ""
	tc.challengeID = ""
	tc.forwardedIP = ""
}

func (tc *TestContext) do(ctx context.Context, method, path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, tc.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}
	if tc.forwardedIP != "" {
		req.Header.Set("X-Forwarded-For", tc.forwardedIP)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) POST(ctx context.Context, path string, body any) error {
	return tc.do(ctx, http.MethodPost, path, body, nil)
}

func (tc *TestContext) GET(ctx context.Context, path string, headers map[string]string) error {
	return tc.do(ctx, http.MethodGet, path, nil, headers)
}

// GetResponseField reads a top-level or dotted field from the last JSON body.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var doc any
	if err := json.Unmarshal(tc.lastBody, &doc); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	for _, part := range strings.Split(field, ".") {
		obj, ok := doc.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: not an object", field)
		}
		if doc, ok = obj[part]; !ok {
			return nil, fmt.Errorf("field %q missing from response", field)
		}
	}
	return doc, nil
}

func (tc *TestContext) GetLastResponseStatus() int { return tc.lastStatus }
func (tc *TestContext) GetLastResponseBody() []byte { return tc.lastBody }
func (tc *TestContext) GetAccessToken() string { return tc.accessToken }
func (tc *TestContext) SetAccessToken(token string) { tc.accessToken = token }
func (tc *TestContext) GetChallengeID() string { return tc.challengeID }
func (tc *TestContext) SetChallengeID(id string) { tc.challengeID = id }
func (tc *TestContext) SetForwardedIP(ip string) { tc.forwardedIP = ip }
