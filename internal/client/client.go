// Package client talks to the quiz service over HTTP. Client satisfies
// quiz.Gateway, so a terminal or test harness can drive a quiz.Machine
// against a running server.
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

	"sustainability-quiz-service/internal/domain"
)

// Aggregate kinds accepted by FetchAggregate.
const (
	KindOverview        = "overview"
	KindDemographics    = "demographics"
	KindQuestions       = "questions"
	KindRecent          = "recent"
	KindReasons         = "reasons"
	KindTrend           = "trend"
	KindSimple          = "simple"
	KindQuestionDetails = "question-details"
)

var aggregatePaths = map[string]string{
	KindOverview:        "/api/analytics/overview",
	KindDemographics:    "/api/analytics/demographics",
	KindQuestions:       "/api/analytics/questions",
	KindRecent:          "/api/analytics/recent",
	KindReasons:         "/api/analytics/reasons",
	KindTrend:           "/api/analytics/trend",
	KindSimple:          "/api/stats/simple",
	KindQuestionDetails: "/api/stats/questions",
}

// ErrUnknownKind is returned by FetchAggregate for an unsupported kind.
var ErrUnknownKind = errors.New("unknown aggregate kind")

const maxBody = 4 << 20

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.Code)
	}
	return fmt.Sprintf("http error: status=%d message=%s", e.Code, msg)
}

type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client
}

func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("baseURL required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{baseURL: baseURL, token: strings.TrimSpace(opts.Token), timeout: timeout, http: hc}, nil
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) StartSession(ctx context.Context, s domain.NewSession) error {
	return c.doJSON(ctx, http.MethodPost, "/api/quiz/start", s, nil)
}

func (c *Client) RecordResponse(ctx context.Context, r domain.NewResponse) error {
	return c.doJSON(ctx, http.MethodPost, "/api/quiz/response", r, nil)
}

func (c *Client) CompleteSession(ctx context.Context, sessionID string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/quiz/complete", map[string]string{"sessionId": sessionID}, nil)
}

func (c *Client) Questions(ctx context.Context) ([]domain.Question, error) {
	var out []domain.Question
	if err := c.doJSON(ctx, http.MethodGet, "/api/quiz/questions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SessionResponses(ctx context.Context, sessionID string) ([]domain.QuestionResponse, error) {
	var out []domain.QuestionResponse
	path := "/api/quiz/session/" + url.PathEscape(sessionID) + "/responses"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchAggregate decodes the aggregate named by kind into out. params become the query string.
func (c *Client) FetchAggregate(ctx context.Context, kind string, params url.Values, out any) error {
	path, ok := aggregatePaths[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (domain.User, error) {
	var out struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return domain.User{}, err
	}
	c.token = out.Token
	return out.User, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseStatusError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func parseStatusError(status int, raw []byte) error {
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && strings.TrimSpace(env.Message) != "" {
		return &StatusError{Code: status, Message: strings.TrimSpace(env.Message)}
	}
	return &StatusError{Code: status, Message: strings.TrimSpace(string(raw))}
}
