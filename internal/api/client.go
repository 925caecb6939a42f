package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the interview REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a Client for the API rooted at baseURL.
// Per-call deadlines come from the caller's context.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartSession creates a new interview session for a role.
func (c *Client) StartSession(ctx context.Context, req StartRequest) (*StartResponse, error) {
	var out StartResponse
	if err := c.doJSON(ctx, "start session", "", http.MethodPost, "/api/interview/start", req, &out); err != nil {
		return nil, err
	}
	if out.SessionID == "" {
		return nil, &ServerError{Op: "start session", StatusCode: http.StatusOK, Message: "response has no session id"}
	}
	return &out, nil
}

// FetchQuestion returns the current question of the session, or a response
// with Completed set once every question has been answered.
func (c *Client) FetchQuestion(ctx context.Context, sessionID string) (*QuestionResponse, error) {
	var out QuestionResponse
	if err := c.doJSON(ctx, "fetch question", sessionID, http.MethodGet, sessionPath(sessionID, "/question"), nil, &out); err != nil {
		return nil, err
	}
	if !out.Completed && out.Question == nil {
		return nil, &ServerError{Op: "fetch question", StatusCode: http.StatusOK, Message: "response has no question"}
	}
	return &out, nil
}

// SubmitAnswer posts the answer for the current question.
func (c *Client) SubmitAnswer(ctx context.Context, sessionID string, req AnswerRequest) (*SubmitResponse, error) {
	var out SubmitResponse
	if err := c.doJSON(ctx, "submit answer", sessionID, http.MethodPost, sessionPath(sessionID, "/answer"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchSessionStatus returns the session's status snapshot.
func (c *Client) FetchSessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	var out SessionStatus
	if err := c.doJSON(ctx, "fetch session", sessionID, http.MethodGet, sessionPath(sessionID, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchSummary returns the graded summary of a finished session.
func (c *Client) FetchSummary(ctx context.Context, sessionID string) (*Summary, error) {
	var out Summary
	if err := c.doJSON(ctx, "fetch summary", sessionID, http.MethodGet, sessionPath(sessionID, "/summary"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TranscribeAudio uploads a recorded answer as multipart form data and
// returns the server's transcript. The caller bounds the call through ctx.
func (c *Client) TranscribeAudio(ctx context.Context, sessionID string, audio []byte, stamp time.Time) (*TranscriptResponse, error) {
	const op = "transcribe audio"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="audio"; filename="answer.wav"`)
	h.Set("Content-Type", "audio/wav")
	fw, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("%s: build form: %w", op, err)
	}
	if _, err := fw.Write(audio); err != nil {
		return nil, fmt.Errorf("%s: write audio: %w", op, err)
	}
	if err := mw.WriteField("responseTime", strconv.FormatInt(stamp.UnixMilli(), 10)); err != nil {
		return nil, fmt.Errorf("%s: build form: %w", op, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%s: build form: %w", op, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, sessionPath(sessionID, "/voice-answer"), &body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out TranscriptResponse
	if err := c.do(req, op, sessionID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Version returns the server's API version.
func (c *Client) Version(ctx context.Context) (*VersionInfo, error) {
	var out VersionInfo
	if err := c.doJSON(ctx, "version", "", http.MethodGet, "/api/version", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/interview/session/" + url.PathEscape(sessionID) + suffix
}

func (c *Client) doJSON(ctx context.Context, op, sessionID, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, op, sessionID, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, op, sessionID string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return mapStatusError(op, sessionID, resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ServerError{Op: op, StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

// errorBody is the error envelope the API returns on failures.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func mapStatusError(op, sessionID string, status int, data []byte) error {
	var eb errorBody
	msg := ""
	if json.Unmarshal(data, &eb) == nil {
		msg = eb.Error
		if msg == "" {
			msg = eb.Message
		}
	}

	switch {
	case sessionID != "" && status == http.StatusNotFound:
		return &NotActiveError{SessionID: sessionID, Message: "session not found"}
	case sessionID != "" && status == http.StatusGone:
		return &NotActiveError{SessionID: sessionID, Message: msg}
	case sessionID != "" && status == http.StatusBadRequest && strings.Contains(strings.ToLower(msg), "not active"):
		return &NotActiveError{SessionID: sessionID, Message: msg}
	}
	return &ServerError{Op: op, StatusCode: status, Message: msg}
}

// IsTransient reports whether err is worth retrying by the user: network
// failures and 5xx responses.
func IsTransient(err error) bool {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return true
	}
	var se *ServerError
	return errors.As(err, &se) && se.StatusCode >= 500
}
