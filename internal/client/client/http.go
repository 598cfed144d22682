package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/briefly/internal/client/metrics"
	"github.com/dmitrijs2005/briefly/internal/common"
	"github.com/dmitrijs2005/briefly/internal/logging"
	"github.com/google/uuid"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseBody = 8 << 20
	maxErrorBody    = 64 << 10
)

// Config configures an HTTPClient.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Tokens     TokenSource
	Observer   Observer
	Logger     logging.Logger
}

// HTTPClient implements Client over the backend's JSON/HTTP API.
type HTTPClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	tokens     TokenSource
	observer   Observer
	log        logging.Logger
}

// NewHTTPClient validates cfg and builds a client. Tokens may be set later
// with SetTokenSource, which breaks the construction cycle with the
// session store.
func NewHTTPClient(cfg Config) (*HTTPClient, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", cfg.BaseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	var observer Observer = nopObserver{}
	if cfg.Observer != nil {
		observer = cfg.Observer
	}

	var log logging.Logger = logging.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger
	}

	return &HTTPClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		timeout:    timeout,
		httpClient: httpClient,
		tokens:     cfg.Tokens,
		observer:   observer,
		log:        log.With("component", "api"),
	}, nil
}

// SetTokenSource installs the provider of bearer tokens.
func (c *HTTPClient) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Request describes one outbound call.
type Request struct {
	Method string
	// Route is the path template used as the metrics label; Path when empty.
	Route        string
	Path         string
	Body         any
	Form         *MultipartForm
	RequiresAuth bool
}

// MultipartForm is a file-bearing request body.
type MultipartForm struct {
	Fields    map[string]string
	FileField string
	FileName  string
	File      io.Reader
}

// Call performs req and decodes a successful JSON response into out
// (skipped when out is nil).
func (c *HTTPClient) Call(ctx context.Context, req Request, out any) error {
	resp, finish, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer finish()

	body, err := readLimited(resp.Body, maxResponseBody)
	if err != nil {
		return &NetworkError{Op: req.Method + " " + req.Path, Err: err}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &FetchError{Message: fmt.Sprintf("malformed response: %v", err)}
	}
	return nil
}

// Download performs req and streams a successful response body into w.
func (c *HTTPClient) Download(ctx context.Context, req Request, w io.Writer) error {
	resp, finish, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer finish()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return &NetworkError{Op: req.Method + " " + req.Path, Err: err}
	}
	return nil
}

// do sends req and returns a 2xx response. The returned finish func closes
// the body and releases the timeout; it must be called when err is nil.
func (c *HTTPClient) do(ctx context.Context, req Request) (_ *http.Response, _ func(), err error) {
	route := req.Route
	if route == "" {
		route = req.Path
	}
	op := req.Method + " " + req.Path

	outcome := metrics.OutcomeOK
	var elapsed time.Duration
	defer func() {
		c.observer.ObserveRequest(req.Method, route, outcome, elapsed)
	}()

	var token string
	if req.RequiresAuth {
		if c.tokens == nil {
			outcome = metrics.OutcomeUnauthenticated
			return nil, nil, ErrUnauthenticated
		}
		token, err = c.tokens.Token(ctx)
		if err != nil || token == "" {
			outcome = metrics.OutcomeUnauthenticated
			return nil, nil, ErrUnauthenticated
		}
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		outcome = metrics.OutcomeFetchError
		return nil, nil, fmt.Errorf("encode request body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		cancel()
		outcome = metrics.OutcomeFetchError
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(common.RequestIDHeaderName, requestID)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		httpReq.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	c.observer.RequestStarted()
	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	elapsed = time.Since(start)
	c.observer.RequestFinished()

	if err != nil {
		cancel()
		outcome = metrics.OutcomeNetworkError
		nerr := &NetworkError{Op: op, Err: err}
		c.log.Debug(ctx, "api call failed", "op", op, "request_id", requestID, "error", nerr)
		return nil, nil, nerr
	}

	c.log.Debug(ctx, "api call", "op", op, "request_id", requestID,
		"status", resp.StatusCode, "elapsed", elapsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer cancel()
		defer resp.Body.Close()
		outcome = metrics.OutcomeAPIError
		raw, _ := readLimited(resp.Body, maxErrorBody)
		return nil, nil, &APIError{Status: resp.StatusCode, Message: errorMessage(raw, resp.StatusCode)}
	}

	finish := func() {
		_ = resp.Body.Close()
		cancel()
	}
	return resp, finish, nil
}

func encodeBody(req Request) (io.Reader, string, error) {
	if req.Form != nil {
		return encodeMultipart(req.Form)
	}
	if req.Body == nil {
		return nil, "", nil
	}
	b, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(b), "application/json", nil
}

func encodeMultipart(form *MultipartForm) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for name, value := range form.Fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	if form.File != nil {
		field := form.FileField
		if field == "" {
			field = "file"
		}
		fw, err := mw.CreateFormFile(field, form.FileName)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(fw, form.File); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errors.New("response body too large")
	}
	return b, nil
}

// errorMessage extracts a human-readable message from an error body:
// FastAPI-style "detail" (string or list of {msg}), "message", or a string
// "result", falling back to short plain text and then the status text.
func errorMessage(body []byte, status int) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Result  json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := detailMessage(payload.Detail); msg != "" {
			return msg
		}
		if payload.Message != "" {
			return payload.Message
		}
		if msg := stringValue(payload.Result); msg != "" {
			return msg
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		return text
	}

	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", status)
}

func detailMessage(raw json.RawMessage) string {
	if msg := stringValue(raw); msg != "" {
		return msg
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	msgs := make([]string, 0, len(items))
	for _, it := range items {
		if it.Msg != "" {
			msgs = append(msgs, it.Msg)
		}
	}
	return strings.Join(msgs, "; ")
}

func stringValue(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
