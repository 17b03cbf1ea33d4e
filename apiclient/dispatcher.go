// Package apiclient sends requests to the portal backend on behalf of a
// session, attaching the bearer token and running the 401 refresh-and-retry
// protocol.
package apiclient

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

	"github.com/google/uuid"
	perrors "github.com/jrsteele09/go-college-portal/internal/errors"
	"github.com/jrsteele09/go-college-portal/navigation"
	"github.com/jrsteele09/go-college-portal/token"
	"github.com/rs/zerolog/log"
)

const (
	HeaderRequestID   = "X-Request-ID"
	DefaultTimeout    = 30 * time.Second
	DefaultUserAgent  = "college-portal-client/1.0"
	maxResponseLength = 10 << 20
)

// Session is the part of the session manager the dispatcher depends on
type Session interface {
	AccessToken() string
	RefreshToken(ctx context.Context) (string, error)

	// LogoutIfHeld ends the session only while accessToken is still held and
	// reports whether the session is now logged out
	LogoutIfHeld(ctx context.Context, accessToken string) bool
}

// RequestOptions describe one logical request
type RequestOptions struct {
	Method string     // Defaults to GET
	Params url.Values // Query string
	Body   any        // JSON encoded when non-nil

	// Anonymous requests carry no bearer token and a 401 is returned as is.
	// Used for the endpoints that establish or renew a session.
	Anonymous bool

	// NoRetry requests carry the bearer token but a 401 is returned as is
	NoRetry bool

	// BearerToken, when set, is sent instead of the session's token
	BearerToken string
}

type Dispatcher struct {
	baseURL    string
	httpClient *http.Client
	session    Session
	navigator  navigation.Navigator
	timeout    time.Duration
	userAgent  string
	stateHook  StateHook
}

type Option func(*Dispatcher)

// WithHTTPClient replaces the default client. A nil client keeps the default.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) {
		d.httpClient = c
	}
}

// WithTimeout sets the per-attempt timeout of the default client. A client
// passed with WithHTTPClient keeps its own timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

func WithNavigator(n navigation.Navigator) Option {
	return func(d *Dispatcher) {
		d.navigator = n
	}
}

func WithUserAgent(ua string) Option {
	return func(d *Dispatcher) {
		d.userAgent = ua
	}
}

// WithStateHook observes the retry protocol of every request
func WithStateHook(h StateHook) Option {
	return func(d *Dispatcher) {
		d.stateHook = h
	}
}

// New creates a dispatcher for baseURL. session may be nil, in which case no
// token is ever attached and a 401 is terminal.
func New(baseURL string, session Session, opts ...Option) (*Dispatcher, error) {
	if baseURL == "" {
		return nil, errors.New("[apiclient.New] base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("[apiclient.New] invalid base URL: %w", err)
	}
	d := &Dispatcher{
		baseURL:   strings.TrimRight(baseURL, "/"),
		session:   session,
		navigator: navigation.Discard,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.httpClient == nil {
		d.httpClient = &http.Client{Timeout: d.timeout}
	}
	if d.navigator == nil {
		d.navigator = navigation.Discard
	}
	return d, nil
}

// BaseURL returns the backend base URL without a trailing slash
func (d *Dispatcher) BaseURL() string {
	return d.baseURL
}

// Request sends one logical request and returns the raw body of a 2xx
// response. On a first 401 the session is refreshed and the request is sent
// once more; a second 401, or a failed refresh, logs the session out and
// navigates to the login destination. The logout is skipped when the session
// has moved on to another token since the rejected attempt was sent.
func (d *Dispatcher) Request(ctx context.Context, endpoint string, opts RequestOptions) ([]byte, error) {
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}
	var payload []byte
	if opts.Body != nil {
		var err error
		if payload, err = json.Marshal(opts.Body); err != nil {
			return nil, fmt.Errorf("[apiclient] encode %s body: %w", endpoint, err)
		}
	}

	c := &call{requestID: uuid.NewString(), state: StateInitial, hook: d.stateHook}
	for {
		status, body, err := d.send(ctx, endpoint, opts, payload, c)
		if err != nil {
			c.moveTo(StateFailed)
			return nil, err
		}
		if status >= 200 && status < 300 {
			c.moveTo(StateSucceeded)
			return body, nil
		}

		apiErr := d.apiError(status, body, endpoint, opts, c)
		if status != http.StatusUnauthorized || opts.Anonymous || opts.NoRetry {
			c.moveTo(StateFailed)
			return nil, apiErr
		}

		if c.state != StateInitial || d.session == nil {
			// A retried request that is still rejected ends the session
			c.moveTo(StateFailed)
			d.endSession(ctx, c)
			return nil, apiErr
		}

		c.moveTo(StateRefreshing)
		if _, err := d.session.RefreshToken(ctx); err != nil {
			c.moveTo(StateFailed)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Err(err).Str("request_id", c.requestID).Str("endpoint", endpoint).Msg("token refresh after 401 failed")
			// An interrupted refresh or a replaced session says nothing about
			// the session this request was sent with
			if !isContextErr(err) && !errors.Is(err, perrors.ErrNotLoggedIn) {
				d.endSession(ctx, c)
			}
			return nil, perrors.Wrapf(err, "[apiclient] refresh after 401 on %s", endpoint)
		}
		c.moveTo(StateRetried)
	}
}

// Do sends a request and decodes the response envelope's data into out.
// out may be nil when the caller only needs success.
func (d *Dispatcher) Do(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	body, err := d.Request(ctx, endpoint, opts)
	if err != nil {
		return err
	}
	return DecodeEnvelope(body, out)
}

// DecodeEnvelope unwraps body into out. A success:false envelope becomes an
// *APIError. Bodies that are not envelopes are decoded into out directly.
func DecodeEnvelope(body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	env, ok, err := decodeEnvelope(body)
	if err != nil {
		return err
	}
	if !ok {
		if out == nil {
			return nil
		}
		return json.Unmarshal(body, out)
	}
	if env.Failed() {
		return &APIError{Status: http.StatusOK, Message: env.message(), Errors: env.Errors}
	}
	if out == nil {
		return nil
	}
	if env.Success == nil && !env.HasData() {
		// Not an envelope after all, the object itself is the payload
		return json.Unmarshal(body, out)
	}
	if !env.HasData() {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func (d *Dispatcher) send(ctx context.Context, endpoint string, opts RequestOptions, payload []byte, c *call) (int, []byte, error) {
	c.attempts++
	u, err := d.resolve(endpoint, opts.Params)
	if err != nil {
		return 0, nil, err
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, opts.Method, u, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("[apiclient] build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set(HeaderRequestID, c.requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.bearer = d.bearer(opts)
	if c.bearer != "" {
		token.New(c.bearer, "").SetAuthHeader(req)
	}

	log.Debug().
		Str("request_id", c.requestID).
		Str("method", opts.Method).
		Str("endpoint", endpoint).
		Int("attempt", c.attempts).
		Str("state", c.state.String()).
		Msg("sending request")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		return 0, nil, fmt.Errorf("%w: %s %s: %w", perrors.ErrBackendUnavailable, opts.Method, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseLength))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read %s response: %w", perrors.ErrBackendUnavailable, endpoint, err)
	}
	return resp.StatusCode, body, nil
}

func (d *Dispatcher) bearer(opts RequestOptions) string {
	if opts.Anonymous {
		return ""
	}
	if opts.BearerToken != "" {
		return opts.BearerToken
	}
	if d.session == nil {
		return ""
	}
	return d.session.AccessToken()
}

func (d *Dispatcher) resolve(endpoint string, params url.Values) (string, error) {
	var raw string
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		raw = endpoint
	} else {
		raw = d.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("[apiclient] invalid endpoint %q: %w", endpoint, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (d *Dispatcher) apiError(status int, body []byte, endpoint string, opts RequestOptions, c *call) *APIError {
	msg, fields := errorDetails(body)
	return &APIError{
		Status:    status,
		Message:   msg,
		Errors:    fields,
		Method:    opts.Method,
		Endpoint:  endpoint,
		RequestID: c.requestID,
	}
}

// endSession logs out the session the rejected attempt was sent with and sends
// the user to the login destination
func (d *Dispatcher) endSession(ctx context.Context, c *call) {
	if d.session != nil && !d.session.LogoutIfHeld(context.WithoutCancel(ctx), c.bearer) {
		log.Debug().Str("request_id", c.requestID).Msg("session replaced since the request was sent, keeping it")
		return
	}
	d.navigator.Navigate(navigation.Login)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
