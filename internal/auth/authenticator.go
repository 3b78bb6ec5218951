package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	// expirySafetyMargin is subtracted from the server-declared lifetime so
	// tokens are refreshed before Snowflake would reject them as expired.
	expirySafetyMargin = 300 * time.Second

	// defaultLifetime is assumed when the token response omits expires_in.
	defaultLifetime = 3600 * time.Second

	// requestTimeout bounds a single token request. Timed-out requests are
	// surfaced as a TransportError and are not retried here.
	requestTimeout = 30 * time.Second
)

// Credentials holds the service principal settings the authenticator needs
// to request tokens. Presence of the fields is validated by the config
// layer before the authenticator is constructed.
type Credentials struct {
	ClientID      string
	ClientSecret  string
	TokenEndpoint string
	Scope         string
}

// tokenResponse is the JSON body returned by the Azure AD token endpoint.
// ExpiresIn is a pointer so an absent field (defaulted) is distinguishable
// from an explicit zero (honored, yielding an already-expired credential).
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   *int   `json:"expires_in"` // seconds
}

// TokenInfo is a point-in-time snapshot of the cached credential.
type TokenInfo struct {
	HasToken  bool
	Valid     bool
	ExpiresAt time.Time     // zero when no token is cached
	ExpiresIn time.Duration // remaining lifetime, zero when no token is cached
}

// Authenticator acquires and caches a single OAuth access token for an
// Azure AD service principal. One token is held per instance; the cached
// token and its expiry are always set and cleared together.
//
// All methods are safe for concurrent use. GetToken holds the lock for the
// duration of a refresh, so concurrent callers during a refresh wait for
// the one in-flight request rather than issuing duplicates.
type Authenticator struct {
	creds Credentials
	http  *http.Client
	log   *slog.Logger
	now   func() time.Time

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// New constructs an Authenticator for the given service principal.
// Logging is discarded; use NewWithLogger to observe acquisition events.
func New(creds Credentials) *Authenticator {
	return NewWithLogger(creds, discardLogger())
}

// NewWithLogger constructs an Authenticator that emits acquisition events
// to the given logger.
func NewWithLogger(creds Credentials, log *slog.Logger) *Authenticator {
	if log == nil {
		log = discardLogger()
	}
	return &Authenticator{
		creds: creds,
		http:  &http.Client{Timeout: requestTimeout},
		log:   log,
		now:   time.Now,
	}
}

// discardLogger returns a slog.Logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// GetToken returns a valid access token, acquiring a new one when the cache
// is empty, expired, or forceRefresh is set. The fast path (cached and
// unexpired) performs no I/O. On any failure the cached token, stale or
// not, is left as it was.
func (a *Authenticator) GetToken(ctx context.Context, forceRefresh bool) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !forceRefresh && a.accessToken != "" && a.now().Before(a.expiresAt) {
		a.log.Debug("using cached access token", "expires_at", a.expiresAt)
		return a.accessToken, nil
	}

	a.log.Info("acquiring access token", "endpoint", a.creds.TokenEndpoint, "scope", a.creds.Scope)

	token, expiresAt, err := a.requestToken(ctx)
	if err != nil {
		a.log.Error("token acquisition failed", "error", err)
		return "", err
	}

	a.accessToken = token
	a.expiresAt = expiresAt
	a.log.Info("acquired access token", "expires_at", expiresAt)
	return token, nil
}

// requestToken performs one client-credentials exchange against the token
// endpoint. Must be called with a.mu held.
func (a *Authenticator) requestToken(ctx context.Context) (string, time.Time, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {a.creds.ClientID},
		"client_secret": {a.creds.ClientSecret},
		"scope":         {a.creds.Scope},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.creds.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return "", time.Time{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", time.Time{}, &TransportError{StatusCode: resp.StatusCode, Body: truncateBody(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", time.Time{}, &ParseError{Err: err}
	}

	if tr.AccessToken == "" {
		return "", time.Time{}, &AcquisitionError{Reason: "no access token received"}
	}

	lifetime := defaultLifetime
	if tr.ExpiresIn != nil {
		lifetime = time.Duration(*tr.ExpiresIn) * time.Second
	}
	return tr.AccessToken, a.now().Add(lifetime - expirySafetyMargin), nil
}

// IsValid reports whether a token is cached and not yet past its
// margin-adjusted expiry. No I/O is performed.
func (a *Authenticator) IsValid() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.validLocked()
}

func (a *Authenticator) validLocked() bool {
	return a.accessToken != "" && a.now().Before(a.expiresAt)
}

// TokenInfo returns a snapshot of the cached credential for display and
// diagnostics. It never mutates state.
func (a *Authenticator) TokenInfo() TokenInfo {
	a.mu.Lock()
	defer a.mu.Unlock()

	info := TokenInfo{
		HasToken: a.accessToken != "",
		Valid:    a.validLocked(),
	}
	if info.HasToken {
		info.ExpiresAt = a.expiresAt
		info.ExpiresIn = a.expiresAt.Sub(a.now())
	}
	return info
}

// Clear discards the cached token and its expiry together. Clearing an
// empty cache is a no-op.
func (a *Authenticator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accessToken = ""
	a.expiresAt = time.Time{}
	a.log.Info("cleared cached access token")
}

func truncateBody(data []byte) string {
	const limit = 2000
	if len(data) <= limit {
		return string(data)
	}
	// Back up so the cut never splits a multi-byte rune.
	cut := limit
	for cut > 0 && !utf8.RuneStart(data[cut]) {
		cut--
	}
	return string(data[:cut]) + "...(truncated)"
}
