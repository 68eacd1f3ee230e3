// Package auth implements the OAuth2 device-code grant against the
// Microsoft identity platform. The flow is a small state machine:
// Initiated -> Polling -> {Authenticated, Expired, Failed}, with the
// terminal state surfaced as a typed result so callers never have to
// inspect process state.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Stage identifies which part of the device-code flow a failure belongs to.
type Stage string

const (
	StageInitiate Stage = "initiate"
	StagePoll     Stage = "poll"
	StageExpired  Stage = "expired"
)

// Error is a terminal device-code failure. Code carries the provider
// error string for polling failures (e.g. "access_denied").
type Error struct {
	Stage Stage
	Code  string
	Err   error
}

func (e *Error) Error() string {
	switch e.Stage {
	case StageInitiate:
		return fmt.Sprintf("auth: device flow initiation failed: %v", e.Err)
	case StageExpired:
		return "auth: device code expired before authorization completed"
	default:
		if e.Code != "" {
			return fmt.Sprintf("auth: token polling failed: %s", e.Code)
		}
		return fmt.Sprintf("auth: token polling failed: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

const (
	// DefaultAuthority is the host the per-tenant authority URL is built on.
	DefaultAuthority = "https://login.microsoftonline.com"

	// DefaultScope grants read access to the user's To Do data.
	DefaultScope = "https://graph.microsoft.com/Tasks.Read"

	// slowDownStep is the fixed amount added to the poll interval each time
	// the provider answers slow_down (RFC 8628 section 3.5).
	slowDownStep = 5 * time.Second

	defaultInterval = 5 * time.Second
)

// PromptFunc presents the verification URI and user code to the operator.
// It is always invoked before polling begins.
type PromptFunc func(verificationURI, userCode string)

// Options configures a device-code acquisition.
type Options struct {
	ClientID string
	Tenant   string // defaults to "common"
	Scopes   []string

	// Authority overrides the token authority base URL, mainly for tests.
	// When empty it is derived from DefaultAuthority and Tenant.
	Authority string

	Prompt PromptFunc
}

func (o Options) authority() string {
	if o.Authority != "" {
		return strings.TrimRight(o.Authority, "/")
	}
	tenant := o.Tenant
	if tenant == "" {
		tenant = "common"
	}
	return fmt.Sprintf("%s/%s/oauth2/v2.0", DefaultAuthority, tenant)
}

func (o Options) config() *oauth2.Config {
	scopes := o.Scopes
	if len(scopes) == 0 {
		scopes = []string{DefaultScope}
	}
	base := o.authority()
	return &oauth2.Config{
		ClientID: o.ClientID,
		Scopes:   scopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: base + "/devicecode",
			TokenURL:      base + "/token",
		},
	}
}

// Acquire runs the device-code grant to completion and returns the bearer
// token. The token is held in memory only; a single run is assumed short
// enough not to need refresh.
func Acquire(ctx context.Context, opts Options) (*oauth2.Token, error) {
	prompt := opts.Prompt
	if prompt == nil {
		prompt = func(uri, code string) {
			fmt.Fprintf(os.Stderr, "To authenticate, open %s and enter the code %s\n", uri, code)
		}
	}
	a := &acquirer{
		cfg:    opts.config(),
		http:   &http.Client{Timeout: 30 * time.Second},
		prompt: prompt,
		sleep:  sleepCtx,
		now:    time.Now,
	}
	return a.acquire(ctx)
}

type acquirer struct {
	cfg    *oauth2.Config
	http   *http.Client
	prompt PromptFunc
	sleep  func(context.Context, time.Duration) error
	now    func() time.Time
}

func (a *acquirer) acquire(ctx context.Context) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.http)

	da, err := a.cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, &Error{Stage: StageInitiate, Err: err}
	}

	a.prompt(da.VerificationURI, da.UserCode)

	interval := time.Duration(da.Interval) * time.Second
	if interval <= 0 {
		interval = defaultInterval
	}
	deadline := da.Expiry

	for {
		if err := a.sleep(ctx, interval); err != nil {
			return nil, &Error{Stage: StagePoll, Err: err}
		}
		if !deadline.IsZero() && a.now().After(deadline) {
			return nil, &Error{Stage: StageExpired}
		}

		tok, code, err := a.redeem(ctx, da.DeviceCode)
		switch {
		case err != nil:
			return nil, &Error{Stage: StagePoll, Err: err}
		case tok != nil:
			return tok, nil
		case code == "authorization_pending":
			// keep polling at the current interval
		case code == "slow_down":
			interval += slowDownStep
		default:
			// Unexpected provider errors must not be looped on silently.
			return nil, &Error{Stage: StagePoll, Code: code}
		}
	}
}

// tokenResponse covers both the success and error shapes of the token
// endpoint. The device grant reports pending/slow_down via the error
// field on a 400 response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	ErrorCode   string `json:"error"`
}

func (a *acquirer) redeem(ctx context.Context, deviceCode string) (*oauth2.Token, string, error) {
	form := url.Values{
		"grant_type":  {"urn:ietf:params:oauth:grant-type:device_code"},
		"client_id":   {a.cfg.ClientID},
		"device_code": {deviceCode},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, "", fmt.Errorf("decode token response (status %d): %w", resp.StatusCode, err)
	}

	if tr.AccessToken != "" {
		tok := &oauth2.Token{
			AccessToken: tr.AccessToken,
			TokenType:   tr.TokenType,
		}
		if tr.ExpiresIn > 0 {
			tok.Expiry = a.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
		}
		return tok, "", nil
	}
	if tr.ErrorCode != "" {
		return nil, tr.ErrorCode, nil
	}
	return nil, "", fmt.Errorf("token endpoint returned status %d without a token or error code", resp.StatusCode)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
