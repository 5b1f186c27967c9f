package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth"

	"golang.org/x/oauth2"
)

// discordEndpoint mirrors golang.org/x/oauth2/endpoints.Discord, which
// is unavailable in oauth2 versions compatible with the Go 1.21 toolchain.
var discordEndpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

const (
	defaultAPIBase = "https://discord.com/api/v10"
	defaultTimeout = 5 * time.Second
)

// Scopes requested during the authorization handshake.
var Scopes = []string{"identify", "guilds"}

// Config holds Discord application credentials. BaseURL overrides the
// API origin and is intended for tests.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// BotToken authorizes member-role lookups. Optional; without it
	// extra-admin-role resolution sees an empty requester role set.
	BotToken string

	BaseURL string
	Timeout time.Duration
}

// Client talks to Discord's OAuth2 and REST endpoints. Every call is
// a single round trip with a bounded deadline; retry policy belongs to
// the caller.
type Client struct {
	oauth    *oauth2.Config
	http     *http.Client
	apiBase  string
	botToken string
	clientID string
}

func New(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RedirectURL == "" {
		return nil, errors.New("discord: config missing required fields")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	apiBase := defaultAPIBase
	endpoint := discordEndpoint
	if cfg.BaseURL != "" {
		apiBase = cfg.BaseURL
		endpoint = oauth2.Endpoint{
			AuthURL:  cfg.BaseURL + "/oauth2/authorize",
			TokenURL: cfg.BaseURL + "/oauth2/token",
		}
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     endpoint,
		Scopes:       Scopes,
	}

	return &Client{
		oauth:    oauthCfg,
		http:     &http.Client{Timeout: timeout},
		apiBase:  apiBase,
		botToken: cfg.BotToken,
		clientID: cfg.ClientID,
	}, nil
}

// AuthCodeURL builds the authorization URL carrying the state nonce.
// No network call is made.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// BotInviteURL builds the URL that invites the bot into a guild.
func (c *Client) BotInviteURL() string {
	params := url.Values{
		"client_id":   {c.clientID},
		"permissions": {strconv.FormatUint(0x8, 10)},
		"scope":       {"bot"},
	}
	return "https://discord.com/oauth2/authorize?" + params.Encode()
}

// TokenGrant is the result of a successful code exchange.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
}

// ExchangeCode swaps an authorization code for Discord credentials.
// Failures map onto the auth taxonomy: auth.ErrInvalidGrant for 4xx
// token-endpoint rejections, auth.RateLimitedError on 429, and
// auth.ErrUpstreamUnavailable for network errors and 5xx.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenGrant, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)

	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, mapStatus(retrieveErr.Response)
		}
		return nil, fmt.Errorf("%w: token exchange: %v", auth.ErrUpstreamUnavailable, err)
	}

	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", auth.ErrInvalidGrant)
	}

	return &TokenGrant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}, nil
}

// mapStatus translates an upstream HTTP response into the auth
// taxonomy. Bodies are intentionally dropped so no upstream detail
// leaks into client-visible errors.
func mapStatus(resp *http.Response) error {
	if resp == nil {
		return auth.ErrUpstreamUnavailable
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &auth.RateLimitedError{RetryAfter: retryAfter(resp)}
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", auth.ErrUpstreamUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("%w: status %d", auth.ErrInvalidGrant, resp.StatusCode)
	}
}

func retryAfter(resp *http.Response) time.Duration {
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return time.Second
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || secs <= 0 {
		return time.Second
	}
	return time.Duration(secs * float64(time.Second))
}
