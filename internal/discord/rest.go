package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/auth"
)

// Permissions is a Discord permission bitmask. The API serializes it
// as a decimal string; older payloads used a bare number.
type Permissions uint64

func (p *Permissions) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("discord: invalid permissions value: %w", err)
	}
	*p = Permissions(v)
	return nil
}

func (p Permissions) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatUint(uint64(p), 10))), nil
}

// Guild is one entry of the caller's guild membership list.
type Guild struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Icon        string      `json:"icon,omitempty"`
	Banner      string      `json:"banner,omitempty"`
	Owner       bool        `json:"owner"`
	Permissions Permissions `json:"permissions"`
}

// FetchIdentity returns the identity behind a Discord user access
// token. One round trip to /users/@me.
func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (*auth.Identity, error) {
	var payload struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Avatar   string `json:"avatar"`
	}

	if err := c.get(ctx, "/users/@me", "Bearer "+accessToken, &payload); err != nil {
		return nil, err
	}
	if payload.ID == "" || payload.Username == "" {
		return nil, fmt.Errorf("%w: identity payload missing required fields", auth.ErrUpstreamUnavailable)
	}

	return &auth.Identity{
		UserID:   payload.ID,
		Username: payload.Username,
		Avatar:   payload.Avatar,
	}, nil
}

// FetchGuilds returns the caller's guild memberships in upstream
// order. Discord bounds the list per user, so no pagination.
func (c *Client) FetchGuilds(ctx context.Context, accessToken string) ([]Guild, error) {
	var guilds []Guild
	if err := c.get(ctx, "/users/@me/guilds", "Bearer "+accessToken, &guilds); err != nil {
		return nil, err
	}
	return guilds, nil
}

// FetchMemberRoles returns the role ids a user holds in a guild,
// looked up with the bot token. Without a configured bot token, or
// when the bot cannot see the member, the role set is empty.
func (c *Client) FetchMemberRoles(ctx context.Context, guildID, userID string) ([]int64, error) {
	if c.botToken == "" {
		return nil, nil
	}

	var payload struct {
		Roles []string `json:"roles"`
	}

	path := fmt.Sprintf("/guilds/%s/members/%s", guildID, userID)
	err := c.get(ctx, path, "Bot "+c.botToken, &payload)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidGrant) {
			// Bot lacks access to the guild or member; treat as no roles.
			return nil, nil
		}
		return nil, err
	}

	roles := make([]int64, 0, len(payload.Roles))
	for _, raw := range payload.Roles {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		roles = append(roles, id)
	}
	return roles, nil
}

func (c *Client) get(ctx context.Context, path, authorization string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path, nil)
	if err != nil {
		return fmt.Errorf("discord: build request: %w", err)
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", auth.ErrUpstreamUnavailable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mapStatus(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", auth.ErrUpstreamUnavailable, path, err)
	}
	return nil
}
