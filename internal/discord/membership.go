package discord

import (
	"context"
	"time"
)

// Membership is the requester's standing in one guild: the inputs the
// permission resolver needs, plus when they were fetched.
type Membership struct {
	GuildID     string    `json:"guild_id"`
	Owner       bool      `json:"owner"`
	Permissions uint64    `json:"permissions"`
	RoleIDs     []int64   `json:"role_ids"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// MembershipSource resolves a user's membership in a guild. A nil
// result with nil error means the user is not a member.
type MembershipSource interface {
	Membership(ctx context.Context, accessToken, userID, guildID string) (*Membership, error)
}

// Membership looks up the caller's standing in guildID: permission
// bitmask and owner flag from the guild list, role ids via the bot
// token when configured.
func (c *Client) Membership(ctx context.Context, accessToken, userID, guildID string) (*Membership, error) {
	guilds, err := c.FetchGuilds(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	var target *Guild
	for i := range guilds {
		if guilds[i].ID == guildID {
			target = &guilds[i]
			break
		}
	}
	if target == nil {
		return nil, nil
	}

	roles, err := c.FetchMemberRoles(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}

	return &Membership{
		GuildID:     guildID,
		Owner:       target.Owner,
		Permissions: uint64(target.Permissions),
		RoleIDs:     roles,
		FetchedAt:   time.Now(),
	}, nil
}
