package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Preferences is the per-guild bot configuration. ExtraAdminRoleIDs is
// the guild-configured allow-list of roles that may administer the bot
// in addition to owners and administrator-bit holders.
type Preferences struct {
	GuildID           int64    `json:"id,string"`
	Enabled           bool     `json:"enabled"`
	CommandPrefix     string   `json:"command_prefix"`
	Language          string   `json:"language"`
	Timezone          string   `json:"timezone"`
	EmbedColor        string   `json:"embed_color"`
	EmbedFooter       string   `json:"embed_footer"`
	EmbedFooterImages []string `json:"embed_footer_images"`
	ExtraAdminRoleIDs []int64  `json:"extra_admin_role_ids"`
}

// Defaults mirror the columns' database defaults for guilds without a
// stored row.
func Defaults(guildID int64) Preferences {
	return Preferences{
		GuildID:           guildID,
		Enabled:           true,
		CommandPrefix:     "!",
		Language:          "en-US",
		Timezone:          "UTC",
		EmbedColor:        "#7289DA",
		EmbedFooter:       "Project Plana, Powered by S.C.H.A.L.E.",
		EmbedFooterImages: []string{},
		ExtraAdminRoleIDs: []int64{},
	}
}

// Validate checks field constraints before a write.
func (p Preferences) Validate() error {
	if p.GuildID <= 0 {
		return errors.New("prefs: guild id must be positive")
	}
	if len(p.CommandPrefix) == 0 || len(p.CommandPrefix) > 10 {
		return errors.New("prefs: command prefix must be 1-10 characters")
	}
	if len(p.Language) > 10 || len(p.Timezone) > 50 {
		return errors.New("prefs: language or timezone too long")
	}
	if len(p.EmbedFooter) > 256 {
		return errors.New("prefs: embed footer too long")
	}
	if err := validateHexColor(p.EmbedColor); err != nil {
		return err
	}
	return nil
}

func validateHexColor(v string) error {
	if !strings.HasPrefix(v, "#") || len(v) != 7 {
		return fmt.Errorf("prefs: color must be a hex color like #7289DA")
	}
	if _, err := strconv.ParseUint(v[1:], 16, 32); err != nil {
		return fmt.Errorf("prefs: color must be a hex color like #7289DA")
	}
	return nil
}

// Store is the guild-preferences collaborator consumed by the auth
// gate and the dashboard handlers.
type Store interface {
	// Get returns nil when the guild has no stored preferences.
	Get(ctx context.Context, guildID int64) (*Preferences, error)
	Upsert(ctx context.Context, p Preferences) error

	// ExtraAdminRoles is the read-only view the auth gate depends on.
	ExtraAdminRoles(ctx context.Context, guildID int64) ([]int64, error)

	// BotStatus reports, per guild, whether the bot is installed and
	// enabled. Guilds without a row map to false.
	BotStatus(ctx context.Context, guildIDs []int64) (map[int64]bool, error)
}
