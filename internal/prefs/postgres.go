package prefs

import (
	"context"
	"database/sql"

	"github.com/Independent-Federal-Investigation-Club/plana-api/internal/db"

	"github.com/lib/pq"
)

// PostgresStore is the canonical preferences store.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, guildID int64) (*Preferences, error) {
	var p Preferences
	var footerImages pq.StringArray
	var extraRoles pq.Int64Array

	err := s.db.QueryRowContext(ctx, `
		SELECT id, enabled, command_prefix, language, timezone,
		       embed_color, embed_footer, embed_footer_images,
		       extra_admin_role_ids
		FROM server_preferences
		WHERE id = $1
	`, guildID).Scan(
		&p.GuildID,
		&p.Enabled,
		&p.CommandPrefix,
		&p.Language,
		&p.Timezone,
		&p.EmbedColor,
		&p.EmbedFooter,
		&footerImages,
		&extraRoles,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.EmbedFooterImages = footerImages
	p.ExtraAdminRoleIDs = extraRoles
	return &p, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO server_preferences (
			id, enabled, command_prefix, language, timezone,
			embed_color, embed_footer, embed_footer_images,
			extra_admin_role_ids, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			command_prefix = EXCLUDED.command_prefix,
			language = EXCLUDED.language,
			timezone = EXCLUDED.timezone,
			embed_color = EXCLUDED.embed_color,
			embed_footer = EXCLUDED.embed_footer,
			embed_footer_images = EXCLUDED.embed_footer_images,
			extra_admin_role_ids = EXCLUDED.extra_admin_role_ids,
			updated_at = NOW()
	`,
		p.GuildID,
		p.Enabled,
		p.CommandPrefix,
		p.Language,
		p.Timezone,
		p.EmbedColor,
		p.EmbedFooter,
		pq.Array(p.EmbedFooterImages),
		pq.Array(p.ExtraAdminRoleIDs),
	)
	return err
}

func (s *PostgresStore) ExtraAdminRoles(ctx context.Context, guildID int64) ([]int64, error) {
	var roles pq.Int64Array

	err := s.db.QueryRowContext(ctx, `
		SELECT extra_admin_role_ids
		FROM server_preferences
		WHERE id = $1
	`, guildID).Scan(&roles)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return roles, nil
}

func (s *PostgresStore) BotStatus(ctx context.Context, guildIDs []int64) (map[int64]bool, error) {
	status := make(map[int64]bool, len(guildIDs))
	if len(guildIDs) == 0 {
		return status, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, enabled
		FROM server_preferences
		WHERE id = ANY($1)
	`, pq.Array(guildIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var enabled bool
		if err := rows.Scan(&id, &enabled); err != nil {
			return nil, err
		}
		status[id] = enabled
	}

	return status, rows.Err()
}
