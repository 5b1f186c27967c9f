package db

import (
	"context"
	"database/sql"
)

const preferencesMigration = `
CREATE TABLE IF NOT EXISTS server_preferences (
    id bigint PRIMARY KEY,
    enabled boolean NOT NULL DEFAULT true,
    command_prefix varchar(10) NOT NULL DEFAULT '!',
    language varchar(10) NOT NULL DEFAULT 'en-US',
    timezone varchar(50) NOT NULL DEFAULT 'UTC',
    embed_color varchar(7) NOT NULL DEFAULT '#7289DA',
    embed_footer varchar(256) NOT NULL DEFAULT 'Project Plana, Powered by S.C.H.A.L.E.',
    embed_footer_images text[] NOT NULL DEFAULT '{}',
    extra_admin_role_ids bigint[] NOT NULL DEFAULT '{}',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);
`

func RunPreferencesMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, preferencesMigration)
	return err
}
