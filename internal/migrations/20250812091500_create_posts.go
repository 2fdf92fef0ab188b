package migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upCreatePosts, downCreatePosts)
}

func upCreatePosts(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE posts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id VARCHAR NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		status VARCHAR NOT NULL DEFAULT 'draft',
		topics TEXT[] NOT NULL DEFAULT '{}',
		scheduled_at TIMESTAMPTZ,
		posted_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX posts_scheduled_at_idx ON posts (scheduled_at) WHERE status = 'scheduled';
	CREATE INDEX posts_user_id_idx ON posts (user_id);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downCreatePosts(tx *sql.Tx) error {
	_, err := tx.Exec(`
	DROP TABLE posts;
	`)
	if err != nil {
		return err
	}
	return nil
}
