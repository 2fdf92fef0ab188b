package migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upCreatePreferences, downCreatePreferences)
}

func upCreatePreferences(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE preferences (
		user_id VARCHAR PRIMARY KEY,
		timezone VARCHAR NOT NULL DEFAULT '',
		posting_time VARCHAR NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downCreatePreferences(tx *sql.Tx) error {
	_, err := tx.Exec(`
	DROP TABLE preferences;
	`)
	if err != nil {
		return err
	}
	return nil
}
