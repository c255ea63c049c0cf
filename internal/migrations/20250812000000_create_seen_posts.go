package migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upCreateSeenPosts, downCreateSeenPosts)
}

func upCreateSeenPosts(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE seen_posts (
		id SERIAL PRIMARY KEY,
		post_id VARCHAR NOT NULL UNIQUE,
		username VARCHAR NOT NULL,
		snapshot_file VARCHAR NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX seen_posts_created_at_idx ON seen_posts (created_at);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downCreateSeenPosts(tx *sql.Tx) error {
	_, err := tx.Exec(`
	DROP TABLE seen_posts;
	`)
	if err != nil {
		return err
	}
	return nil
}
