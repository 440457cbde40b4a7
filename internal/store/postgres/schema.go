package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// Executed as one multi-statement call, which PostgreSQL runs inside an
	// implicit transaction.
	ddl := `
CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS outfits (
    id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    name            TEXT NOT NULL,
    name_normalized TEXT NOT NULL,
    favorite        BOOLEAN NOT NULL DEFAULT FALSE,
    CONSTRAINT uq_outfit_name UNIQUE (name_normalized)
);

CREATE TABLE IF NOT EXISTS outfit_items (
    outfit_id BIGINT NOT NULL REFERENCES outfits(id) ON DELETE CASCADE,
    item      TEXT NOT NULL,
    CONSTRAINT uq_outfit_item UNIQUE (outfit_id, item)
);

CREATE TABLE IF NOT EXISTS characters (
    character TEXT PRIMARY KEY,
    current   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS situations (
    character TEXT NOT NULL REFERENCES characters(character) ON DELETE CASCADE,
    category  BIGINT NOT NULL,
    outfit    TEXT NOT NULL,
    PRIMARY KEY (character, category)
);

CREATE TABLE IF NOT EXISTS stash_items (
    character TEXT NOT NULL,
    item      TEXT NOT NULL,
    PRIMARY KEY (character, item)
);

CREATE TABLE IF NOT EXISTS scenes (
    character TEXT PRIMARY KEY
);

CREATE INDEX IF NOT EXISTS idx_outfit_items_outfit ON outfit_items (outfit_id);
CREATE INDEX IF NOT EXISTS idx_situations_character ON situations (character);
`
	_, err := c.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
