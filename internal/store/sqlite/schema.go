package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS outfits (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		name            TEXT NOT NULL,
		name_normalized TEXT NOT NULL,
		favorite        INTEGER NOT NULL DEFAULT 0,
		CONSTRAINT uq_outfit_name UNIQUE (name_normalized)
	);

	CREATE TABLE IF NOT EXISTS outfit_items (
		outfit_id INTEGER NOT NULL REFERENCES outfits(id) ON DELETE CASCADE,
		item      TEXT NOT NULL,
		CONSTRAINT uq_outfit_item UNIQUE (outfit_id, item)
	);

	CREATE TABLE IF NOT EXISTS characters (
		character TEXT PRIMARY KEY,
		current   TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS situations (
		character TEXT NOT NULL REFERENCES characters(character) ON DELETE CASCADE,
		category  INTEGER NOT NULL,
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

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	statements := splitStatements(ddl)
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}
