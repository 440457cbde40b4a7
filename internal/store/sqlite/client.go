package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"wardrobe/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.Store = (*Client)(nil)

const openTimeout = 30 * time.Second

var filePragmas = []string{
	"PRAGMA busy_timeout = 30000;",
	"PRAGMA journal_mode = WAL;",
	"PRAGMA foreign_keys = ON;",
}

// Client persists wardrobe state in a single sqlite file.
type Client struct {
	db *sql.DB
}

func New(ctx context.Context, dsn string) (*Client, error) {
	loc, err := parseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing sqlite DSN: %w", err)
	}

	db, err := sql.Open("sqlite", loc.driverDSN())
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	pragmas := filePragmas
	if loc.memory {
		// each pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
		pragmas = []string{"PRAGMA foreign_keys = ON;"}
	}

	ctx, cancel := context.WithTimeout(ctx, openTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite: %w", err)
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	return &Client{db: db}, nil
}

func (c *Client) Close(ctx context.Context) error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("closing sqlite database: %w", err)
	}
	return nil
}
