package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"wardrobe/internal/store"
)

func (c *Client) SaveState(ctx context.Context, state *store.State) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", store.ErrSaveFailure, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE situations, characters, outfit_items, outfits, settings`); err != nil {
		return fmt.Errorf("%w: clearing state: %w", store.ErrSaveFailure, err)
	}

	settings := map[string]string{
		"enabled":            strconv.FormatBool(state.Enabled),
		"player_mode":        strconv.Itoa(state.PlayerMode),
		"npc_mode":           strconv.Itoa(state.NPCMode),
		"quick_slot_enabled": strconv.FormatBool(state.QuickSlotEnabled),
		"climate_priority":   strconv.FormatBool(state.ClimatePriority),
	}
	batch := &pgx.Batch{}
	for key, value := range settings {
		batch.Queue(`INSERT INTO settings (key, value) VALUES ($1, $2)`, key, value)
	}
	for _, character := range state.Characters() {
		rec := state.Assignments[character]
		batch.Queue(`INSERT INTO characters (character, current) VALUES ($1, $2)`, character, rec.Current)
		for category, outfit := range rec.Situations {
			batch.Queue(`INSERT INTO situations (character, category, outfit) VALUES ($1, $2, $3)`,
				character, int64(category), outfit)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%w: saving settings and assignments: %w", store.ErrSaveFailure, err)
	}

	for _, outfit := range state.Outfits {
		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO outfits (name, name_normalized, favorite) VALUES ($1, $2, $3) RETURNING id`,
			outfit.Name, strings.ToLower(outfit.Name), outfit.Favorite).Scan(&id)
		if err != nil {
			return fmt.Errorf("%w: saving outfit %q: %w", store.ErrSaveFailure, outfit.Name, err)
		}
		if len(outfit.Items) == 0 {
			continue
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO outfit_items (outfit_id, item) SELECT $1, unnest($2::text[]) ON CONFLICT DO NOTHING`,
			id, outfit.Items); err != nil {
			return fmt.Errorf("%w: saving items of %q: %w", store.ErrSaveFailure, outfit.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: committing state: %w", store.ErrSaveFailure, err)
	}
	return nil
}

func (c *Client) LoadState(ctx context.Context) (*store.State, error) {
	state := store.NewState()

	rows, err := c.pool.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("%w: loading settings: %w", store.ErrLoadFailure, err)
	}
	settings := make(map[string]string)
	var key, value string
	_, err = pgx.ForEachRow(rows, []any{&key, &value}, func() error {
		settings[key] = value
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reading settings: %w", store.ErrLoadFailure, err)
	}
	if err := applySettings(state, settings); err != nil {
		return nil, err
	}

	rows, err = c.pool.Query(ctx, `
	SELECT o.name, o.favorite, COALESCE(array_agg(oi.item ORDER BY oi.item) FILTER (WHERE oi.item IS NOT NULL), '{}')
	FROM outfits o
	LEFT JOIN outfit_items oi ON oi.outfit_id = o.id
	GROUP BY o.id, o.name, o.favorite, o.name_normalized
	ORDER BY o.name_normalized ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: loading outfits: %w", store.ErrLoadFailure, err)
	}
	var (
		name     string
		favorite bool
		items    []string
	)
	_, err = pgx.ForEachRow(rows, []any{&name, &favorite, &items}, func() error {
		state.Outfits = append(state.Outfits, store.OutfitRecord{
			Name:     name,
			Favorite: favorite,
			Items:    append([]string{}, items...),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reading outfits: %w", store.ErrLoadFailure, err)
	}

	rows, err = c.pool.Query(ctx, `
	SELECT ch.character, ch.current, s.category, s.outfit
	FROM characters ch
	LEFT JOIN situations s ON s.character = ch.character
	ORDER BY ch.character ASC, s.category ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: loading assignments: %w", store.ErrLoadFailure, err)
	}
	var (
		character, current string
		category           *int64
		outfit             *string
	)
	_, err = pgx.ForEachRow(rows, []any{&character, &current, &category, &outfit}, func() error {
		rec, ok := state.Assignments[character]
		if !ok {
			rec = store.AssignmentRecord{Current: current, Situations: make(map[uint32]string)}
		}
		if category != nil && outfit != nil {
			rec.Situations[uint32(*category)] = *outfit
		}
		state.Assignments[character] = rec
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reading assignments: %w", store.ErrLoadFailure, err)
	}
	return state, nil
}

func applySettings(state *store.State, settings map[string]string) error {
	var err error
	parseBool := func(key string, dst *bool) {
		if raw, ok := settings[key]; ok && err == nil {
			*dst, err = strconv.ParseBool(raw)
		}
	}
	parseInt := func(key string, dst *int) {
		if raw, ok := settings[key]; ok && err == nil {
			*dst, err = strconv.Atoi(raw)
		}
	}
	parseBool("enabled", &state.Enabled)
	parseBool("quick_slot_enabled", &state.QuickSlotEnabled)
	parseBool("climate_priority", &state.ClimatePriority)
	parseInt("player_mode", &state.PlayerMode)
	parseInt("npc_mode", &state.NPCMode)
	if err != nil {
		return fmt.Errorf("%w: parsing settings: %w", store.ErrLoadFailure, err)
	}
	return nil
}

func (c *Client) SaveCache(ctx context.Context, cache *store.CacheState) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", store.ErrSaveFailure, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE stash_items, scenes`); err != nil {
		return fmt.Errorf("%w: clearing cache: %w", store.ErrSaveFailure, err)
	}
	batch := &pgx.Batch{}
	for character, items := range cache.Stashes {
		for _, it := range items {
			batch.Queue(`INSERT INTO stash_items (character, item) VALUES ($1, $2) ON CONFLICT DO NOTHING`, character, it)
		}
	}
	for character, inScene := range cache.Scenes {
		if inScene {
			batch.Queue(`INSERT INTO scenes (character) VALUES ($1)`, character)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%w: saving cache: %w", store.ErrSaveFailure, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: committing cache: %w", store.ErrSaveFailure, err)
	}
	return nil
}

func (c *Client) LoadCache(ctx context.Context) (*store.CacheState, error) {
	cache := store.NewCacheState()

	rows, err := c.pool.Query(ctx, `SELECT character, item FROM stash_items ORDER BY character, item`)
	if err != nil {
		return nil, fmt.Errorf("%w: loading stashes: %w", store.ErrLoadFailure, err)
	}
	var character, it string
	_, err = pgx.ForEachRow(rows, []any{&character, &it}, func() error {
		cache.Stashes[character] = append(cache.Stashes[character], it)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reading stashes: %w", store.ErrLoadFailure, err)
	}

	rows, err = c.pool.Query(ctx, `SELECT character FROM scenes`)
	if err != nil {
		return nil, fmt.Errorf("%w: loading scenes: %w", store.ErrLoadFailure, err)
	}
	_, err = pgx.ForEachRow(rows, []any{&character}, func() error {
		cache.Scenes[character] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reading scenes: %w", store.ErrLoadFailure, err)
	}
	return cache, nil
}
