package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"wardrobe/internal/store"
)

const (
	settingEnabled         = "enabled"
	settingPlayerMode      = "player_mode"
	settingNPCMode         = "npc_mode"
	settingQuickSlot       = "quick_slot_enabled"
	settingClimatePriority = "climate_priority"
)

func (c *Client) SaveState(ctx context.Context, state *store.State) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", store.ErrSaveFailure, err)
	}
	defer tx.Rollback()

	for _, table := range []string{"situations", "characters", "outfit_items", "outfits", "settings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("%w: clearing %s: %w", store.ErrSaveFailure, table, err)
		}
	}

	settings := map[string]string{
		settingEnabled:         strconv.FormatBool(state.Enabled),
		settingPlayerMode:      strconv.Itoa(state.PlayerMode),
		settingNPCMode:         strconv.Itoa(state.NPCMode),
		settingQuickSlot:       strconv.FormatBool(state.QuickSlotEnabled),
		settingClimatePriority: strconv.FormatBool(state.ClimatePriority),
	}
	for key, value := range settings {
		if _, err := tx.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("%w: saving setting %s: %w", store.ErrSaveFailure, key, err)
		}
	}

	for _, outfit := range state.Outfits {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO outfits (name, name_normalized, favorite) VALUES (?, ?, ?)`,
			outfit.Name, strings.ToLower(outfit.Name), boolToInt(outfit.Favorite))
		if err != nil {
			return fmt.Errorf("%w: saving outfit %q: %w", store.ErrSaveFailure, outfit.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("%w: reading outfit id: %w", store.ErrSaveFailure, err)
		}
		for _, it := range outfit.Items {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO outfit_items (outfit_id, item) VALUES (?, ?)`, id, it); err != nil {
				return fmt.Errorf("%w: saving item %s of %q: %w", store.ErrSaveFailure, it, outfit.Name, err)
			}
		}
	}

	for _, character := range state.Characters() {
		rec := state.Assignments[character]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO characters (character, current) VALUES (?, ?)`, character, rec.Current); err != nil {
			return fmt.Errorf("%w: saving character %s: %w", store.ErrSaveFailure, character, err)
		}
		for category, outfit := range rec.Situations {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO situations (character, category, outfit) VALUES (?, ?, ?)`,
				character, category, outfit); err != nil {
				return fmt.Errorf("%w: saving situation %d of %s: %w", store.ErrSaveFailure, category, character, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing state: %w", store.ErrSaveFailure, err)
	}
	return nil
}

func (c *Client) LoadState(ctx context.Context) (*store.State, error) {
	state := store.NewState()

	settings, err := c.loadSettings(ctx)
	if err != nil {
		return nil, err
	}
	if err := applySettings(state, settings); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `
	SELECT o.name, o.favorite, oi.item
	FROM outfits o
	LEFT JOIN outfit_items oi ON oi.outfit_id = o.id
	ORDER BY o.name_normalized ASC, oi.item ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: loading outfits: %w", store.ErrLoadFailure, err)
	}
	defer rows.Close()

	index := make(map[string]int)
	for rows.Next() {
		var (
			name     string
			favorite int
			it       sql.NullString
		)
		if err := rows.Scan(&name, &favorite, &it); err != nil {
			return nil, fmt.Errorf("%w: scanning outfit: %w", store.ErrLoadFailure, err)
		}
		i, ok := index[name]
		if !ok {
			i = len(state.Outfits)
			index[name] = i
			state.Outfits = append(state.Outfits, store.OutfitRecord{Name: name, Items: []string{}, Favorite: favorite != 0})
		}
		if it.Valid {
			state.Outfits[i].Items = append(state.Outfits[i].Items, it.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating outfits: %w", store.ErrLoadFailure, err)
	}

	if err := c.loadAssignments(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (c *Client) loadSettings(ctx context.Context) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("%w: loading settings: %w", store.ErrLoadFailure, err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("%w: scanning setting: %w", store.ErrLoadFailure, err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating settings: %w", store.ErrLoadFailure, err)
	}
	return settings, nil
}

func applySettings(state *store.State, settings map[string]string) error {
	bools := map[string]*bool{
		settingEnabled:         &state.Enabled,
		settingQuickSlot:       &state.QuickSlotEnabled,
		settingClimatePriority: &state.ClimatePriority,
	}
	for key, dst := range bools {
		raw, ok := settings[key]
		if !ok {
			continue
		}
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: setting %s: %w", store.ErrLoadFailure, key, err)
		}
		*dst = value
	}

	ints := map[string]*int{
		settingPlayerMode: &state.PlayerMode,
		settingNPCMode:    &state.NPCMode,
	}
	for key, dst := range ints {
		raw, ok := settings[key]
		if !ok {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: setting %s: %w", store.ErrLoadFailure, key, err)
		}
		*dst = value
	}
	return nil
}

func (c *Client) loadAssignments(ctx context.Context, state *store.State) error {
	rows, err := c.db.QueryContext(ctx, `
	SELECT ch.character, ch.current, s.category, s.outfit
	FROM characters ch
	LEFT JOIN situations s ON s.character = ch.character
	ORDER BY ch.character ASC, s.category ASC
	`)
	if err != nil {
		return fmt.Errorf("%w: loading assignments: %w", store.ErrLoadFailure, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			character, current string
			category           sql.NullInt64
			outfit             sql.NullString
		)
		if err := rows.Scan(&character, &current, &category, &outfit); err != nil {
			return fmt.Errorf("%w: scanning assignment: %w", store.ErrLoadFailure, err)
		}
		rec, ok := state.Assignments[character]
		if !ok {
			rec = store.AssignmentRecord{Current: current, Situations: make(map[uint32]string)}
		}
		if category.Valid && outfit.Valid {
			rec.Situations[uint32(category.Int64)] = outfit.String
		}
		state.Assignments[character] = rec
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: iterating assignments: %w", store.ErrLoadFailure, err)
	}
	return nil
}

func (c *Client) SaveCache(ctx context.Context, cache *store.CacheState) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", store.ErrSaveFailure, err)
	}
	defer tx.Rollback()

	for _, table := range []string{"stash_items", "scenes"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("%w: clearing %s: %w", store.ErrSaveFailure, table, err)
		}
	}
	for character, items := range cache.Stashes {
		for _, it := range items {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO stash_items (character, item) VALUES (?, ?)`, character, it); err != nil {
				return fmt.Errorf("%w: saving stash of %s: %w", store.ErrSaveFailure, character, err)
			}
		}
	}
	for character, inScene := range cache.Scenes {
		if !inScene {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO scenes (character) VALUES (?)`, character); err != nil {
			return fmt.Errorf("%w: saving scene of %s: %w", store.ErrSaveFailure, character, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing cache: %w", store.ErrSaveFailure, err)
	}
	return nil
}

func (c *Client) LoadCache(ctx context.Context) (*store.CacheState, error) {
	cache := store.NewCacheState()

	rows, err := c.db.QueryContext(ctx, `SELECT character, item FROM stash_items ORDER BY character, item`)
	if err != nil {
		return nil, fmt.Errorf("%w: loading stashes: %w", store.ErrLoadFailure, err)
	}
	defer rows.Close()
	for rows.Next() {
		var character, it string
		if err := rows.Scan(&character, &it); err != nil {
			return nil, fmt.Errorf("%w: scanning stash: %w", store.ErrLoadFailure, err)
		}
		cache.Stashes[character] = append(cache.Stashes[character], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating stashes: %w", store.ErrLoadFailure, err)
	}

	sceneRows, err := c.db.QueryContext(ctx, `SELECT character FROM scenes`)
	if err != nil {
		return nil, fmt.Errorf("%w: loading scenes: %w", store.ErrLoadFailure, err)
	}
	defer sceneRows.Close()
	for sceneRows.Next() {
		var character string
		if err := sceneRows.Scan(&character); err != nil {
			return nil, fmt.Errorf("%w: scanning scene: %w", store.ErrLoadFailure, err)
		}
		cache.Scenes[character] = true
	}
	if err := sceneRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating scenes: %w", store.ErrLoadFailure, err)
	}
	return cache, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
