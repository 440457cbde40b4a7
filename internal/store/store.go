package store

import (
	"context"
	"errors"
)

var (
	ErrSaveFailure = errors.New("saving outfit state failed")
	ErrLoadFailure = errors.New("loading outfit state failed")
)

// Store persists outfit state between sessions. LoadState and LoadCache
// return an empty value when nothing has been saved yet.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	LoadState(ctx context.Context) (*State, error)
	SaveState(ctx context.Context, state *State) error
	LoadCache(ctx context.Context) (*CacheState, error)
	SaveCache(ctx context.Context, cache *CacheState) error
}
