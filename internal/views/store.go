package views

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/marcogenualdo/godnsweb/internal/cache"
	"github.com/marcogenualdo/godnsweb/internal/collection"
)

// Store keeps the UI state and the last loaded rows of every list view of
// one browser session.
type Store struct {
	cache     cache.Cache
	sessionID string
	ttl       time.Duration
}

func NewStore(c cache.Cache, sessionID string, ttl time.Duration) *Store {
	return &Store{cache: c, sessionID: sessionID, ttl: ttl}
}

func (s *Store) key(kind, view string) string {
	return "session:" + s.sessionID + ":" + kind + ":" + view
}

// State returns the stored state of view, or initial when there is none.
func (s *Store) State(ctx context.Context, view string, initial collection.State) collection.State {
	st := initial
	if ok, err := s.load(ctx, s.key("view", view), &st); err != nil || !ok {
		return initial
	}
	return st
}

func (s *Store) SaveState(ctx context.Context, view string, st collection.State) error {
	return s.save(ctx, s.key("view", view), st)
}

// Rows decodes the last successfully loaded rows of view into out.
func (s *Store) Rows(ctx context.Context, view string, out any) (bool, error) {
	return s.load(ctx, s.key("rows", view), out)
}

func (s *Store) SaveRows(ctx context.Context, view string, rows any) error {
	return s.save(ctx, s.key("rows", view), rows)
}

// Forget drops both state and rows of view.
func (s *Store) Forget(ctx context.Context, view string) error {
	return s.cache.Delete(ctx, s.key("view", view), s.key("rows", view))
}

// Purge drops the state and rows of every view of the session.
func (s *Store) Purge(ctx context.Context) error {
	for _, kind := range []string{"view", "rows"} {
		if err := s.cache.DeletePrefix(ctx, "session:"+s.sessionID+":"+kind+":"); err != nil {
			return fmt.Errorf("failed to purge %s data: %w", kind, err)
		}
	}
	return nil
}

func (s *Store) load(ctx context.Context, key string, out any) (bool, error) {
	data, err := s.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("corrupt view data at %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.ttl)
}
