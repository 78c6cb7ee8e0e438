// Package favorites reconciles the "favorited" flag for one (user, movie)
// pair against the remote store.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lumix-stream/lumix/internal/api"
)

// ErrNoUser is returned when a toggle is attempted without a user identity.
var ErrNoUser = errors.New("no user identity")

// Store is the remote favorites surface the tracker talks to.
type Store interface {
	ListFavorites(ctx context.Context, userID string) ([]api.FavoriteRecord, error)
	CreateFavorite(ctx context.Context, userID, movieID string) (api.FavoriteRecord, error)
	DeleteFavorite(ctx context.Context, favoriteID string) error
}

// ChangeFunc reports a settled toggle to an external listener, so a parent
// list can update its cached copy without a refetch.
type ChangeFunc func(movieID string, isFavorite bool, favoriteID string)

// Tracker holds the favorite state for one session. The remote store is
// the source of truth: state changes only after a request settles, and a
// failed request leaves state untouched. recordID is non-empty exactly
// when isFavorite is true.
type Tracker struct {
	store    Store
	userID   string
	movieID  string
	onChange ChangeFunc
	log      zerolog.Logger

	mu         sync.Mutex
	loaded     bool
	isFavorite bool
	recordID   string
}

// Creates a tracker; onChange may be nil
func New(store Store, userID, movieID string, onChange ChangeFunc, log zerolog.Logger) *Tracker {
	return &Tracker{
		store:    store,
		userID:   userID,
		movieID:  movieID,
		onChange: onChange,
		log:      log,
	}
}

// Load queries the user's favorite set and records membership for this
// movie. Without a user identity it is a silent no-op: the movie simply
// reads as not favorited.
func (t *Tracker) Load(ctx context.Context) error {
	if t.userID == "" {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	records, err := t.store.ListFavorites(ctx, t.userID)
	if err != nil {
		// Unknown status reads as not favorited
		t.log.Warn().Err(err).Str("movie_id", t.movieID).Msg("favorite status fetch failed")
		return fmt.Errorf("load favorite status: %w", err)
	}

	for _, r := range records {
		if r.MovieID == t.movieID {
			t.isFavorite = true
			t.recordID = r.ID
			break
		}
	}
	t.loaded = true
	return nil
}

// Toggle flips the favorite state against the remote store. Toggles are
// serialized with Load and with each other; a toggle that runs before the
// initial load settles treats the missing record id as "not favorited".
// The listener fires after the mutex is dropped, so it may read the
// tracker freely.
func (t *Tracker) Toggle(ctx context.Context) (bool, error) {
	if t.userID == "" {
		return false, ErrNoUser
	}

	t.mu.Lock()

	if t.isFavorite {
		oldID := t.recordID
		if err := t.store.DeleteFavorite(ctx, oldID); err != nil {
			t.mu.Unlock()
			t.log.Error().Err(err).Str("favorite_id", oldID).Msg("favorite delete failed")
			return true, fmt.Errorf("remove favorite: %w", err)
		}
		t.isFavorite = false
		t.recordID = ""
		t.mu.Unlock()

		if t.onChange != nil {
			t.onChange(t.movieID, false, oldID)
		}
		return false, nil
	}

	record, err := t.store.CreateFavorite(ctx, t.userID, t.movieID)
	if err != nil {
		t.mu.Unlock()
		t.log.Error().Err(err).Str("movie_id", t.movieID).Msg("favorite create failed")
		return false, fmt.Errorf("add favorite: %w", err)
	}
	t.isFavorite = true
	t.recordID = record.ID
	t.mu.Unlock()

	if t.onChange != nil {
		t.onChange(t.movieID, true, record.ID)
	}
	return true, nil
}

// Reports the current favorite flag
func (t *Tracker) IsFavorite() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isFavorite
}

// Returns the favorite record id, empty when not favorited
func (t *Tracker) RecordID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recordID
}

// Reports whether the initial status load has settled
func (t *Tracker) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded
}
