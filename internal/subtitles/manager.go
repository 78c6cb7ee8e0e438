package subtitles

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Fetcher retrieves raw caption text for a movie and language code.
type Fetcher interface {
	FetchSubtitle(ctx context.Context, movieID, language string) (string, error)
}

// Manager fetches caption text per supported language and fills a catalog.
type Manager struct {
	fetcher Fetcher
	catalog *Catalog
	log     zerolog.Logger
}

// Creates a manager around a fresh catalog
func NewManager(fetcher Fetcher, log zerolog.Logger) *Manager {
	return &Manager{
		fetcher: fetcher,
		catalog: NewCatalog(),
		log:     log,
	}
}

// Returns the manager's catalog
func (m *Manager) Catalog() *Catalog {
	return m.catalog
}

// Load fetches captions for every supported language. Fetches run in
// parallel and are independent: one language failing leaves the other
// available. Blocks until all fetches settle; the catalog's loading
// flag covers the whole effort. Any tracks from a previous load are
// dropped before the new fetches start.
func (m *Manager) Load(ctx context.Context, movieID string) {
	m.catalog.Clear()
	m.catalog.SetLoading(true)
	defer m.catalog.SetLoading(false)

	g, ctx := errgroup.WithContext(ctx)
	for _, lang := range Languages {
		g.Go(func() error {
			text, err := m.fetcher.FetchSubtitle(ctx, movieID, lang.Code())
			if err != nil {
				// This language is simply unavailable in the selector
				m.log.Warn().Err(err).
					Str("movie_id", movieID).
					Str("language", lang.Code()).
					Msg("subtitle fetch failed")
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			m.catalog.Put(NewTrack(lang, text))
			return nil
		})
	}
	_ = g.Wait()
}
