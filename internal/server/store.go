package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)
)

// ErrNotFound is returned when a favorite record does not exist.
var ErrNotFound = errors.New("favorite not found")

// Favorite is a stored favorite record.
type Favorite struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	MovieID string `json:"movieId"`
}

// Store provides SQLite persistence for favorite records.
type Store struct {
	db *sql.DB
}

// NewStore opens the database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	// busy_timeout avoids "database locked" errors
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS favorites (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		movie_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(user_id, movie_id)
	);

	CREATE INDEX IF NOT EXISTS idx_favorites_user ON favorites(user_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// ListFavorites returns every favorite record for a user.
func (s *Store) ListFavorites(ctx context.Context, userID string) ([]Favorite, error) {
	query := `SELECT id, user_id, movie_id FROM favorites WHERE user_id = ? ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []Favorite{}
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.MovieID); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

// CreateFavorite inserts a favorite record. Creating one that already
// exists returns the existing record, so the toggle is idempotent across
// clients.
func (s *Store) CreateFavorite(ctx context.Context, userID, movieID string) (Favorite, error) {
	existing, err := s.findFavorite(ctx, userID, movieID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Favorite{}, err
	}

	f := Favorite{
		ID:      uuid.NewString(),
		UserID:  userID,
		MovieID: movieID,
	}

	query := `INSERT INTO favorites (id, user_id, movie_id, created_at) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, f.ID, f.UserID, f.MovieID,
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return Favorite{}, fmt.Errorf("create favorite: %w", err)
	}
	return f, nil
}

// DeleteFavorite removes a favorite record by id.
func (s *Store) DeleteFavorite(ctx context.Context, favoriteID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, favoriteID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) findFavorite(ctx context.Context, userID, movieID string) (Favorite, error) {
	query := `SELECT id, user_id, movie_id FROM favorites WHERE user_id = ? AND movie_id = ?`

	var f Favorite
	err := s.db.QueryRowContext(ctx, query, userID, movieID).Scan(&f.ID, &f.UserID, &f.MovieID)
	if errors.Is(err, sql.ErrNoRows) {
		return Favorite{}, ErrNotFound
	}
	if err != nil {
		return Favorite{}, fmt.Errorf("find favorite: %w", err)
	}
	return f, nil
}
