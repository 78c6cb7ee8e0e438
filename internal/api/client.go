// Package api is the HTTP client for the lumixd backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// FavoriteRecord links a user and a movie in the remote store.
type FavoriteRecord struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	MovieID string `json:"movieId"`
}

// Client talks JSON to the backend. Credentials ride on the cookie jar.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	jar, _ := cookiejar.New(nil)

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

// ListFavorites returns the user's favorite records.
func (c *Client) ListFavorites(ctx context.Context, userID string) ([]FavoriteRecord, error) {
	u := fmt.Sprintf("%s/api/favorites?userId=%s", c.baseURL, url.QueryEscape(userID))

	var records []FavoriteRecord
	if err := c.getJSON(ctx, u, &records); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return records, nil
}

// CreateFavorite creates a favorite record and returns it with its id.
func (c *Client) CreateFavorite(ctx context.Context, userID, movieID string) (FavoriteRecord, error) {
	body, _ := json.Marshal(map[string]string{
		"userId":  userID,
		"movieId": movieID,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/favorites", bytes.NewReader(body))
	if err != nil {
		return FavoriteRecord{}, fmt.Errorf("create favorite: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return FavoriteRecord{}, fmt.Errorf("create favorite: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return FavoriteRecord{}, fmt.Errorf("create favorite: %w", err)
	}

	var record FavoriteRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return FavoriteRecord{}, fmt.Errorf("create favorite: decode: %w", err)
	}
	return record, nil
}

// DeleteFavorite removes a favorite record by id.
func (c *Client) DeleteFavorite(ctx context.Context, favoriteID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/api/favorites/"+url.PathEscape(favoriteID), nil)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

// FetchSubtitle fetches raw caption text for a movie and language code.
func (c *Client) FetchSubtitle(ctx context.Context, movieID, language string) (string, error) {
	u := fmt.Sprintf("%s/api/subtitles/%s/%s",
		c.baseURL, url.PathEscape(movieID), url.PathEscape(language))

	var payload struct {
		Subtitle string `json:"subtitle"`
	}
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return "", fmt.Errorf("fetch subtitle: %w", err)
	}
	return payload.Subtitle, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
}
