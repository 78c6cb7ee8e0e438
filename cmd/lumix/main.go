package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/lumix-stream/lumix/internal/api"
	"github.com/lumix-stream/lumix/internal/config"
	"github.com/lumix-stream/lumix/internal/logging"
	"github.com/lumix-stream/lumix/internal/media"
	"github.com/lumix-stream/lumix/internal/player"
)

func main() {
	cfg := config.LoadClient()

	apiBase := flag.String("api", cfg.APIBase, "lumixd API base URL")
	userID := flag.String("user", cfg.UserID, "current user id (empty: unauthenticated)")
	movieID := flag.String("movie", "", "movie id for favorites and subtitles")
	title := flag.String("title", "", "movie title shown on the modal")
	logFile := flag.String("log", cfg.LogFile, "debug log file (empty: disabled)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: lumix [flags] <video-file-or-url>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	source := flag.Arg(0)

	if *movieID == "" {
		fmt.Fprintln(os.Stderr, "Error: -movie is required")
		os.Exit(1)
	}
	if *title == "" {
		*title = *movieID
	}

	// The terminal belongs to tcell while the session runs, so logs go
	// to a file or nowhere
	log := logging.Discard()
	if *logFile != "" {
		w, err := logging.FileWriter(*logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer w.Close()
		log = zerolog.New(w).With().Timestamp().Str("service", "lumix").Logger()
	}

	handle, err := media.Open(source, log.With().Str("component", "media").Logger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	backend := api.New(*apiBase, cfg.HTTPTimeout)

	p, err := player.New(player.Config{
		Source:  handle,
		Title:   *title,
		MovieID: *movieID,
		UserID:  *userID,
		Backend: backend,
		OnFavoriteChange: func(movieID string, isFavorite bool, favoriteID string) {
			log.Info().
				Str("movie_id", movieID).
				Bool("is_favorite", isFavorite).
				Str("favorite_id", favoriteID).
				Msg("favorite changed")
		},
		OnOpenDetails: func(movieID string) {
			log.Info().Str("movie_id", movieID).Msg("open details requested")
		},
		Logger: log.With().Str("component", "player").Logger(),
	})
	if err != nil {
		handle.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	p.Run()
}
