package ports

import "context"

// PlayerResult describes one player's outcome in a finished game.
type PlayerResult struct {
	UserID string
	Won    bool
	Score  int
	Queens int
}

// StatsPort records per-player lifetime game statistics.
type StatsPort interface {
	// RecordResults updates lifetime stats for every listed player.
	RecordResults(ctx context.Context, results []PlayerResult) error
}
