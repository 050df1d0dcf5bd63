package nakama

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sleepingqueens/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	statsCollection = "stats"
	statsKey        = "lifetime_v1"
)

// lifetimeStats is the stored shape of a player's lifetime record.
type lifetimeStats struct {
	GamesPlayed     int    `json:"games_played"`
	GamesWon        int    `json:"games_won"`
	QueensCollected int    `json:"queens_collected"`
	BestScore       int    `json:"best_score"`
	UpdatedAt       string `json:"updated_at"`
}

// NakamaStatsAdapter implements ports.StatsPort on top of Nakama storage.
type NakamaStatsAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaStatsAdapter creates a new stats adapter.
func NewNakamaStatsAdapter(nk runtime.NakamaModule) *NakamaStatsAdapter {
	return &NakamaStatsAdapter{nk: nk}
}

// RecordResults folds each result into the player's stored lifetime record.
func (a *NakamaStatsAdapter) RecordResults(ctx context.Context, results []ports.PlayerResult) error {
	for _, res := range results {
		if res.UserID == "" {
			continue
		}
		if err := a.recordOne(ctx, res); err != nil {
			return err
		}
	}
	return nil
}

func (a *NakamaStatsAdapter) recordOne(ctx context.Context, res ports.PlayerResult) error {
	reads := []*runtime.StorageRead{
		{Collection: statsCollection, Key: statsKey, UserID: res.UserID},
	}
	objects, err := a.nk.StorageRead(ctx, reads)
	if err != nil {
		return fmt.Errorf("failed to read stats for user %s: %w", res.UserID, err)
	}

	stats := lifetimeStats{}
	version := "*"
	if len(objects) > 0 {
		if err := json.Unmarshal([]byte(objects[0].Value), &stats); err != nil {
			return fmt.Errorf("failed to unmarshal stats for user %s: %w", res.UserID, err)
		}
		version = objects[0].Version
	}

	stats.GamesPlayed++
	if res.Won {
		stats.GamesWon++
	}
	stats.QueensCollected += res.Queens
	if res.Score > stats.BestScore {
		stats.BestScore = res.Score
	}
	stats.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	value, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats for user %s: %w", res.UserID, err)
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      statsCollection,
			Key:             statsKey,
			UserID:          res.UserID,
			Value:           string(value),
			Version:         version,
			PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}
	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to write stats for user %s: %w", res.UserID, err)
	}
	return nil
}

var _ ports.StatsPort = (*NakamaStatsAdapter)(nil)
