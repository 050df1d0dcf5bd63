package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// BotUserPrefix marks fallback bot ids minted when no identity pool is
// loaded. Pool ids use the same prefix so seat checks stay uniform.
const BotUserPrefix = "bot-"

type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "easy", "medium", "hard"
	AvatarIndex int    `json:"avatar_index"`
}

var (
	pool          []BotIdentity
	poolByID      map[string]BotIdentity
	loadOnce      sync.Once
	provisionOnce sync.Once
	loadErr       error
)

// LoadIdentities reads the bot profile pool from the given path. The first
// call wins for the whole process; later calls return its result.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("read bot identities: %w", err)
			return
		}
		if err := json.Unmarshal(data, &pool); err != nil {
			loadErr = fmt.Errorf("unmarshal bot identities: %w", err)
			return
		}

		poolByID = make(map[string]BotIdentity, len(pool))
		for _, identity := range pool {
			if identity.UserID == "" {
				continue
			}
			poolByID[identity.UserID] = identity
		}
	})
	return loadErr
}

// ProvisionBots authenticates every pooled identity against Nakama so the
// bot accounts exist and carry the is_bot metadata. Device auth assigns the
// real user ids, which replace the static ones from the pool file.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) error {
	provisionOnce.Do(func() {
		for i := range pool {
			identity := &pool[i]
			if identity.DeviceID == "" {
				continue
			}

			userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if err != nil {
				logger.Error("ProvisionBots: Device auth failed for %s: %v", identity.Username, err)
				continue
			}
			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot":       true,
				"difficulty":   identity.Difficulty,
				"avatar_index": identity.AvatarIndex,
			}
			if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: Account update failed for %s: %v", userID, err)
			}

			poolByID[identity.UserID] = *identity
			logger.Info("ProvisionBots: %s (%s) ready, difficulty %s.", identity.DisplayName, userID, identity.Difficulty)
		}
	})
	return nil
}

// GetBotConfig returns the pooled identity for a bot user id.
func GetBotConfig(userID string) (BotIdentity, bool) {
	identity, ok := poolByID[userID]
	return identity, ok
}

// GetBotDisplayName returns the display name for a bot id, falling back to
// the username. Empty for ids outside the pool.
func GetBotDisplayName(userID string) string {
	identity, ok := poolByID[userID]
	if !ok {
		return ""
	}
	if identity.DisplayName == "" {
		return identity.Username
	}
	return identity.DisplayName
}

// GetBotIdentity returns an identity for a seat index, cycling through the
// pool. With no pool loaded it mints a generic fallback identity.
func GetBotIdentity(index int) BotIdentity {
	if len(pool) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("%s%d", BotUserPrefix, index),
			DisplayName: fmt.Sprintf("Queen Seeker %d", index+1),
		}
	}
	return pool[index%len(pool)]
}

// IsBot reports whether the user id belongs to the bot pool or uses the
// fallback bot prefix.
func IsBot(userID string) bool {
	if strings.HasPrefix(userID, BotUserPrefix) {
		return true
	}
	_, ok := poolByID[userID]
	return ok
}

// GetAllBotIDs returns the user ids of every pooled identity.
func GetAllBotIDs() []string {
	ids := make([]string, 0, len(poolByID))
	for id := range poolByID {
		ids = append(ids, id)
	}
	return ids
}
