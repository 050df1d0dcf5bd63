package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sleepingqueens/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Storage location of the per-user crown grant marker. The "*" version on
// the write makes it create-only, which is what keeps the grant one-time.
const (
	grantCollection = "player_meta"
	grantKey        = "welcome_crowns_v1"
)

// NakamaWelcomeBonusAdapter implements ports.WelcomeBonusPort with an atomic
// storage-marker-plus-wallet MultiUpdate.
type NakamaWelcomeBonusAdapter struct {
	nk runtime.NakamaModule
}

func NewNakamaWelcomeBonusAdapter(nk runtime.NakamaModule) *NakamaWelcomeBonusAdapter {
	return &NakamaWelcomeBonusAdapter{nk: nk}
}

// GrantWelcomeBonusOnce credits the crown bonus and records the grant marker
// in one transaction. A second call finds the marker and reports (false, nil).
func (a *NakamaWelcomeBonusAdapter) GrantWelcomeBonusOnce(ctx context.Context, userID string, amount int64, metadata map[string]interface{}) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is required")
	}
	if amount <= 0 {
		return false, fmt.Errorf("amount must be positive")
	}

	marker, err := json.Marshal(map[string]interface{}{
		"crowns":     amount,
		"granted_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return false, fmt.Errorf("marshal grant marker: %w", err)
	}

	writes := []*runtime.StorageWrite{{
		Collection:      grantCollection,
		Key:             grantKey,
		UserID:          userID,
		Value:           string(marker),
		Version:         "*",
		PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}}
	credits := []*runtime.WalletUpdate{{
		UserID:    userID,
		Changeset: map[string]int64{crownCurrencyKey: amount},
		Metadata:  metadata,
	}}

	if _, _, err := a.nk.MultiUpdate(ctx, nil, writes, nil, credits, true); err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			// Marker already present: the user was onboarded before.
			return false, nil
		}
		return false, fmt.Errorf("grant welcome crowns: %w", err)
	}
	return true, nil
}

var _ ports.WelcomeBonusPort = (*NakamaWelcomeBonusAdapter)(nil)
