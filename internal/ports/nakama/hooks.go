package nakama

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"sleepingqueens/internal/app/onboarding"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// AfterAuthenticateDevice onboards freshly created accounts: a queen-themed
// display name and the one-time crown grant. Existing accounts pass through.
func AfterAuthenticateDevice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, out *api.Session, in *api.AuthenticateDeviceRequest) error {
	if !out.Created {
		return nil
	}

	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		// The hook context carries no user id on some auth paths; fall back
		// to the uid claim inside the freshly issued session token.
		resolved, err := userIDFromSession(out.Token)
		if err != nil {
			logger.Error("AfterAuthenticateDevice: Could not resolve the new user id: %v", err)
			return err
		}
		userID = resolved
	}

	logger.Info("AfterAuthenticateDevice: Onboarding new user %s", userID)

	service := onboarding.NewService(NewNakamaAccountAdapter(nk), NewNakamaWelcomeBonusAdapter(nk), nil)
	result, err := service.OnboardNewUser(ctx, userID)
	if result.ProfileUpdateErr != nil {
		logger.Warn("AfterAuthenticateDevice: Profile update failed for %s: %v", userID, result.ProfileUpdateErr)
	}
	if !result.WelcomeBonusGranted {
		logger.Info("AfterAuthenticateDevice: Crown grant already recorded for %s", userID)
	}
	if err != nil {
		logger.Error("AfterAuthenticateDevice: Onboarding failed for %s: %v", userID, err)
		return err
	}
	return nil
}

// userIDFromSession pulls the uid claim out of a Nakama session token
// without verifying it; the token was minted by this server moments ago.
func userIDFromSession(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("malformed session token")
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("decode session payload: %w", err)
	}

	var claims struct {
		UID string `json:"uid"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", fmt.Errorf("unmarshal session claims: %w", err)
	}
	if claims.UID == "" {
		return "", fmt.Errorf("session token carries no uid")
	}
	return claims.UID, nil
}
