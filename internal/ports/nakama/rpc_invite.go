package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"sleepingqueens/internal/app"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

// inviteIssuer names this deployment in signed invite tokens.
const inviteIssuer = "sleepingqueens"

var errUnauthenticated = errors.New("authentication required")

type CreatePrivateMatchRequest struct {
	RoomCode string `json:"room_code,omitempty"`
}

type CreatePrivateMatchResponse struct {
	MatchID  string `json:"match_id"`
	RoomCode string `json:"room_code"`
	Invite   string `json:"invite,omitempty"`
}

type MintInviteRequest struct {
	MatchID  string `json:"match_id"`
	RoomCode string `json:"room_code,omitempty"`
}

type MintInviteResponse struct {
	Invite string `json:"invite"`
}

type ResolveInviteRequest struct {
	Invite string `json:"invite"`
}

type ResolveInviteResponse struct {
	MatchID   string `json:"match_id"`
	RoomCode  string `json:"room_code,omitempty"`
	InviterID string `json:"inviter_id,omitempty"`
}

// inviteServiceFromEnv builds the invite signer from the runtime environment.
// Without a configured secret Mint and Verify report ErrInviteConfig.
func inviteServiceFromEnv(ctx context.Context) *app.InviteService {
	secret := ""
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		secret = env["sleepingqueens_invite_secret"]
	}
	return app.NewInviteService(secret, inviteIssuer, app.DefaultInviteTTL)
}

func newRoomCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}

// rpcCreatePrivateMatch creates an unlisted match and, when the invite
// secret is configured, an invite token for it.
func rpcCreatePrivateMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", errUnauthenticated
	}

	var request CreatePrivateMatchRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			return "", errors.New("invalid payload")
		}
	}
	roomCode := request.RoomCode
	if roomCode == "" {
		roomCode = newRoomCode()
	}

	matchID, err := nk.MatchCreate(ctx, MatchName, map[string]interface{}{
		"room_code": roomCode,
		"private":   true,
	})
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", err
	}

	resp := CreatePrivateMatchResponse{MatchID: matchID, RoomCode: roomCode}
	invite, err := inviteServiceFromEnv(ctx).Mint(userID, matchID, roomCode)
	switch {
	case err == nil:
		resp.Invite = invite
	case errors.Is(err, app.ErrInviteConfig):
		// No secret configured: the room code alone is still shareable.
		logger.Warn("rpcCreatePrivateMatch: Invite signing not configured.")
	default:
		logger.Error("rpcCreatePrivateMatch: Mint error: %v", err)
		return "", err
	}

	b, _ := json.Marshal(resp)
	return string(b), nil
}

// rpcMintInvite signs an invite token for an existing match.
func rpcMintInvite(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", errUnauthenticated
	}

	var request MintInviteRequest
	if err := json.Unmarshal([]byte(payload), &request); err != nil {
		return "", errors.New("invalid payload")
	}
	if request.MatchID == "" {
		return "", errors.New("match_id is required")
	}

	invite, err := inviteServiceFromEnv(ctx).Mint(userID, request.MatchID, request.RoomCode)
	if err != nil {
		logger.Error("rpcMintInvite: %v", err)
		return "", err
	}

	b, _ := json.Marshal(MintInviteResponse{Invite: invite})
	return string(b), nil
}

// rpcResolveInvite verifies an invite token and returns where it leads.
func rpcResolveInvite(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var request ResolveInviteRequest
	if err := json.Unmarshal([]byte(payload), &request); err != nil {
		return "", errors.New("invalid payload")
	}
	if request.Invite == "" {
		return "", errors.New("invite is required")
	}

	inv, err := inviteServiceFromEnv(ctx).Verify(request.Invite)
	if err != nil {
		logger.Warn("rpcResolveInvite: %v", err)
		return "", err
	}

	b, _ := json.Marshal(ResolveInviteResponse{
		MatchID:   inv.MatchID,
		RoomCode:  inv.RoomCode,
		InviterID: inv.InviterID,
	})
	return string(b), nil
}
