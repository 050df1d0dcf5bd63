package nakama

import (
	"encoding/json"
	"fmt"

	"sleepingqueens/internal/app"
	"sleepingqueens/internal/domain"
)

// PlayMoveRequest is the client payload for OpPlayMove. The player id is
// never taken from the payload; the presence on the message is the actor.
type PlayMoveRequest struct {
	Type         string   `json:"type"`
	Cards        []string `json:"cards,omitempty"`
	TargetCard   string   `json:"target_card,omitempty"`
	TargetPlayer string   `json:"target_player,omitempty"`
}

func (r PlayMoveRequest) toMove(userID string) domain.Move {
	return domain.Move{
		Type:         domain.MoveType(r.Type),
		PlayerID:     userID,
		Cards:        r.Cards,
		TargetCard:   r.TargetCard,
		TargetPlayer: r.TargetPlayer,
	}
}

// GameErrorPayload is sent privately on OpGameError when a move is rejected.
type GameErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// eventOpcode maps an app event kind to its wire opcode.
func eventOpcode(kind app.EventKind) (int64, bool) {
	switch kind {
	case app.EventPlayerJoined:
		return OpPlayerJoined, true
	case app.EventPlayerLeft:
		return OpPlayerLeft, true
	case app.EventGameStarted:
		return OpGameStarted, true
	case app.EventHandDealt:
		return OpHandDealt, true
	case app.EventMoveApplied:
		return OpMoveApplied, true
	case app.EventQueenWoken:
		return OpQueenWoken, true
	case app.EventQueenStolen:
		return OpQueenStolen, true
	case app.EventQueenSlept:
		return OpQueenSlept, true
	case app.EventAttackDeclared:
		return OpAttackDeclared, true
	case app.EventAttackBlocked:
		return OpAttackBlocked, true
	case app.EventAttackResolved:
		return OpAttackResolved, true
	case app.EventJesterRevealed:
		return OpJesterRevealed, true
	case app.EventRoseBonus:
		return OpRoseBonus, true
	case app.EventCardsStaged:
		return OpCardsStaged, true
	case app.EventGameEnded:
		return OpGameEnded, true
	}
	return 0, false
}

// marshalEvent converts an app event into its opcode and JSON wire bytes.
func marshalEvent(ev app.Event) (int64, []byte, error) {
	op, ok := eventOpcode(ev.Kind)
	if !ok {
		return 0, nil, fmt.Errorf("no opcode for event kind %q", ev.Kind)
	}
	b, err := json.Marshal(ev.Payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal %s payload: %w", ev.Kind, err)
	}
	return op, b, nil
}

// marshalSnapshot renders the game as one viewer is allowed to see it.
func marshalSnapshot(g *domain.Game, viewerID string) ([]byte, error) {
	return json.Marshal(app.ViewFor(g, viewerID))
}
