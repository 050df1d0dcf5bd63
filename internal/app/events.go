package app

import "sleepingqueens/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventPlayerJoined   EventKind = "player_joined"
	EventPlayerLeft     EventKind = "player_left"
	EventGameStarted    EventKind = "game_started"
	EventHandDealt      EventKind = "hand_dealt"
	EventMoveApplied    EventKind = "move_applied"
	EventQueenWoken     EventKind = "queen_woken"
	EventQueenStolen    EventKind = "queen_stolen"
	EventQueenSlept     EventKind = "queen_slept"
	EventAttackDeclared EventKind = "attack_declared"
	EventAttackBlocked  EventKind = "attack_blocked"
	EventAttackResolved EventKind = "attack_resolved"
	EventJesterRevealed EventKind = "jester_revealed"
	EventRoseBonus      EventKind = "rose_bonus"
	EventCardsStaged    EventKind = "cards_staged"
	EventGameEnded      EventKind = "game_ended"
)

// Reasons a finished game reports in its game_ended payload.
const (
	EndReasonThreshold = "threshold"
	EndReasonPoolEmpty = "pool_empty"
	EndReasonForfeit   = "forfeit"
)

// Reasons a queen goes back to sleep.
const (
	SleptByPotion   = "potion"
	SleptByConflict = "conflict"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // player IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
}

type GameStartedPayload struct {
	FirstTurn  string `json:"first_turn"`
	QueenCount int    `json:"queen_count"`
}

type HandDealtPayload struct {
	PlayerID string        `json:"player_id"`
	Hand     []domain.Card `json:"hand"`
}

type MoveAppliedPayload struct {
	PlayerID string          `json:"player_id"`
	Type     domain.MoveType `json:"type"`
	Cards    []domain.Card   `json:"cards,omitempty"`
	NextTurn string          `json:"next_turn"`
}

type QueenWokenPayload struct {
	PlayerID string      `json:"player_id"`
	Queen    domain.Card `json:"queen"`
	Bonus    bool        `json:"bonus,omitempty"` // true for a rose bonus wake
}

type QueenStolenPayload struct {
	AttackerID string      `json:"attacker_id"`
	TargetID   string      `json:"target_id"`
	Queen      domain.Card `json:"queen"`
}

type QueenSleptPayload struct {
	PlayerID string      `json:"player_id"` // who lost or was denied the queen
	Queen    domain.Card `json:"queen"`
	Reason   string      `json:"reason"`
}

type AttackDeclaredPayload struct {
	Kind       domain.InterruptKind `json:"kind"`
	AttackerID string               `json:"attacker_id"`
	TargetID   string               `json:"target_id"`
	QueenID    string               `json:"queen_id"`
	Deadline   int64                `json:"deadline"` // unix millis
}

type AttackBlockedPayload struct {
	Kind        domain.InterruptKind `json:"kind"`
	AttackerID  string               `json:"attacker_id"`
	DefenderID  string               `json:"defender_id"`
	DefenseCard domain.Card          `json:"defense_card"`
	NextTurn    string               `json:"next_turn"`
}

type AttackResolvedPayload struct {
	Kind       domain.InterruptKind `json:"kind"`
	AttackerID string               `json:"attacker_id"`
	TargetID   string               `json:"target_id"`
	Queen      domain.Card          `json:"queen"`
	Forced     bool                 `json:"forced,omitempty"` // resolved by deadline expiry
	NextTurn   string               `json:"next_turn"`
}

type JesterRevealedPayload struct {
	PlayerID string      `json:"player_id"`
	Card     domain.Card `json:"card"`
	TargetID string      `json:"target_id,omitempty"` // set when a number sends the pick elsewhere
	Kept     bool        `json:"kept,omitempty"`      // true when an action card stays in hand
}

type RoseBonusPayload struct {
	PlayerID string `json:"player_id"`
}

type CardsStagedPayload struct {
	PlayerID string   `json:"player_id"`
	CardIDs  []string `json:"card_ids"`
}

type PlayerStanding struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Queens   int    `json:"queens"`
}

type GameEndedPayload struct {
	WinnerID  string           `json:"winner_id"`
	Reason    string           `json:"reason"`
	Standings []PlayerStanding `json:"standings"`
}
