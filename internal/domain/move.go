package domain

// MoveType discriminates the closed set of move variants a player can submit.
type MoveType string

const (
	MovePlayKing          MoveType = "play_king"
	MovePlayKnight        MoveType = "play_knight"
	MovePlayDragon        MoveType = "play_dragon"
	MovePlayWand          MoveType = "play_wand"
	MovePlayPotion        MoveType = "play_potion"
	MovePlayJester        MoveType = "play_jester"
	MovePlayMath          MoveType = "play_math"
	MoveDiscard           MoveType = "discard"
	MoveStageCard         MoveType = "stage_card"
	MoveAllowKnightAttack MoveType = "allow_knight_attack"
	MoveAllowPotionAttack MoveType = "allow_potion_attack"
)

// Known reports whether t is one of the defined move types.
func (t MoveType) Known() bool {
	switch t {
	case MovePlayKing, MovePlayKnight, MovePlayDragon, MovePlayWand,
		MovePlayPotion, MovePlayJester, MovePlayMath, MoveDiscard,
		MoveStageCard, MoveAllowKnightAttack, MoveAllowPotionAttack:
		return true
	}
	return false
}

// Move is a proposed action submitted by a player. Cards reference hand
// cards by id; TargetCard and TargetPlayer are optional depending on type.
type Move struct {
	Type         MoveType `json:"type"`
	PlayerID     string   `json:"player_id"`
	Timestamp    int64    `json:"timestamp,omitempty"` // unix millis, client-reported
	Cards        []string `json:"cards,omitempty"`
	TargetCard   string   `json:"target_card,omitempty"`
	TargetPlayer string   `json:"target_player,omitempty"`
}
