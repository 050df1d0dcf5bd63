package bot

import (
	"sleepingqueens/internal/domain"
)

// Brain is the interface all bot strategies implement. ChooseMove must
// return a legal move for whatever situation the game is in: the bot's own
// turn, a defense window the bot is the target of, a jester reveal pick or
// the rose queen bonus pick.
type Brain interface {
	ChooseMove(game *domain.Game, player *domain.Player) (domain.Move, error)
}

// BotLevel selects a brain implementation.
type BotLevel int

const (
	BotLevelEasy BotLevel = iota
	BotLevelSmart
	BotLevelHard
)

// LevelFromDifficulty maps an identity difficulty string to a brain level.
// Unknown strings fall back to the middle tier.
func LevelFromDifficulty(difficulty string) BotLevel {
	switch difficulty {
	case "easy":
		return BotLevelEasy
	case "hard":
		return BotLevelHard
	default:
		return BotLevelSmart
	}
}
