package bot

import (
	"fmt"

	"sleepingqueens/internal/domain"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// NewAgent builds an agent for a bot user id, picking the brain level from
// the identity pool difficulty. Unknown ids get the middle tier.
func NewAgent(userID string) (*Agent, error) {
	identity, _ := GetBotConfig(userID)
	brain, err := NewBrain(LevelFromDifficulty(identity.Difficulty))
	if err != nil {
		return nil, err
	}
	name := identity.DisplayName
	if name == "" {
		name = userID
	}
	return &Agent{ID: userID, Name: name, Strategy: brain}, nil
}

// Act asks the agent for its move in the current game situation. The
// returned move carries the agent's player id and is ready to submit to
// the rules engine.
func (a *Agent) Act(game *domain.Game) (domain.Move, error) {
	player := game.PlayerByID(a.ID)
	if player == nil {
		return domain.Move{}, fmt.Errorf("bot %s is not seated in game %s", a.ID, game.ID)
	}
	mv, err := a.Strategy.ChooseMove(game, player)
	if err != nil {
		return domain.Move{}, err
	}
	mv.PlayerID = a.ID
	return mv, nil
}
