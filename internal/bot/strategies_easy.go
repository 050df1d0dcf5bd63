package bot

import (
	"errors"

	"sleepingqueens/internal/domain"
)

// ErrNoAction is returned when a brain is asked to move in a state where
// nothing is expected from its player.
var ErrNoAction = errors.New("bot has no action in the current state")

// EasyBot plays the most obvious move available. It never spends a dragon
// or wand and takes the first queen it can see.
type EasyBot struct{}

func (b *EasyBot) ChooseMove(game *domain.Game, player *domain.Player) (domain.Move, error) {
	switch situationFor(game, player) {
	case situationDefense:
		return defenseMove(game, player, false), nil
	case situationJesterPick:
		q, ok := pickQueen(game, player, false)
		if !ok {
			return domain.Move{}, ErrNoAction
		}
		return domain.Move{Type: domain.MovePlayJester, TargetCard: q.ID}, nil
	case situationRosePick:
		q, ok := pickQueen(game, player, false)
		if !ok {
			return domain.Move{}, ErrNoAction
		}
		return domain.Move{Type: domain.MovePlayKing, TargetCard: q.ID}, nil
	case situationTurn:
		if king, ok := firstOfKind(player.Hand, domain.KindKing); ok && len(game.SleepingQueens) > 0 {
			return domain.Move{
				Type:       domain.MovePlayKing,
				Cards:      []string{king.ID},
				TargetCard: game.SleepingQueens[0].ID,
			}, nil
		}
		if len(player.Hand) == 0 {
			return domain.Move{}, ErrNoAction
		}
		return domain.Move{Type: domain.MoveDiscard, Cards: []string{player.Hand[0].ID}}, nil
	}
	return domain.Move{}, ErrNoAction
}
