package bot

import (
	"sleepingqueens/internal/domain"
)

// SmartBot takes points when they are on the table and defends itself. Its
// turn priority is fixed: wake a queen, steal one, cash an equation, roll
// a jester, then thin the hand.
type SmartBot struct{}

func (b *SmartBot) ChooseMove(game *domain.Game, player *domain.Player) (domain.Move, error) {
	switch situationFor(game, player) {
	case situationDefense:
		return defenseMove(game, player, true), nil
	case situationJesterPick:
		q, ok := pickQueen(game, player, true)
		if !ok {
			return domain.Move{}, ErrNoAction
		}
		return domain.Move{Type: domain.MovePlayJester, TargetCard: q.ID}, nil
	case situationRosePick:
		q, ok := pickQueen(game, player, true)
		if !ok {
			return domain.Move{}, ErrNoAction
		}
		return domain.Move{Type: domain.MovePlayKing, TargetCard: q.ID}, nil
	case situationTurn:
		return b.turnMove(game, player)
	}
	return domain.Move{}, ErrNoAction
}

func (b *SmartBot) turnMove(game *domain.Game, player *domain.Player) (domain.Move, error) {
	if king, ok := firstOfKind(player.Hand, domain.KindKing); ok {
		if q, found := pickQueen(game, player, true); found {
			return domain.Move{
				Type:       domain.MovePlayKing,
				Cards:      []string{king.ID},
				TargetCard: q.ID,
			}, nil
		}
	}
	if knight, ok := firstOfKind(player.Hand, domain.KindKnight); ok {
		if target, queen, found := bestQueenHolder(game, player); found {
			return domain.Move{
				Type:         domain.MovePlayKnight,
				Cards:        []string{knight.ID},
				TargetPlayer: target.ID,
				TargetCard:   queen.ID,
			}, nil
		}
	}
	if eq := findEquation(player.Hand); eq != nil {
		return domain.Move{Type: domain.MovePlayMath, Cards: eq}, nil
	}
	if jester, ok := firstOfKind(player.Hand, domain.KindJester); ok {
		return domain.Move{Type: domain.MovePlayJester, Cards: []string{jester.ID}}, nil
	}
	if pair := findPair(player.Hand); pair != nil {
		return domain.Move{Type: domain.MoveDiscard, Cards: pair}, nil
	}
	if len(player.Hand) == 0 {
		return domain.Move{}, ErrNoAction
	}
	return domain.Move{Type: domain.MoveDiscard, Cards: []string{lowestDiscard(player.Hand, true)}}, nil
}
