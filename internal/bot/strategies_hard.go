package bot

import (
	"sort"

	"sleepingqueens/internal/domain"
)

// HardBot enumerates every playable move, scores each with the tuning
// weights and picks the best. It always blocks attacks it can block.
type HardBot struct{}

type scoredMove struct {
	Move  domain.Move
	Score float64
}

func (b *HardBot) ChooseMove(game *domain.Game, player *domain.Player) (domain.Move, error) {
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
		scored := b.scoreCandidates(game, player)
		if len(scored) == 0 {
			return domain.Move{}, ErrNoAction
		}
		sort.Slice(scored, func(i, j int) bool {
			if scored[i].Score != scored[j].Score {
				return scored[i].Score > scored[j].Score
			}
			// Spend fewer cards when scores are equal.
			return len(scored[i].Move.Cards) < len(scored[j].Move.Cards)
		})
		return scored[0].Move, nil
	}
	return domain.Move{}, ErrNoAction
}

func (b *HardBot) scoreCandidates(game *domain.Game, player *domain.Player) []scoredMove {
	w := defaultTuning
	req := domain.WinRequirementFor(len(game.Players))
	var out []scoredMove

	if king, ok := firstOfKind(player.Hand, domain.KindKing); ok {
		for _, q := range game.SleepingQueens {
			score := float64(q.Points) * w.QueenPointWeight
			if conflictsWithHolding(player, q) {
				score -= w.ConflictPenalty
			} else {
				if q.Name == domain.QueenRose && len(game.SleepingQueens) > 1 {
					score += w.RoseBonusValue
				}
				if player.Score+q.Points >= req.Points || len(player.Queens)+1 >= req.Queens {
					score += w.WinningMoveBonus
				}
			}
			out = append(out, scoredMove{
				Move:  domain.Move{Type: domain.MovePlayKing, Cards: []string{king.ID}, TargetCard: q.ID},
				Score: score,
			})
		}
	}

	if knight, ok := firstOfKind(player.Hand, domain.KindKnight); ok {
		for _, opp := range game.Players {
			if opp.ID == player.ID {
				continue
			}
			for _, q := range opp.Queens {
				score := float64(q.Points)*w.StealWeight + float64(opp.Score)*w.ThreatWeight
				if conflictsWithHolding(player, q) {
					score -= w.ConflictPenalty
				} else if player.Score+q.Points >= req.Points || len(player.Queens)+1 >= req.Queens {
					score += w.WinningMoveBonus
				}
				out = append(out, scoredMove{
					Move: domain.Move{
						Type:         domain.MovePlayKnight,
						Cards:        []string{knight.ID},
						TargetPlayer: opp.ID,
						TargetCard:   q.ID,
					},
					Score: score,
				})
			}
		}
	}

	if potion, ok := firstOfKind(player.Hand, domain.KindPotion); ok {
		for _, opp := range game.Players {
			if opp.ID == player.ID {
				continue
			}
			for _, q := range opp.Queens {
				score := float64(q.Points)*w.PotionWeight + float64(opp.Score)*w.ThreatWeight
				out = append(out, scoredMove{
					Move: domain.Move{
						Type:         domain.MovePlayPotion,
						Cards:        []string{potion.ID},
						TargetPlayer: opp.ID,
						TargetCard:   q.ID,
					},
					Score: score,
				})
			}
		}
	}

	if jester, ok := firstOfKind(player.Hand, domain.KindJester); ok {
		score := w.JesterBase + float64(len(game.SleepingQueens))*w.JesterPoolWeight
		out = append(out, scoredMove{
			Move:  domain.Move{Type: domain.MovePlayJester, Cards: []string{jester.ID}},
			Score: score,
		})
	}

	if eq := findEquation(player.Hand); eq != nil {
		out = append(out, scoredMove{
			Move:  domain.Move{Type: domain.MovePlayMath, Cards: eq},
			Score: float64(len(eq)) * w.EquationCardValue,
		})
	}

	if pair := findPair(player.Hand); pair != nil {
		out = append(out, scoredMove{
			Move:  domain.Move{Type: domain.MoveDiscard, Cards: pair},
			Score: 2 * w.DiscardCardValue,
		})
	}

	if len(player.Hand) > 0 {
		out = append(out, scoredMove{
			Move:  domain.Move{Type: domain.MoveDiscard, Cards: []string{lowestDiscard(player.Hand, true)}},
			Score: w.DiscardCardValue,
		})
	}

	return out
}
