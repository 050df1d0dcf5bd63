package bot

import (
	"math/bits"

	"sleepingqueens/internal/domain"
)

// situation classifies what the game currently wants from the bot.
type situation int

const (
	situationIdle situation = iota
	situationTurn
	situationDefense
	situationJesterPick
	situationRosePick
)

func situationFor(game *domain.Game, player *domain.Player) situation {
	if game.Phase != domain.PhasePlaying {
		return situationIdle
	}
	if iv := game.Interrupt; iv != nil {
		if iv.TargetID != player.ID {
			return situationIdle
		}
		switch iv.Kind {
		case domain.InterruptKnightAttack, domain.InterruptPotionAttack:
			return situationDefense
		case domain.InterruptJesterReveal:
			return situationJesterPick
		case domain.InterruptRoseBonus:
			return situationRosePick
		}
		return situationIdle
	}
	if game.CurrentTurn == player.ID {
		return situationTurn
	}
	return situationIdle
}

// firstOfKind returns the first hand card of the kind.
func firstOfKind(hand []domain.Card, kind domain.CardKind) (domain.Card, bool) {
	for _, c := range hand {
		if c.Kind == kind {
			return c, true
		}
	}
	return domain.Card{}, false
}

// defenseMove decides the pending attack for its target: block with the
// matching counter card when spendDefense is set and the card is in hand,
// otherwise concede.
func defenseMove(game *domain.Game, player *domain.Player, spendDefense bool) domain.Move {
	iv := game.Interrupt
	if iv.Kind == domain.InterruptKnightAttack {
		if spendDefense {
			if card, ok := firstOfKind(player.Hand, domain.KindDragon); ok {
				return domain.Move{Type: domain.MovePlayDragon, Cards: []string{card.ID}}
			}
		}
		return domain.Move{Type: domain.MoveAllowKnightAttack}
	}
	if spendDefense {
		if card, ok := firstOfKind(player.Hand, domain.KindWand); ok {
			return domain.Move{Type: domain.MovePlayWand, Cards: []string{card.ID}}
		}
	}
	return domain.Move{Type: domain.MoveAllowPotionAttack}
}

// pickQueen chooses from the sleeping pool: the highest-point queen when
// greedy, the first one otherwise. Greedy picks route around a cat/dog
// conflict whenever an alternative exists.
func pickQueen(game *domain.Game, player *domain.Player, greedy bool) (domain.Card, bool) {
	pool := game.SleepingQueens
	if len(pool) == 0 {
		return domain.Card{}, false
	}
	if !greedy {
		return pool[0], true
	}
	best := -1
	for i, q := range pool {
		if conflictsWithHolding(player, q) {
			continue
		}
		if best < 0 || q.Points > pool[best].Points {
			best = i
		}
	}
	if best < 0 {
		best = 0
	}
	return pool[best], true
}

// conflictsWithHolding reports whether gaining the queen would bounce off
// the cat/dog rule for this player.
func conflictsWithHolding(player *domain.Player, q domain.Card) bool {
	switch q.Name {
	case domain.QueenCat:
		return holdsQueenNamed(player, domain.QueenDog)
	case domain.QueenDog:
		return holdsQueenNamed(player, domain.QueenCat)
	}
	return false
}

func holdsQueenNamed(player *domain.Player, name string) bool {
	for _, q := range player.Queens {
		if q.Name == name {
			return true
		}
	}
	return false
}

// bestQueenHolder returns the opponent with the highest score among those
// holding queens, together with the queen worth taking from them.
func bestQueenHolder(game *domain.Game, self *domain.Player) (*domain.Player, domain.Card, bool) {
	var target *domain.Player
	var queen domain.Card
	for _, p := range game.Players {
		if p.ID == self.ID || len(p.Queens) == 0 {
			continue
		}
		if target == nil || p.Score > target.Score {
			target = p
			queen = richestQueenFor(self, p)
		}
	}
	return target, queen, target != nil
}

// richestQueenFor picks the holder's most valuable queen that would not
// bounce off a cat/dog conflict for the taker, falling back to the richest
// one when every option conflicts.
func richestQueenFor(taker, holder *domain.Player) domain.Card {
	best := -1
	for i, q := range holder.Queens {
		if conflictsWithHolding(taker, q) {
			continue
		}
		if best < 0 || q.Points > holder.Queens[best].Points {
			best = i
		}
	}
	if best < 0 {
		best = 0
		for i, q := range holder.Queens {
			if q.Points > holder.Queens[best].Points {
				best = i
			}
		}
	}
	return holder.Queens[best]
}

// findEquation searches the hand's number cards for a subset of 3 to 5
// values forming a valid identity, preferring larger sets since every
// discarded card draws a replacement.
func findEquation(hand []domain.Card) []string {
	var numbers []domain.Card
	for _, c := range hand {
		if c.IsNumber() {
			numbers = append(numbers, c)
		}
	}
	if len(numbers) < 3 {
		return nil
	}

	var best []string
	for mask := 1; mask < 1<<len(numbers); mask++ {
		if bits.OnesCount(uint(mask)) < 3 {
			continue
		}
		var subset []domain.Card
		for i := range numbers {
			if mask&(1<<i) != 0 {
				subset = append(subset, numbers[i])
			}
		}
		if len(subset) <= len(best) {
			continue
		}
		if domain.ValidNumberEquation(subset) {
			ids := make([]string, len(subset))
			for i, c := range subset {
				ids[i] = c.ID
			}
			best = ids
		}
	}
	return best
}

// findPair returns two number cards of equal value, or nil.
func findPair(hand []domain.Card) []string {
	for i := 0; i < len(hand)-1; i++ {
		if !hand[i].IsNumber() {
			continue
		}
		for j := i + 1; j < len(hand); j++ {
			if hand[j].IsNumber() && hand[i].Value == hand[j].Value {
				return []string{hand[i].ID, hand[j].ID}
			}
		}
	}
	return nil
}

// lowestDiscard picks the least useful card to toss: the lowest number
// card, else the first card that is not a defense card, else the first
// card outright.
func lowestDiscard(hand []domain.Card, keepDefense bool) string {
	best := -1
	for i, c := range hand {
		if c.IsNumber() && (best < 0 || c.Value < hand[best].Value) {
			best = i
		}
	}
	if best >= 0 {
		return hand[best].ID
	}
	if keepDefense {
		for _, c := range hand {
			if c.Kind != domain.KindDragon && c.Kind != domain.KindWand {
				return c.ID
			}
		}
	}
	return hand[0].ID
}
