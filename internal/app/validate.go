package app

import (
	"fmt"

	"sleepingqueens/internal/domain"
)

// MoveResult reports the outcome of a move submission. Error carries the
// rejection reason; Message carries optional context on accepted moves.
// RequiresResponse signals that a defense window opened and the move will
// only complete once the window resolves.
type MoveResult struct {
	Valid            bool   `json:"valid"`
	Error            string `json:"error,omitempty"`
	Message          string `json:"message,omitempty"`
	RequiresResponse bool   `json:"requires_response,omitempty"`
}

func accept() MoveResult {
	return MoveResult{Valid: true}
}

func reject(reason string) MoveResult {
	return MoveResult{Valid: false, Error: reason}
}

// rejectInvariant marks failures that indicate a validator gap rather than
// a player mistake. The prefix makes them easy to alarm on.
func rejectInvariant(detail string) MoveResult {
	return MoveResult{Valid: false, Error: "internal error: " + detail}
}

// validateMove is the gatekeeper run before any resolver: structural checks,
// then authorization, then per-type legality. Resolvers trust its verdict
// and never re-validate.
func (s *Service) validateMove(g *domain.Game, mv domain.Move) MoveResult {
	if mv.PlayerID == "" {
		return reject("move is missing a player id")
	}
	if mv.Type == "" {
		return reject("move is missing a type")
	}
	if !mv.Type.Known() {
		return reject(fmt.Sprintf("unknown move type %q", mv.Type))
	}
	if g.Phase != domain.PhasePlaying {
		return reject("game is not in progress")
	}
	actor := g.PlayerByID(mv.PlayerID)
	if actor == nil {
		return reject("player is not in this game")
	}

	// While an interrupt is open, only the moves that service it are legal.
	if g.Interrupt != nil {
		return s.validateInterruptMove(g, actor, mv)
	}

	if !g.IsCurrent(mv.PlayerID) {
		return reject("not your turn")
	}
	return s.validateTurnMove(g, actor, mv)
}

func (s *Service) validateInterruptMove(g *domain.Game, actor *domain.Player, mv domain.Move) MoveResult {
	iv := g.Interrupt
	switch iv.Kind {
	case domain.InterruptKnightAttack:
		switch mv.Type {
		case domain.MovePlayDragon:
			if actor.ID != iv.TargetID {
				return reject("only the attacked player may defend")
			}
			return checkSingleKindPlay(actor, mv.Cards, domain.KindDragon)
		case domain.MoveAllowKnightAttack:
			if actor.ID != iv.TargetID && !s.deadlinePassed(iv) {
				return reject("only the attacked player may allow the attack before the deadline")
			}
			return accept()
		}
		return reject("a knight attack must be resolved first")

	case domain.InterruptPotionAttack:
		switch mv.Type {
		case domain.MovePlayWand:
			if actor.ID != iv.TargetID {
				return reject("only the attacked player may defend")
			}
			return checkSingleKindPlay(actor, mv.Cards, domain.KindWand)
		case domain.MoveAllowPotionAttack:
			if actor.ID != iv.TargetID && !s.deadlinePassed(iv) {
				return reject("only the attacked player may allow the attack before the deadline")
			}
			return accept()
		}
		return reject("a potion attack must be resolved first")

	case domain.InterruptJesterReveal:
		if mv.Type != domain.MovePlayJester {
			return reject("waiting for the jester reveal queen selection")
		}
		if actor.ID != iv.TargetID {
			return reject("only the revealed player may select a queen")
		}
		return checkSleepingTarget(g, mv.TargetCard)

	case domain.InterruptRoseBonus:
		if mv.Type != domain.MovePlayKing {
			return reject("waiting for the rose queen bonus selection")
		}
		if actor.ID != iv.TargetID {
			return reject("only the rose queen's waker may pick the bonus queen")
		}
		return checkSleepingTarget(g, mv.TargetCard)
	}
	return rejectInvariant(fmt.Sprintf("unknown interrupt kind %q", iv.Kind))
}

func (s *Service) validateTurnMove(g *domain.Game, actor *domain.Player, mv domain.Move) MoveResult {
	switch mv.Type {
	case domain.MovePlayKing:
		if res := checkSingleKindPlay(actor, mv.Cards, domain.KindKing); !res.Valid {
			return res
		}
		return checkSleepingTarget(g, mv.TargetCard)

	case domain.MovePlayKnight:
		if res := checkSingleKindPlay(actor, mv.Cards, domain.KindKnight); !res.Valid {
			return res
		}
		return checkCollectedTarget(g, actor, mv)

	case domain.MovePlayDragon:
		return reject("no knight attack to block")

	case domain.MovePlayWand:
		return reject("no potion attack to block")

	case domain.MovePlayPotion:
		if res := checkSingleKindPlay(actor, mv.Cards, domain.KindPotion); !res.Valid {
			return res
		}
		if mv.TargetPlayer == "" && mv.TargetCard == "" {
			// defensive play: the potion is simply discarded
			return accept()
		}
		return checkCollectedTarget(g, actor, mv)

	case domain.MovePlayJester:
		return checkSingleKindPlay(actor, mv.Cards, domain.KindJester)

	case domain.MovePlayMath:
		cards, res := cardsInHand(actor, mv.Cards)
		if !res.Valid {
			return res
		}
		if len(cards) < 3 || len(cards) > domain.MaxHandSize {
			return reject("an equation needs 3 to 5 number cards")
		}
		if !domain.ValidNumberEquation(cards) {
			return reject("cards do not form a valid equation")
		}
		return accept()

	case domain.MoveDiscard:
		cards, res := cardsInHand(actor, mv.Cards)
		if !res.Valid {
			return res
		}
		if len(cards) == 0 || len(cards) > domain.MaxHandSize {
			return reject("discard must be 1 to 5 cards")
		}
		if !domain.ValidDiscardSet(cards) {
			if len(cards) == 2 {
				return reject("a pair must be two number cards of the same value")
			}
			return reject("cards do not form a valid equation")
		}
		return accept()

	case domain.MoveStageCard:
		if len(mv.Cards) == 0 {
			return reject("no cards to stage")
		}
		_, res := cardsInHand(actor, mv.Cards)
		return res

	case domain.MoveAllowKnightAttack:
		return reject("no knight attack to resolve")

	case domain.MoveAllowPotionAttack:
		return reject("no potion attack to resolve")
	}
	return rejectInvariant(fmt.Sprintf("no legality rule for move type %q", mv.Type))
}

// checkSingleKindPlay verifies the move references exactly one hand card of
// the expected kind.
func checkSingleKindPlay(p *domain.Player, ids []string, kind domain.CardKind) MoveResult {
	if len(ids) != 1 {
		return reject(fmt.Sprintf("play requires exactly one %s card", kind))
	}
	card, ok := p.CardInHand(ids[0])
	if !ok {
		return reject(fmt.Sprintf("card %s is not in your hand", ids[0]))
	}
	if card.Kind != kind {
		return reject(fmt.Sprintf("card %s is not a %s", ids[0], kind))
	}
	return accept()
}

// checkSleepingTarget verifies a queen id addresses the sleeping pool.
func checkSleepingTarget(g *domain.Game, queenID string) MoveResult {
	if queenID == "" {
		return reject("a target queen is required")
	}
	if _, ok := g.SleepingQueenByID(queenID); !ok {
		return reject(fmt.Sprintf("queen %s is not in the sleeping pool", queenID))
	}
	return accept()
}

// checkCollectedTarget verifies an attack addresses another player and a
// queen that player actually holds.
func checkCollectedTarget(g *domain.Game, actor *domain.Player, mv domain.Move) MoveResult {
	if mv.TargetPlayer == "" {
		return reject("a target player is required")
	}
	if mv.TargetPlayer == actor.ID {
		return reject("cannot target yourself")
	}
	target := g.PlayerByID(mv.TargetPlayer)
	if target == nil {
		return reject(fmt.Sprintf("target player %s is not in this game", mv.TargetPlayer))
	}
	if mv.TargetCard == "" {
		return reject("a target queen is required")
	}
	if _, ok := target.QueenByID(mv.TargetCard); !ok {
		return reject(fmt.Sprintf("queen %s is not held by %s", mv.TargetCard, mv.TargetPlayer))
	}
	return accept()
}

// cardsInHand resolves referenced ids against the hand, rejecting missing
// cards and duplicate references.
func cardsInHand(p *domain.Player, ids []string) ([]domain.Card, MoveResult) {
	cards := make([]domain.Card, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, reject(fmt.Sprintf("card %s referenced twice", id))
		}
		seen[id] = true
		card, ok := p.CardInHand(id)
		if !ok {
			return nil, reject(fmt.Sprintf("card %s is not in your hand", id))
		}
		cards = append(cards, card)
	}
	return cards, accept()
}

func (s *Service) deadlinePassed(iv *domain.Interrupt) bool {
	return iv.Deadline != 0 && s.nowMillis() >= iv.Deadline
}
