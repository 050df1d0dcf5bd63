package app

import (
	"fmt"

	"sleepingqueens/internal/domain"
)

// ApplyMove validates and resolves a single move. Rejected moves leave the
// game untouched; accepted moves bump the version exactly once. The caller
// serializes access to a game, so no locking happens here.
func (s *Service) ApplyMove(g *domain.Game, mv domain.Move) (MoveResult, []Event) {
	res := s.validateMove(g, mv)
	if !res.Valid {
		return res, nil
	}
	res, events := s.resolveMove(g, mv)
	if res.Valid {
		g.Version++
	}
	return res, events
}

// resolveMove dispatches an already-validated move to its resolver.
// Resolvers trust validation: any lookup that still fails is reported as an
// internal error and mutates nothing.
func (s *Service) resolveMove(g *domain.Game, mv domain.Move) (MoveResult, []Event) {
	actor := g.PlayerByID(mv.PlayerID)
	if actor == nil {
		return rejectInvariant(fmt.Sprintf("validated player %s disappeared", mv.PlayerID)), nil
	}

	if iv := g.Interrupt; iv != nil {
		switch iv.Kind {
		case domain.InterruptKnightAttack:
			if mv.Type == domain.MovePlayDragon {
				return s.resolveBlock(g, actor, mv)
			}
			return s.resolveAllow(g, mv, mv.PlayerID != iv.TargetID)
		case domain.InterruptPotionAttack:
			if mv.Type == domain.MovePlayWand {
				return s.resolveBlock(g, actor, mv)
			}
			return s.resolveAllow(g, mv, mv.PlayerID != iv.TargetID)
		case domain.InterruptJesterReveal:
			return s.resolveJesterSelection(g, actor, mv)
		case domain.InterruptRoseBonus:
			return s.resolveBonusWake(g, actor, mv)
		}
		return rejectInvariant(fmt.Sprintf("unknown interrupt kind %q", g.Interrupt.Kind)), nil
	}

	switch mv.Type {
	case domain.MovePlayKing:
		return s.resolveKing(g, actor, mv)
	case domain.MovePlayKnight:
		return s.resolveKnight(g, actor, mv)
	case domain.MovePlayPotion:
		return s.resolvePotion(g, actor, mv)
	case domain.MovePlayJester:
		return s.resolveJester(g, actor, mv)
	case domain.MovePlayMath, domain.MoveDiscard:
		return s.resolveDiscard(g, actor, mv)
	case domain.MoveStageCard:
		return s.resolveStage(g, actor, mv)
	}
	return rejectInvariant(fmt.Sprintf("no resolver for move type %q", mv.Type)), nil
}

// resolveKing wakes a sleeping queen. Waking the rose queen opens the
// one-time bonus pick instead of ending the turn.
func (s *Service) resolveKing(g *domain.Game, actor *domain.Player, mv domain.Move) (MoveResult, []Event) {
	if _, ok := g.SleepingQueenByID(mv.TargetCard); !ok {
		return rejectInvariant(fmt.Sprintf("queen %s missing from the sleeping pool", mv.TargetCard)), nil
	}
	played, ok := actor.RemoveFromHand(mv.Cards)
	if !ok {
		return rejectInvariant("validated king left the hand"), nil
	}
	queen, _ := g.RemoveSleepingQueen(mv.TargetCard)
	g.Supply.Discard(played...)

	events, kept := s.wakeQueen(g, actor, queen, false)
	events = append(events, s.refill(g, actor)...)

	if kept && queen.Name == domain.QueenRose && s.roseBonusAvailable(g) {
		s.openRoseBonus(g, actor)
		events = append(events, Event{Kind: EventRoseBonus, Payload: RoseBonusPayload{PlayerID: actor.ID}})
		return MoveResult{Valid: true, Message: "rose queen bonus: choose another sleeping queen"}, events
	}

	events = append(events, s.completeMove(g, actor, mv.Type, played)...)
	return accept(), events
}

// resolveBonusWake services the rose queen bonus: one extra wake at no card
// cost, after which the interrupted turn ends normally.
func (s *Service) resolveBonusWake(g *domain.Game, actor *domain.Player, mv domain.Move) (MoveResult, []Event) {
	if _, ok := g.SleepingQueenByID(mv.TargetCard); !ok {
		return rejectInvariant(fmt.Sprintf("queen %s missing from the sleeping pool", mv.TargetCard)), nil
	}
	queen, _ := g.RemoveSleepingQueen(mv.TargetCard)
	g.Interrupt = nil

	events, _ := s.wakeQueen(g, actor, queen, true)
	events = append(events, s.completeMove(g, actor, mv.Type, nil)...)
	return accept(), events
}

// resolveJester flips the top card of the draw pile. An action card goes to
// the jester player's hand and the same player keeps the turn; a number
// card counts that many seats forward and hands the player it lands on a
// free queen pick.
func (s *Service) resolveJester(g *domain.Game, actor *domain.Player, mv domain.Move) (MoveResult, []Event) {
	played, ok := actor.RemoveFromHand(mv.Cards)
	if !ok {
		return rejectInvariant("validated jester left the hand"), nil
	}
	g.Supply.Discard(played...)

	revealed := g.Supply.Draw(1, s.rng)
	if len(revealed) == 0 {
		// cannot happen while the jester itself sits on the discard pile,
		// but Draw's contract allows running dry
		events := s.refill(g, actor)
		events = append(events, s.completeMove(g, actor, mv.Type, played)...)
		return accept(), events
	}
	card := revealed[0]

	if card.IsNumber() {
		g.Supply.Discard(card)
		target := g.PlayerAtOffset(actor, card.Value)
		g.Interrupt = &domain.Interrupt{
			Kind:         domain.InterruptJesterReveal,
			AttackerID:   actor.ID,
			TargetID:     target.ID,
			CreatedAt:    s.nowMillis(),
			RevealedCard: &card,
		}
		events := []Event{{
			Kind:    EventJesterRevealed,
			Payload: JesterRevealedPayload{PlayerID: actor.ID, Card: card, TargetID: target.ID},
		}}
		events = append(events, s.refill(g, actor)...)
		g.ClearStaged(actor.ID)
		return MoveResult{Valid: true, Message: fmt.Sprintf("%s picks a sleeping queen", target.Name)}, events
	}

	// action card: keep it, same player plays again
	actor.Hand = append(actor.Hand, card)
	events := []Event{
		{
			Kind:    EventJesterRevealed,
			Payload: JesterRevealedPayload{PlayerID: actor.ID, Card: card, Kept: true},
		},
		{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{PlayerID: actor.ID, Hand: copyCards(actor.Hand)},
			Recipients: []string{actor.ID},
		},
		{
			Kind:    EventMoveApplied,
			Payload: MoveAppliedPayload{PlayerID: actor.ID, Type: mv.Type, Cards: copyCards(played), NextTurn: g.CurrentTurn},
		},
	}
	g.ClearStaged(actor.ID)
	return MoveResult{Valid: true, Message: "revealed an action card: play again"}, events
}

// resolveJesterSelection services the queen pick granted by a jester number
// reveal. The wake follows king rules, rose bonus included, but the turn
// that ends is the jester player's.
func (s *Service) resolveJesterSelection(g *domain.Game, actor *domain.Player, mv domain.Move) (MoveResult, []Event) {
	if _, ok := g.SleepingQueenByID(mv.TargetCard); !ok {
		return rejectInvariant(fmt.Sprintf("queen %s missing from the sleeping pool", mv.TargetCard)), nil
	}
	queen, _ := g.RemoveSleepingQueen(mv.TargetCard)
	g.Interrupt = nil

	events, kept := s.wakeQueen(g, actor, queen, false)

	if kept && queen.Name == domain.QueenRose && s.roseBonusAvailable(g) {
		s.openRoseBonus(g, actor)
		events = append(events, Event{Kind: EventRoseBonus, Payload: RoseBonusPayload{PlayerID: actor.ID}})
		return MoveResult{Valid: true, Message: "rose queen bonus: choose another sleeping queen"}, events
	}

	events = append(events, s.completeMove(g, actor, mv.Type, nil)...)
	return accept(), events
}

// resolveDiscard covers the discard and equation moves: the named cards go
// to the discard pile and the hand refills. The defensive potion play ends
// up here too, as a plain single-card discard.
func (s *Service) resolveDiscard(g *domain.Game, actor *domain.Player, mv domain.Move) (MoveResult, []Event) {
	played, ok := actor.RemoveFromHand(mv.Cards)
	if !ok {
		return rejectInvariant("validated cards left the hand"), nil
	}
	g.Supply.Discard(played...)

	events := s.refill(g, actor)
	events = append(events, s.completeMove(g, actor, mv.Type, played)...)
	return accept(), events
}

// resolveStage records which hand cards the player has marked as in
// progress. Purely informational: no discard, no draw, no turn change.
func (s *Service) resolveStage(g *domain.Game, actor *domain.Player, mv domain.Move) (MoveResult, []Event) {
	if g.Staged == nil {
		g.Staged = make(map[string][]string)
	}
	staged := append([]string(nil), mv.Cards...)
	g.Staged[actor.ID] = staged
	return accept(), []Event{{
		Kind:    EventCardsStaged,
		Payload: CardsStagedPayload{PlayerID: actor.ID, CardIDs: staged},
	}}
}

// wakeQueen moves a queen from the sleeping pool into the player's
// collection, enforcing the cat/dog rivalry. Reports whether the player
// kept the queen.
func (s *Service) wakeQueen(g *domain.Game, p *domain.Player, queen domain.Card, bonus bool) ([]Event, bool) {
	queen.Awake = true
	events := []Event{{
		Kind:    EventQueenWoken,
		Payload: QueenWokenPayload{PlayerID: p.ID, Queen: queen, Bonus: bonus},
	}}
	kept := g.ResolveQueenConflict(p, queen)
	if !kept {
		events = append(events, Event{
			Kind:    EventQueenSlept,
			Payload: QueenSleptPayload{PlayerID: p.ID, Queen: queen, Reason: SleptByConflict},
		})
	}
	p.RecomputeScore()
	return events, kept
}

func (s *Service) roseBonusAvailable(g *domain.Game) bool {
	return len(g.SleepingQueens) > 0 && g.FindWinner() == nil
}

func (s *Service) openRoseBonus(g *domain.Game, actor *domain.Player) {
	g.Interrupt = &domain.Interrupt{
		Kind:      domain.InterruptRoseBonus,
		TargetID:  actor.ID,
		CreatedAt: s.nowMillis(),
	}
}

// refill draws the player back up to a full hand and sends them the new
// hand privately. Short draws happen only when both piles are dry.
func (s *Service) refill(g *domain.Game, p *domain.Player) []Event {
	need := domain.MaxHandSize - len(p.Hand)
	if need <= 0 {
		return nil
	}
	drawn := g.Supply.Draw(need, s.rng)
	if len(drawn) == 0 {
		return nil
	}
	p.Hand = append(p.Hand, drawn...)
	return []Event{{
		Kind:       EventHandDealt,
		Payload:    HandDealtPayload{PlayerID: p.ID, Hand: copyCards(p.Hand)},
		Recipients: []string{p.ID},
	}}
}

// completeMove finishes a resolved move: the turn passes, the table learns
// what was played, end conditions are checked and the mover's staged
// markers clear.
func (s *Service) completeMove(g *domain.Game, actor *domain.Player, moveType domain.MoveType, played []domain.Card) []Event {
	g.AdvanceTurn()
	events := []Event{{
		Kind: EventMoveApplied,
		Payload: MoveAppliedPayload{
			PlayerID: actor.ID,
			Type:     moveType,
			Cards:    copyCards(played),
			NextTurn: g.CurrentTurn,
		},
	}}
	events = append(events, s.checkWin(g)...)
	g.ClearStaged(actor.ID)
	return events
}

// checkWin ends the game when a player meets the table's threshold, or
// when the sleeping pool empties and the leader takes it.
func (s *Service) checkWin(g *domain.Game) []Event {
	if g.Phase != domain.PhasePlaying {
		return nil
	}
	winner := g.FindWinner()
	reason := EndReasonThreshold
	if winner == nil {
		if len(g.SleepingQueens) > 0 {
			return nil
		}
		winner = g.LeadingPlayer()
		reason = EndReasonPoolEmpty
	}
	g.Phase = domain.PhaseEnded
	g.WinnerID = winner.ID
	g.Interrupt = nil
	g.Staged = nil
	return []Event{{
		Kind:    EventGameEnded,
		Payload: GameEndedPayload{WinnerID: winner.ID, Reason: reason, Standings: standings(g)},
	}}
}
