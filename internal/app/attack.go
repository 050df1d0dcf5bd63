package app

import (
	"fmt"

	"sleepingqueens/internal/domain"
)

// resolveKnight declares a steal. A target without a dragon in hand loses
// the queen immediately; otherwise a defense window opens and the knight
// stays in the attacker's hand until the window resolves.
func (s *Service) resolveKnight(g *domain.Game, actor *domain.Player, mv domain.Move) (MoveResult, []Event) {
	target := g.PlayerByID(mv.TargetPlayer)
	if target == nil {
		return rejectInvariant(fmt.Sprintf("validated target %s disappeared", mv.TargetPlayer)), nil
	}
	if _, ok := target.QueenByID(mv.TargetCard); !ok {
		return rejectInvariant(fmt.Sprintf("queen %s no longer held by %s", mv.TargetCard, mv.TargetPlayer)), nil
	}

	if target.HoldsKind(domain.KindDragon) {
		return s.declareAttack(g, domain.InterruptKnightAttack, actor, target, mv)
	}

	played, ok := actor.RemoveFromHand(mv.Cards)
	if !ok {
		return rejectInvariant("validated knight left the hand"), nil
	}
	queen, _ := target.RemoveQueen(mv.TargetCard)
	g.Supply.Discard(played...)

	events, _ := s.stealQueen(g, actor, target, queen)
	events = append(events, s.refill(g, actor)...)
	events = append(events, s.completeMove(g, actor, mv.Type, played)...)
	return accept(), events
}

// resolvePotion puts a collected queen back to sleep, defended by a wand
// the way a knight is defended by a dragon. Without a target the potion is
// simply discarded.
func (s *Service) resolvePotion(g *domain.Game, actor *domain.Player, mv domain.Move) (MoveResult, []Event) {
	if mv.TargetPlayer == "" && mv.TargetCard == "" {
		return s.resolveDiscard(g, actor, mv)
	}
	target := g.PlayerByID(mv.TargetPlayer)
	if target == nil {
		return rejectInvariant(fmt.Sprintf("validated target %s disappeared", mv.TargetPlayer)), nil
	}
	if _, ok := target.QueenByID(mv.TargetCard); !ok {
		return rejectInvariant(fmt.Sprintf("queen %s no longer held by %s", mv.TargetCard, mv.TargetPlayer)), nil
	}

	if target.HoldsKind(domain.KindWand) {
		return s.declareAttack(g, domain.InterruptPotionAttack, actor, target, mv)
	}

	played, ok := actor.RemoveFromHand(mv.Cards)
	if !ok {
		return rejectInvariant("validated potion left the hand"), nil
	}
	queen, _ := target.RemoveQueen(mv.TargetCard)
	g.Supply.Discard(played...)

	events := s.sleepQueen(g, target, queen)
	events = append(events, s.refill(g, actor)...)
	events = append(events, s.completeMove(g, actor, mv.Type, played)...)
	return accept(), events
}

// declareAttack opens the defense window. The attack card is not discarded
// yet: a block or the resolution discards it from the attacker's hand.
func (s *Service) declareAttack(g *domain.Game, kind domain.InterruptKind, actor, target *domain.Player, mv domain.Move) (MoveResult, []Event) {
	now := s.nowMillis()
	g.Interrupt = &domain.Interrupt{
		Kind:        kind,
		AttackerID:  actor.ID,
		TargetID:    target.ID,
		TargetQueen: mv.TargetCard,
		AttackCard:  mv.Cards[0],
		CreatedAt:   now,
		Deadline:    now + s.DefenseWindow.Milliseconds(),
	}

	defense := domain.KindDragon
	if kind == domain.InterruptPotionAttack {
		defense = domain.KindWand
	}
	res := MoveResult{
		Valid:            true,
		Message:          fmt.Sprintf("%s may play a %s to block", target.Name, defense),
		RequiresResponse: true,
	}
	return res, []Event{{
		Kind: EventAttackDeclared,
		Payload: AttackDeclaredPayload{
			Kind:       kind,
			AttackerID: actor.ID,
			TargetID:   target.ID,
			QueenID:    mv.TargetCard,
			Deadline:   g.Interrupt.Deadline,
		},
	}}
}

// resolveBlock cancels the pending attack: the defense card and the attack
// card are both discarded, both hands refill, and the attacker's turn ends
// with no queen moving anywhere.
func (s *Service) resolveBlock(g *domain.Game, defender *domain.Player, mv domain.Move) (MoveResult, []Event) {
	iv := g.Interrupt
	attacker := g.PlayerByID(iv.AttackerID)
	if attacker == nil {
		return rejectInvariant(fmt.Sprintf("pending attack references missing attacker %s", iv.AttackerID)), nil
	}
	defense, ok := defender.RemoveFromHand(mv.Cards)
	if !ok {
		return rejectInvariant("validated defense card left the hand"), nil
	}
	attack, ok := attacker.RemoveFromHand([]string{iv.AttackCard})
	if !ok {
		defender.Hand = append(defender.Hand, defense...)
		return rejectInvariant(fmt.Sprintf("attack card %s missing from the attacker's hand", iv.AttackCard)), nil
	}
	g.Supply.Discard(attack...)
	g.Supply.Discard(defense...)
	g.Interrupt = nil

	events := s.refill(g, attacker)
	events = append(events, s.refill(g, defender)...)

	g.AdvanceTurn()
	events = append(events, Event{
		Kind: EventAttackBlocked,
		Payload: AttackBlockedPayload{
			Kind:        iv.Kind,
			AttackerID:  iv.AttackerID,
			DefenderID:  defender.ID,
			DefenseCard: defense[0],
			NextTurn:    g.CurrentTurn,
		},
	})
	g.ClearStaged(attacker.ID)
	g.ClearStaged(defender.ID)
	return accept(), events
}

// resolveAllow completes the pending attack with its full effect: the
// queen transfers on a knight, goes back to sleep on a potion. forced
// marks a deadline-driven resolution.
func (s *Service) resolveAllow(g *domain.Game, mv domain.Move, forced bool) (MoveResult, []Event) {
	iv := g.Interrupt
	if !iv.IsAttack() {
		return rejectInvariant("no pending attack to resolve"), nil
	}
	attacker := g.PlayerByID(iv.AttackerID)
	target := g.PlayerByID(iv.TargetID)
	if attacker == nil || target == nil {
		return rejectInvariant("pending attack references a missing player"), nil
	}
	queen, ok := target.RemoveQueen(iv.TargetQueen)
	if !ok {
		return rejectInvariant(fmt.Sprintf("queen %s no longer held by %s", iv.TargetQueen, iv.TargetID)), nil
	}
	attack, ok := attacker.RemoveFromHand([]string{iv.AttackCard})
	if !ok {
		target.Queens = append(target.Queens, queen)
		return rejectInvariant(fmt.Sprintf("attack card %s missing from the attacker's hand", iv.AttackCard)), nil
	}
	g.Supply.Discard(attack...)
	g.Interrupt = nil

	var events []Event
	if iv.Kind == domain.InterruptKnightAttack {
		events, _ = s.stealQueen(g, attacker, target, queen)
	} else {
		events = s.sleepQueen(g, target, queen)
	}
	events = append(events, s.refill(g, attacker)...)

	g.AdvanceTurn()
	events = append(events, Event{
		Kind: EventAttackResolved,
		Payload: AttackResolvedPayload{
			Kind:       iv.Kind,
			AttackerID: iv.AttackerID,
			TargetID:   iv.TargetID,
			Queen:      queen,
			Forced:     forced,
			NextTurn:   g.CurrentTurn,
		},
	})
	events = append(events, s.checkWin(g)...)
	g.ClearStaged(attacker.ID)
	g.ClearStaged(target.ID)
	return accept(), events
}

// stealQueen moves a queen into the attacker's collection, enforcing the
// cat/dog rivalry and rescoring both sides. Reports whether the attacker
// kept the queen.
func (s *Service) stealQueen(g *domain.Game, attacker, target *domain.Player, queen domain.Card) ([]Event, bool) {
	events := []Event{{
		Kind:    EventQueenStolen,
		Payload: QueenStolenPayload{AttackerID: attacker.ID, TargetID: target.ID, Queen: queen},
	}}
	kept := g.ResolveQueenConflict(attacker, queen)
	if !kept {
		events = append(events, Event{
			Kind:    EventQueenSlept,
			Payload: QueenSleptPayload{PlayerID: attacker.ID, Queen: queen, Reason: SleptByConflict},
		})
	}
	attacker.RecomputeScore()
	target.RecomputeScore()
	return events, kept
}

// sleepQueen returns a collected queen to the sleeping pool.
func (s *Service) sleepQueen(g *domain.Game, target *domain.Player, queen domain.Card) []Event {
	g.ReturnQueenToPool(queen)
	target.RecomputeScore()
	return []Event{{
		Kind:    EventQueenSlept,
		Payload: QueenSleptPayload{PlayerID: target.ID, Queen: queen, Reason: SleptByPotion},
	}}
}

// SweepExpiredAttack force-resolves a pending attack whose defense window
// has lapsed. It is the scheduler-driven twin of an explicit allow move
// and a no-op while nothing is pending or the deadline is still running.
func (s *Service) SweepExpiredAttack(g *domain.Game) (bool, []Event) {
	iv := g.Interrupt
	if g.Phase != domain.PhasePlaying || !iv.IsAttack() || !s.deadlinePassed(iv) {
		return false, nil
	}
	mv := domain.Move{PlayerID: iv.TargetID, Type: domain.MoveAllowKnightAttack}
	if iv.Kind == domain.InterruptPotionAttack {
		mv.Type = domain.MoveAllowPotionAttack
	}
	res, events := s.resolveAllow(g, mv, true)
	if !res.Valid {
		return false, events
	}
	g.Version++
	return true, events
}
