package app

import (
	"testing"

	"sleepingqueens/internal/domain"
)

func TestViewRedactsOtherHands(t *testing.T) {
	svc := newTestService(60)
	g := newPlayingGame(t, svc, "a", "b")

	v := ViewFor(g, "a")
	if len(v.Players) != 2 {
		t.Fatalf("players in view = %d, want 2", len(v.Players))
	}
	for _, ps := range v.Players {
		if ps.HandCount != domain.MaxHandSize {
			t.Fatalf("hand count for %s = %d, want %d", ps.ID, ps.HandCount, domain.MaxHandSize)
		}
		if ps.ID == "a" && len(ps.Hand) != domain.MaxHandSize {
			t.Fatalf("own hand = %d cards, want %d", len(ps.Hand), domain.MaxHandSize)
		}
		if ps.ID != "a" && ps.Hand != nil {
			t.Fatalf("foreign hand leaked for %s", ps.ID)
		}
	}
	if v.DrawCount != g.Supply.DrawCount() {
		t.Fatalf("draw count = %d, want %d", v.DrawCount, g.Supply.DrawCount())
	}
	if v.WinQueens != 5 || v.WinPoints != 50 {
		t.Fatalf("win thresholds = %d/%d, want 5/50 for two players", v.WinQueens, v.WinPoints)
	}

	// spectators see no hands at all
	sv := ViewFor(g, "watcher")
	for _, ps := range sv.Players {
		if ps.Hand != nil {
			t.Fatalf("spectator view leaked the hand of %s", ps.ID)
		}
	}
}

func TestViewCopiesAreDetached(t *testing.T) {
	svc := newTestService(61)
	g := newPlayingGame(t, svc, "a", "b")

	v := ViewFor(g, "a")
	originalID := g.SleepingQueens[0].ID
	v.SleepingQueens[0].ID = "tampered"
	if g.SleepingQueens[0].ID != originalID {
		t.Fatal("mutating a view must not reach the game state")
	}

	own := v.Players[0].Hand
	own[0].ID = "tampered"
	if g.PlayerByID("a").Hand[0].ID == "tampered" {
		t.Fatal("mutating a view hand must not reach the game state")
	}
}

func TestViewHidesAttackCardFromNonAttackers(t *testing.T) {
	svc := newTestService(62)
	g := newPlayingGame(t, svc, "a", "b")
	pa, pb := g.PlayerByID("a"), g.PlayerByID("b")
	held := takeQueen(t, g, pb, "moon")
	pa.Hand = []domain.Card{actionCard(domain.KindKnight, "knight-x")}
	pb.Hand = []domain.Card{actionCard(domain.KindDragon, "drag-x")}

	mustApply(t, svc, g, domain.Move{
		Type: domain.MovePlayKnight, PlayerID: "a",
		Cards: []string{"knight-x"}, TargetPlayer: "b", TargetCard: held.ID,
	})

	attackerView := ViewFor(g, "a")
	if attackerView.Interrupt == nil || attackerView.Interrupt.AttackCard != "knight-x" {
		t.Fatalf("attacker view interrupt = %+v, want the attack card visible", attackerView.Interrupt)
	}
	targetView := ViewFor(g, "b")
	if targetView.Interrupt == nil || targetView.Interrupt.AttackCard != "" {
		t.Fatalf("target view interrupt = %+v, want the attack card blanked", targetView.Interrupt)
	}
	if targetView.Interrupt.Kind != domain.InterruptKnightAttack || targetView.Interrupt.TargetID != "b" {
		t.Fatalf("target view interrupt = %+v", targetView.Interrupt)
	}
}

func TestViewShowsDiscardTop(t *testing.T) {
	svc := newTestService(63)
	g := newPlayingGame(t, svc, "a", "b")
	pa := g.PlayerByID("a")
	discarded := pa.Hand[0].ID
	mustApply(t, svc, g, domain.Move{
		Type: domain.MoveDiscard, PlayerID: "a", Cards: []string{discarded},
	})

	v := ViewFor(g, "b")
	if v.DiscardTop == nil || v.DiscardTop.ID != discarded {
		t.Fatalf("discard top = %+v, want %s", v.DiscardTop, discarded)
	}
	if v.DiscardCount != g.Supply.DiscardCount() {
		t.Fatalf("discard count = %d, want %d", v.DiscardCount, g.Supply.DiscardCount())
	}
}
