package app

import (
	"math/rand"
	"testing"
	"time"

	"sleepingqueens/internal/domain"
)

// newClockedService returns a service whose clock reads through the pointer,
// so tests can move time past the defense deadline.
func newClockedService(seed int64, now *time.Time) *Service {
	return NewService(rand.New(rand.NewSource(seed)), func() time.Time { return *now })
}

func TestKnightStealsImmediatelyWithoutDragon(t *testing.T) {
	svc := newTestService(30)
	g := newPlayingGame(t, svc, "a", "b")
	pa, pb := g.PlayerByID("a"), g.PlayerByID("b")
	stolen := takeQueen(t, g, pb, "pancake")
	pa.Hand = []domain.Card{
		actionCard(domain.KindKnight, "knight-x"),
		numberCard(1, "k-1"), numberCard(2, "k-2"), numberCard(3, "k-3"), numberCard(4, "k-4"),
	}
	pb.Hand = []domain.Card{numberCard(5, "b-5"), numberCard(6, "b-6")}

	mustReject(t, svc, g, domain.Move{
		Type: domain.MovePlayKnight, PlayerID: "a",
		Cards: []string{"knight-x"}, TargetPlayer: "a", TargetCard: stolen.ID,
	}, "cannot target yourself")
	mustReject(t, svc, g, domain.Move{
		Type: domain.MovePlayKnight, PlayerID: "a",
		Cards: []string{"knight-x"}, TargetPlayer: "b", TargetCard: "queen-cake",
	}, "not held by")

	res, evs := mustApply(t, svc, g, domain.Move{
		Type: domain.MovePlayKnight, PlayerID: "a",
		Cards: []string{"knight-x"}, TargetPlayer: "b", TargetCard: stolen.ID,
	})
	if res.RequiresResponse {
		t.Fatal("steal against a dragonless target must resolve immediately")
	}
	if g.Interrupt != nil {
		t.Fatalf("interrupt = %+v, want none", g.Interrupt)
	}
	if _, ok := pa.QueenByID(stolen.ID); !ok {
		t.Fatal("queen should now belong to the attacker")
	}
	if pa.Score != 15 || pb.Score != 0 {
		t.Fatalf("scores = %d/%d, want 15/0", pa.Score, pb.Score)
	}
	if len(pa.Hand) != domain.MaxHandSize {
		t.Fatalf("attacker hand = %d, want %d", len(pa.Hand), domain.MaxHandSize)
	}
	if g.CurrentTurn != "b" {
		t.Fatalf("current turn = %s, want b", g.CurrentTurn)
	}
	theft := findEvent(t, evs, EventQueenStolen).Payload.(QueenStolenPayload)
	if theft.AttackerID != "a" || theft.TargetID != "b" || theft.Queen.ID != stolen.ID {
		t.Fatalf("stolen payload = %+v", theft)
	}
}

func TestKnightDefenseWindowAndDragonBlock(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	svc := newClockedService(31, &now)
	g := newPlayingGame(t, svc, "a", "b")
	pa, pb := g.PlayerByID("a"), g.PlayerByID("b")
	held := takeQueen(t, g, pb, "moon")
	pa.Hand = []domain.Card{
		actionCard(domain.KindKnight, "knight-1"),
		actionCard(domain.KindKnight, "knight-2"),
		numberCard(3, "k-3"), numberCard(4, "k-4"), numberCard(5, "k-5"),
	}
	pb.Hand = []domain.Card{
		actionCard(domain.KindDragon, "drag-x"),
		numberCard(6, "b-6"), numberCard(7, "b-7"), numberCard(8, "b-8"), numberCard(9, "b-9"),
	}

	res, evs := mustApply(t, svc, g, domain.Move{
		Type: domain.MovePlayKnight, PlayerID: "a",
		Cards: []string{"knight-1"}, TargetPlayer: "b", TargetCard: held.ID,
	})
	if !res.RequiresResponse {
		t.Fatal("attack against a dragon holder must open a defense window")
	}
	iv := g.Interrupt
	if iv == nil || iv.Kind != domain.InterruptKnightAttack {
		t.Fatalf("interrupt = %+v, want knight attack", iv)
	}
	if want := now.UnixMilli() + domain.DefaultDefenseWindowMillis; iv.Deadline != want {
		t.Fatalf("deadline = %d, want %d", iv.Deadline, want)
	}
	if !pa.HasCard("knight-1") {
		t.Fatal("knight stays in hand until the window resolves")
	}
	if _, ok := pb.QueenByID(held.ID); !ok {
		t.Fatal("queen stays with the target until the window resolves")
	}
	declared := findEvent(t, evs, EventAttackDeclared).Payload.(AttackDeclaredPayload)
	if declared.TargetID != "b" || declared.Deadline != iv.Deadline {
		t.Fatalf("declared payload = %+v", declared)
	}

	// no second attack while one is pending
	deadline := iv.Deadline
	mustReject(t, svc, g, domain.Move{
		Type: domain.MovePlayKnight, PlayerID: "a",
		Cards: []string{"knight-2"}, TargetPlayer: "b", TargetCard: held.ID,
	}, "must be resolved first")
	if g.Interrupt == nil || g.Interrupt.Deadline != deadline {
		t.Fatal("pending attack must survive a rejected second attack")
	}

	_, evs = mustApply(t, svc, g, domain.Move{
		Type: domain.MovePlayDragon, PlayerID: "b", Cards: []string{"drag-x"},
	})
	if g.Interrupt != nil {
		t.Fatal("block should clear the pending attack")
	}
	if _, ok := pb.QueenByID(held.ID); !ok {
		t.Fatal("blocked steal must leave the queen with the target")
	}
	for _, id := range []string{"knight-1", "drag-x"} {
		found := false
		for _, c := range g.Supply.DiscardPile {
			if c.ID == id {
				found = true
			}
		}
		if !found {
			t.Fatalf("card %s should be in the discard pile", id)
		}
	}
	if len(pa.Hand) != domain.MaxHandSize || len(pb.Hand) != domain.MaxHandSize {
		t.Fatalf("hands = %d/%d, want both refilled to %d", len(pa.Hand), len(pb.Hand), domain.MaxHandSize)
	}
	if g.CurrentTurn != "b" {
		t.Fatalf("current turn = %s, want b", g.CurrentTurn)
	}
	blocked := findEvent(t, evs, EventAttackBlocked).Payload.(AttackBlockedPayload)
	if blocked.DefenderID != "b" || blocked.DefenseCard.ID != "drag-x" || blocked.NextTurn != "b" {
		t.Fatalf("blocked payload = %+v", blocked)
	}

	// the resolved attack cannot be serviced twice
	mustReject(t, svc, g, domain.Move{
		Type: domain.MovePlayDragon, PlayerID: "b", Cards: []string{"any"},
	}, "no knight attack to block")
	mustReject(t, svc, g, domain.Move{
		Type: domain.MoveAllowKnightAttack, PlayerID: "b",
	}, "no knight attack to resolve")
}

func TestTargetAllowsKnightAttack(t *testing.T) {
	now := time.UnixMilli(2_000_000)
	svc := newClockedService(32, &now)
	g := newPlayingGame(t, svc, "a", "b")
	pa, pb := g.PlayerByID("a"), g.PlayerByID("b")
	held := takeQueen(t, g, pb, "peacock")
	pa.Hand = []domain.Card{actionCard(domain.KindKnight, "knight-x")}
	pb.Hand = []domain.Card{actionCard(domain.KindDragon, "drag-x")}

	mustApply(t, svc, g, domain.Move{
		Type: domain.MovePlayKnight, PlayerID: "a",
		Cards: []string{"knight-x"}, TargetPlayer: "b", TargetCard: held.ID,
	})
	_, evs := mustApply(t, svc, g, domain.Move{
		Type: domain.MoveAllowKnightAttack, PlayerID: "b",
	})
	if _, ok := pa.QueenByID(held.ID); !ok {
		t.Fatal("allowed steal must transfer the queen")
	}
	resolved := findEvent(t, evs, EventAttackResolved).Payload.(AttackResolvedPayload)
	if resolved.Forced {
		t.Fatal("an explicit allow by the target is not forced")
	}
	if resolved.NextTurn != "b" || g.CurrentTurn != "b" {
		t.Fatalf("next turn = %s/%s, want b", resolved.NextTurn, g.CurrentTurn)
	}
	if !pb.HasCard("drag-x") {
		t.Fatal("the unused dragon stays in the defender's hand")
	}
}

func TestThirdPartyForcesResolutionAfterDeadline(t *testing.T) {
	now := time.UnixMilli(3_000_000)
	svc := newClockedService(33, &now)
	g := newPlayingGame(t, svc, "a", "b", "c")
	pa, pb := g.PlayerByID("a"), g.PlayerByID("b")
	held := takeQueen(t, g, pb, "ladybug")
	pa.Hand = []domain.Card{actionCard(domain.KindKnight, "knight-x")}
	pb.Hand = []domain.Card{actionCard(domain.KindDragon, "drag-x")}

	mustApply(t, svc, g, domain.Move{
		Type: domain.MovePlayKnight, PlayerID: "a",
		Cards: []string{"knight-x"}, TargetPlayer: "b", TargetCard: held.ID,
	})
	mustReject(t, svc, g, domain.Move{
		Type: domain.MoveAllowKnightAttack, PlayerID: "c",
	}, "before the deadline")

	now = now.Add(6 * time.Second)
	_, evs := mustApply(t, svc, g, domain.Move{
		Type: domain.MoveAllowKnightAttack, PlayerID: "c",
	})
	resolved := findEvent(t, evs, EventAttackResolved).Payload.(AttackResolvedPayload)
	if !resolved.Forced {
		t.Fatal("post-deadline resolution by a bystander is forced")
	}
	if _, ok := pa.QueenByID(held.ID); !ok {
		t.Fatal("forced resolution must complete the steal")
	}
	if g.CurrentTurn != "b" {
		t.Fatalf("current turn = %s, want b", g.CurrentTurn)
	}
}

func TestSweepExpiredAttack(t *testing.T) {
	now := time.UnixMilli(4_000_000)
	svc := newClockedService(34, &now)
	g := newPlayingGame(t, svc, "a", "b")
	pa, pb := g.PlayerByID("a"), g.PlayerByID("b")
	held := takeQueen(t, g, pb, "sunflower")
	pa.Hand = []domain.Card{actionCard(domain.KindKnight, "knight-x")}
	pb.Hand = []domain.Card{actionCard(domain.KindDragon, "drag-x")}

	mustApply(t, svc, g, domain.Move{
		Type: domain.MovePlayKnight, PlayerID: "a",
		Cards: []string{"knight-x"}, TargetPlayer: "b", TargetCard: held.ID,
	})

	fired, evs := svc.SweepExpiredAttack(g)
	if fired || len(evs) != 0 {
		t.Fatal("sweep must not fire before the deadline")
	}
	if g.Interrupt == nil {
		t.Fatal("pending attack must survive an early sweep")
	}

	now = now.Add(6 * time.Second)
	before := g.Version
	fired, evs = svc.SweepExpiredAttack(g)
	if !fired {
		t.Fatal("sweep should fire after the deadline")
	}
	if g.Version != before+1 {
		t.Fatalf("version = %d, want %d", g.Version, before+1)
	}
	if g.Interrupt != nil {
		t.Fatal("sweep should clear the pending attack")
	}
	resolved := findEvent(t, evs, EventAttackResolved).Payload.(AttackResolvedPayload)
	if !resolved.Forced {
		t.Fatal("sweep resolution is forced")
	}
	if _, ok := pa.QueenByID(held.ID); !ok {
		t.Fatal("sweep must complete the steal")
	}

	fired, _ = svc.SweepExpiredAttack(g)
	if fired {
		t.Fatal("a second sweep has nothing to resolve")
	}
}

func TestPotionWindowBlockedByWand(t *testing.T) {
	now := time.UnixMilli(5_000_000)
	svc := newClockedService(35, &now)
	g := newPlayingGame(t, svc, "a", "b")
	pa, pb := g.PlayerByID("a"), g.PlayerByID("b")
	held := takeQueen(t, g, pb, "ladybug")
	pa.Hand = []domain.Card{actionCard(domain.KindPotion, "potion-x")}
	pb.Hand = []domain.Card{actionCard(domain.KindWand, "wand-x")}

	res, _ := mustApply(t, svc, g, domain.Move{
		Type: domain.MovePlayPotion, PlayerID: "a",
		Cards: []string{"potion-x"}, TargetPlayer: "b", TargetCard: held.ID,
	})
	if !res.RequiresResponse {
		t.Fatal("potion against a wand holder must open a defense window")
	}
	if g.Interrupt == nil || g.Interrupt.Kind != domain.InterruptPotionAttack {
		t.Fatalf("interrupt = %+v, want potion attack", g.Interrupt)
	}

	mustReject(t, svc, g, domain.Move{
		Type: domain.MovePlayDragon, PlayerID: "b", Cards: []string{"wand-x"},
	}, "a potion attack must be resolved first")

	_, evs := mustApply(t, svc, g, domain.Move{
		Type: domain.MovePlayWand, PlayerID: "b", Cards: []string{"wand-x"},
	})
	if g.Interrupt != nil {
		t.Fatal("block should clear the pending attack")
	}
	if _, ok := pb.QueenByID(held.ID); !ok {
		t.Fatal("blocked potion must leave the queen collected")
	}
	blocked := findEvent(t, evs, EventAttackBlocked).Payload.(AttackBlockedPayload)
	if blocked.Kind != domain.InterruptPotionAttack || blocked.DefenseCard.ID != "wand-x" {
		t.Fatalf("blocked payload = %+v", blocked)
	}
	if g.CurrentTurn != "b" {
		t.Fatalf("current turn = %s, want b", g.CurrentTurn)
	}
}

func TestPotionSleepsQueenImmediately(t *testing.T) {
	svc := newTestService(36)
	g := newPlayingGame(t, svc, "a", "b")
	pa, pb := g.PlayerByID("a"), g.PlayerByID("b")
	held := takeQueen(t, g, pb, "sunflower")
	poolBefore := len(g.SleepingQueens)
	pa.Hand = []domain.Card{actionCard(domain.KindPotion, "potion-x")}
	pb.Hand = []domain.Card{numberCard(2, "b-2")}

	res, evs := mustApply(t, svc, g, domain.Move{
		Type: domain.MovePlayPotion, PlayerID: "a",
		Cards: []string{"potion-x"}, TargetPlayer: "b", TargetCard: held.ID,
	})
	if res.RequiresResponse || g.Interrupt != nil {
		t.Fatal("potion against a wandless target must resolve immediately")
	}
	slept, ok := g.SleepingQueenByID(held.ID)
	if !ok {
		t.Fatal("queen should be back in the sleeping pool")
	}
	if slept.Awake {
		t.Fatal("slept queen must not stay awake")
	}
	if len(g.SleepingQueens) != poolBefore+1 {
		t.Fatalf("pool size = %d, want %d", len(g.SleepingQueens), poolBefore+1)
	}
	if pb.Score != 0 || len(pb.Queens) != 0 {
		t.Fatalf("target score = %d with %d queens, want 0 and 0", pb.Score, len(pb.Queens))
	}
	payload := findEvent(t, evs, EventQueenSlept).Payload.(QueenSleptPayload)
	if payload.Reason != SleptByPotion || payload.PlayerID != "b" {
		t.Fatalf("slept payload = %+v", payload)
	}
	if g.CurrentTurn != "b" {
		t.Fatalf("current turn = %s, want b", g.CurrentTurn)
	}
}

func TestPotionWithoutTargetIsADiscard(t *testing.T) {
	svc := newTestService(37)
	g := newPlayingGame(t, svc, "a", "b")
	pa := g.PlayerByID("a")
	pa.Hand = []domain.Card{actionCard(domain.KindPotion, "potion-x"), numberCard(2, "a-2")}

	_, evs := mustApply(t, svc, g, domain.Move{
		Type: domain.MovePlayPotion, PlayerID: "a", Cards: []string{"potion-x"},
	})
	if g.Interrupt != nil {
		t.Fatal("a defensive potion opens no window")
	}
	if pa.HasCard("potion-x") {
		t.Fatal("potion should be discarded")
	}
	applied := findEvent(t, evs, EventMoveApplied).Payload.(MoveAppliedPayload)
	if applied.Type != domain.MovePlayPotion || applied.NextTurn != "b" {
		t.Fatalf("applied payload = %+v", applied)
	}
}

func TestOnlyTargetMayDefend(t *testing.T) {
	now := time.UnixMilli(6_000_000)
	svc := newClockedService(38, &now)
	g := newPlayingGame(t, svc, "a", "b", "c")
	pa, pb, pc := g.PlayerByID("a"), g.PlayerByID("b"), g.PlayerByID("c")
	held := takeQueen(t, g, pb, "moon")
	pa.Hand = []domain.Card{actionCard(domain.KindKnight, "knight-x")}
	pb.Hand = []domain.Card{actionCard(domain.KindDragon, "drag-b")}
	pc.Hand = []domain.Card{actionCard(domain.KindDragon, "drag-c")}

	mustApply(t, svc, g, domain.Move{
		Type: domain.MovePlayKnight, PlayerID: "a",
		Cards: []string{"knight-x"}, TargetPlayer: "b", TargetCard: held.ID,
	})
	mustReject(t, svc, g, domain.Move{
		Type: domain.MovePlayDragon, PlayerID: "c", Cards: []string{"drag-c"},
	}, "only the attacked player may defend")
	mustReject(t, svc, g, domain.Move{
		Type: domain.MovePlayKnight, PlayerID: "b",
		Cards: []string{"drag-b"}, TargetPlayer: "a", TargetCard: "x",
	}, "must be resolved first")
}

func TestForcedStealCanEndGame(t *testing.T) {
	now := time.UnixMilli(7_000_000)
	svc := newClockedService(39, &now)
	g := newPlayingGame(t, svc, "a", "b")
	pa, pb := g.PlayerByID("a"), g.PlayerByID("b")
	for _, name := range []string{"heart", "peacock", "ladybug"} {
		takeQueen(t, g, pa, name) // 45 points
	}
	held := takeQueen(t, g, pb, "rainbow")
	pa.Hand = []domain.Card{actionCard(domain.KindKnight, "knight-x")}
	pb.Hand = []domain.Card{actionCard(domain.KindDragon, "drag-x")}

	mustApply(t, svc, g, domain.Move{
		Type: domain.MovePlayKnight, PlayerID: "a",
		Cards: []string{"knight-x"}, TargetPlayer: "b", TargetCard: held.ID,
	})
	now = now.Add(6 * time.Second)
	fired, evs := svc.SweepExpiredAttack(g)
	if !fired {
		t.Fatal("sweep should fire after the deadline")
	}
	if g.Phase != domain.PhaseEnded || g.WinnerID != "a" {
		t.Fatalf("phase = %s winner = %s, want ended and a", g.Phase, g.WinnerID)
	}
	if pa.Score != 50 {
		t.Fatalf("score = %d, want 50", pa.Score)
	}
	ended := findEvent(t, evs, EventGameEnded).Payload.(GameEndedPayload)
	if ended.Reason != EndReasonThreshold {
		t.Fatalf("end reason = %s, want %s", ended.Reason, EndReasonThreshold)
	}
}
