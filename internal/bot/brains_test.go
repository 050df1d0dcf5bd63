package bot

import (
	"math/rand"
	"testing"

	"sleepingqueens/internal/app"
	"sleepingqueens/internal/domain"
)

func newTestService(seed int64) *app.Service {
	return app.NewService(rand.New(rand.NewSource(seed)), nil)
}

func newPlayingGame(t *testing.T, svc *app.Service, ids ...string) *domain.Game {
	t.Helper()
	g := svc.NewGame("BOTROOM")
	for _, id := range ids {
		if _, err := svc.AddPlayer(g, id, "player "+id); err != nil {
			t.Fatalf("add player %s: %v", id, err)
		}
	}
	if _, err := svc.StartGame(g); err != nil {
		t.Fatalf("start game: %v", err)
	}
	return g
}

func actionCard(kind domain.CardKind, id string) domain.Card {
	return domain.Card{ID: id, Kind: kind}
}

func numberCard(value int, id string) domain.Card {
	return domain.Card{ID: id, Kind: domain.KindNumber, Value: value}
}

// takeQueen moves a queen from the pool straight into a player's
// collection to set up mid-game situations.
func takeQueen(t *testing.T, g *domain.Game, p *domain.Player, name string) domain.Card {
	t.Helper()
	q, ok := g.RemoveSleepingQueen("queen-" + name)
	if !ok {
		t.Fatalf("queen %s not in the sleeping pool", name)
	}
	q.Awake = true
	p.Queens = append(p.Queens, q)
	p.RecomputeScore()
	return q
}

// mustChoose asks the brain for a move and submits it to the rules engine,
// failing the test if the engine rejects it.
func mustChoose(t *testing.T, b Brain, svc *app.Service, g *domain.Game, playerID string) domain.Move {
	t.Helper()
	p := g.PlayerByID(playerID)
	if p == nil {
		t.Fatalf("player %s not in game", playerID)
	}
	mv, err := b.ChooseMove(g, p)
	if err != nil {
		t.Fatalf("ChooseMove for %s: %v", playerID, err)
	}
	mv.PlayerID = playerID
	res, _ := svc.ApplyMove(g, mv)
	if !res.Valid {
		t.Fatalf("%s by %s rejected: %s", mv.Type, playerID, res.Error)
	}
	return mv
}

func allBrains() map[string]Brain {
	return map[string]Brain{
		"easy":  &EasyBot{},
		"smart": &SmartBot{},
		"hard":  &HardBot{},
	}
}

func TestBrainsWakeAQueenWhenHoldingAKing(t *testing.T) {
	for name, b := range allBrains() {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(1)
			g := newPlayingGame(t, svc, "bot", "opp")
			pb := g.PlayerByID("bot")
			pb.Hand = []domain.Card{
				actionCard(domain.KindKing, "king-x"),
				actionCard(domain.KindKnight, "knight-x"),
				actionCard(domain.KindJester, "jest-x"),
				numberCard(2, "n-2"), numberCard(9, "n-9"),
			}

			mv := mustChoose(t, b, svc, g, "bot")
			if mv.Type != domain.MovePlayKing {
				t.Fatalf("move = %s, want %s", mv.Type, domain.MovePlayKing)
			}
			if len(pb.Queens) != 1 {
				t.Fatalf("bot queens = %d, want 1", len(pb.Queens))
			}
		})
	}
}

func TestGreedyBrainsPickTheRichestQueen(t *testing.T) {
	for _, name := range []string{"smart", "hard"} {
		t.Run(name, func(t *testing.T) {
			b := allBrains()[name]
			svc := newTestService(2)
			g := newPlayingGame(t, svc, "bot", "opp")
			pb := g.PlayerByID("bot")
			pb.Hand = []domain.Card{
				actionCard(domain.KindKing, "king-x"),
				numberCard(1, "n-1"), numberCard(4, "n-4"), numberCard(6, "n-6"), numberCard(9, "n-9"),
			}

			mv := mustChoose(t, b, svc, g, "bot")
			if mv.Type != domain.MovePlayKing {
				t.Fatalf("move = %s, want %s", mv.Type, domain.MovePlayKing)
			}
			if pb.Queens[0].Points != 20 {
				t.Fatalf("picked queen worth %d, want 20", pb.Queens[0].Points)
			}
		})
	}
}

func TestHuntingBrainsStealWithoutAKing(t *testing.T) {
	for _, name := range []string{"smart", "hard"} {
		t.Run(name, func(t *testing.T) {
			b := allBrains()[name]
			svc := newTestService(3)
			g := newPlayingGame(t, svc, "bot", "opp")
			pb := g.PlayerByID("bot")
			po := g.PlayerByID("opp")
			pb.Hand = []domain.Card{
				actionCard(domain.KindKnight, "knight-x"),
				numberCard(1, "n-1"), numberCard(4, "n-4"), numberCard(6, "n-6"), numberCard(9, "n-9"),
			}
			// no dragon in the defender's hand, so the steal lands at once
			po.Hand = []domain.Card{
				numberCard(2, "o-2"), numberCard(3, "o-3"), numberCard(5, "o-5"),
				numberCard(7, "o-7"), numberCard(8, "o-8"),
			}
			takeQueen(t, g, po, "cake")

			mv := mustChoose(t, b, svc, g, "bot")
			if mv.Type != domain.MovePlayKnight {
				t.Fatalf("move = %s, want %s", mv.Type, domain.MovePlayKnight)
			}
			if mv.TargetPlayer != "opp" {
				t.Fatalf("target = %s, want opp", mv.TargetPlayer)
			}
			if len(pb.Queens) != 1 || pb.Queens[0].Name != "cake" {
				t.Fatalf("bot queens = %+v, want the cake queen", pb.Queens)
			}
		})
	}
}

func TestDefenseDecisions(t *testing.T) {
	dragon := actionCard(domain.KindDragon, "drag-x")
	wand := actionCard(domain.KindWand, "wand-x")
	filler := []domain.Card{
		numberCard(2, "f-2"), numberCard(3, "f-3"),
		numberCard(5, "f-5"), numberCard(7, "f-7"),
	}

	tests := []struct {
		name     string
		brain    Brain
		attack   domain.CardKind
		defense  *domain.Card
		wantType domain.MoveType
	}{
		{"easy never spends a dragon", &EasyBot{}, domain.KindKnight, &dragon, domain.MoveAllowKnightAttack},
		{"smart blocks a knight", &SmartBot{}, domain.KindKnight, &dragon, domain.MovePlayDragon},
		{"hard blocks a potion", &HardBot{}, domain.KindPotion, &wand, domain.MovePlayWand},
		{"smart concedes without a wand", &SmartBot{}, domain.KindPotion, nil, domain.MoveAllowPotionAttack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(4)
			g := newPlayingGame(t, svc, "atk", "bot")
			pa := g.PlayerByID("atk")
			pb := g.PlayerByID("bot")

			attackID := "attack-x"
			pa.Hand = append([]domain.Card{actionCard(tt.attack, attackID)}, filler...)
			pb.Hand = append([]domain.Card(nil), filler...)
			if tt.defense != nil {
				pb.Hand = append(pb.Hand, *tt.defense)
			}
			queen := takeQueen(t, g, pb, "moon")

			attackType := domain.MovePlayKnight
			if tt.attack == domain.KindPotion {
				attackType = domain.MovePlayPotion
			}
			res, _ := svc.ApplyMove(g, domain.Move{
				Type: attackType, PlayerID: "atk",
				Cards: []string{attackID}, TargetPlayer: "bot", TargetCard: queen.ID,
			})
			if !res.Valid || !res.RequiresResponse {
				t.Fatalf("attack did not open a window: %+v", res)
			}

			mv := mustChoose(t, tt.brain, svc, g, "bot")
			if mv.Type != tt.wantType {
				t.Fatalf("defense move = %s, want %s", mv.Type, tt.wantType)
			}
			if g.Interrupt != nil {
				t.Fatal("window should be closed after the decision")
			}
		})
	}
}

func TestBrainsHandleJesterReveal(t *testing.T) {
	for name, b := range allBrains() {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(5)
			g := newPlayingGame(t, svc, "bot", "opp")
			pb := g.PlayerByID("bot")
			pb.Hand = []domain.Card{
				actionCard(domain.KindJester, "jest-x"),
				numberCard(1, "n-1"), numberCard(3, "n-3"), numberCard(6, "n-6"), numberCard(8, "n-8"),
			}
			// a revealed 2 counts back around to the jester player
			g.Supply.DrawPile = append(g.Supply.DrawPile, numberCard(2, "reveal-2"))

			res, _ := svc.ApplyMove(g, domain.Move{
				Type: domain.MovePlayJester, PlayerID: "bot", Cards: []string{"jest-x"},
			})
			if !res.Valid {
				t.Fatalf("jester rejected: %s", res.Error)
			}
			if g.Interrupt == nil || g.Interrupt.Kind != domain.InterruptJesterReveal || g.Interrupt.TargetID != "bot" {
				t.Fatalf("interrupt = %+v, want jester reveal back at bot", g.Interrupt)
			}

			mv := mustChoose(t, b, svc, g, "bot")
			if mv.Type != domain.MovePlayJester {
				t.Fatalf("pick move = %s, want %s", mv.Type, domain.MovePlayJester)
			}
			if len(pb.Queens) != 1 {
				t.Fatalf("bot queens = %d, want 1 after the pick", len(pb.Queens))
			}
		})
	}
}

func TestBrainsHandleRoseBonusPick(t *testing.T) {
	for name, b := range allBrains() {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(6)
			g := newPlayingGame(t, svc, "bot", "opp")
			pb := g.PlayerByID("bot")
			pb.Hand = []domain.Card{
				actionCard(domain.KindKing, "king-x"),
				numberCard(1, "n-1"), numberCard(3, "n-3"), numberCard(6, "n-6"), numberCard(8, "n-8"),
			}

			res, _ := svc.ApplyMove(g, domain.Move{
				Type: domain.MovePlayKing, PlayerID: "bot",
				Cards: []string{"king-x"}, TargetCard: "queen-rose",
			})
			if !res.Valid {
				t.Fatalf("king rejected: %s", res.Error)
			}
			if g.Interrupt == nil || g.Interrupt.Kind != domain.InterruptRoseBonus {
				t.Fatalf("interrupt = %+v, want rose bonus", g.Interrupt)
			}

			mv := mustChoose(t, b, svc, g, "bot")
			if mv.Type != domain.MovePlayKing {
				t.Fatalf("bonus move = %s, want %s", mv.Type, domain.MovePlayKing)
			}
			if len(pb.Queens) != 2 {
				t.Fatalf("bot queens = %d, want rose plus the bonus", len(pb.Queens))
			}
		})
	}
}

func TestEasyBotsFinishAGame(t *testing.T) {
	svc := newTestService(42)
	g := newPlayingGame(t, svc, "bot-a", "bot-b")
	brains := map[string]Brain{"bot-a": &EasyBot{}, "bot-b": &EasyBot{}}

	for i := 0; i < 2000 && g.Phase == domain.PhasePlaying; i++ {
		actor := g.ActingPlayerID()
		mv, err := brains[actor].ChooseMove(g, g.PlayerByID(actor))
		if err != nil {
			t.Fatalf("move %d: ChooseMove for %s: %v", i, actor, err)
		}
		mv.PlayerID = actor
		res, _ := svc.ApplyMove(g, mv)
		if !res.Valid {
			t.Fatalf("move %d: %s by %s rejected: %s", i, mv.Type, actor, res.Error)
		}
	}

	if g.Phase != domain.PhaseEnded {
		t.Fatal("game still running after 2000 bot moves")
	}
	if g.WinnerID == "" {
		t.Fatal("finished game has no winner")
	}
}

func TestMixedBrainsPlayLegally(t *testing.T) {
	for _, seed := range []int64{3, 11, 29} {
		svc := newTestService(seed)
		g := newPlayingGame(t, svc, "bot-e", "bot-s", "bot-h")
		brains := map[string]Brain{
			"bot-e": &EasyBot{},
			"bot-s": &SmartBot{},
			"bot-h": &HardBot{},
		}

		moves := 0
		for ; moves < 2000 && g.Phase == domain.PhasePlaying; moves++ {
			actor := g.ActingPlayerID()
			mv, err := brains[actor].ChooseMove(g, g.PlayerByID(actor))
			if err != nil {
				t.Fatalf("seed %d move %d: ChooseMove for %s: %v", seed, moves, actor, err)
			}
			mv.PlayerID = actor
			res, _ := svc.ApplyMove(g, mv)
			if !res.Valid {
				t.Fatalf("seed %d move %d: %s by %s rejected: %s", seed, moves, mv.Type, actor, res.Error)
			}
		}

		if g.Phase == domain.PhaseEnded && g.WinnerID == "" {
			t.Fatalf("seed %d: finished game has no winner", seed)
		}
		t.Logf("seed %d: %d moves, phase %s", seed, moves, g.Phase)
	}
}

func TestNewAgentDefaultsToSmart(t *testing.T) {
	agent, err := NewAgent("bot-unknown")
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	if _, ok := agent.Strategy.(*SmartBot); !ok {
		t.Fatalf("strategy = %T, want *SmartBot", agent.Strategy)
	}
	if agent.Name != "bot-unknown" {
		t.Fatalf("name = %s, want the user id fallback", agent.Name)
	}
}

func TestAgentActRequiresASeat(t *testing.T) {
	svc := newTestService(7)
	g := newPlayingGame(t, svc, "a", "b")
	agent, err := NewAgent("bot-ghost")
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	if _, err := agent.Act(g); err == nil {
		t.Fatal("expected an error for an unseated agent")
	}
}
