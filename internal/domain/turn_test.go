package domain

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

func tableOf(n int) *Game {
	g := &Game{Phase: PhasePlaying}
	for i := 0; i < n; i++ {
		g.Players = append(g.Players, &Player{ID: fmt.Sprintf("p%d", i), Position: i})
	}
	g.CurrentTurn = g.Players[0].ID
	return g
}

func TestAdvanceTurnWraps(t *testing.T) {
	g := tableOf(3)
	want := []string{"p1", "p2", "p0", "p1"}
	for i, id := range want {
		g.AdvanceTurn()
		if g.CurrentTurn != id {
			t.Fatalf("advance %d: current = %s, want %s", i+1, g.CurrentTurn, id)
		}
	}
}

func TestAdvanceTurnFullCycle(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(MinPlayers, MaxPlayers).Draw(rt, "players")
		start := rapid.IntRange(0, n-1).Draw(rt, "start")
		g := tableOf(n)
		g.CurrentTurn = g.Players[start].ID

		seen := make(map[string]bool)
		for i := 0; i < n; i++ {
			if seen[g.CurrentTurn] {
				rt.Fatalf("player %s repeated within one cycle", g.CurrentTurn)
			}
			seen[g.CurrentTurn] = true
			g.AdvanceTurn()
		}
		if g.CurrentTurn != g.Players[start].ID {
			rt.Fatalf("after %d advances current = %s, want %s", n, g.CurrentTurn, g.Players[start].ID)
		}
	})
}

func TestPlayerAtOffset(t *testing.T) {
	g := tableOf(4)
	tests := []struct {
		from   int
		offset int
		want   string
	}{
		{from: 0, offset: 0, want: "p0"},
		{from: 0, offset: 1, want: "p1"},
		{from: 3, offset: 1, want: "p0"},
		{from: 1, offset: 4, want: "p1"},
		{from: 2, offset: 7, want: "p1"},
	}
	for _, tt := range tests {
		got := g.PlayerAtOffset(g.Players[tt.from], tt.offset)
		if got == nil || got.ID != tt.want {
			t.Errorf("PlayerAtOffset(p%d, %d) = %v, want %s", tt.from, tt.offset, got, tt.want)
		}
	}
}

func TestIsCurrent(t *testing.T) {
	g := tableOf(2)
	if !g.IsCurrent("p0") {
		t.Fatal("p0 should be current")
	}
	if g.IsCurrent("p1") {
		t.Fatal("p1 should not be current")
	}
	g.CurrentTurn = ""
	if g.IsCurrent("") {
		t.Fatal("empty id must never be current")
	}
}

func TestReseat(t *testing.T) {
	g := tableOf(3)
	// drop the middle seat
	g.Players = append(g.Players[:1], g.Players[2:]...)
	g.Reseat()
	if g.Players[0].Position != 0 || g.Players[1].Position != 1 {
		t.Fatalf("positions after reseat = %d,%d, want 0,1", g.Players[0].Position, g.Players[1].Position)
	}
	if g.Players[1].ID != "p2" {
		t.Fatalf("relative order lost: second seat = %s, want p2", g.Players[1].ID)
	}
}
