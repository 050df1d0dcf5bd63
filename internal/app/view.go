package app

import "sleepingqueens/internal/domain"

// PlayerSummary is one seat as seen from a particular viewer. Hand is
// populated only for the viewer's own seat; everyone else gets a count.
type PlayerSummary struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Position  int           `json:"position"`
	HandCount int           `json:"hand_count"`
	Hand      []domain.Card `json:"hand,omitempty"`
	Queens    []domain.Card `json:"queens"`
	Score     int           `json:"score"`
}

// PlayerView is the client-facing snapshot of a game. Public zones appear
// in full, hidden zones as counts, and every slice is a copy so callers
// can never mutate engine state through a view.
type PlayerView struct {
	GameID         string              `json:"game_id"`
	RoomCode       string              `json:"room_code"`
	Phase          domain.Phase        `json:"phase"`
	Players        []PlayerSummary     `json:"players"`
	CurrentTurn    string              `json:"current_turn"`
	SleepingQueens []domain.Card       `json:"sleeping_queens"`
	DrawCount      int                 `json:"draw_count"`
	DiscardCount   int                 `json:"discard_count"`
	DiscardTop     *domain.Card        `json:"discard_top,omitempty"`
	WinQueens      int                 `json:"win_queens"`
	WinPoints      int                 `json:"win_points"`
	WinnerID       string              `json:"winner_id,omitempty"`
	Version        uint64              `json:"version"`
	Interrupt      *domain.Interrupt   `json:"interrupt,omitempty"`
	Staged         map[string][]string `json:"staged,omitempty"`
}

// ViewFor projects the full-information game onto what one player may see.
func ViewFor(g *domain.Game, viewerID string) PlayerView {
	players := make([]PlayerSummary, 0, len(g.Players))
	for _, p := range g.Players {
		ps := PlayerSummary{
			ID:        p.ID,
			Name:      p.Name,
			Position:  p.Position,
			HandCount: len(p.Hand),
			Queens:    copyCards(p.Queens),
			Score:     p.Score,
		}
		if p.ID == viewerID {
			ps.Hand = copyCards(p.Hand)
		}
		players = append(players, ps)
	}

	req := domain.WinRequirementFor(len(g.Players))
	view := PlayerView{
		GameID:         g.ID,
		RoomCode:       g.RoomCode,
		Phase:          g.Phase,
		Players:        players,
		CurrentTurn:    g.CurrentTurn,
		SleepingQueens: copyCards(g.SleepingQueens),
		DrawCount:      g.Supply.DrawCount(),
		DiscardCount:   g.Supply.DiscardCount(),
		WinQueens:      req.Queens,
		WinPoints:      req.Points,
		WinnerID:       g.WinnerID,
		Version:        g.Version,
	}

	if n := g.Supply.DiscardCount(); n > 0 {
		top := g.Supply.DiscardPile[n-1]
		view.DiscardTop = &top
	}
	if iv := g.Interrupt; iv != nil {
		ivc := *iv
		if iv.RevealedCard != nil {
			c := *iv.RevealedCard
			ivc.RevealedCard = &c
		}
		// which hand card backs the attack is the attacker's business
		if iv.AttackerID != viewerID {
			ivc.AttackCard = ""
		}
		view.Interrupt = &ivc
	}
	if len(g.Staged) > 0 {
		staged := make(map[string][]string, len(g.Staged))
		for id, cards := range g.Staged {
			staged[id] = append([]string(nil), cards...)
		}
		view.Staged = staged
	}
	return view
}
