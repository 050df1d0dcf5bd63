package domain

// CurrentPlayer returns the player whose turn it is, or nil before the game
// has started.
func (g *Game) CurrentPlayer() *Player {
	return g.PlayerByID(g.CurrentTurn)
}

// ActingPlayerID returns the player expected to act next: the target of a
// pending interrupt, otherwise the turn holder.
func (g *Game) ActingPlayerID() string {
	if g.Interrupt != nil {
		return g.Interrupt.TargetID
	}
	return g.CurrentTurn
}

// IsCurrent reports whether the given player holds the turn.
func (g *Game) IsCurrent(playerID string) bool {
	return g.CurrentTurn != "" && g.CurrentTurn == playerID
}

// PlayerAt returns the player seated at the position, or nil.
func (g *Game) PlayerAt(position int) *Player {
	for _, p := range g.Players {
		if p.Position == position {
			return p
		}
	}
	return nil
}

// PlayerAtOffset counts clockwise from the player, with the player itself at
// offset 0. Offsets wrap around the table.
func (g *Game) PlayerAtOffset(from *Player, offset int) *Player {
	n := len(g.Players)
	if n == 0 || from == nil {
		return nil
	}
	pos := ((from.Position+offset)%n + n) % n
	return g.PlayerAt(pos)
}

// AdvanceTurn passes the turn to the next seat in position order. Removed
// seats are skipped implicitly because positions stay contiguous.
func (g *Game) AdvanceTurn() {
	cur := g.CurrentPlayer()
	if cur == nil {
		if len(g.Players) > 0 {
			g.CurrentTurn = g.Players[0].ID
		}
		return
	}
	next := g.PlayerAtOffset(cur, 1)
	if next != nil {
		g.CurrentTurn = next.ID
	}
}

// Reseat compacts player positions into 0..n-1 after a removal, preserving
// the relative order of the remaining seats.
func (g *Game) Reseat() {
	for i, p := range g.Players {
		p.Position = i
	}
}
