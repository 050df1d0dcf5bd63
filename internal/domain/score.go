package domain

// WinRequirement is the threshold a player must reach to win outright.
// Meeting either the queen count or the point total is sufficient.
type WinRequirement struct {
	Queens int
	Points int
}

// WinRequirementFor returns the win threshold for a table of the given size.
// Smaller tables need more queens because fewer players split the pool.
func WinRequirementFor(playerCount int) WinRequirement {
	if playerCount <= 3 {
		return WinRequirement{Queens: 5, Points: 50}
	}
	return WinRequirement{Queens: 4, Points: 40}
}

// RecomputeScore recalculates the player's score from their queens.
func (p *Player) RecomputeScore() {
	total := 0
	for _, q := range p.Queens {
		total += q.Points
	}
	p.Score = total
}

// MeetsWin reports whether the player satisfies the win requirement.
func (p *Player) MeetsWin(req WinRequirement) bool {
	return len(p.Queens) >= req.Queens || p.Score >= req.Points
}

// FindWinner returns the first player, in seat order, who meets the win
// requirement for the current table size. Returns nil if nobody has won.
func (g *Game) FindWinner() *Player {
	req := WinRequirementFor(len(g.Players))
	for _, p := range g.Players {
		if p.MeetsWin(req) {
			return p
		}
	}
	return nil
}

// LeadingPlayer ranks players for end-of-pool scoring: highest score wins,
// ties break to the most queens, then to the earliest seat.
func (g *Game) LeadingPlayer() *Player {
	var best *Player
	for _, p := range g.Players {
		if best == nil {
			best = p
			continue
		}
		switch {
		case p.Score > best.Score:
			best = p
		case p.Score == best.Score && len(p.Queens) > len(best.Queens):
			best = p
		}
	}
	return best
}

// ResolveQueenConflict enforces that no player holds both the cat queen and
// the dog queen. If acquiring gained would pair them, the gained queen goes
// back to the sleeping pool and the method reports false.
func (g *Game) ResolveQueenConflict(p *Player, gained Card) bool {
	var rival string
	switch gained.Name {
	case QueenCat:
		rival = QueenDog
	case QueenDog:
		rival = QueenCat
	default:
		p.Queens = append(p.Queens, gained)
		return true
	}
	for _, q := range p.Queens {
		if q.Name == rival {
			g.ReturnQueenToPool(gained)
			return false
		}
	}
	p.Queens = append(p.Queens, gained)
	return true
}
