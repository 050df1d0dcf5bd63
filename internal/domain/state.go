package domain

// Phase represents the lifecycle stage of a game.
type Phase string

const (
	// PhaseWaiting is the pre-game state where players can join.
	PhaseWaiting Phase = "waiting"
	// PhasePlaying is the active game state where moves are played.
	PhasePlaying Phase = "playing"
	// PhaseEnded is the state after a winner has been determined.
	PhaseEnded Phase = "ended"
)

// Gameplay constants fixed by the rules.
const (
	MaxHandSize = 5
	MinPlayers  = 2
	MaxPlayers  = 5

	// DefaultDefenseWindowMillis is how long the target of a knight or
	// potion attack has to play the matching defense card.
	DefaultDefenseWindowMillis = 5000
)

// Player holds the state of a participant in the game.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"` // 0-indexed seat, contiguous
	Hand     []Card `json:"hand"`
	Queens   []Card `json:"queens"` // awakened queens in acquisition order
	Score    int    `json:"score"`  // always the sum of queen points
}

// HasCard reports whether the player's hand contains the card id.
func (p *Player) HasCard(id string) bool {
	_, ok := p.CardInHand(id)
	return ok
}

// CardInHand looks up a card in the player's hand by id.
func (p *Player) CardInHand(id string) (Card, bool) {
	for _, c := range p.Hand {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// RemoveFromHand takes the named cards out of the player's hand. It removes
// nothing and reports false unless every id is present.
func (p *Player) RemoveFromHand(ids []string) ([]Card, bool) {
	removed := make([]Card, 0, len(ids))
	remaining := append([]Card(nil), p.Hand...)
	for _, id := range ids {
		found := -1
		for i, c := range remaining {
			if c.ID == id {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, false
		}
		removed = append(removed, remaining[found])
		remaining = append(remaining[:found], remaining[found+1:]...)
	}
	p.Hand = remaining
	return removed, true
}

// QueenByID looks up an awakened queen by card id.
func (p *Player) QueenByID(id string) (Card, bool) {
	for _, q := range p.Queens {
		if q.ID == id {
			return q, true
		}
	}
	return Card{}, false
}

// RemoveQueen takes a queen out of the player's collection by id.
func (p *Player) RemoveQueen(id string) (Card, bool) {
	for i, q := range p.Queens {
		if q.ID == id {
			p.Queens = append(p.Queens[:i], p.Queens[i+1:]...)
			return q, true
		}
	}
	return Card{}, false
}

// HoldsKind reports whether the player's hand contains a card of the kind.
func (p *Player) HoldsKind(kind CardKind) bool {
	for _, c := range p.Hand {
		if c.Kind == kind {
			return true
		}
	}
	return false
}

// InterruptKind identifies the transient overlay state a game can be in.
type InterruptKind string

const (
	// InterruptKnightAttack is an undefended knight play awaiting a dragon.
	InterruptKnightAttack InterruptKind = "knight_attack"
	// InterruptPotionAttack is an undefended potion play awaiting a wand.
	InterruptPotionAttack InterruptKind = "potion_attack"
	// InterruptJesterReveal waits for the reveal winner to pick a queen.
	InterruptJesterReveal InterruptKind = "jester_reveal"
	// InterruptRoseBonus grants one extra wake to the rose queen's waker.
	InterruptRoseBonus InterruptKind = "rose_bonus"
)

// Interrupt is the single transient sub-state overlay of a game. A nil
// Interrupt means normal turn-taking. At most one overlay exists at a time
// and it must be resolved before normal play resumes.
type Interrupt struct {
	Kind         InterruptKind `json:"kind"`
	AttackerID   string        `json:"attacker_id,omitempty"`
	TargetID     string        `json:"target_id"`
	TargetQueen  string        `json:"target_queen,omitempty"`
	AttackCard   string        `json:"attack_card,omitempty"` // stays in the attacker's hand until resolution
	CreatedAt    int64         `json:"created_at,omitempty"`  // unix millis
	Deadline     int64         `json:"deadline,omitempty"`    // unix millis, attacks only
	RevealedCard *Card         `json:"revealed_card,omitempty"`
}

// IsAttack reports whether the interrupt is a knight or potion attack.
func (iv *Interrupt) IsAttack() bool {
	return iv != nil && (iv.Kind == InterruptKnightAttack || iv.Kind == InterruptPotionAttack)
}

// Game holds authoritative state for one game instance. It is mutated
// exclusively through the app service; transport and persistence layers
// submit moves and read snapshots.
type Game struct {
	ID             string              `json:"id"`
	RoomCode       string              `json:"room_code"`
	Phase          Phase               `json:"phase"`
	Players        []*Player           `json:"players"` // ordered by Position
	CurrentTurn    string              `json:"current_turn"`
	SleepingQueens []Card              `json:"sleeping_queens"`
	Supply         Supply              `json:"supply"`
	WinnerID       string              `json:"winner_id,omitempty"`
	Version        uint64              `json:"version"`
	Interrupt      *Interrupt          `json:"interrupt,omitempty"`
	Staged         map[string][]string `json:"staged,omitempty"` // player id -> card ids marked in progress
}

// PlayerByID returns the player with the given id, or nil.
func (g *Game) PlayerByID(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// SleepingQueenByID looks up a queen in the sleeping pool by card id.
func (g *Game) SleepingQueenByID(id string) (Card, bool) {
	for _, q := range g.SleepingQueens {
		if q.ID == id {
			return q, true
		}
	}
	return Card{}, false
}

// RemoveSleepingQueen takes a queen out of the sleeping pool by id.
func (g *Game) RemoveSleepingQueen(id string) (Card, bool) {
	for i, q := range g.SleepingQueens {
		if q.ID == id {
			g.SleepingQueens = append(g.SleepingQueens[:i], g.SleepingQueens[i+1:]...)
			return q, true
		}
	}
	return Card{}, false
}

// ReturnQueenToPool puts a queen back into the sleeping pool, asleep.
func (g *Game) ReturnQueenToPool(q Card) {
	q.Awake = false
	g.SleepingQueens = append(g.SleepingQueens, q)
}

// ClearStaged drops any staged-card markers for the player.
func (g *Game) ClearStaged(playerID string) {
	if g.Staged != nil {
		delete(g.Staged, playerID)
	}
}
