package app

import (
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"sleepingqueens/internal/domain"
)

// Service contains the game use-cases operating on domain state. It is the
// sole writer of a Game: transports submit moves and read snapshots.
type Service struct {
	rng *rand.Rand
	now func() time.Time

	// DefenseWindow is how long the target of a knight or potion attack
	// has to play the matching defense card.
	DefenseWindow time.Duration
}

// NewService constructs a Service with the provided rng and clock, or
// time-seeded/wall-clock defaults when nil.
func NewService(rng *rand.Rand, now func() time.Time) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		rng:           rng,
		now:           now,
		DefenseWindow: domain.DefaultDefenseWindowMillis * time.Millisecond,
	}
}

var (
	ErrGameStarted     = errors.New("game already started")
	ErrGameFull        = errors.New("game is full")
	ErrDuplicatePlayer = errors.New("player already in game")
	ErrTooFewPlayers   = errors.New("not enough players to start")
	ErrUnknownPlayer   = errors.New("player not found")
)

// NewGame creates an empty game in the waiting phase.
func (s *Service) NewGame(roomCode string) *domain.Game {
	return &domain.Game{
		ID:       uuid.NewString(),
		RoomCode: roomCode,
		Phase:    domain.PhaseWaiting,
	}
}

// AddPlayer seats a new player. Rejected once the game has started, when
// the table is full, or when the id is already seated.
func (s *Service) AddPlayer(g *domain.Game, id, name string) ([]Event, error) {
	if g.Phase != domain.PhaseWaiting {
		return nil, ErrGameStarted
	}
	if len(g.Players) >= domain.MaxPlayers {
		return nil, ErrGameFull
	}
	if g.PlayerByID(id) != nil {
		return nil, ErrDuplicatePlayer
	}

	p := &domain.Player{ID: id, Name: name, Position: len(g.Players)}
	g.Players = append(g.Players, p)
	g.Version++

	return []Event{{
		Kind:    EventPlayerJoined,
		Payload: PlayerJoinedPayload{PlayerID: p.ID, Name: p.Name, Position: p.Position},
	}}, nil
}

// RemovePlayer unseats a player, reindexing the remaining positions. During
// play their hand is discarded and their queens return to the sleeping
// pool; if the table drops below the minimum the game ends, with a lone
// remaining player winning by forfeit.
func (s *Service) RemovePlayer(g *domain.Game, id string) ([]Event, error) {
	p := g.PlayerByID(id)
	if p == nil {
		return nil, ErrUnknownPlayer
	}

	events := []Event{{Kind: EventPlayerLeft, Payload: PlayerLeftPayload{PlayerID: id}}}

	if g.Phase == domain.PhasePlaying {
		if iv := g.Interrupt; iv != nil && (iv.TargetID == id || iv.AttackerID == id) {
			g.Interrupt = nil
			// A dangling jester or rose follow-up ends the initiator's
			// turn; a fizzled attack leaves the attacker free to act again.
			if (iv.Kind == domain.InterruptJesterReveal || iv.Kind == domain.InterruptRoseBonus) &&
				iv.TargetID == id && !g.IsCurrent(id) {
				g.AdvanceTurn()
			}
		}
		if g.IsCurrent(id) {
			g.AdvanceTurn()
		}

		g.Supply.Discard(p.Hand...)
		p.Hand = nil
		for _, q := range p.Queens {
			g.ReturnQueenToPool(q)
		}
		p.Queens = nil
		p.RecomputeScore()
	}
	g.ClearStaged(id)

	for i, pl := range g.Players {
		if pl.ID == id {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			break
		}
	}
	g.Reseat()
	g.Version++

	if g.Phase == domain.PhasePlaying && len(g.Players) < domain.MinPlayers {
		g.Phase = domain.PhaseEnded
		g.Interrupt = nil
		if len(g.Players) == 1 {
			g.WinnerID = g.Players[0].ID
		}
		events = append(events, Event{
			Kind:    EventGameEnded,
			Payload: GameEndedPayload{WinnerID: g.WinnerID, Reason: EndReasonForfeit, Standings: standings(g)},
		})
	}
	return events, nil
}

// StartGame shuffles the draw deck, deals every player a full hand, wakes
// up the turn order and moves the game into the playing phase.
func (s *Service) StartGame(g *domain.Game) ([]Event, error) {
	if g.Phase != domain.PhaseWaiting {
		return nil, ErrGameStarted
	}
	if len(g.Players) < domain.MinPlayers {
		return nil, ErrTooFewPlayers
	}

	deck := domain.NewDrawDeck()
	s.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	g.Supply = domain.Supply{DrawPile: deck, DiscardPile: []domain.Card{}}
	g.SleepingQueens = domain.NewQueens()

	events := make([]Event, 0, len(g.Players)+1)
	for _, p := range g.Players {
		p.Hand = g.Supply.Draw(domain.MaxHandSize, s.rng)
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{PlayerID: p.ID, Hand: copyCards(p.Hand)},
			Recipients: []string{p.ID},
		})
	}

	g.Phase = domain.PhasePlaying
	g.CurrentTurn = g.Players[0].ID
	g.Version++

	events = append(events, Event{
		Kind:    EventGameStarted,
		Payload: GameStartedPayload{FirstTurn: g.CurrentTurn, QueenCount: len(g.SleepingQueens)},
	})
	return events, nil
}

func (s *Service) nowMillis() int64 {
	return s.now().UnixMilli()
}

func standings(g *domain.Game) []PlayerStanding {
	out := make([]PlayerStanding, 0, len(g.Players))
	for _, p := range g.Players {
		out = append(out, PlayerStanding{PlayerID: p.ID, Name: p.Name, Score: p.Score, Queens: len(p.Queens)})
	}
	return out
}

func copyCards(cards []domain.Card) []domain.Card {
	return append([]domain.Card(nil), cards...)
}
