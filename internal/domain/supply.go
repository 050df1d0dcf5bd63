package domain

import "math/rand"

// Supply owns the draw and discard piles. The last element of each pile is
// its top: the next card drawn, and the most recently discarded card.
type Supply struct {
	DrawPile    []Card `json:"draw_pile"`
	DiscardPile []Card `json:"discard_pile"`
}

// Draw removes up to n cards from the top of the draw pile. When the draw
// pile runs out mid-draw the discard pile is reshuffled into a fresh draw
// pile and drawing continues. Fewer than n cards are returned only when
// both piles are exhausted; callers must handle partial results.
func (s *Supply) Draw(n int, rng *rand.Rand) []Card {
	drawn := make([]Card, 0, n)
	for len(drawn) < n {
		if len(s.DrawPile) == 0 {
			s.Reshuffle(rng)
			if len(s.DrawPile) == 0 {
				break
			}
		}
		top := len(s.DrawPile) - 1
		drawn = append(drawn, s.DrawPile[top])
		s.DrawPile = s.DrawPile[:top]
	}
	return drawn
}

// Discard places cards on top of the discard pile in the order given, so
// the last argument ends up on top.
func (s *Supply) Discard(cards ...Card) {
	s.DiscardPile = append(s.DiscardPile, cards...)
}

// Reshuffle turns the discard pile into a new shuffled draw pile. Calling
// it with an empty discard pile is a no-op.
func (s *Supply) Reshuffle(rng *rand.Rand) {
	if len(s.DiscardPile) == 0 {
		return
	}
	s.DrawPile = append(s.DrawPile, s.DiscardPile...)
	s.DiscardPile = s.DiscardPile[:0]
	rng.Shuffle(len(s.DrawPile), func(i, j int) {
		s.DrawPile[i], s.DrawPile[j] = s.DrawPile[j], s.DrawPile[i]
	})
}

// DrawCount reports how many cards remain in the draw pile.
func (s *Supply) DrawCount() int { return len(s.DrawPile) }

// DiscardCount reports how many cards sit in the discard pile.
func (s *Supply) DiscardCount() int { return len(s.DiscardPile) }
