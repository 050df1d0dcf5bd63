package domain

import "fmt"

// CardKind identifies the variant of a card.
type CardKind string

const (
	KindNumber CardKind = "number"
	KindKing   CardKind = "king"
	KindKnight CardKind = "knight"
	KindDragon CardKind = "dragon"
	KindWand   CardKind = "wand"
	KindPotion CardKind = "potion"
	KindJester CardKind = "jester"
	KindQueen  CardKind = "queen"
)

// Card is a single card in the game. Cards are value objects identified by
// a stable ID; two cards are the same card exactly when their IDs match.
type Card struct {
	ID     string   `json:"id"`
	Kind   CardKind `json:"kind"`
	Value  int      `json:"value,omitempty"`  // 1..10 for number cards
	Name   string   `json:"name,omitempty"`   // queens only
	Points int      `json:"points,omitempty"` // queens only
	Awake  bool     `json:"awake,omitempty"`  // queens only
}

// IsQueen reports whether the card is a queen.
func (c Card) IsQueen() bool {
	return c.Kind == KindQueen
}

// IsNumber reports whether the card is a number card.
func (c Card) IsNumber() bool {
	return c.Kind == KindNumber
}

// String renders a short human-readable form for logs.
func (c Card) String() string {
	switch c.Kind {
	case KindNumber:
		return fmt.Sprintf("number(%d)", c.Value)
	case KindQueen:
		return fmt.Sprintf("queen(%s,%d)", c.Name, c.Points)
	default:
		return string(c.Kind)
	}
}

// Deck composition. The draw deck holds 67 cards; the 12 queens start in
// the sleeping pool and never enter the draw or discard piles.
const (
	KingCount   = 8
	KnightCount = 4
	DragonCount = 3
	WandCount   = 3
	PotionCount = 4
	JesterCount = 5

	// NumberCopiesPerValue is how many copies of each value 1..10 exist.
	NumberCopiesPerValue = 4

	DrawDeckSize = KingCount + KnightCount + DragonCount + WandCount + PotionCount + JesterCount + 10*NumberCopiesPerValue // 67
	QueenCount   = 12
	TotalCards   = DrawDeckSize + QueenCount // 79
)

// Queen names with special rules attached to them.
const (
	QueenRose = "rose"
	QueenCat  = "cat"
	QueenDog  = "dog"
)

// queenSpec fixes the 12 queens and their point values.
var queenSpec = []struct {
	name   string
	points int
}{
	{QueenRose, 5},
	{"rainbow", 5},
	{"starfish", 5},
	{"ladybug", 10},
	{"moon", 10},
	{"sunflower", 10},
	{QueenCat, 15},
	{QueenDog, 15},
	{"pancake", 15},
	{"peacock", 15},
	{"heart", 20},
	{"cake", 20},
}

// NewQueens returns the 12 queens of the sleeping pool, all asleep.
func NewQueens() []Card {
	queens := make([]Card, 0, QueenCount)
	for _, q := range queenSpec {
		queens = append(queens, Card{
			ID:     "queen-" + q.name,
			Kind:   KindQueen,
			Name:   q.name,
			Points: q.points,
		})
	}
	return queens
}

// NewDrawDeck returns the ordered 67-card draw deck: 8 kings, 4 knights,
// 3 dragons, 3 wands, 4 potions, 5 jesters and 4 copies of each number
// value 1..10. Callers shuffle before dealing.
func NewDrawDeck() []Card {
	deck := make([]Card, 0, DrawDeckSize)
	appendKind := func(kind CardKind, count int) {
		for i := 1; i <= count; i++ {
			deck = append(deck, Card{ID: fmt.Sprintf("%s-%d", kind, i), Kind: kind})
		}
	}
	appendKind(KindKing, KingCount)
	appendKind(KindKnight, KnightCount)
	appendKind(KindDragon, DragonCount)
	appendKind(KindWand, WandCount)
	appendKind(KindPotion, PotionCount)
	appendKind(KindJester, JesterCount)
	for v := 1; v <= 10; v++ {
		for c := 1; c <= NumberCopiesPerValue; c++ {
			deck = append(deck, Card{
				ID:    fmt.Sprintf("number-%d-%d", v, c),
				Kind:  KindNumber,
				Value: v,
			})
		}
	}
	return deck
}
