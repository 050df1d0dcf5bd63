package bot

// Tuning weighs candidate moves for the scored strategies.
type Tuning struct {
	QueenPointWeight  float64
	StealWeight       float64
	PotionWeight      float64
	ThreatWeight      float64
	ConflictPenalty   float64
	RoseBonusValue    float64
	WinningMoveBonus  float64
	JesterBase        float64
	JesterPoolWeight  float64
	EquationCardValue float64
	DiscardCardValue  float64
}

// defaultTuning keeps waking queens ahead of denial plays, and both ahead
// of plain card cycling. The winning-move bonus dominates everything so a
// finishing play is never passed up.
var defaultTuning = Tuning{
	QueenPointWeight:  1.0,
	StealWeight:       0.9,
	PotionWeight:      0.35,
	ThreatWeight:      0.05,
	ConflictPenalty:   25.0,
	RoseBonusValue:    4.0,
	WinningMoveBonus:  100.0,
	JesterBase:        2.0,
	JesterPoolWeight:  0.2,
	EquationCardValue: 1.2,
	DiscardCardValue:  0.4,
}
