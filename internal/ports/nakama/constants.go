package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create an
	// open public match.
	RpcQuickMatch = "quick_match"

	// RpcCreatePrivateMatch creates an unlisted match and returns an invite
	// token for it.
	RpcCreatePrivateMatch = "create_private_match"

	// RpcMintInvite signs an invite token for a match the caller is in.
	RpcMintInvite = "mint_invite"

	// RpcResolveInvite verifies an invite token and returns the match id.
	RpcResolveInvite = "resolve_invite"

	// MatchName is the authoritative match handler name registered with Nakama.
	MatchName = "sleepingqueens_match"

	// LabelGameValue tags match labels so listing queries only see our game.
	LabelGameValue = "sleepingqueens"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpJoinGame       int64 = 1 // resync request; seating itself happens on presence join
	OpStartGame      int64 = 2
	OpPlayMove       int64 = 3
	OpRequestNewGame int64 = 4

	// Server -> Client events
	OpPlayerJoined   int64 = 101
	OpPlayerLeft     int64 = 102
	OpGameStarted    int64 = 103
	OpHandDealt      int64 = 104 // send privately
	OpMoveApplied    int64 = 105
	OpQueenWoken     int64 = 106
	OpQueenStolen    int64 = 107
	OpQueenSlept     int64 = 108
	OpAttackDeclared int64 = 109
	OpAttackBlocked  int64 = 110
	OpAttackResolved int64 = 111
	OpJesterRevealed int64 = 112
	OpRoseBonus      int64 = 113
	OpCardsStaged    int64 = 114
	OpGameEnded      int64 = 115

	OpGameError     int64 = 120 // send privately
	OpStateSnapshot int64 = 121 // send privately
)
