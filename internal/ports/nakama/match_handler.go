package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"time"

	"sleepingqueens/internal/app"
	"sleepingqueens/internal/bot"
	"sleepingqueens/internal/config"
	"sleepingqueens/internal/domain"
	"sleepingqueens/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// tickRate is ticks per second. Two ticks keep the defense deadline sweep
// within half a second of the wall clock.
const tickRate = 2

// Label is the JSON match label used for listing queries.
type Label struct {
	Open     bool   `json:"open"`
	Game     string `json:"game"`
	Phase    string `json:"phase"`
	RoomCode string `json:"room_code,omitempty"`
	Players  int    `json:"players"`
}

// MatchState holds the authoritative runtime state for one match. The Game
// is never nil: the waiting phase doubles as the lobby.
type MatchState struct {
	Presences map[string]runtime.Presence
	App       *app.Service
	Game      *domain.Game
	OwnerID   string
	Private   bool

	BotsEnabled   bool
	Bots          map[string]*bot.Agent
	BotWaitUntil  int64 // tick when the acting bot fires; 0 means unscheduled
	SoloSinceTick int64 // tick when a lone human started waiting; 0 means no timer

	TurnStartedTick int64
	LastVersion     uint64

	Stats   ports.StatsPort
	Economy ports.EconomyPort
	Settled bool

	Tick int64
}

func (ms *MatchState) humanCount() int {
	count := 0
	for _, p := range ms.Game.Players {
		if !isBotUserId(p.ID) {
			count++
		}
	}
	return count
}

func (ms *MatchState) firstHumanID() string {
	for _, p := range ms.Game.Players {
		if !isBotUserId(p.ID) {
			return p.ID
		}
	}
	return ""
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created. Params may carry a
// room_code and a private flag from the creating RPC.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	roomCode, _ := params["room_code"].(string)
	private, _ := params["private"].(bool)

	svc := app.NewService(nil, nil)
	svc.DefenseWindow = time.Duration(config.DefenseWindowMillis()) * time.Millisecond

	state := &MatchState{
		Presences: make(map[string]runtime.Presence),
		App:       svc,
		Game:      svc.NewGame(roomCode),
		Private:   private,
		Bots:      make(map[string]*bot.Agent),
		Stats:     NewNakamaStatsAdapter(nk),
		Economy:   NewNakamaEconomyAdapter(nk),
	}

	state.BotsEnabled = true
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		if val, ok := env["sleepingqueens_bots_enabled"]; ok {
			state.BotsEnabled = val == "true"
		}
	}

	labelBytes, err := json.Marshal(mh.buildLabel(state))
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Rejoin is always allowed while the seat is still held.
	if matchState.Game.PlayerByID(presence.GetUserId()) != nil {
		return state, true, ""
	}
	if matchState.Game.Phase != domain.PhaseWaiting {
		return state, false, "match_in_progress"
	}
	if len(matchState.Game.Players) >= domain.MaxPlayers {
		// A bot seat can be handed over before the game starts.
		for _, p := range matchState.Game.Players {
			if isBotUserId(p.ID) {
				return state, true, ""
			}
		}
		return state, false, "match_full"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		uid := p.GetUserId()
		matchState.Presences[uid] = p

		if matchState.Game.PlayerByID(uid) != nil {
			// Reconnect: refresh the presence and resend the private view.
			mh.sendSnapshot(matchState, dispatcher, logger, uid)
			continue
		}

		if len(matchState.Game.Players) >= domain.MaxPlayers {
			if !mh.evictOneBot(ctx, matchState, dispatcher, logger) {
				logger.Warn("MatchJoin: User %s joined but no seat was available.", uid)
				continue
			}
		}

		name := p.GetUsername()
		if name == "" {
			name = uid
		}
		events, err := matchState.App.AddPlayer(matchState.Game, uid, name)
		if err != nil {
			logger.Warn("MatchJoin: Could not seat %s: %v", uid, err)
			continue
		}
		mh.broadcastEvents(ctx, matchState, dispatcher, logger, events)
		mh.sendSnapshot(matchState, dispatcher, logger, uid)
	}

	if matchState.OwnerID == "" || matchState.Game.PlayerByID(matchState.OwnerID) == nil || isBotUserId(matchState.OwnerID) {
		matchState.OwnerID = matchState.firstHumanID()
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// evictOneBot unseats the first bot to make room for a joining human. Only
// legal before the game starts.
func (mh *matchHandler) evictOneBot(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) bool {
	if state.Game.Phase != domain.PhaseWaiting {
		return false
	}
	for _, p := range state.Game.Players {
		if !isBotUserId(p.ID) {
			continue
		}
		events, err := state.App.RemovePlayer(state.Game, p.ID)
		if err != nil {
			logger.Error("evictOneBot: %v", err)
			return false
		}
		delete(state.Bots, p.ID)
		mh.broadcastEvents(ctx, state, dispatcher, logger, events)
		logger.Info("MatchJoin: Bot %s gave up its seat for a human.", p.ID)
		return true
	}
	return false
}

// MatchLeave is called when one or more players leave the match. Leaving a
// running game forfeits: queens return to the pool and the game may end.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		uid := p.GetUserId()
		delete(matchState.Presences, uid)

		if matchState.Game.PlayerByID(uid) == nil {
			continue
		}
		events, err := matchState.App.RemovePlayer(matchState.Game, uid)
		if err != nil {
			logger.Error("MatchLeave: Could not unseat %s: %v", uid, err)
			continue
		}
		mh.broadcastEvents(ctx, matchState, dispatcher, logger, events)
	}

	if matchState.OwnerID != "" && matchState.Game.PlayerByID(matchState.OwnerID) == nil {
		matchState.OwnerID = matchState.firstHumanID()
	}

	if matchState.humanCount() == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpJoinGame:
			mh.sendSnapshot(matchState, dispatcher, logger, msg.GetUserId())
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpPlayMove:
			mh.handlePlayMove(ctx, matchState, dispatcher, logger, msg)
		case OpRequestNewGame:
			mh.handleRequestNewGame(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	// Expired defense windows resolve on the server clock, not on input.
	if changed, events := matchState.App.SweepExpiredAttack(matchState.Game); changed {
		mh.broadcastEvents(ctx, matchState, dispatcher, logger, events)
	}

	// Any accepted move restarts the per-turn clocks.
	if matchState.Game.Version != matchState.LastVersion {
		matchState.LastVersion = matchState.Game.Version
		matchState.TurnStartedTick = tick
		matchState.BotWaitUntil = 0
	}

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}
	// The timer only fires on quiet ticks; a move this tick resets it above
	// on the next pass.
	if matchState.Game.Version == matchState.LastVersion {
		mh.enforceTurnTimer(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// Auto-fill the table when a lone human has been waiting long enough.
	if state.Game.Phase == domain.PhaseWaiting {
		if state.humanCount() == 1 {
			if state.SoloSinceTick == 0 {
				state.SoloSinceTick = state.Tick
			}
			waitTicks := int64(config.BotAutoFillDelaySeconds()) * tickRate
			if state.Tick-state.SoloSinceTick >= waitTicks {
				mh.fillWithBots(ctx, state, dispatcher, logger)
				state.SoloSinceTick = 0
			}
		} else {
			state.SoloSinceTick = 0
		}
		return
	}

	if state.Game.Phase != domain.PhasePlaying {
		return
	}

	actor := state.Game.ActingPlayerID()
	if !isBotUserId(actor) {
		return
	}

	if state.BotWaitUntil == 0 {
		minDelay, maxDelay := config.BotDelayTicks()
		state.BotWaitUntil = state.Tick + int64(rand.Intn(maxDelay-minDelay+1)+minDelay)
		return
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, exists := state.Bots[actor]
	if !exists {
		var err error
		agent, err = bot.NewAgent(actor)
		if err != nil {
			logger.Error("processBots: Failed to create agent for %s: %v", actor, err)
			return
		}
		state.Bots[actor] = agent
	}

	mv, err := agent.Act(state.Game)
	if err != nil {
		logger.Error("processBots: Bot %s has no move: %v", actor, err)
		return
	}
	res, events := state.App.ApplyMove(state.Game, mv)
	if !res.Valid {
		logger.Error("processBots: Bot %s move %s rejected: %s", actor, mv.Type, res.Error)
		return
	}
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) fillWithBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	added := false
	for i := len(state.Game.Players); i < domain.MaxPlayers; i++ {
		identity := bot.GetBotIdentity(i)
		botID := identity.UserID
		if state.Game.PlayerByID(botID) != nil {
			continue
		}
		name := identity.DisplayName
		if name == "" {
			name = botID
		}
		events, err := state.App.AddPlayer(state.Game, botID, name)
		if err != nil {
			logger.Error("fillWithBots: Could not seat %s: %v", botID, err)
			continue
		}
		agent, err := bot.NewAgent(botID)
		if err != nil {
			logger.Error("fillWithBots: Failed to create agent for %s: %v", botID, err)
		} else {
			state.Bots[botID] = agent
		}
		mh.broadcastEvents(ctx, state, dispatcher, logger, events)
		logger.Info("processBots: Added bot %s (%s).", name, botID)
		added = true
	}
	if added {
		mh.updateLabel(state, dispatcher, logger)
	}
}

// enforceTurnTimer force-plays for humans who sit on their turn too long: a
// single discard in the normal state, the first sleeping queen for a pending
// jester or rose pick. Attack windows are excluded; the deadline sweep
// already owns those.
func (mh *matchHandler) enforceTurnTimer(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	limit := config.TurnDurationSeconds()
	if limit <= 0 || state.Game.Phase != domain.PhasePlaying {
		return
	}
	if state.Tick-state.TurnStartedTick < int64(limit)*tickRate {
		return
	}

	actor := state.Game.ActingPlayerID()
	if isBotUserId(actor) {
		return
	}
	player := state.Game.PlayerByID(actor)
	if player == nil {
		return
	}

	var mv domain.Move
	if iv := state.Game.Interrupt; iv != nil {
		switch iv.Kind {
		case domain.InterruptJesterReveal:
			if len(state.Game.SleepingQueens) == 0 {
				return
			}
			mv = domain.Move{Type: domain.MovePlayJester, PlayerID: actor, TargetCard: state.Game.SleepingQueens[0].ID}
		case domain.InterruptRoseBonus:
			if len(state.Game.SleepingQueens) == 0 {
				return
			}
			mv = domain.Move{Type: domain.MovePlayKing, PlayerID: actor, TargetCard: state.Game.SleepingQueens[0].ID}
		default:
			return
		}
	} else {
		if len(player.Hand) == 0 {
			return
		}
		mv = domain.Move{Type: domain.MoveDiscard, PlayerID: actor, Cards: []string{player.Hand[0].ID}}
	}

	res, events := state.App.ApplyMove(state.Game, mv)
	if !res.Valid {
		logger.Error("enforceTurnTimer: Forced %s for %s rejected: %s", mv.Type, actor, res.Error)
		return
	}
	logger.Info("enforceTurnTimer: Forced %s for idle player %s.", mv.Type, actor)
	mh.sendError(state, dispatcher, logger, actor, 408, "turn timer expired: a move was made for you")
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if senderID != state.OwnerID {
		logger.Warn("StartGame: User %s tried to start but is not the owner (%s).", senderID, state.OwnerID)
		mh.sendError(state, dispatcher, logger, senderID, 403, "only the match owner can start the game")
		return
	}

	events, err := state.App.StartGame(state.Game)
	if err != nil {
		logger.Warn("StartGame: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	state.Settled = false

	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
	logger.Info("StartGame: Game started with %d players.", len(state.Game.Players))
}

func (mh *matchHandler) handlePlayMove(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var request PlayMoveRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handlePlayMove: Invalid payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "invalid move payload")
		return
	}

	mv := request.toMove(senderID)
	res, events := state.App.ApplyMove(state.Game, mv)
	if !res.Valid {
		logger.Debug("handlePlayMove: %s by %s rejected: %s", mv.Type, senderID, res.Error)
		mh.sendError(state, dispatcher, logger, senderID, 400, res.Error)
		return
	}
	mh.broadcastEvents(ctx, state, dispatcher, logger, events)
}

// handleRequestNewGame rebuilds a fresh game with the same table once the
// previous one has ended.
func (mh *matchHandler) handleRequestNewGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Game.Phase != domain.PhaseEnded {
		mh.sendError(state, dispatcher, logger, senderID, 400, "the current game is still running")
		return
	}
	if senderID != state.OwnerID {
		mh.sendError(state, dispatcher, logger, senderID, 403, "only the match owner can start a new game")
		return
	}

	fresh := state.App.NewGame(state.Game.RoomCode)
	for _, p := range state.Game.Players {
		if _, err := state.App.AddPlayer(fresh, p.ID, p.Name); err != nil {
			logger.Error("RequestNewGame: Could not reseat %s: %v", p.ID, err)
		}
	}
	state.Game = fresh
	state.Settled = false
	state.LastVersion = 0
	state.TurnStartedTick = state.Tick

	mh.updateLabel(state, dispatcher, logger)
	for _, p := range state.Game.Players {
		mh.sendSnapshot(state, dispatcher, logger, p.ID)
	}
	logger.Info("RequestNewGame: Table reset by %s.", senderID)
}

func (mh *matchHandler) broadcastEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

// broadcastEvent dispatches one app event to its recipients. Game-ended
// events additionally settle stats and the winner bonus.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, bytes, err := marshalEvent(ev)
	if err != nil {
		logger.Error("broadcastEvent: %v", err)
		return
	}

	if ev.Kind == app.EventGameEnded {
		if p, ok := ev.Payload.(app.GameEndedPayload); ok {
			mh.settle(ctx, state, logger, p)
		}
		mh.updateLabel(state, dispatcher, logger)
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		// If we had intended recipients but none are connected (e.g. they
		// are bots), we MUST NOT broadcast to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// settle records lifetime stats for every human at the table and pays the
// winner bonus. Runs at most once per game.
func (mh *matchHandler) settle(ctx context.Context, state *MatchState, logger runtime.Logger, p app.GameEndedPayload) {
	if state.Settled {
		return
	}
	state.Settled = true

	results := make([]ports.PlayerResult, 0, len(p.Standings))
	for _, st := range p.Standings {
		if isBotUserId(st.PlayerID) {
			continue
		}
		results = append(results, ports.PlayerResult{
			UserID: st.PlayerID,
			Won:    st.PlayerID == p.WinnerID,
			Score:  st.Score,
			Queens: st.Queens,
		})
	}
	if state.Stats != nil && len(results) > 0 {
		if err := state.Stats.RecordResults(ctx, results); err != nil {
			logger.Error("settle: Failed to record stats: %v", err)
		}
	}

	bonus := config.WinnerCrownBonus()
	if state.Economy != nil && bonus > 0 && p.WinnerID != "" && !isBotUserId(p.WinnerID) {
		update := ports.WalletUpdate{
			UserID: p.WinnerID,
			Amount: bonus,
			Metadata: map[string]interface{}{
				"match_id": ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
				"reason":   "winner_bonus",
			},
		}
		if err := state.Economy.UpdateBalances(ctx, []ports.WalletUpdate{update}); err != nil {
			logger.Error("settle: Failed to pay winner bonus: %v", err)
		}
	}
}

// sendSnapshot sends the viewer-scoped game state privately.
func (mh *matchHandler) sendSnapshot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	presence, ok := state.Presences[userID]
	if !ok {
		return
	}
	bytes, err := marshalSnapshot(state.Game, userID)
	if err != nil {
		logger.Error("sendSnapshot: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpStateSnapshot, bytes, []runtime.Presence{presence}, nil, true)
}

// sendError sends a GameErrorPayload to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	presence, ok := state.Presences[userID]
	if !ok {
		return
	}
	bytes, err := json.Marshal(GameErrorPayload{Code: code, Message: message})
	if err != nil {
		logger.Error("sendError: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) buildLabel(state *MatchState) Label {
	g := state.Game
	open := !state.Private &&
		g.Phase == domain.PhaseWaiting &&
		len(g.Players) < domain.MaxPlayers
	return Label{
		Open:     open,
		Game:     LabelGameValue,
		Phase:    string(g.Phase),
		RoomCode: g.RoomCode,
		Players:  len(g.Players),
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	labelBytes, err := json.Marshal(mh.buildLabel(state))
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
