package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"roulette/internal/app"
	"roulette/internal/config"
	"roulette/internal/domain"
	"roulette/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

var errUnknownOp = errors.New("unknown op code")

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	HostUserID string                      // the hot-seat device driving every player's turn
	JoinOrder  []string                    // user ids in join order, used for host promotion
	Presences  map[string]runtime.Presence // userId -> presence
	Controller *app.Controller
	Config     config.GameConfig
	Tick       int64
}

type matchHandler struct {
	// newCues builds the cue sink for a dispatcher; nil disables cues.
	newCues func(runtime.MatchDispatcher) ports.CuePort
}

func newMatchHandler() *matchHandler {
	return &matchHandler{
		newCues: func(d runtime.MatchDispatcher) ports.CuePort { return NewNakamaCueAdapter(d) },
	}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if env == nil {
		env = map[string]string{}
	}

	cfg, err := config.Load(ConfigPath, env)
	if err != nil {
		logger.Warn("MatchInit: Could not load game config, using defaults: %v", err)
		cfg = config.Default()
	}
	if rounds, ok := intParam(params, "max_rounds"); ok && rounds > 0 {
		cfg.MaxRounds = rounds
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	state := &MatchState{
		Presences:  make(map[string]runtime.Presence),
		Controller: app.NewController(cfg.MaxRounds, rand.New(rand.NewSource(seed))),
		Config:     cfg,
	}

	label, err := buildLabel(domain.PhaseSetup, 0)
	if err != nil {
		logger.Error("MatchInit: %v", err)
		return nil, 0, ""
	}

	logger.Debug("MatchInit: max_rounds=%d tick_rate=%d cues=%t", cfg.MaxRounds, cfg.TickRate, cfg.CuesEnabled)
	return state, cfg.TickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	if _, rejoin := matchState.Presences[presence.GetUserId()]; !rejoin && len(matchState.Presences) >= maxPresences {
		return state, false, "Match full"
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
		if _, exists := matchState.Presences[uid]; !exists {
			matchState.JoinOrder = append(matchState.JoinOrder, uid)
		}
		matchState.Presences[uid] = p

		if matchState.HostUserID == "" {
			matchState.HostUserID = uid
			logger.Debug("MatchJoin: Host set to %s.", uid)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger, presences)
	return matchState
}

// MatchLeave is called when one or more presences leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		uid := p.GetUserId()
		delete(matchState.Presences, uid)
		for i, id := range matchState.JoinOrder {
			if id == uid {
				matchState.JoinOrder = append(matchState.JoinOrder[:i], matchState.JoinOrder[i+1:]...)
				break
			}
		}
	}

	if len(matchState.JoinOrder) == 0 {
		logger.Info("MatchLeave: Terminating match with no presences.")
		return nil
	}

	if _, hostPresent := matchState.Presences[matchState.HostUserID]; !hostPresent {
		matchState.HostUserID = matchState.JoinOrder[0]
		logger.Debug("MatchLeave: Host promoted to %s.", matchState.HostUserID)
		mh.broadcastMatchState(matchState, dispatcher, logger, nil)
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
		mh.handleMessage(ctx, matchState, dispatcher, logger, msg)
	}

	return matchState
}

func (mh *matchHandler) handleMessage(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if msg.GetOpCode() == OpRequestMatchState {
		mh.broadcastMatchState(state, dispatcher, logger, []runtime.Presence{msg})
		return
	}
	if senderID != state.HostUserID {
		logger.Warn("MatchLoop: User %s sent op %d but is not host (%s)", senderID, msg.GetOpCode(), state.HostUserID)
		mh.sendError(dispatcher, logger, msg, errCodeNotHost)
		return
	}

	phaseBefore := state.Controller.Phase()
	events, err := mh.runCommand(state.Controller, msg)
	if err != nil {
		logger.Warn("MatchLoop: op %d from %s rejected: %v", msg.GetOpCode(), senderID, err)
		code := app.ErrorCode(err)
		switch {
		case errors.Is(err, errUnknownOp):
			code = errCodeUnknownOp
		case code == "unknown":
			code = errCodeBadRequest
		}
		mh.sendError(dispatcher, logger, msg, code)
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(dispatcher, logger, ev)
	}
	mh.playCues(ctx, state, dispatcher, logger, events)

	if state.Controller.Phase() != phaseBefore {
		mh.updateLabel(state, dispatcher, logger)
	}
	mh.broadcastMatchState(state, dispatcher, logger, nil)
}

// runCommand decodes a host message and applies it to the controller.
func (mh *matchHandler) runCommand(c *app.Controller, msg runtime.MatchData) ([]app.Event, error) {
	switch msg.GetOpCode() {
	case OpConfigureRoster:
		var req configureRosterRequest
		if err := json.Unmarshal(msg.GetData(), &req); err != nil {
			return nil, err
		}
		return c.ConfigureRoster(req.Target)
	case OpAddPlayer:
		var req addPlayerRequest
		if err := json.Unmarshal(msg.GetData(), &req); err != nil {
			return nil, err
		}
		return c.AddPlayer(req.Name)
	case OpStartMatch:
		return c.StartMatch()
	case OpSelectPlayer:
		var req selectPlayerRequest
		if err := json.Unmarshal(msg.GetData(), &req); err != nil {
			return nil, err
		}
		return c.SelectPlayer(req.Index)
	case OpPullTrigger:
		_, events, err := c.PerformAttempt()
		return events, err
	case OpRestartFull:
		return c.RestartFull(), nil
	case OpRestartKeepRoster:
		return c.RestartKeepingRoster()
	default:
		return nil, errUnknownOp
	}
}

// broadcastEvent converts an app event and dispatches it to every presence.
func (mh *matchHandler) broadcastEvent(dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, payload, ok := eventMessage(ev)
	if !ok {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}
	if err := dispatcher.BroadcastMessage(opCode, bytes, nil, nil, true); err != nil {
		logger.Error("Failed to broadcast event %v: %v", ev.Kind, err)
	}
}

// playCues sends sound cues; failures are logged and never touch match state.
func (mh *matchHandler) playCues(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	if !state.Config.CuesEnabled || mh.newCues == nil {
		return
	}
	cues := mh.newCues(dispatcher)
	for _, ev := range events {
		cue, ok := cueForEvent(ev)
		if !ok {
			continue
		}
		if err := cues.PlayCue(ctx, cue); err != nil {
			logger.Warn("Cue %s dropped: %v", cue, err)
		}
	}
}

// broadcastMatchState sends a full snapshot; nil recipients means everyone.
func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, recipients []runtime.Presence) {
	payload := toMatchStatePayload(state.Controller.Snapshot(), state.HostUserID)
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal match state: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpMatchState, bytes, recipients, nil, true); err != nil {
		logger.Error("Failed to broadcast match state: %v", err)
	}
}

// sendError sends an error tag to the sender only.
func (mh *matchHandler) sendError(dispatcher runtime.MatchDispatcher, logger runtime.Logger, to runtime.Presence, code string) {
	bytes, err := json.Marshal(errorPayload{Code: code})
	if err != nil {
		logger.Error("Failed to marshal error payload: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{to}, nil, true); err != nil {
		logger.Error("Failed to send error to %s: %v", to.GetUserId(), err)
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := buildLabel(state.Controller.Phase(), len(state.Presences))
	if err != nil {
		logger.Error("UpdateLabel: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

// intParam reads an integer match param; JSON numbers arrive as float64.
func intParam(params map[string]interface{}, key string) (int, bool) {
	switch v := params[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
