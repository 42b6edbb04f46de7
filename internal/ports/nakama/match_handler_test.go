package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"roulette/internal/app"
	"roulette/internal/domain"
	"roulette/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// countingLogger counts warnings on top of noopLogger.
type countingLogger struct {
	noopLogger
	warns *int
}

func (l countingLogger) Warn(string, ...interface{}) { *l.warns++ }

type sentMessage struct {
	opCode     int64
	data       []byte
	recipients []runtime.Presence
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	messages    []sentMessage
	deferred    []sentMessage
	labels      []string
	deferredErr error
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.messages = append(md.messages, sentMessage{opCode: opCode, data: append([]byte(nil), data...), recipients: presences})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	if md.deferredErr != nil {
		return md.deferredErr
	}
	md.deferred = append(md.deferred, sentMessage{opCode: opCode, data: append([]byte(nil), data...), recipients: presences})
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labels = append(md.labels, label)
	return nil
}

func (md *mockDispatcher) byOp(opCode int64) []sentMessage {
	var out []sentMessage
	for _, m := range md.messages {
		if m.opCode == opCode {
			out = append(out, m)
		}
	}
	return out
}

func (md *mockDispatcher) reset() {
	md.messages = nil
	md.deferred = nil
	md.labels = nil
}

type mockPresence struct {
	userID string
}

func (p mockPresence) GetHidden() bool                   { return false }
func (p mockPresence) GetPersistence() bool              { return false }
func (p mockPresence) GetUsername() string               { return p.userID }
func (p mockPresence) GetStatus() string                 { return "" }
func (p mockPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }
func (p mockPresence) GetUserId() string                 { return p.userID }
func (p mockPresence) GetSessionId() string              { return "session-" + p.userID }
func (p mockPresence) GetNodeId() string                 { return "node" }

type mockMatchData struct {
	mockPresence
	opCode int64
	data   []byte
}

func (m mockMatchData) GetOpCode() int64      { return m.opCode }
func (m mockMatchData) GetData() []byte       { return m.data }
func (m mockMatchData) GetReliable() bool     { return true }
func (m mockMatchData) GetReceiveTime() int64 { return 0 }

func msgFrom(userID string, opCode int64, payload any) runtime.MatchData {
	var data []byte
	if payload != nil {
		data, _ = json.Marshal(payload)
	}
	return mockMatchData{mockPresence: mockPresence{userID: userID}, opCode: opCode, data: data}
}

// survivingSource always draws a surviving value.
type survivingSource struct{}

func (survivingSource) Float64() float64 { return 0.999 }

type failingCues struct {
	calls int
}

func (f *failingCues) PlayCue(ctx context.Context, cue ports.Cue) error {
	f.calls++
	return errors.New("audio device unavailable")
}

func envContext(env map[string]string) context.Context {
	return context.WithValue(context.Background(), runtime.RUNTIME_CTX_ENV, env)
}

// newHostedMatch initializes a match and joins the given users in order.
func newHostedMatch(t *testing.T, mh *matchHandler, d *mockDispatcher, users ...string) *MatchState {
	t.Helper()
	ctx := envContext(map[string]string{"roulette_seed": "1"})
	state, tickRate, label := mh.MatchInit(ctx, noopLogger{}, nil, nil, map[string]interface{}{})
	if state == nil || tickRate != 5 || label == "" {
		t.Fatalf("MatchInit = %v, %d, %q", state, tickRate, label)
	}
	ms := state.(*MatchState)
	ms.Controller = app.NewController(ms.Config.MaxRounds, survivingSource{})

	presences := make([]runtime.Presence, 0, len(users))
	for _, u := range users {
		presences = append(presences, mockPresence{userID: u})
	}
	mh.MatchJoin(ctx, noopLogger{}, nil, nil, d, 0, ms, presences)
	return ms
}

func loop(mh *matchHandler, d *mockDispatcher, ms *MatchState, msgs ...runtime.MatchData) {
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, d, 1, ms, msgs)
}

func lastState(t *testing.T, d *mockDispatcher) matchStatePayload {
	t.Helper()
	states := d.byOp(OpMatchState)
	if len(states) == 0 {
		t.Fatalf("no match state broadcast")
	}
	var out matchStatePayload
	if err := json.Unmarshal(states[len(states)-1].data, &out); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	return out
}

func lastErrorCode(t *testing.T, d *mockDispatcher) string {
	t.Helper()
	errs := d.byOp(OpGameError)
	if len(errs) == 0 {
		t.Fatalf("no error sent")
	}
	var out errorPayload
	if err := json.Unmarshal(errs[len(errs)-1].data, &out); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	return out.Code
}

func TestMatchInitUsesEnvAndParams(t *testing.T) {
	mh := newMatchHandler()
	ctx := envContext(map[string]string{"roulette_max_rounds": "4", "roulette_tick_rate": "2"})

	state, tickRate, label := mh.MatchInit(ctx, noopLogger{}, nil, nil, map[string]interface{}{})
	ms := state.(*MatchState)
	if tickRate != 2 || ms.Config.MaxRounds != 4 {
		t.Fatalf("tickRate=%d maxRounds=%d", tickRate, ms.Config.MaxRounds)
	}
	if ms.Controller.Snapshot().MaxRounds != 4 {
		t.Fatalf("controller cap = %d", ms.Controller.Snapshot().MaxRounds)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(label), &decoded); err != nil {
		t.Fatalf("label not JSON: %v", err)
	}
	if decoded["game"] != "roulette" || decoded["phase"] != "setup" || decoded["open"] != true {
		t.Fatalf("label = %v", decoded)
	}

	state, _, _ = mh.MatchInit(ctx, noopLogger{}, nil, nil, map[string]interface{}{"max_rounds": float64(3)})
	if got := state.(*MatchState).Config.MaxRounds; got != 3 {
		t.Fatalf("param override max_rounds = %d, want 3", got)
	}
}

func TestFirstJoinerBecomesHost(t *testing.T) {
	mh := newMatchHandler()
	d := &mockDispatcher{}
	ms := newHostedMatch(t, mh, d, "host", "watcher")

	if ms.HostUserID != "host" {
		t.Fatalf("host = %q", ms.HostUserID)
	}
	if len(d.labels) != 1 {
		t.Fatalf("label updates = %d, want 1", len(d.labels))
	}
	state := lastState(t, d)
	if state.Host != "host" || state.Phase != string(domain.PhaseSetup) {
		t.Fatalf("state = %+v", state)
	}
}

func TestOnlyHostMayCommand(t *testing.T) {
	mh := newMatchHandler()
	d := &mockDispatcher{}
	ms := newHostedMatch(t, mh, d, "host", "watcher")
	d.reset()

	loop(mh, d, ms, msgFrom("watcher", OpAddPlayer, addPlayerRequest{Name: "alice"}))

	if code := lastErrorCode(t, d); code != errCodeNotHost {
		t.Fatalf("error code = %q", code)
	}
	errMsg := d.byOp(OpGameError)[0]
	if len(errMsg.recipients) != 1 || errMsg.recipients[0].GetUserId() != "watcher" {
		t.Fatalf("error should go to the sender only: %+v", errMsg.recipients)
	}
	if n := len(ms.Controller.Snapshot().Players); n != 0 {
		t.Fatalf("roster changed by non-host: %d players", n)
	}

	// Anyone may ask for a snapshot.
	loop(mh, d, ms, msgFrom("watcher", OpRequestMatchState, nil))
	states := d.byOp(OpMatchState)
	if len(states) != 1 || len(states[0].recipients) != 1 {
		t.Fatalf("state request should answer the requester only: %+v", states)
	}
}

func TestHostedMatchFlow(t *testing.T) {
	mh := newMatchHandler()
	d := &mockDispatcher{}
	ms := newHostedMatch(t, mh, d, "host")
	d.reset()

	loop(mh, d, ms,
		msgFrom("host", OpConfigureRoster, configureRosterRequest{Target: 2}),
		msgFrom("host", OpAddPlayer, addPlayerRequest{Name: "alice"}),
		msgFrom("host", OpAddPlayer, addPlayerRequest{Name: "bob"}),
		msgFrom("host", OpStartMatch, nil),
		msgFrom("host", OpSelectPlayer, selectPlayerRequest{Index: 1}),
		msgFrom("host", OpPullTrigger, nil),
	)

	if len(d.byOp(OpGameError)) != 0 {
		t.Fatalf("unexpected error: %s", lastErrorCode(t, d))
	}
	for _, op := range []int64{OpRosterConfigured, OpPlayerAdded, OpMatchStarted, OpPlayerSelected, OpAttemptResolved} {
		if len(d.byOp(op)) == 0 {
			t.Fatalf("op %d not broadcast", op)
		}
	}
	if len(d.byOp(OpPlayerAdded)) != 2 {
		t.Fatalf("player added events = %d", len(d.byOp(OpPlayerAdded)))
	}

	var resolved map[string]any
	if err := json.Unmarshal(d.byOp(OpAttemptResolved)[0].data, &resolved); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resolved["outcome"] != string(domain.OutcomeSurvive) || resolved["name"] != "bob" {
		t.Fatalf("attempt payload = %v", resolved)
	}

	state := lastState(t, d)
	if state.Phase != string(domain.PhaseInProgress) || state.Armed {
		t.Fatalf("state = %+v", state)
	}
	if state.Players[1].AttemptsThisRound != 1 || len(state.Players[1].History) != 1 {
		t.Fatalf("bob = %+v", state.Players[1])
	}
	if state.Players[1].Chance != 0.2 {
		t.Fatalf("bob next chance = %v", state.Players[1].Chance)
	}

	// Label changes once, on the setup -> in_progress transition.
	if len(d.labels) != 1 {
		t.Fatalf("label updates = %d, want 1", len(d.labels))
	}

	// Reload on select, empty click on survive.
	if len(d.deferred) != 2 {
		t.Fatalf("cues = %d, want 2", len(d.deferred))
	}
	var cue cuePayload
	if err := json.Unmarshal(d.deferred[1].data, &cue); err != nil {
		t.Fatalf("unmarshal cue: %v", err)
	}
	if cue.Cue != string(ports.CueEmpty) {
		t.Fatalf("cue = %q", cue.Cue)
	}
}

func TestControllerErrorsBecomeCodes(t *testing.T) {
	tests := []struct {
		name string
		msg  runtime.MatchData
		want string
	}{
		{name: "empty name", msg: msgFrom("host", OpAddPlayer, addPlayerRequest{Name: "  "}), want: "empty_name"},
		{name: "start too early", msg: msgFrom("host", OpStartMatch, nil), want: "insufficient_players"},
		{name: "select in setup", msg: msgFrom("host", OpSelectPlayer, selectPlayerRequest{Index: 0}), want: "invalid_phase"},
		{name: "bad roster size", msg: msgFrom("host", OpConfigureRoster, configureRosterRequest{Target: 11}), want: "roster_size_out_of_range"},
		{name: "malformed json", msg: mockMatchData{mockPresence: mockPresence{userID: "host"}, opCode: OpAddPlayer, data: []byte("{")}, want: errCodeBadRequest},
		{name: "unknown op", msg: msgFrom("host", 42, nil), want: errCodeUnknownOp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mh := newMatchHandler()
			d := &mockDispatcher{}
			ms := newHostedMatch(t, mh, d, "host")
			d.reset()

			loop(mh, d, ms, tt.msg)

			if code := lastErrorCode(t, d); code != tt.want {
				t.Fatalf("code = %q, want %q", code, tt.want)
			}
			if len(d.byOp(OpMatchState)) != 0 {
				t.Fatalf("rejected command should not broadcast state")
			}
		})
	}
}

func TestCueFailureDoesNotAffectState(t *testing.T) {
	cues := &failingCues{}
	mh := &matchHandler{newCues: func(runtime.MatchDispatcher) ports.CuePort { return cues }}
	d := &mockDispatcher{}
	ms := newHostedMatch(t, mh, d, "host")

	warns := 0
	logger := countingLogger{warns: &warns}
	msgs := []runtime.MatchData{
		msgFrom("host", OpAddPlayer, addPlayerRequest{Name: "alice"}),
		msgFrom("host", OpAddPlayer, addPlayerRequest{Name: "bob"}),
		msgFrom("host", OpStartMatch, nil),
		msgFrom("host", OpSelectPlayer, selectPlayerRequest{Index: 0}),
		msgFrom("host", OpPullTrigger, nil),
	}
	mh.MatchLoop(context.Background(), logger, nil, nil, d, 1, ms, msgs)

	if cues.calls != 2 {
		t.Fatalf("cue calls = %d, want 2", cues.calls)
	}
	if warns != 2 {
		t.Fatalf("warnings = %d, want 2", warns)
	}
	if len(d.byOp(OpGameError)) != 0 {
		t.Fatalf("cue failure surfaced to the client")
	}
	if got := ms.Controller.Snapshot().Players[0].AttemptsThisRound; got != 1 {
		t.Fatalf("attempts = %d, want 1", got)
	}
}

func TestCuesDisabled(t *testing.T) {
	mh := newMatchHandler()
	d := &mockDispatcher{}
	ms := newHostedMatch(t, mh, d, "host")
	ms.Config.CuesEnabled = false

	loop(mh, d, ms,
		msgFrom("host", OpAddPlayer, addPlayerRequest{Name: "alice"}),
		msgFrom("host", OpAddPlayer, addPlayerRequest{Name: "bob"}),
		msgFrom("host", OpStartMatch, nil),
		msgFrom("host", OpSelectPlayer, selectPlayerRequest{Index: 0}),
	)
	if len(d.deferred) != 0 {
		t.Fatalf("cues sent while disabled: %d", len(d.deferred))
	}
}

func TestDeferredCueAdapterError(t *testing.T) {
	d := &mockDispatcher{deferredErr: errors.New("queue full")}
	if err := NewNakamaCueAdapter(d).PlayCue(context.Background(), ports.CueGunshot); err == nil {
		t.Fatalf("expected error from dispatcher")
	}
}

func TestHostLeavesPromotesNextPresence(t *testing.T) {
	mh := newMatchHandler()
	d := &mockDispatcher{}
	ms := newHostedMatch(t, mh, d, "host", "second", "third")

	out := mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, d, 2, ms, []runtime.Presence{mockPresence{userID: "host"}})
	if out == nil {
		t.Fatalf("match terminated with presences remaining")
	}
	if ms.HostUserID != "second" {
		t.Fatalf("host = %q, want second", ms.HostUserID)
	}

	out = mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, d, 3, ms, []runtime.Presence{mockPresence{userID: "second"}, mockPresence{userID: "third"}})
	if out != nil {
		t.Fatalf("match should terminate when everyone leaves")
	}
}

func TestJoinAttemptCapacity(t *testing.T) {
	mh := newMatchHandler()
	d := &mockDispatcher{}
	ms := newHostedMatch(t, mh, d, "host")
	for i := len(ms.Presences); i < maxPresences; i++ {
		uid := string(rune('a' + i))
		ms.Presences[uid] = mockPresence{userID: uid}
	}

	_, ok, reason := mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, d, 0, ms, mockPresence{userID: "late"}, nil)
	if ok || reason == "" {
		t.Fatalf("join should be refused when full")
	}
	_, ok, _ = mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, d, 0, ms, mockPresence{userID: "host"}, nil)
	if !ok {
		t.Fatalf("rejoin should be allowed")
	}
}

func TestMatchEndedBroadcastsResult(t *testing.T) {
	mh := newMatchHandler()
	d := &mockDispatcher{}
	ms := newHostedMatch(t, mh, d, "host")

	// Drive alice to the forced sixth attempt.
	msgs := []runtime.MatchData{
		msgFrom("host", OpAddPlayer, addPlayerRequest{Name: "alice"}),
		msgFrom("host", OpAddPlayer, addPlayerRequest{Name: "bob"}),
		msgFrom("host", OpStartMatch, nil),
	}
	for i := 0; i < domain.AttemptsPerRound; i++ {
		msgs = append(msgs,
			msgFrom("host", OpSelectPlayer, selectPlayerRequest{Index: 0}),
			msgFrom("host", OpPullTrigger, nil),
		)
	}
	d.reset()
	loop(mh, d, ms, msgs...)

	ended := d.byOp(OpMatchEnded)
	if len(ended) != 1 {
		t.Fatalf("match ended events = %d", len(ended))
	}
	var res resultPayload
	if err := json.Unmarshal(ended[0].data, &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.WinnerName != "bob" || res.WinnerIndex != 1 || res.CappedOut {
		t.Fatalf("result = %+v", res)
	}

	state := lastState(t, d)
	if state.Phase != string(domain.PhaseFinished) || state.Result == nil {
		t.Fatalf("state = %+v", state)
	}

	// Restart keeping the roster reopens play.
	loop(mh, d, ms, msgFrom("host", OpRestartKeepRoster, nil))
	state = lastState(t, d)
	if state.Phase != string(domain.PhaseInProgress) || len(state.Players) != 2 {
		t.Fatalf("after restart = %+v", state)
	}
	if len(state.Players[0].History) != 0 || !state.Players[0].Alive {
		t.Fatalf("alice not reset: %+v", state.Players[0])
	}
}
