package app

import (
	"math/rand"
	"strings"
	"time"

	"roulette/internal/domain"
)

// Controller runs the roulette match state machine.
//
// It is not safe for concurrent use: every command and query must run on the
// same logical thread, which the Nakama match loop guarantees.
type Controller struct {
	rng    domain.RandomSource
	policy domain.Policy
	now    func() time.Time

	maxRounds int
	match     *domain.Match
}

// Option customizes a Controller.
type Option func(*Controller)

// WithPolicy replaces the hazard-rate elimination policy.
func WithPolicy(p domain.Policy) Option {
	return func(c *Controller) { c.policy = p }
}

// WithClock replaces time.Now for history timestamps and match duration.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController constructs a Controller in the setup phase.
// rng may be nil to use a time-seeded default; maxRounds < 1 uses DefaultMaxRounds.
func NewController(maxRounds int, rng domain.RandomSource, opts ...Option) *Controller {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if maxRounds < 1 {
		maxRounds = DefaultMaxRounds
	}
	c := &Controller{
		rng:       rng,
		policy:    domain.HazardPolicy{},
		now:       time.Now,
		maxRounds: maxRounds,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.match = domain.NewMatch(maxRounds)
	return c
}

// ConfigureRoster sets how many players the setup phase collects.
func (c *Controller) ConfigureRoster(target int) ([]Event, error) {
	m := c.match
	if m.Phase != domain.PhaseSetup {
		return nil, ErrInvalidPhase
	}
	if target < MinRosterSize || target > MaxRosterSize || target < len(m.Players) {
		return nil, ErrRosterSizeOutOfRange
	}
	m.RosterTarget = target
	return []Event{{Kind: EventRosterConfigured, Payload: RosterConfiguredPayload{Target: target}}}, nil
}

// AddPlayer appends a uniquely named player to the roster.
func (c *Controller) AddPlayer(name string) ([]Event, error) {
	m := c.match
	if m.Phase != domain.PhaseSetup {
		return nil, ErrInvalidPhase
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if m.IndexOf(name) >= 0 {
		return nil, ErrDuplicateName
	}
	if len(m.Players) >= c.rosterLimit() {
		return nil, ErrRosterSizeOutOfRange
	}

	m.Players = append(m.Players, domain.NewPlayer(name))
	return []Event{{
		Kind:    EventPlayerAdded,
		Payload: PlayerAddedPayload{Index: len(m.Players) - 1, Name: name},
	}}, nil
}

// StartMatch closes the setup phase and begins round one.
func (c *Controller) StartMatch() ([]Event, error) {
	m := c.match
	if m.Phase != domain.PhaseSetup {
		return nil, ErrInvalidPhase
	}
	need := MinRosterSize
	if m.RosterTarget > need {
		need = m.RosterTarget
	}
	if len(m.Players) < need {
		return nil, ErrInsufficientPlayers
	}

	c.begin()

	names := make([]string, len(m.Players))
	for i, p := range m.Players {
		names[i] = p.Name
	}
	return []Event{{
		Kind:    EventMatchStarted,
		Payload: MatchStartedPayload{Players: names, MaxRounds: m.MaxRounds},
	}}, nil
}

// SelectPlayer chooses who pulls the trigger next and arms the attempt.
func (c *Controller) SelectPlayer(index int) ([]Event, error) {
	m := c.match
	if m.Phase != domain.PhaseInProgress {
		return nil, ErrInvalidPhase
	}
	if index < 0 || index >= len(m.Players) {
		return nil, ErrPlayerNotFound
	}
	p := m.Players[index]
	if !p.Alive {
		return nil, ErrPlayerDead
	}
	if p.AttemptsThisRound >= domain.AttemptsPerRound {
		return nil, ErrAttemptLimitReached
	}

	m.CurrentIndex = index
	m.Armed = true
	return []Event{{
		Kind: EventPlayerSelected,
		Payload: PlayerSelectedPayload{
			Index:             index,
			Name:              p.Name,
			Attempt:           p.AttemptsThisRound + 1,
			RemainingAttempts: p.RemainingAttempts(),
			Chance:            domain.EliminationChance(p.AttemptsThisRound),
		},
	}}, nil
}

// AttemptResult is the outcome of PerformAttempt with snapshots for presentation.
type AttemptResult struct {
	Outcome       domain.Outcome
	Player        PlayerView
	Match         Snapshot
	RoundAdvanced bool
	Finished      bool
}

// PerformAttempt pulls the trigger for the selected player.
func (c *Controller) PerformAttempt() (AttemptResult, []Event, error) {
	m := c.match
	if m.Phase != domain.PhaseInProgress {
		return AttemptResult{}, nil, ErrInvalidPhase
	}
	if !m.Armed {
		return AttemptResult{}, nil, ErrNoPlayerSelected
	}
	idx := m.CurrentIndex
	p := m.Players[idx]
	if !p.Alive {
		m.Armed = false
		return AttemptResult{}, nil, ErrPlayerDead
	}
	if p.AttemptsThisRound >= domain.AttemptsPerRound {
		m.Armed = false
		return AttemptResult{}, nil, ErrAttemptLimitReached
	}

	eliminated := c.policy.Eliminates(p.AttemptsThisRound, c.rng)
	p.RecordAttempt(eliminated, m.Round, c.now())
	m.Armed = false

	outcome := domain.OutcomeSurvive
	if eliminated {
		outcome = domain.OutcomeEliminated
	}
	events := []Event{{
		Kind:    EventAttemptResolved,
		Payload: AttemptResolvedPayload{Index: idx, Name: p.Name, Round: m.Round, Outcome: outcome},
	}}

	var advanced bool
	if eliminated {
		p.Eliminate()
		if last := m.LastAlive(); last >= 0 {
			events = append(events, c.finish(last, false))
		} else {
			var evs []Event
			advanced, evs = c.advanceRound(false)
			events = append(events, evs...)
		}
	} else if !m.AnyCanAttempt() {
		var evs []Event
		advanced, evs = c.advanceRound(true)
		events = append(events, evs...)
	}

	return AttemptResult{
		Outcome:       outcome,
		Player:        viewOf(p),
		Match:         c.Snapshot(),
		RoundAdvanced: advanced,
		Finished:      m.Phase == domain.PhaseFinished,
	}, events, nil
}

// RestartFull discards all state and returns to an empty setup phase.
func (c *Controller) RestartFull() []Event {
	c.match = domain.NewMatch(c.maxRounds)
	return []Event{{Kind: EventMatchReset, Payload: MatchResetPayload{KeptRoster: false}}}
}

// RestartKeepingRoster revives every player and starts a new match with the same roster.
func (c *Controller) RestartKeepingRoster() ([]Event, error) {
	m := c.match
	if m.Phase == domain.PhaseSetup {
		return nil, ErrInvalidPhase
	}
	for _, p := range m.Players {
		p.ResetForNewLife()
	}
	c.begin()
	return []Event{{Kind: EventMatchReset, Payload: MatchResetPayload{KeptRoster: true}}}, nil
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() domain.Phase {
	return c.match.Phase
}

// Result returns the end-of-match summary once the match is finished.
func (c *Controller) Result() (domain.MatchResult, bool) {
	if c.match.Result == nil {
		return domain.MatchResult{}, false
	}
	return *c.match.Result, true
}

func (c *Controller) rosterLimit() int {
	if c.match.RosterTarget > 0 {
		return c.match.RosterTarget
	}
	return MaxRosterSize
}

func (c *Controller) begin() {
	m := c.match
	m.Phase = domain.PhaseInProgress
	m.Round = 1
	m.CurrentIndex = 0
	m.Armed = false
	m.Result = nil
	m.StartedAt = c.now()
}

// advanceRound starts the next round, or ends the match when the cap would be exceeded.
func (c *Controller) advanceRound(exhausted bool) (bool, []Event) {
	m := c.match
	if m.Round+1 > m.MaxRounds {
		return false, []Event{c.finish(m.BestSurvivor(), true)}
	}
	m.Round++
	for _, p := range m.Players {
		p.StartRound()
	}
	return true, []Event{{
		Kind:    EventRoundStarted,
		Payload: RoundStartedPayload{Round: m.Round, MaxRounds: m.MaxRounds, Exhausted: exhausted},
	}}
}

func (c *Controller) finish(winner int, cappedOut bool) Event {
	m := c.match
	w := m.Players[winner]
	res := &domain.MatchResult{
		WinnerIndex:  winner,
		WinnerName:   w.Name,
		RoundsPlayed: m.Round,
		Duration:     c.now().Sub(m.StartedAt),
		Attempts:     w.LifeAttempts,
		SurvivalRate: w.SurvivalRate,
		BestStreak:   w.BestSurvivalStreak,
		CappedOut:    cappedOut,
	}
	m.Phase = domain.PhaseFinished
	m.Armed = false
	m.Result = res
	return Event{Kind: EventMatchEnded, Payload: MatchEndedPayload{Result: *res}}
}
