package web

import (
	"sync"

	"github.com/google/uuid"

	"github.com/peterkuimelis/skirmish/internal/game"
	"github.com/peterkuimelis/skirmish/internal/log"
	"github.com/peterkuimelis/skirmish/internal/net"
)

// Session is one live battle. All access to the battle goes through mu.
type Session struct {
	ID       string
	BattleID *int

	mu       sync.Mutex
	battle   *game.Battle
	events   *log.MemoryLogger
	attached bool // a websocket is driving the battle
}

// View returns the state, the legal actions and the events logged since the
// previous view. The caller must hold s.mu.
func (s *Session) View() net.SessionView {
	v := net.SessionView{
		ID:       s.ID,
		BattleID: s.BattleID,
		State:    net.BuildStateView(s.battle.State),
		Actions:  net.BuildActionViews(s.battle.Actions()),
		Events:   net.BuildEventViews(s.events.Drain()),
	}
	if s.battle.State.Over() || s.battle.State.Closed {
		v.Outcome = net.OutcomeName(s.battle.State.Phase)
	}
	return v
}

// Sessions is the registry of live battles.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessions creates an empty registry.
func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]*Session)}
}

// Create registers a battle whose events are recorded in events.
func (ss *Sessions) Create(battle *game.Battle, events *log.MemoryLogger, battleID *int) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		BattleID: battleID,
		battle:   battle,
		events:   events,
	}
	ss.mu.Lock()
	ss.sessions[s.ID] = s
	ss.mu.Unlock()
	return s
}

// Get returns the session with the given ID.
func (ss *Sessions) Get(id string) (*Session, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	s, ok := ss.sessions[id]
	if !ok {
		return nil, game.NotFoundError("battle session %s not found", id)
	}
	return s, nil
}

// Remove forgets the session. Unknown IDs are ignored.
func (ss *Sessions) Remove(id string) {
	ss.mu.Lock()
	delete(ss.sessions, id)
	ss.mu.Unlock()
}

// Len returns the number of live sessions.
func (ss *Sessions) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}
