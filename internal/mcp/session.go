package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/peterkuimelis/skirmish/internal/game"
	"github.com/peterkuimelis/skirmish/internal/net"
)

// DecisionType identifies what kind of decision the battle is waiting for.
type DecisionType string

const (
	DecisionChooseAction DecisionType = "choose_action"
	DecisionGameOver     DecisionType = "game_over"
)

// PendingDecision represents a decision the battle is waiting for.
type PendingDecision struct {
	Type    DecisionType     `json:"type"`
	State   *net.StateView   `json:"state"`
	Actions []net.ActionView `json:"actions,omitempty"`
}

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	BattleID *int             `json:"battle_id,omitempty"`
	Events   []net.EventView  `json:"events"`
	State    *net.StateView   `json:"state,omitempty"`
	Actions  []net.ActionView `json:"actions,omitempty"`
	GameOver bool             `json:"game_over"`
	Outcome  string           `json:"outcome,omitempty"`
	Result   string           `json:"result,omitempty"`
	Rejected string           `json:"rejected,omitempty"` // why the last move was refused
}

// GameSession runs one battle in the background and hands its decisions to
// the MCP tools one at a time.
type GameSession struct {
	battle   *game.Battle
	battleID *int
	ctrl     *MCPController
	cancel   context.CancelFunc

	pendingCh      chan *PendingDecision
	currentPending *PendingDecision

	mu       sync.Mutex
	events   []net.EventView
	rejected string
	gameOver bool
	outcome  string
	result   string
	err      error
}

// NewGameSession starts driving battle in a goroutine. The first decision is
// available through waitForPending.
func NewGameSession(battle *game.Battle, battleID *int) *GameSession {
	ctx, cancel := context.WithCancel(context.Background())
	sess := &GameSession{
		battle:    battle,
		battleID:  battleID,
		cancel:    cancel,
		pendingCh: make(chan *PendingDecision, 1),
	}
	sess.ctrl = NewMCPController(sess)

	go func() {
		phase, err := battle.Run(ctx, sess.ctrl)

		sess.mu.Lock()
		sess.gameOver = true
		sess.outcome = net.OutcomeName(phase)
		sess.result = battle.State.Result
		sess.err = err
		sess.mu.Unlock()

		// Non-blocking: after Close nobody may be left to read it.
		select {
		case sess.pendingCh <- &PendingDecision{Type: DecisionGameOver, State: net.BuildStateView(battle.State)}:
		default:
		}
	}()
	return sess
}

// Close stops the battle goroutine if it is still waiting for a decision.
func (s *GameSession) Close() {
	s.cancel()
}

// appendEvent adds an event to the session's event log. Thread-safe.
func (s *GameSession) appendEvent(ev net.EventView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *GameSession) setRejected(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejected = reason
}

// drainEvents returns all accumulated events and clears the buffer.
func (s *GameSession) drainEvents() []net.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	if events == nil {
		events = []net.EventView{}
	}
	return events
}

// waitForPending blocks until the next decision arrives from the battle,
// then builds a ToolResponse with accumulated events and the decision.
func (s *GameSession) waitForPending(ctx context.Context) (*ToolResponse, error) {
	select {
	case pending := <-s.pendingCh:
		s.currentPending = pending
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.response(), nil
}

// answer sends the chosen action index to the waiting battle.
func (s *GameSession) answer(ctx context.Context, index int) error {
	select {
	case s.ctrl.responseCh <- index:
		s.currentPending = nil
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// response describes the current decision without advancing the battle.
func (s *GameSession) response() *ToolResponse {
	resp := &ToolResponse{
		BattleID: s.battleID,
		Events:   s.drainEvents(),
	}
	s.mu.Lock()
	resp.Rejected, s.rejected = s.rejected, ""
	s.mu.Unlock()
	pending := s.currentPending
	if pending == nil {
		return resp
	}
	resp.State = pending.State
	if pending.Type == DecisionGameOver {
		s.mu.Lock()
		resp.GameOver = true
		resp.Outcome = s.outcome
		resp.Result = s.result
		if s.err != nil {
			resp.Result = fmt.Sprintf("error: %v", s.err)
		}
		s.mu.Unlock()
		return resp
	}
	resp.Actions = pending.Actions
	// The battle goroutine is parked in ChooseAction, so its state is stable.
	if s.battle.State.Over() {
		resp.Outcome = net.OutcomeName(s.battle.State.Phase)
		resp.Result = s.battle.State.Result
	}
	return resp
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
