package mcp

import (
	"context"

	"github.com/peterkuimelis/skirmish/internal/game"
	"github.com/peterkuimelis/skirmish/internal/log"
	"github.com/peterkuimelis/skirmish/internal/net"
)

// MCPController implements game.PlayerController by sending decisions
// to the MCP session's pending channel and blocking on a response channel.
type MCPController struct {
	session    *GameSession
	responseCh chan int
}

// NewMCPController creates a controller bound to session.
func NewMCPController(session *GameSession) *MCPController {
	return &MCPController{
		session:    session,
		responseCh: make(chan int),
	}
}

// ChooseAction implements game.PlayerController.
func (c *MCPController) ChooseAction(ctx context.Context, state *game.GameState, actions []game.Action) (game.Action, error) {
	pending := &PendingDecision{
		Type:    DecisionChooseAction,
		State:   net.BuildStateView(state),
		Actions: net.BuildActionViews(actions),
	}
	select {
	case c.session.pendingCh <- pending:
	case <-ctx.Done():
		return game.Action{}, ctx.Err()
	}

	select {
	case idx := <-c.responseCh:
		if idx < 0 || idx >= len(actions) {
			return actions[0], nil
		}
		return actions[idx], nil
	case <-ctx.Done():
		return game.Action{}, ctx.Err()
	}
}

// Notify implements game.PlayerController.
func (c *MCPController) Notify(ctx context.Context, event log.GameEvent) error {
	c.session.appendEvent(net.BuildEventView(event))
	return nil
}

// RejectMove implements game.MoveRejecter. The reason is reported with the
// next tool response.
func (c *MCPController) RejectMove(ctx context.Context, reason error) error {
	c.session.setRejected(reason.Error())
	return nil
}
