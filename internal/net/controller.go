package net

import (
	"context"
	"fmt"
	"sync"

	"github.com/peterkuimelis/skirmish/internal/game"
	"github.com/peterkuimelis/skirmish/internal/log"
)

// NetworkController implements game.PlayerController over a Transport.
type NetworkController struct {
	t  Transport
	mu sync.Mutex

	// Unlocker, when set, is released while waiting for the client's answer
	// and re-acquired before returning. The web server passes the battle
	// session lock here so REST calls are not blocked by a slow client.
	Unlocker sync.Locker
}

// NewNetworkController creates a controller speaking over t.
func NewNetworkController(t Transport) *NetworkController {
	return &NetworkController{t: t}
}

// ChooseAction implements game.PlayerController. Out-of-range answers are
// rejected and the client is asked again.
func (nc *NetworkController) ChooseAction(ctx context.Context, state *game.GameState, actions []game.Action) (game.Action, error) {
	msg := ServerMessage{
		Type:    "choose_action",
		Actions: BuildActionViews(actions),
		State:   BuildStateView(state),
	}
	for {
		if err := nc.send(ctx, msg); err != nil {
			return game.Action{}, fmt.Errorf("send choose_action: %w", err)
		}

		resp, err := nc.waitForAnswer(ctx)
		if err != nil {
			return game.Action{}, fmt.Errorf("recv action: %w", err)
		}
		if resp.Type == "action" && resp.Index >= 0 && resp.Index < len(actions) {
			return actions[resp.Index], nil
		}
		errMsg := ServerMessage{
			Type:   "error",
			Result: fmt.Sprintf("invalid choice %d: pick an index between 0 and %d", resp.Index, len(actions)-1),
		}
		if err := nc.send(ctx, errMsg); err != nil {
			return game.Action{}, fmt.Errorf("send error: %w", err)
		}
	}
}

// send serializes writes; notifications and prompts may come from different goroutines.
func (nc *NetworkController) send(ctx context.Context, msg ServerMessage) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.t.Send(ctx, msg)
}

func (nc *NetworkController) waitForAnswer(ctx context.Context) (ClientMessage, error) {
	if nc.Unlocker != nil {
		nc.Unlocker.Unlock()
		defer nc.Unlocker.Lock()
	}
	var resp ClientMessage
	err := nc.t.Recv(ctx, &resp)
	return resp, err
}

// Notify implements game.PlayerController.
func (nc *NetworkController) Notify(ctx context.Context, event log.GameEvent) error {
	ev := BuildEventView(event)
	return nc.send(ctx, ServerMessage{Type: "notify", Event: &ev})
}

// RejectMove implements game.MoveRejecter. The client shows the reason and
// gets a fresh prompt next.
func (nc *NetworkController) RejectMove(ctx context.Context, reason error) error {
	return nc.send(ctx, ServerMessage{Type: "error", Result: reason.Error()})
}

// SendGameOver sends the final state to the client.
func (nc *NetworkController) SendGameOver(ctx context.Context, state *game.GameState) error {
	return nc.send(ctx, ServerMessage{
		Type:    "game_over",
		State:   BuildStateView(state),
		Outcome: OutcomeName(state.Phase),
		Result:  state.Result,
	})
}
