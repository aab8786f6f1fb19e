package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/peterkuimelis/skirmish/internal/log"
)

// PlayerController is implemented by anything that can pick moves for the
// player: the terminal REPL, a websocket client or an MCP agent.
type PlayerController interface {
	// ChooseAction presents the legal actions and waits for the player to pick one.
	ChooseAction(ctx context.Context, state *GameState, actions []Action) (Action, error)

	// Notify sends a game event notification (no response needed).
	Notify(ctx context.Context, event log.GameEvent) error
}

// MoveRejecter is implemented by controllers that can tell the player why a
// chosen move was refused.
type MoveRejecter interface {
	RejectMove(ctx context.Context, reason error) error
}

// Run drives the battle with controller until it is exited or ctx is done.
// It returns the final phase. A choice made against an older state, or one
// the battle rejects with a domain error, is dropped: the controller is told
// why (if it implements MoveRejecter) and asked again.
func (b *Battle) Run(ctx context.Context, controller PlayerController) (Phase, error) {
	b.ctx = ctx
	b.controller = controller
	defer func() {
		b.controller = nil
		b.ctx = nil
	}()

	for !b.State.Closed {
		if err := ctx.Err(); err != nil {
			return b.State.Phase, err
		}
		actions := b.Actions()
		if len(actions) == 0 {
			break
		}
		version := b.State.Version()
		chosen, err := controller.ChooseAction(ctx, b.State, actions)
		if err != nil {
			return b.State.Phase, fmt.Errorf("choose action: %w", err)
		}
		if b.State.Version() != version {
			if b.State.Closed {
				break
			}
			if err := rejectMove(ctx, controller, ErrStaleChoice); err != nil {
				return b.State.Phase, err
			}
			continue
		}
		if err := b.Apply(chosen); err != nil {
			if !retryable(err) {
				return b.State.Phase, err
			}
			if err := rejectMove(ctx, controller, err); err != nil {
				return b.State.Phase, err
			}
		}
	}
	return b.State.Phase, nil
}

func retryable(err error) bool {
	return KindOf(err) != 0 ||
		errors.Is(err, ErrBattleOver) ||
		errors.Is(err, ErrWrongPhase) ||
		errors.Is(err, ErrBattleClosed)
}

func rejectMove(ctx context.Context, controller PlayerController, reason error) error {
	r, ok := controller.(MoveRejecter)
	if !ok {
		return nil
	}
	if err := r.RejectMove(ctx, reason); err != nil {
		return fmt.Errorf("reject move: %w", err)
	}
	return nil
}
