package net

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/peterkuimelis/skirmish/internal/game"
)

// PlayLocal runs battle against a terminal REPL reading from in and writing
// to out. The REPL talks to the battle over an in-process pipe using the same
// protocol as remote clients.
func PlayLocal(ctx context.Context, battle *game.Battle, in io.Reader, out io.Writer) (game.Phase, error) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	ctrl := NewNetworkController(NewStreamTransport(serverConn))
	client := NewClient(NewStreamTransport(clientConn), in, out)

	stop := context.AfterFunc(ctx, func() {
		_ = serverConn.Close()
		_ = clientConn.Close()
	})
	defer stop()

	replErr := make(chan error, 1)
	go func() {
		_, err := client.RunREPL(ctx)
		if err != nil {
			// Unblock the battle if it is waiting on us.
			_ = serverConn.Close()
		}
		replErr <- err
	}()

	phase, err := battle.Run(ctx, ctrl)
	if err != nil {
		_ = clientConn.Close()
		if rerr := <-replErr; rerr != nil && ctx.Err() == nil {
			return phase, rerr
		}
		return phase, fmt.Errorf("battle: %w", err)
	}

	if err := ctrl.SendGameOver(ctx, battle.State); err != nil {
		return phase, fmt.Errorf("send game_over: %w", err)
	}
	return phase, <-replErr
}
