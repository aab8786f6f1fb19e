package net

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/skirmish/internal/game"
	"github.com/peterkuimelis/skirmish/internal/log"
)

func testCatalog() *game.Catalog {
	return game.NewCatalog([]game.Card{
		{ID: 1, Name: "Squire", Cost: 1, Attack: 5, HP: 3},
		{ID: 2, Name: "Golem", Cost: 5, Attack: 5, HP: 10},
		{ID: 101, Name: "Rogue Squire", Cost: 1, Attack: 1, HP: 2},
	}, 0)
}

func newBattle(t *testing.T, deck, enemy []int) *game.Battle {
	t.Helper()
	b, err := game.NewBattle(game.SetupConfig{
		Catalog:    testCatalog(),
		PlayerDeck: deck,
		EnemyDeck:  enemy,
	})
	require.NoError(t, err)
	return b
}

func TestPlayLocalToVictory(t *testing.T) {
	b := newBattle(t, []int{1}, []int{101})

	// play Squire, attack Rogue Squire, leave the won battle
	in := strings.NewReader("1\n1\n1\n")
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	phase, err := PlayLocal(ctx, b, in, &out)
	require.NoError(t, err)
	assert.Equal(t, game.PhaseWin, phase)
	assert.True(t, b.State.Closed)

	text := out.String()
	assert.Contains(t, text, "Player plays Squire")
	assert.Contains(t, text, "Rogue Squire is defeated")
	assert.Contains(t, text, "VICTORY")
}

func TestPlayLocalRepromptsOnBadInput(t *testing.T) {
	b := newBattle(t, []int{1}, []int{101})

	// "9" and "x" are rejected locally; 3 is Exit.
	in := strings.NewReader("9\nx\n3\n")
	var out bytes.Buffer

	phase, err := PlayLocal(context.Background(), b, in, &out)
	require.NoError(t, err)
	assert.Equal(t, game.PhasePlayer, phase)
	assert.Contains(t, out.String(), "Enter a number between 1 and 3")
	assert.Contains(t, out.String(), "BATTLE LEFT")
}

func TestPlayLocalInputEnds(t *testing.T) {
	b := newBattle(t, []int{1}, []int{101})

	_, err := PlayLocal(context.Background(), b, strings.NewReader(""), &bytes.Buffer{})
	require.Error(t, err)
	assert.False(t, b.State.Closed)
}

func TestNetworkControllerRejectsOutOfRangeIndex(t *testing.T) {
	b := newBattle(t, []int{1}, []int{101})

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	ctrl := NewNetworkController(NewStreamTransport(serverConn))
	client := NewStreamTransport(clientConn)
	ctx := context.Background()

	type result struct {
		action game.Action
		err    error
	}
	done := make(chan result, 1)
	go func() {
		a, err := ctrl.ChooseAction(ctx, b.State, b.Actions())
		done <- result{a, err}
	}()

	var msg ServerMessage
	require.NoError(t, client.Recv(ctx, &msg))
	require.Equal(t, "choose_action", msg.Type)
	require.Len(t, msg.Actions, 3)
	assert.Equal(t, "Play Card", msg.Actions[0].Type)
	require.NotNil(t, msg.State)
	assert.Equal(t, 3, msg.State.Energy)
	assert.True(t, msg.State.Hand[0].Playable)

	require.NoError(t, client.Send(ctx, ClientMessage{Type: "action", Index: 7}))
	require.NoError(t, client.Recv(ctx, &msg))
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Result, "invalid choice 7")

	// asked again
	require.NoError(t, client.Recv(ctx, &msg))
	require.Equal(t, "choose_action", msg.Type)
	require.NoError(t, client.Send(ctx, ClientMessage{Type: "action", Index: 1}))

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, game.ActionEndTurn, res.action.Type)
}

func TestRejectedMoveReachesTerminal(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	ctrl := NewNetworkController(NewStreamTransport(serverConn))
	ctx := context.Background()

	sent := make(chan error, 1)
	go func() {
		if err := ctrl.RejectMove(ctx, game.ErrStaleChoice); err != nil {
			sent <- err
			return
		}
		sent <- ctrl.SendGameOver(ctx, &game.GameState{Phase: game.PhasePlayer, Player: &game.Side{}, Enemy: &game.Side{}, Closed: true})
	}()

	var out strings.Builder
	outcome, err := NewClient(NewStreamTransport(clientConn), strings.NewReader(""), &out).RunREPL(ctx)
	require.NoError(t, err)
	require.NoError(t, <-sent)
	assert.Equal(t, "exited", outcome)
	assert.Contains(t, out.String(), "! "+game.ErrStaleChoice.Error())
}

func TestBuildStateView(t *testing.T) {
	b := newBattle(t, []int{1, 2}, []int{101})
	require.NoError(t, b.PlayCard(b.State.Player.Hand[0].ID))

	sv := BuildStateView(b.State)
	assert.Equal(t, 1, sv.Turn)
	assert.Equal(t, "Player Phase", sv.Phase)
	assert.Equal(t, 2, sv.Energy)
	require.Len(t, sv.Active, 1)
	assert.Equal(t, "Squire", sv.Active[0].Name)
	require.Len(t, sv.Hand, 1)
	assert.False(t, sv.Hand[0].Playable, "Golem costs more than the remaining energy")
	require.Len(t, sv.Enemy, 1)
	assert.Equal(t, 2, sv.Enemy[0].MaxHP)
	assert.NotNil(t, sv.Defeated)
	assert.False(t, sv.Over)
}

func TestBuildEventViews(t *testing.T) {
	assert.NotNil(t, BuildEventViews(nil))

	views := BuildEventViews([]log.GameEvent{
		log.NewDefeatEvent(2, "Player Phase", 1, "Rogue Squire"),
	})
	require.Len(t, views, 1)
	assert.Equal(t, "Enemy", views[0].Side)
	assert.Equal(t, "Rogue Squire", views[0].Card)
	assert.Equal(t, 2, views[0].Turn)
}

func TestOutcomeName(t *testing.T) {
	assert.Equal(t, "win", OutcomeName(game.PhaseWin))
	assert.Equal(t, "loss", OutcomeName(game.PhaseLoss))
	assert.Equal(t, "exited", OutcomeName(game.PhasePlayer))
}
