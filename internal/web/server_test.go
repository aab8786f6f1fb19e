package web

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/peterkuimelis/skirmish/internal/game"
	"github.com/peterkuimelis/skirmish/internal/net"
	"github.com/peterkuimelis/skirmish/internal/store"
)

type testEnv struct {
	srv *Server
	dir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	logger := zaptest.NewLogger(t)
	st, err := store.Open(dir, 0, logger)
	require.NoError(t, err)

	seed(t, dir, store.CardsFile, []game.Card{
		{ID: 1, Name: "Squire", Description: "d", Cost: 1, Attack: 5, HP: 3, FrontImage: "/a.png"},
		{ID: 2, Name: "Golem", Description: "d", Cost: 5, Attack: 5, HP: 10, FrontImage: "/b.png"},
		{ID: 101, Name: "Rogue Squire", Description: "d", Cost: 1, Attack: 1, HP: 2, FrontImage: "/c.png"},
	})
	seed(t, dir, store.CollectionFile, []game.CollectionEntry{{CardID: 1, QuantityOwned: 1}})
	seed(t, dir, store.DeckFile, []game.DeckEntry{{CardID: 1, Count: 1}})
	seed(t, dir, store.BattleConfigFile, []map[string]any{
		{"battleID": 1, "enemyDeck": []int{101}},
		{"battleID": 2, "enemyDeck": "oops"},
	})

	srv := NewServer(Options{
		Store:    st,
		Resolver: game.NewResolver(st.Battles, rand.New(rand.NewSource(7)), 0),
		Ladder:   game.NewLadder(2),
		Rules:    game.DefaultRules(),
		Logger:   logger,
	})
	return &testEnv{srv: srv, dir: dir}
}

func seed(t *testing.T, dir, name string, v any) {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[errorResponse](t, rec).Error
}

func TestCardsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/cards", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]game.Card](t, rec), 3)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	card := map[string]any{
		"name": "Knight", "description": "armored", "cost": "3", "attack": 4, "hp": 6, "frontImage": "/k.png",
	}
	rec = env.do(t, http.MethodPost, "/api/cards", card)
	require.Equal(t, http.StatusOK, rec.Code)
	cards := decode[[]game.Card](t, rec)
	require.Len(t, cards, 4)
	assert.Equal(t, 102, cards[3].ID)
	assert.Equal(t, 3, cards[3].Cost)

	rec = env.do(t, http.MethodPost, "/api/cards", card)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "card with this name already exists", errorOf(t, rec))

	delete(card, "hp")
	card["name"] = "Paladin"
	rec = env.do(t, http.MethodPost, "/api/cards", card)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing required field: hp", errorOf(t, rec))

	req := httptest.NewRequest(http.MethodPost, "/api/cards", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCollectionUpsertAddsDelta(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/collection", game.CollectionEntry{CardID: 1, QuantityOwned: 2})
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode[[]game.CollectionEntry](t, rec)
	assert.Equal(t, []game.CollectionEntry{{CardID: 1, QuantityOwned: 3}}, entries)

	rec = env.do(t, http.MethodPost, "/api/collection", game.CollectionEntry{CardID: 2, QuantityOwned: 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]game.CollectionEntry](t, rec), 2)

	rec = env.do(t, http.MethodGet, "/api/collection", nil)
	assert.Len(t, decode[[]game.CollectionEntry](t, rec), 2)
}

func TestDeckBuilderFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/deckbuilder", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[DeckBuilderView](t, rec)
	assert.Equal(t, 1, view.Size)
	assert.Empty(t, view.Available, "the only Squire is already in the deck")

	rec = env.do(t, http.MethodPost, "/api/deckbuilder/cards/1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "you don't have enough of Squire", errorOf(t, rec))

	rec = env.do(t, http.MethodPost, "/api/deckbuilder/cards/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/deckbuilder/cards/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[DeckBuilderView](t, rec)
	assert.Equal(t, 0, view.Size)
	require.Len(t, view.Available, 1)
	assert.Equal(t, 1, view.Available[0].Available)

	// Unsaved edits do not touch the stored deck.
	rec = env.do(t, http.MethodGet, "/api/deck", nil)
	assert.Equal(t, []game.DeckEntry{{CardID: 1, Count: 1}}, decode[[]game.DeckEntry](t, rec))

	rec = env.do(t, http.MethodPost, "/api/deckbuilder/save", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/deck", nil)
	assert.Empty(t, decode[[]game.DeckEntry](t, rec))

	rec = env.do(t, http.MethodPost, "/api/deckbuilder/cards/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveDeckResetsBuilder(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodDelete, "/api/deckbuilder/cards/1", nil)

	rec := env.do(t, http.MethodPost, "/api/deck", []game.DeckEntry{{CardID: 1, Count: 1}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/deckbuilder", nil)
	assert.Equal(t, 1, decode[DeckBuilderView](t, rec).Size)

	rec = env.do(t, http.MethodPost, "/api/deck", []game.DeckEntry{{CardID: 1, Count: 0}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBattleConfigEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/battles?battleID=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bc := decode[game.BattleConfig](t, rec)
	assert.Equal(t, 1, bc.BattleID)
	assert.Equal(t, []int{101}, bc.EnemyDeck)

	rec = env.do(t, http.MethodGet, "/api/battles?battleID=99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/battles?battleID=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/battles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bc = decode[game.BattleConfig](t, rec)
	assert.Contains(t, []int{1, 2}, bc.BattleID)
}

func TestLadderEndpoints(t *testing.T) {
	env := newTestEnv(t)

	peek := decode[ladderResponse](t, env.do(t, http.MethodGet, "/api/ladder", nil))
	require.NotNil(t, peek.BattleID)
	assert.Equal(t, 1, *peek.BattleID)

	var got []*int
	for i := 0; i < 4; i++ {
		got = append(got, decode[ladderResponse](t, env.do(t, http.MethodPost, "/api/ladder/next", nil)).BattleID)
	}
	require.NotNil(t, got[0])
	require.NotNil(t, got[1])
	assert.Equal(t, 1, *got[0])
	assert.Equal(t, 2, *got[1])
	assert.Nil(t, got[2])
	require.NotNil(t, got[3])
	assert.Equal(t, 1, *got[3])
}

func TestBattleSessionToVictory(t *testing.T) {
	env := newTestEnv(t)

	id := 1
	rec := env.do(t, http.MethodPost, "/api/battles/start", net.StartRequest{BattleID: &id})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sess := decode[net.SessionView](t, rec)
	require.NotEmpty(t, sess.ID)
	require.Len(t, sess.State.Hand, 1)
	require.Len(t, sess.State.Enemy, 1)
	assert.NotEmpty(t, sess.Events)
	base := "/api/battles/" + sess.ID

	squire := sess.State.Hand[0].InstanceID
	rogue := sess.State.Enemy[0].InstanceID

	rec = env.do(t, http.MethodPost, base+"/attack", attackRequest{AttackerID: squire, TargetID: rogue})
	assert.Equal(t, http.StatusNotFound, rec.Code, "squire is still in hand")

	rec = env.do(t, http.MethodPost, base+"/play", playRequest{InstanceID: squire})
	require.Equal(t, http.StatusOK, rec.Code)
	sess = decode[net.SessionView](t, rec)
	assert.Equal(t, 2, sess.State.Energy)
	require.Len(t, sess.State.Active, 1)

	rec = env.do(t, http.MethodPost, base+"/attack", attackRequest{AttackerID: squire, TargetID: rogue})
	require.Equal(t, http.StatusOK, rec.Code)
	sess = decode[net.SessionView](t, rec)
	assert.Equal(t, "win", sess.Outcome)
	assert.Empty(t, sess.State.Enemy)
	assert.Len(t, sess.State.Defeated, 1)
	require.Len(t, sess.Actions, 1)
	assert.Equal(t, "Exit Battle", sess.Actions[0].Type)

	rec = env.do(t, http.MethodPost, base+"/end-turn", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, game.ErrBattleOver.Error(), errorOf(t, rec))

	rec = env.do(t, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[net.SessionView](t, rec).State.Closed)

	rec = env.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBattleSessionEndTurnAndEnergy(t *testing.T) {
	env := newTestEnv(t)

	id := 1
	sess := decode[net.SessionView](t, env.do(t, http.MethodPost, "/api/battles/start", net.StartRequest{BattleID: &id}))
	base := "/api/battles/" + sess.ID

	rec := env.do(t, http.MethodPost, base+"/end-turn", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sess = decode[net.SessionView](t, rec)
	assert.Equal(t, 2, sess.State.Turn)
	assert.Equal(t, 5, sess.State.Energy)
	assert.Equal(t, "Player Phase", sess.State.Phase)
}

func TestStartBattleFailures(t *testing.T) {
	env := newTestEnv(t)

	missing := 42
	rec := env.do(t, http.MethodPost, "/api/battles/start", net.StartRequest{BattleID: &missing})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	malformed := 2
	rec = env.do(t, http.MethodPost, "/api/battles/start", net.StartRequest{BattleID: &malformed})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 0, env.srv.sessions.Len())
}

func TestStartBattleFromLadder(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/battles/start", net.StartRequest{Ladder: true})
	require.Equal(t, http.StatusCreated, rec.Code)
	sess := decode[net.SessionView](t, rec)
	require.NotNil(t, sess.BattleID)
	assert.Equal(t, 1, *sess.BattleID)

	// ladder battle 2 is malformed
	rec = env.do(t, http.MethodPost, "/api/battles/start", net.StartRequest{Ladder: true})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "could not start battle: invalid battle configuration", errorOf(t, rec))
}

func TestBattleSocket(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.srv.Handler())
	defer ts.Close()

	id := 1
	sess := decode[net.SessionView](t, env.do(t, http.MethodPost, "/api/battles/start", net.StartRequest{BattleID: &id}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/battles/"+sess.ID, nil)
	require.NoError(t, err)
	defer conn.CloseNow()
	tr := net.NewWSTransport(conn)

	var msg net.ServerMessage
	require.NoError(t, tr.Recv(ctx, &msg))
	require.Equal(t, "choose_action", msg.Type)
	require.NotEmpty(t, msg.Actions)
	exit := msg.Actions[len(msg.Actions)-1]
	assert.Equal(t, "Exit Battle", exit.Type)

	require.NoError(t, tr.Send(ctx, net.ClientMessage{Type: "action", Index: exit.Index}))

	var types []string
	for {
		require.NoError(t, tr.Recv(ctx, &msg))
		types = append(types, msg.Type)
		if msg.Type == "game_over" {
			break
		}
	}
	assert.Equal(t, []string{"notify", "game_over"}, types)
	assert.Equal(t, "exited", msg.Outcome)

	_, _, err = conn.Read(ctx)
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
	assert.Equal(t, 0, env.srv.sessions.Len())
}

func TestBattleSocketRefusesChoiceOvertakenByREST(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.srv.Handler())
	defer ts.Close()

	id := 1
	sess := decode[net.SessionView](t, env.do(t, http.MethodPost, "/api/battles/start", net.StartRequest{BattleID: &id}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/battles/"+sess.ID, nil)
	require.NoError(t, err)
	defer conn.CloseNow()
	tr := net.NewWSTransport(conn)

	var msg net.ServerMessage
	require.NoError(t, tr.Recv(ctx, &msg))
	require.Equal(t, "choose_action", msg.Type)
	require.Equal(t, 1, msg.State.Turn)
	endTurn := -1
	for _, a := range msg.Actions {
		if a.Type == "End Turn" {
			endTurn = a.Index
		}
	}
	require.NotEqual(t, -1, endTurn, "actions: %+v", msg.Actions)

	// The turn ends over REST while the socket client is still deciding.
	rec := env.do(t, http.MethodPost, "/api/battles/"+sess.ID+"/end-turn", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[net.SessionView](t, rec)
	require.Equal(t, 2, view.State.Turn)
	require.Equal(t, 5, view.State.Energy)

	require.NoError(t, tr.Send(ctx, net.ClientMessage{Type: "action", Index: endTurn}))

	var refusal string
	for {
		require.NoError(t, tr.Recv(ctx, &msg))
		if msg.Type == "error" {
			refusal = msg.Result
		}
		if msg.Type == "choose_action" {
			break
		}
	}
	assert.Equal(t, game.ErrStaleChoice.Error(), refusal)
	assert.Equal(t, 2, msg.State.Turn, "the stale end turn must not run a second enemy phase")
	assert.Equal(t, 5, msg.State.Energy)

	exit := msg.Actions[len(msg.Actions)-1]
	require.NoError(t, tr.Send(ctx, net.ClientMessage{Type: "action", Index: exit.Index}))
	for msg.Type != "game_over" {
		require.NoError(t, tr.Recv(ctx, &msg))
	}
	assert.Equal(t, "exited", msg.Outcome)
	assert.Equal(t, 2, msg.State.Turn)

	_, _, err = conn.Read(ctx)
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
}

func TestUnknownSession(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/battles/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIndexServed(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Skirmish</title>")
}
