package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/skirmish/internal/game"
)

func writeJSON(t *testing.T, dir, name string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func seedBattleData(t *testing.T, dir string) {
	t.Helper()
	writeJSON(t, dir, CardsFile, []game.Card{
		{ID: 1, Name: "Squire", Cost: 1, Attack: 2, HP: 3},
		{ID: 2, Name: "Archer", Cost: 2, Attack: 3, HP: 2},
		{ID: 101, Name: "Rogue Squire", Cost: 1, Attack: 2, HP: 3},
		{ID: 102, Name: "Rogue Archer", Cost: 2, Attack: 3, HP: 2},
	})
	writeJSON(t, dir, CollectionFile, []game.CollectionEntry{
		{CardID: 1, QuantityOwned: 2},
		{CardID: 2, QuantityOwned: 1},
	})
	// Archer count is more than owned and gets clamped.
	writeJSON(t, dir, DeckFile, []game.DeckEntry{
		{CardID: 1, Count: 2},
		{CardID: 2, Count: 3},
	})
	writeJSON(t, dir, BattleConfigFile, []map[string]any{
		{"battleID": 1, "enemyDeck": []int{101, 102}},
		{"battleID": 2},
	})
}

func TestStartBattleByID(t *testing.T) {
	st, dir := openTest(t)
	seedBattleData(t, dir)

	id := 1
	b, used, err := st.StartBattle(context.Background(), BattleRequest{BattleID: &id})
	require.NoError(t, err)
	require.NotNil(t, used)
	assert.Equal(t, 1, *used)

	assert.Len(t, b.State.Player.Hand, 3)
	require.Len(t, b.State.Enemy.Active, 2)
	assert.Equal(t, "Rogue Squire", b.State.Enemy.Active[0].Name)
	assert.Equal(t, game.PhasePlayer, b.State.Phase)
}

func TestStartBattleErrors(t *testing.T) {
	st, dir := openTest(t)
	seedBattleData(t, dir)
	ctx := context.Background()

	missing := 9
	_, _, err := st.StartBattle(ctx, BattleRequest{BattleID: &missing})
	assert.True(t, game.IsKind(err, game.KindNotFound))

	malformed := 2
	_, _, err = st.StartBattle(ctx, BattleRequest{BattleID: &malformed})
	assert.True(t, game.IsKind(err, game.KindMalformedConfig))
}

func TestStartBattleFromLadder(t *testing.T) {
	st, dir := openTest(t)
	seedBattleData(t, dir)

	ladder := game.NewLadder(1)
	_, used, err := st.StartBattle(context.Background(), BattleRequest{Ladder: ladder})
	require.NoError(t, err)
	require.NotNil(t, used)
	assert.Equal(t, 1, *used)

	// the random slot draws from enemy cards
	b, used, err := st.StartBattle(context.Background(), BattleRequest{Ladder: ladder})
	require.NoError(t, err)
	assert.Nil(t, used)
	assert.NotEmpty(t, b.State.Enemy.Active)
	for _, e := range b.State.Enemy.Active {
		assert.GreaterOrEqual(t, e.CardID, 101)
	}
}
