package game

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestResolveByIDNotFound(t *testing.T) {
	r := NewResolver(staticSource{{BattleID: 1, EnemyDeck: []int{101}}}, nil, 0)
	roster, err := r.Resolve(context.Background(), intPtr(99), testCatalog())
	mustKind(t, err, KindNotFound)
	assert.Nil(t, roster)
}

func TestResolveByIDExactMatch(t *testing.T) {
	src := staticSource{
		{BattleID: 1, EnemyDeck: []int{101}},
		{BattleID: 2, EnemyDeck: []int{102, 103}},
	}
	r := NewResolver(src, nil, 0)
	roster, err := r.Resolve(context.Background(), intPtr(2), testCatalog())
	require.NoError(t, err)
	assert.Equal(t, []int{102, 103}, roster)
}

func TestRosterTruncatesToSix(t *testing.T) {
	r := NewResolver(staticSource{}, nil, 0)
	roster, err := r.Roster(BattleConfig{BattleID: 3, EnemyDeck: []int{101, 102, 103, 105, 110, 101, 102, 103}}, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, []int{101, 102, 103, 105, 110, 101}, roster)
}

func TestRosterMalformed(t *testing.T) {
	r := NewResolver(staticSource{}, nil, 0)
	cat := testCatalog()

	_, err := r.Roster(BattleConfig{BattleID: 1}, cat)
	mustKind(t, err, KindMalformedConfig)

	_, err = r.Roster(BattleConfig{BattleID: 1, EnemyDeck: []int{}}, cat)
	mustKind(t, err, KindMalformedConfig)

	_, err = r.Roster(BattleConfig{BattleID: 1, EnemyDeck: []int{101, 999}}, cat)
	mustKind(t, err, KindMalformedConfig)
}

func TestBattleConfigLenientDecode(t *testing.T) {
	var configs []BattleConfig
	data := `[
		{"battleID": 1, "enemyDeck": [101, 102]},
		{"battleID": 2},
		{"battleID": 3, "enemyDeck": "oops"},
		{"battleID": 4, "enemyDeck": null}
	]`
	require.NoError(t, json.Unmarshal([]byte(data), &configs))
	require.Len(t, configs, 4)
	assert.Len(t, configs[0].EnemyDeck, 2)
	for _, bc := range configs[1:] {
		assert.Nil(t, bc.EnemyDeck, "config %d", bc.BattleID)
	}

	r := NewResolver(staticSource(configs), nil, 0)
	_, err := r.Resolve(context.Background(), intPtr(3), testCatalog())
	mustKind(t, err, KindMalformedConfig)
}

func TestRandomRosterDrawsEnemyCards(t *testing.T) {
	cat := testCatalog()
	r := NewResolver(staticSource{}, rand.New(rand.NewSource(42)), 0)
	sizes := make(map[int]bool)
	for i := 0; i < 200; i++ {
		roster, err := r.RandomRoster(cat)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(roster), 1)
		require.LessOrEqual(t, len(roster), 6)
		sizes[len(roster)] = true
		for _, id := range roster {
			require.True(t, cat.IsEnemyCard(id), "roster contains player card %d", id)
		}
	}
	assert.Len(t, sizes, 6, "expected every size 1..6 over 200 draws")
}

func TestRandomRosterWithoutEnemyCards(t *testing.T) {
	cat := NewCatalog([]Card{card(1, "Squire", 1, 1, 1)}, 0)
	r := NewResolver(staticSource{}, nil, 0)
	_, err := r.RandomRoster(cat)
	mustKind(t, err, KindMalformedConfig)
}

func TestResolveWithoutIDFallsBackToRandomRoster(t *testing.T) {
	r := NewResolver(staticSource{}, rand.New(rand.NewSource(7)), 0)
	roster, err := r.Resolve(context.Background(), nil, testCatalog())
	require.NoError(t, err)
	assert.NotEmpty(t, roster)
}

func TestResolveWithoutIDPicksConfig(t *testing.T) {
	r := NewResolver(staticSource{{BattleID: 7, EnemyDeck: []int{103}}}, nil, 0)
	roster, err := r.Resolve(context.Background(), nil, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, []int{103}, roster)
}

func TestRandomConfigEmpty(t *testing.T) {
	r := NewResolver(staticSource{}, nil, 0)
	_, err := r.RandomConfig(context.Background())
	mustKind(t, err, KindNotFound)
}

func TestLadderCycle(t *testing.T) {
	l := NewLadder(3)
	var got []any
	for i := 0; i < 9; i++ {
		if id := l.Next(); id != nil {
			got = append(got, *id)
		} else {
			got = append(got, "random")
		}
	}
	assert.Equal(t, []any{1, 2, 3, "random", 1, 2, 3, "random", 1}, got)
}

func TestLadderPeekDoesNotAdvance(t *testing.T) {
	l := NewLadder(2)
	assert.Equal(t, intPtr(1), l.Peek())
	assert.Equal(t, intPtr(1), l.Next())
	assert.Equal(t, intPtr(2), l.Peek())
}

func TestLadderWithoutBattlesIsAlwaysRandom(t *testing.T) {
	l := NewLadder(0)
	for i := 0; i < 3; i++ {
		assert.Nil(t, l.Next())
	}
}

func TestResolveLadder(t *testing.T) {
	src := staticSource{{BattleID: 1, EnemyDeck: []int{101}}}
	r := NewResolver(src, rand.New(rand.NewSource(1)), 0)
	l := NewLadder(1)
	cat := testCatalog()

	id, roster, err := r.ResolveLadder(context.Background(), l, cat)
	require.NoError(t, err)
	assert.Equal(t, intPtr(1), id)
	assert.Equal(t, []int{101}, roster)

	id, roster, err = r.ResolveLadder(context.Background(), l, cat)
	require.NoError(t, err)
	assert.Nil(t, id, "expected the random slot")
	assert.NotEmpty(t, roster)
}
