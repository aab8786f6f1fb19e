package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/skirmish/internal/log"
)

// ScriptedController is a PlayerController that follows a predefined script of actions.
// Used in tests to deterministically drive a battle through Run.
type ScriptedController struct {
	t       *testing.T
	actions []ScriptedAction
	pos     int
	events  []log.GameEvent
}

type ScriptedAction struct {
	// Match by ActionType, picking the first action of this type
	Type ActionType
	// Optional: match by card name as well
	CardName string
	// Optional: match by target card name
	TargetName string
}

func NewScriptedController(t *testing.T) *ScriptedController {
	return &ScriptedController{t: t}
}

func (sc *ScriptedController) AddPlay(cardName string) *ScriptedController {
	sc.actions = append(sc.actions, ScriptedAction{Type: ActionPlayCard, CardName: cardName})
	return sc
}

func (sc *ScriptedController) AddAttack(attackerName, targetName string) *ScriptedController {
	sc.actions = append(sc.actions, ScriptedAction{Type: ActionAttack, CardName: attackerName, TargetName: targetName})
	return sc
}

func (sc *ScriptedController) AddEndTurn() *ScriptedController {
	sc.actions = append(sc.actions, ScriptedAction{Type: ActionEndTurn})
	return sc
}

// ChooseAction returns the next scripted action. Once the script is used up,
// or the battle is over, it exits.
func (sc *ScriptedController) ChooseAction(ctx context.Context, state *GameState, actions []Action) (Action, error) {
	if sc.pos >= len(sc.actions) || state.Over() {
		return actions[len(actions)-1], nil
	}
	scripted := sc.actions[sc.pos]
	for _, a := range actions {
		if a.Type != scripted.Type {
			continue
		}
		if scripted.CardName != "" && (a.Card == nil || a.Card.Name != scripted.CardName) {
			continue
		}
		if scripted.TargetName != "" && (a.Target == nil || a.Target.Name != scripted.TargetName) {
			continue
		}
		sc.pos++
		return a, nil
	}
	sc.t.Fatalf("scripted action %d (%s %s→%s) not available; have %v",
		sc.pos, scripted.Type, scripted.CardName, scripted.TargetName, actions)
	return Action{}, nil
}

func (sc *ScriptedController) Notify(ctx context.Context, event log.GameEvent) error {
	sc.events = append(sc.events, event)
	return nil
}

// --- Catalog helpers ---

func card(id int, name string, cost, attack, hp int) Card {
	return Card{
		ID:          id,
		Name:        name,
		Description: name,
		Cost:        cost,
		Attack:      attack,
		HP:          hp,
		FrontImage:  "/cards/" + name + ".png",
	}
}

// testCatalog returns a small catalog with player cards 1..5 and their enemy
// versions 101..105.
func testCatalog() *Catalog {
	return NewCatalog([]Card{
		card(1, "Squire", 1, 2, 3),
		card(2, "Archer", 2, 3, 2),
		card(3, "Knight", 3, 4, 6),
		card(4, "Golem", 5, 5, 10),
		card(5, "Wisp", 1, 1, 1),
		card(101, "Rogue Squire", 1, 2, 3),
		card(102, "Rogue Archer", 2, 3, 2),
		card(103, "Rogue Knight", 3, 4, 6),
		card(105, "Rogue Wisp", 1, 5, 3),
		card(110, "Brute", 4, 5, 20),
	}, 0)
}

// newTestBattle builds a battle with default rules and a memory logger.
func newTestBattle(t *testing.T, catalog *Catalog, playerDeck, enemyDeck []int) (*Battle, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	b, err := NewBattle(SetupConfig{
		Catalog:    catalog,
		PlayerDeck: playerDeck,
		EnemyDeck:  enemyDeck,
		Logger:     logger,
	})
	require.NoError(t, err)
	return b, logger
}

func handCard(t *testing.T, b *Battle, name string) *CardInstance {
	t.Helper()
	for _, c := range b.State.Player.Hand {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("%s not in hand", name)
	return nil
}

func activeCard(t *testing.T, s *Side, name string) *CardInstance {
	t.Helper()
	for _, c := range s.Active {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("%s not on active row", name)
	return nil
}

func mustKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "error: %v", err)
}

// staticSource is a ConfigSource over a fixed list.
type staticSource []BattleConfig

func (s staticSource) List(ctx context.Context) ([]BattleConfig, error) {
	return s, nil
}
