package net

import (
	"github.com/peterkuimelis/skirmish/internal/game"
	"github.com/peterkuimelis/skirmish/internal/log"
)

// BuildStateView creates a StateView of the whole battle from the player's side.
func BuildStateView(state *game.GameState) *StateView {
	sv := &StateView{
		Turn:          state.Turn,
		Phase:         state.Phase.String(),
		Energy:        state.Energy,
		Hand:          cardViews(state.Player.Hand, state),
		Active:        cardViews(state.Player.Active, state),
		Enemy:         cardViews(state.Enemy.Active, state),
		Defeated:      cardViews(state.Defeated, state),
		DrawPileCount: len(state.Player.DrawPile),
		DiscardCount:  len(state.Player.Discard),
		Over:          state.Over(),
		Closed:        state.Closed,
		Result:        state.Result,
	}
	return sv
}

func cardViews(cards []*game.CardInstance, state *game.GameState) []CardView {
	views := make([]CardView, 0, len(cards))
	for _, c := range cards {
		views = append(views, CardInstanceView(c, state))
	}
	return views
}

// CardInstanceView describes a single instance. Playable is only set for
// hand cards the player can currently afford.
func CardInstanceView(ci *game.CardInstance, state *game.GameState) CardView {
	cv := CardView{
		InstanceID: ci.ID,
		CardID:     ci.CardID,
		Name:       ci.Name,
		Cost:       ci.Cost,
		Attack:     ci.Attack,
		HP:         ci.HP,
		MaxHP:      ci.MaxHP,
		Attacked:   ci.AttackedThisTurn,
	}
	if ci.Zone == game.ZoneHand && state.Phase == game.PhasePlayer && ci.Cost <= state.Energy {
		cv.Playable = true
	}
	return cv
}

// BuildActionViews numbers the actions in order.
func BuildActionViews(actions []game.Action) []ActionView {
	views := make([]ActionView, 0, len(actions))
	for i, a := range actions {
		av := ActionView{Index: i, Type: a.Type.String(), Desc: a.String()}
		if a.Card != nil {
			av.InstanceID = a.Card.ID
		}
		if a.Target != nil {
			av.TargetID = a.Target.ID
		}
		views = append(views, av)
	}
	return views
}

// BuildEventView converts a logged event for the wire.
func BuildEventView(event log.GameEvent) EventView {
	return EventView{
		Seq:     event.Seq,
		Turn:    event.Turn,
		Phase:   event.Phase,
		Side:    log.SideName(event.Side),
		Type:    event.Type.String(),
		Card:    event.Card,
		Details: event.Details,
	}
}

// BuildEventViews converts a batch of events. It never returns nil.
func BuildEventViews(events []log.GameEvent) []EventView {
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, BuildEventView(e))
	}
	return views
}

// OutcomeName is the wire name of a battle phase outcome.
func OutcomeName(p game.Phase) string {
	switch p {
	case game.PhaseWin:
		return "win"
	case game.PhaseLoss:
		return "loss"
	default:
		return "exited"
	}
}
