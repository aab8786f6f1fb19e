package game

import (
	"context"
	"fmt"

	"github.com/peterkuimelis/skirmish/internal/log"
)

// Rules holds the tunable numbers of a battle.
type Rules struct {
	HandSize       int
	StartingEnergy int
	EnergyRegen    int
	MaxEnemyDeck   int
}

// DefaultRules returns the standard battle rules.
func DefaultRules() Rules {
	return Rules{
		HandSize:       8,
		StartingEnergy: 3,
		EnergyRegen:    2,
		MaxEnemyDeck:   MaxEnemyDeck,
	}
}

// SetupConfig holds everything needed to start a battle.
type SetupConfig struct {
	Catalog    *Catalog
	PlayerDeck []int // expanded deck, in order
	EnemyDeck  []int // resolved roster
	Rules      Rules // zero value selects DefaultRules
	Logger     log.EventLogger
}

// Battle is one combat session between the player's deck and an enemy roster.
type Battle struct {
	State   *GameState
	Catalog *Catalog
	Rules   Rules
	Logger  log.EventLogger

	controller PlayerController // set while Run is driving the battle
	ctx        context.Context
	seq        int
}

// NewBattle performs setup: the first HandSize deck cards form the hand, the
// rest the draw pile, and the whole roster is placed on the enemy row.
func NewBattle(cfg SetupConfig) (*Battle, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("new battle: nil catalog")
	}
	rules := cfg.Rules
	if rules == (Rules{}) {
		rules = DefaultRules()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	if len(cfg.EnemyDeck) == 0 {
		return nil, MalformedConfigError("enemy roster is empty")
	}

	gs := NewGameState()
	b := &Battle{State: gs, Catalog: cfg.Catalog, Rules: rules, Logger: logger}

	for i, id := range cfg.PlayerDeck {
		card, ok := cfg.Catalog.Lookup(id)
		if !ok {
			return nil, NotFoundError("card %d in player deck not found", id)
		}
		ci := gs.CreateCardInstance(card, SidePlayer)
		if i < rules.HandSize {
			gs.Player.AddToHand(ci)
		} else {
			gs.Player.DrawPile = append(gs.Player.DrawPile, ci)
		}
	}

	enemies := cfg.EnemyDeck
	if rules.MaxEnemyDeck > 0 && len(enemies) > rules.MaxEnemyDeck {
		enemies = enemies[:rules.MaxEnemyDeck]
	}
	for _, id := range enemies {
		card, ok := cfg.Catalog.Lookup(id)
		if !ok {
			return nil, MalformedConfigError("enemy card %d not found", id)
		}
		gs.Enemy.PlaceActive(gs.CreateCardInstance(card, SideEnemy))
	}
	gs.EnemyResolved = true

	b.log(log.NewSetupEvent(len(cfg.PlayerDeck), len(enemies)))

	gs.Turn = 1
	gs.Energy = rules.StartingEnergy
	b.enterPhase(PhasePlayer)
	b.checkLoss()
	return b, nil
}

// requireAction validates that the player may act right now.
func (b *Battle) requireAction() error {
	gs := b.State
	switch {
	case gs.Closed:
		return ErrBattleClosed
	case gs.Over():
		return ErrBattleOver
	case gs.Phase != PhasePlayer:
		return ErrWrongPhase
	}
	return nil
}

// PlayCard pays a hand card's cost and moves it to the end of the active row.
func (b *Battle) PlayCard(instanceID int) error {
	if err := b.requireAction(); err != nil {
		return err
	}
	gs := b.State
	card := gs.Player.FindInHand(instanceID)
	if card == nil {
		return NotFoundError("card %d is not in hand", instanceID)
	}
	if card.Cost > gs.Energy {
		return InsufficientResourceError("not enough energy to play %s (cost %d, energy %d)", card.Name, card.Cost, gs.Energy)
	}

	gs.touch()
	gs.Energy -= card.Cost
	gs.Player.RemoveFromHand(card)
	gs.Player.PlaceActive(card)
	b.log(log.NewPlayCardEvent(gs.Turn, gs.Phase.String(), card.Name, card.Cost, gs.Energy))

	b.checkLoss()
	return nil
}

// Attack has a player active card strike an enemy active card.
func (b *Battle) Attack(attackerID, targetID int) error {
	if err := b.requireAction(); err != nil {
		return err
	}
	gs := b.State
	attacker := gs.Player.FindActive(attackerID)
	if attacker == nil {
		return NotFoundError("attacker %d is not on your active row", attackerID)
	}
	if attacker.AttackedThisTurn {
		return InsufficientResourceError("%s has already attacked this turn", attacker.Name)
	}
	target := gs.Enemy.FindActive(targetID)
	if target == nil {
		return NotFoundError("target %d is not on the enemy row", targetID)
	}

	gs.touch()
	b.log(log.NewAttackDeclareEvent(gs.Turn, gs.Phase.String(), SidePlayer, attacker.Name, target.Name))
	if b.strike(attacker, target) {
		gs.Enemy.RemoveActive(target)
		target.Zone = ZoneDefeated
		gs.Defeated = append(gs.Defeated, target)
		b.log(log.NewDefeatEvent(gs.Turn, gs.Phase.String(), SideEnemy, target.Name))
		b.reward(target)
	}
	attacker.AttackedThisTurn = true

	if b.checkWin() {
		return nil
	}
	b.checkLoss()
	return nil
}

// strike applies the attacker's damage and reports whether the target died.
func (b *Battle) strike(attacker, target *CardInstance) bool {
	gs := b.State
	oldHP := target.HP
	target.HP -= attacker.Attack
	b.log(log.NewDamageEvent(gs.Turn, gs.Phase.String(), target.Owner, target.Name, attacker.Attack, oldHP, target.HP))
	return !target.Alive()
}

// reward adds the player-side version of a defeated enemy card to the hand.
func (b *Battle) reward(defeated *CardInstance) {
	card, ok := b.Catalog.PlayerVersion(defeated.CardID)
	if !ok {
		return
	}
	gs := b.State
	gs.Player.AddToHand(gs.CreateCardInstance(card, SidePlayer))
	b.log(log.NewRewardEvent(gs.Turn, gs.Phase.String(), card.Name, defeated.Name))
}

// EndTurn regenerates energy, runs the enemy phase to completion and
// returns control to the player.
func (b *Battle) EndTurn() error {
	if err := b.requireAction(); err != nil {
		return err
	}
	gs := b.State
	gs.touch()

	old := gs.Energy
	gs.Energy += b.Rules.EnergyRegen
	b.log(log.NewEnergyChangeEvent(gs.Turn, gs.Phase.String(), old, gs.Energy, "end of turn"))
	gs.ResetTurnFlags()

	b.enterPhase(PhaseEnemy)
	b.enemyPhase()

	gs.Turn++
	b.enterPhase(PhasePlayer)
	gs.ResetTurnFlags()
	b.checkLoss()
	return nil
}

// enemyPhase has every enemy, in row order, hit whatever card currently
// leads the player's row.
func (b *Battle) enemyPhase() {
	gs := b.State
	for _, enemy := range gs.Enemy.Active {
		if len(gs.Player.Active) == 0 {
			break
		}
		target := gs.Player.Active[0]
		b.log(log.NewAttackDeclareEvent(gs.Turn, gs.Phase.String(), SideEnemy, enemy.Name, target.Name))
		if b.strike(enemy, target) {
			gs.Player.RemoveActive(target)
			gs.Player.SendToDiscard(target)
			b.log(log.NewDefeatEvent(gs.Turn, gs.Phase.String(), SidePlayer, target.Name))
		}
		enemy.AttackedThisTurn = true
	}
}

func (b *Battle) enterPhase(p Phase) {
	b.State.Phase = p
	b.log(log.NewPhaseChangeEvent(b.State.Turn, p.String()))
}

// checkWin ends the battle once the enemy row is cleared.
func (b *Battle) checkWin() bool {
	gs := b.State
	if !gs.EnemyResolved || len(gs.Enemy.Active) > 0 {
		return false
	}
	gs.Result = "all enemy cards defeated"
	b.log(log.NewWinEvent(gs.Turn, gs.Phase.String(), gs.Result))
	gs.Phase = PhaseWin
	return true
}

// checkLoss ends the battle when the player holds cards but can afford none
// of them and has nothing on the active row.
func (b *Battle) checkLoss() bool {
	gs := b.State
	if gs.Over() || gs.Phase != PhasePlayer {
		return false
	}
	if len(gs.Player.Hand) == 0 || len(gs.Player.Active) > 0 {
		return false
	}
	for _, c := range gs.Player.Hand {
		if c.Cost <= gs.Energy {
			return false
		}
	}
	gs.Result = "no playable cards and no active cards"
	b.log(log.NewLossEvent(gs.Turn, gs.Phase.String(), gs.Result))
	gs.Phase = PhaseLoss
	return true
}

// Exit closes the battle. It is allowed at any time, including after Win or Loss.
func (b *Battle) Exit() error {
	gs := b.State
	if gs.Closed {
		return ErrBattleClosed
	}
	gs.touch()
	gs.Closed = true
	b.log(log.NewExitEvent(gs.Turn, gs.Phase.String()))
	return nil
}

// Outcome reports the terminal phase, or PhasePlayer/PhaseEnemy while running.
func (b *Battle) Outcome() (Phase, string) {
	return b.State.Phase, b.State.Result
}

// --- Action enumeration ---

// Actions returns the moves currently open to the player. Exit is always last
// and is the only entry once the battle is over.
func (b *Battle) Actions() []Action {
	gs := b.State
	if gs.Closed {
		return nil
	}
	var actions []Action
	if gs.Phase == PhasePlayer {
		for _, c := range gs.Player.Hand {
			if c.Cost > gs.Energy {
				continue
			}
			actions = append(actions, Action{
				Type: ActionPlayCard,
				Card: c,
				Desc: fmt.Sprintf("Play %s (cost %d)", c.Name, c.Cost),
			})
		}
		for _, c := range gs.Player.Active {
			if c.AttackedThisTurn {
				continue
			}
			for _, t := range gs.Enemy.Active {
				actions = append(actions, Action{
					Type:   ActionAttack,
					Card:   c,
					Target: t,
					Desc:   fmt.Sprintf("Attack with %s (ATK %d) → %s (HP %d)", c.Name, c.Attack, t.Name, t.HP),
				})
			}
		}
		actions = append(actions, Action{Type: ActionEndTurn, Desc: "End turn"})
	}
	actions = append(actions, Action{Type: ActionExit, Desc: "Exit battle"})
	return actions
}

// Apply executes one action produced by Actions.
func (b *Battle) Apply(a Action) error {
	switch a.Type {
	case ActionPlayCard:
		if a.Card == nil {
			return ValidationError("play action has no card")
		}
		return b.PlayCard(a.Card.ID)
	case ActionAttack:
		if a.Card == nil || a.Target == nil {
			return ValidationError("attack action needs an attacker and a target")
		}
		return b.Attack(a.Card.ID, a.Target.ID)
	case ActionEndTurn:
		return b.EndTurn()
	case ActionExit:
		return b.Exit()
	default:
		return ValidationError("unknown action type %d", a.Type)
	}
}

// log emits a game event through the logger and notifies the controller.
func (b *Battle) log(event log.GameEvent) {
	b.seq++
	event.Seq = b.seq
	b.Logger.Log(event)
	if b.controller != nil {
		_ = b.controller.Notify(b.ctx, event)
	}
}
