package game

import "fmt"

// --- Enums ---

// Phase is the battle's state-machine position.
type Phase int

const (
	PhaseSetup Phase = iota
	PhasePlayer
	PhaseEnemy
	PhaseWin
	PhaseLoss
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "Setup"
	case PhasePlayer:
		return "Player Phase"
	case PhaseEnemy:
		return "Enemy Phase"
	case PhaseWin:
		return "Win"
	case PhaseLoss:
		return "Loss"
	default:
		return "None"
	}
}

// Terminal reports whether no further transitions can happen.
func (p Phase) Terminal() bool {
	return p == PhaseWin || p == PhaseLoss
}

// Side identifies one half of the battlefield.
const (
	SidePlayer = 0
	SideEnemy  = 1
)

type ZoneType int

const (
	ZoneDrawPile ZoneType = iota
	ZoneHand
	ZoneActive
	ZoneDiscard
	ZoneDefeated
)

func (z ZoneType) String() string {
	switch z {
	case ZoneDrawPile:
		return "Draw Pile"
	case ZoneHand:
		return "Hand"
	case ZoneActive:
		return "Active Row"
	case ZoneDiscard:
		return "Discard Pile"
	case ZoneDefeated:
		return "Defeated"
	default:
		return "Unknown"
	}
}

// --- Card definition (static, from the catalog) ---

// Card is an immutable catalog entry.
type Card struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int    `json:"cost"`
	Attack      int    `json:"attack"`
	HP          int    `json:"hp"`
	Armor       int    `json:"armor"`
	FrontImage  string `json:"frontImage"`
	BackImage   string `json:"backImage,omitempty"`
}

func (c Card) String() string {
	return c.Name
}

// --- CardInstance (runtime card inside one battle) ---

// CardInstance is one tracked copy of a card within a battle. It refers to
// its catalog entry by CardID and never writes back to it.
type CardInstance struct {
	ID     int // unique instance token within a battle
	CardID int
	Owner  int // SidePlayer or SideEnemy

	Name   string
	Cost   int
	Attack int
	Armor  int
	MaxHP  int

	// Mutable combat state
	HP               int
	Zone             ZoneType
	AttackedThisTurn bool
}

func (ci *CardInstance) String() string {
	if ci == nil {
		return "(empty)"
	}
	return fmt.Sprintf("%s #%d", ci.Name, ci.ID)
}

// Alive reports whether the instance still has hit points.
func (ci *CardInstance) Alive() bool {
	return ci.HP > 0
}

// --- Action types ---

type ActionType int

const (
	ActionPlayCard ActionType = iota
	ActionAttack
	ActionEndTurn
	ActionExit
)

func (a ActionType) String() string {
	switch a {
	case ActionPlayCard:
		return "Play Card"
	case ActionAttack:
		return "Attack"
	case ActionEndTurn:
		return "End Turn"
	case ActionExit:
		return "Exit Battle"
	default:
		return "Unknown"
	}
}

// Action represents one legal player move.
type Action struct {
	Type   ActionType
	Card   *CardInstance // card being played or attacking
	Target *CardInstance // attack target
	Desc   string        // human-readable description
}

func (a Action) String() string {
	if a.Desc != "" {
		return a.Desc
	}
	return a.Type.String()
}
