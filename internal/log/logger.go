package log

import (
	"fmt"
	"io"
)

// EventLogger is the interface for logging battle events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions and session replay ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
	read   int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

// Log records event. Events arriving without a sequence number get the next one.
func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	if event.Seq == 0 {
		event.Seq = l.seq
	}
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// Drain returns the events logged since the previous Drain call.
func (l *MemoryLogger) Drain() []GameEvent {
	if l.read >= len(l.events) {
		return nil
	}
	out := make([]GameEvent, len(l.events)-l.read)
	copy(out, l.events[l.read:])
	l.read = len(l.events)
	return out
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- Formatting ---

// SideName returns "Player" or "Enemy" for display.
func SideName(side int) string {
	if side == 1 {
		return "Enemy"
	}
	return "Player"
}

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	if phase == "" {
		phase = "          "
	}
	// Pad phase to 14 chars for alignment
	for len(phase) < 14 {
		phase += " "
	}

	return fmt.Sprintf("T%-2d %s| %s", e.Turn, phase, e.Details)
}

// --- Helper constructors for common events ---

func NewPhaseChangeEvent(turn int, phase string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventPhaseChange,
		Details: fmt.Sprintf("Phase → %s", phase),
	}
}

func NewSetupEvent(playerDeck, enemyDeck int) GameEvent {
	return GameEvent{
		Phase:   "Setup",
		Type:    EventSetup,
		Details: fmt.Sprintf("Battle setup: player deck %d cards, enemy roster %d cards", playerDeck, enemyDeck),
	}
}

func NewPlayCardEvent(turn int, phase string, cardName string, cost, energyLeft int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventPlayCard,
		Card:    cardName,
		Details: fmt.Sprintf("Player plays %s (cost %d, energy left %d)", cardName, cost, energyLeft),
	}
}

func NewAttackDeclareEvent(turn int, phase string, side int, attacker string, defender string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Side:    side,
		Type:    EventAttackDeclare,
		Card:    attacker,
		Details: fmt.Sprintf("%s attacks: %s → %s", SideName(side), attacker, defender),
	}
}

func NewDamageEvent(turn int, phase string, side int, cardName string, damage, oldHP, newHP int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Side:    side,
		Type:    EventDamage,
		Card:    cardName,
		Details: fmt.Sprintf("%s takes %d damage (HP %d → %d)", cardName, damage, oldHP, newHP),
	}
}

func NewDefeatEvent(turn int, phase string, side int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Side:    side,
		Type:    EventDefeat,
		Card:    cardName,
		Details: fmt.Sprintf("%s's %s is defeated", SideName(side), cardName),
	}
}

func NewRewardEvent(turn int, phase string, cardName string, from string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventReward,
		Card:    cardName,
		Details: fmt.Sprintf("%s is added to the Player's hand (defeated %s)", cardName, from),
	}
}

func NewEnergyChangeEvent(turn int, phase string, oldEnergy, newEnergy int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventEnergyChange,
		Details: fmt.Sprintf("Energy: %d → %d (%s)", oldEnergy, newEnergy, reason),
	}
}

func NewWinEvent(turn int, phase string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventWin,
		Details: fmt.Sprintf("Player wins! (%s)", reason),
	}
}

func NewLossEvent(turn int, phase string, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Side:    1,
		Type:    EventLoss,
		Details: fmt.Sprintf("Player loses. (%s)", reason),
	}
}

func NewExitEvent(turn int, phase string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Type:    EventExit,
		Details: "Player leaves the battle",
	}
}
