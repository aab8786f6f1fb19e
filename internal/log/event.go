package log

// EventType enumerates all observable battle events.
type EventType int

const (
	EventPhaseChange EventType = iota
	EventSetup
	EventPlayCard
	EventAttackDeclare
	EventDamage
	EventDefeat
	EventReward
	EventEnergyChange
	EventWin
	EventLoss
	EventExit
)

func (e EventType) String() string {
	switch e {
	case EventPhaseChange:
		return "PhaseChange"
	case EventSetup:
		return "Setup"
	case EventPlayCard:
		return "PlayCard"
	case EventAttackDeclare:
		return "AttackDeclare"
	case EventDamage:
		return "Damage"
	case EventDefeat:
		return "Defeat"
	case EventReward:
		return "Reward"
	case EventEnergyChange:
		return "EnergyChange"
	case EventWin:
		return "Win"
	case EventLoss:
		return "Loss"
	case EventExit:
		return "Exit"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a battle.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Turn    int       // which turn (1-based)
	Phase   string    // phase name at the time of the event
	Side    int       // acting side (0 = player, 1 = enemy)
	Type    EventType // event type
	Card    string    // card name (if applicable)
	Details string    // human-readable detail string
}
