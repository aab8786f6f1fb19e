package game

// Side holds one half of the battlefield. Row order matters: the enemy
// always strikes the first card in the player's active row.
type Side struct {
	Hand     []*CardInstance
	Active   []*CardInstance
	DrawPile []*CardInstance
	Discard  []*CardInstance
}

// FindInHand returns the hand card with the given instance ID.
func (s *Side) FindInHand(id int) *CardInstance {
	return findInstance(s.Hand, id)
}

// FindActive returns the active card with the given instance ID.
func (s *Side) FindActive(id int) *CardInstance {
	return findInstance(s.Active, id)
}

// RemoveFromHand removes a card from the hand by instance ID.
func (s *Side) RemoveFromHand(card *CardInstance) {
	s.Hand = removeInstance(s.Hand, card.ID)
}

// RemoveActive removes a card from the active row, keeping row order.
func (s *Side) RemoveActive(card *CardInstance) {
	s.Active = removeInstance(s.Active, card.ID)
}

// AddToHand appends a card to the hand.
func (s *Side) AddToHand(card *CardInstance) {
	card.Zone = ZoneHand
	s.Hand = append(s.Hand, card)
}

// PlaceActive appends a card to the end of the active row.
func (s *Side) PlaceActive(card *CardInstance) {
	card.Zone = ZoneActive
	s.Active = append(s.Active, card)
}

// SendToDiscard moves a card to the discard pile.
func (s *Side) SendToDiscard(card *CardInstance) {
	card.Zone = ZoneDiscard
	card.AttackedThisTurn = false
	s.Discard = append(s.Discard, card)
}

func findInstance(cards []*CardInstance, id int) *CardInstance {
	for _, c := range cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func removeInstance(cards []*CardInstance, id int) []*CardInstance {
	for i, c := range cards {
		if c.ID == id {
			return append(cards[:i], cards[i+1:]...)
		}
	}
	return cards
}

// --- GameState ---

// GameState holds the complete state of one battle.
type GameState struct {
	Player *Side
	Enemy  *Side
	Turn   int // 1-based, advanced on each return to the player phase
	Phase  Phase
	Energy int

	// Enemy cards removed by the player, in defeat order.
	Defeated []*CardInstance

	// EnemyResolved is set once the enemy roster has been placed. The win
	// check never fires before that.
	EnemyResolved bool

	// ID counter for card instances
	nextID int

	// version counts accepted player moves.
	version int

	Result string
	Closed bool
}

// NewGameState creates an empty battle state in the setup phase.
func NewGameState() *GameState {
	return &GameState{
		Player: &Side{},
		Enemy:  &Side{},
		Phase:  PhaseSetup,
	}
}

// NextID generates a unique card instance ID.
func (gs *GameState) NextID() int {
	gs.nextID++
	return gs.nextID
}

// Version returns a counter that advances on every accepted move. A choice
// made against an older version is stale.
func (gs *GameState) Version() int {
	return gs.version
}

func (gs *GameState) touch() {
	gs.version++
}

// Over reports whether the battle reached Win or Loss.
func (gs *GameState) Over() bool {
	return gs.Phase.Terminal()
}

// ResetTurnFlags clears the per-turn attack flag on every active card.
func (gs *GameState) ResetTurnFlags() {
	for _, side := range []*Side{gs.Player, gs.Enemy} {
		for _, c := range side.Active {
			c.AttackedThisTurn = false
		}
	}
}

// CreateCardInstance creates a CardInstance from a catalog card, assigned to a side.
func (gs *GameState) CreateCardInstance(card Card, owner int) *CardInstance {
	return &CardInstance{
		ID:     gs.NextID(),
		CardID: card.ID,
		Owner:  owner,
		Name:   card.Name,
		Cost:   card.Cost,
		Attack: card.Attack,
		Armor:  card.Armor,
		MaxHP:  card.HP,
		HP:     card.HP,
		Zone:   ZoneDrawPile,
	}
}
