package game

import (
	"strconv"
	"strings"
)

// DefaultEnemyIDOffset separates enemy-side cards from their player-side
// versions: enemy card N+offset defeats into player card N.
const DefaultEnemyIDOffset = 100

// Catalog is the read-only set of defined cards, keyed by ID.
type Catalog struct {
	cards       []Card
	byID        map[int]int
	enemyOffset int
}

// NewCatalog indexes cards. A non-positive enemyOffset selects DefaultEnemyIDOffset.
func NewCatalog(cards []Card, enemyOffset int) *Catalog {
	if enemyOffset <= 0 {
		enemyOffset = DefaultEnemyIDOffset
	}
	c := &Catalog{
		cards:       make([]Card, len(cards)),
		byID:        make(map[int]int, len(cards)),
		enemyOffset: enemyOffset,
	}
	copy(c.cards, cards)
	for i, card := range c.cards {
		c.byID[card.ID] = i
	}
	return c
}

// Lookup returns the card with the given ID.
func (c *Catalog) Lookup(id int) (Card, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Card{}, false
	}
	return c.cards[i], true
}

// Cards returns a copy of every card in catalog order.
func (c *Catalog) Cards() []Card {
	out := make([]Card, len(c.cards))
	copy(out, c.cards)
	return out
}

// Len returns the number of cards.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// EnemyIDOffset returns the boundary between player-side and enemy-side IDs.
func (c *Catalog) EnemyIDOffset() int {
	return c.enemyOffset
}

// IsEnemyCard reports whether id designates an enemy-side card.
func (c *Catalog) IsEnemyCard(id int) bool {
	return id >= c.enemyOffset
}

// EnemyCards returns the enemy-side subset in catalog order.
func (c *Catalog) EnemyCards() []Card {
	var result []Card
	for _, card := range c.cards {
		if c.IsEnemyCard(card.ID) {
			result = append(result, card)
		}
	}
	return result
}

// PlayerVersion returns the player-side card granted for defeating enemy card id.
func (c *Catalog) PlayerVersion(enemyID int) (Card, bool) {
	if !c.IsEnemyCard(enemyID) {
		return Card{}, false
	}
	return c.Lookup(enemyID - c.enemyOffset)
}

// NextID returns the identifier for a newly appended card: max existing + 1, or 1.
func (c *Catalog) NextID() int {
	max := 0
	for _, card := range c.cards {
		if card.ID > max {
			max = card.ID
		}
	}
	return max + 1
}

// HasName reports whether a card with exactly this name exists.
func (c *Catalog) HasName(name string) bool {
	for _, card := range c.cards {
		if card.Name == name {
			return true
		}
	}
	return false
}

// --- Admin input ---

// Stat is a numeric field submitted by the admin form. The form sends either
// JSON numbers or numeric strings, so decoding is deferred to validation.
type Stat struct {
	raw string
	set bool
}

// NewStat builds a Stat holding n.
func NewStat(n int) Stat {
	return Stat{raw: strconv.Itoa(n), set: true}
}

// UnmarshalJSON keeps the raw value; parsing happens in CardInput.Validate.
func (s *Stat) UnmarshalJSON(data []byte) error {
	v := strings.TrimSpace(string(data))
	if v == "null" {
		*s = Stat{}
		return nil
	}
	s.raw = strings.TrimSpace(strings.Trim(v, `"`))
	s.set = s.raw != ""
	return nil
}

// MarshalJSON writes the raw value as a string, or null when unset.
func (s Stat) MarshalJSON() ([]byte, error) {
	if !s.set {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(s.raw)), nil
}

// CardInput is an admin request to define a new card.
type CardInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        Stat   `json:"cost"`
	Attack      Stat   `json:"attack"`
	HP          Stat   `json:"hp"`
	Armor       Stat   `json:"armor"`
	FrontImage  string `json:"frontImage"`
	BackImage   string `json:"backImage"`
}

// Validate checks required fields and non-negative stats, returning the
// card it describes without an ID.
func (in CardInput) Validate() (Card, error) {
	required := []struct {
		field string
		value string
	}{
		{"name", in.Name},
		{"description", in.Description},
		{"frontImage", in.FrontImage},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return Card{}, ValidationError("missing required field: %s", r.field)
		}
	}

	cost, err := requiredStat("cost", in.Cost)
	if err != nil {
		return Card{}, err
	}
	attack, err := requiredStat("attack", in.Attack)
	if err != nil {
		return Card{}, err
	}
	hp, err := requiredStat("hp", in.HP)
	if err != nil {
		return Card{}, err
	}
	armor := 0
	if in.Armor.set {
		if armor, err = parseStat("armor", in.Armor); err != nil {
			return Card{}, err
		}
	}

	return Card{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Cost:        cost,
		Attack:      attack,
		HP:          hp,
		Armor:       armor,
		FrontImage:  in.FrontImage,
		BackImage:   in.BackImage,
	}, nil
}

func requiredStat(field string, s Stat) (int, error) {
	if !s.set {
		return 0, ValidationError("missing required field: %s", field)
	}
	return parseStat(field, s)
}

func parseStat(field string, s Stat) (int, error) {
	n, err := strconv.Atoi(s.raw)
	if err != nil || n < 0 {
		return 0, ValidationError("invalid value for %s", field)
	}
	return n, nil
}
