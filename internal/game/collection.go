package game

// CollectionEntry records how many copies of a card the player owns.
type CollectionEntry struct {
	CardID        int `json:"cardId"`
	QuantityOwned int `json:"quantityOwned"`
}

// Collection is the player's ownership ledger. Entries keep their insertion
// order; a card without an entry is owned zero times.
type Collection struct {
	entries []CollectionEntry
	index   map[int]int
}

// NewCollection builds a ledger, merging duplicate card entries.
func NewCollection(entries []CollectionEntry) *Collection {
	c := &Collection{index: make(map[int]int, len(entries))}
	for _, e := range entries {
		if i, ok := c.index[e.CardID]; ok {
			c.entries[i].QuantityOwned += e.QuantityOwned
			continue
		}
		c.index[e.CardID] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c
}

// Owned returns the number of copies owned.
func (c *Collection) Owned(cardID int) int {
	i, ok := c.index[cardID]
	if !ok {
		return 0
	}
	return c.entries[i].QuantityOwned
}

// Upsert adds delta to the card's quantity, inserting a new entry if needed.
// The resulting quantity may not be negative.
func (c *Collection) Upsert(cardID, delta int) error {
	if cardID <= 0 {
		return ValidationError("invalid card id %d", cardID)
	}
	i, ok := c.index[cardID]
	if !ok {
		if delta < 0 {
			return ValidationError("cannot remove copies of card %d: none owned", cardID)
		}
		c.index[cardID] = len(c.entries)
		c.entries = append(c.entries, CollectionEntry{CardID: cardID, QuantityOwned: delta})
		return nil
	}
	if c.entries[i].QuantityOwned+delta < 0 {
		return ValidationError("cannot remove %d copies of card %d: only %d owned", -delta, cardID, c.entries[i].QuantityOwned)
	}
	c.entries[i].QuantityOwned += delta
	return nil
}

// Entries returns a copy of the ledger.
func (c *Collection) Entries() []CollectionEntry {
	out := make([]CollectionEntry, len(c.entries))
	copy(out, c.entries)
	return out
}
