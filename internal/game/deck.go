package game

// DeckEntry represents a card and its count in a deck.
type DeckEntry struct {
	CardID int `json:"cardId"`
	Count  int `json:"count"`
}

// OwnedCard is a card still available to add to the deck.
type OwnedCard struct {
	Card      Card `json:"card"`
	Available int  `json:"available"`
}

// DeckBuilder edits a deck against the player's collection. For every card,
// deck count plus available quantity always equals the owned quantity.
type DeckBuilder struct {
	catalog   *Catalog
	order     []int // collection order, for listing
	owned     map[int]int
	available map[int]int
	entries   []DeckEntry
}

// NewDeckBuilder reconciles a saved deck with the collection. Saved entries
// for cards missing from the catalog are dropped, and counts are clamped to
// the owned quantity.
func NewDeckBuilder(catalog *Catalog, collection *Collection, saved []DeckEntry) *DeckBuilder {
	b := &DeckBuilder{
		catalog:   catalog,
		owned:     make(map[int]int),
		available: make(map[int]int),
	}
	for _, e := range collection.Entries() {
		b.order = append(b.order, e.CardID)
		b.owned[e.CardID] = e.QuantityOwned
		b.available[e.CardID] = e.QuantityOwned
	}

	for _, e := range saved {
		if _, ok := catalog.Lookup(e.CardID); !ok {
			continue
		}
		count := e.Count
		if count > b.available[e.CardID] {
			count = b.available[e.CardID]
		}
		if count <= 0 {
			continue
		}
		if i := b.entryIndex(e.CardID); i >= 0 {
			b.entries[i].Count += count
		} else {
			b.entries = append(b.entries, DeckEntry{CardID: e.CardID, Count: count})
		}
		b.available[e.CardID] -= count
	}
	return b
}

func (b *DeckBuilder) entryIndex(cardID int) int {
	for i, e := range b.entries {
		if e.CardID == cardID {
			return i
		}
	}
	return -1
}

// Count returns how many copies of the card are in the deck.
func (b *DeckBuilder) Count(cardID int) int {
	if i := b.entryIndex(cardID); i >= 0 {
		return b.entries[i].Count
	}
	return 0
}

// Available returns how many more copies of the card could be added.
func (b *DeckBuilder) Available(cardID int) int {
	return b.available[cardID]
}

// OwnedQuantity returns the total copies owned.
func (b *DeckBuilder) OwnedQuantity(cardID int) int {
	return b.owned[cardID]
}

// Add puts one more copy of the card in the deck.
func (b *DeckBuilder) Add(cardID int) error {
	card, ok := b.catalog.Lookup(cardID)
	if !ok {
		return NotFoundError("card %d not found", cardID)
	}
	if b.owned[cardID] <= b.Count(cardID) {
		return InsufficientResourceError("you don't have enough of %s", card.Name)
	}
	if i := b.entryIndex(cardID); i >= 0 {
		b.entries[i].Count++
	} else {
		b.entries = append(b.entries, DeckEntry{CardID: cardID, Count: 1})
	}
	b.available[cardID]--
	return nil
}

// Remove takes one copy of the card out of the deck. Removing a card that
// is not in the deck does nothing.
func (b *DeckBuilder) Remove(cardID int) {
	i := b.entryIndex(cardID)
	if i < 0 {
		return
	}
	if b.entries[i].Count > 1 {
		b.entries[i].Count--
	} else {
		b.entries = append(b.entries[:i], b.entries[i+1:]...)
	}
	b.available[cardID]++
}

// Entries returns the deck as saved, in insertion order.
func (b *DeckBuilder) Entries() []DeckEntry {
	out := make([]DeckEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Size returns the total number of cards in the deck.
func (b *DeckBuilder) Size() int {
	n := 0
	for _, e := range b.entries {
		n += e.Count
	}
	return n
}

// Owned lists catalog cards with copies still available, in collection order.
func (b *DeckBuilder) Owned() []OwnedCard {
	var result []OwnedCard
	for _, id := range b.order {
		if b.available[id] <= 0 {
			continue
		}
		card, ok := b.catalog.Lookup(id)
		if !ok {
			continue
		}
		result = append(result, OwnedCard{Card: card, Available: b.available[id]})
	}
	return result
}

// ExpandDeck turns deck entries into an ordered list of card IDs, each entry
// repeated Count times.
func ExpandDeck(entries []DeckEntry) []int {
	var ids []int
	for _, e := range entries {
		for i := 0; i < e.Count; i++ {
			ids = append(ids, e.CardID)
		}
	}
	return ids
}
