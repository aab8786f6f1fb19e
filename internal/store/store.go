package store

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/peterkuimelis/skirmish/internal/game"
)

// Store bundles the four file-backed collaborators of one data directory.
type Store struct {
	Cards      *CatalogStore
	Collection *CollectionStore
	Deck       *DeckStore
	Battles    *BattleConfigStore

	logger *zap.Logger
}

// Open prepares dataDir and returns stores over its files. enemyOffset is
// passed through to every Catalog the catalog store builds.
func Open(dataDir string, enemyOffset int, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("store")
	return &Store{
		Cards:      &CatalogStore{file: newJSONFile[[]game.Card](dataDir, CardsFile, logger), enemyOffset: enemyOffset},
		Collection: &CollectionStore{file: newJSONFile[[]game.CollectionEntry](dataDir, CollectionFile, logger)},
		Deck:       &DeckStore{file: newJSONFile[[]game.DeckEntry](dataDir, DeckFile, logger)},
		Battles:    &BattleConfigStore{file: newJSONFile[[]game.BattleConfig](dataDir, BattleConfigFile, logger)},
		logger:     logger,
	}, nil
}

// --- Catalog ---

// CatalogStore persists card definitions.
type CatalogStore struct {
	file        *jsonFile[[]game.Card]
	enemyOffset int
}

// List returns every card in file order.
func (s *CatalogStore) List(ctx context.Context) ([]game.Card, error) {
	cards, err := s.file.read()
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []game.Card{}
	}
	return cards, nil
}

// Catalog loads the cards into a lookup structure.
func (s *CatalogStore) Catalog(ctx context.Context) (*game.Catalog, error) {
	cards, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return game.NewCatalog(cards, s.enemyOffset), nil
}

// Append validates in, assigns the next free ID and stores the new card.
// It returns the full updated list.
func (s *CatalogStore) Append(ctx context.Context, in game.CardInput) ([]game.Card, error) {
	card, err := in.Validate()
	if err != nil {
		return nil, err
	}
	var added game.Card
	cards, err := s.file.update(func(cards []game.Card) ([]game.Card, error) {
		cat := game.NewCatalog(cards, s.enemyOffset)
		if cat.HasName(card.Name) {
			return nil, game.ValidationError("card with this name already exists")
		}
		card.ID = cat.NextID()
		added = card
		return append(cards, card), nil
	})
	if err != nil {
		return nil, err
	}
	s.file.logger.Info("card added", zap.Int("id", added.ID), zap.String("name", added.Name))
	return cards, nil
}

// --- Collection ---

// CollectionStore persists owned card quantities.
type CollectionStore struct {
	file *jsonFile[[]game.CollectionEntry]
}

// List returns the collection entries.
func (s *CollectionStore) List(ctx context.Context) ([]game.CollectionEntry, error) {
	entries, err := s.file.read()
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []game.CollectionEntry{}
	}
	return entries, nil
}

// Collection loads the ledger.
func (s *CollectionStore) Collection(ctx context.Context) (*game.Collection, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return game.NewCollection(entries), nil
}

// Upsert adds delta copies of cardID and returns the updated ledger.
func (s *CollectionStore) Upsert(ctx context.Context, cardID, delta int) ([]game.CollectionEntry, error) {
	return s.file.update(func(entries []game.CollectionEntry) ([]game.CollectionEntry, error) {
		c := game.NewCollection(entries)
		if err := c.Upsert(cardID, delta); err != nil {
			return nil, err
		}
		return c.Entries(), nil
	})
}

// --- Deck ---

// DeckStore persists the player's saved deck.
type DeckStore struct {
	file *jsonFile[[]game.DeckEntry]
}

// Load returns the saved deck.
func (s *DeckStore) Load(ctx context.Context) ([]game.DeckEntry, error) {
	deck, err := s.file.read()
	if err != nil {
		return nil, err
	}
	if deck == nil {
		deck = []game.DeckEntry{}
	}
	return deck, nil
}

// Save replaces the saved deck and echoes it back.
func (s *DeckStore) Save(ctx context.Context, deck []game.DeckEntry) ([]game.DeckEntry, error) {
	for _, e := range deck {
		if e.CardID <= 0 || e.Count < 1 {
			return nil, game.ValidationError("invalid deck entry {cardId: %d, count: %d}", e.CardID, e.Count)
		}
	}
	if deck == nil {
		deck = []game.DeckEntry{}
	}
	if err := s.file.replace(deck); err != nil {
		return deck, err
	}
	return deck, nil
}

// --- Battle configurations ---

// BattleConfigStore reads the predefined battles. It satisfies game.ConfigSource.
type BattleConfigStore struct {
	file *jsonFile[[]game.BattleConfig]
}

// List returns every configured battle.
func (s *BattleConfigStore) List(ctx context.Context) ([]game.BattleConfig, error) {
	return s.file.read()
}

// Replace overwrites the battle configurations. Used to seed a data directory.
func (s *BattleConfigStore) Replace(ctx context.Context, configs []game.BattleConfig) error {
	return s.file.replace(configs)
}
