package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/peterkuimelis/skirmish/internal/game"
	"github.com/peterkuimelis/skirmish/internal/log"
)

// BattleRequest selects the enemy roster for a new battle. Ladder, when set,
// takes precedence over BattleID. A nil Resolver reads the stored battle
// configurations with a fixed seed.
type BattleRequest struct {
	Resolver *game.Resolver
	Ladder   *game.Ladder
	BattleID *int
	Rules    game.Rules
	Logger   log.EventLogger
}

// StartBattle loads the catalog and saved deck, resolves the enemy roster
// and sets up a battle. It returns the battle ID that was used (nil for a
// random roster).
func (s *Store) StartBattle(ctx context.Context, req BattleRequest) (*game.Battle, *int, error) {
	catalog, err := s.Cards.Catalog(ctx)
	if err != nil {
		return nil, nil, err
	}
	deck, err := s.Deck.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	resolver := req.Resolver
	if resolver == nil {
		resolver = game.NewResolver(s.Battles, nil, req.Rules.MaxEnemyDeck)
	}
	battleID := req.BattleID
	var roster []int
	if req.Ladder != nil {
		battleID, roster, err = resolver.ResolveLadder(ctx, req.Ladder, catalog)
	} else {
		roster, err = resolver.Resolve(ctx, battleID, catalog)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("resolve enemy roster: %w", err)
	}

	// Drop saved entries the player no longer owns enough of.
	collection, err := s.Collection.Collection(ctx)
	if err != nil {
		return nil, nil, err
	}
	builder := game.NewDeckBuilder(catalog, collection, deck)

	battle, err := game.NewBattle(game.SetupConfig{
		Catalog:    catalog,
		PlayerDeck: game.ExpandDeck(builder.Entries()),
		EnemyDeck:  roster,
		Rules:      req.Rules,
		Logger:     req.Logger,
	})
	if err != nil {
		return nil, nil, err
	}
	s.logger.Debug("battle started",
		zap.Intp("battle_id", battleID),
		zap.Ints("roster", roster),
		zap.Int("deck_size", builder.Size()),
	)
	return battle, battleID, nil
}
