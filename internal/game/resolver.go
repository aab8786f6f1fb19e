package game

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
)

// MaxEnemyDeck is the largest enemy roster a battle uses.
const MaxEnemyDeck = 6

// BattleConfig is a predefined opposing deck. EnemyDeck is nil when the
// stored roster is missing or is not a list of card IDs.
type BattleConfig struct {
	BattleID  int   `json:"battleID"`
	EnemyDeck []int `json:"enemyDeck"`
}

// UnmarshalJSON decodes the roster leniently so that one malformed entry
// fails only when it is resolved, not when the whole file is read.
func (bc *BattleConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		BattleID  int             `json:"battleID"`
		EnemyDeck json.RawMessage `json:"enemyDeck"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	bc.BattleID = raw.BattleID
	bc.EnemyDeck = nil
	if len(raw.EnemyDeck) == 0 {
		return nil
	}
	var ids []int
	if err := json.Unmarshal(raw.EnemyDeck, &ids); err != nil {
		return nil
	}
	bc.EnemyDeck = ids
	return nil
}

// ConfigSource lists the stored battle configurations.
type ConfigSource interface {
	List(ctx context.Context) ([]BattleConfig, error)
}

// Resolver turns an optional battle ID into an enemy roster.
type Resolver struct {
	source     ConfigSource
	maxEnemies int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewResolver creates a resolver. A nil rng uses a time-independent default
// source seeded with 1; callers wanting variety pass their own.
func NewResolver(source ConfigSource, rng *rand.Rand, maxEnemies int) *Resolver {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if maxEnemies <= 0 {
		maxEnemies = MaxEnemyDeck
	}
	return &Resolver{source: source, rng: rng, maxEnemies: maxEnemies}
}

// ByID finds the configuration whose battleID matches exactly.
func (r *Resolver) ByID(ctx context.Context, battleID int) (BattleConfig, error) {
	configs, err := r.source.List(ctx)
	if err != nil {
		return BattleConfig{}, fmt.Errorf("list battle configs: %w", err)
	}
	for _, bc := range configs {
		if bc.BattleID == battleID {
			return bc, nil
		}
	}
	return BattleConfig{}, NotFoundError("battle %d not found", battleID)
}

// RandomConfig picks one configuration uniformly at random.
func (r *Resolver) RandomConfig(ctx context.Context) (BattleConfig, error) {
	configs, err := r.source.List(ctx)
	if err != nil {
		return BattleConfig{}, fmt.Errorf("list battle configs: %w", err)
	}
	if len(configs) == 0 {
		return BattleConfig{}, NotFoundError("no battles configured")
	}
	return configs[r.intn(len(configs))], nil
}

// Roster validates a configuration and returns at most maxEnemies enemy IDs.
func (r *Resolver) Roster(bc BattleConfig, catalog *Catalog) ([]int, error) {
	if bc.EnemyDeck == nil {
		return nil, MalformedConfigError("invalid battle configuration %d: enemyDeck is missing or not a list", bc.BattleID)
	}
	if len(bc.EnemyDeck) == 0 {
		return nil, MalformedConfigError("invalid battle configuration %d: enemyDeck is empty", bc.BattleID)
	}
	ids := bc.EnemyDeck
	if len(ids) > r.maxEnemies {
		ids = ids[:r.maxEnemies]
	}
	roster := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := catalog.Lookup(id); !ok {
			return nil, MalformedConfigError("invalid battle configuration %d: unknown card %d", bc.BattleID, id)
		}
		roster = append(roster, id)
	}
	return roster, nil
}

// RandomRoster draws between 1 and maxEnemies enemy-side cards, with replacement.
func (r *Resolver) RandomRoster(catalog *Catalog) ([]int, error) {
	pool := catalog.EnemyCards()
	if len(pool) == 0 {
		return nil, MalformedConfigError("cannot generate a random battle: no enemy cards (id >= %d) in catalog", catalog.EnemyIDOffset())
	}
	n := 1 + r.intn(r.maxEnemies)
	roster := make([]int, n)
	for i := range roster {
		roster[i] = pool[r.intn(len(pool))].ID
	}
	return roster, nil
}

// Resolve returns the roster for battleID. Without an ID it picks a stored
// configuration at random, falling back to a random roster when none exist.
func (r *Resolver) Resolve(ctx context.Context, battleID *int, catalog *Catalog) ([]int, error) {
	var (
		bc  BattleConfig
		err error
	)
	if battleID != nil {
		bc, err = r.ByID(ctx, *battleID)
	} else {
		bc, err = r.RandomConfig(ctx)
		if IsKind(err, KindNotFound) {
			return r.RandomRoster(catalog)
		}
	}
	if err != nil {
		return nil, err
	}
	return r.Roster(bc, catalog)
}

// ResolveLadder resolves the ladder's next battle. The ladder's random slot
// always draws a fresh random roster.
func (r *Resolver) ResolveLadder(ctx context.Context, ladder *Ladder, catalog *Catalog) (*int, []int, error) {
	id := ladder.Next()
	if id == nil {
		roster, err := r.RandomRoster(catalog)
		return nil, roster, err
	}
	roster, err := r.Resolve(ctx, id, catalog)
	return id, roster, err
}

func (r *Resolver) intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// Ladder cycles through predefined battles 1..Max, then offers one random
// battle (a nil ID) before starting over.
type Ladder struct {
	mu   sync.Mutex
	max  int
	next int // 0 means the random slot
}

// NewLadder creates a ladder over battle IDs 1..max.
func NewLadder(max int) *Ladder {
	if max < 0 {
		max = 0
	}
	l := &Ladder{max: max, next: 1}
	if max == 0 {
		l.next = 0
	}
	return l
}

// Peek returns the battle ID Next would return, without advancing.
func (l *Ladder) Peek() *int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current()
}

// Next returns the upcoming battle ID (nil for random) and advances.
func (l *Ladder) Next() *int {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.current()
	switch {
	case l.next == 0:
		if l.max > 0 {
			l.next = 1
		}
	case l.next < l.max:
		l.next++
	default:
		l.next = 0
	}
	return id
}

func (l *Ladder) current() *int {
	if l.next == 0 {
		return nil
	}
	id := l.next
	return &id
}
