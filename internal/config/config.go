// Package config loads server and battle settings from an optional YAML
// file, then applies SKIRMISH_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/skirmish/internal/game"
)

// Config holds the settings shared by the skirmish binaries.
type Config struct {
	Addr          string        `yaml:"addr" env:"SKIRMISH_ADDR"`
	DataDir       string        `yaml:"data_dir" env:"SKIRMISH_DATA_DIR"`
	Seed          int64         `yaml:"seed" env:"SKIRMISH_SEED"` // 0 picks a time-based seed
	LadderMax     int           `yaml:"ladder_max" env:"SKIRMISH_LADDER_MAX"`
	EnemyIDOffset int           `yaml:"enemy_id_offset" env:"SKIRMISH_ENEMY_ID_OFFSET"`
	Rules         RulesConfig   `yaml:"rules"`
	Logging       LoggingConfig `yaml:"logging"`
}

// RulesConfig tunes the combat engine.
type RulesConfig struct {
	HandSize       int `yaml:"hand_size" env:"SKIRMISH_HAND_SIZE"`
	StartingEnergy int `yaml:"starting_energy" env:"SKIRMISH_STARTING_ENERGY"`
	EnergyRegen    int `yaml:"energy_regen" env:"SKIRMISH_ENERGY_REGEN"`
	MaxEnemyDeck   int `yaml:"max_enemy_deck" env:"SKIRMISH_MAX_ENEMY_DECK"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"SKIRMISH_LOG_LEVEL"`
	Format string `yaml:"format" env:"SKIRMISH_LOG_FORMAT"` // json or console
}

// Default returns the built-in settings.
func Default() *Config {
	rules := game.DefaultRules()
	return &Config{
		Addr:          ":8080",
		DataDir:       "./data",
		LadderMax:     4,
		EnemyIDOffset: game.DefaultEnemyIDOffset,
		Rules: RulesConfig{
			HandSize:       rules.HandSize,
			StartingEnergy: rules.StartingEnergy,
			EnergyRegen:    rules.EnergyRegen,
			MaxEnemyDeck:   rules.MaxEnemyDeck,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path over the defaults (an empty path skips the file), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if c.LadderMax < 0 {
		errs = append(errs, fmt.Errorf("ladder_max must not be negative, got %d", c.LadderMax))
	}
	if c.EnemyIDOffset <= 0 {
		errs = append(errs, fmt.Errorf("enemy_id_offset must be positive, got %d", c.EnemyIDOffset))
	}
	if c.Rules.HandSize <= 0 {
		errs = append(errs, fmt.Errorf("rules.hand_size must be positive, got %d", c.Rules.HandSize))
	}
	if c.Rules.StartingEnergy < 0 {
		errs = append(errs, fmt.Errorf("rules.starting_energy must not be negative, got %d", c.Rules.StartingEnergy))
	}
	if c.Rules.EnergyRegen < 0 {
		errs = append(errs, fmt.Errorf("rules.energy_regen must not be negative, got %d", c.Rules.EnergyRegen))
	}
	if c.Rules.MaxEnemyDeck <= 0 {
		errs = append(errs, fmt.Errorf("rules.max_enemy_deck must be positive, got %d", c.Rules.MaxEnemyDeck))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GameRules converts the rules section for the engine.
func (c *Config) GameRules() game.Rules {
	return game.Rules{
		HandSize:       c.Rules.HandSize,
		StartingEnergy: c.Rules.StartingEnergy,
		EnergyRegen:    c.Rules.EnergyRegen,
		MaxEnemyDeck:   c.Rules.MaxEnemyDeck,
	}
}
