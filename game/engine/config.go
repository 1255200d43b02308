package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GameMessages holds the text shown to the player at each stage of a game
type GameMessages struct {
	Welcome       string `json:"welcome"`
	ChooseColor   string `json:"choose_color"`
	Moved         string `json:"moved"`
	NoMovement    string `json:"no_movement"`
	Victory       string `json:"victory"`
	DeckExhausted string `json:"deck_exhausted"`
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	PathLength  int          `json:"path_length"`
	HandSize    int          `json:"hand_size"`
	Seed        *int64       `json:"seed,omitempty"`
	Messages    GameMessages `json:"messages"`
}

// DefaultGameConfig returns the classic rules: eight tiles between Start
// and Goal and a five card hand.
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "Classic race over eight tiles with a five card hand",
		PathLength:  DefaultPathLength,
		HandSize:    DefaultHandSize,
		Messages:    defaultMessages(),
	}
}

func defaultMessages() GameMessages {
	return GameMessages{
		Welcome:       "Welcome! Play cards to race the turtles to the goal.",
		ChooseColor:   "Choose which turtle the card moves.",
		Moved:         "The %s turtle moved from %d to %d.",
		NoMovement:    "The turtle could not move any further.",
		Victory:       "The %s turtle wins the race!",
		DeckExhausted: "The deck ran out of cards. The race is over.",
	}
}

// applyDefaults fills zero values left out of a config file
func (c *GameConfig) applyDefaults() {
	if c.PathLength == 0 {
		c.PathLength = DefaultPathLength
	}
	if c.HandSize == 0 {
		c.HandSize = DefaultHandSize
	}
	defaults := defaultMessages()
	if c.Messages.ChooseColor == "" {
		c.Messages.ChooseColor = defaults.ChooseColor
	}
	if c.Messages.Moved == "" {
		c.Messages.Moved = defaults.Moved
	}
	if c.Messages.NoMovement == "" {
		c.Messages.NoMovement = defaults.NoMovement
	}
	if c.Messages.DeckExhausted == "" {
		c.Messages.DeckExhausted = defaults.DeckExhausted
	}
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate path and hand size
	if config.PathLength < MinPathLength || config.PathLength > MaxPathLength {
		return fmt.Errorf("config validation: path_length must be between %d and %d, got %d",
			MinPathLength, MaxPathLength, config.PathLength)
	}
	if config.HandSize < MinHandSize || config.HandSize > MaxHandSize {
		return fmt.Errorf("config validation: hand_size must be between %d and %d, got %d",
			MinHandSize, MaxHandSize, config.HandSize)
	}
	if config.HandSize >= DeckSize {
		return fmt.Errorf("config validation: hand_size must be smaller than the deck (%d cards)", DeckSize)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Victory == "" {
		return fmt.Errorf("config validation: messages.victory is required")
	}

	// Validate format strings
	if !strings.Contains(config.Messages.Victory, "%s") {
		return fmt.Errorf("config validation: messages.victory must contain %%s for the winning color")
	}
	if config.Messages.Moved != "" &&
		(!strings.Contains(config.Messages.Moved, "%s") || strings.Count(config.Messages.Moved, "%d") != 2) {
		return fmt.Errorf("config validation: messages.moved must contain %%s for the color and two %%d for positions")
	}

	return nil
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	return ParseGameConfig(data)
}

// ParseGameConfig decodes, defaults and validates a JSON game configuration
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()
	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigByName loads a game configuration by name from the configs directory
func LoadConfigByName(configName string) (*GameConfig, error) {
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	configPath := filepath.Join("configs", configName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}

	config, err := LoadGameConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", configName, err)
	}
	return config, nil
}
