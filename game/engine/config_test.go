package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func createValidConfig() *GameConfig {
	return &GameConfig{
		Name:        "Test Config",
		Description: "A valid test configuration",
		PathLength:  8,
		HandSize:    5,
		Messages: GameMessages{
			Welcome:       "Welcome to the test race!",
			ChooseColor:   "Pick a turtle",
			Moved:         "%s went from %d to %d",
			NoMovement:    "Nothing moved",
			Victory:       "%s wins!",
			DeckExhausted: "Out of cards",
		},
	}
}

const testConfigJSON = `{
	"name": "Test Config",
	"description": "Test description",
	"path_length": 6,
	"hand_size": 4,
	"seed": 99,
	"messages": {
		"welcome": "Welcome!",
		"victory": "%s wins!"
	}
}`

func TestValidateGameConfig_ValidConfig(t *testing.T) {
	config := createValidConfig()
	err := ValidateGameConfig(config)
	if err != nil {
		t.Errorf("Expected valid config to pass validation, got: %v", err)
	}
}

func TestValidateGameConfig_Nil(t *testing.T) {
	if err := ValidateGameConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestValidateGameConfig_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(c *GameConfig)
		expectedError string
	}{
		{"missing name", func(c *GameConfig) { c.Name = "" }, "name is required"},
		{"missing description", func(c *GameConfig) { c.Description = "" }, "description is required"},
		{"path too short", func(c *GameConfig) { c.PathLength = 0 }, "path_length must be between"},
		{"path too long", func(c *GameConfig) { c.PathLength = MaxPathLength + 1 }, "path_length must be between"},
		{"hand too small", func(c *GameConfig) { c.HandSize = 0 }, "hand_size must be between"},
		{"hand too large", func(c *GameConfig) { c.HandSize = MaxHandSize + 1 }, "hand_size must be between"},
		{"missing welcome", func(c *GameConfig) { c.Messages.Welcome = "" }, "messages.welcome is required"},
		{"missing victory", func(c *GameConfig) { c.Messages.Victory = "" }, "messages.victory is required"},
		{"victory without verb", func(c *GameConfig) { c.Messages.Victory = "Victory!" }, "messages.victory must contain %s"},
		{"moved without positions", func(c *GameConfig) { c.Messages.Moved = "%s moved" }, "messages.moved must contain"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := createValidConfig()
			test.mutate(config)
			err := ValidateGameConfig(config)
			if err == nil {
				t.Fatalf("Expected validation error containing '%s'", test.expectedError)
			}
			if !strings.Contains(err.Error(), test.expectedError) {
				t.Errorf("Expected error containing '%s', got: %v", test.expectedError, err)
			}
		})
	}
}

func TestDefaultGameConfig(t *testing.T) {
	config := DefaultGameConfig()
	if err := ValidateGameConfig(config); err != nil {
		t.Fatalf("Default config should be valid, got: %v", err)
	}
	if config.PathLength != DefaultPathLength {
		t.Errorf("Expected path length %d, got %d", DefaultPathLength, config.PathLength)
	}
	if config.HandSize != DefaultHandSize {
		t.Errorf("Expected hand size %d, got %d", DefaultHandSize, config.HandSize)
	}
	if config.Seed != nil {
		t.Error("Default config should not fix a seed")
	}
}

func TestParseGameConfig_AppliesDefaults(t *testing.T) {
	config, err := ParseGameConfig([]byte(`{
		"name": "Sparse",
		"description": "Only the required fields",
		"messages": {"welcome": "Hi", "victory": "%s wins"}
	}`))
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}
	if config.PathLength != DefaultPathLength || config.HandSize != DefaultHandSize {
		t.Errorf("Expected defaults 8/5, got %d/%d", config.PathLength, config.HandSize)
	}
	if config.Messages.Moved == "" || config.Messages.DeckExhausted == "" {
		t.Error("Expected optional messages to be filled in")
	}
}

func TestParseGameConfig_InvalidJSON(t *testing.T) {
	if _, err := ParseGameConfig([]byte(`{"name":`)); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestLoadConfigByName(t *testing.T) {
	tempDir := t.TempDir()

	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)
	os.Chdir(tempDir)

	os.MkdirAll("configs", 0755)

	err := os.WriteFile(filepath.Join("configs", "test.json"), []byte(testConfigJSON), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	// Test loading by name without extension
	config, err := LoadConfigByName("test")
	if err != nil {
		t.Fatalf("Failed to load config by name: %v", err)
	}
	if config.Name != "Test Config" {
		t.Errorf("Expected config name 'Test Config', got '%s'", config.Name)
	}

	// Test loading by name with extension
	config2, err := LoadConfigByName("test.json")
	if err != nil {
		t.Fatalf("Failed to load config by name with extension: %v", err)
	}
	if config2.PathLength != 6 {
		t.Errorf("Expected path length 6, got %d", config2.PathLength)
	}

	// Test loading non-existent config
	_, err = LoadConfigByName("nonexistent")
	if err == nil {
		t.Fatal("Expected error for non-existent config")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected 'not found' error, got: %v", err)
	}
}

func TestLoadGameConfig(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "test_config.json")

	err := os.WriteFile(tempFile, []byte(testConfigJSON), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	config, err := LoadGameConfig(tempFile)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.HandSize != 4 {
		t.Errorf("Expected hand size 4, got %d", config.HandSize)
	}
	if config.Seed == nil || *config.Seed != 99 {
		t.Errorf("Expected seed 99, got %v", config.Seed)
	}

	// Test loading non-existent file
	_, err = LoadGameConfig("nonexistent.json")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestLoadGameConfig_ConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "custom.json"), []byte(testConfigJSON), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("CONFIG_DIR", dir)

	config, err := LoadGameConfig("configs/custom.json")
	if err != nil {
		t.Fatalf("Expected CONFIG_DIR to be honored, got: %v", err)
	}
	if config.Name != "Test Config" {
		t.Errorf("Expected 'Test Config', got '%s'", config.Name)
	}
}
