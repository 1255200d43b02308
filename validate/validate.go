// Command validate provides a small CLI that validates game configuration JSON
// files in the ../configs directory (or the directory given as the first
// argument). It checks:
//   - JSON structure, unknown keys and required fields
//   - Message keys and their format verbs
//   - Path length and hand size limits (engine.ValidateGameConfig)
//   - Playability: an engine can be built and an opening hand dealt
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/turtle-race-game/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

var knownKeys = map[string]bool{
	"name":        true,
	"description": true,
	"path_length": true,
	"hand_size":   true,
	"seed":        true,
	"messages":    true,
}

var knownMessages = map[string]bool{
	"welcome":        true,
	"choose_color":   true,
	"moved":          true,
	"no_movement":    true,
	"victory":        true,
	"deck_exhausted": true,
}

// validateConfig loads and validates a single configuration JSON file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	fail := func(format string, args ...interface{}) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		fail("Failed to read file: %v", err)
		return result
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		fail("Invalid JSON: %v", err)
		return result
	}

	// Structural checks
	var unknown []string
	for key := range raw {
		if !knownKeys[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		fail("Unknown key: %s", key)
	}

	if _, ok := raw["messages"]; !ok {
		fail("Missing messages section")
	} else {
		var messages map[string]string
		if err := json.Unmarshal(raw["messages"], &messages); err != nil {
			fail("messages must be an object of strings: %v", err)
		}
		for key := range messages {
			if !knownMessages[key] {
				fail("Unknown message: %s", key)
			}
		}
	}

	if !result.Valid {
		return result
	}

	config, err := engine.ParseGameConfig(data)
	if err != nil {
		fail("%v", err)
		return result
	}

	playability := validatePlayability(config)
	if !playability.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, playability.Errors...)

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Path: %d tiles (goal at %d)", config.PathLength, config.PathLength+1))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Hand: %d cards", config.HandSize))
		if config.Seed != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Seed: %d", *config.Seed))
		}
	}

	return result
}

// validatePlayability builds an engine from the config and deals the
// opening hand.
func validatePlayability(config *engine.GameConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	eng, err := engine.NewEngine(config, engine.WithSeed(1))
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot build engine: %v", err))
		return result
	}

	if _, err := eng.DealHand(config.HandSize); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot deal opening hand: %v", err))
		return result
	}

	remaining := eng.Deck().Remaining()
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Playable: %d cards left to draw after dealing", remaining))
	return result
}

func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
