// Package config provides race preset management.
//
// Presets are JSON files in a config directory, one engine.GameConfig per
// file. The file name without its extension is the preset ID used when
// creating a session:
//
//	{
//	  "name": "Sprint",
//	  "description": "Short track for quick races",
//	  "path_length": 5,
//	  "hand_size": 4,
//	  "messages": {"welcome": "Go!", "victory": "The %s turtle wins!"}
//	}
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	preset, err := manager.LoadConfig("sprint")
//	presets, err := manager.ListConfigs()
//
// Loaded presets are cached. GetDefault returns the "classic" preset, the
// first valid preset when classic is missing, or the built-in rules when the
// directory holds no valid preset.
package config
