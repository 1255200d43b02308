package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/turtle-race-game/game/engine"
	"github.com/wricardo/turtle-race-game/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultConfigName is the preset used when a session names no config
const DefaultConfigName = "classic"

const presetExt = ".json"

// Manager serves race presets from a directory of JSON files. Parsed
// presets are cached by preset ID, the file name without its extension.
type Manager struct {
	dir       string
	preferred *engine.GameConfig
	configs   map[string]*engine.GameConfig
	mu        sync.RWMutex
}

// NewManager opens the preset directory and picks the default preset
func NewManager(dir string) (*Manager, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config directory does not exist: %s", dir)
		}
		return nil, fmt.Errorf("config directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("config path is not a directory: %s", dir)
	}

	m := &Manager{
		dir:     dir,
		configs: make(map[string]*engine.GameConfig),
	}
	m.pickDefault()
	return m, nil
}

// LoadConfig returns the preset with the given ID. A trailing .json is
// accepted.
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	id, ok := presetID(name)
	if !ok {
		return nil, ErrConfigNotFound
	}

	if config, ok := m.cached(id); ok {
		return config, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if config, ok := m.configs[id]; ok {
		return config, nil
	}

	config, err := m.readPreset(id)
	if err != nil {
		return nil, err
	}
	m.configs[id] = config
	return config, nil
}

// ListConfigs describes every loadable preset in the directory. Files that
// fail to parse or validate are left out.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var presets []*service.ConfigInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != presetExt {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), presetExt)
		config, err := m.LoadConfig(id)
		if err != nil {
			continue
		}
		presets = append(presets, describe(id, entry.Name(), config))
	}
	return presets, nil
}

// GetDefault returns the preset sessions start with when none is named
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.preferred
}

// SetDefault makes the named preset the default
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.preferred = config
	m.mu.Unlock()
	return nil
}

// RefreshCache drops every parsed preset and picks the default again, so
// edits on disk become visible.
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	m.pickDefault()
	return nil
}

// SaveConfig validates config and writes it as <name>.json. The file is
// replaced through a rename so readers never see a partial preset.
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	id, ok := presetID(name)
	if !ok {
		return fmt.Errorf("%w: invalid preset name %q", ErrInvalidConfig, name)
	}
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(m.dir, id+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), m.path(id)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()
	return nil
}

func (m *Manager) cached(id string) (*engine.GameConfig, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	config, ok := m.configs[id]
	return config, ok
}

// readPreset parses a preset file from disk, bypassing the cache
func (m *Manager) readPreset(id string) (*engine.GameConfig, error) {
	data, err := os.ReadFile(m.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := engine.ParseGameConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, id, err)
	}
	return config, nil
}

// pickDefault prefers the classic preset, then the first loadable one, then
// the built-in rules.
func (m *Manager) pickDefault() {
	config, err := m.LoadConfig(DefaultConfigName)
	if err != nil {
		config = engine.DefaultGameConfig()
		if presets, listErr := m.ListConfigs(); listErr == nil && len(presets) > 0 {
			if first, err := m.LoadConfig(presets[0].ConfigID); err == nil {
				config = first
			}
		}
	}

	m.mu.Lock()
	m.preferred = config
	m.mu.Unlock()
}

func (m *Manager) path(id string) string {
	return filepath.Join(m.dir, id+presetExt)
}

func describe(id, filename string, config *engine.GameConfig) *service.ConfigInfo {
	return &service.ConfigInfo{
		Filename:    filename,
		ConfigID:    id,
		Name:        config.Name,
		Description: config.Description,
		PathLength:  config.PathLength,
		HandSize:    config.HandSize,
		Seeded:      config.Seed != nil,
	}
}

// presetID strips the extension and rejects names that would leave the
// config directory.
func presetID(name string) (string, bool) {
	id := strings.TrimSuffix(name, presetExt)
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", false
	}
	return id, true
}
