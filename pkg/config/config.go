// Package config provides hierarchical configuration management.
// Priority: defaults < system < user < project < explicit file < env
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	cferrors "github.com/cardflow/cardflow/pkg/errors"
)

// Config holds all Cardflow configuration.
type Config struct {
	Version Version `yaml:"version"`

	Filter FilterConfig `yaml:"filter"`
	Batch  BatchConfig  `yaml:"batch"`
	Files  FilesConfig  `yaml:"files"`
	Log    LogConfig    `yaml:"log"`
}

// FilterConfig controls card filtering and output buffering.
type FilterConfig struct {
	// BufferSize is the writer flush threshold, in buffered card fragments.
	BufferSize int `yaml:"buffer_size"`
	// DefaultSchema is the field list written by --dump-schema and used when
	// a caller asks for the default projection.
	DefaultSchema []string `yaml:"default_schema"`
	// ValidOperators is the accepted filter operator set.
	ValidOperators []string `yaml:"valid_operators"`
}

// BatchConfig controls the batch executor.
type BatchConfig struct {
	ChunkSize int           `yaml:"chunk_size"`
	Timeout   time.Duration `yaml:"timeout"`
}

// FilesConfig controls file handling.
type FilesConfig struct {
	MaxFileSizeMB int `yaml:"max_file_size_mb"`
	ReadBuffer    int `yaml:"read_buffer"`
}

// LogConfig controls the file logger.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Filter: FilterConfig{
			BufferSize: 1000,
			DefaultSchema: []string{
				"name", "type", "colors", "colorIdentity",
				"convertedManaCost", "manaCost", "text",
			},
			ValidOperators: []string{"eq", "gt", "lt", "gte", "lte", "contains", "in"},
		},
		Batch: BatchConfig{
			ChunkSize: 100,
			Timeout:   5 * time.Second,
		},
		Files: FilesConfig{
			MaxFileSizeMB: 2048,
			ReadBuffer:    64 * 1024,
		},
		Log: LogConfig{
			File:  "cardflow.log",
			Level: "ERROR",
		},
	}
}

// Manager handles configuration loading and merging.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	paths  []string // Paths that were loaded
}

// NewManager creates a new configuration manager.
func NewManager() *Manager {
	return &Manager{config: Default()}
}

// Load loads configuration from all sources in priority order. An optional
// explicit path (from --config) is applied after the conventional locations.
func (m *Manager) Load(explicit string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.config = Default()
	m.paths = nil

	paths := m.configPaths()
	if explicit != "" {
		paths = append(paths, explicit)
	}

	for _, path := range paths {
		err := m.loadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				// Conventional locations are optional; an explicit path is not.
				if path == explicit {
					return cferrors.FileNotFound(path)
				}
				continue
			}
			return err
		}
		m.paths = append(m.paths, path)
	}

	m.loadEnv()
	return nil
}

// configPaths returns conventional config file paths in priority order.
func (m *Manager) configPaths() []string {
	var paths []string

	if runtime.GOOS != "windows" {
		paths = append(paths, "/etc/cardflow/config.yaml")
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".cardflow", "config.yaml"))
	}

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".cardflow.yaml"))
	}

	return paths
}

// loadFile loads a single config file and merges it.
func (m *Manager) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var partial Config
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return cferrors.Wrapf(err, cferrors.CodeConfigInvalid, "invalid config file %s", path)
	}

	if partial.Version != (Version{}) && !partial.Version.CompatibleWith(CurrentVersion) {
		return cferrors.Newf(cferrors.CodeConfigVersion,
			"config version %s is incompatible with %s", partial.Version, CurrentVersion).
			WithContext("path", path)
	}

	m.merge(&partial)
	return nil
}

// merge merges non-zero values from src into config.
func (m *Manager) merge(src *Config) {
	if src.Filter.BufferSize != 0 {
		m.config.Filter.BufferSize = src.Filter.BufferSize
	}
	if len(src.Filter.DefaultSchema) > 0 {
		m.config.Filter.DefaultSchema = src.Filter.DefaultSchema
	}
	if len(src.Filter.ValidOperators) > 0 {
		m.config.Filter.ValidOperators = src.Filter.ValidOperators
	}

	if src.Batch.ChunkSize != 0 {
		m.config.Batch.ChunkSize = src.Batch.ChunkSize
	}
	if src.Batch.Timeout != 0 {
		m.config.Batch.Timeout = src.Batch.Timeout
	}

	if src.Files.MaxFileSizeMB != 0 {
		m.config.Files.MaxFileSizeMB = src.Files.MaxFileSizeMB
	}
	if src.Files.ReadBuffer != 0 {
		m.config.Files.ReadBuffer = src.Files.ReadBuffer
	}

	if src.Log.File != "" {
		m.config.Log.File = src.Log.File
	}
	if src.Log.Level != "" {
		m.config.Log.Level = src.Log.Level
	}
}

// loadEnv loads configuration from CARDFLOW_* environment variables.
func (m *Manager) loadEnv() {
	if v := os.Getenv("CARDFLOW_BUFFER_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			m.config.Filter.BufferSize = n
		}
	}
	if v := os.Getenv("CARDFLOW_MAX_FILE_SIZE_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			m.config.Files.MaxFileSizeMB = n
		}
	}
	if v := os.Getenv("CARDFLOW_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			m.config.Batch.ChunkSize = n
		}
	}
	if v := os.Getenv("CARDFLOW_LOG_FILE"); v != "" {
		m.config.Log.File = v
	}
	if v := os.Getenv("CARDFLOW_LOG_LEVEL"); v != "" {
		m.config.Log.Level = v
	}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetPaths returns the paths that were loaded.
func (m *Manager) GetPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths
}

// Save writes the current config to the user config file.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".cardflow")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0644)
}

// MarshalYAML renders the version as a string so saved configs stay readable.
func (v Version) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}
