// Package config persists per-user tool settings as a small TOML file in the
// platform config directory. Settings are addressed by dotted keys in the
// style of git config (user.home, core.editor).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/zmk-tools/zmk-cli/internal/defs"
	"github.com/zmk-tools/zmk-cli/internal/repo"
)

// Settings is the full settings document.
type Settings struct {
	User UserSettings `toml:"user,omitempty"`
	Core CoreSettings `toml:"core,omitempty"`
}

// UserSettings holds per-user repository defaults.
type UserSettings struct {
	// Home is the path of the default config repository, used when a
	// command runs outside any repo.
	Home string `toml:"home,omitempty"`
}

// CoreSettings holds tool-behavior settings.
type CoreSettings struct {
	// Editor is the command used to open files for editing.
	Editor string `toml:"editor,omitempty"`

	// Explorer is the command used to open directories.
	Explorer string `toml:"explorer,omitempty"`
}

// fields maps dotted keys onto settings fields. Adding a setting means
// adding a row here.
var fields = map[string]func(*Settings) *string{
	"user.home":     func(s *Settings) *string { return &s.User.Home },
	"core.editor":   func(s *Settings) *string { return &s.Core.Editor },
	"core.explorer": func(s *Settings) *string { return &s.Core.Explorer },
}

// Keys returns all defined settings keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultPath returns the settings file location in the platform config
// directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(dir, "zmk", defs.SettingsFile), nil
}

// Store reads and writes one settings file.
type Store struct {
	path     string
	settings Settings
}

// Load reads the settings file at path. A missing file yields an empty
// store; Save will create it.
func Load(path string) (*Store, error) {
	s := &Store{path: path}

	if _, err := toml.DecodeFile(path, &s.settings); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value for a dotted key. Unset keys return the empty
// string.
func (s *Store) Get(key string) (string, error) {
	field, ok := fields[key]
	if !ok {
		return "", &UnknownKeyError{Key: key}
	}
	return *field(&s.settings), nil
}

// Set stores a value under a dotted key. An empty value clears the key.
// The change is held in memory until Save.
func (s *Store) Set(key, value string) error {
	field, ok := fields[key]
	if !ok {
		return &UnknownKeyError{Key: key}
	}
	*field(&s.settings) = value
	return nil
}

// Items returns every set key with its value, sorted by key.
func (s *Store) Items() [][2]string {
	var items [][2]string
	for _, key := range Keys() {
		if v := *fields[key](&s.settings); v != "" {
			items = append(items, [2]string{key, v})
		}
	}
	return items
}

// Save writes the settings file atomically, creating parent directories as
// needed.
func (s *Store) Save() error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s.settings); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".zmk-settings-*")
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Home returns the configured default repository path.
func (s *Store) Home() (string, bool) {
	return s.settings.User.Home, s.settings.User.Home != ""
}

// LocateRepo finds the repository a command should operate on: the repo
// containing startDir if there is one, else the configured user.home repo.
func (s *Store) LocateRepo(startDir string) (*repo.Repo, error) {
	if r, err := repo.Find(startDir); err == nil {
		return r, nil
	}

	home, ok := s.Home()
	if !ok {
		return nil, ErrHomeNotSet
	}
	r, err := repo.Open(home)
	if err != nil {
		return nil, fmt.Errorf("configured user.home is not a config repo: %w", err)
	}
	return r, nil
}
