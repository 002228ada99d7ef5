package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// State is what survives between CLI runs.
type State struct {
	User   string `yaml:"user,omitempty"`
	Token  string `yaml:"token,omitempty"`
	Server string `yaml:"server,omitempty"`
}

type FileStore struct {
	Path string
}

// DefaultPath is <user config dir>/tasktracker/session.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tasktracker", "session.yaml"), nil
}

// Load returns an empty State when the file does not exist yet.
func (f FileStore) Load() (State, error) {
	var st State
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("read session: %w", err)
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("parse session %s: %w", f.Path, err)
	}
	return st, nil
}

func (f FileStore) Save(st State) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, f.Path)
}

func (f FileStore) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
