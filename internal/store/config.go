package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type GlobalConfig struct {
	CurrentWorkspace string `json:"currentWorkspace,omitempty"`

	// Workspaces is an optional registry of named workspace roots. Entries
	// here take precedence over ~/.taskdeck/workspaces/<name>.
	Workspaces map[string]WorkspaceRef `json:"workspaces,omitempty"`
}

type WorkspaceRef struct {
	Path       string `json:"path"`
	LastOpened string `json:"lastOpened,omitempty"`
}

func ConfigDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("TASKDECK_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskdeck"), nil
}

func configPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (GlobalConfig, error) {
	path, err := configPath()
	if err != nil {
		return GlobalConfig{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return GlobalConfig{}, nil
		}
		return GlobalConfig{}, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return GlobalConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func SaveConfig(cfg GlobalConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// NormalizeWorkspaceName validates and canonicalizes a workspace name for use
// as a directory segment.
func NormalizeWorkspaceName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", errors.New("workspace name is empty")
	}
	for _, r := range name {
		ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
		if !ok {
			return "", fmt.Errorf("invalid workspace name %q (use a-z, 0-9, '-', '_')", name)
		}
	}
	return name, nil
}

// ListWorkspaces returns the union of registered and on-disk workspace names.
func ListWorkspaces() ([]string, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for name := range cfg.Workspaces {
		seen[name] = true
	}

	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(dir, "workspaces"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			seen[e.Name()] = true
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// ResolveWorkspaceDir returns the store dir for a workspace name, honoring
// registry entries.
func ResolveWorkspaceDir(name string) (string, error) {
	name, err := NormalizeWorkspaceName(name)
	if err != nil {
		return "", err
	}
	cfg, err := LoadConfig()
	if err != nil {
		return "", err
	}
	if ref, ok := cfg.Workspaces[name]; ok && strings.TrimSpace(ref.Path) != "" {
		return filepath.Join(filepath.Clean(ref.Path), ".taskdeck"), nil
	}
	return WorkspaceDir(name)
}
