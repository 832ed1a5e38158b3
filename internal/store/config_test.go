package store

import (
	"path/filepath"
	"testing"
)

func TestNormalizeWorkspaceName(t *testing.T) {
	if got, err := NormalizeWorkspaceName("  My-Team_1  "); err != nil || got != "my-team_1" {
		t.Fatalf("got %q, %v", got, err)
	}
	for _, bad := range []string{"", "  ", "has space", "slash/y", "dots."} {
		if _, err := NormalizeWorkspaceName(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestConfigRoundTripAndRegistry(t *testing.T) {
	t.Setenv("TASKDECK_CONFIG_DIR", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig on fresh dir: %v", err)
	}
	if cfg.CurrentWorkspace != "" {
		t.Fatalf("fresh config should be zero, got %+v", cfg)
	}

	cfg.CurrentWorkspace = "team"
	cfg.Workspaces = map[string]WorkspaceRef{
		"team": {Path: "/srv/team"},
	}
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.CurrentWorkspace != "team" || got.Workspaces["team"].Path != "/srv/team" {
		t.Fatalf("config lost: %+v", got)
	}
}

func TestResolveWorkspaceDir_RegistryWins(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TASKDECK_CONFIG_DIR", dir)

	// Unregistered names resolve under the config dir.
	got, err := ResolveWorkspaceDir("scratch")
	if err != nil {
		t.Fatalf("ResolveWorkspaceDir: %v", err)
	}
	want := filepath.Join(dir, "workspaces", "scratch")
	if got != want {
		t.Fatalf("resolved %q, want %q", got, want)
	}

	// Registered names resolve to .taskdeck under the registered root.
	if err := SaveConfig(GlobalConfig{
		Workspaces: map[string]WorkspaceRef{"team": {Path: "/srv/team"}},
	}); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	got, err = ResolveWorkspaceDir("team")
	if err != nil {
		t.Fatalf("ResolveWorkspaceDir: %v", err)
	}
	if got != filepath.Join("/srv/team", ".taskdeck") {
		t.Fatalf("registry path ignored: %q", got)
	}
}

func TestListWorkspaces_UnionOfRegistryAndDisk(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TASKDECK_CONFIG_DIR", dir)

	if err := SaveConfig(GlobalConfig{
		Workspaces: map[string]WorkspaceRef{"remote": {Path: "/elsewhere"}},
	}); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	s := Store{Dir: filepath.Join(dir, "workspaces", "local", ".taskdeck")}
	if err := s.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	names, err := ListWorkspaces()
	if err != nil {
		t.Fatalf("ListWorkspaces: %v", err)
	}
	if len(names) != 2 || names[0] != "local" || names[1] != "remote" {
		t.Fatalf("names = %v", names)
	}
}
