package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/google/uuid"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvConfig, EnvDB, EnvSession, EnvBranch, EnvVerbosity} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assert.Equal(t, cfg.DBPath, DefaultDBPath)
	assert.Equal(t, cfg.DefaultBranch, DefaultBranch)
	assert.Equal(t, cfg.Verbosity, 0)
	assert.Equal(t, cfg.Source, "")
	if _, err := uuid.Parse(cfg.Session); err != nil {
		t.Fatalf("default session should be a uuid: %v", err)
	}
}

func TestDefaultSessionsDiffer(t *testing.T) {
	if Default().Session == Default().Session {
		t.Fatal("each default config needs its own session")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "db: data/graph.db\nsession: alice\nbranch: trunk\nverbosity: 2\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assert.Equal(t, cfg.DBPath, filepath.Join(dir, "data/graph.db"))
	assert.Equal(t, cfg.Session, "alice")
	assert.Equal(t, cfg.DefaultBranch, "trunk")
	assert.Equal(t, cfg.Verbosity, 2)
	assert.Equal(t, cfg.Source, filepath.Join(dir, FileName))
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "session: bob\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assert.Equal(t, cfg.Session, "bob")
	assert.Equal(t, cfg.DefaultBranch, DefaultBranch)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "db: file.db\nsession: alice\nbranch: trunk\n")
	t.Setenv(EnvDB, "/tmp/env.db")
	t.Setenv(EnvSession, "carol")
	t.Setenv(EnvBranch, "dev")
	t.Setenv(EnvVerbosity, "3")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assert.Equal(t, cfg.DBPath, "/tmp/env.db")
	assert.Equal(t, cfg.Session, "carol")
	assert.Equal(t, cfg.DefaultBranch, "dev")
	assert.Equal(t, cfg.Verbosity, 3)
}

func TestExplicitConfigMustExist(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfig, filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for missing REBASEKIT_CONFIG file")
	}
}

func TestExplicitConfigPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, "branch: release\n")
	t.Setenv(EnvConfig, path)

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assert.Equal(t, cfg.DefaultBranch, "release")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{"bad yaml", "db: [unclosed\n", nil},
		{"bad verbosity env", "", map[string]string{EnvVerbosity: "loud"}},
		{"negative verbosity", "verbosity: -1\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			if tt.file != "" {
				writeFile(t, filepath.Join(dir, FileName), tt.file)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(dir); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfg := &Config{DBPath: "/abs/graph.db", Session: "s1", DefaultBranch: "main", Verbosity: 1}
	if err := cfg.Write(filepath.Join(dir, FileName)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assert.Equal(t, got.DBPath, "/abs/graph.db")
	assert.Equal(t, got.Session, "s1")
	assert.Equal(t, got.Verbosity, 1)
}
