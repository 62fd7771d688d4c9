package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseEnv(t *testing.T) {
	t.Parallel()

	input := "\ufeffPORT=9090\n# comment\n\nexport SIM_CONFIG='sim.yaml'\nDATABASE_URL=\"postgres://x\"\nnot a pair\n=empty\n"
	vars, err := parseEnv(strings.NewReader(input))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := map[string]string{
		"PORT":         "9090",
		"SIM_CONFIG":   "sim.yaml",
		"DATABASE_URL": "postgres://x",
	}
	if len(vars) != len(want) {
		t.Fatalf("expected %d vars, got %v", len(want), vars)
	}
	for k, v := range want {
		if vars[k] != v {
			t.Fatalf("expected %s=%q, got %q", k, v, vars[k])
		}
	}
}

func TestFindEnvFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if got := findEnvFile(nested, 3); got != "" {
		t.Fatalf("expected no env file, got %q", got)
	}

	envPath := filepath.Join(root, ".env")
	if err := os.WriteFile(envPath, []byte("PORT=1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := findEnvFile(nested, 3); got != envPath {
		t.Fatalf("expected %q, got %q", envPath, got)
	}
	if got := findEnvFile(nested, 2); got != "" {
		t.Fatalf("expected search depth to stop before root, got %q", got)
	}
}

func TestParseCSV(t *testing.T) {
	t.Parallel()

	got := parseCSV(" http://a , ,http://b")
	if len(got) != 2 || got[0] != "http://a" || got[1] != "http://b" {
		t.Fatalf("unexpected origins: %v", got)
	}
	if parseCSV("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}
