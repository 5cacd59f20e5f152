package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFileMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	v := struct{ Name string }{Name: "kept"}
	found, err := readFile("absent.json", &v)
	if err != nil || found {
		t.Fatalf("Expected not found without error, got %v %v", found, err)
	}
	if v.Name != "kept" {
		t.Errorf("Missing file should leave the value untouched, got %q", v.Name)
	}
}

func TestWriteThenReadFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := writeFile("item.json", map[string]int{"a": 1}); err != nil {
		t.Fatalf("writeFile failed: %v", err)
	}
	var got map[string]int
	found, err := readFile("item.json", &got)
	if err != nil || !found {
		t.Fatalf("readFile failed: %v %v", found, err)
	}
	if got["a"] != 1 {
		t.Errorf("Unexpected content %v", got)
	}

	dir, _ := GetConfigDir()
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("Temp file left behind: %s", e.Name())
		}
	}
}

func TestReadFileCorrupt(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir, err := GetConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, stateFile), []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadState(); err == nil || !strings.Contains(err.Error(), "failed to parse state.json") {
		t.Errorf("Expected parse error, got %v", err)
	}
}
