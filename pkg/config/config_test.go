package config

import (
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

type validated struct {
	Name string `yaml:"name"`
}

func (v *validated) Validate() error {
	if v.Name == "" {
		return os.ErrInvalid
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Basic(t *testing.T) {
	path := writeConfig(t, "name: ansuz\nport: 9090\n")
	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "ansuz" || s.Port != 9090 {
		t.Errorf("loaded = %+v", s)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("ANSUZ_TEST_NAME", "expanded")
	path := writeConfig(t, "name: ${ANSUZ_TEST_NAME}\n")
	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "expanded" {
		t.Errorf("name = %q, want expanded", s.Name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "absent.yaml"), &s); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_ValidatorFailure(t *testing.T) {
	path := writeConfig(t, "name: \"\"\n")
	var v validated
	if err := Load(path, &v); err == nil {
		t.Fatal("expected validation failure")
	}
}

func TestLoadOrDefault_MissingFileKeepsDefaults(t *testing.T) {
	v := validated{Name: "default"}
	if err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"), &v); err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if v.Name != "default" {
		t.Errorf("name = %q, defaults should survive", v.Name)
	}
}

func TestLoadOrDefault_ExistingFileLoaded(t *testing.T) {
	path := writeConfig(t, "name: fromfile\n")
	v := validated{Name: "default"}
	if err := LoadOrDefault(path, &v); err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if v.Name != "fromfile" {
		t.Errorf("name = %q, want fromfile", v.Name)
	}
}
