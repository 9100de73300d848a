package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type testConf struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

var errBadName = errors.New("name must not be empty")

func (c *testConf) Validate() error {
	if c.Name == "" {
		return errBadName
	}
	return nil
}

func writeConf(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "conf.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("CONF_TEST_DIR", "/srv/data")
	p := writeConf(t, "name: app\npath: ${CONF_TEST_DIR}/db.sqlite\n")

	var c testConf
	if err := Load(p, &c); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Path != "/srv/data/db.sqlite" {
		t.Errorf("path = %q", c.Path)
	}
}

func TestLoadRunsValidate(t *testing.T) {
	p := writeConf(t, "path: /tmp/x\n")

	var c testConf
	if err := Load(p, &c); !errors.Is(err, errBadName) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestLoadWithDefaultsFallback(t *testing.T) {
	def := writeConf(t, "name: fallback\n")

	var c testConf
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"), def, &c); err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if c.Name != "fallback" {
		t.Errorf("name = %q", c.Name)
	}

	var d testConf
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"), "", &d); err == nil {
		t.Error("missing file without fallback should fail")
	}
}
