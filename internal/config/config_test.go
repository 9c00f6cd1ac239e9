package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadAppliesDefaults(t *testing.T) {
	p := writeConfig(t, "version: 1\ngeneral:\n  data_root: "+t.TempDir()+"\n")
	c, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.UI.ItemsPerPage != 60 {
		t.Fatalf("items_per_page default = %d", c.UI.ItemsPerPage)
	}
	if c.Hardware.RAMOverheadFactor != 1.2 {
		t.Fatalf("ram_overhead_factor default = %v", c.Hardware.RAMOverheadFactor)
	}
}

func TestLoadRejectsBadVersion(t *testing.T) {
	p := writeConfig(t, "version: 2\ngeneral:\n  data_root: /tmp\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected version error")
	}
}

func TestLoadRejectsBadViewMode(t *testing.T) {
	p := writeConfig(t, "version: 1\ngeneral:\n  data_root: /tmp\nui:\n  view_mode: mosaic\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected view_mode error")
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("MODBROWSE_TEST_ROOT", t.TempDir())
	p := writeConfig(t, "version: 1\ngeneral:\n  data_root: ${MODBROWSE_TEST_ROOT}\n")
	c, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.General.DataRoot == "${MODBROWSE_TEST_ROOT}" || c.General.DataRoot == "" {
		t.Fatalf("env not expanded: %q", c.General.DataRoot)
	}
}

func TestValidateSizeDropThreshold(t *testing.T) {
	c := Defaults()
	c.Quality.SizeDropThreshold = 1.5
	if err := c.Validate(); err == nil {
		t.Fatalf("expected threshold error")
	}
}
