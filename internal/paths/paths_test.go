package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBaseDirDefault(t *testing.T) {
	t.Setenv(HomeEnv, "")
	home, _ := os.UserHomeDir()
	if got, want := BaseDir(), filepath.Join(home, ".mcubus"); got != want {
		t.Errorf("BaseDir() = %q, want %q", got, want)
	}
}

func TestBaseDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)
	if got := BaseDir(); got != dir {
		t.Errorf("BaseDir() = %q, want %q", got, dir)
	}
	if got := ConfigPath(); got != filepath.Join(dir, "config.toml") {
		t.Errorf("ConfigPath() = %q", got)
	}
}

func TestDataPaths(t *testing.T) {
	if got := LogPath("/data"); !strings.HasSuffix(got, filepath.Join("logs", "mcubusd.log")) {
		t.Errorf("LogPath = %q", got)
	}
	if got := DBPath("/data"); got != filepath.Join("/data", "modules.db") {
		t.Errorf("DBPath = %q", got)
	}
	if got := LockPath("/data"); got != filepath.Join("/data", "LOCK") {
		t.Errorf("LockPath = %q", got)
	}
}

func TestEnsureDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	if err := EnsureDir(dataDir); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(LogDir(dataDir))
	if err != nil {
		t.Fatalf("log dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("log dir is not a directory")
	}
	if perm := info.Mode().Perm(); perm != 0700 {
		t.Errorf("log dir permission = %o, want 0700", perm)
	}
}

func TestResolveConfig(t *testing.T) {
	t.Setenv(HomeEnv, "/base")

	t.Setenv(ConfigEnv, "")
	if got := ResolveConfig(""); got != filepath.Join("/base", "config.toml") {
		t.Errorf("default = %q", got)
	}

	t.Setenv(ConfigEnv, "/etc/mcubus.toml")
	if got := ResolveConfig(""); got != "/etc/mcubus.toml" {
		t.Errorf("env = %q", got)
	}
	if got := ResolveConfig("/tmp/flag.toml"); got != "/tmp/flag.toml" {
		t.Errorf("flag = %q", got)
	}
}

func TestValidateModuleID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "mcu_001", false},
		{"mixed case", "MCU_Sensor_1", false},
		{"dotted", "greenhouse.north", false},
		{"colon", "bay:3", false},
		{"max length", strings.Repeat("a", 64), false},
		{"empty", "", true},
		{"space", "mcu 1", true},
		{"slash", "mcu/1", true},
		{"too long", strings.Repeat("a", 65), true},
		{"special chars", "mcu@1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateModuleID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateModuleID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
