package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vango-dev/signalstate/internal/errors"
	"github.com/vango-dev/signalstate/pkg/state"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Scheduler != SchedulerFrame {
		t.Errorf("Scheduler = %q, want %q", cfg.Scheduler, SchedulerFrame)
	}
	if cfg.FrameInterval != DefaultFrameInterval {
		t.Errorf("FrameInterval = %q, want %q", cfg.FrameInterval, DefaultFrameInterval)
	}
	if cfg.Integrity != "warn" {
		t.Errorf("Integrity = %q, want %q", cfg.Integrity, "warn")
	}
	if cfg.Inspector.Address != DefaultInspectorAddress {
		t.Errorf("Inspector.Address = %q, want %q", cfg.Inspector.Address, DefaultInspectorAddress)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be true by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()

	content := `{
  "scheduler": "immediate",
  "integrity": "panic",
  "log": {"level": "debug", "format": "json"},
  "inspector": {"address": ":7070"}
}`
	if err := os.WriteFile(filepath.Join(tmpDir, JSONFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Scheduler != SchedulerImmediate {
		t.Errorf("Scheduler = %q, want %q", cfg.Scheduler, SchedulerImmediate)
	}
	if cfg.Log.Format != LogFormatJSON {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, LogFormatJSON)
	}
	if cfg.Inspector.Address != ":7070" {
		t.Errorf("Inspector.Address = %q, want %q", cfg.Inspector.Address, ":7070")
	}
	// Unset fields keep their defaults.
	if cfg.FrameInterval != DefaultFrameInterval {
		t.Errorf("FrameInterval = %q, want %q", cfg.FrameInterval, DefaultFrameInterval)
	}
	if cfg.Path() != filepath.Join(tmpDir, JSONFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()

	content := "scheduler: frame\nframeInterval: 5ms\nprodMode: true\ntracing:\n  enabled: true\n"
	if err := os.WriteFile(filepath.Join(tmpDir, YAMLFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.FrameDuration() != 5*time.Millisecond {
		t.Errorf("FrameDuration() = %v, want 5ms", cfg.FrameDuration())
	}
	if !cfg.ProdMode {
		t.Error("ProdMode should be true")
	}
	if !cfg.Tracing.Enabled {
		t.Error("Tracing.Enabled should be true")
	}
	if cfg.Tracing.TracerName != DefaultTracerName {
		t.Errorf("Tracing.TracerName = %q, want %q", cfg.Tracing.TracerName, DefaultTracerName)
	}
}

func TestLoadPrefersJSON(t *testing.T) {
	tmpDir := t.TempDir()

	os.WriteFile(filepath.Join(tmpDir, JSONFileName), []byte(`{"scheduler":"immediate"}`), 0644)
	os.WriteFile(filepath.Join(tmpDir, YAMLFileName), []byte("scheduler: frame\n"), 0644)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Scheduler != SchedulerImmediate {
		t.Errorf("Scheduler = %q, want %q", cfg.Scheduler, SchedulerImmediate)
	}
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	if !stderrors.Is(err, errors.New("E100")) {
		t.Errorf("Load() error = %v, want E100", err)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		content  string
		wantCode string
		wantLine int
	}{
		{"json syntax", "a.json", "{\n  \"scheduler\": ,\n}", "E101", 2},
		{"json type", "b.json", "{\n\n  \"prodMode\": \"yes\"\n}", "E101", 3},
		{"yaml syntax", "c.yaml", "scheduler: frame\nlog:\n  level: [\n", "E102", 0},
		{"unknown extension", "d.toml", "scheduler = 'frame'", "E103", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := LoadFile(path)
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("LoadFile() error = %v, want *errors.Error", err)
			}
			if e.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", e.Code, tt.wantCode)
			}
			if tt.wantLine > 0 {
				if e.Location == nil {
					t.Fatal("Location should be set")
				}
				if e.Location.Line != tt.wantLine {
					t.Errorf("Location.Line = %d, want %d", e.Location.Line, tt.wantLine)
				}
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{JSONFileName, YAMLFileName} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			cfg := New()
			cfg.Scheduler = SchedulerImmediate
			cfg.Log.Level = "warn"
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo() error = %v", err)
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if loaded.Scheduler != SchedulerImmediate {
				t.Errorf("Scheduler = %q, want %q", loaded.Scheduler, SchedulerImmediate)
			}
			if loaded.Log.Level != "warn" {
				t.Errorf("Log.Level = %q, want %q", loaded.Log.Level, "warn")
			}

			loaded.ProdMode = true
			if err := loaded.Save(); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
		})
	}
}

func TestSaveWithoutPath(t *testing.T) {
	if err := New().Save(); err == nil {
		t.Error("Save() should fail without a config path")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantCode string
	}{
		{"scheduler", func(c *Config) { c.Scheduler = "eventually" }, "E104"},
		{"frame interval syntax", func(c *Config) { c.FrameInterval = "soon" }, "E105"},
		{"frame interval zero", func(c *Config) { c.FrameInterval = "0s" }, "E105"},
		{"integrity", func(c *Config) { c.Integrity = "ignore" }, "E106"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "E107"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "E108"},
		{"inspector address", func(c *Config) { c.Inspector.Address = "localhost" }, "E109"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !stderrors.Is(err, errors.New(tt.wantCode)) {
				t.Errorf("Validate() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	cfg := New()
	cfg.Log.Level = "debug"

	level, err := cfg.LogLevel()
	if err != nil {
		t.Fatalf("LogLevel() error = %v", err)
	}
	if level.String() != "DEBUG" {
		t.Errorf("LogLevel() = %v, want DEBUG", level)
	}
}

func TestFrameDurationFallback(t *testing.T) {
	cfg := New()
	cfg.FrameInterval = "never"
	if cfg.FrameDuration() != state.FrameInterval {
		t.Errorf("FrameDuration() = %v, want %v", cfg.FrameDuration(), state.FrameInterval)
	}
}

func TestApply(t *testing.T) {
	state.ResetDefaults()
	t.Cleanup(state.ResetDefaults)

	cfg := New()
	cfg.Scheduler = SchedulerImmediate
	cfg.ProdMode = true
	cfg.Apply(nil)

	if !state.IsProdMode() {
		t.Error("Apply should enable prod mode")
	}

	// The immediate scheduler flushes inside Dispatch.
	v := state.NewValue(1)
	delivered := 0
	sub := v.Subscribe(func(int) { delivered++ })
	defer sub.Unsubscribe()

	state.Update(v, 2)
	if delivered != 2 {
		t.Errorf("delivered = %d, want 2", delivered)
	}
}

func TestFindConfigDir(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "signalstate.yml"), []byte("scheduler: frame\n"), 0644); err != nil {
		t.Fatal(err)
	}

	dir, err := FindConfigDir(nested)
	if err != nil {
		t.Fatalf("FindConfigDir() error = %v", err)
	}
	want, _ := filepath.EvalSymlinks(root)
	got, _ := filepath.EvalSymlinks(dir)
	if got != want {
		t.Errorf("FindConfigDir() = %q, want %q", got, want)
	}

	if !Exists(root) {
		t.Error("Exists() should report the .yml file")
	}
	if Exists(nested) {
		t.Error("Exists() should be false for the nested dir")
	}
}
