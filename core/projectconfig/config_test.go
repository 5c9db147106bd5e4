package projectconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/davidahmann/ctxmap/core/retention"
)

func noEnv(string) (string, bool) { return "", false }

func TestLoadAllowMissing(t *testing.T) {
	workDir := t.TempDir()
	path := filepath.Join(workDir, "missing.yaml")

	configuration, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load allow missing: %v", err)
	}
	if configuration.Sampling.Enabled != nil {
		t.Fatalf("expected empty configuration, got enabled %v", *configuration.Sampling.Enabled)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	workDir := t.TempDir()
	path := filepath.Join(workDir, "missing.yaml")

	if _, err := Load(path, false); err == nil {
		t.Fatal("expected missing required config error")
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	workDir := t.TempDir()
	path := filepath.Join(workDir, "config.yaml")
	content := []byte(`
sampling:
  enabled: false
  max_samples: 9
  version: " 2.1.0 "
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	configuration, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load parse: %v", err)
	}
	if configuration.Sampling.Enabled == nil || *configuration.Sampling.Enabled {
		t.Fatalf("expected sampling.enabled=false, got %#v", configuration.Sampling.Enabled)
	}
	if configuration.Sampling.MaxSamples != 9 {
		t.Fatalf("unexpected max_samples %d", configuration.Sampling.MaxSamples)
	}
	if configuration.Sampling.Version != "2.1.0" {
		t.Fatalf("unexpected version %q", configuration.Sampling.Version)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	workDir := t.TempDir()
	path := filepath.Join(workDir, "config.yaml")
	if err := os.WriteFile(path, []byte("\n  \n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	configuration, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	settings := configuration.Resolve(noEnv)
	if !settings.Enabled || settings.MaxSamples != retention.DefaultMaxSamples {
		t.Fatalf("unexpected defaults: %#v", settings)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	workDir := t.TempDir()
	path := filepath.Join(workDir, "config.yaml")
	if err := os.WriteFile(path, []byte("sampling: [\n"), 0o600); err != nil {
		t.Fatalf("write invalid config: %v", err)
	}

	if _, err := Load(path, false); err == nil {
		t.Fatal("expected parse error for invalid yaml")
	}
}

func TestResolveDefaults(t *testing.T) {
	settings := Config{}.Resolve(noEnv)
	if !settings.Enabled {
		t.Fatal("expected sampling enabled by default")
	}
	if settings.MaxSamples != retention.DefaultMaxSamples {
		t.Fatalf("unexpected default max_samples %d", settings.MaxSamples)
	}
}

func TestResolveNegativeMaxSamplesFallsBack(t *testing.T) {
	configuration := Config{Sampling: SamplingDefaults{MaxSamples: -3}}
	configuration.normalize()
	settings := configuration.Resolve(noEnv)
	if settings.MaxSamples != retention.DefaultMaxSamples {
		t.Fatalf("unexpected max_samples %d", settings.MaxSamples)
	}
}

func TestResolveEnvKillSwitch(t *testing.T) {
	enabled := true
	configuration := Config{Sampling: SamplingDefaults{Enabled: &enabled}}

	lookup := func(key string) (string, bool) {
		if key != DisableEnvVar {
			t.Fatalf("unexpected env lookup %q", key)
		}
		return "1", true
	}
	if settings := configuration.Resolve(lookup); settings.Enabled {
		t.Fatal("expected kill switch to disable sampling")
	}

	blank := func(string) (string, bool) { return "   ", true }
	if settings := configuration.Resolve(blank); !settings.Enabled {
		t.Fatal("blank kill switch value should not disable sampling")
	}
}
