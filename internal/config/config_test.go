package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Default()
	cfg.Benchmark.Name = "rcx"
	return cfg
}

func TestValidateAcceptsDefaultWithBenchmarkName(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(0); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsEmptyBenchmarkName(t *testing.T) {
	cfg := validConfig()
	cfg.Benchmark.Name = ""
	err := cfg.Validate(0)
	if err == nil {
		t.Fatalf("Validate() = nil, want error")
	}
	if !strings.Contains(err.Error(), ErrUnknownBenchmark.Error()) {
		t.Errorf("error %q does not mention ErrUnknownBenchmark", err)
	}
}

func TestValidateRejectsThreadsExceedingAvailableCPUs(t *testing.T) {
	cfg := validConfig()
	cfg.Benchmark.ThreadsNb = 8
	if err := cfg.Validate(4); err == nil {
		t.Fatalf("Validate() = nil, want error for threadsNb > availableCPUs")
	}
}

func TestValidateRejectsBucketsAboveMax(t *testing.T) {
	cfg := validConfig()
	cfg.Benchmark.NrBuckets = MaxBuckets + 1
	if err := cfg.Validate(0); err == nil {
		t.Fatalf("Validate() = nil, want error for nrBuckets > MaxBuckets")
	}
}

func TestValidateRejectsUnsupportedTracingExporter(t *testing.T) {
	cfg := validConfig()
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "jaeger"
	if err := cfg.Validate(0); err == nil {
		t.Fatalf("Validate() = nil, want error for unsupported tracing exporter")
	}
}

func TestValidateRequiresCSVPathWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.CSV.Enabled = true
	cfg.CSV.Path = ""
	if err := cfg.Validate(0); err == nil {
		t.Fatalf("Validate() = nil, want error for csv.enabled without csv.path")
	}
}

func TestLoadConfigParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "benchmark:\n  name: rcx\n  threadsNb: 4\n  durationMs: 1000\n  range: 1024\n  nrBuckets: 16\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Benchmark.Name != "rcx" || cfg.Benchmark.ThreadsNb != 4 {
		t.Fatalf("LoadConfig() = %+v, unexpected values", cfg.Benchmark)
	}
}

func TestApplyEnvOverridesBenchmarkFields(t *testing.T) {
	cfg := Default()
	cfg.Benchmark.Name = "rcu"

	t.Setenv("SYNCTEST_BENCHMARK", "forgive")
	t.Setenv("SYNCTEST_THREADS", "12")
	t.Setenv("SYNCTEST_CSV_ENABLED", "true")

	cfg.ApplyEnvOverrides()

	if cfg.Benchmark.Name != "forgive" {
		t.Errorf("Benchmark.Name = %q, want %q", cfg.Benchmark.Name, "forgive")
	}
	if cfg.Benchmark.ThreadsNb != 12 {
		t.Errorf("Benchmark.ThreadsNb = %d, want 12", cfg.Benchmark.ThreadsNb)
	}
	if !cfg.CSV.Enabled {
		t.Errorf("CSV.Enabled = false, want true")
	}
}
