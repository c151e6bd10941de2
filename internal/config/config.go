// Package config loads and validates the benchmark driver's configuration:
// which protocol to exercise, how many workers to run, for how long, and
// how updates are mixed with lookups, plus the ambient logging/tracing/CSV
// settings that surround the run.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"rcuhashlist/internal/configloader"
	"rcuhashlist/internal/keyset"
	"rcuhashlist/internal/logger"
)

// ErrUnknownBenchmark reports a Benchmark.Name that is empty or not one of
// the registered protocol names. Validate includes its message in the
// error it returns; driver.Run wraps it for a name missing from
// keyset.Registry.
var ErrUnknownBenchmark = errors.New("config: unknown or unset benchmark name")

// TracingConfig controls the stdout-only OpenTelemetry tracer.
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // only "stdout" is supported
}

// BenchmarkConfig mirrors the driver parameter table: benchmark name,
// thread count, duration, update ratio, key range and bucket count.
type BenchmarkConfig struct {
	Name      string `yaml:"name"`
	ThreadsNb int    `yaml:"threadsNb"`
	Duration  int    `yaml:"durationMs"`
	Update    int    `yaml:"update"` // 0..10000, parts per 10000
	Range     int    `yaml:"range"`
	NrBuckets int    `yaml:"nrBuckets"`
}

// CPUBindConfig selects one of the three worker CPU-binding policies.
type CPUBindConfig struct {
	Policy string `yaml:"policy"` // "none" | "sequential" | "numa"
}

// CSVConfig controls whether per-run results are also appended to a CSV file.
type CSVConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Config is the root configuration for cmd/synctest.
type Config struct {
	Logger    configloader.LoggerConfig `yaml:"logger"`
	Tracing   TracingConfig             `yaml:"tracing"`
	Benchmark BenchmarkConfig           `yaml:"benchmark"`
	CPUBind   CPUBindConfig             `yaml:"cpuBind"`
	CSV       CSVConfig                 `yaml:"csv"`
}

// LoadConfig reads a YAML file at path into a Config. It performs only
// syntactic parsing; call Validate afterward to check field values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyEnvOverrides overrides selected fields from environment variables,
// when set:
//
//   - SYNCTEST_LOGGER_LEVEL, SYNCTEST_LOGGER_ENCODING, SYNCTEST_LOGGER_MODE,
//     SYNCTEST_LOGGER_FILE_PATH
//   - SYNCTEST_TRACING_ENABLED (bool), SYNCTEST_TRACING_EXPORTER
//   - SYNCTEST_BENCHMARK (protocol name)
//   - SYNCTEST_THREADS (int), SYNCTEST_DURATION_MS (int),
//     SYNCTEST_UPDATE (int, 0..10000), SYNCTEST_RANGE (int),
//     SYNCTEST_BUCKETS (int)
//   - SYNCTEST_CPU_BIND ("none"|"sequential"|"numa")
//   - SYNCTEST_CSV_ENABLED (bool), SYNCTEST_CSV_PATH
func (cfg *Config) ApplyEnvOverrides() {
	configloader.OverrideString(&cfg.Logger.Level, "SYNCTEST_LOGGER_LEVEL")
	configloader.OverrideString(&cfg.Logger.Encoding, "SYNCTEST_LOGGER_ENCODING")
	configloader.OverrideString(&cfg.Logger.Mode, "SYNCTEST_LOGGER_MODE")
	configloader.OverrideString(&cfg.Logger.File.Path, "SYNCTEST_LOGGER_FILE_PATH")

	configloader.OverrideBool(&cfg.Tracing.Enabled, "SYNCTEST_TRACING_ENABLED")
	configloader.OverrideString(&cfg.Tracing.Exporter, "SYNCTEST_TRACING_EXPORTER")

	configloader.OverrideString(&cfg.Benchmark.Name, "SYNCTEST_BENCHMARK")
	configloader.OverrideInt(&cfg.Benchmark.ThreadsNb, "SYNCTEST_THREADS")
	configloader.OverrideInt(&cfg.Benchmark.Duration, "SYNCTEST_DURATION_MS")
	configloader.OverrideInt(&cfg.Benchmark.Update, "SYNCTEST_UPDATE")
	configloader.OverrideInt(&cfg.Benchmark.Range, "SYNCTEST_RANGE")
	configloader.OverrideInt(&cfg.Benchmark.NrBuckets, "SYNCTEST_BUCKETS")

	configloader.OverrideString(&cfg.CPUBind.Policy, "SYNCTEST_CPU_BIND")

	configloader.OverrideBool(&cfg.CSV.Enabled, "SYNCTEST_CSV_ENABLED")
	configloader.OverrideString(&cfg.CSV.Path, "SYNCTEST_CSV_PATH")
}

// Validate performs structural and semantic validation, mirroring the
// bounds the original kernel module enforced at load time. All problems
// are accumulated into a single returned error.
func (cfg *Config) Validate(availableCPUs int) error {
	var errs []string

	switch cfg.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.level: %q", cfg.Logger.Level))
	}
	switch cfg.Logger.Encoding {
	case "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.encoding: %q", cfg.Logger.Encoding))
	}
	switch cfg.Logger.Mode {
	case "stdout":
	case "file":
		if cfg.Logger.File.Path == "" {
			errs = append(errs, "logger.file.path is required when mode=file")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.mode: %q", cfg.Logger.Mode))
	}

	if cfg.Tracing.Enabled {
		switch cfg.Tracing.Exporter {
		case "stdout":
		default:
			errs = append(errs, fmt.Sprintf("invalid tracing.exporter: %q (only %q is supported)", cfg.Tracing.Exporter, "stdout"))
		}
	}

	if strings.TrimSpace(cfg.Benchmark.Name) == "" {
		errs = append(errs, ErrUnknownBenchmark.Error())
	} else if _, ok := keyset.Registry[cfg.Benchmark.Name]; !ok {
		errs = append(errs, fmt.Sprintf("%s: %q", ErrUnknownBenchmark.Error(), cfg.Benchmark.Name))
	}
	if cfg.Benchmark.ThreadsNb <= 0 {
		errs = append(errs, "benchmark.threadsNb must be > 0")
	} else if availableCPUs > 0 && cfg.Benchmark.ThreadsNb > availableCPUs {
		errs = append(errs, fmt.Sprintf("benchmark.threadsNb (%d) exceeds available CPUs (%d)", cfg.Benchmark.ThreadsNb, availableCPUs))
	}
	if cfg.Benchmark.Duration <= 0 {
		errs = append(errs, "benchmark.durationMs must be > 0")
	}
	if cfg.Benchmark.Update < 0 || cfg.Benchmark.Update > 10000 {
		errs = append(errs, "benchmark.update must be in [0, 10000]")
	}
	if cfg.Benchmark.Range <= 0 {
		errs = append(errs, "benchmark.range must be > 0")
	}
	if cfg.Benchmark.NrBuckets <= 0 {
		errs = append(errs, "benchmark.nrBuckets must be > 0")
	} else if cfg.Benchmark.NrBuckets > MaxBuckets {
		errs = append(errs, fmt.Sprintf("benchmark.nrBuckets (%d) exceeds MaxBuckets (%d)", cfg.Benchmark.NrBuckets, MaxBuckets))
	}

	switch cfg.CPUBind.Policy {
	case "none", "sequential", "numa":
	default:
		errs = append(errs, fmt.Sprintf("invalid cpuBind.policy: %q", cfg.CPUBind.Policy))
	}

	if cfg.CSV.Enabled && strings.TrimSpace(cfg.CSV.Path) == "" {
		errs = append(errs, "csv.path is required when csv.enabled=true")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// MaxBuckets mirrors the original module's MAX_BUCKETS compile-time limit.
const MaxBuckets = 1000

// LogConfig dumps the resolved configuration as one structured Debug call.
func (cfg *Config) LogConfig(lgr logger.Logger) {
	lgr.Debug("resolved configuration",
		logger.F("logger.level", cfg.Logger.Level),
		logger.F("logger.encoding", cfg.Logger.Encoding),
		logger.F("logger.mode", cfg.Logger.Mode),
		logger.F("tracing.enabled", cfg.Tracing.Enabled),
		logger.F("tracing.exporter", cfg.Tracing.Exporter),
		logger.F("benchmark.name", cfg.Benchmark.Name),
		logger.F("benchmark.threadsNb", cfg.Benchmark.ThreadsNb),
		logger.F("benchmark.durationMs", cfg.Benchmark.Duration),
		logger.F("benchmark.update", cfg.Benchmark.Update),
		logger.F("benchmark.range", cfg.Benchmark.Range),
		logger.F("benchmark.nrBuckets", cfg.Benchmark.NrBuckets),
		logger.F("cpuBind.policy", cfg.CPUBind.Policy),
		logger.F("csv.enabled", cfg.CSV.Enabled),
		logger.F("csv.path", cfg.CSV.Path),
	)
}

// Default returns a Config with the ambient-stack defaults the original
// module used (console logging to stdout, tracing disabled, no CPU
// binding) but with an intentionally empty Benchmark.Name — see
// DESIGN.md's Open Question decision on the original's unusable default.
func Default() Config {
	return Config{
		Logger: configloader.LoggerConfig{
			Active:   true,
			Level:    "info",
			Encoding: "console",
			Mode:     "stdout",
		},
		Tracing: TracingConfig{
			Enabled:  false,
			Exporter: "stdout",
		},
		Benchmark: BenchmarkConfig{
			ThreadsNb: 1,
			Duration:  100,
			Update:    0,
			Range:     1024,
			NrBuckets: 1,
		},
		CPUBind: CPUBindConfig{Policy: "none"},
	}
}
