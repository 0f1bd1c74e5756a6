package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ZetoOfficial/engagement-analytics/internal/analytics"
	"github.com/ZetoOfficial/engagement-analytics/internal/reports"
	"gopkg.in/yaml.v3"
)

const DefaultEnvFile = ".env"

// Environment variables.
const (
	EnvStoreBackend  = "STORE_BACKEND"
	EnvNeo4jURI      = "NEO4J_URI"
	EnvNeo4jUser     = "NEO4J_USER"
	EnvNeo4jPassword = "NEO4J_PASSWORD"
	EnvNeo4jDatabase = "NEO4J_DATABASE"
	EnvDatabaseURL   = "DATABASE_URL"
	EnvFixtureFile   = "FIXTURE_FILE"
)

// Store backends.
const (
	BackendNeo4j    = "neo4j"
	BackendPostgres = "postgres"
	BackendFixture  = "fixture"
)

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// File is the optional YAML configuration file.
type File struct {
	Defaults Defaults `yaml:"defaults"`
}

// Defaults are report options as written in the file.
type Defaults struct {
	Limit        int                `yaml:"limit"`
	Window       string             `yaml:"window"`
	ThresholdSet string             `yaml:"threshold_set"`
	Weights      *analytics.Weights `yaml:"weights"`
	Strict       bool               `yaml:"strict"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &f, nil
}

// Options converts the file defaults into report options.
func (d Defaults) Options() (reports.Options, error) {
	opts := reports.Options{
		Limit:        d.Limit,
		ThresholdSet: d.ThresholdSet,
		Weights:      d.Weights,
		Strict:       d.Strict,
	}
	if d.Window != "" {
		w, err := ParseWindow(d.Window)
		if err != nil {
			return opts, err
		}
		opts.Window = w
	}
	return opts, nil
}

// ParseWindow accepts Go durations plus the "d" (day) and "mo" (30 days)
// suffixes, e.g. "720h", "7d", "1mo". The window must be positive.
func ParseWindow(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	const day = 24 * time.Hour
	for suffix, unit := range map[string]time.Duration{"mo": 30 * day, "d": day} {
		if !strings.HasSuffix(s, suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(s, suffix))
		if err != nil {
			return 0, fmt.Errorf("parse window %q: %w", s, err)
		}
		if n <= 0 {
			return 0, fmt.Errorf("parse window %q: must be positive", s)
		}
		return time.Duration(n) * unit, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse window %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse window %q: must be positive", s)
	}
	return d, nil
}

// ParseWeights reads "posts,likes,comments", e.g. "3,1,2".
func ParseWeights(s string) (*analytics.Weights, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("parse weights %q: want posts,likes,comments", s)
	}
	var vals [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parse weights %q: %w", s, err)
		}
		vals[i] = v
	}
	w := &analytics.Weights{Posts: vals[0], Likes: vals[1], Comments: vals[2]}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}
