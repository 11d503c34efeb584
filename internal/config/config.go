package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"couponprobe/internal/pattern"
)

const (
	StrategyRandom   = "random"
	StrategyOdometer = "odometer"
)

// Config is the full run configuration. The two enumeration strategies have
// different exhaustion semantics, so the active one is always an explicit
// choice here, never inferred.
type Config struct {
	Patterns  []string `yaml:"patterns" json:"patterns"`
	TargetURL string   `yaml:"targetUrl" json:"targetUrl"` // must contain one %s
	Strategy  string   `yaml:"strategy" json:"strategy"`   // "random" (default) or "odometer"

	Workers    int     `yaml:"workers" json:"workers"`
	Rate       float64 `yaml:"rate" json:"rate"` // target probes/second, 0 = unlimited
	BatchCap   int     `yaml:"batchCap" json:"batchCap"`
	StrictRate bool    `yaml:"strictRate" json:"strictRate"`

	SettleMs       int  `yaml:"settleMs" json:"settleMs"`
	NavTimeoutMs   int  `yaml:"navTimeoutMs" json:"navTimeoutMs"`
	DrainTimeoutMs int  `yaml:"drainTimeoutMs" json:"drainTimeoutMs"`
	ProgressEvery  int  `yaml:"progressEvery" json:"progressEvery"`
	Headless       bool `yaml:"headless" json:"headless"`
	Screenshots    bool `yaml:"screenshots" json:"screenshots"`

	UserAgent  string   `yaml:"userAgent" json:"userAgent"`
	Indicators []string `yaml:"indicators" json:"indicators"`

	DataDir     string `yaml:"dataDir" json:"dataDir"`
	VisitedFile string `yaml:"visitedFile" json:"visitedFile"`
	TestedFile  string `yaml:"testedFile" json:"testedFile"`
	SuccessFile string `yaml:"successFile" json:"successFile"`
	MetaFile    string `yaml:"metaFile" json:"metaFile"`
	ShotsDir    string `yaml:"shotsDir" json:"shotsDir"`
}

func Default() Config {
	return Config{
		Strategy:       StrategyRandom,
		Workers:        2,
		Rate:           2,
		BatchCap:       64,
		SettleMs:       2000,
		NavTimeoutMs:   10000,
		DrainTimeoutMs: 30000,
		ProgressEvery:  25,
		Headless:       true,
		Screenshots:    true,
		DataDir:        "data",
		VisitedFile:    "visited.txt",
		TestedFile:     "tested_coupons.txt",
		SuccessFile:    "successful_coupons.txt",
		MetaFile:       "run.json",
		ShotsDir:       "shots",
	}
}

// LoadFromPath reads a config file (YAML or JSON) over the defaults. Format
// is detected by extension or by content (first non-whitespace char).
func LoadFromPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses config from bytes. ext is the file extension for a format
// hint; empty = detect from content.
func Load(data []byte, ext string) (Config, error) {
	cfg := Default()

	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	if ext == "" {
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			ext = ".json"
		} else {
			ext = ".yaml"
		}
	}

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	return cfg, nil
}

// NormalizeAndValidate trims the config in place and returns a field→problem
// map; an empty map means the config is usable.
func (c *Config) NormalizeAndValidate() map[string]string {
	details := map[string]string{}
	if c == nil {
		details["config"] = "required"
		return details
	}

	c.TargetURL = strings.TrimSpace(c.TargetURL)
	c.Strategy = strings.ToLower(strings.TrimSpace(c.Strategy))
	c.DataDir = strings.TrimSpace(c.DataDir)

	c.Patterns = trimNonEmpty(c.Patterns)
	if len(c.Patterns) == 0 {
		details["patterns"] = "at least one template required"
	}
	for _, tmpl := range c.Patterns {
		p, err := pattern.Parse(tmpl)
		if err != nil {
			details["patterns"] = err.Error()
			break
		}
		if p.VariableCount() == 0 {
			details["patterns"] = fmt.Sprintf("template %q has no digit or lowercase-letter slots", tmpl)
			break
		}
	}

	if c.TargetURL == "" {
		details["targetUrl"] = "required"
	} else if strings.Count(c.TargetURL, "%s") != 1 {
		details["targetUrl"] = "must contain exactly one %s placeholder"
	}

	switch c.Strategy {
	case StrategyRandom, StrategyOdometer:
	case "":
		c.Strategy = StrategyRandom
	default:
		details["strategy"] = `must be "random" or "odometer"`
	}

	if c.Strategy == StrategyOdometer && len(c.Patterns) > 1 {
		details["patterns"] = "odometer strategy enumerates a single template"
	}

	if c.Workers <= 0 {
		details["workers"] = "must be > 0"
	}
	if c.Rate < 0 {
		details["rate"] = "must be >= 0"
	}
	if c.NavTimeoutMs <= 0 {
		details["navTimeoutMs"] = "must be > 0"
	}
	if c.SettleMs < 0 {
		details["settleMs"] = "must be >= 0"
	}
	if c.DataDir == "" {
		details["dataDir"] = "required"
	}

	return details
}

func trimNonEmpty(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
