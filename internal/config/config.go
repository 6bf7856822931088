package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides. Nested keys are
// separated by a double underscore: FIXBOT_MATCHER__THRESHOLD.
const EnvPrefix = "FIXBOT_"

// listKeys are replaced wholesale when present in the file rather than
// merged element-wise into the defaults.
var listKeys = []string{"matcher.synonyms", "gamification.badges", "knowledge.catalog_files"}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (FIXBOT_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	for _, key := range listKeys {
		if !k.Exists(key) {
			continue
		}
		switch key {
		case "matcher.synonyms":
			cfg.Matcher.Synonyms = nil
		case "gamification.badges":
			cfg.Gamification.Badges = nil
		case "knowledge.catalog_files":
			cfg.Knowledge.CatalogFiles = nil
		}
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps FIXBOT_CHAT__IDLE_TIMEOUT to chat.idle_timeout.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validDrivers = map[StorageDriver]bool{
	StorageSQLite: true,
	StorageRedis:  true,
	StorageMongo:  true,
	StorageMemory: true,
}

var validMetrics = map[MatchMetric]bool{
	MetricLevenshtein:       true,
	MetricJaroWinkler:       true,
	MetricSmithWatermanGoto: true,
	MetricSorensenDice:      true,
}

var validLogFormats = map[string]bool{
	"console": true,
	"json":    true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.DataDir == "" && c.Storage.Driver == StorageSQLite {
		return fmt.Errorf("data_dir is required for the sqlite driver")
	}
	if !validDrivers[c.Storage.Driver] {
		return fmt.Errorf("invalid storage.driver %q: must be one of sqlite, redis, mongo, memory", c.Storage.Driver)
	}
	if c.Log.Format != "" && !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q: must be console or json", c.Log.Format)
	}

	if c.Matcher.Threshold < 0 || c.Matcher.Threshold > 1 {
		return fmt.Errorf("matcher.threshold must be between 0 and 1")
	}
	if !validMetrics[c.Matcher.Metric] {
		return fmt.Errorf("invalid matcher.metric %q", c.Matcher.Metric)
	}
	if c.Matcher.SimilarMinOverlap < 1 {
		return fmt.Errorf("matcher.similar_min_overlap must be at least 1")
	}
	if c.Matcher.SimilarLimit < 0 {
		return fmt.Errorf("matcher.similar_limit must be non-negative")
	}
	for i, r := range c.Matcher.Synonyms {
		if strings.TrimSpace(r.Canonical) == "" {
			return fmt.Errorf("matcher.synonyms[%d]: canonical is required", i)
		}
	}

	if c.Gamification.TeachReward < 0 {
		return fmt.Errorf("gamification.teach_reward must be non-negative")
	}
	if len(c.Gamification.Badges) == 0 {
		return fmt.Errorf("gamification.badges must not be empty")
	}
	for i, b := range c.Gamification.Badges {
		if b.Title == "" {
			return fmt.Errorf("gamification.badges[%d]: title is required", i)
		}
		if i == 0 && b.Points != 0 {
			return fmt.Errorf("gamification.badges[0] must start at 0 points")
		}
		if i > 0 && b.Points <= c.Gamification.Badges[i-1].Points {
			return fmt.Errorf("gamification.badges must be in strictly ascending point order")
		}
	}

	if c.Chat.TypingDelay < 0 || c.Chat.ThinkingDelay < 0 || c.Chat.EndDelay < 0 || c.Chat.IdleTimeout < 0 {
		return fmt.Errorf("chat delays must be non-negative")
	}
	if c.Bots.SessionTTL < 0 {
		return fmt.Errorf("bots.session_ttl must be non-negative")
	}
	if c.Chat.SuggestionLimit < 0 || c.Chat.HistoryLimit < 0 {
		return fmt.Errorf("chat limits must be non-negative")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	return nil
}
