package config

import "time"

// StorageDriver identifies the backend that holds the persisted blobs.
type StorageDriver string

const (
	StorageSQLite StorageDriver = "sqlite"
	StorageRedis  StorageDriver = "redis"
	StorageMongo  StorageDriver = "mongo"
	StorageMemory StorageDriver = "memory"
)

// MatchMetric names the string similarity metric used by the fuzzy matcher.
type MatchMetric string

const (
	MetricLevenshtein       MatchMetric = "levenshtein"
	MetricJaroWinkler       MatchMetric = "jaro_winkler"
	MetricSmithWatermanGoto MatchMetric = "smith_waterman_gotoh"
	MetricSorensenDice      MatchMetric = "sorensen_dice"
)

// Config is the top-level fixbot configuration, corresponding to .fixbot.yml.
type Config struct {
	DataDir      string             `yaml:"data_dir" koanf:"data_dir"`
	Log          LogConfig          `yaml:"log" koanf:"log"`
	Storage      StorageConfig      `yaml:"storage" koanf:"storage"`
	Matcher      MatcherConfig      `yaml:"matcher" koanf:"matcher"`
	Gamification GamificationConfig `yaml:"gamification" koanf:"gamification"`
	Chat         ChatConfig         `yaml:"chat" koanf:"chat"`
	Server       ServerConfig       `yaml:"server" koanf:"server"`
	Bots         BotsConfig         `yaml:"bots" koanf:"bots"`
	Knowledge    KnowledgeConfig    `yaml:"knowledge" koanf:"knowledge"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"` // console or json
}

// StorageConfig selects and configures the blob backend.
type StorageConfig struct {
	Driver StorageDriver `yaml:"driver" koanf:"driver"`
	Redis  RedisConfig   `yaml:"redis" koanf:"redis"`
	Mongo  MongoConfig   `yaml:"mongo" koanf:"mongo"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" koanf:"addr"`
	Password string `yaml:"password" koanf:"password"`
	DB       int    `yaml:"db" koanf:"db"`
	Prefix   string `yaml:"prefix" koanf:"prefix"`
}

type MongoConfig struct {
	URI        string `yaml:"uri" koanf:"uri"`
	Database   string `yaml:"database" koanf:"database"`
	Collection string `yaml:"collection" koanf:"collection"`
}

// MatcherConfig tunes query normalization and fuzzy matching.
type MatcherConfig struct {
	// Threshold is the maximum fuzzy score (0 = exact, 1 = unrelated)
	// accepted as a match.
	Threshold         float64       `yaml:"threshold" koanf:"threshold"`
	Metric            MatchMetric   `yaml:"metric" koanf:"metric"`
	SimilarMinOverlap int           `yaml:"similar_min_overlap" koanf:"similar_min_overlap"`
	SimilarLimit      int           `yaml:"similar_limit" koanf:"similar_limit"`
	Synonyms          []SynonymRule `yaml:"synonyms" koanf:"synonyms"`
}

// SynonymRule folds every alternate into the canonical word.
type SynonymRule struct {
	Canonical  string   `yaml:"canonical" koanf:"canonical"`
	Alternates []string `yaml:"alternates" koanf:"alternates"`
}

// GamificationConfig holds the teaching reward and badge tiers.
type GamificationConfig struct {
	TeachReward int         `yaml:"teach_reward" koanf:"teach_reward"`
	Badges      []BadgeTier `yaml:"badges" koanf:"badges"`
}

type BadgeTier struct {
	Title  string `yaml:"title" koanf:"title"`
	Points int    `yaml:"points" koanf:"points"`
}

// ChatConfig holds conversation pacing and list sizes.
type ChatConfig struct {
	TypingDelay     time.Duration `yaml:"typing_delay" koanf:"typing_delay"`
	ThinkingDelay   time.Duration `yaml:"thinking_delay" koanf:"thinking_delay"`
	EndDelay        time.Duration `yaml:"end_delay" koanf:"end_delay"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" koanf:"idle_timeout"`
	SuggestionLimit int           `yaml:"suggestion_limit" koanf:"suggestion_limit"`
	HistoryLimit    int           `yaml:"history_limit" koanf:"history_limit"`
}

type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// BotsConfig configures the Slack and Teams webhooks. A conversation
// unused for SessionTTL is forgotten.
type BotsConfig struct {
	SlackSigningSecret string        `yaml:"slack_signing_secret" koanf:"slack_signing_secret"`
	SessionTTL         time.Duration `yaml:"session_ttl" koanf:"session_ttl"`
}

// KnowledgeConfig lists extra catalog files merged into the built-in
// default knowledge at startup.
type KnowledgeConfig struct {
	CatalogFiles []string `yaml:"catalog_files" koanf:"catalog_files"`
}
