package config

import "time"

// DefaultSynonyms is the built-in synonym table, applied in order.
var DefaultSynonyms = []SynonymRule{
	{Canonical: "crash", Alternates: []string{"freeze", "hang", "not responding"}},
	{Canonical: "wifi", Alternates: []string{"wireless", "network", "internet"}},
	{Canonical: "screen", Alternates: []string{"display", "monitor"}},
	{Canonical: "audio", Alternates: []string{"sound", "speaker"}},
	{Canonical: "battery", Alternates: []string{"power"}},
}

// DefaultBadges are the badge tiers in ascending threshold order.
var DefaultBadges = []BadgeTier{
	{Title: "Newbie", Points: 0},
	{Title: "Junior Fixer", Points: 15},
	{Title: "Expert Fixer", Points: 30},
	{Title: "Master Fixer", Points: 50},
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir: ".fixbot",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Storage: StorageConfig{
			Driver: StorageSQLite,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "fixbot:",
			},
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "fixbot",
				Collection: "blobs",
			},
		},
		Matcher: MatcherConfig{
			Threshold:         0.4,
			Metric:            MetricLevenshtein,
			SimilarMinOverlap: 1,
			SimilarLimit:      3,
			Synonyms:          cloneSynonyms(DefaultSynonyms),
		},
		Gamification: GamificationConfig{
			TeachReward: 5,
			Badges:      append([]BadgeTier(nil), DefaultBadges...),
		},
		Chat: ChatConfig{
			TypingDelay:     time.Second,
			ThinkingDelay:   700 * time.Millisecond,
			EndDelay:        500 * time.Millisecond,
			IdleTimeout:     5 * time.Minute,
			SuggestionLimit: 4,
			HistoryLimit:    5,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Bots: BotsConfig{
			SessionTTL: 30 * time.Minute,
		},
	}
}

func cloneSynonyms(in []SynonymRule) []SynonymRule {
	out := make([]SynonymRule, len(in))
	for i, r := range in {
		out[i] = SynonymRule{Canonical: r.Canonical, Alternates: append([]string(nil), r.Alternates...)}
	}
	return out
}
