package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and saves the
// resulting Config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to fixbot! Let's configure your troubleshooting assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Storage backend.
	driverPrompt := promptui.Select{
		Label: "Where should knowledge and profiles be stored",
		Items: []string{
			"sqlite - local file in the data directory",
			"redis  - shared Redis instance",
			"mongo  - MongoDB collection",
			"memory - nothing persisted",
		},
	}
	driverIdx, _, err := driverPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("storage selection: %w", err)
	}
	drivers := []StorageDriver{StorageSQLite, StorageRedis, StorageMongo, StorageMemory}
	cfg.Storage.Driver = drivers[driverIdx]

	switch cfg.Storage.Driver {
	case StorageSQLite:
		dir, err := (&promptui.Prompt{Label: "Data directory", Default: cfg.DataDir}).Run()
		if err != nil {
			return nil, fmt.Errorf("data dir: %w", err)
		}
		cfg.DataDir = dir
	case StorageRedis:
		addr, err := (&promptui.Prompt{Label: "Redis address", Default: cfg.Storage.Redis.Addr}).Run()
		if err != nil {
			return nil, fmt.Errorf("redis address: %w", err)
		}
		cfg.Storage.Redis.Addr = addr
	case StorageMongo:
		uri, err := (&promptui.Prompt{Label: "MongoDB URI", Default: cfg.Storage.Mongo.URI}).Run()
		if err != nil {
			return nil, fmt.Errorf("mongo uri: %w", err)
		}
		cfg.Storage.Mongo.URI = uri
	}

	// 2. Match strictness.
	thresholdPrompt := promptui.Prompt{
		Label:    "Match threshold (0 = exact only, 1 = anything)",
		Default:  strconv.FormatFloat(cfg.Matcher.Threshold, 'f', -1, 64),
		Validate: validateUnitFloat,
	}
	thresholdStr, err := thresholdPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("threshold: %w", err)
	}
	cfg.Matcher.Threshold, _ = strconv.ParseFloat(thresholdStr, 64)

	// 3. Teaching reward.
	rewardPrompt := promptui.Prompt{
		Label:    "Points awarded per taught solution",
		Default:  strconv.Itoa(cfg.Gamification.TeachReward),
		Validate: validateNonNegativeInt,
	}
	rewardStr, err := rewardPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("teach reward: %w", err)
	}
	cfg.Gamification.TeachReward, _ = strconv.Atoi(rewardStr)

	// 4. Extra knowledge catalogs.
	catalogPrompt := promptui.Prompt{
		Label:   "Extra knowledge catalog globs (comma-separated, blank for none)",
		Default: "",
	}
	catalogStr, err := catalogPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("catalog files: %w", err)
	}
	cfg.Knowledge.CatalogFiles = splitAndTrim(catalogStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validateUnitFloat(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if f < 0 || f > 1 {
		return fmt.Errorf("must be between 0 and 1")
	}
	return nil
}

func validateNonNegativeInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("not an integer")
	}
	if n < 0 {
		return fmt.Errorf("must be non-negative")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			token := trimSpace(s[start:i])
			if token != "" {
				result = append(result, token)
			}
			start = i + 1
		}
	}
	return result
}

func trimSpace(s string) string {
	i, j := 0, len(s)
	for i < j && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	for j > i && (s[j-1] == ' ' || s[j-1] == '\t') {
		j--
	}
	return s[i:j]
}
