package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// This is the global app config for the blockchain.
type AppConfig struct {
	// How many leading 0s to form a valid hash.
	DIFFICULTY int `yaml:"difficulty"`
	// The default coinbase reward.
	COINBASE_REWARD float64 `yaml:"coinbase_reward"`
	// Whether to restart an in-flight mining task when an external block
	// replaces the tail we were mining on.
	REMINE_ON_TAIL_CHANGE bool `yaml:"remine_on_tail_change"`
	// Address the prometheus endpoint listens on. Empty disables metrics.
	METRICS_ADDR string `yaml:"metrics_addr"`
	// Rotated log file. Empty keeps logging on stderr only.
	LOG_FILE        string `yaml:"log_file"`
	LOG_MAX_SIZE_MB int    `yaml:"log_max_size_mb"`
	LOG_MAX_AGE_DAYS int   `yaml:"log_max_age_days"`
}

// Load reads and parses the yaml app config at the given path.
func Load(path string) (AppConfig, error) {
	c := AppConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, err
	}
	return c, nil
}
