package config

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnv overrides config fields from environment variables. Unset or
// malformed variables leave the config untouched.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("GTD_ADDR")); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("GTD_DATA_DIR")); v != "" {
		cfg.Server.DataDir = v
	}
	if v := getEnvBool("GTD_WATCH_DATA_DIR"); v != nil {
		cfg.Server.WatchDataDir = *v
	}
	if v := getEnvBool("GTD_SWEEP_ON_BOOT"); v != nil {
		cfg.Review.SweepOnBoot = *v
	}
	if v := getEnvBool("GTD_MIGRATE_BLOCKED_ON_BOOT"); v != nil {
		cfg.Review.MigrateBlockedOnBoot = *v
	}
	if v := getEnvInt("GTD_PRIORITY_OVERDUE"); v != 0 {
		cfg.Priority.Overdue = v
	}
	if v := getEnvInt("GTD_PRIORITY_STARRED"); v != 0 {
		cfg.Priority.Starred = v
	}
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

func getEnvBool(key string) *bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "1", "true", "yes":
		b := true
		return &b
	case "0", "false", "no":
		b := false
		return &b
	}
	return nil
}
