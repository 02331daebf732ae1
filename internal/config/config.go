package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gtdone/internal/task"
)

type Config struct {
	Version  string               `yaml:"version" json:"version"`
	Server   Server               `yaml:"server" json:"server"`
	Rules    Rules                `yaml:"rules" json:"rules"`
	Review   Review               `yaml:"review" json:"review"`
	Priority task.PriorityWeights `yaml:"priority" json:"priority"`
}

type Server struct {
	Addr    string `yaml:"addr" json:"addr"`
	DataDir string `yaml:"data_dir" json:"data_dir"`
	// WatchDataDir reloads repos when another process rewrites the JSON files.
	WatchDataDir bool `yaml:"watch_data_dir" json:"watch_data_dir"`
}

type Rules struct {
	// PromoteInboxOnProjectAssign moves an inbox task to next when it gets a
	// project.
	PromoteInboxOnProjectAssign bool `yaml:"promote_inbox_on_project_assign" json:"promote_inbox_on_project_assign"`
	// DemoteOnDependencyAdd moves a next/someday task to waiting when it
	// gains a prerequisite.
	DemoteOnDependencyAdd bool `yaml:"demote_on_dependency_add" json:"demote_on_dependency_add"`
}

type Review struct {
	// SweepOnBoot runs the waiting-task sweep at startup.
	SweepOnBoot bool `yaml:"sweep_on_boot" json:"sweep_on_boot"`
	// MigrateBlockedOnBoot runs the one-time repair demoting blocked
	// next/someday tasks to waiting.
	MigrateBlockedOnBoot bool `yaml:"migrate_blocked_on_boot" json:"migrate_blocked_on_boot"`
}

func Default() *Config {
	return &Config{
		Version: "1.0",
		Server: Server{
			Addr:         ":8420",
			DataDir:      "data",
			WatchDataDir: true,
		},
		Rules: Rules{
			PromoteInboxOnProjectAssign: true,
			DemoteOnDependencyAdd:       true,
		},
		Review: Review{
			SweepOnBoot:          true,
			MigrateBlockedOnBoot: true,
		},
		Priority: task.DefaultPriorityWeights(),
	}
}

// Load reads a YAML config file, falling back to defaults when the file does
// not exist. Env overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnv(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyEnv(cfg)
	return cfg, nil
}
