package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Identity names a player in the auth/banned lists.
type Identity struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name,omitempty"`
}

// Config is read once at startup and never mutated during a command.
type Config struct {
	// AllowAll lets any non-banned player use label commands.
	AllowAll bool `yaml:"allow_all"`
	// Auth lists privileged identities (in addition to the host).
	Auth []Identity `yaml:"auth"`
	// Banned players are rejected even when AllowAll is set.
	Banned []Identity `yaml:"banned"`
	// MaxLabels is a per-owner quota for new labels; 0 = unlimited.
	MaxLabels int `yaml:"max_labels"`
}

func Load(path string) (Config, error) {
	var c Config
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// InAuth reports whether playerID is in the privileged list.
func (c Config) InAuth(playerID string) bool {
	for _, a := range c.Auth {
		if a.ID == playerID {
			return true
		}
	}
	return false
}

// IsBanned reports whether playerID is blocked from label commands.
func (c Config) IsBanned(playerID string) bool {
	for _, b := range c.Banned {
		if b.ID == playerID {
			return true
		}
	}
	return false
}
