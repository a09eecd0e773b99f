// Copyright (C) 2024-2026, Hyperplane Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import "time"

// Default returns a Config suitable for local development: a one-second
// block interval and a five-block CAT lifetime.
func Default() Config {
	return Config{
		BlockInterval:               1 * time.Second,
		CATLifetimeBlocks:           5,
		AllowCATPendingDependencies: false,
	}
}

// Fast returns a Config tuned for tests: short block interval, short CAT
// lifetime, so scenarios that exercise timeouts don't need to sleep long.
func Fast() Config {
	return Config{
		BlockInterval:               10 * time.Millisecond,
		CATLifetimeBlocks:           3,
		AllowCATPendingDependencies: false,
	}
}

// Production returns a Config with conservative, longer-lived settings.
func Production() Config {
	return Config{
		BlockInterval:               2 * time.Second,
		CATLifetimeBlocks:           30,
		AllowCATPendingDependencies: false,
	}
}

// PresetNames lists the names accepted by ByName.
func PresetNames() []string {
	return []string{"default", "fast", "production"}
}

// ByName looks up a preset by name, mirroring
// config.GetParametersByName/GetPresetParameters in the reference codebase.
func ByName(name string) (Config, error) {
	switch name {
	case "default":
		return Default(), nil
	case "fast":
		return Fast(), nil
	case "production":
		return Production(), nil
	default:
		return Config{}, ErrUnknownPreset
	}
}
