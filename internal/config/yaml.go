// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"lightbox/internal/log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Candidate files searched when LoadConfig is given an empty path.
var candidates = []string{
	"lightbox.yaml",
	"config.yaml",
}

// LoadConfig loads configuration from the YAML file at path. If path is empty
// the candidate files are searched in the working directory, and when none
// exists the built-in defaults are used. Environment overrides are applied
// after loading, then the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment wins over the file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}

	log.Debugf("Config: loaded %s", path)
	return cfg, nil
}

// applyEnvOverrides applies the ENV_* variables. Unparseable values are ignored.
func (cfg *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
			log.Infof("Config: overriding debug from env: %v", bVal)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
		log.Infof("Config: overriding log_level from env: %s", val)
	}
	// ENV_AUDIO_SOURCE
	if val, ok := os.LookupEnv("ENV_AUDIO_SOURCE"); ok {
		cfg.Audio.Source = val
		log.Infof("Config: overriding audio.source from env: %s", val)
	}
	// ENV_BRIGHTNESS
	if val, ok := os.LookupEnv("ENV_BRIGHTNESS"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Render.Brightness = fVal
			log.Infof("Config: overriding render.brightness from env: %.2f", fVal)
		}
	}

	// ENV_UDP_{...}

	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.UDPEnabled = bVal
			log.Infof("Config: overriding transport.udp_enabled from env: %v", bVal)
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
		log.Infof("Config: overriding transport.udp_target_address from env: %s", val)
	}

	// ENV_WS_{...}

	// ENV_WS_ENABLED
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.WebSocketEnabled = bVal
			log.Infof("Config: overriding transport.websocket_enabled from env: %v", bVal)
		}
	}
	// ENV_WS_ADDRESS
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		cfg.Transport.WebSocketAddress = val
		log.Infof("Config: overriding transport.websocket_address from env: %s", val)
	}
}
