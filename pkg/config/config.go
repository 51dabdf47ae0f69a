// Copyright 2025 Advanced Micro Devices, Inc.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//       http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads process configuration from an optional YAML file with
// environment variable overrides on top.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Agent   AgentConfig   `yaml:"agent"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	// QueueBufferSize bounds the in-process queue between publishers and the
	// consumer.
	QueueBufferSize int `yaml:"queueBufferSize"`
}

type AgentConfig struct {
	ClusterID    string        `yaml:"clusterId"`
	SyncInterval time.Duration `yaml:"syncInterval"`
}

// UnmarshalYAML accepts the sync interval in Go duration notation ("30s",
// "5m") rather than raw nanoseconds.
func (c *AgentConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		ClusterID    string `yaml:"clusterId"`
		SyncInterval string `yaml:"syncInterval"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.ClusterID != "" {
		c.ClusterID = raw.ClusterID
	}
	if raw.SyncInterval != "" {
		interval, err := time.ParseDuration(raw.SyncInterval)
		if err != nil {
			return fmt.Errorf("failed to parse syncInterval: %w", err)
		}
		c.SyncInterval = interval
	}
	return nil
}

type LoggingConfig struct {
	Development bool   `yaml:"development"`
	Level       string `yaml:"level"`
}

func Default() Config {
	return Config{
		Server:  ServerConfig{QueueBufferSize: 1024},
		Agent:   AgentConfig{SyncInterval: time.Minute},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the config file at path when it exists and applies env overrides.
// An empty path loads defaults plus overrides only.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if clusterID := os.Getenv("AIRM_CLUSTER_ID"); clusterID != "" {
		cfg.Agent.ClusterID = clusterID
	}
	if interval := os.Getenv("AIRM_SYNC_INTERVAL"); interval != "" {
		parsed, err := time.ParseDuration(interval)
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse AIRM_SYNC_INTERVAL: %w", err)
		}
		cfg.Agent.SyncInterval = parsed
	}
	if level := os.Getenv("AIRM_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	return cfg, nil
}
