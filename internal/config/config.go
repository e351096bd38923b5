// Package config resolves the equipctl client settings from flags, the
// environment and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tphummel/equipment_tracker/internal/view"
)

const (
	EnvEndpoint = "EQUIPMENT_API_URL"
	EnvToken    = "EQUIPMENT_API_TOKEN"

	DefaultEndpoint = "http://localhost:8080"
)

// File is the YAML client configuration.
type File struct {
	Endpoint string `yaml:"endpoint"`
	Token    string `yaml:"token"`
	Sort     Sort   `yaml:"sort"`
	// StaleGuard discards responses superseded by a newer request for the
	// same record.
	StaleGuard bool `yaml:"stale_guard"`
}

// Sort is the default ordering of the list command.
type Sort struct {
	Key       string `yaml:"key"`
	Direction string `yaml:"direction"`
}

// Load reads the configuration file at path. An empty path yields an empty
// configuration.
func Load(path string) (File, error) {
	var cfg File
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	if _, err := cfg.ViewState(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ViewState returns the initial view state described by the sort settings.
func (f File) ViewState() (view.State, error) {
	state := view.DefaultState()
	if key := strings.TrimSpace(f.Sort.Key); key != "" {
		k, err := view.ParseSortKey(key)
		if err != nil {
			return state, err
		}
		state.SortKey = k
	}
	if dir := strings.TrimSpace(f.Sort.Direction); dir != "" {
		d, err := view.ParseDirection(dir)
		if err != nil {
			return state, err
		}
		state.Direction = d
	}
	return state, nil
}

// Resolve picks the endpoint and token. For each value the first non-blank
// source wins: flag, then environment, then file. The endpoint falls back
// to DefaultEndpoint; the token may stay empty.
func Resolve(flagEndpoint, flagToken, envEndpoint, envToken string, file File) (endpoint, token string) {
	endpoint = first(flagEndpoint, envEndpoint, file.Endpoint, DefaultEndpoint)
	token = first(flagToken, envToken, file.Token)
	return endpoint, token
}

func first(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
