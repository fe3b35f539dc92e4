// SPDX-License-Identifier: MPL-2.0

package config

import (
	"maps"

	"github.com/pelletier/go-toml/v2"
)

const secretMask = "********"

// Render returns the configuration as TOML with secrets masked.
func Render(cfg *Config) ([]byte, error) {
	return toml.Marshal(Masked(cfg))
}

// Masked returns a copy of cfg with every secret replaced by a mask.
func Masked(cfg *Config) *Config {
	out := *cfg
	out.Push.SearchPatterns = append([]string(nil), cfg.Push.SearchPatterns...)
	out.Service.AccessToken = mask(cfg.Service.AccessToken)

	if cfg.Endpoints != nil {
		out.Endpoints = maps.Clone(cfg.Endpoints)
		for name, def := range out.Endpoints {
			def.Password = mask(def.Password)
			def.Token = mask(def.Token)
			def.APIKey = mask(def.APIKey)
			out.Endpoints[name] = def
		}
	}
	return &out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return secretMask
}
