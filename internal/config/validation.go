package config

import (
	"path"
	"time"

	derrors "git.home.luguber.info/inful/docrefactor/internal/errors"
)

// Validate checks a defaulted configuration.
func Validate(cfg *Config) error {
	if cfg.Source == "" {
		return derrors.ValidationFailed("source", "must not be empty")
	}
	if cfg.MaxConcurrent > 256 {
		return derrors.ValidationFailed("max_concurrent", "must be at most 256")
	}
	for _, field := range []struct{ name, raw string }{
		{"fetch.timeout", cfg.Fetch.Timeout},
		{"fetch.retry.initial", cfg.Fetch.Retry.Initial},
		{"fetch.retry.max", cfg.Fetch.Retry.Max},
		{"watch.debounce", cfg.Watch.Debounce},
		{"watch.refresh", cfg.Watch.Refresh},
	} {
		if field.raw == "" {
			continue
		}
		if d, err := time.ParseDuration(field.raw); err != nil || d < 0 {
			return derrors.ValidationFailed(field.name, "invalid duration "+field.raw)
		}
	}
	if NormalizeRetryBackoff(cfg.Fetch.Retry.Mode) == "" {
		return derrors.ValidationFailed("fetch.retry.mode", "unknown backoff mode "+cfg.Fetch.Retry.Mode)
	}
	for _, pattern := range append(append([]string(nil), cfg.Include...), cfg.Exclude...) {
		if _, err := path.Match(trimRecursive(pattern), ""); err != nil {
			return derrors.ValidationFailed("include/exclude", "bad pattern "+pattern)
		}
	}
	return nil
}

func trimRecursive(pattern string) string {
	if len(pattern) >= 3 && pattern[len(pattern)-3:] == "/**" {
		return pattern[:len(pattern)-3]
	}
	return pattern
}
