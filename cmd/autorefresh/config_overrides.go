package main

import (
	"fmt"
	"strconv"
	"strings"

	"autorefresh/internal/config/tomlkeys"
)

func parseConfigOverrides(entries []string) (map[string]any, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	overrides := make(map[string]any)
	for _, entry := range entries {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			return nil, fmt.Errorf("config override cannot be empty")
		}
		parts := strings.SplitN(trimmed, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("config override must be key=value: %q", entry)
		}
		normalizedKey := tomlkeys.NormalizeKey(strings.TrimSpace(parts[0]))
		if normalizedKey == "" {
			return nil, fmt.Errorf("config override key cannot be empty")
		}
		overrides[normalizedKey] = parseOverrideValue(strings.TrimSpace(parts[1]))
	}
	return overrides, nil
}

// parseConfigOverridesEnv reads the comma separated AUTOREFRESH_SET form.
func parseConfigOverridesEnv(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	parts := strings.Split(trimmed, ",")
	entries := make([]string, 0, len(parts))
	for _, part := range parts {
		entry := strings.TrimSpace(part)
		if entry == "" {
			return nil, fmt.Errorf("config override entry cannot be empty")
		}
		entries = append(entries, entry)
	}
	return parseConfigOverrides(entries)
}

func parseOverrideValue(value string) any {
	if strings.EqualFold(value, "true") {
		return true
	}
	if strings.EqualFold(value, "false") {
		return false
	}
	if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
		return parsed
	}
	if parsed, err := strconv.ParseFloat(value, 64); err == nil {
		return parsed
	}
	return value
}
