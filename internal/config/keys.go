package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownKey is returned by Get and Set for keys that are not scalar settings.
var ErrUnknownKey = errors.New("unknown config key")

// field binds a dotted config key to a string setting.
type field func(c *SiteConfig) *string

var fields = map[string]field{
	"title":             func(c *SiteConfig) *string { return &c.Title },
	"description":       func(c *SiteConfig) *string { return &c.Description },
	"publications":      func(c *SiteConfig) *string { return &c.Publications },
	"output":            func(c *SiteConfig) *string { return &c.Output },
	"base_path":         func(c *SiteConfig) *string { return &c.BasePath },
	"graph.title":       func(c *SiteConfig) *string { return &c.Graph.Title },
	"graph.description": func(c *SiteConfig) *string { return &c.Graph.Description },
}

// Keys returns the settable keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of a scalar setting.
func (c *SiteConfig) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: %s (valid: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	return *f(c), nil
}

// Set changes a scalar setting and revalidates the configuration.
// The configuration is left unchanged if the new value is invalid.
func (c *SiteConfig) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w: %s (valid: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	p := f(c)
	old := *p
	*p = value
	if err := c.Validate(); err != nil {
		*p = old
		return err
	}
	return nil
}
