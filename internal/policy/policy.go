// Package policy holds the process-wide mutation guardrails: per-operation
// required fields and a global minimum-confidence floor. The configuration
// is a mutable singleton by design -- every mutation path consults the same
// config -- so setters are intended for initialization and test setup, not
// concurrent runtime mutation.
package policy

import (
	"sync"

	"github.com/shevchenkoxx/lore-mcp/internal/errs"
)

// Config is the policy configuration: required fields per operation name
// and a floor below which any confidence value is rejected.
type Config struct {
	RequiredFields  map[string][]string
	MinConfidence   float64
}

var (
	mu      sync.Mutex
	current = defaultConfig()
)

func defaultConfig() Config {
	return Config{
		RequiredFields: map[string][]string{},
		MinConfidence:  0,
	}
}

// Current returns a copy of the active configuration.
func Current() Config {
	mu.Lock()
	defer mu.Unlock()
	return cloneConfig(current)
}

// Set replaces the active configuration. Intended for initialization and
// test setup paths, not concurrent runtime mutation.
func Set(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	current = cloneConfig(cfg)
}

// Reset restores the default (empty) configuration, for test teardown.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaultConfig()
}

func cloneConfig(cfg Config) Config {
	out := Config{RequiredFields: make(map[string][]string, len(cfg.RequiredFields)), MinConfidence: cfg.MinConfidence}
	for op, fields := range cfg.RequiredFields {
		cp := make([]string, len(fields))
		copy(cp, fields)
		out.RequiredFields[op] = cp
	}
	return out
}

// Params is the set of field values a mutation call supplies, used for
// required-field and confidence checks. A field absent from the map is
// treated as missing; an explicit nil or empty-string value is treated as
// empty.
type Params map[string]any

// Check validates params for the named operation against the active
// configuration, returning a policy error on the first violation.
func Check(op string, params Params) error {
	cfg := Current()

	for _, field := range cfg.RequiredFields[op] {
		v, ok := params[field]
		if !ok || isEmpty(v) {
			return errs.Policy("required field " + field + " is missing for operation " + op)
		}
	}

	if raw, ok := params["confidence"]; ok && raw != nil {
		conf, ok := toFloat(raw)
		if ok && conf < cfg.MinConfidence {
			return errs.Policy("confidence below configured minimum")
		}
	}
	return nil
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch x := v.(type) {
	case string:
		return x == ""
	case *string:
		return x == nil || *x == ""
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case *float64:
		if x == nil {
			return 0, false
		}
		return *x, true
	}
	return 0, false
}
