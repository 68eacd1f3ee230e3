package todoist

import (
	"fmt"
	"strconv"
	"strings"
)

// PriorityMapping maps a source importance level to a Todoist priority
// number in [1,4], where 4 is the most urgent.
type PriorityMapping map[string]int

// DefaultPriorities returns the stock importance mapping. Callers must keep
// low/normal/high covered so Resolve never comes up empty for a well-formed
// task.
func DefaultPriorities() PriorityMapping {
	return PriorityMapping{
		"high":   4,
		"normal": 1,
		"low":    1,
	}
}

// ApplyOverrides merges comma-separated key=value pairs into the mapping.
// Unknown keys become additional entries; values outside [1,4] or malformed
// pairs are rejected.
func (m PriorityMapping) ApplyOverrides(raw string) error {
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, val, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if !ok || key == "" || val == "" {
			return fmt.Errorf("malformed priority override %q, want key=value", pair)
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("priority override %q: value is not a number", pair)
		}
		if n < 1 || n > 4 {
			return fmt.Errorf("priority override %q: value must be between 1 and 4", pair)
		}
		m[key] = n
	}
	return nil
}

// Resolve maps an importance level to its priority cell value. An absent
// importance defaults to normal; an importance the mapping does not cover
// yields an empty cell.
func (m PriorityMapping) Resolve(importance string) string {
	if importance == "" {
		importance = "normal"
	}
	n, ok := m[importance]
	if !ok {
		return ""
	}
	return strconv.Itoa(n)
}
