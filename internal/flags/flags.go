// Package flags holds the feature switches read from the `flags` section of
// the config file. Unknown or missing flags are off.
package flags

import (
	"maps"
	"slices"

	"github.com/opticshield/opticshield/internal/log"
)

const (
	// FlagSendPersonID adds the client-side person id to the create payload
	// as `personId`. Off by default: the registry assigns its own ids.
	FlagSendPersonID = "send-person-id"
)

var known = map[string]string{
	FlagSendPersonID: "send the form's Person ID to the registry on create",
}

// Registry is a read-only view of the configured flags.
type Registry struct {
	flags map[string]bool
}

// New copies flags into a Registry. A nil map yields a registry with every
// flag off. Names that no code checks are logged once.
func New(flags map[string]bool) *Registry {
	r := &Registry{flags: make(map[string]bool, len(flags))}
	maps.Copy(r.flags, flags)

	for _, name := range r.Unknown() {
		log.Warn(log.CatConfig, "unknown feature flag in config", "flag", name)
	}
	log.Debug(log.CatConfig, "feature flags loaded", "count", len(r.flags))
	return r
}

// Enabled reports whether name is switched on. Safe on a nil Registry.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	return r.flags[name]
}

// All returns a copy of the configured values.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return map[string]bool{}
	}
	return maps.Clone(r.flags)
}

// Unknown returns the configured names that are not recognised, sorted.
func (r *Registry) Unknown() []string {
	if r == nil {
		return nil
	}
	var out []string
	for name := range r.flags {
		if _, ok := known[name]; !ok {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// Describe returns the help text for a known flag.
func Describe(name string) (string, bool) {
	d, ok := known[name]
	return d, ok
}
