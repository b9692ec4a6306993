package fixtures

import (
	"encoding/json"
)

// Trace captures provenance for one attribute resolution: every write that
// contributed to the final mapping, in the order it happened.
type Trace struct {
	Entries []Provenance `json:"entries"`
}

// Provenance records one attribute write and the declaration layer that
// produced it (defaults, a named state, a producer, the call-site override,
// a hook, or relationship materialization).
type Provenance struct {
	Key    string `json:"key"`
	Source string `json:"source"`
	Value  any    `json:"value,omitempty"`
}

// Final returns the last write per key, keyed by canonical attribute name.
func (t Trace) Final() map[string]Provenance {
	out := make(map[string]Provenance, len(t.Entries))
	for _, entry := range t.Entries {
		out[entry.Key] = entry
	}
	return out
}

// ToJSON serialises the trace for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a payload previously generated via ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
