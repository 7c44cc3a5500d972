// Package persistence owns the saved-game document: a versioned JSON
// envelope, a migration pipeline for older shapes, and a compressed
// snapshot store in SQLite. The engine guarantees the document
// round-trips losslessly; this package guarantees an old or damaged
// document still loads.
package persistence

import (
	"encoding/json"
	"fmt"

	"sidegig/internal/state"
)

// Envelope wraps a serialized state with its shape version.
type Envelope struct {
	Version int             `json:"version"`
	SavedAt int64           `json:"savedAt"`
	State   json.RawMessage `json:"state"`
}

// Serialize renders the state into a versioned document.
func Serialize(st *state.State, savedAt int64) ([]byte, error) {
	st.Version = state.CurrentVersion
	st.LastSaved = savedAt
	raw, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	doc, err := json.Marshal(Envelope{
		Version: state.CurrentVersion,
		SavedAt: savedAt,
		State:   raw,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return doc, nil
}

// Hydrate parses a document, runs any shape migrations, and repairs
// the result. A parseable document never fails to load; only unknown
// future versions are rejected.
func Hydrate(doc []byte) (*state.State, error) {
	var env Envelope
	if err := json.Unmarshal(doc, &env); err != nil {
		return nil, fmt.Errorf("parse save document: %w", err)
	}
	if env.Version > state.CurrentVersion {
		return nil, fmt.Errorf("save document version %d is newer than supported %d", env.Version, state.CurrentVersion)
	}

	raw := env.State
	if len(raw) == 0 {
		// Pre-envelope saves were the bare state object.
		raw = doc
	}
	for v := env.Version; v < state.CurrentVersion; v++ {
		step, ok := migrations[v]
		if !ok {
			continue
		}
		var err error
		raw, err = step(raw)
		if err != nil {
			return nil, fmt.Errorf("migrate save from v%d: %w", v, err)
		}
	}

	st := &state.State{}
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	st.Version = state.CurrentVersion
	st.Normalize()
	return st, nil
}

// migrations upgrade a raw state object from version v to v+1.
var migrations = map[int]func(json.RawMessage) (json.RawMessage, error){
	1: migrateV1,
}

// migrateV1 handles the original save shape: money lived under "cash"
// and the log was a plain string list.
func migrateV1(raw json.RawMessage) (json.RawMessage, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if cash, ok := doc["cash"]; ok {
		if _, has := doc["money"]; !has {
			doc["money"] = cash
		}
		delete(doc, "cash")
	}
	if rawLog, ok := doc["log"].([]any); ok {
		entries := make([]map[string]any, 0, len(rawLog))
		for _, item := range rawLog {
			if msg, ok := item.(string); ok {
				entries = append(entries, map[string]any{
					"day": 1, "tone": "info", "message": msg,
				})
			} else {
				if entry, ok := item.(map[string]any); ok {
					entries = append(entries, entry)
				}
			}
		}
		doc["log"] = entries
	}
	return json.Marshal(doc)
}
