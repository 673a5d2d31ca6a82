package forms

import (
	"encoding/json"
	"errors"
	"sort"
)

// Session states.
type State string

const (
	StateClean  State = "clean"
	StateDirty  State = "dirty"
	StateSaving State = "saving"
)

var (
	// ErrNotDirty blocks a save when there is nothing to persist.
	ErrNotDirty = errors.New("draft has no unsaved changes")
	// ErrSaveInFlight enforces the single-flight save guard per record.
	ErrSaveInFlight = errors.New("a save is already in flight")
)

// rawTextFields are only overwritten by a re-extraction when the new value
// is non-empty.
var rawTextFields = map[string]bool{
	"ingredients_raw":            true,
	"nutrition_raw":              true,
	"declared_special_nutrients": true,
}

// Session is a serializable draft-editing session: the last-persisted copy,
// the working draft, and the set of fields locked against automated
// overwrite. It is passed by reference to whichever layer needs it; there
// is no process-wide instance.
type Session struct {
	Original Payload             `json:"original"`
	Draft    Payload             `json:"draft"`
	Locked   map[string]struct{} `json:"locked_fields"`

	saving bool
}

// NewSession starts a clean session over a persisted record.
func NewSession(record Payload) *Session {
	return &Session{
		Original: clonePayload(record),
		Draft:    clonePayload(record),
		Locked:   map[string]struct{}{},
	}
}

// SetField edits one draft field.
func (s *Session) SetField(key string, value any) {
	s.Draft[key] = value
}

// Dirty recomputes the dirty flag from a deep comparison of draft and
// original, excluding identity/timestamp fields.
func (s *Session) Dirty() bool {
	return IsDirty(s.Draft, s.Original)
}

// State derives the lifecycle state of the session.
func (s *Session) State() State {
	if s.saving {
		return StateSaving
	}
	if s.Dirty() {
		return StateDirty
	}
	return StateClean
}

// BeginSave transitions Dirty -> Saving. A clean draft or an in-flight
// save blocks the transition.
func (s *Session) BeginSave() error {
	if s.saving {
		return ErrSaveInFlight
	}
	if !s.Dirty() {
		return ErrNotDirty
	}
	s.saving = true
	return nil
}

// CompleteSave finishes an in-flight save. On success the draft becomes the
// new original; on failure the draft is kept untouched and the session
// returns to Dirty.
func (s *Session) CompleteSave(success bool) {
	if !s.saving {
		return
	}
	s.saving = false
	if success {
		s.Original = clonePayload(s.Draft)
	}
}

// ToggleLock flips lock membership for a field; toggling twice restores the
// previous state with no other side effect.
func (s *Session) ToggleLock(field string) {
	if _, ok := s.Locked[field]; ok {
		delete(s.Locked, field)
		return
	}
	s.Locked[field] = struct{}{}
}

// IsLocked reports whether a field resists automated overwrite.
func (s *Session) IsLocked(field string) bool {
	_, ok := s.Locked[field]
	return ok
}

// LockedFields returns the locked field names, sorted for stable output.
func (s *Session) LockedFields() []string {
	out := make([]string, 0, len(s.Locked))
	for f := range s.Locked {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// MergeExtraction merges fields returned by the AI extraction service into
// the draft. Locked fields are never overwritten, and raw-text fields are
// replaced only when the incoming value is non-empty.
func (s *Session) MergeExtraction(fields Payload) {
	s.Draft = MergeExtraction(s.Draft, fields, s.Locked)
}

// MergeExtraction is the session-free merge rule, usable on any draft.
func MergeExtraction(draft, fields Payload, locked map[string]struct{}) Payload {
	merged := clonePayload(draft)
	for key, value := range fields {
		if locked != nil {
			if _, ok := locked[key]; ok {
				continue
			}
		}
		if rawTextFields[key] {
			if str, _ := value.(string); str == "" {
				continue
			}
		}
		merged[key] = value
	}
	return merged
}

func clonePayload(p Payload) Payload {
	out := Payload{}
	for k, v := range p {
		// Values are JSON-shaped; a marshal round trip gives a deep copy.
		raw, err := json.Marshal(v)
		if err != nil {
			out[k] = v
			continue
		}
		var copied any
		if err := json.Unmarshal(raw, &copied); err != nil {
			out[k] = v
			continue
		}
		out[k] = copied
	}
	return out
}
