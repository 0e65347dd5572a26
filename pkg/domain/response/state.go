package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrNotObject is returned by Decode when the persisted document is not a JSON object.
var ErrNotObject = errors.New("persisted state is not an object")

// State is the persisted response document.
type State struct {
	Scores    map[string]Entry `json:"scores"`
	Committed map[string]bool  `json:"committed"`
	// Role is empty when the persisted document had no role.
	Role Role `json:"role,omitempty"`
}

// NewState returns the default empty state.
func NewState() *State {
	return &State{
		Scores:    make(map[string]Entry),
		Committed: make(map[string]bool),
		Role:      DefaultRole,
	}
}

// Decode parses a persisted document. Only a document that is not a JSON object
// fails; a mistyped field reads as absent so the rest of the answers survive.
// Commit flags follow JSON truthiness.
func Decode(data []byte) (*State, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotObject
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	s := &State{}
	s.ensureMaps()

	var scores map[string]json.RawMessage
	if json.Unmarshal(doc["scores"], &scores) == nil {
		for code, raw := range scores {
			var entry Entry
			if err := json.Unmarshal(raw, &entry); err != nil {
				entry = CurrentEntry(Record{})
			}
			s.Scores[code] = entry
		}
	}

	var committed map[string]json.RawMessage
	if json.Unmarshal(doc["committed"], &committed) == nil {
		for id, raw := range committed {
			s.Committed[id] = truthy(raw)
		}
	}

	var role string
	if json.Unmarshal(doc["role"], &role) == nil {
		s.Role = Role(role)
	}
	return s, nil
}

// truthy applies JSON truthiness: false, null, 0 and "" are false.
func truthy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	}
	return true
}

// Encode serializes the state.
func (s *State) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return data, nil
}

func (s *State) ensureMaps() {
	if s.Scores == nil {
		s.Scores = make(map[string]Entry)
	}
	if s.Committed == nil {
		s.Committed = make(map[string]bool)
	}
}

// CurrentRole returns the active role, treating anything unknown as reviewer.
func (s *State) CurrentRole() Role {
	return NormalizeRole(string(s.Role))
}

// Response returns role's answer for code, or ChoiceNone.
func (s *State) Response(code string, role Role) Choice {
	entry, ok := s.Scores[code]
	if !ok {
		return ChoiceNone
	}
	return entry.Record().Get(role)
}

// Record returns the record for code in current shape.
func (s *State) Record(code string) Record {
	return s.Scores[code].Record()
}

// SetResponse stores choice for role on code, keeping the other role's answer.
// A legacy entry is upgraded as part of the write.
func (s *State) SetResponse(code string, role Role, choice Choice) {
	s.ensureMaps()
	rec := s.Scores[code].Record().With(role, choice)
	s.Scores[code] = CurrentEntry(rec)
}

// Commit marks a section as finalized.
func (s *State) Commit(sectionID string) {
	s.ensureMaps()
	s.Committed[sectionID] = true
}

// IsCommitted reports whether a section was committed.
func (s *State) IsCommitted(sectionID string) bool {
	return s.Committed[sectionID]
}

// Codes returns the answered item codes in sorted order.
func (s *State) Codes() []string {
	codes := make([]string, 0, len(s.Scores))
	for code := range s.Scores {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := &State{
		Scores:    make(map[string]Entry, len(s.Scores)),
		Committed: make(map[string]bool, len(s.Committed)),
		Role:      s.Role,
	}
	for k, v := range s.Scores {
		c.Scores[k] = v
	}
	for k, v := range s.Committed {
		c.Committed[k] = v
	}
	return c
}

// MigrateLegacy upgrades bare-string entries to records and fills a missing role.
// It reports whether anything changed; a second call on the result reports false.
func MigrateLegacy(s *State) bool {
	if s == nil {
		return false
	}
	s.ensureMaps()
	changed := false
	for code, entry := range s.Scores {
		if entry.IsLegacy() {
			s.Scores[code] = entry.Upgrade()
			changed = true
		}
	}
	if s.Role == "" {
		s.Role = DefaultRole
		changed = true
	}
	return changed
}
