package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Audit actions recorded for a checklist session.
const (
	ActionResponseSet    = "response.set"
	ActionRoleSet        = "role.set"
	ActionSectionsCommit = "sections.commit"
	ActionResponsesReset = "responses.reset"
)

// Event is one recorded change to the responses. Events form a hash chain so
// edits to the history file can be detected.
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Action    string         `json:"action"`
	Actor     string         `json:"actor"` // session id
	Metadata  map[string]any `json:"metadata,omitempty"`
	PrevHash  string         `json:"prev_hash,omitempty"`
	Hash      string         `json:"hash,omitempty"`
}

// CalculateHash generates a deterministic SHA256 hash of the event data.
func (e *Event) CalculateHash() string {
	h := sha256.New()
	h.Write([]byte(e.PrevHash))
	h.Write([]byte(e.ID))
	h.Write([]byte(e.Timestamp.Format(time.RFC3339Nano)))
	h.Write([]byte(e.Action))
	h.Write([]byte(e.Actor))
	h.Write([]byte(canonicalJSON(e.Metadata)))
	return hex.EncodeToString(h.Sum(nil))
}

// MetaString returns a string metadata value, or "".
func (e *Event) MetaString(key string) string {
	s, _ := e.Metadata[key].(string)
	return s
}

// canonicalJSON renders metadata for hashing. encoding/json sorts map keys,
// so equal metadata always hashes the same.
func canonicalJSON(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	data, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(data)
}
