package response

import (
	"bytes"
	"encoding/json"
)

// Record holds both roles' answers for one item.
type Record struct {
	Author   Choice `json:"author"`
	Reviewer Choice `json:"reviewer"`
}

// Get returns the answer stored for role.
func (r Record) Get(role Role) Choice {
	if role == RoleAuthor {
		return r.Author
	}
	return r.Reviewer
}

// With returns a copy of r with only role's field replaced.
func (r Record) With(role Role, c Choice) Record {
	if role == RoleAuthor {
		r.Author = c
	} else {
		r.Reviewer = c
	}
	return r
}

// IsEmpty reports whether neither role has answered.
func (r Record) IsEmpty() bool {
	return !r.Author.IsSet() && !r.Reviewer.IsSet()
}

// EntryKind tags the persisted shape of a scores entry.
type EntryKind int

const (
	// EntryCurrent is the {author, reviewer} object form.
	EntryCurrent EntryKind = iota
	// EntryLegacy is the older bare reviewer-choice string.
	EntryLegacy
)

func (k EntryKind) String() string {
	if k == EntryLegacy {
		return "legacy"
	}
	return "current"
}

// Entry is one value of the persisted scores map.
type Entry struct {
	kind   EntryKind
	record Record
}

// CurrentEntry wraps a record in the current shape.
func CurrentEntry(r Record) Entry {
	return Entry{kind: EntryCurrent, record: r}
}

// LegacyEntry wraps a bare reviewer choice.
func LegacyEntry(reviewer Choice) Entry {
	return Entry{kind: EntryLegacy, record: Record{Reviewer: reviewer}}
}

// Kind returns the persisted shape.
func (e Entry) Kind() EntryKind {
	return e.kind
}

// IsLegacy reports whether the entry still has the bare-string shape.
func (e Entry) IsLegacy() bool {
	return e.kind == EntryLegacy
}

// Record returns the entry in current shape. A legacy entry reads as reviewer-only.
func (e Entry) Record() Record {
	return e.record
}

// Upgrade returns the entry in current shape.
func (e Entry) Upgrade() Entry {
	return CurrentEntry(e.record)
}

// MarshalJSON writes legacy entries back as bare strings so an unmigrated document round-trips.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.kind == EntryLegacy {
		return json.Marshal(string(e.record.Reviewer))
	}
	return json.Marshal(e.record)
}

// UnmarshalJSON accepts a bare string (legacy) or a record object.
// null and any other JSON kind decode to an empty current record.
func (e *Entry) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*e = CurrentEntry(Record{})
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*e = LegacyEntry(Choice(s))
	case '{':
		var r Record
		if err := json.Unmarshal(trimmed, &r); err != nil {
			return err
		}
		*e = CurrentEntry(r)
	default:
		*e = CurrentEntry(Record{})
	}
	return nil
}
