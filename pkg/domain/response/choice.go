package response

import (
	"encoding/json"
	"fmt"
)

// Choice is a per-role answer. The empty Choice means "no answer" and is stored as JSON null.
type Choice string

const (
	ChoiceNone Choice = ""

	// Shared by both roles; scores nothing.
	ChoiceNA Choice = "NA"

	// Author answers.
	ChoiceNo  Choice = "No"
	ChoiceYes Choice = "Yes"

	// Reviewer verdicts.
	ChoiceOK            Choice = "OK"
	ChoiceMinorRevision Choice = "mR"
	ChoiceMajorRevision Choice = "MR"
)

// IsSet reports whether an answer was given.
func (c Choice) IsSet() bool {
	return c != ChoiceNone
}

// ValidFor reports whether the choice is selectable for role.
func (c Choice) ValidFor(r Role) bool {
	for _, allowed := range ChoicesFor(r) {
		if c == allowed {
			return true
		}
	}
	return false
}

func (c Choice) String() string {
	return string(c)
}

// ParseChoice validates s against the choices offered to role.
func ParseChoice(s string, r Role) (Choice, error) {
	c := Choice(s)
	if !c.ValidFor(r) {
		return ChoiceNone, fmt.Errorf("invalid %s choice %q (allowed: %v)", r, s, ChoicesFor(r))
	}
	return c, nil
}

// MarshalJSON writes null for an unset choice.
func (c Choice) MarshalJSON() ([]byte, error) {
	if c == ChoiceNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(c))
}

// UnmarshalJSON reads a string; null and any other JSON kind read as unset.
func (c *Choice) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		*c = ChoiceNone
		return nil
	}
	*c = Choice(str)
	return nil
}
