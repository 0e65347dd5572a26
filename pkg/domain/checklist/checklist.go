package checklist

import (
	"encoding/json"
	"fmt"
)

// Item is a single checklist question. Items are immutable once loaded.
type Item struct {
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Subitems    []string `json:"subitems,omitempty"`
	Note        string   `json:"note,omitempty"`
}

// MaxPoints returns the best score the item can contribute.
func (i Item) MaxPoints() float64 {
	return i.Priority.Weight()
}

// Section is a named, ordered group of items.
type Section struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Items []Item `json:"items"`
}

// Title returns the heading shown above the section, e.g. "PU – Purpose".
func (s Section) Title() string {
	if s.Label == "" {
		return s.ID
	}
	return s.ID + " – " + s.Label
}

// Definition is the full checklist. It is loaded once and never mutated.
type Definition struct {
	Sections []Section `json:"sections"`
}

// ItemCount returns the number of items across all sections.
// A nil definition has zero items.
func (d *Definition) ItemCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, s := range d.Sections {
		n += len(s.Items)
	}
	return n
}

// Items returns every item in definition order.
func (d *Definition) Items() []Item {
	if d == nil {
		return nil
	}
	items := make([]Item, 0, d.ItemCount())
	for _, s := range d.Sections {
		items = append(items, s.Items...)
	}
	return items
}

// FindItem looks up an item by code.
func (d *Definition) FindItem(code string) (Item, bool) {
	if d == nil {
		return Item{}, false
	}
	for _, s := range d.Sections {
		for _, it := range s.Items {
			if it.Code == code {
				return it, true
			}
		}
	}
	return Item{}, false
}

// FindSection looks up a section by id.
func (d *Definition) FindSection(id string) (Section, bool) {
	if d == nil {
		return Section{}, false
	}
	for _, s := range d.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// SectionIDs returns the section ids in order.
func (d *Definition) SectionIDs() []string {
	if d == nil {
		return nil
	}
	ids := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		ids = append(ids, s.ID)
	}
	return ids
}

// Parse decodes a definition document. Optional fields default to their zero values.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checklist definition: %w", err)
	}
	return &def, nil
}
