package domain

import (
	"testing"
	"time"
)

func TestEventCalculateHashDeterminism(t *testing.T) {
	event := &Event{
		ID:        "e1",
		Action:    ActionResponseSet,
		Actor:     "session-1",
		Timestamp: time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC),
		Metadata:  map[string]any{"item": "PU01", "role": "reviewer", "choice": "OK"},
		PrevHash:  "prev",
	}

	first := event.CalculateHash()
	second := event.CalculateHash()
	if first != second {
		t.Fatalf("expected deterministic hash: %s vs %s", first, second)
	}

	event.ID = "e2"
	if first == event.CalculateHash() {
		t.Fatalf("hash should change when ID changes")
	}

	event.ID = "e1"
	event.Metadata["choice"] = "MR"
	if first == event.CalculateHash() {
		t.Fatalf("hash should change when metadata changes")
	}
}

func TestCanonicalJSONSortsKeys(t *testing.T) {
	got := canonicalJSON(map[string]any{"role": "author", "item": "PU01"})
	if got != `{"item":"PU01","role":"author"}` {
		t.Errorf("unexpected canonical form %s", got)
	}
	if canonicalJSON(nil) != "" {
		t.Error("empty metadata should hash as empty")
	}
}

func TestEventMetaString(t *testing.T) {
	e := &Event{Metadata: map[string]any{"item": "PU01", "count": 2}}
	if e.MetaString("item") != "PU01" || e.MetaString("count") != "" || e.MetaString("missing") != "" {
		t.Errorf("unexpected metadata lookups")
	}
}
