package response

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustDecode(t *testing.T, data string) *State {
	t.Helper()
	s, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode(%s): %v", data, err)
	}
	return s
}

func TestDecode_LegacyAndCurrentEntries(t *testing.T) {
	s := mustDecode(t, `{"scores":{"A1":"OK","A2":{"author":"Yes","reviewer":null},"A3":42,"A4":null},"committed":{"A":true},"role":"author"}`)

	if !s.Scores["A1"].IsLegacy() {
		t.Error("A1 should decode as legacy")
	}
	if got := s.Response("A1", RoleReviewer); got != ChoiceOK {
		t.Errorf("A1 reviewer = %q, want OK", got)
	}
	if got := s.Response("A1", RoleAuthor); got != ChoiceNone {
		t.Errorf("A1 author = %q, want unset", got)
	}
	if s.Scores["A2"].IsLegacy() {
		t.Error("A2 should decode as current")
	}
	if got := s.Response("A2", RoleAuthor); got != ChoiceYes {
		t.Errorf("A2 author = %q, want Yes", got)
	}
	if got := s.Response("A2", RoleReviewer); got != ChoiceNone {
		t.Errorf("A2 reviewer = %q, want unset", got)
	}
	if !s.Scores["A3"].Record().IsEmpty() || !s.Scores["A4"].Record().IsEmpty() {
		t.Error("number and null entries should read as empty records")
	}
	if !s.IsCommitted("A") {
		t.Error("section A should be committed")
	}
	if s.CurrentRole() != RoleAuthor {
		t.Errorf("role = %q, want author", s.CurrentRole())
	}
}

func TestDecode_MistypedFieldsKeepOtherAnswers(t *testing.T) {
	s := mustDecode(t, `{"scores":{"A1":"OK","A2":{"author":"Yes","reviewer":"mR"},"A3":{"author":5,"reviewer":"MR"},"A4":[1]},`+
		`"committed":{"A":1,"B":0,"C":"yes","D":"","E":null,"F":{}},"role":"author"}`)

	want := map[string]Record{
		"A1": {Reviewer: ChoiceOK},
		"A2": {Author: ChoiceYes, Reviewer: ChoiceMinorRevision},
		"A3": {Reviewer: ChoiceMajorRevision},
		"A4": {},
	}
	for code, rec := range want {
		if got := s.Record(code); got != rec {
			t.Errorf("Record(%s) = %+v, want %+v", code, got, rec)
		}
	}

	committed := map[string]bool{"A": true, "B": false, "C": true, "D": false, "E": false, "F": true}
	for id, wantCommitted := range committed {
		if s.IsCommitted(id) != wantCommitted {
			t.Errorf("IsCommitted(%s) = %v, want %v", id, s.IsCommitted(id), wantCommitted)
		}
	}
	if s.Role != RoleAuthor {
		t.Errorf("role = %q, want author", s.Role)
	}
}

func TestDecode_MistypedSections(t *testing.T) {
	s := mustDecode(t, `{"scores":["A1"],"committed":true,"role":7}`)
	if len(s.Scores) != 0 || len(s.Committed) != 0 {
		t.Errorf("mistyped maps should read as empty, got %+v", s)
	}
	if s.Role != "" {
		t.Errorf("non-string role should read as missing, got %q", s.Role)
	}

	s = mustDecode(t, `{"scores":{"A1":"OK"},"committed":[1],"role":"author"}`)
	if s.Response("A1", RoleReviewer) != ChoiceOK {
		t.Error("a mistyped committed map must not drop the scores")
	}
}

func TestDecode_MissingMaps(t *testing.T) {
	s := mustDecode(t, `{}`)
	if s.Scores == nil || s.Committed == nil {
		t.Fatal("maps should be initialized")
	}
	if s.Role != "" {
		t.Errorf("role = %q, want empty", s.Role)
	}
	if s.CurrentRole() != RoleReviewer {
		t.Errorf("CurrentRole = %q, want reviewer", s.CurrentRole())
	}
}

func TestDecode_NotObject(t *testing.T) {
	for _, input := range []string{``, `[]`, `"x"`, `42`, `null`} {
		if _, err := Decode([]byte(input)); !errors.Is(err, ErrNotObject) {
			t.Errorf("Decode(%q) error = %v, want ErrNotObject", input, err)
		}
	}
	if _, err := Decode([]byte(`{"scores":`)); err == nil {
		t.Error("truncated document should fail")
	}
}

func TestChoiceUnmarshal_NonString(t *testing.T) {
	for _, input := range []string{`5`, `true`, `null`, `{}`, `["OK"]`} {
		c := ChoiceOK
		if err := json.Unmarshal([]byte(input), &c); err != nil {
			t.Errorf("Unmarshal(%s): %v", input, err)
		}
		if c != ChoiceNone {
			t.Errorf("Unmarshal(%s) = %q, want unset", input, c)
		}
	}
}

func TestMigrateLegacy(t *testing.T) {
	s := mustDecode(t, `{"scores":{"A1":"OK","A2":"mR","A3":{"author":"No","reviewer":"MR"}},"committed":{}}`)

	if !MigrateLegacy(s) {
		t.Fatal("first migration should report a change")
	}
	for _, code := range []string{"A1", "A2", "A3"} {
		if s.Scores[code].IsLegacy() {
			t.Errorf("%s still legacy", code)
		}
	}
	want := map[string]Record{
		"A1": {Reviewer: ChoiceOK},
		"A2": {Reviewer: ChoiceMinorRevision},
		"A3": {Author: ChoiceNo, Reviewer: ChoiceMajorRevision},
	}
	for code, rec := range want {
		if got := s.Record(code); got != rec {
			t.Errorf("Record(%s) = %+v, want %+v", code, got, rec)
		}
	}
	if s.Role != RoleReviewer {
		t.Errorf("missing role should become reviewer, got %q", s.Role)
	}

	before := s.Clone()
	if MigrateLegacy(s) {
		t.Error("second migration must be a no-op")
	}
	if diff := cmp.Diff(before, s, cmp.AllowUnexported(Entry{})); diff != "" {
		t.Errorf("state changed on second migration (-want +got):\n%s", diff)
	}
}

func TestMigrateLegacy_NothingToDo(t *testing.T) {
	s := NewState()
	s.SetResponse("A1", RoleReviewer, ChoiceOK)
	if MigrateLegacy(s) || MigrateLegacy(nil) {
		t.Error("nothing to migrate should report false")
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	s := NewState()
	s.SetResponse("A1", RoleAuthor, ChoiceYes)
	s.SetResponse("A1", RoleReviewer, ChoiceOK)
	s.SetResponse("B1", RoleReviewer, ChoiceMajorRevision)
	s.Commit("A")
	s.Role = RoleAuthor

	data, err := s.Encode()
	if err != nil {
		t.Fatal(err)
	}
	got := mustDecode(t, string(data))
	if diff := cmp.Diff(s, got, cmp.AllowUnexported(Entry{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_UnsetChoiceIsNull(t *testing.T) {
	s := NewState()
	s.SetResponse("A1", RoleAuthor, ChoiceNA)

	data, err := s.Encode()
	if err != nil {
		t.Fatal(err)
	}
	var raw struct {
		Scores map[string]map[string]any `json:"scores"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"author": "NA", "reviewer": nil}
	if !reflect.DeepEqual(raw.Scores["A1"], want) {
		t.Errorf("A1 = %v, want %v", raw.Scores["A1"], want)
	}
}

func TestEncode_LegacyEntryStaysBareString(t *testing.T) {
	s := NewState()
	s.Scores["A1"] = LegacyEntry(ChoiceOK)

	data, err := s.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"A1":"OK"`) {
		t.Errorf("legacy entry not kept as a bare string: %s", data)
	}
}

func TestSetResponse_RolesAreIndependent(t *testing.T) {
	s := NewState()
	s.SetResponse("A1", RoleAuthor, ChoiceYes)
	s.SetResponse("A1", RoleReviewer, ChoiceMinorRevision)
	s.SetResponse("A1", RoleAuthor, ChoiceNo)

	if got := s.Response("A1", RoleAuthor); got != ChoiceNo {
		t.Errorf("author = %q, want No", got)
	}
	if got := s.Response("A1", RoleReviewer); got != ChoiceMinorRevision {
		t.Errorf("reviewer = %q, want mR", got)
	}
}

func TestSetResponse_UpgradesLegacyEntry(t *testing.T) {
	s := NewState()
	s.Scores["A1"] = LegacyEntry(ChoiceOK)

	s.SetResponse("A1", RoleAuthor, ChoiceYes)

	if s.Scores["A1"].IsLegacy() {
		t.Error("write should upgrade the entry")
	}
	if got, want := s.Record("A1"), (Record{Author: ChoiceYes, Reviewer: ChoiceOK}); got != want {
		t.Errorf("Record = %+v, want %+v", got, want)
	}
}

func TestClone_IsDeep(t *testing.T) {
	s := NewState()
	s.SetResponse("A1", RoleReviewer, ChoiceOK)
	c := s.Clone()
	c.SetResponse("A1", RoleReviewer, ChoiceMajorRevision)
	c.Commit("A")

	if s.Response("A1", RoleReviewer) != ChoiceOK || s.IsCommitted("A") {
		t.Error("changes to the clone leaked into the original")
	}
}

func TestCodes_Sorted(t *testing.T) {
	s := NewState()
	s.SetResponse("B1", RoleReviewer, ChoiceOK)
	s.SetResponse("A2", RoleReviewer, ChoiceOK)
	s.SetResponse("A1", RoleReviewer, ChoiceOK)
	if got := s.Codes(); !reflect.DeepEqual(got, []string{"A1", "A2", "B1"}) {
		t.Errorf("Codes = %v", got)
	}
}
