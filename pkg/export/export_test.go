package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/felixgeelhaar/chamai/pkg/domain/checklist"
	"github.com/felixgeelhaar/chamai/pkg/domain/report"
	"github.com/felixgeelhaar/chamai/pkg/domain/response"
)

func testReport(role response.Role) *report.Report {
	def := &checklist.Definition{Sections: []checklist.Section{
		{ID: "A", Items: []checklist.Item{
			{Code: "A1", Description: `Says "hello", twice`, Priority: checklist.PriorityHigh},
			{Code: "A2", Description: "plain", Priority: checklist.PriorityLow},
		}},
	}}
	state := response.NewState()
	state.SetResponse("A1", response.RoleReviewer, response.ChoiceOK)
	state.SetResponse("A2", response.RoleReviewer, response.ChoiceMinorRevision)
	state.SetResponse("A1", response.RoleAuthor, response.ChoiceYes)
	return report.Build(def, state, role, "")
}

func TestWriteCSV_Reviewer(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testReport(response.RoleReviewer)); err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"ChAMAI Summary – Reviewer evaluation",
		"Total Score,2.5,/ 3",
		"",
		`"Item","Description","Priority","Choice (Reviewer)","Score"`,
		`"A1","Says ""hello"", twice","high","OK","2"`,
		`"A2","plain","low","mR","0.5"`,
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("unexpected csv:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteCSV_Author(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testReport(response.RoleAuthor)); err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"ChAMAI Summary – Author self-assessment",
		"",
		`"Item","Description","Priority","Choice (Author)"`,
		`"A1","Says ""hello"", twice","high","Yes"`,
		`"A2","plain","low",""`,
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("unexpected csv:\n%s\nwant:\n%s", buf.String(), want)
	}
}

// recordingDoc captures calls instead of drawing.
type recordingDoc struct {
	calls     []string
	outputErr error
}

func (d *recordingDoc) SetFontSize(size float64) {
	d.calls = append(d.calls, fmt.Sprintf("font %v", size))
}

func (d *recordingDoc) Text(x, y float64, text string) {
	d.calls = append(d.calls, fmt.Sprintf("text %v,%v %s", x, y, text))
}

func (d *recordingDoc) Output(w io.Writer) error {
	if d.outputErr != nil {
		return d.outputErr
	}
	_, err := io.WriteString(w, "%PDF-fake")
	return err
}

type recordingTableDoc struct {
	recordingDoc
}

func (d *recordingTableDoc) Table(head []string, body [][]string, startY float64) {
	d.calls = append(d.calls, fmt.Sprintf("table %d cols %d rows at %v", len(head), len(body), startY))
}

type fakeGenerator struct {
	doc Document
	err error
}

func (g fakeGenerator) NewDocument() (Document, error) {
	return g.doc, g.err
}

func TestWritePDF_Reviewer(t *testing.T) {
	doc := &recordingTableDoc{}
	var buf bytes.Buffer
	if err := WritePDF(&buf, testReport(response.RoleReviewer), fakeGenerator{doc: doc}); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"font 16",
		"text 20,20 ChAMAI Checklist Results – Reviewer evaluation",
		"font 11",
		"text 20,40 Score: 2.5 / 3",
		"table 5 cols 2 rows at 60",
	}
	assertCalls(t, want, doc.calls)
	if buf.String() != "%PDF-fake" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestWritePDF_Author(t *testing.T) {
	doc := &recordingTableDoc{}
	if err := WritePDF(io.Discard, testReport(response.RoleAuthor), fakeGenerator{doc: doc}); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"font 16",
		"text 20,20 ChAMAI Checklist – Author self-assessment",
		"table 4 cols 2 rows at 40",
	}
	assertCalls(t, want, doc.calls)
}

func TestWritePDF_WithoutTableSupport(t *testing.T) {
	doc := &recordingDoc{}
	var buf bytes.Buffer
	if err := WritePDF(&buf, testReport(response.RoleReviewer), fakeGenerator{doc: doc}); err != nil {
		t.Fatal(err)
	}
	if len(doc.calls) != 4 {
		t.Errorf("expected title and score only, got %v", doc.calls)
	}
	if buf.Len() == 0 {
		t.Error("a document should still be produced")
	}
}

func TestWritePDF_Unavailable(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, testReport(response.RoleReviewer), nil); !errors.Is(err, ErrPDFUnavailable) {
		t.Errorf("expected ErrPDFUnavailable, got %v", err)
	}
	err := WritePDF(&buf, testReport(response.RoleReviewer), fakeGenerator{err: errors.New("no fonts")})
	if !errors.Is(err, ErrPDFUnavailable) {
		t.Errorf("expected ErrPDFUnavailable, got %v", err)
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written when the generator is unavailable")
	}
}

func TestWritePDF_OutputFailureWritesNothing(t *testing.T) {
	doc := &recordingDoc{outputErr: errors.New("broken")}
	var buf bytes.Buffer
	if err := WritePDF(&buf, testReport(response.RoleReviewer), fakeGenerator{doc: doc}); err == nil {
		t.Fatal("expected error")
	}
	if buf.Len() != 0 {
		t.Error("partial output must not be written")
	}
}

func TestFPDFGenerator(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, testReport(response.RoleReviewer), NewFPDFGenerator()); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output is not a PDF: %q", buf.Bytes()[:min(16, buf.Len())])
	}
}

func TestFPDFGenerator_PageBreaks(t *testing.T) {
	def := &checklist.Definition{Sections: []checklist.Section{{ID: "A"}}}
	for i := 0; i < 120; i++ {
		def.Sections[0].Items = append(def.Sections[0].Items, checklist.Item{
			Code:        fmt.Sprintf("A%03d", i),
			Description: strings.Repeat("long description ", 12),
			Priority:    checklist.PriorityLow,
		})
	}
	rep := report.Build(def, response.NewState(), response.RoleReviewer, "")

	var buf bytes.Buffer
	if err := WritePDF(&buf, rep, NewFPDFGenerator()); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected output")
	}
}

func TestColumnWidths(t *testing.T) {
	widths := columnWidths(277, 5)
	sum := 0.0
	for _, w := range widths {
		sum += w
	}
	if sum != 277 {
		t.Errorf("widths should fill the page, got %v", sum)
	}
	if widths[1] <= widths[0] {
		t.Errorf("description column should be widest: %v", widths)
	}
}

func assertCalls(t *testing.T, want, got []string) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("calls mismatch:\n got %v\nwant %v", got, want)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("call %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
