package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/qrystalml/enron-summary/internal/model"
	"github.com/qrystalml/enron-summary/internal/table"
)

const events = `978912000000,m1,alice,bob|carol,notes,email
978998400000,m2,alice,bob,notes,email
983404800000,m3,bob,alice,notes,email
`

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs(args)
	if err := RootCmd.Execute(); err != nil {
		t.Fatalf("execute %v: %v", args, err)
	}
	return out.String()
}

func TestSummarizeThenShow(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "events.csv")
	if err := os.WriteFile(input, []byte(events), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	db := filepath.Join(dir, "summary.db")
	results := filepath.Join(dir, "results")

	out := execute(t, "summarize", input, "--db", db, "--results", results, "--top", "2", "--log-level", "error")
	var summary struct {
		RunID  string   `json:"run_id"`
		People []string `json:"people"`
		Files  []string `json:"files"`
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summarize output %q: %v", out, err)
	}
	if summary.RunID == "" {
		t.Error("expected a run id")
	}
	if len(summary.People) != 2 || summary.People[0] != "alice" {
		t.Errorf("expected [alice bob], got %v", summary.People)
	}
	if len(summary.Files) != 3 {
		t.Errorf("expected 3 report files, got %v", summary.Files)
	}

	out = execute(t, "show", summary.RunID, "--db", db, "--view", "counts")
	var counts []model.PersonCount
	if err := json.Unmarshal([]byte(out), &counts); err != nil {
		t.Fatalf("decode show output %q: %v", out, err)
	}
	if len(counts) != 3 || counts[0] != (model.PersonCount{Person: "alice", Sent: 2, Received: 1}) {
		t.Errorf("unexpected counts %+v", counts)
	}
}

func TestContactsCommand(t *testing.T) {
	input := filepath.Join(t.TempDir(), "events.csv")
	if err := os.WriteFile(input, []byte(events), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out := execute(t, "contacts", input, "--people", "bob,carol", "--log-level", "error")
	var rows []model.MonthlyShare
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// January, February, March for two people.
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}
	if rows[0].Person != "bob" || rows[0].Share != 0.5 {
		t.Errorf("expected bob 0.5 in January, got %+v", rows[0])
	}
	if rows[2].Share != 0 || rows[3].Share != 0 {
		t.Errorf("expected zero shares in February, got %+v %+v", rows[2], rows[3])
	}
}

func TestFlatCommand(t *testing.T) {
	input := filepath.Join(t.TempDir(), "events.csv")
	if err := os.WriteFile(input, []byte(events), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out := execute(t, "flat", input, "--limit", "3", "--log-level", "error")
	var rows []table.FlatEvent
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	want := []string{"bob", "carol", "bob"}
	for i, r := range rows {
		if r.Recipient != want[i] {
			t.Errorf("row %d: expected recipient %s, got %+v", i, want[i], r)
		}
	}
	if rows[0].MessageID != "m1" || rows[1].MessageID != "m1" || rows[0].Sender != "alice" {
		t.Errorf("expected m1 fields copied to both recipients, got %+v", rows[:2])
	}
	if rows[0].Timestamp.UnixMilli() != 978912000000 {
		t.Errorf("unexpected timestamp %v", rows[0].Timestamp)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected [a b], got %q", got)
	}
	if splitList("") != nil {
		t.Error("expected nil for empty input")
	}
}
