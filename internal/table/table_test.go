package table

import (
	"errors"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/qrystalml/enron-summary/internal/model"
)

func TestExpand_ScenarioRowCount(t *testing.T) {
	rows := []RawEvent{
		{Timestamp: "1000", MessageID: "m1", Sender: "alice", Recipients: "bob|carol"},
		{Timestamp: "2000", MessageID: "m1", Sender: "alice", Recipients: "bob"},
		{Timestamp: "3000", MessageID: "m2", Sender: "bob", Recipients: "alice"},
	}
	flat, err := Expand(rows, DefaultOptions())
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(flat) != 4 {
		t.Fatalf("expected 4 flat rows, got %d", len(flat))
	}

	want := []FlatEvent{
		{Timestamp: time.UnixMilli(1000).UTC(), MessageID: "m1", Sender: "alice", Recipient: "bob"},
		{Timestamp: time.UnixMilli(1000).UTC(), MessageID: "m1", Sender: "alice", Recipient: "carol"},
		{Timestamp: time.UnixMilli(2000).UTC(), MessageID: "m1", Sender: "alice", Recipient: "bob"},
		{Timestamp: time.UnixMilli(3000).UTC(), MessageID: "m2", Sender: "bob", Recipient: "alice"},
	}
	if !reflect.DeepEqual(flat, want) {
		t.Errorf("unexpected rows:\n got %+v\nwant %+v", flat, want)
	}
}

func TestExpand_EmptyFieldYieldsOneEmptyRecipient(t *testing.T) {
	flat, err := Expand([]RawEvent{{Timestamp: "5", MessageID: "m", Sender: "s", Recipients: ""}}, DefaultOptions())
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(flat) != 1 {
		t.Fatalf("expected 1 row, got %d", len(flat))
	}
	if flat[0].Recipient != "" {
		t.Errorf("expected empty recipient, got %q", flat[0].Recipient)
	}
}

func TestExpand_DuplicateTokensKept(t *testing.T) {
	flat, err := Expand([]RawEvent{{Timestamp: "5", MessageID: "m", Sender: "s", Recipients: "a|a||b"}}, DefaultOptions())
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	var got []string
	for _, f := range flat {
		got = append(got, f.Recipient)
	}
	want := []string{"a", "a", "", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestExpand_FieldAlignment(t *testing.T) {
	// Heterogeneous group sizes must not shift sender/message onto the wrong recipients.
	rows := []RawEvent{
		{Timestamp: "1", MessageID: "a", Sender: "s1", Recipients: "x"},
		{Timestamp: "2", MessageID: "b", Sender: "s2", Recipients: "p|q|r|s|t"},
		{Timestamp: "3", MessageID: "c", Sender: "s3", Recipients: ""},
		{Timestamp: "4", MessageID: "d", Sender: "s4", Recipients: "u|v"},
	}
	flat, err := Expand(rows, DefaultOptions())
	if err != nil {
		t.Fatalf("expand: %v", err)
	}

	total := 0
	for _, r := range rows {
		total += len(strings.Split(r.Recipients, "|"))
	}
	if len(flat) != total {
		t.Fatalf("expected %d rows, got %d", total, len(flat))
	}

	byMsg := map[string][]string{}
	for _, f := range flat {
		var src *RawEvent
		for i := range rows {
			if rows[i].MessageID == f.MessageID {
				src = &rows[i]
			}
		}
		if src == nil {
			t.Fatalf("row %+v has no source", f)
		}
		if f.Sender != src.Sender {
			t.Errorf("message %s: expected sender %s, got %s", f.MessageID, src.Sender, f.Sender)
		}
		if ms, _ := strconv.ParseInt(src.Timestamp, 10, 64); f.Timestamp.UnixMilli() != ms {
			t.Errorf("message %s: misaligned timestamp %v", f.MessageID, f.Timestamp)
		}
		byMsg[f.MessageID] = append(byMsg[f.MessageID], f.Recipient)
	}
	for _, r := range rows {
		want := strings.Split(r.Recipients, "|")
		got := byMsg[r.MessageID]
		sort.Strings(want)
		sort.Strings(got)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("message %s: expected recipients %q, got %q", r.MessageID, want, got)
		}
	}
}

func TestExpand_CustomDelimiter(t *testing.T) {
	opts := Options{Delimiter: ";"}
	flat, err := Expand([]RawEvent{{Timestamp: "1", MessageID: "m", Sender: "s", Recipients: "a;b|c"}}, opts)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(flat) != 2 || flat[1].Recipient != "b|c" {
		t.Errorf("expected split on ';' only, got %+v", flat)
	}
}

func TestExpand_MalformedTimestampFailsBatch(t *testing.T) {
	rows := []RawEvent{
		{Timestamp: "1000", MessageID: "m1", Sender: "a", Recipients: "b"},
		{Timestamp: "not-a-number", MessageID: "m2", Sender: "a", Recipients: "b"},
	}
	flat, err := Expand(rows, DefaultOptions())
	if !errors.Is(err, ErrMalformedTimestamp) {
		t.Fatalf("expected ErrMalformedTimestamp, got %v", err)
	}
	if flat != nil {
		t.Errorf("expected no partial table, got %d rows", len(flat))
	}
	if !strings.Contains(err.Error(), "row 1") {
		t.Errorf("expected error to name row 1, got %q", err)
	}

	if _, err := Build(rows, DefaultOptions()); !errors.Is(err, ErrMalformedTimestamp) {
		t.Errorf("expected Build to fail too, got %v", err)
	}
}

func TestExpand_EmptyInput(t *testing.T) {
	flat, err := Expand(nil, DefaultOptions())
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(flat) != 0 {
		t.Errorf("expected no rows, got %d", len(flat))
	}
}

func TestParseTimestamp_Location(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	ts, err := ParseTimestamp(" 978307200000 ", loc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ts.Location() != loc {
		t.Errorf("expected location %v, got %v", loc, ts.Location())
	}
	// 2001-01-01T00:00Z is still 2000-12-31 in EST.
	if ts.Year() != 2000 || ts.Month() != time.December {
		t.Errorf("expected December 2000 in EST, got %v", ts)
	}
}

func TestTable_MonthRange(t *testing.T) {
	jan := time.Date(2001, time.January, 15, 0, 0, 0, 0, time.UTC).UnixMilli()
	apr := time.Date(2001, time.April, 2, 0, 0, 0, 0, time.UTC).UnixMilli()
	rows := []RawEvent{
		{Timestamp: itoa(apr), MessageID: "m2", Sender: "a", Recipients: "b"},
		{Timestamp: itoa(jan), MessageID: "m1", Sender: "a", Recipients: "b|c"},
	}
	tbl, err := Build(rows, DefaultOptions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if tbl.Len() != 3 {
		t.Errorf("expected 3 rows, got %d", tbl.Len())
	}
	if tbl.Messages() != 2 {
		t.Errorf("expected 2 distinct messages, got %d", tbl.Messages())
	}

	got := tbl.MonthRange()
	want := []model.Month{
		{Year: 2001, Month: time.January},
		{Year: 2001, Month: time.February},
		{Year: 2001, Month: time.March},
		{Year: 2001, Month: time.April},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTable_EmptyRange(t *testing.T) {
	tbl := New(nil, nil)
	if tbl.MonthRange() != nil {
		t.Error("expected nil range for empty table")
	}
	if tbl.Location() != time.UTC {
		t.Errorf("expected UTC default, got %v", tbl.Location())
	}
}

func TestTable_RowsIsCopy(t *testing.T) {
	tbl, _ := Build([]RawEvent{{Timestamp: "1", MessageID: "m", Sender: "s", Recipients: "r"}}, DefaultOptions())
	rows := tbl.Rows()
	rows[0].Sender = "changed"
	if tbl.Rows()[0].Sender != "s" {
		t.Error("mutating Rows() result changed the table")
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
