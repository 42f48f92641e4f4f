// Package table expands raw email events into a flat one-row-per-recipient table.
package table

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/qrystalml/enron-summary/internal/model"
)

// DefaultDelimiter separates recipients in a raw recipient field.
const DefaultDelimiter = "|"

// ErrMalformedTimestamp is returned when a raw timestamp is not epoch milliseconds.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// RawEvent is one record as supplied by a loader.
type RawEvent struct {
	Timestamp  string // epoch milliseconds
	MessageID  string
	Sender     string
	Recipients string // delimiter-joined, may be empty
}

// FlatEvent is one (message, recipient) pair.
type FlatEvent struct {
	Timestamp time.Time `json:"timestamp"`
	MessageID string    `json:"message_id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
}

// Options configures expansion.
type Options struct {
	Delimiter string
	Location  *time.Location // calendar used for month bucketing
}

// DefaultOptions returns the pipe delimiter and UTC.
func DefaultOptions() Options {
	return Options{
		Delimiter: DefaultDelimiter,
		Location:  time.UTC,
	}
}

func (o Options) withDefaults() Options {
	if o.Delimiter == "" {
		o.Delimiter = DefaultDelimiter
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

// Expand splits every row's recipient field and emits one FlatEvent per token.
// Empty fields produce a single empty recipient and duplicate tokens are kept.
// Any malformed timestamp fails the whole batch.
func Expand(rows []RawEvent, opts Options) ([]FlatEvent, error) {
	opts = opts.withDefaults()

	out := make([]FlatEvent, 0, len(rows))
	for i, r := range rows {
		ts, err := ParseTimestamp(r.Timestamp, opts.Location)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		for _, rcpt := range strings.Split(r.Recipients, opts.Delimiter) {
			out = append(out, FlatEvent{
				Timestamp: ts,
				MessageID: r.MessageID,
				Sender:    r.Sender,
				Recipient: rcpt,
			})
		}
	}
	return out, nil
}

// ParseTimestamp converts an epoch-milliseconds string to a time in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	ms, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
	}
	return time.UnixMilli(ms).In(loc), nil
}

// Table is the immutable flat event table shared by all aggregations.
type Table struct {
	rows     []FlatEvent
	loc      *time.Location
	first    model.Month
	last     model.Month
	messages int
}

// Build expands rows into a Table.
func Build(rows []RawEvent, opts Options) (*Table, error) {
	opts = opts.withDefaults()
	flat, err := Expand(rows, opts)
	if err != nil {
		return nil, err
	}
	return New(flat, opts.Location), nil
}

// New wraps already expanded rows. The slice must not be modified afterwards.
func New(rows []FlatEvent, loc *time.Location) *Table {
	if loc == nil {
		loc = time.UTC
	}
	t := &Table{rows: rows, loc: loc}

	ids := make(map[string]struct{})
	for i, r := range rows {
		m := model.MonthOf(r.Timestamp.In(loc))
		if i == 0 || m.Before(t.first) {
			t.first = m
		}
		if i == 0 || t.last.Before(m) {
			t.last = m
		}
		ids[r.MessageID] = struct{}{}
	}
	t.messages = len(ids)
	return t
}

// Len returns the number of flat rows.
func (t *Table) Len() int { return len(t.rows) }

// Location returns the calendar used for month bucketing.
func (t *Table) Location() *time.Location { return t.loc }

// Messages returns the number of distinct message ids.
func (t *Table) Messages() int { return t.messages }

// Rows returns a copy of the flat rows.
func (t *Table) Rows() []FlatEvent {
	out := make([]FlatEvent, len(t.rows))
	copy(out, t.rows)
	return out
}

// Each calls fn for every row in order without copying.
func (t *Table) Each(fn func(FlatEvent)) {
	for _, r := range t.rows {
		fn(r)
	}
}

// MonthOf returns the bucket for a row timestamp.
func (t *Table) MonthOf(ts time.Time) model.Month {
	return model.MonthOf(ts.In(t.loc))
}

// MonthRange returns every month from the earliest to the latest event,
// inclusive. It is nil for an empty table.
func (t *Table) MonthRange() []model.Month {
	if len(t.rows) == 0 {
		return nil
	}
	var months []model.Month
	for m := t.first; !t.last.Before(m); m = m.Next() {
		months = append(months, m)
	}
	return months
}
