// Package report writes summary tables as CSV files.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/qrystalml/enron-summary/internal/model"
)

// File name prefixes for each result table.
const (
	CountsPrefix   = "person_wise_email_count_stats"
	SentPrefix     = "senders_monthly_email_count"
	ContactsPrefix = "recipient_monthly_unique_contact_relative"
)

// Writer creates CSV files in a results directory. Every file it writes
// carries the same Stamp suffix.
type Writer struct {
	Dir   string
	Stamp time.Time
}

// NewWriter returns a Writer for dir stamped with the current time.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir, Stamp: time.Now()}
}

// Counts writes the per-person count table and returns its path.
func (w *Writer) Counts(counts []model.PersonCount) (string, error) {
	return w.create(CountsPrefix, func(out io.Writer) error { return WriteCounts(out, counts) })
}

// Sent writes the monthly sent series and returns its path.
func (w *Writer) Sent(series []model.MonthlySent) (string, error) {
	return w.create(SentPrefix, func(out io.Writer) error { return WriteSent(out, series) })
}

// Contacts writes the monthly relative contact series and returns its path.
func (w *Writer) Contacts(series []model.MonthlyShare) (string, error) {
	return w.create(ContactsPrefix, func(out io.Writer) error { return WriteShares(out, series) })
}

func (w *Writer) create(prefix string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	path := filepath.Join(w.Dir, fmt.Sprintf("%s_%s.csv", prefix, w.Stamp.Format("20060102_150405")))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// WriteCounts writes person,sent,received rows in the given order.
func WriteCounts(out io.Writer, counts []model.PersonCount) error {
	cw := csv.NewWriter(out)
	cw.Write([]string{"person", "sent", "received"})
	for _, c := range counts {
		cw.Write([]string{c.Person, strconv.Itoa(c.Sent), strconv.Itoa(c.Received)})
	}
	cw.Flush()
	return cw.Error()
}

// WriteSent writes the series wide: one row per month, one column per person.
func WriteSent(out io.Writer, series []model.MonthlySent) error {
	p := newPivot()
	for _, r := range series {
		p.add(r.Month, r.Person, strconv.Itoa(r.Sent))
	}
	return p.write(out)
}

// WriteShares writes the relative contact series wide.
func WriteShares(out io.Writer, series []model.MonthlyShare) error {
	p := newPivot()
	for _, r := range series {
		p.add(r.Month, r.Person, strconv.FormatFloat(r.Share, 'f', -1, 64))
	}
	return p.write(out)
}

// pivot turns (month, person, value) rows into a month × person grid,
// keeping first-seen order of both axes.
type pivot struct {
	months []model.Month
	people []string
	cells  map[model.Month]map[string]string
	seen   map[string]bool
}

func newPivot() *pivot {
	return &pivot{cells: map[model.Month]map[string]string{}, seen: map[string]bool{}}
}

func (p *pivot) add(m model.Month, person, value string) {
	row, ok := p.cells[m]
	if !ok {
		row = map[string]string{}
		p.cells[m] = row
		p.months = append(p.months, m)
	}
	if !p.seen[person] {
		p.seen[person] = true
		p.people = append(p.people, person)
	}
	row[person] = value
}

func (p *pivot) write(out io.Writer) error {
	cw := csv.NewWriter(out)
	cw.Write(append([]string{"month"}, p.people...))
	for _, m := range p.months {
		rec := make([]string, 0, len(p.people)+1)
		rec = append(rec, m.String())
		for _, person := range p.people {
			v, ok := p.cells[m][person]
			if !ok {
				v = "0"
			}
			rec = append(rec, v)
		}
		cw.Write(rec)
	}
	cw.Flush()
	return cw.Error()
}
