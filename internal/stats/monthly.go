package stats

import (
	"github.com/qrystalml/enron-summary/internal/model"
	"github.com/qrystalml/enron-summary/internal/table"
)

type bucket struct {
	person string
	month  model.Month
}

// MonthlySent counts the distinct messages each requested person sent per
// month. Every month between the table's first and last event is present for
// every person, with zero where nothing was sent.
func MonthlySent(t *table.Table, people []string) []model.MonthlySent {
	people = uniq(people)
	wanted := asSet(people)

	dedup := map[sentKey]struct{}{}
	messages := map[bucket]map[string]struct{}{}

	t.Each(func(r table.FlatEvent) {
		if _, ok := wanted[r.Sender]; !ok {
			return
		}
		// Recipient expansion repeats the triple once per recipient.
		k := newSentKey(r)
		if _, dup := dedup[k]; dup {
			return
		}
		dedup[k] = struct{}{}

		b := bucket{person: r.Sender, month: t.MonthOf(r.Timestamp)}
		set, ok := messages[b]
		if !ok {
			set = map[string]struct{}{}
			messages[b] = set
		}
		set[r.MessageID] = struct{}{}
	})

	months := t.MonthRange()
	out := make([]model.MonthlySent, 0, len(months)*len(people))
	for _, m := range months {
		for _, p := range people {
			out = append(out, model.MonthlySent{
				Person: p,
				Month:  m,
				Sent:   len(messages[bucket{person: p, month: m}]),
			})
		}
	}
	return out
}

// sentKey identifies one sent message.
type sentKey struct {
	ts        int64 // epoch milliseconds, the source precision
	sender    string
	messageID string
}

func newSentKey(r table.FlatEvent) sentKey {
	return sentKey{ts: r.Timestamp.UnixMilli(), sender: r.Sender, messageID: r.MessageID}
}

// MonthlyRelativeContacts computes, per month, each requested person's count
// of distinct senders divided by the sum of those counts across all requested
// people. Months where the sum is zero yield zero for everyone.
func MonthlyRelativeContacts(t *table.Table, people []string) []model.MonthlyShare {
	people = uniq(people)
	wanted := asSet(people)

	senders := map[bucket]map[string]struct{}{}
	t.Each(func(r table.FlatEvent) {
		if _, ok := wanted[r.Recipient]; !ok {
			return
		}
		b := bucket{person: r.Recipient, month: t.MonthOf(r.Timestamp)}
		set, ok := senders[b]
		if !ok {
			set = map[string]struct{}{}
			senders[b] = set
		}
		set[r.Sender] = struct{}{}
	})

	months := t.MonthRange()
	out := make([]model.MonthlyShare, 0, len(months)*len(people))
	counts := make([]int, len(people))
	for _, m := range months {
		total := 0
		for i, p := range people {
			counts[i] = len(senders[bucket{person: p, month: m}])
			total += counts[i]
		}
		for i, p := range people {
			share := 0.0
			if total > 0 {
				share = float64(counts[i]) / float64(total)
			}
			out = append(out, model.MonthlyShare{Person: p, Month: m, Share: share})
		}
	}
	return out
}

// uniq drops repeated identifiers, keeping the first occurrence.
func uniq(people []string) []string {
	seen := make(map[string]bool, len(people))
	out := make([]string, 0, len(people))
	for _, p := range people {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func asSet(people []string) map[string]struct{} {
	set := make(map[string]struct{}, len(people))
	for _, p := range people {
		set[p] = struct{}{}
	}
	return set
}
