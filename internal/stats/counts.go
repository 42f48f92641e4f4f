// Package stats derives sent/received counts and monthly series from a flat event table.
package stats

import (
	"sort"

	"github.com/qrystalml/enron-summary/internal/model"
	"github.com/qrystalml/enron-summary/internal/table"
)

// Counts returns distinct sent and received message counts for every person
// seen as a sender or recipient, sorted by sent descending. Ties keep the
// order in which persons first appear in the table.
func Counts(t *table.Table) []model.PersonCount {
	sent := map[string]map[string]struct{}{}
	received := map[string]map[string]struct{}{}
	var order []string
	seen := map[string]bool{}

	note := func(p string) {
		if !seen[p] {
			seen[p] = true
			order = append(order, p)
		}
	}

	t.Each(func(r table.FlatEvent) {
		note(r.Sender)
		note(r.Recipient)
		addTo(sent, r.Sender, r.MessageID)
		addTo(received, r.Recipient, r.MessageID)
	})

	// Outer join on person; a missing side is zero.
	out := make([]model.PersonCount, 0, len(order))
	for _, p := range order {
		out = append(out, model.PersonCount{
			Person:   p,
			Sent:     len(sent[p]),
			Received: len(received[p]),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sent > out[j].Sent
	})
	return out
}

func addTo(groups map[string]map[string]struct{}, key, value string) {
	set, ok := groups[key]
	if !ok {
		set = map[string]struct{}{}
		groups[key] = set
	}
	set[value] = struct{}{}
}
