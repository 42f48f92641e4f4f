package stats

import "github.com/qrystalml/enron-summary/internal/model"

// TopSenders returns the persons of the first n count rows, minus any in
// exclude. Exclusion is applied after the cut, so fewer than n may remain.
// n <= 0 selects every row.
func TopSenders(counts []model.PersonCount, n int, exclude []string) []string {
	if n <= 0 || n > len(counts) {
		n = len(counts)
	}
	skip := asSet(exclude)

	var out []string
	for _, c := range counts[:n] {
		if _, ok := skip[c.Person]; ok {
			continue
		}
		out = append(out, c.Person)
	}
	return out
}
