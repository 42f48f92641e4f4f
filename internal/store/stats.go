package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string `json:"db_path"`
	DBSizeBytes   int64  `json:"db_size_bytes"`
	Runs          int    `json:"runs"`
	PersonCounts  int    `json:"person_counts"`
	MonthlySent   int    `json:"monthly_sent_rows"`
	MonthlyShares int    `json:"monthly_share_rows"`
	LatestRun     string `json:"latest_run,omitempty"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM runs`, &st.Runs},
		{`SELECT COUNT(*) FROM person_counts`, &st.PersonCounts},
		{`SELECT COUNT(*) FROM monthly_sent`, &st.MonthlySent},
		{`SELECT COUNT(*) FROM monthly_shares`, &st.MonthlyShares},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return st, err
		}
	}

	if st.Runs > 0 {
		s.db.QueryRowContext(ctx,
			`SELECT id FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&st.LatestRun)
	}
	return st, nil
}
