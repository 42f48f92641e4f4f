package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/qrystalml/enron-summary/internal/model"
)

// ExportAll returns every run with its tables, oldest first.
func (s *SQLiteStore) ExportAll(ctx context.Context) ([]*model.Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	runs := make([]*model.Run, 0, len(ids))
	for _, id := range ids {
		r, err := s.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, nil
}

// Import stores runs from an export, keeping their ids. Skips runs that already exist.
func (s *SQLiteStore) Import(ctx context.Context, runs []model.Run) (int, error) {
	imported := 0
	for _, r := range runs {
		var existing string
		err := s.db.QueryRowContext(ctx, `SELECT id FROM runs WHERE id = ?`, r.ID).Scan(&existing)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return imported, err
		}

		createdAt := r.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		id := r.ID
		if id == "" {
			if id, err = s.newID(createdAt); err != nil {
				return imported, err
			}
		}
		_, err = s.insertRun(ctx, id, createdAt, RunParams{
			Input:     r.Input,
			Timezone:  r.Timezone,
			Delimiter: r.Delimiter,
			Events:    r.Events,
			FlatRows:  r.FlatRows,
			Messages:  r.Messages,
			Skipped:   r.Skipped,
			People:    r.People,
			Counts:    r.Counts,
			Sent:      r.Sent,
			Contacts:  r.Contacts,
		})
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
