// Package summary runs the full summarise pipeline: load, expand, aggregate,
// write reports.
package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/qrystalml/enron-summary/internal/loader"
	"github.com/qrystalml/enron-summary/internal/model"
	"github.com/qrystalml/enron-summary/internal/report"
	"github.com/qrystalml/enron-summary/internal/stats"
	"github.com/qrystalml/enron-summary/internal/store"
	"github.com/qrystalml/enron-summary/internal/table"
)

// Params configures a pipeline run.
type Params struct {
	Input      string
	Delimiter  string
	Location   *time.Location
	TopSenders int
	Exclude    []string
	People     []string // overrides the top-sender selection when set
	ResultsDir string   // reports are skipped when empty
}

// Result is everything a run produced.
type Result struct {
	Params   store.RunParams
	Files    []string
	Counts   []model.PersonCount
	Sent     []model.MonthlySent
	Contacts []model.MonthlyShare
}

// Load reads the input and builds the flat table.
func Load(ctx context.Context, input, delimiter string, loc *time.Location) (*table.Table, *loader.Result, error) {
	log.Debug().Str("input", input).Msg("loading event history")
	res, err := loader.Load(ctx, input)
	if err != nil {
		return nil, nil, err
	}
	if res.Skipped > 0 {
		log.Warn().Int("skipped", res.Skipped).Msg("skipped records with too few columns")
	}

	tbl, err := table.Build(res.Rows, table.Options{Delimiter: delimiter, Location: loc})
	if err != nil {
		return nil, nil, fmt.Errorf("build table: %w", err)
	}
	log.Debug().Int("events", len(res.Rows)).Int("flat_rows", tbl.Len()).Int("messages", tbl.Messages()).
		Msg("event table built")
	return tbl, res, nil
}

// Run executes the pipeline.
func Run(ctx context.Context, p Params) (*Result, error) {
	log.Info().Str("input", p.Input).Msg("summarisation begin")

	tbl, loaded, err := Load(ctx, p.Input, p.Delimiter, p.Location)
	if err != nil {
		return nil, err
	}

	out := &Result{Counts: stats.Counts(tbl)}

	people := p.People
	if len(people) == 0 {
		people = stats.TopSenders(out.Counts, p.TopSenders, p.Exclude)
	}
	log.Debug().Strs("people", people).Msg("selected people")

	var w *report.Writer
	if p.ResultsDir != "" {
		w = report.NewWriter(p.ResultsDir)
	}
	files := make([]string, 3)

	var g errgroup.Group
	g.Go(func() error {
		if w == nil {
			return nil
		}
		path, err := w.Counts(out.Counts)
		files[0] = path
		return err
	})
	g.Go(func() error {
		out.Sent = stats.MonthlySent(tbl, people)
		if w == nil {
			return nil
		}
		path, err := w.Sent(out.Sent)
		files[1] = path
		return err
	})
	g.Go(func() error {
		out.Contacts = stats.MonthlyRelativeContacts(tbl, people)
		if w == nil {
			return nil
		}
		path, err := w.Contacts(out.Contacts)
		files[2] = path
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("write reports: %w", err)
	}

	for _, f := range files {
		if f != "" {
			log.Info().Str("file", f).Msg("saved report")
			out.Files = append(out.Files, f)
		}
	}

	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	out.Params = store.RunParams{
		Input:     p.Input,
		Timezone:  loc.String(),
		Delimiter: p.Delimiter,
		Events:    len(loaded.Rows),
		FlatRows:  tbl.Len(),
		Messages:  tbl.Messages(),
		Skipped:   loaded.Skipped,
		People:    people,
		Counts:    out.Counts,
		Sent:      out.Sent,
		Contacts:  out.Contacts,
	}

	log.Info().Int("persons", len(out.Counts)).Int("months", len(tbl.MonthRange())).Msg("summarisation end")
	return out, nil
}
