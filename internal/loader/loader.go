// Package loader reads the email event history CSV into raw events.
package loader

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/qrystalml/enron-summary/internal/table"
)

// Columns used from each record; anything after the recipients (topic, mode) is ignored.
const (
	colTimestamp = iota
	colMessageID
	colSender
	colRecipients
	minColumns
)

// checkEvery is how many records are read between context checks.
const checkEvery = 4096

// Result is the outcome of a load.
type Result struct {
	Rows    []table.RawEvent
	Skipped int // records with too few columns
}

// Load opens path, transparently decompressing .gz files, and reads it.
func Load(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReaderSize(f, 256*1024)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return Read(ctx, r)
}

// Read parses headerless CSV records of the form
// timestamp,message_id,sender,recipients[,topic,mode].
// Timestamps are passed through untouched; the table builder validates them.
func Read(ctx context.Context, r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	res := &Result{}
	for n := 0; ; n++ {
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(rec) < minColumns {
			res.Skipped++
			continue
		}
		res.Rows = append(res.Rows, table.RawEvent{
			Timestamp:  rec[colTimestamp],
			MessageID:  rec[colMessageID],
			Sender:     rec[colSender],
			Recipients: rec[colRecipients],
		})
	}
	return res, nil
}
