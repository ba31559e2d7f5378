package tabular

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

const utf8BOM = "\ufeff"

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune            // default ','
	HasHeader  bool            // if true, first row is skipped but sent to HeaderCh
	HeaderCh   chan<- []string // optional: receives the header row
	Comment    rune            // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
	Charset    string // source encoding, e.g. "windows-1252" (default UTF-8)
}

// StreamCSV reads CSV records and sends rows to a channel.
// Caller must consume the returned row channel. Errors are sent on the error channel.
// Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // allow ragged rows

		first := true
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			if first && len(record) > 0 {
				record[0] = strings.TrimPrefix(record[0], utf8BOM)
			}
			if opts.TrimSpace {
				for i, field := range record {
					record[i] = strings.TrimSpace(field)
				}
			}

			if first && opts.HasHeader {
				first = false
				if opts.HeaderCh != nil {
					select {
					case opts.HeaderCh <- record:
					case <-ctx.Done():
						errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled sending header")
						return
					}
				}
				continue
			}
			first = false

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// decodeCharset wraps r so it yields UTF-8 from the named encoding.
func decodeCharset(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return r, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: unsupported charset %q", charset)
	}
	return enc.NewDecoder().Reader(r), nil
}

// ReadCSV reads a delimited stream whose first record is the header.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions) (*Table, error) {
	r, err := decodeCharset(r, opts.Charset)
	if err != nil {
		return nil, err
	}

	headerCh := make(chan []string, 1)
	opts.HasHeader = true
	opts.HeaderCh = headerCh

	rowCh, errCh := StreamCSV(ctx, r, opts)

	t := &Table{}
	for row := range rowCh {
		t.Rows = append(t.Rows, row)
	}
	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}

	select {
	case header := <-headerCh:
		t.Columns = header
	default:
		return nil, eris.New("csv: empty input, no header row")
	}
	return t, nil
}

// ReadCSVFile opens path and reads it with ReadCSV.
func ReadCSVFile(ctx context.Context, path string, opts CSVOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	t, err := ReadCSV(ctx, f, opts)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: read %s", path)
	}
	return t, nil
}

// WriteCSV writes the header followed by every row.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "csv: write row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "csv: flush")
}

// CSVBytes encodes the table as UTF-8 CSV.
func CSVBytes(t *Table) ([]byte, error) {
	var sb strings.Builder
	if err := WriteCSV(&sb, t); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// WriteCSVFile writes the table to path, creating or truncating it.
func WriteCSVFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "csv: create %s", path)
	}
	if err := WriteCSV(f, t); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "csv: close %s", path)
}
